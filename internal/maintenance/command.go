package maintenance

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tyemirov/winvitals/internal/runcommand"
	"github.com/tyemirov/winvitals/internal/taskengine"
	flagutils "github.com/tyemirov/winvitals/internal/utils/flags"
)

const (
	commandUseConstant                 = "maintain"
	commandShortDescriptionConstant    = "Clean up and refresh the host"
	commandLongDescriptionConstant     = "Runs the maintenance tasks in catalogue order. Tasks: ClearInternetExplorerCache, ComponentStoreCleanup, DeleteErrorReports, DeleteTemporaryFiles, EmptyRecycleBin, PowerShellHelp, SysinternalsSuite, WindowsUpdates."
	sysinternalsURLFlagNameConstant    = "sysinternals-url"
	sysinternalsURLFlagUsageConstant   = "Download URL of the Sysinternals Suite archive"
	sysinternalsDirFlagNameConstant    = "sysinternals-dir"
	sysinternalsDirFlagUsageConstant   = "Install directory of the Sysinternals Suite"
	dependenciesMissingMessageConstant = "maintenance dependencies provider not configured"
)

// ErrDependenciesProviderMissing indicates the command was built without a dependencies provider.
var ErrDependenciesProviderMissing = errors.New(dependenciesMissingMessageConstant)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// DependenciesProvider constructs the task collaborators for the resolved configuration.
type DependenciesProvider func(logger *zap.Logger, configuration CommandConfiguration) (Dependencies, error)

// CommandBuilder assembles the maintain command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration
	DependenciesProvider  DependenciesProvider
	PrivilegeChecker      taskengine.PrivilegeChecker
	Publisher             runcommand.ReportPublisher
}

// Build constructs the maintain command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}
	flagutils.BindSelectionFlags(command)
	command.Flags().String(sysinternalsURLFlagNameConstant, "", sysinternalsURLFlagUsageConstant)
	command.Flags().String(sysinternalsDirFlagNameConstant, "", sysinternalsDirFlagUsageConstant)
	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, _ []string) error {
	if builder.DependenciesProvider == nil {
		return ErrDependenciesProviderMissing
	}

	configuration, configurationError := builder.resolveConfiguration(command)
	if configurationError != nil {
		return configurationError
	}

	logger := builder.resolveLogger()
	dependencies, dependenciesError := builder.DependenciesProvider(logger, configuration)
	if dependenciesError != nil {
		return dependenciesError
	}
	if dependencies.Logger == nil {
		dependencies.Logger = logger
	}

	catalogue, catalogueError := NewCatalogue(dependencies)
	if catalogueError != nil {
		return catalogueError
	}

	return runcommand.Run(command, catalogue, configuration.Selection(), runcommand.Runtime{
		LoggerProvider:   builder.resolveLogger,
		PrivilegeChecker: builder.PrivilegeChecker,
		Publisher:        builder.Publisher,
	})
}

func (builder *CommandBuilder) resolveConfiguration(command *cobra.Command) (CommandConfiguration, error) {
	configuration := DefaultCommandConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}

	downloadURL, downloadURLChanged, urlError := flagutils.StringFlag(command, sysinternalsURLFlagNameConstant)
	if urlError != nil {
		return CommandConfiguration{}, urlError
	}
	if downloadURLChanged {
		configuration.Sysinternals.DownloadURL = downloadURL
	}

	installDirectory, installDirectoryChanged, directoryError := flagutils.StringFlag(command, sysinternalsDirFlagNameConstant)
	if directoryError != nil {
		return CommandConfiguration{}, directoryError
	}
	if installDirectoryChanged {
		configuration.Sysinternals.InstallDirectory = installDirectory
	}

	return configuration.Sanitize(), nil
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
