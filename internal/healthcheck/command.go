package healthcheck

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tyemirov/winvitals/internal/runcommand"
	"github.com/tyemirov/winvitals/internal/taskengine"
	flagutils "github.com/tyemirov/winvitals/internal/utils/flags"
)

const (
	commandUseConstant                 = "check"
	commandShortDescriptionConstant    = "Verify or repair the component store, system files and volumes"
	commandLongDescriptionConstant     = "Runs DISM, CHKDSK and SFC in catalogue order. Repairs by default; pass --verify-only for read-only scans. Tasks: ComponentStoreScan, FileSystemScans, SystemFileChecker."
	verifyOnlyFlagNameConstant         = "verify-only"
	verifyOnlyFlagUsageConstant        = "Scan without repairing anything"
	dependenciesMissingMessageConstant = "health check dependencies provider not configured"
)

// ErrDependenciesProviderMissing indicates the command was built without a dependencies provider.
var ErrDependenciesProviderMissing = errors.New(dependenciesMissingMessageConstant)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the check command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration
	DependenciesProvider  func(logger *zap.Logger) (Dependencies, error)
	PrivilegeChecker      taskengine.PrivilegeChecker
	Publisher             runcommand.ReportPublisher
}

// Build constructs the check command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}
	flagutils.BindSelectionFlags(command)
	command.Flags().Bool(verifyOnlyFlagNameConstant, false, verifyOnlyFlagUsageConstant)
	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, _ []string) error {
	if builder.DependenciesProvider == nil {
		return ErrDependenciesProviderMissing
	}

	configuration := builder.resolveConfiguration()
	verifyOnly, verifyOnlyChanged, flagError := flagutils.BoolFlag(command, verifyOnlyFlagNameConstant)
	if flagError != nil {
		return flagError
	}
	if verifyOnlyChanged {
		configuration.VerifyOnly = verifyOnly
	}

	dependencies, dependenciesError := builder.DependenciesProvider(builder.resolveLogger())
	if dependenciesError != nil {
		return dependenciesError
	}

	catalogue, catalogueError := NewCatalogue(dependencies, configuration.Intent())
	if catalogueError != nil {
		return catalogueError
	}

	return runcommand.Run(command, catalogue, configuration.Selection(), runcommand.Runtime{
		LoggerProvider:   builder.resolveLogger,
		PrivilegeChecker: builder.PrivilegeChecker,
		Publisher:        builder.Publisher,
	})
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

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider()
}
