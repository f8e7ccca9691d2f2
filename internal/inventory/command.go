package inventory

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tyemirov/winvitals/internal/runcommand"
	"github.com/tyemirov/winvitals/internal/taskengine"
	flagutils "github.com/tyemirov/winvitals/internal/utils/flags"
)

const (
	commandUseConstant                 = "info"
	commandShortDescriptionConstant    = "Collect a read-only inventory of the host"
	commandLongDescriptionConstant     = "Runs the inventory tasks in catalogue order and reports one result per task. Tasks: ComputerInfo, ComponentStoreAnalysis, CrashDumps, DevicesNotPresent, DevicesWithBadStatus, EnvironmentVariables, HypervisorInfo, InstalledFeatures, InstalledPrograms, StorageVolumes, SysinternalsSuite, WindowsUpdates."
	dependenciesMissingMessageConstant = "inventory dependencies provider not configured"
)

// ErrDependenciesProviderMissing indicates the command was built without a dependencies provider.
var ErrDependenciesProviderMissing = errors.New(dependenciesMissingMessageConstant)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the info command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration
	DependenciesProvider  func(logger *zap.Logger) (Dependencies, error)
	PrivilegeChecker      taskengine.PrivilegeChecker
	Publisher             runcommand.ReportPublisher
}

// Build constructs the info command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}
	flagutils.BindSelectionFlags(command)
	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, _ []string) error {
	if builder.DependenciesProvider == nil {
		return ErrDependenciesProviderMissing
	}

	logger := builder.resolveLogger()
	dependencies, dependenciesError := builder.DependenciesProvider(logger)
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

	return runcommand.Run(command, catalogue, builder.resolveConfiguration().Selection(), runcommand.Runtime{
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
