package cli

import (
	"go.uber.org/zap"

	"github.com/tyemirov/winvitals/internal/artifact"
	"github.com/tyemirov/winvitals/internal/execshell"
	"github.com/tyemirov/winvitals/internal/filesystem"
	"github.com/tyemirov/winvitals/internal/healthcheck"
	"github.com/tyemirov/winvitals/internal/inventory"
	"github.com/tyemirov/winvitals/internal/maintenance"
	"github.com/tyemirov/winvitals/internal/platform"
	"github.com/tyemirov/winvitals/internal/repairtools"
)

const (
	sysinternalsUnavailableMessageConstant = "sysinternals updater unavailable"
	installDirectoryFieldConstant          = "install_directory"
)

// collaboratorFactory holds the host-facing primitives the task collaborators are built from.
type collaboratorFactory struct {
	commandRunner execshell.CommandRunner
	fileSystem    filesystem.FileSystem
	downloader    artifact.Downloader
	searchPath    artifact.SearchPathStore
}

func newSystemCollaborators() collaboratorFactory {
	return collaboratorFactory{
		commandRunner: execshell.NewOSCommandRunner(),
		fileSystem:    filesystem.OSFileSystem{},
		downloader:    artifact.HTTPDownloader{},
		searchPath:    platform.MachineSearchPath{},
	}
}

func (application *Application) newShellExecutor(logger *zap.Logger) (*execshell.ShellExecutor, error) {
	return execshell.NewShellExecutor(logger, application.collaborators.commandRunner, application.humanReadableLoggingEnabled())
}

func (application *Application) newRepairInvoker(logger *zap.Logger) (*repairtools.Invoker, error) {
	executor, executorError := application.newShellExecutor(logger)
	if executorError != nil {
		return nil, executorError
	}
	return repairtools.NewInvoker(executor)
}

// newSysinternalsUpdater returns nil when the updater cannot be configured so the dependent tasks report unavailable.
func (application *Application) newSysinternalsUpdater(logger *zap.Logger, configuration maintenance.SysinternalsConfiguration) *artifact.Updater {
	resolved := application.sysinternalsConfiguration(configuration)
	updater, updaterError := artifact.NewUpdater(resolved.UpdaterConfiguration(), artifact.UpdaterDependencies{
		FileSystem:      application.collaborators.fileSystem,
		Downloader:      application.collaborators.downloader,
		SearchPathStore: application.collaborators.searchPath,
		Logger:          logger,
	})
	if updaterError != nil {
		logger.Warn(sysinternalsUnavailableMessageConstant, zap.String(installDirectoryFieldConstant, resolved.InstallDirectory), zap.Error(updaterError))
		return nil
	}
	return updater
}

func (application *Application) inventoryDependencies(logger *zap.Logger) (inventory.Dependencies, error) {
	invoker, invokerError := application.newRepairInvoker(logger)
	if invokerError != nil {
		return inventory.Dependencies{}, invokerError
	}

	dependencies := inventory.Dependencies{
		Host:               platform.NewHostInspector(),
		ComponentStore:     invoker,
		Management:         platform.ManagementQuerier{},
		Registry:           platform.RegistryInspector{},
		Updates:            platform.UpdateAgent{},
		FileSystem:         application.collaborators.fileSystem,
		CrashDumpLocations: application.hostPaths.CrashDumps,
		Logger:             logger,
	}
	sysinternalsConfiguration := application.maintenanceConfiguration().Sanitize().Sysinternals
	if updater := application.newSysinternalsUpdater(logger, sysinternalsConfiguration); updater != nil {
		dependencies.Sysinternals = updater
	}
	return dependencies, nil
}

func (application *Application) healthCheckDependencies(logger *zap.Logger) (healthcheck.Dependencies, error) {
	invoker, invokerError := application.newRepairInvoker(logger)
	if invokerError != nil {
		return healthcheck.Dependencies{}, invokerError
	}
	return healthcheck.Dependencies{Tools: invoker, Volumes: platform.ManagementQuerier{}}, nil
}

func (application *Application) maintenanceDependencies(logger *zap.Logger, configuration maintenance.CommandConfiguration) (maintenance.Dependencies, error) {
	executor, executorError := application.newShellExecutor(logger)
	if executorError != nil {
		return maintenance.Dependencies{}, executorError
	}
	invoker, invokerError := repairtools.NewInvoker(executor)
	if invokerError != nil {
		return maintenance.Dependencies{}, invokerError
	}

	dependencies := maintenance.Dependencies{
		Executor:       executor,
		ComponentStore: invoker,
		RecycleBin:     platform.RecycleBin{},
		Updates:        platform.UpdateAgent{},
		FileSystem:     application.collaborators.fileSystem,
		Paths:          application.hostPaths,
		Logger:         logger,
	}
	if updater := application.newSysinternalsUpdater(logger, configuration.Sysinternals); updater != nil {
		dependencies.Sysinternals = updater
	}
	return dependencies, nil
}
