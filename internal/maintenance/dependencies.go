package maintenance

import (
	"context"

	"go.uber.org/zap"

	"github.com/tyemirov/winvitals/internal/artifact"
	"github.com/tyemirov/winvitals/internal/execshell"
	"github.com/tyemirov/winvitals/internal/filesystem"
	"github.com/tyemirov/winvitals/internal/platform"
	"github.com/tyemirov/winvitals/internal/repairtools"
)

// CommandExecutor runs external programs.
type CommandExecutor interface {
	Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)
}

// ComponentStoreCleaner removes superseded component store versions.
type ComponentStoreCleaner interface {
	CleanupComponentStore(executionContext context.Context) (repairtools.ToolReport, error)
}

// RecycleBin empties the recycle bins of every drive.
type RecycleBin interface {
	Empty() error
}

// ArtifactUpdater refreshes the installed Sysinternals Suite.
type ArtifactUpdater interface {
	Update(executionContext context.Context) (artifact.VersionedArtifact, error)
}

// UpdateInstaller downloads and installs pending software updates.
type UpdateInstaller interface {
	InstallPendingUpdates(executionContext context.Context) (platform.UpdateInstallation, error)
}

// Dependencies groups the collaborators used by the maintenance tasks.
type Dependencies struct {
	Executor       CommandExecutor
	ComponentStore ComponentStoreCleaner
	RecycleBin     RecycleBin
	Sysinternals   ArtifactUpdater
	Updates        UpdateInstaller
	FileSystem     filesystem.FileSystem
	Paths          platform.HostPaths
	Logger         *zap.Logger
}
