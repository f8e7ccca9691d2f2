package inventory

import (
	"context"

	"go.uber.org/zap"

	"github.com/tyemirov/winvitals/internal/artifact"
	"github.com/tyemirov/winvitals/internal/filesystem"
	"github.com/tyemirov/winvitals/internal/platform"
	"github.com/tyemirov/winvitals/internal/repairtools"
)

// HostInspector reports operating system identity and virtualization facts.
type HostInspector interface {
	Summary(executionContext context.Context) (platform.HostSummary, error)
	Hypervisor(executionContext context.Context) (platform.Hypervisor, bool, error)
	VolumeUsage(executionContext context.Context, driveLetter string) (uint64, uint64, error)
}

// ComponentStoreAnalyzer analyzes the servicing component store.
type ComponentStoreAnalyzer interface {
	AnalyzeComponentStore(executionContext context.Context) (repairtools.ToolReport, error)
}

// ManagementQuerier enumerates devices, fixed volumes and optional features.
type ManagementQuerier interface {
	Devices(executionContext context.Context) ([]platform.Device, error)
	FixedVolumes(executionContext context.Context) ([]platform.StorageVolume, error)
	EnabledFeatures(executionContext context.Context) ([]platform.OptionalFeature, error)
}

// RegistryInspector reads persisted environment blocks and uninstall entries.
type RegistryInspector interface {
	EnvironmentSnapshot() (platform.EnvironmentSnapshot, error)
	InstalledPrograms() ([]platform.InstalledProgram, error)
}

// ArtifactInspector reports the locally installed Sysinternals Suite.
type ArtifactInspector interface {
	Status() (artifact.ArtifactStatus, error)
}

// UpdateSearcher lists pending software updates.
type UpdateSearcher interface {
	PendingUpdates(executionContext context.Context) ([]platform.PendingUpdate, error)
}

// Dependencies groups the collaborators used by the inventory tasks.
type Dependencies struct {
	Host               HostInspector
	ComponentStore     ComponentStoreAnalyzer
	Management         ManagementQuerier
	Registry           RegistryInspector
	Sysinternals       ArtifactInspector
	Updates            UpdateSearcher
	FileSystem         filesystem.FileSystem
	CrashDumpLocations platform.CrashDumpLocations
	Logger             *zap.Logger
}
