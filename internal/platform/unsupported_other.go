//go:build !windows

package platform

import (
	"context"
	"errors"

	vitalerrors "github.com/tyemirov/winvitals/internal/errors"
)

const unsupportedPlatformMessageConstant = "capability requires Windows"

var errUnsupportedPlatform = errors.New(unsupportedPlatformMessageConstant)

// ElevationChecker reports whether the process is elevated.
type ElevationChecker struct{}

// IsElevated always fails outside Windows.
func (ElevationChecker) IsElevated() (bool, error) {
	return false, unsupported(vitalerrors.OperationPrivilegeCheck, "")
}

// RecycleBin empties the recycle bins of every drive.
type RecycleBin struct{}

// Empty is unavailable outside Windows.
func (RecycleBin) Empty() error {
	return unsupported(vitalerrors.OperationMaintenanceAction, "recycle_bin")
}

// RegistryInspector reads persisted environment blocks and uninstall entries.
type RegistryInspector struct{}

// EnvironmentSnapshot is unavailable outside Windows.
func (RegistryInspector) EnvironmentSnapshot() (EnvironmentSnapshot, error) {
	return EnvironmentSnapshot{}, unsupported(vitalerrors.OperationInventoryQuery, "environment")
}

// InstalledPrograms is unavailable outside Windows.
func (RegistryInspector) InstalledPrograms() ([]InstalledProgram, error) {
	return nil, unsupported(vitalerrors.OperationInventoryQuery, "installed_programs")
}

// MachineSearchPath reads and writes the machine-wide Path value.
type MachineSearchPath struct{}

// ReadSearchPath is unavailable outside Windows.
func (MachineSearchPath) ReadSearchPath() (string, error) {
	return "", unsupported(vitalerrors.OperationSearchPathUpdate, "machine_search_path")
}

// WriteSearchPath is unavailable outside Windows.
func (MachineSearchPath) WriteSearchPath(string) error {
	return unsupported(vitalerrors.OperationSearchPathUpdate, "machine_search_path")
}

// ManagementQuerier reads device, volume and feature facts from the CIM repository.
type ManagementQuerier struct{}

// Devices is unavailable outside Windows.
func (ManagementQuerier) Devices(context.Context) ([]Device, error) {
	return nil, unsupported(vitalerrors.OperationInventoryQuery, "pnp_devices")
}

// FixedVolumes is unavailable outside Windows.
func (ManagementQuerier) FixedVolumes(context.Context) ([]StorageVolume, error) {
	return nil, unsupported(vitalerrors.OperationInventoryQuery, "volumes")
}

// EnabledFeatures is unavailable outside Windows.
func (ManagementQuerier) EnabledFeatures(context.Context) ([]OptionalFeature, error) {
	return nil, unsupported(vitalerrors.OperationInventoryQuery, "optional_features")
}

// UpdateAgent queries and installs pending updates through the Windows Update Agent.
type UpdateAgent struct{}

// PendingUpdates is unavailable outside Windows.
func (UpdateAgent) PendingUpdates(context.Context) ([]PendingUpdate, error) {
	return nil, unsupported(vitalerrors.OperationInventoryQuery, "windows_update")
}

// InstallPendingUpdates is unavailable outside Windows.
func (UpdateAgent) InstallPendingUpdates(context.Context) (UpdateInstallation, error) {
	return UpdateInstallation{}, unsupported(vitalerrors.OperationMaintenanceAction, "windows_update")
}

func probeNativeHypervisor(context.Context) (Hypervisor, bool, error) {
	return Hypervisor{}, false, nil
}

func unsupported(operation vitalerrors.Operation, subject string) error {
	return vitalerrors.Wrap(operation, subject, vitalerrors.ErrUnavailable, errUnsupportedPlatform)
}
