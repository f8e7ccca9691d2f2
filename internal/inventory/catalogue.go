// Package inventory defines the read-only host inventory runner.
package inventory

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	vitalerrors "github.com/tyemirov/winvitals/internal/errors"
	"github.com/tyemirov/winvitals/internal/platform"
	"github.com/tyemirov/winvitals/internal/repairtools"
	"github.com/tyemirov/winvitals/internal/taskengine"
)

// Inventory task names in catalogue order.
const (
	TaskComputerInfo           taskengine.TaskName = "ComputerInfo"
	TaskComponentStoreAnalysis taskengine.TaskName = "ComponentStoreAnalysis"
	TaskCrashDumps             taskengine.TaskName = "CrashDumps"
	TaskDevicesNotPresent      taskengine.TaskName = "DevicesNotPresent"
	TaskDevicesWithBadStatus   taskengine.TaskName = "DevicesWithBadStatus"
	TaskEnvironmentVariables   taskengine.TaskName = "EnvironmentVariables"
	TaskHypervisorInfo         taskengine.TaskName = "HypervisorInfo"
	TaskInstalledFeatures      taskengine.TaskName = "InstalledFeatures"
	TaskInstalledPrograms      taskengine.TaskName = "InstalledPrograms"
	TaskStorageVolumes         taskengine.TaskName = "StorageVolumes"
	TaskSysinternalsSuite      taskengine.TaskName = "SysinternalsSuite"
	TaskWindowsUpdates         taskengine.TaskName = "WindowsUpdates"
)

const (
	// DeviceNotPresentErrorCode is the configuration manager status of a device that is not connected.
	DeviceNotPresentErrorCode uint32 = 45

	deviceHealthyErrorCode                     uint32 = 0
	collaboratorMissingMessageTemplateConstant        = "%s collaborator not configured"
	bareMetalMessageConstant                          = "host is not running under a hypervisor"
	volumeUsageFallbackMessageConstant                = "volume usage unavailable"
	driveLetterFieldNameConstant                      = "drive_letter"
	hostCollaboratorNameConstant                      = "host inspector"
	componentStoreCollaboratorNameConstant            = "component store analyzer"
	managementCollaboratorNameConstant                = "management querier"
	registryCollaboratorNameConstant                  = "registry inspector"
	sysinternalsCollaboratorNameConstant              = "sysinternals inspector"
	updatesCollaboratorNameConstant                   = "update searcher"
)

type catalogueBuilder struct {
	dependencies Dependencies
	logger       *zap.Logger
}

// NewCatalogue builds the inventory catalogue. Tasks whose collaborator is missing report Unavailable.
func NewCatalogue(dependencies Dependencies) (taskengine.Catalogue, error) {
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	builder := catalogueBuilder{dependencies: dependencies, logger: logger}

	return taskengine.NewCatalogue(
		taskengine.RunnerInventory,
		taskengine.TaskDefinition{Name: TaskComputerInfo, Execute: builder.computerInfo},
		taskengine.TaskDefinition{Name: TaskComponentStoreAnalysis, Privileged: true, Execute: builder.componentStoreAnalysis},
		taskengine.TaskDefinition{Name: TaskCrashDumps, Privileged: true, Execute: builder.crashDumps},
		taskengine.TaskDefinition{Name: TaskDevicesNotPresent, Execute: builder.devicesNotPresent},
		taskengine.TaskDefinition{Name: TaskDevicesWithBadStatus, Execute: builder.devicesWithBadStatus},
		taskengine.TaskDefinition{Name: TaskEnvironmentVariables, Execute: builder.environmentVariables},
		taskengine.TaskDefinition{Name: TaskHypervisorInfo, Execute: builder.hypervisorInfo},
		taskengine.TaskDefinition{Name: TaskInstalledFeatures, Execute: builder.installedFeatures},
		taskengine.TaskDefinition{Name: TaskInstalledPrograms, Execute: builder.installedPrograms},
		taskengine.TaskDefinition{Name: TaskStorageVolumes, Execute: builder.storageVolumes},
		taskengine.TaskDefinition{Name: TaskSysinternalsSuite, Execute: builder.sysinternalsSuite},
		taskengine.TaskDefinition{Name: TaskWindowsUpdates, Privileged: true, Execute: builder.windowsUpdates},
	)
}

func (builder catalogueBuilder) computerInfo(executionContext context.Context) (any, error) {
	if builder.dependencies.Host == nil {
		return nil, collaboratorMissing(TaskComputerInfo, hostCollaboratorNameConstant)
	}
	return builder.dependencies.Host.Summary(executionContext)
}

func (builder catalogueBuilder) componentStoreAnalysis(executionContext context.Context) (any, error) {
	if builder.dependencies.ComponentStore == nil {
		return nil, collaboratorMissing(TaskComponentStoreAnalysis, componentStoreCollaboratorNameConstant)
	}
	return builder.dependencies.ComponentStore.AnalyzeComponentStore(executionContext)
}

func (builder catalogueBuilder) crashDumps(context.Context) (any, error) {
	return CollectCrashDumps(builder.dependencies.FileSystem, builder.dependencies.CrashDumpLocations)
}

func (builder catalogueBuilder) devicesNotPresent(executionContext context.Context) (any, error) {
	return builder.filterDevices(executionContext, TaskDevicesNotPresent, func(device platform.Device) bool {
		return device.ConfigManagerErrorCode == DeviceNotPresentErrorCode
	})
}

func (builder catalogueBuilder) devicesWithBadStatus(executionContext context.Context) (any, error) {
	return builder.filterDevices(executionContext, TaskDevicesWithBadStatus, func(device platform.Device) bool {
		return device.ConfigManagerErrorCode != deviceHealthyErrorCode && device.ConfigManagerErrorCode != DeviceNotPresentErrorCode
	})
}

func (builder catalogueBuilder) filterDevices(executionContext context.Context, task taskengine.TaskName, keep func(platform.Device) bool) (any, error) {
	if builder.dependencies.Management == nil {
		return nil, collaboratorMissing(task, managementCollaboratorNameConstant)
	}
	devices, queryError := builder.dependencies.Management.Devices(executionContext)
	if queryError != nil {
		return nil, queryError
	}
	matching := make([]platform.Device, 0)
	for _, device := range devices {
		if keep(device) {
			matching = append(matching, device)
		}
	}
	return matching, nil
}

func (builder catalogueBuilder) environmentVariables(context.Context) (any, error) {
	if builder.dependencies.Registry == nil {
		return nil, collaboratorMissing(TaskEnvironmentVariables, registryCollaboratorNameConstant)
	}
	return builder.dependencies.Registry.EnvironmentSnapshot()
}

func (builder catalogueBuilder) hypervisorInfo(executionContext context.Context) (any, error) {
	if builder.dependencies.Host == nil {
		return nil, collaboratorMissing(TaskHypervisorInfo, hostCollaboratorNameConstant)
	}
	hypervisor, present, probeError := builder.dependencies.Host.Hypervisor(executionContext)
	if probeError != nil {
		return nil, probeError
	}
	if !present {
		return nil, vitalerrors.WrapMessage(vitalerrors.OperationInventoryQuery, string(TaskHypervisorInfo), vitalerrors.ErrNotApplicable, bareMetalMessageConstant)
	}
	return hypervisor, nil
}

func (builder catalogueBuilder) installedFeatures(executionContext context.Context) (any, error) {
	if builder.dependencies.Management == nil {
		return nil, collaboratorMissing(TaskInstalledFeatures, managementCollaboratorNameConstant)
	}
	return builder.dependencies.Management.EnabledFeatures(executionContext)
}

func (builder catalogueBuilder) installedPrograms(context.Context) (any, error) {
	if builder.dependencies.Registry == nil {
		return nil, collaboratorMissing(TaskInstalledPrograms, registryCollaboratorNameConstant)
	}
	return builder.dependencies.Registry.InstalledPrograms()
}

// storageVolumes keeps the management sizes and fills them from the host inspector when they are absent.
func (builder catalogueBuilder) storageVolumes(executionContext context.Context) (any, error) {
	if builder.dependencies.Management == nil {
		return nil, collaboratorMissing(TaskStorageVolumes, managementCollaboratorNameConstant)
	}
	volumes, queryError := builder.dependencies.Management.FixedVolumes(executionContext)
	if queryError != nil {
		return nil, queryError
	}
	if builder.dependencies.Host == nil {
		return volumes, nil
	}
	for index := range volumes {
		if volumes[index].TotalBytes > 0 {
			continue
		}
		total, free, usageError := builder.dependencies.Host.VolumeUsage(executionContext, volumes[index].DriveLetter)
		if usageError != nil {
			builder.logger.Debug(volumeUsageFallbackMessageConstant, zap.String(driveLetterFieldNameConstant, volumes[index].DriveLetter), zap.Error(usageError))
			continue
		}
		volumes[index].TotalBytes = total
		volumes[index].FreeBytes = free
	}
	return volumes, nil
}

func (builder catalogueBuilder) sysinternalsSuite(context.Context) (any, error) {
	if builder.dependencies.Sysinternals == nil {
		return nil, collaboratorMissing(TaskSysinternalsSuite, sysinternalsCollaboratorNameConstant)
	}
	return builder.dependencies.Sysinternals.Status()
}

func (builder catalogueBuilder) windowsUpdates(executionContext context.Context) (any, error) {
	if builder.dependencies.Updates == nil {
		return nil, collaboratorMissing(TaskWindowsUpdates, updatesCollaboratorNameConstant)
	}
	return builder.dependencies.Updates.PendingUpdates(executionContext)
}

func collaboratorMissing(task taskengine.TaskName, collaborator string) error {
	return vitalerrors.WrapMessage(vitalerrors.OperationInventoryQuery, string(task), vitalerrors.ErrUnavailable, fmt.Sprintf(collaboratorMissingMessageTemplateConstant, collaborator))
}

var _ ComponentStoreAnalyzer = (*repairtools.Invoker)(nil)
