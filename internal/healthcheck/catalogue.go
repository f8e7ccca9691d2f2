// Package healthcheck defines the runner that verifies or repairs the component store,
// the protected system files and the fixed volumes.
package healthcheck

import (
	"context"
	"fmt"

	vitalerrors "github.com/tyemirov/winvitals/internal/errors"
	"github.com/tyemirov/winvitals/internal/platform"
	"github.com/tyemirov/winvitals/internal/repairtools"
	"github.com/tyemirov/winvitals/internal/taskengine"
)

// Health check task names in catalogue order.
const (
	TaskComponentStoreScan taskengine.TaskName = "ComponentStoreScan"
	TaskFileSystemScans    taskengine.TaskName = "FileSystemScans"
	TaskSystemFileChecker  taskengine.TaskName = "SystemFileChecker"
)

const (
	collaboratorMissingMessageTemplateConstant = "%s collaborator not configured"
	unknownIntentMessageTemplateConstant       = "unknown tool intent %q"
)

// RepairTools wraps the component store, system file and filesystem checkers.
type RepairTools interface {
	ScanComponentStore(executionContext context.Context, intent repairtools.Intent) (repairtools.ToolReport, error)
	CheckSystemFiles(executionContext context.Context, intent repairtools.Intent) (repairtools.ToolReport, error)
	ScanVolumes(executionContext context.Context, volumes []repairtools.Volume, intent repairtools.Intent) ([]repairtools.VolumeScan, error)
}

// VolumeLister enumerates the fixed volumes considered for filesystem checks.
type VolumeLister interface {
	FixedVolumes(executionContext context.Context) ([]platform.StorageVolume, error)
}

// Dependencies groups the collaborators used by the health check tasks.
type Dependencies struct {
	Tools   RepairTools
	Volumes VolumeLister
}

type catalogueBuilder struct {
	dependencies Dependencies
	intent       repairtools.Intent
}

// NewCatalogue builds the health check catalogue for the intent. Every task requires elevation.
// An intent other than verify or repair is rejected.
func NewCatalogue(dependencies Dependencies, intent repairtools.Intent) (taskengine.Catalogue, error) {
	if intent != repairtools.IntentVerify && intent != repairtools.IntentRepair {
		return taskengine.Catalogue{}, vitalerrors.WrapMessage(vitalerrors.OperationTaskSelection, string(taskengine.RunnerHealthCheck), vitalerrors.ErrValidationFailed, fmt.Sprintf(unknownIntentMessageTemplateConstant, intent))
	}
	builder := catalogueBuilder{dependencies: dependencies, intent: intent}

	return taskengine.NewCatalogue(
		taskengine.RunnerHealthCheck,
		taskengine.TaskDefinition{Name: TaskComponentStoreScan, Privileged: true, Execute: builder.componentStoreScan},
		taskengine.TaskDefinition{Name: TaskFileSystemScans, Privileged: true, Execute: builder.fileSystemScans},
		taskengine.TaskDefinition{Name: TaskSystemFileChecker, Privileged: true, Execute: builder.systemFileChecker},
	)
}

func (builder catalogueBuilder) componentStoreScan(executionContext context.Context) (any, error) {
	if builder.dependencies.Tools == nil {
		return nil, collaboratorMissing(TaskComponentStoreScan, "repair tools")
	}
	return builder.dependencies.Tools.ScanComponentStore(executionContext, builder.intent)
}

// fileSystemScans reports the per-volume list both on success and on failure.
func (builder catalogueBuilder) fileSystemScans(executionContext context.Context) (any, error) {
	if builder.dependencies.Tools == nil {
		return nil, collaboratorMissing(TaskFileSystemScans, "repair tools")
	}
	if builder.dependencies.Volumes == nil {
		return nil, collaboratorMissing(TaskFileSystemScans, "volume lister")
	}

	storageVolumes, listError := builder.dependencies.Volumes.FixedVolumes(executionContext)
	if listError != nil {
		return nil, listError
	}
	volumes := make([]repairtools.Volume, 0, len(storageVolumes))
	for _, storageVolume := range storageVolumes {
		volumes = append(volumes, repairtools.Volume{
			DriveLetter: storageVolume.DriveLetter,
			Label:       storageVolume.Label,
			FileSystem:  storageVolume.FileSystem,
		})
	}
	return builder.dependencies.Tools.ScanVolumes(executionContext, volumes, builder.intent)
}

func (builder catalogueBuilder) systemFileChecker(executionContext context.Context) (any, error) {
	if builder.dependencies.Tools == nil {
		return nil, collaboratorMissing(TaskSystemFileChecker, "repair tools")
	}
	return builder.dependencies.Tools.CheckSystemFiles(executionContext, builder.intent)
}

func collaboratorMissing(task taskengine.TaskName, collaborator string) error {
	return vitalerrors.WrapMessage(vitalerrors.OperationToolInvocation, string(task), vitalerrors.ErrUnavailable, fmt.Sprintf(collaboratorMissingMessageTemplateConstant, collaborator))
}
