// Package maintenance defines the runner that cleans up and refreshes the host.
package maintenance

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"

	"go.uber.org/zap"

	vitalerrors "github.com/tyemirov/winvitals/internal/errors"
	"github.com/tyemirov/winvitals/internal/execshell"
	"github.com/tyemirov/winvitals/internal/filesystem"
	"github.com/tyemirov/winvitals/internal/taskengine"
)

// Maintenance task names in catalogue order.
const (
	TaskClearInternetExplorerCache taskengine.TaskName = "ClearInternetExplorerCache"
	TaskComponentStoreCleanup      taskengine.TaskName = "ComponentStoreCleanup"
	TaskDeleteErrorReports         taskengine.TaskName = "DeleteErrorReports"
	TaskDeleteTemporaryFiles       taskengine.TaskName = "DeleteTemporaryFiles"
	TaskEmptyRecycleBin            taskengine.TaskName = "EmptyRecycleBin"
	TaskPowerShellHelp             taskengine.TaskName = "PowerShellHelp"
	TaskSysinternalsSuite          taskengine.TaskName = "SysinternalsSuite"
	TaskWindowsUpdates             taskengine.TaskName = "WindowsUpdates"
)

const (
	// ClearBrowsingDataFlags removes history, cookies, temporary files, form data, passwords and add-on data.
	ClearBrowsingDataFlags = "4351"

	clearTracksEntryPointConstant              = "InetCpl.cpl,ClearMyTracksByProcess"
	powerShellNoProfileArgumentConstant        = "-NoProfile"
	powerShellNonInteractiveArgumentConstant   = "-NonInteractive"
	powerShellCommandArgumentConstant          = "-Command"
	powerShellUpdateHelpScriptConstant         = "Update-Help -Force"
	collaboratorMissingMessageTemplateConstant = "%s collaborator not configured"
	internetOptionsMissingTemplateConstant     = "internet options library %s not found"
	nonZeroExitMessageTemplateConstant         = "%s exited with code %d"
)

// CommandOutcome captures the exit code and output of an external program run by a task.
type CommandOutcome struct {
	Command   string   `json:"command" yaml:"command"`
	Arguments []string `json:"arguments" yaml:"arguments"`
	ExitCode  int      `json:"exitCode" yaml:"exitCode"`
	Output    []string `json:"output" yaml:"output"`
}

// RecycleBinOutcome reports that the recycle bins were emptied.
type RecycleBinOutcome struct {
	Emptied bool `json:"emptied" yaml:"emptied"`
}

type catalogueBuilder struct {
	dependencies Dependencies
	fileSystem   filesystem.FileSystem
	logger       *zap.Logger
}

// NewCatalogue builds the maintenance catalogue. Tasks whose collaborator is missing report Unavailable.
func NewCatalogue(dependencies Dependencies) (taskengine.Catalogue, error) {
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	builder := catalogueBuilder{
		dependencies: dependencies,
		fileSystem:   filesystem.Resolve(dependencies.FileSystem),
		logger:       logger,
	}

	return taskengine.NewCatalogue(
		taskengine.RunnerMaintenance,
		taskengine.TaskDefinition{Name: TaskClearInternetExplorerCache, Execute: builder.clearInternetExplorerCache},
		taskengine.TaskDefinition{Name: TaskComponentStoreCleanup, Privileged: true, Execute: builder.componentStoreCleanup},
		taskengine.TaskDefinition{Name: TaskDeleteErrorReports, Execute: builder.deleteErrorReports},
		taskengine.TaskDefinition{Name: TaskDeleteTemporaryFiles, Execute: builder.deleteTemporaryFiles},
		taskengine.TaskDefinition{Name: TaskEmptyRecycleBin, Execute: builder.emptyRecycleBin},
		taskengine.TaskDefinition{Name: TaskPowerShellHelp, Execute: builder.powerShellHelp},
		taskengine.TaskDefinition{Name: TaskSysinternalsSuite, Execute: builder.sysinternalsSuite},
		taskengine.TaskDefinition{Name: TaskWindowsUpdates, Privileged: true, Execute: builder.windowsUpdates},
	)
}

func (builder catalogueBuilder) clearInternetExplorerCache(executionContext context.Context) (any, error) {
	library := builder.dependencies.Paths.InternetOptionsLibrary
	if _, statError := builder.fileSystem.Stat(library); statError != nil {
		if errors.Is(statError, fs.ErrNotExist) {
			return nil, vitalerrors.WrapMessage(vitalerrors.OperationMaintenanceAction, string(TaskClearInternetExplorerCache), vitalerrors.ErrUnavailable, fmt.Sprintf(internetOptionsMissingTemplateConstant, library))
		}
		return nil, vitalerrors.Wrap(vitalerrors.OperationMaintenanceAction, library, vitalerrors.ErrIOFailure, statError)
	}
	return builder.runProgram(executionContext, TaskClearInternetExplorerCache, execshell.CommandRunDLL, clearTracksEntryPointConstant, ClearBrowsingDataFlags)
}

func (builder catalogueBuilder) componentStoreCleanup(executionContext context.Context) (any, error) {
	if builder.dependencies.ComponentStore == nil {
		return nil, collaboratorMissing(TaskComponentStoreCleanup, "component store cleaner")
	}
	return builder.dependencies.ComponentStore.CleanupComponentStore(executionContext)
}

func (builder catalogueBuilder) deleteErrorReports(context.Context) (any, error) {
	return EmptyDirectories(builder.fileSystem, builder.dependencies.Paths.ErrorReportDirectories, builder.logger)
}

func (builder catalogueBuilder) deleteTemporaryFiles(context.Context) (any, error) {
	return EmptyDirectories(builder.fileSystem, builder.dependencies.Paths.TemporaryDirectories, builder.logger)
}

func (builder catalogueBuilder) emptyRecycleBin(context.Context) (any, error) {
	if builder.dependencies.RecycleBin == nil {
		return nil, collaboratorMissing(TaskEmptyRecycleBin, "recycle bin")
	}
	if emptyError := builder.dependencies.RecycleBin.Empty(); emptyError != nil {
		return nil, emptyError
	}
	return RecycleBinOutcome{Emptied: true}, nil
}

func (builder catalogueBuilder) powerShellHelp(executionContext context.Context) (any, error) {
	return builder.runProgram(executionContext, TaskPowerShellHelp, execshell.CommandPowerShell,
		powerShellNoProfileArgumentConstant,
		powerShellNonInteractiveArgumentConstant,
		powerShellCommandArgumentConstant,
		powerShellUpdateHelpScriptConstant,
	)
}

func (builder catalogueBuilder) sysinternalsSuite(executionContext context.Context) (any, error) {
	if builder.dependencies.Sysinternals == nil {
		return nil, collaboratorMissing(TaskSysinternalsSuite, "sysinternals updater")
	}
	return builder.dependencies.Sysinternals.Update(executionContext)
}

func (builder catalogueBuilder) windowsUpdates(executionContext context.Context) (any, error) {
	if builder.dependencies.Updates == nil {
		return nil, collaboratorMissing(TaskWindowsUpdates, "update installer")
	}
	return builder.dependencies.Updates.InstallPendingUpdates(executionContext)
}

// runProgram executes a program and classifies its failure: a missing executable is unavailable,
// a non-zero exit fails with the captured output.
func (builder catalogueBuilder) runProgram(executionContext context.Context, task taskengine.TaskName, name execshell.CommandName, arguments ...string) (any, error) {
	if builder.dependencies.Executor == nil {
		return nil, collaboratorMissing(task, "command executor")
	}

	command := execshell.ShellCommand{Name: name, Details: execshell.CommandDetails{Arguments: arguments}}
	result, executionError := builder.dependencies.Executor.Execute(executionContext, command)
	if executionError != nil {
		var failedError execshell.CommandFailedError
		switch {
		case errors.As(executionError, &failedError):
			outcome := newCommandOutcome(command, failedError.Result)
			return outcome, vitalerrors.WrapMessage(vitalerrors.OperationMaintenanceAction, string(task), vitalerrors.ErrToolNonZeroExit, fmt.Sprintf(nonZeroExitMessageTemplateConstant, name, failedError.Result.ExitCode))
		case errors.Is(executionError, exec.ErrNotFound):
			return nil, vitalerrors.Wrap(vitalerrors.OperationMaintenanceAction, string(task), vitalerrors.ErrUnavailable, executionError)
		default:
			return nil, vitalerrors.Wrap(vitalerrors.OperationMaintenanceAction, string(task), vitalerrors.ErrIOFailure, executionError)
		}
	}
	return newCommandOutcome(command, result), nil
}

func newCommandOutcome(command execshell.ShellCommand, result execshell.ExecutionResult) CommandOutcome {
	return CommandOutcome{
		Command:   string(command.Name),
		Arguments: append([]string{}, command.Details.Arguments...),
		ExitCode:  result.ExitCode,
		Output:    append([]string{}, result.OutputLines...),
	}
}

func collaboratorMissing(task taskengine.TaskName, collaborator string) error {
	return vitalerrors.WrapMessage(vitalerrors.OperationMaintenanceAction, string(task), vitalerrors.ErrUnavailable, fmt.Sprintf(collaboratorMissingMessageTemplateConstant, collaborator))
}
