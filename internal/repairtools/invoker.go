package repairtools

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	vitalerrors "github.com/tyemirov/winvitals/internal/errors"
	"github.com/tyemirov/winvitals/internal/execshell"
)

const (
	dismOnlineArgumentConstant              = "/Online"
	dismCleanupImageArgumentConstant        = "/Cleanup-Image"
	dismScanHealthArgumentConstant          = "/ScanHealth"
	dismRestoreHealthArgumentConstant       = "/RestoreHealth"
	dismAnalyzeArgumentConstant             = "/AnalyzeComponentStore"
	dismStartCleanupArgumentConstant        = "/StartComponentCleanup"
	sfcVerifyOnlyArgumentConstant           = "/VERIFYONLY"
	sfcScanNowArgumentConstant              = "/SCANNOW"
	chkdskScanArgumentConstant              = "/scan"
	chkdskSpotFixArgumentConstant           = "/spotfix"
	executorNotConfiguredMessageConstant    = "repair tool invoker requires a command executor"
	nonZeroExitMessageTemplateConstant      = "%s exited with code %d"
	volumeFailureMessageTemplateConstant    = "filesystem check failed on %s"
	volumeRepairUnsupportedTemplateConstant = "%s does not support online repair"
)

// ErrExecutorNotConfigured indicates the invoker was created without an executor.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// CommandExecutor runs shell commands and toggles the output decoding mode.
type CommandExecutor interface {
	Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)
	SwitchOutputEncoding(encoding execshell.OutputEncoding) func()
}

// Invoker wraps DISM, SFC and CHKDSK and classifies their exit codes.
type Invoker struct {
	executor CommandExecutor
}

// NewInvoker constructs an invoker backed by the executor.
func NewInvoker(executor CommandExecutor) (*Invoker, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Invoker{executor: executor}, nil
}

// ScanComponentStore checks the component store, restoring it when the intent is repair.
func (invoker *Invoker) ScanComponentStore(executionContext context.Context, intent Intent) (ToolReport, error) {
	if intent == IntentRepair {
		return invoker.runComponentStore(executionContext, OperationRestoreHealth, dismRestoreHealthArgumentConstant)
	}
	return invoker.runComponentStore(executionContext, OperationScanHealth, dismScanHealthArgumentConstant)
}

// AnalyzeComponentStore reports component store size and cleanup recommendations.
func (invoker *Invoker) AnalyzeComponentStore(executionContext context.Context) (ToolReport, error) {
	return invoker.runComponentStore(executionContext, OperationAnalyzeComponentStore, dismAnalyzeArgumentConstant)
}

// CleanupComponentStore removes superseded component versions.
func (invoker *Invoker) CleanupComponentStore(executionContext context.Context) (ToolReport, error) {
	return invoker.runComponentStore(executionContext, OperationStartComponentCleanup, dismStartCleanupArgumentConstant)
}

func (invoker *Invoker) runComponentStore(executionContext context.Context, operation Operation, operationArgument string) (ToolReport, error) {
	command := execshell.ShellCommand{
		Name: execshell.CommandDISM,
		Details: execshell.CommandDetails{
			Arguments: []string{dismOnlineArgumentConstant, dismCleanupImageArgumentConstant, operationArgument},
		},
	}
	return invoker.invoke(executionContext, ToolComponentStore, operation, "", command, ClassifyComponentStore)
}

// CheckSystemFiles runs the system file checker. Its output is decoded as UTF-16LE for the duration of the call.
func (invoker *Invoker) CheckSystemFiles(executionContext context.Context, intent Intent) (ToolReport, error) {
	operation := OperationVerifyOnly
	argument := sfcVerifyOnlyArgumentConstant
	if intent == IntentRepair {
		operation = OperationScanNow
		argument = sfcScanNowArgumentConstant
	}

	restoreEncoding := invoker.executor.SwitchOutputEncoding(execshell.OutputEncodingUTF16LE)
	defer restoreEncoding()

	command := execshell.ShellCommand{
		Name:    execshell.CommandSFC,
		Details: execshell.CommandDetails{Arguments: []string{argument}},
	}
	return invoker.invoke(executionContext, ToolSystemFileChecker, operation, "", command, ClassifySystemFileChecker)
}

// CheckVolume runs CHKDSK against a single volume that supports online verification.
func (invoker *Invoker) CheckVolume(executionContext context.Context, volume Volume, intent Intent) (ToolReport, error) {
	driveLetter := NormalizeDriveLetter(volume.DriveLetter)
	arguments := []string{driveLetter}
	operation := OperationVolumeScan

	switch {
	case intent == IntentRepair:
		if !SupportsOnlineRepair(volume.FileSystem) {
			return ToolReport{Tool: ToolFileSystemCheck, Outcome: OutcomeUnsupported}, vitalerrors.WrapMessage(vitalerrors.OperationToolInvocation, driveLetter, vitalerrors.ErrNotApplicable, fmt.Sprintf(volumeRepairUnsupportedTemplateConstant, volume.FileSystem))
		}
		operation = OperationVolumeSpotFix
		arguments = append(arguments, chkdskScanArgumentConstant, chkdskSpotFixArgumentConstant)
	case SupportsOnlineRepair(volume.FileSystem):
		arguments = append(arguments, chkdskScanArgumentConstant)
	}

	command := execshell.ShellCommand{
		Name:    execshell.CommandCHKDSK,
		Details: execshell.CommandDetails{Arguments: arguments},
	}
	return invoker.invoke(executionContext, ToolFileSystemCheck, operation, driveLetter, command, ClassifyFileSystemCheck)
}

// ScanVolumes checks every volume supporting online verification, in the order given.
// Volumes outside the online verification set are not scanned. In repair mode, volumes
// outside the online repair subset are reported with the unsupported outcome.
// A generic failure on any volume yields the full list together with an error.
func (invoker *Invoker) ScanVolumes(executionContext context.Context, volumes []Volume, intent Intent) ([]VolumeScan, error) {
	scans := make([]VolumeScan, 0, len(volumes))
	failedDrives := make([]string, 0)

	for _, volume := range volumes {
		driveLetter := NormalizeDriveLetter(volume.DriveLetter)
		if len(driveLetter) == 0 || !SupportsOnlineVerification(volume.FileSystem) {
			continue
		}

		scan := VolumeScan{DriveLetter: driveLetter, FileSystem: volume.FileSystem}
		if intent == IntentRepair && !SupportsOnlineRepair(volume.FileSystem) {
			scan.Outcome = OutcomeUnsupported
			scans = append(scans, scan)
			continue
		}

		report, checkError := invoker.CheckVolume(executionContext, volume, intent)
		if checkError != nil && !errors.Is(checkError, vitalerrors.ErrToolNonZeroExit) {
			return scans, checkError
		}

		invocation := report.Invocation
		scan.Outcome = report.Outcome
		scan.Invocation = &invocation
		scans = append(scans, scan)
		if report.Outcome.IsFailure() {
			failedDrives = append(failedDrives, driveLetter)
		}
	}

	if len(failedDrives) > 0 {
		return scans, vitalerrors.WrapMessage(vitalerrors.OperationToolInvocation, string(ToolFileSystemCheck), vitalerrors.ErrToolNonZeroExit, fmt.Sprintf(volumeFailureMessageTemplateConstant, strings.Join(failedDrives, ", ")))
	}
	return scans, nil
}

func (invoker *Invoker) invoke(executionContext context.Context, tool Tool, operation Operation, targetPath string, command execshell.ShellCommand, classify func(int) Outcome) (ToolReport, error) {
	result, executionError := invoker.executor.Execute(executionContext, command)
	if executionError != nil {
		var failedError execshell.CommandFailedError
		if !errors.As(executionError, &failedError) {
			return ToolReport{Tool: tool}, classifyExecutionError(operation, executionError)
		}
		result = failedError.Result
	}

	exitCode := execshell.NormalizeExitCode(result.ExitCode)
	report := ToolReport{
		Tool: tool,
		Invocation: ToolInvocation{
			Operation:  operation,
			TargetPath: targetPath,
			Output:     append([]string{}, result.OutputLines...),
			ExitCode:   exitCode,
		},
		Outcome: classify(exitCode),
	}

	if report.Outcome.IsFailure() {
		return report, vitalerrors.WrapMessage(vitalerrors.OperationToolInvocation, string(operation), vitalerrors.ErrToolNonZeroExit, fmt.Sprintf(nonZeroExitMessageTemplateConstant, command.Name, exitCode))
	}
	return report, nil
}

func classifyExecutionError(operation Operation, executionError error) error {
	if errors.Is(executionError, exec.ErrNotFound) {
		return vitalerrors.Wrap(vitalerrors.OperationToolInvocation, string(operation), vitalerrors.ErrUnavailable, executionError)
	}
	return vitalerrors.Wrap(vitalerrors.OperationToolInvocation, string(operation), vitalerrors.ErrIOFailure, executionError)
}
