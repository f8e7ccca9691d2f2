package repairtools

// Outcome is the semantic classification of a repair tool exit code.
type Outcome string

// Supported outcomes.
const (
	OutcomeSuccess           Outcome = "success"
	OutcomePendingOperations Outcome = "pending_operations"
	OutcomeRequiresCleanup   Outcome = "requires_cleanup"
	OutcomeContainsErrors    Outcome = "contains_errors"
	OutcomeFailure           Outcome = "failure"
	OutcomeUnsupported       Outcome = "unsupported"
)

const (
	// ComponentStorePendingExitCode is the CBS_E_PENDING status (0x800F0806) returned by DISM while servicing operations await a reboot.
	ComponentStorePendingExitCode = -2146498554
	// FileSystemRequiresCleanupExitCode is the CHKDSK status reporting that the volume needs cleanup.
	FileSystemRequiresCleanupExitCode = 2
	// FileSystemContainsErrorsExitCode is the CHKDSK status reporting that the volume contains errors.
	FileSystemContainsErrorsExitCode = 3
)

// IsFailure reports whether the outcome is a generic failure.
func (outcome Outcome) IsFailure() bool {
	return outcome == OutcomeFailure
}

// IsWarning reports whether the outcome signals a non-fatal condition worth surfacing.
func (outcome Outcome) IsWarning() bool {
	switch outcome {
	case OutcomePendingOperations, OutcomeRequiresCleanup, OutcomeContainsErrors:
		return true
	default:
		return false
	}
}

// ClassifyComponentStore maps a DISM exit code onto an outcome. The code is compared as a
// signed 32-bit status, so the unsigned form reported by the process and the signed HRESULT agree.
func ClassifyComponentStore(exitCode int) Outcome {
	switch int(int32(uint32(exitCode))) {
	case 0:
		return OutcomeSuccess
	case ComponentStorePendingExitCode:
		return OutcomePendingOperations
	default:
		return OutcomeFailure
	}
}

// ClassifySystemFileChecker maps an SFC exit code onto an outcome.
func ClassifySystemFileChecker(exitCode int) Outcome {
	if exitCode == 0 {
		return OutcomeSuccess
	}
	return OutcomeFailure
}

// ClassifyFileSystemCheck maps a CHKDSK exit code onto an outcome.
func ClassifyFileSystemCheck(exitCode int) Outcome {
	switch exitCode {
	case 0:
		return OutcomeSuccess
	case FileSystemRequiresCleanupExitCode:
		return OutcomeRequiresCleanup
	case FileSystemContainsErrorsExitCode:
		return OutcomeContainsErrors
	default:
		return OutcomeFailure
	}
}
