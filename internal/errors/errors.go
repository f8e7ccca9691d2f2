package errors

import (
	stdErrors "errors"
	"fmt"
)

// Operation identifies the logical operation producing a contextual error.
type Operation string

const (
	// OperationTaskSelection denotes task selector resolution.
	OperationTaskSelection Operation = "task.selection"
	// OperationPrivilegeCheck denotes the upfront elevation precondition.
	OperationPrivilegeCheck Operation = "task.privilege"
	// OperationTaskExecution denotes a single task executor.
	OperationTaskExecution Operation = "task.execute"
	// OperationToolInvocation denotes external repair tool invocations.
	OperationToolInvocation Operation = "tool.invoke"
	// OperationArtifactUpdate denotes versioned artifact updates.
	OperationArtifactUpdate Operation = "artifact.update"
	// OperationSearchPathUpdate denotes machine search path maintenance.
	OperationSearchPathUpdate Operation = "artifact.search_path"
	// OperationInventoryQuery denotes OS inventory queries.
	OperationInventoryQuery Operation = "inventory.query"
	// OperationMaintenanceAction denotes cleanup and maintenance actions.
	OperationMaintenanceAction Operation = "maintenance.action"
)

// Sentinel describes a stable error code shared across runners.
type Sentinel string

// Error returns the sentinel code string.
func (sentinel Sentinel) Error() string {
	return string(sentinel)
}

// Code exposes the sentinel code string.
func (sentinel Sentinel) Code() string {
	return string(sentinel)
}

// OperationError annotates an error with operation metadata.
type OperationError struct {
	operation Operation
	subject   string
	err       error
	message   string
}

// Error implements the error interface.
func (operationError OperationError) Error() string {
	if len(operationError.message) > 0 {
		if len(operationError.subject) == 0 {
			return fmt.Sprintf("%s: %s", operationError.operation, operationError.message)
		}
		return fmt.Sprintf("%s[%s]: %s", operationError.operation, operationError.subject, operationError.message)
	}
	if len(operationError.subject) == 0 {
		return fmt.Sprintf("%s: %v", operationError.operation, operationError.err)
	}
	return fmt.Sprintf("%s[%s]: %v", operationError.operation, operationError.subject, operationError.err)
}

// Unwrap exposes the underlying error chain.
func (operationError OperationError) Unwrap() error {
	return operationError.err
}

// Operation returns the originating operation identifier.
func (operationError OperationError) Operation() Operation {
	return operationError.operation
}

// Subject returns the domain subject (typically a task name or path) related to the error.
func (operationError OperationError) Subject() string {
	return operationError.subject
}

// Code surfaces the sentinel code of the wrapped error when present.
func (operationError OperationError) Code() string {
	if coder, found := findSentinel(operationError.err); found {
		return coder.Code()
	}
	return ""
}

// Message exposes the formatted message when provided via WrapMessage.
func (operationError OperationError) Message() string {
	return operationError.message
}

// Wrap constructs an OperationError combining the provided metadata with the base sentinel.
// The detail error stays reachable through errors.As and errors.Is.
func Wrap(operation Operation, subject string, sentinel Sentinel, detail error) error {
	if len(sentinel) == 0 {
		return OperationError{operation: operation, subject: subject, err: detail}
	}
	baseError := error(sentinel)
	if detail != nil {
		baseError = fmt.Errorf("%w: %w", sentinel, detail)
	}
	return OperationError{operation: operation, subject: subject, err: baseError}
}

// WrapMessage constructs an OperationError combining the provided metadata with a formatted message.
func WrapMessage(operation Operation, subject string, sentinel Sentinel, message string) error {
	if len(message) == 0 {
		return Wrap(operation, subject, sentinel, nil)
	}
	return OperationError{operation: operation, subject: subject, err: fmt.Errorf("%w: %s", sentinel, message), message: message}
}

// CodeOf returns the sentinel code carried anywhere in the error chain.
func CodeOf(err error) string {
	if sentinel, found := findSentinel(err); found {
		return sentinel.Code()
	}
	return ""
}

func findSentinel(err error) (Sentinel, bool) {
	if err == nil {
		return "", false
	}
	var sentinel Sentinel
	if stdErrors.As(err, &sentinel) {
		return sentinel, true
	}
	return "", false
}

var (
	// ErrValidationFailed indicates invalid selector input supplied before a run.
	ErrValidationFailed Sentinel = "validation_failed"
	// ErrPrivilegeRequired indicates an enabled task requires an elevated process.
	ErrPrivilegeRequired Sentinel = "privilege_required"
	// ErrUnavailable indicates an optional OS feature, component, or tool is absent.
	ErrUnavailable Sentinel = "unavailable"
	// ErrNotApplicable indicates a task does not apply to the current host.
	ErrNotApplicable Sentinel = "not_applicable"
	// ErrToolNonZeroExit indicates an external tool exit code classified as a failure.
	ErrToolNonZeroExit Sentinel = "tool_non_zero_exit"
	// ErrDownloadFailed indicates a remote artifact could not be fetched.
	ErrDownloadFailed Sentinel = "download_failed"
	// ErrIOFailure indicates a local filesystem, registry, or process failure.
	ErrIOFailure Sentinel = "io_failure"
	// ErrCatalogueInvalid indicates a malformed task catalogue definition.
	ErrCatalogueInvalid Sentinel = "catalogue_invalid"
)
