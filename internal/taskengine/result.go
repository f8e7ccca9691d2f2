package taskengine

import (
	"errors"
	"fmt"

	vitalerrors "github.com/tyemirov/winvitals/internal/errors"
)

// ResultStatus tags the TaskResult variant.
type ResultStatus string

// Result variants.
const (
	StatusSkipped       ResultStatus = "skipped"
	StatusOK            ResultStatus = "ok"
	StatusNotApplicable ResultStatus = "not_applicable"
	StatusUnavailable   ResultStatus = "unavailable"
	StatusFailed        ResultStatus = "failed"
)

const taskPanicMessageTemplateConstant = "task panicked: %v"

// AllStatuses lists every variant in reporting order.
func AllStatuses() []ResultStatus {
	return []ResultStatus{StatusOK, StatusSkipped, StatusNotApplicable, StatusUnavailable, StatusFailed}
}

// TaskResult is the outcome of one catalogue entry.
// Payload is set for ok results and optionally for failed ones; Reason is set for every
// variant other than ok and skipped.
type TaskResult struct {
	Status  ResultStatus
	Reason  string
	Payload any
	Err     error
}

// Skipped marks a disabled task.
func Skipped() TaskResult {
	return TaskResult{Status: StatusSkipped}
}

// Succeeded wraps a task payload.
func Succeeded(payload any) TaskResult {
	return TaskResult{Status: StatusOK, Payload: payload}
}

// NotApplicable records a task that does not apply to this host.
func NotApplicable(reason string) TaskResult {
	return TaskResult{Status: StatusNotApplicable, Reason: reason}
}

// Unavailable records a task whose optional dependency is absent.
func Unavailable(reason string) TaskResult {
	return TaskResult{Status: StatusUnavailable, Reason: reason}
}

// Failed records an unexpected task failure, keeping any partial payload.
func Failed(err error, payload any) TaskResult {
	reason := ""
	if err != nil {
		reason = err.Error()
	}
	return TaskResult{Status: StatusFailed, Reason: reason, Payload: payload, Err: err}
}

// ResultFromOutcome converts an executor return pair into a result variant.
func ResultFromOutcome(payload any, err error) TaskResult {
	switch {
	case err == nil:
		return Succeeded(payload)
	case errors.Is(err, vitalerrors.ErrUnavailable):
		return Unavailable(err.Error())
	case errors.Is(err, vitalerrors.ErrNotApplicable):
		return NotApplicable(err.Error())
	default:
		return Failed(err, payload)
	}
}

func panicResult(recovered any) TaskResult {
	return Failed(fmt.Errorf(taskPanicMessageTemplateConstant, recovered), nil)
}
