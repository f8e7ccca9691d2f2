package taskengine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	vitalerrors "github.com/tyemirov/winvitals/internal/errors"
)

const (
	privilegeCheckerMissingMessageConstant   = "task runner requires a privilege checker"
	privilegeRequiredMessageTemplateConstant = "tasks %s require an elevated process"
	runStartedMessageConstant                = "task run starting"
	runCompletedMessageConstant              = "task run completed"
	taskStartedMessageConstant               = "task starting"
	taskCompletedMessageConstant             = "task completed"
	taskSkippedMessageConstant               = "task skipped"
	runnerFieldNameConstant                  = "runner"
	runIdentifierFieldNameConstant           = "run_id"
	taskFieldNameConstant                    = "task"
	statusFieldNameConstant                  = "status"
	reasonFieldNameConstant                  = "reason"
	durationFieldNameConstant                = "duration"
	enabledTasksFieldNameConstant            = "enabled_tasks"
)

// ErrPrivilegeCheckerMissing indicates the runner was constructed without a privilege checker.
var ErrPrivilegeCheckerMissing = errors.New(privilegeCheckerMissingMessageConstant)

// PrivilegeChecker reports whether the current process is elevated.
type PrivilegeChecker interface {
	IsElevated() (bool, error)
}

// PrivilegeCheckerFunc adapts a function to PrivilegeChecker.
type PrivilegeCheckerFunc func() (bool, error)

// IsElevated calls the wrapped function.
func (checker PrivilegeCheckerFunc) IsElevated() (bool, error) {
	return checker()
}

// RunnerDependencies groups optional collaborators of a Runner.
type RunnerDependencies struct {
	Logger        *zap.Logger
	Clock         func() time.Time
	RunIdentifier func() string
}

// Runner executes a catalogue one task at a time in catalogue order.
type Runner struct {
	catalogue        Catalogue
	privilegeChecker PrivilegeChecker
	logger           *zap.Logger
	clock            func() time.Time
	runIdentifier    func() string
}

// NewRunner constructs a runner for the catalogue.
func NewRunner(catalogue Catalogue, privilegeChecker PrivilegeChecker, dependencies RunnerDependencies) (*Runner, error) {
	if privilegeChecker == nil {
		return nil, ErrPrivilegeCheckerMissing
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := dependencies.Clock
	if clock == nil {
		clock = time.Now
	}
	runIdentifier := dependencies.RunIdentifier
	if runIdentifier == nil {
		runIdentifier = uuid.NewString
	}
	return &Runner{
		catalogue:        catalogue,
		privilegeChecker: privilegeChecker,
		logger:           logger,
		clock:            clock,
		runIdentifier:    runIdentifier,
	}, nil
}

// Catalogue exposes the runner's task list.
func (runner *Runner) Catalogue() Catalogue {
	return runner.catalogue
}

// Run resolves the selection, checks elevation once when any enabled task is privileged,
// and executes every enabled task. Selection and privilege errors abort before any task runs;
// every other failure is recorded in the report.
func (runner *Runner) Run(executionContext context.Context, input SelectorInput) (Report, error) {
	selection, selectionError := ResolveSelection(runner.catalogue, input)
	if selectionError != nil {
		return Report{}, selectionError
	}

	if privilegeError := runner.requirePrivilege(selection); privilegeError != nil {
		return Report{}, privilegeError
	}

	report := Report{
		RunID:     runner.runIdentifier(),
		Runner:    runner.catalogue.Runner(),
		StartedAt: runner.clock(),
		Entries:   make([]ReportEntry, 0, runner.catalogue.Len()),
	}
	runnerField := zap.String(runnerFieldNameConstant, string(report.Runner))
	runner.logger.Info(runStartedMessageConstant,
		runnerField,
		zap.String(runIdentifierFieldNameConstant, report.RunID),
		zap.Strings(enabledTasksFieldNameConstant, taskNameStrings(selection.EnabledNames())),
	)

	for _, definition := range runner.catalogue.definitionsInOrder() {
		if !selection.Enabled(definition.Name) {
			runner.logger.Debug(taskSkippedMessageConstant, runnerField, zap.String(taskFieldNameConstant, string(definition.Name)))
			report.Entries = append(report.Entries, ReportEntry{Task: definition.Name, Result: Skipped()})
			continue
		}

		runner.logger.Debug(taskStartedMessageConstant, runnerField, zap.String(taskFieldNameConstant, string(definition.Name)))
		startedAt := runner.clock()
		result := executeTask(executionContext, definition)
		duration := runner.clock().Sub(startedAt)
		report.Entries = append(report.Entries, ReportEntry{Task: definition.Name, Result: result, Duration: duration})

		fields := []zap.Field{
			runnerField,
			zap.String(taskFieldNameConstant, string(definition.Name)),
			zap.String(statusFieldNameConstant, string(result.Status)),
			zap.Duration(durationFieldNameConstant, duration),
		}
		if len(result.Reason) > 0 {
			fields = append(fields, zap.String(reasonFieldNameConstant, result.Reason))
		}
		if result.Status == StatusFailed {
			runner.logger.Warn(taskCompletedMessageConstant, fields...)
		} else {
			runner.logger.Info(taskCompletedMessageConstant, fields...)
		}
	}

	report.CompletedAt = runner.clock()
	runner.logger.Info(runCompletedMessageConstant, runnerField, zap.String(runIdentifierFieldNameConstant, report.RunID))
	return report, nil
}

func (runner *Runner) requirePrivilege(selection TaskSelection) error {
	privileged := make([]TaskName, 0)
	for _, definition := range runner.catalogue.definitionsInOrder() {
		if definition.Privileged && selection.Enabled(definition.Name) {
			privileged = append(privileged, definition.Name)
		}
	}
	if len(privileged) == 0 {
		return nil
	}

	subject := string(runner.catalogue.Runner())
	elevated, checkError := runner.privilegeChecker.IsElevated()
	if checkError != nil {
		return vitalerrors.Wrap(vitalerrors.OperationPrivilegeCheck, subject, vitalerrors.ErrPrivilegeRequired, checkError)
	}
	if !elevated {
		return vitalerrors.WrapMessage(vitalerrors.OperationPrivilegeCheck, subject, vitalerrors.ErrPrivilegeRequired, fmt.Sprintf(privilegeRequiredMessageTemplateConstant, strings.Join(taskNameStrings(privileged), taskListSeparatorConstant)))
	}
	return nil
}

func executeTask(executionContext context.Context, definition TaskDefinition) (result TaskResult) {
	defer func() {
		if recovered := recover(); recovered != nil {
			result = panicResult(recovered)
		}
	}()
	payload, executionError := definition.Execute(executionContext)
	return ResultFromOutcome(payload, executionError)
}

func taskNameStrings(names []TaskName) []string {
	values := make([]string, 0, len(names))
	for _, name := range names {
		values = append(values, string(name))
	}
	return values
}
