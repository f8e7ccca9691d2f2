package taskengine

import (
	"fmt"
	"strings"

	vitalerrors "github.com/tyemirov/winvitals/internal/errors"
)

const (
	conflictingModesMessageConstant     = "include and exclude are mutually exclusive"
	emptyIncludeMessageConstant         = "include requires at least one task name"
	unknownTasksMessageTemplateConstant = "unknown task names: %s (known: %s)"
	taskListSeparatorConstant           = ", "
)

// SelectorInput carries the opt-out or opt-in task sets supplied by the caller.
// A set counts as supplied when its Provided flag is set or it holds names.
type SelectorInput struct {
	Exclude         []string
	Include         []string
	ExcludeProvided bool
	IncludeProvided bool
}

// ExcludeTasks builds an opt-out selector.
func ExcludeTasks(names ...string) SelectorInput {
	return SelectorInput{Exclude: names, ExcludeProvided: true}
}

// IncludeTasks builds an opt-in selector.
func IncludeTasks(names ...string) SelectorInput {
	return SelectorInput{Include: names, IncludeProvided: true}
}

func (input SelectorInput) excludeSupplied() bool {
	return input.ExcludeProvided || len(input.Exclude) > 0
}

func (input SelectorInput) includeSupplied() bool {
	return input.IncludeProvided || len(input.Include) > 0
}

// TaskSelection holds one enabled flag per catalogue task.
type TaskSelection struct {
	order   []TaskName
	enabled map[TaskName]bool
}

// Enabled reports whether the task runs.
func (selection TaskSelection) Enabled(name TaskName) bool {
	return selection.enabled[name]
}

// Names returns every catalogue task in order.
func (selection TaskSelection) Names() []TaskName {
	return append([]TaskName{}, selection.order...)
}

// EnabledNames returns the enabled tasks in catalogue order.
func (selection TaskSelection) EnabledNames() []TaskName {
	names := make([]TaskName, 0, len(selection.order))
	for _, name := range selection.order {
		if selection.enabled[name] {
			names = append(names, name)
		}
	}
	return names
}

// ResolveSelection computes the enabled set for the catalogue.
// Exclude mode enables everything not excluded; include mode enables only the named tasks and
// requires at least one name. Supplying both modes, an empty include set, or an unknown name
// returns an error wrapping ErrValidationFailed.
func ResolveSelection(catalogue Catalogue, input SelectorInput) (TaskSelection, error) {
	subject := string(catalogue.Runner())
	if input.excludeSupplied() && input.includeSupplied() {
		return TaskSelection{}, vitalerrors.WrapMessage(vitalerrors.OperationTaskSelection, subject, vitalerrors.ErrValidationFailed, conflictingModesMessageConstant)
	}

	includeMode := input.includeSupplied()
	requested := input.Exclude
	if includeMode {
		requested = input.Include
	}

	named := make(map[TaskName]bool, len(requested))
	unknown := make([]string, 0)
	for _, rawName := range requested {
		if len(strings.TrimSpace(rawName)) == 0 {
			continue
		}
		definition, exists := catalogue.Lookup(rawName)
		if !exists {
			unknown = append(unknown, strings.TrimSpace(rawName))
			continue
		}
		named[definition.Name] = true
	}

	if len(unknown) > 0 {
		return TaskSelection{}, vitalerrors.WrapMessage(vitalerrors.OperationTaskSelection, subject, vitalerrors.ErrValidationFailed, fmt.Sprintf(unknownTasksMessageTemplateConstant, strings.Join(unknown, taskListSeparatorConstant), joinTaskNames(catalogue.Names())))
	}
	if includeMode && len(named) == 0 {
		return TaskSelection{}, vitalerrors.WrapMessage(vitalerrors.OperationTaskSelection, subject, vitalerrors.ErrValidationFailed, emptyIncludeMessageConstant)
	}

	order := catalogue.Names()
	enabled := make(map[TaskName]bool, len(order))
	for _, name := range order {
		if includeMode {
			enabled[name] = named[name]
		} else {
			enabled[name] = !named[name]
		}
	}
	return TaskSelection{order: order, enabled: enabled}, nil
}

func joinTaskNames(names []TaskName) string {
	return strings.Join(taskNameStrings(names), taskListSeparatorConstant)
}
