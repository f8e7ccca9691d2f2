package taskengine

import (
	"context"
	"fmt"
	"strings"

	vitalerrors "github.com/tyemirov/winvitals/internal/errors"
)

const (
	emptyTaskNameMessageConstant     = "task name must not be empty"
	duplicateTaskNameMessageConstant = "task %s declared more than once"
	missingExecutorMessageConstant   = "task %s has no executor"
	emptyCatalogueMessageConstant    = "catalogue declares no tasks"
)

// RunnerName identifies one of the task runners.
type RunnerName string

// Known runners.
const (
	RunnerInventory   RunnerName = "inventory"
	RunnerHealthCheck RunnerName = "healthcheck"
	RunnerMaintenance RunnerName = "maintenance"
)

// TaskName identifies a selectable task within a catalogue.
type TaskName string

// TaskExecutor performs one task and returns its payload.
// Errors wrapping the unavailable or not-applicable sentinels map onto the matching result variants.
type TaskExecutor func(executionContext context.Context) (any, error)

// TaskDefinition declares one catalogue entry.
type TaskDefinition struct {
	Name       TaskName
	Privileged bool
	Execute    TaskExecutor
}

// Catalogue is the fixed, ordered task list of a runner.
type Catalogue struct {
	runner      RunnerName
	definitions []TaskDefinition
	index       map[string]int
}

// NewCatalogue validates the definitions and freezes their order.
func NewCatalogue(runner RunnerName, definitions ...TaskDefinition) (Catalogue, error) {
	if len(definitions) == 0 {
		return Catalogue{}, vitalerrors.WrapMessage(vitalerrors.OperationTaskSelection, string(runner), vitalerrors.ErrCatalogueInvalid, emptyCatalogueMessageConstant)
	}

	frozen := make([]TaskDefinition, 0, len(definitions))
	index := make(map[string]int, len(definitions))
	for _, definition := range definitions {
		name := strings.TrimSpace(string(definition.Name))
		if len(name) == 0 {
			return Catalogue{}, vitalerrors.WrapMessage(vitalerrors.OperationTaskSelection, string(runner), vitalerrors.ErrCatalogueInvalid, emptyTaskNameMessageConstant)
		}
		key := normalizeTaskName(name)
		if _, exists := index[key]; exists {
			return Catalogue{}, vitalerrors.WrapMessage(vitalerrors.OperationTaskSelection, string(runner), vitalerrors.ErrCatalogueInvalid, fmt.Sprintf(duplicateTaskNameMessageConstant, name))
		}
		if definition.Execute == nil {
			return Catalogue{}, vitalerrors.WrapMessage(vitalerrors.OperationTaskSelection, string(runner), vitalerrors.ErrCatalogueInvalid, fmt.Sprintf(missingExecutorMessageConstant, name))
		}
		definition.Name = TaskName(name)
		index[key] = len(frozen)
		frozen = append(frozen, definition)
	}

	return Catalogue{runner: runner, definitions: frozen, index: index}, nil
}

// Runner returns the owning runner name.
func (catalogue Catalogue) Runner() RunnerName {
	return catalogue.runner
}

// Names returns task names in execution order.
func (catalogue Catalogue) Names() []TaskName {
	names := make([]TaskName, 0, len(catalogue.definitions))
	for _, definition := range catalogue.definitions {
		names = append(names, definition.Name)
	}
	return names
}

// Len returns the number of tasks.
func (catalogue Catalogue) Len() int {
	return len(catalogue.definitions)
}

// Lookup resolves a caller-supplied name, ignoring case, to its canonical definition.
func (catalogue Catalogue) Lookup(name string) (TaskDefinition, bool) {
	position, exists := catalogue.index[normalizeTaskName(name)]
	if !exists {
		return TaskDefinition{}, false
	}
	return catalogue.definitions[position], true
}

func (catalogue Catalogue) definitionsInOrder() []TaskDefinition {
	return catalogue.definitions
}

func normalizeTaskName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
