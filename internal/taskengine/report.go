package taskengine

import (
	"bytes"
	"encoding/json"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	yamlStringTagConstant    = "!!str"
	runIDKeyConstant         = "runId"
	runnerKeyConstant        = "runner"
	startedAtKeyConstant     = "startedAt"
	completedAtKeyConstant   = "completedAt"
	tasksKeyConstant         = "tasks"
	reportTimeLayoutConstant = time.RFC3339
)

// ReportEntry is the result of one catalogue task together with its wall-clock duration.
type ReportEntry struct {
	Task     TaskName
	Result   TaskResult
	Duration time.Duration
}

// Report holds one entry per catalogue task, in catalogue order.
type Report struct {
	RunID       string
	Runner      RunnerName
	StartedAt   time.Time
	CompletedAt time.Time
	Entries     []ReportEntry
}

// Tasks returns the task names covered by the report, in order.
func (report Report) Tasks() []TaskName {
	names := make([]TaskName, 0, len(report.Entries))
	for _, entry := range report.Entries {
		names = append(names, entry.Task)
	}
	return names
}

// Result looks up the result recorded for the task.
func (report Report) Result(name TaskName) (TaskResult, bool) {
	for _, entry := range report.Entries {
		if entry.Task == name {
			return entry.Result, true
		}
	}
	return TaskResult{}, false
}

// CountByStatus tallies entries per result variant.
func (report Report) CountByStatus() map[ResultStatus]int {
	counts := make(map[ResultStatus]int, len(AllStatuses()))
	for _, entry := range report.Entries {
		counts[entry.Result.Status]++
	}
	return counts
}

type serializedResult struct {
	Status  ResultStatus `json:"status" yaml:"status"`
	Reason  string       `json:"reason,omitempty" yaml:"reason,omitempty"`
	Payload any          `json:"payload,omitempty" yaml:"payload,omitempty"`
}

func (result TaskResult) serialized() serializedResult {
	return serializedResult{Status: result.Status, Reason: result.Reason, Payload: result.Payload}
}

// MarshalJSON renders the result as its tagged form.
func (result TaskResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(result.serialized())
}

// MarshalYAML renders the result as its tagged form.
func (result TaskResult) MarshalYAML() (any, error) {
	return result.serialized(), nil
}

type serializedReport struct {
	RunID       string          `json:"runId"`
	Runner      RunnerName      `json:"runner"`
	StartedAt   time.Time       `json:"startedAt"`
	CompletedAt time.Time       `json:"completedAt"`
	Tasks       json.RawMessage `json:"tasks"`
}

// MarshalJSON renders the report with tasks as an object keyed by task name in catalogue order.
func (report Report) MarshalJSON() ([]byte, error) {
	var tasks bytes.Buffer
	tasks.WriteByte('{')
	for position, entry := range report.Entries {
		if position > 0 {
			tasks.WriteByte(',')
		}
		key, keyError := json.Marshal(string(entry.Task))
		if keyError != nil {
			return nil, keyError
		}
		value, valueError := json.Marshal(entry.Result)
		if valueError != nil {
			return nil, valueError
		}
		tasks.Write(key)
		tasks.WriteByte(':')
		tasks.Write(value)
	}
	tasks.WriteByte('}')

	return json.Marshal(serializedReport{
		RunID:       report.RunID,
		Runner:      report.Runner,
		StartedAt:   report.StartedAt,
		CompletedAt: report.CompletedAt,
		Tasks:       json.RawMessage(tasks.Bytes()),
	})
}

// MarshalYAML renders the report as an ordered mapping.
func (report Report) MarshalYAML() (any, error) {
	tasksNode := &yaml.Node{Kind: yaml.MappingNode}
	for _, entry := range report.Entries {
		valueNode := &yaml.Node{}
		if encodeError := valueNode.Encode(entry.Result.serialized()); encodeError != nil {
			return nil, encodeError
		}
		tasksNode.Content = append(tasksNode.Content, stringNode(string(entry.Task)), valueNode)
	}

	rootNode := &yaml.Node{Kind: yaml.MappingNode}
	rootNode.Content = append(rootNode.Content,
		stringNode(runIDKeyConstant), stringNode(report.RunID),
		stringNode(runnerKeyConstant), stringNode(string(report.Runner)),
		stringNode(startedAtKeyConstant), stringNode(report.StartedAt.Format(reportTimeLayoutConstant)),
		stringNode(completedAtKeyConstant), stringNode(report.CompletedAt.Format(reportTimeLayoutConstant)),
		stringNode(tasksKeyConstant), tasksNode,
	)
	return rootNode, nil
}

func stringNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: yamlStringTagConstant, Value: value}
}
