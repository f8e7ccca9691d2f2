package taskengine_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/tyemirov/winvitals/internal/taskengine"
)

type testVolumePayload struct {
	Label     string `json:"label" yaml:"label"`
	FreeBytes uint64 `json:"freeBytes" yaml:"freeBytes"`
}

func newSampleReport() taskengine.Report {
	startedAt := time.Date(2024, time.May, 1, 8, 0, 0, 0, time.UTC)
	return taskengine.Report{
		RunID:       testRunIdentifierConstant,
		Runner:      taskengine.RunnerInventory,
		StartedAt:   startedAt,
		CompletedAt: startedAt.Add(time.Minute),
		Entries: []taskengine.ReportEntry{
			{Task: "StorageVolumes", Result: taskengine.Succeeded([]testVolumePayload{{Label: "System", FreeBytes: 1024}})},
			{Task: "ComputerInfo", Result: taskengine.Skipped()},
			{Task: "InstalledFeatures", Result: taskengine.Unavailable("optional features unavailable")},
			{Task: "CrashDumps", Result: taskengine.Failed(errors.New("access denied"), nil)},
		},
	}
}

func TestReportJSONPreservesCatalogueOrder(testInstance *testing.T) {
	var buffer bytes.Buffer
	require.NoError(testInstance, taskengine.WriteReport(&buffer, newSampleReport(), taskengine.OutputFormatJSON))
	output := buffer.String()

	storageIndex := strings.Index(output, `"StorageVolumes"`)
	computerIndex := strings.Index(output, `"ComputerInfo"`)
	featuresIndex := strings.Index(output, `"InstalledFeatures"`)
	crashIndex := strings.Index(output, `"CrashDumps"`)
	require.True(testInstance, storageIndex >= 0 && storageIndex < computerIndex && computerIndex < featuresIndex && featuresIndex < crashIndex)

	var decoded struct {
		RunID  string                     `json:"runId"`
		Runner string                     `json:"runner"`
		Tasks  map[string]json.RawMessage `json:"tasks"`
	}
	require.NoError(testInstance, json.Unmarshal(buffer.Bytes(), &decoded))
	require.Equal(testInstance, testRunIdentifierConstant, decoded.RunID)
	require.Equal(testInstance, "inventory", decoded.Runner)
	require.Len(testInstance, decoded.Tasks, 4)
	require.JSONEq(testInstance, `{"status":"skipped"}`, string(decoded.Tasks["ComputerInfo"]))
	require.JSONEq(testInstance, `{"status":"unavailable","reason":"optional features unavailable"}`, string(decoded.Tasks["InstalledFeatures"]))
	require.JSONEq(testInstance, `{"status":"failed","reason":"access denied"}`, string(decoded.Tasks["CrashDumps"]))
	require.JSONEq(testInstance, `{"status":"ok","payload":[{"label":"System","freeBytes":1024}]}`, string(decoded.Tasks["StorageVolumes"]))
}

func TestReportYAMLPreservesCatalogueOrder(testInstance *testing.T) {
	var buffer bytes.Buffer
	require.NoError(testInstance, taskengine.WriteReport(&buffer, newSampleReport(), taskengine.OutputFormatYAML))

	var document yaml.Node
	require.NoError(testInstance, yaml.Unmarshal(buffer.Bytes(), &document))
	root := document.Content[0]
	require.Equal(testInstance, yaml.MappingNode, root.Kind)

	var tasksNode *yaml.Node
	for position := 0; position < len(root.Content); position += 2 {
		if root.Content[position].Value == "tasks" {
			tasksNode = root.Content[position+1]
		}
	}
	require.NotNil(testInstance, tasksNode)

	keys := make([]string, 0)
	for position := 0; position < len(tasksNode.Content); position += 2 {
		keys = append(keys, tasksNode.Content[position].Value)
	}
	require.Equal(testInstance, []string{"StorageVolumes", "ComputerInfo", "InstalledFeatures", "CrashDumps"}, keys)

	var decoded struct {
		Runner string `yaml:"runner"`
		Tasks  map[string]struct {
			Status string `yaml:"status"`
			Reason string `yaml:"reason"`
		} `yaml:"tasks"`
	}
	require.NoError(testInstance, yaml.Unmarshal(buffer.Bytes(), &decoded))
	require.Equal(testInstance, "inventory", decoded.Runner)
	require.Equal(testInstance, "unavailable", decoded.Tasks["InstalledFeatures"].Status)
	require.Equal(testInstance, "optional features unavailable", decoded.Tasks["InstalledFeatures"].Reason)
}

func TestReportConsoleRendering(testInstance *testing.T) {
	var buffer bytes.Buffer
	require.NoError(testInstance, taskengine.WriteReport(&buffer, newSampleReport(), taskengine.OutputFormatConsole))

	expected := strings.Join([]string{
		"-- inventory --",
		"StorageVolumes: ok",
		"    - label: System",
		"      freeBytes: 1024",
		"ComputerInfo: skipped",
		"InstalledFeatures: unavailable (optional features unavailable)",
		"CrashDumps: failed (access denied)",
		"",
	}, "\n")
	require.Equal(testInstance, expected, buffer.String())
}

func TestParseOutputFormat(testInstance *testing.T) {
	testCases := []struct {
		input       string
		expected    taskengine.OutputFormat
		expectError bool
	}{
		{input: "json", expected: taskengine.OutputFormatJSON},
		{input: " YAML ", expected: taskengine.OutputFormatYAML},
		{input: "Console", expected: taskengine.OutputFormatConsole},
		{input: "xml", expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.input, func(testInstance *testing.T) {
			format, parseError := taskengine.ParseOutputFormat(testCase.input)
			if testCase.expectError {
				require.Error(testInstance, parseError)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expected, format)
		})
	}
}
