package runcommand_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	vitalerrors "github.com/tyemirov/winvitals/internal/errors"
	"github.com/tyemirov/winvitals/internal/runcommand"
	"github.com/tyemirov/winvitals/internal/taskengine"
	"github.com/tyemirov/winvitals/internal/utils"
	flagutils "github.com/tyemirov/winvitals/internal/utils/flags"
)

const (
	firstTaskNameConstant      = "ComputerInfo"
	secondTaskNameConstant     = "StorageVolumes"
	privilegedTaskNameConstant = "WindowsUpdates"
)

type recordingPublisher struct {
	reports []taskengine.Report
}

func (publisher *recordingPublisher) Publish(_ *cobra.Command, report taskengine.Report) error {
	publisher.reports = append(publisher.reports, report)
	return nil
}

func newTestCatalogue(testInstance *testing.T, executed *[]string) taskengine.Catalogue {
	testInstance.Helper()
	record := func(name string) taskengine.TaskExecutor {
		return func(context.Context) (any, error) {
			*executed = append(*executed, name)
			return name, nil
		}
	}
	catalogue, catalogueError := taskengine.NewCatalogue(
		taskengine.RunnerInventory,
		taskengine.TaskDefinition{Name: firstTaskNameConstant, Execute: record(firstTaskNameConstant)},
		taskengine.TaskDefinition{Name: secondTaskNameConstant, Execute: record(secondTaskNameConstant)},
		taskengine.TaskDefinition{Name: privilegedTaskNameConstant, Privileged: true, Execute: record(privilegedTaskNameConstant)},
	)
	require.NoError(testInstance, catalogueError)
	return catalogue
}

func executeRunnerCommand(testInstance *testing.T, arguments []string, configuration runcommand.SelectionConfiguration, elevated bool) ([]string, *recordingPublisher, error) {
	testInstance.Helper()
	executed := make([]string, 0)
	publisher := &recordingPublisher{}
	catalogue := newTestCatalogue(testInstance, &executed)

	command := &cobra.Command{
		Use:           "info",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, _ []string) error {
			return runcommand.Run(command, catalogue, configuration, runcommand.Runtime{
				PrivilegeChecker: taskengine.PrivilegeCheckerFunc(func() (bool, error) { return elevated, nil }),
				Publisher:        publisher,
			})
		},
	}
	flagutils.BindSelectionFlags(command)
	command.SetArgs(arguments)
	command.SetOut(&bytes.Buffer{})
	return executed, publisher, command.Execute()
}

func TestRunAppliesConfiguredSelectionWithoutFlags(testInstance *testing.T) {
	executed, publisher, runError := executeRunnerCommand(testInstance, nil, runcommand.SelectionConfiguration{Exclude: []string{" WindowsUpdates "}}, false)
	require.NoError(testInstance, runError)
	require.Equal(testInstance, []string{firstTaskNameConstant, secondTaskNameConstant}, executed)
	require.Len(testInstance, publisher.reports, 1)
	privilegedResult, found := publisher.reports[0].Result(privilegedTaskNameConstant)
	require.True(testInstance, found)
	require.Equal(testInstance, taskengine.StatusSkipped, privilegedResult.Status)
}

func TestRunFlagsOverrideConfiguredSelection(testInstance *testing.T) {
	executed, _, runError := executeRunnerCommand(testInstance, []string{"--include", secondTaskNameConstant}, runcommand.SelectionConfiguration{Exclude: []string{privilegedTaskNameConstant}}, false)
	require.NoError(testInstance, runError)
	require.Equal(testInstance, []string{secondTaskNameConstant}, executed)
}

func TestRunRejectsEmptyIncludeFlag(testInstance *testing.T) {
	executed, publisher, runError := executeRunnerCommand(testInstance, []string{"--include="}, runcommand.SelectionConfiguration{}, true)
	require.ErrorIs(testInstance, runError, vitalerrors.ErrValidationFailed)
	require.Empty(testInstance, executed)
	require.Empty(testInstance, publisher.reports)
}

func TestRunRejectsEmptyConfiguredInclude(testInstance *testing.T) {
	executed, publisher, runError := executeRunnerCommand(testInstance, nil, runcommand.SelectionConfiguration{Include: []string{}}, true)
	require.ErrorIs(testInstance, runError, vitalerrors.ErrValidationFailed)
	require.Empty(testInstance, executed)
	require.Empty(testInstance, publisher.reports)
}

func TestRunRequiresPrivilegeBeforeExecution(testInstance *testing.T) {
	executed, publisher, runError := executeRunnerCommand(testInstance, nil, runcommand.SelectionConfiguration{}, false)
	require.ErrorIs(testInstance, runError, vitalerrors.ErrPrivilegeRequired)
	require.Empty(testInstance, executed)
	require.Empty(testInstance, publisher.reports)
}

func TestRunRequiresPublisher(testInstance *testing.T) {
	executed := make([]string, 0)
	runError := runcommand.Run(&cobra.Command{Use: "info"}, newTestCatalogue(testInstance, &executed), runcommand.SelectionConfiguration{}, runcommand.Runtime{})
	require.ErrorIs(testInstance, runError, runcommand.ErrPublisherMissing)
}

func TestOutputPublisherWritesReportAndMetrics(testInstance *testing.T) {
	metricsPath := filepath.Join(testInstance.TempDir(), "winvitals.prom")
	report := taskengine.Report{
		RunID:  "run",
		Runner: taskengine.RunnerInventory,
		Entries: []taskengine.ReportEntry{
			{Task: firstTaskNameConstant, Result: taskengine.Succeeded(map[string]string{"hostname": "example"})},
		},
	}

	var output bytes.Buffer
	command := &cobra.Command{Use: "info"}
	command.SetOut(&output)
	command.SetContext(utils.NewCommandContextAccessor().WithReportSettings(context.Background(), utils.ReportSettings{
		OutputFormat:    "json",
		MetricsFilePath: metricsPath,
	}))

	require.NoError(testInstance, runcommand.OutputPublisher{}.Publish(command, report))

	var decoded map[string]any
	require.NoError(testInstance, json.Unmarshal(output.Bytes(), &decoded))
	require.Equal(testInstance, "inventory", decoded["runner"])

	metricsContents, readError := os.ReadFile(metricsPath)
	require.NoError(testInstance, readError)
	require.Contains(testInstance, string(metricsContents), `winvitals_task_status{runner="inventory",status="ok",task="ComputerInfo"} 1`)
}

func TestOutputPublisherRejectsUnknownFormat(testInstance *testing.T) {
	command := &cobra.Command{Use: "info"}
	command.SetOut(&bytes.Buffer{})
	command.SetContext(utils.NewCommandContextAccessor().WithReportSettings(context.Background(), utils.ReportSettings{OutputFormat: "xml"}))

	require.Error(testInstance, runcommand.OutputPublisher{}.Publish(command, taskengine.Report{Runner: taskengine.RunnerInventory}))
}
