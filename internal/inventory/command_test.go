package inventory_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	vitalerrors "github.com/tyemirov/winvitals/internal/errors"
	"github.com/tyemirov/winvitals/internal/inventory"
	"github.com/tyemirov/winvitals/internal/runcommand"
	"github.com/tyemirov/winvitals/internal/taskengine"
)

type recordingPublisher struct {
	reports []taskengine.Report
}

func (publisher *recordingPublisher) Publish(_ *cobra.Command, report taskengine.Report) error {
	publisher.reports = append(publisher.reports, report)
	return nil
}

func buildInfoCommand(testInstance *testing.T, configuration inventory.CommandConfiguration, elevated bool, publisher runcommand.ReportPublisher) *cobra.Command {
	testInstance.Helper()
	builder := inventory.CommandBuilder{
		ConfigurationProvider: func() inventory.CommandConfiguration { return configuration },
		DependenciesProvider: func(*zap.Logger) (inventory.Dependencies, error) {
			return newFullDependencies(&fakeHost{}), nil
		},
		PrivilegeChecker: taskengine.PrivilegeCheckerFunc(func() (bool, error) { return elevated, nil }),
		Publisher:        publisher,
	}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	command.SetOut(&bytes.Buffer{})
	command.SetErr(&bytes.Buffer{})
	command.SilenceUsage = true
	command.SilenceErrors = true
	return command
}

func TestInfoCommandRunsSelectedTasks(testInstance *testing.T) {
	publisher := &recordingPublisher{}
	command := buildInfoCommand(testInstance, inventory.DefaultCommandConfiguration(), false, publisher)
	command.SetArgs([]string{"--include", "computerinfo,StorageVolumes"})

	require.NoError(testInstance, command.Execute())
	require.Len(testInstance, publisher.reports, 1)

	statuses := make(map[taskengine.TaskName]taskengine.ResultStatus)
	for _, entry := range publisher.reports[0].Entries {
		statuses[entry.Task] = entry.Result.Status
	}
	require.Len(testInstance, statuses, 12)
	require.Equal(testInstance, taskengine.StatusOK, statuses[inventory.TaskComputerInfo])
	require.Equal(testInstance, taskengine.StatusOK, statuses[inventory.TaskStorageVolumes])
	require.Equal(testInstance, taskengine.StatusSkipped, statuses[inventory.TaskWindowsUpdates])
}

func TestInfoCommandUsesConfiguredExclusions(testInstance *testing.T) {
	publisher := &recordingPublisher{}
	configuration := inventory.CommandConfiguration{Exclude: []string{"ComponentStoreAnalysis", "CrashDumps", "WindowsUpdates"}}
	command := buildInfoCommand(testInstance, configuration, false, publisher)
	command.SetArgs([]string{})

	require.NoError(testInstance, command.Execute())
	require.Len(testInstance, publisher.reports, 1)
	result, found := publisher.reports[0].Result(inventory.TaskCrashDumps)
	require.True(testInstance, found)
	require.Equal(testInstance, taskengine.StatusSkipped, result.Status)
}

func TestInfoCommandRequiresElevationForPrivilegedTasks(testInstance *testing.T) {
	publisher := &recordingPublisher{}
	command := buildInfoCommand(testInstance, inventory.DefaultCommandConfiguration(), false, publisher)
	command.SetArgs([]string{})

	executionError := command.Execute()
	require.True(testInstance, errors.Is(executionError, vitalerrors.ErrPrivilegeRequired))
	require.Empty(testInstance, publisher.reports)
}

func TestInfoCommandRejectsArguments(testInstance *testing.T) {
	command := buildInfoCommand(testInstance, inventory.DefaultCommandConfiguration(), true, &recordingPublisher{})
	command.SetArgs([]string{"unexpected"})
	require.Error(testInstance, command.Execute())
}

func TestInfoCommandRequiresDependenciesProvider(testInstance *testing.T) {
	builder := inventory.CommandBuilder{Publisher: &recordingPublisher{}}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	command.SetArgs([]string{})
	command.SilenceUsage = true
	command.SilenceErrors = true
	require.ErrorIs(testInstance, command.Execute(), inventory.ErrDependenciesProviderMissing)
}
