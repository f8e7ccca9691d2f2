package healthcheck_test

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	vitalerrors "github.com/tyemirov/winvitals/internal/errors"
	"github.com/tyemirov/winvitals/internal/healthcheck"
	"github.com/tyemirov/winvitals/internal/repairtools"
	"github.com/tyemirov/winvitals/internal/taskengine"
)

type recordingPublisher struct {
	reports []taskengine.Report
}

func (publisher *recordingPublisher) Publish(_ *cobra.Command, report taskengine.Report) error {
	publisher.reports = append(publisher.reports, report)
	return nil
}

func TestCheckCommandIntentResolution(testInstance *testing.T) {
	testCases := []struct {
		name           string
		arguments      []string
		configuration  healthcheck.CommandConfiguration
		expectedIntent repairtools.Intent
	}{
		{name: "repair_by_default", arguments: []string{}, expectedIntent: repairtools.IntentRepair},
		{name: "configured_verify_only", arguments: []string{}, configuration: healthcheck.CommandConfiguration{VerifyOnly: true}, expectedIntent: repairtools.IntentVerify},
		{name: "flag_enables_verify_only", arguments: []string{"--verify-only"}, expectedIntent: repairtools.IntentVerify},
		{name: "flag_overrides_configuration", arguments: []string{"--verify-only=false"}, configuration: healthcheck.CommandConfiguration{VerifyOnly: true}, expectedIntent: repairtools.IntentRepair},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			tools := &recordingTools{}
			publisher := &recordingPublisher{}
			builder := healthcheck.CommandBuilder{
				ConfigurationProvider: func() healthcheck.CommandConfiguration { return testCase.configuration },
				DependenciesProvider: func(*zap.Logger) (healthcheck.Dependencies, error) {
					return healthcheck.Dependencies{Tools: tools, Volumes: staticVolumes{}}, nil
				},
				PrivilegeChecker: taskengine.PrivilegeCheckerFunc(func() (bool, error) { return true, nil }),
				Publisher:        publisher,
			}
			command, buildError := builder.Build()
			require.NoError(testInstance, buildError)
			command.SetOut(&bytes.Buffer{})
			command.SetArgs(append(testCase.arguments, "--include", "SystemFileChecker"))

			require.NoError(testInstance, command.Execute())
			require.Equal(testInstance, []string{"sfc"}, tools.calls)
			require.Equal(testInstance, []repairtools.Intent{testCase.expectedIntent}, tools.intents)
			require.Len(testInstance, publisher.reports, 1)
		})
	}
}

func TestCheckCommandRequiresElevation(testInstance *testing.T) {
	tools := &recordingTools{}
	publisher := &recordingPublisher{}
	builder := healthcheck.CommandBuilder{
		DependenciesProvider: func(*zap.Logger) (healthcheck.Dependencies, error) {
			return healthcheck.Dependencies{Tools: tools}, nil
		},
		PrivilegeChecker: taskengine.PrivilegeCheckerFunc(func() (bool, error) { return false, nil }),
		Publisher:        publisher,
	}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	command.SetOut(&bytes.Buffer{})
	command.SetErr(&bytes.Buffer{})
	command.SilenceUsage = true
	command.SilenceErrors = true
	command.SetArgs([]string{"--verify-only"})

	require.ErrorIs(testInstance, command.Execute(), vitalerrors.ErrPrivilegeRequired)
	require.Empty(testInstance, tools.calls)
	require.Empty(testInstance, publisher.reports)
}
