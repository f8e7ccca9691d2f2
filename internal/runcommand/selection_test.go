package runcommand_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/winvitals/internal/runcommand"
	"github.com/tyemirov/winvitals/internal/taskengine"
	flagutils "github.com/tyemirov/winvitals/internal/utils/flags"
)

func TestResolveSelectorInput(testInstance *testing.T) {
	testCases := []struct {
		name          string
		flags         flagutils.SelectionFlags
		configuration runcommand.SelectionConfiguration
		expected      taskengine.SelectorInput
	}{
		{
			name:          "configuration_defaults_apply_without_flags",
			configuration: runcommand.SelectionConfiguration{Exclude: []string{" CrashDumps ", ""}},
			expected:      taskengine.SelectorInput{Exclude: []string{"CrashDumps"}},
		},
		{
			name:          "include_flag_overrides_configuration",
			flags:         flagutils.SelectionFlags{Include: []string{"ComputerInfo"}, IncludeSet: true},
			configuration: runcommand.SelectionConfiguration{Exclude: []string{"CrashDumps"}},
			expected:      taskengine.SelectorInput{Include: []string{"ComputerInfo"}, IncludeProvided: true},
		},
		{
			name:          "empty_include_flag_remains_provided",
			flags:         flagutils.SelectionFlags{Include: []string{}, IncludeSet: true},
			configuration: runcommand.SelectionConfiguration{Include: []string{"ComputerInfo"}},
			expected:      taskengine.SelectorInput{Include: []string{}, IncludeProvided: true},
		},
		{
			name:          "empty_configured_include_is_provided",
			configuration: runcommand.SelectionConfiguration{Include: []string{}},
			expected:      taskengine.SelectorInput{Include: []string{}, IncludeProvided: true},
		},
		{
			name:          "blank_configured_include_is_provided",
			configuration: runcommand.SelectionConfiguration{Include: []string{" ", ""}},
			expected:      taskengine.SelectorInput{Include: []string{}, IncludeProvided: true},
		},
		{
			name:     "nothing_configured",
			expected: taskengine.SelectorInput{},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, runcommand.ResolveSelectorInput(testCase.flags, testCase.configuration))
		})
	}
}
