package version_test

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/winvitals/internal/version"
)

type stubBuildInfoProvider struct {
	info      *debug.BuildInfo
	available bool
}

func (provider stubBuildInfoProvider) Read() (*debug.BuildInfo, bool) {
	if !provider.available {
		return nil, false
	}
	return provider.info, true
}

func TestDetectorVersion(testInstance *testing.T) {
	testCases := []struct {
		name         string
		dependencies version.Dependencies
		expected     string
	}{
		{
			name:         "linked_version_wins",
			dependencies: version.Dependencies{LinkedVersion: " v2.0.0 ", BuildInfoProvider: stubBuildInfoProvider{info: &debug.BuildInfo{Main: debug.Module{Version: "v1.2.3"}}, available: true}},
			expected:     "v2.0.0",
		},
		{
			name:         "module_version",
			dependencies: version.Dependencies{BuildInfoProvider: stubBuildInfoProvider{info: &debug.BuildInfo{Main: debug.Module{Version: "v1.2.3"}}, available: true}},
			expected:     "v1.2.3",
		},
		{
			name: "development_revision",
			dependencies: version.Dependencies{BuildInfoProvider: stubBuildInfoProvider{info: &debug.BuildInfo{
				Main: debug.Module{Version: "(devel)"},
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "0123456789abcdef0123"},
					{Key: "vcs.modified", Value: "true"},
				},
			}, available: true}},
			expected: "devel-0123456789ab-dirty",
		},
		{
			name:         "development_without_revision",
			dependencies: version.Dependencies{BuildInfoProvider: stubBuildInfoProvider{info: &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, available: true}},
			expected:     "unknown",
		},
		{
			name:         "build_info_unavailable",
			dependencies: version.Dependencies{BuildInfoProvider: stubBuildInfoProvider{}},
			expected:     "unknown",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, version.Detect(testCase.dependencies))
		})
	}
}
