package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithReportSettingsStoresNormalizedValues(t *testing.T) {
	accessor := NewCommandContextAccessor()
	enriched := accessor.WithReportSettings(context.Background(), ReportSettings{OutputFormat: " YAML ", MetricsFilePath: " C:\\metrics\\winvitals.prom "})

	settings, exists := accessor.ReportSettings(enriched)
	require.True(t, exists)
	require.Equal(t, "yaml", settings.OutputFormat)
	require.Equal(t, "C:\\metrics\\winvitals.prom", settings.MetricsFilePath)
}

func TestReportSettingsHandlesMissingContext(t *testing.T) {
	accessor := NewCommandContextAccessor()

	_, exists := accessor.ReportSettings(context.Background())
	require.False(t, exists)
}

func TestWithLogLevelSkipsBlankValues(t *testing.T) {
	accessor := NewCommandContextAccessor()
	base := context.Background()

	_, exists := accessor.LogLevel(accessor.WithLogLevel(base, "   "))
	require.False(t, exists)

	logLevel, exists := accessor.LogLevel(accessor.WithLogLevel(base, " debug "))
	require.True(t, exists)
	require.Equal(t, "debug", logLevel)
}

func TestWithConfigurationFilePathStoresValue(t *testing.T) {
	accessor := NewCommandContextAccessor()
	enriched := accessor.WithConfigurationFilePath(context.Background(), "config.yaml")

	configurationFilePath, exists := accessor.ConfigurationFilePath(enriched)
	require.True(t, exists)
	require.Equal(t, "config.yaml", configurationFilePath)
}
