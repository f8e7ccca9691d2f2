package utils

import (
	"context"
	"strings"
)

const (
	configurationFilePathContextKeyConstant = commandContextKey("configurationFilePath")
	reportSettingsContextKeyConstant        = commandContextKey("reportSettings")
	logLevelContextKeyConstant              = commandContextKey("logLevel")
)

type commandContextKey string

// ReportSettings describes where and how a run report is published.
type ReportSettings struct {
	OutputFormat    string
	MetricsFilePath string
}

// CommandContextAccessor manages values stored in command execution contexts.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor instance.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithConfigurationFilePath attaches the configuration file path to the provided context.
func (accessor CommandContextAccessor) WithConfigurationFilePath(parentContext context.Context, configurationFilePath string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, configurationFilePathContextKeyConstant, configurationFilePath)
}

// WithReportSettings attaches normalized report settings to the provided context.
func (accessor CommandContextAccessor) WithReportSettings(parentContext context.Context, settings ReportSettings) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	normalized := ReportSettings{
		OutputFormat:    strings.ToLower(strings.TrimSpace(settings.OutputFormat)),
		MetricsFilePath: strings.TrimSpace(settings.MetricsFilePath),
	}
	return context.WithValue(parentContext, reportSettingsContextKeyConstant, normalized)
}

// WithLogLevel attaches the effective log level to the provided context.
func (accessor CommandContextAccessor) WithLogLevel(parentContext context.Context, logLevel string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	trimmedLogLevel := strings.TrimSpace(logLevel)
	if len(trimmedLogLevel) == 0 {
		return parentContext
	}
	return context.WithValue(parentContext, logLevelContextKeyConstant, trimmedLogLevel)
}

// ConfigurationFilePath extracts the configuration file path from the provided context.
func (accessor CommandContextAccessor) ConfigurationFilePath(executionContext context.Context) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	configurationFilePath, configurationFilePathAvailable := executionContext.Value(configurationFilePathContextKeyConstant).(string)
	if !configurationFilePathAvailable {
		return "", false
	}
	return configurationFilePath, true
}

// ReportSettings extracts report settings from the provided context.
func (accessor CommandContextAccessor) ReportSettings(executionContext context.Context) (ReportSettings, bool) {
	if executionContext == nil {
		return ReportSettings{}, false
	}
	value, valueAvailable := executionContext.Value(reportSettingsContextKeyConstant).(ReportSettings)
	if !valueAvailable {
		return ReportSettings{}, false
	}
	return value, true
}

// LogLevel extracts the effective log level from the provided context.
func (accessor CommandContextAccessor) LogLevel(executionContext context.Context) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	value, valueAvailable := executionContext.Value(logLevelContextKeyConstant).(string)
	if !valueAvailable {
		return "", false
	}
	return value, true
}
