package runcommand

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tyemirov/winvitals/internal/metrics"
	"github.com/tyemirov/winvitals/internal/taskengine"
	"github.com/tyemirov/winvitals/internal/utils"
)

const (
	metricsWriteErrorTemplateConstant = "unable to write metrics file %s: %w"
	metricsWrittenMessageConstant     = "metrics file written"
	metricsPathFieldConstant          = "metrics_file"
)

// ReportPublisher delivers a completed report.
type ReportPublisher interface {
	Publish(command *cobra.Command, report taskengine.Report) error
}

// ReportPublisherFunc adapts a function to ReportPublisher.
type ReportPublisherFunc func(command *cobra.Command, report taskengine.Report) error

// Publish calls the wrapped function.
func (publisher ReportPublisherFunc) Publish(command *cobra.Command, report taskengine.Report) error {
	return publisher(command, report)
}

// OutputPublisher writes reports to the command output and optionally to a metrics textfile,
// following the report settings stored in the command context.
type OutputPublisher struct {
	LoggerProvider func() *zap.Logger
	DefaultFormat  taskengine.OutputFormat
}

// Publish renders the report and writes the metrics textfile when configured.
func (publisher OutputPublisher) Publish(command *cobra.Command, report taskengine.Report) error {
	settings, _ := utils.NewCommandContextAccessor().ReportSettings(command.Context())

	format := publisher.DefaultFormat
	if len(format) == 0 {
		format = taskengine.OutputFormatJSON
	}
	if len(settings.OutputFormat) > 0 {
		parsedFormat, parseError := taskengine.ParseOutputFormat(settings.OutputFormat)
		if parseError != nil {
			return parseError
		}
		format = parsedFormat
	}

	if writeError := taskengine.WriteReport(utils.NewFlushingWriter(command.OutOrStdout()), report, format); writeError != nil {
		return writeError
	}

	if len(settings.MetricsFilePath) == 0 {
		return nil
	}
	exporter := metrics.NewTextfileExporter()
	exporter.Observe(report)
	if exportError := exporter.WriteTextfile(settings.MetricsFilePath); exportError != nil {
		return fmt.Errorf(metricsWriteErrorTemplateConstant, settings.MetricsFilePath, exportError)
	}
	resolveLogger(publisher.LoggerProvider).Debug(metricsWrittenMessageConstant, zap.String(metricsPathFieldConstant, settings.MetricsFilePath))
	return nil
}
