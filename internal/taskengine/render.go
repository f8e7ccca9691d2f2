package taskengine

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// OutputFormat selects how reports are written.
type OutputFormat string

// Supported output formats.
const (
	OutputFormatJSON    OutputFormat = "json"
	OutputFormatYAML    OutputFormat = "yaml"
	OutputFormatConsole OutputFormat = "console"
)

const (
	unsupportedOutputFormatMessageConstant = "unsupported output format %q"
	jsonIndentConstant                     = "  "
	yamlIndentWidthConstant                = 2
	consoleHeaderTemplateConstant          = "-- %s --\n"
	consoleStatusTemplateConstant          = "%s: %s\n"
	consoleReasonTemplateConstant          = "%s: %s (%s)\n"
	consolePayloadIndentConstant           = "    "
)

// ParseOutputFormat normalizes a user supplied format name.
func ParseOutputFormat(value string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(strings.TrimSpace(value))) {
	case OutputFormatJSON:
		return OutputFormatJSON, nil
	case OutputFormatYAML:
		return OutputFormatYAML, nil
	case OutputFormatConsole:
		return OutputFormatConsole, nil
	default:
		return "", fmt.Errorf(unsupportedOutputFormatMessageConstant, value)
	}
}

// WriteReport renders the report in the requested format.
func WriteReport(writer io.Writer, report Report, format OutputFormat) error {
	switch format {
	case OutputFormatJSON:
		encoded, encodeError := json.MarshalIndent(report, "", jsonIndentConstant)
		if encodeError != nil {
			return encodeError
		}
		encoded = append(encoded, '\n')
		_, writeError := writer.Write(encoded)
		return writeError
	case OutputFormatYAML:
		encoder := yaml.NewEncoder(writer)
		encoder.SetIndent(yamlIndentWidthConstant)
		if encodeError := encoder.Encode(report); encodeError != nil {
			return encodeError
		}
		return encoder.Close()
	case OutputFormatConsole:
		return writeConsoleReport(writer, report)
	default:
		return fmt.Errorf(unsupportedOutputFormatMessageConstant, format)
	}
}

func writeConsoleReport(writer io.Writer, report Report) error {
	if _, headerError := fmt.Fprintf(writer, consoleHeaderTemplateConstant, report.Runner); headerError != nil {
		return headerError
	}
	for _, entry := range report.Entries {
		var lineError error
		if len(entry.Result.Reason) > 0 {
			_, lineError = fmt.Fprintf(writer, consoleReasonTemplateConstant, entry.Task, entry.Result.Status, entry.Result.Reason)
		} else {
			_, lineError = fmt.Fprintf(writer, consoleStatusTemplateConstant, entry.Task, entry.Result.Status)
		}
		if lineError != nil {
			return lineError
		}
		if entry.Result.Payload == nil {
			continue
		}
		if payloadError := writeIndentedPayload(writer, entry.Result.Payload); payloadError != nil {
			return payloadError
		}
	}
	return nil
}

func writeIndentedPayload(writer io.Writer, payload any) error {
	var encoded strings.Builder
	encoder := yaml.NewEncoder(&encoded)
	encoder.SetIndent(yamlIndentWidthConstant)
	if encodeError := encoder.Encode(payload); encodeError != nil {
		return encodeError
	}
	if closeError := encoder.Close(); closeError != nil {
		return closeError
	}
	for _, line := range strings.Split(strings.TrimRight(encoded.String(), "\n"), "\n") {
		if _, writeError := io.WriteString(writer, consolePayloadIndentConstant+line+"\n"); writeError != nil {
			return writeError
		}
	}
	return nil
}
