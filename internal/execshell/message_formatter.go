package execshell

import (
	"fmt"
	"strings"
)

const (
	humanStartedTemplateConstant          = "Running %s"
	humanSucceededTemplateConstant        = "Completed %s"
	humanFailedTemplateConstant           = "%s exited with code %d"
	humanFailedWithDetailTemplateConstant = "%s exited with code %d: %s"
	humanExecutionFailureTemplateConstant = "Unable to run %s: %v"
	humanWorkingDirectoryTemplateConstant = "%s (in %s)"
)

// CommandMessageFormatter renders human-readable lifecycle messages for shell commands.
type CommandMessageFormatter struct{}

// BuildStartedMessage describes a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return fmt.Sprintf(humanStartedTemplateConstant, formatter.describe(command))
}

// BuildSuccessMessage describes a command that exited with code zero.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return fmt.Sprintf(humanSucceededTemplateConstant, formatter.describe(command))
}

// BuildFailureMessage describes a command that exited with a non-zero code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	detail := strings.TrimSpace(result.StandardError)
	if len(detail) == 0 {
		return fmt.Sprintf(humanFailedTemplateConstant, formatter.describe(command), result.ExitCode)
	}
	return fmt.Sprintf(humanFailedWithDetailTemplateConstant, formatter.describe(command), result.ExitCode, detail)
}

// BuildExecutionFailureMessage describes a command that could not be started or awaited.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return fmt.Sprintf(humanExecutionFailureTemplateConstant, formatter.describe(command), failure)
}

func (formatter CommandMessageFormatter) describe(command ShellCommand) string {
	parts := append([]string{string(command.Name)}, command.Details.Arguments...)
	description := strings.Join(parts, " ")
	if len(strings.TrimSpace(command.Details.WorkingDirectory)) > 0 {
		description = fmt.Sprintf(humanWorkingDirectoryTemplateConstant, description, command.Details.WorkingDirectory)
	}
	return description
}
