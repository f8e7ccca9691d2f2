package execshell

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

const (
	dismCommandNameStringConstant             = "dism"
	sfcCommandNameStringConstant              = "sfc"
	chkdskCommandNameStringConstant           = "chkdsk"
	powerShellCommandNameStringConstant       = "powershell"
	runDLLCommandNameStringConstant           = "rundll32"
	loggerNotConfiguredMessageConstant        = "shell executor logger not configured"
	commandRunnerNotConfiguredMessageConstant = "shell executor command runner not configured"
	commandNameMissingMessageConstant         = "shell command name not provided"
	commandStartMessageConstant               = "command execution starting"
	commandSuccessMessageConstant             = "command execution completed"
	commandFailureMessageConstant             = "command returned non-zero status"
	commandRunnerErrorMessageConstant         = "command execution error"
	commandNameFieldNameConstant              = "command"
	commandArgumentsFieldNameConstant         = "arguments"
	workingDirectoryFieldNameConstant         = "working_directory"
	exitCodeFieldNameConstant                 = "exit_code"
	outputEncodingFieldNameConstant           = "output_encoding"
	outputLineCountFieldNameConstant          = "output_lines"
	standardErrorFieldNameConstant            = "stderr"
	failureDetailLineLimitConstant            = 3
)

// CommandName identifies a supported executable name.
type CommandName string

// Supported command names.
const (
	CommandDISM       CommandName = CommandName(dismCommandNameStringConstant)
	CommandSFC        CommandName = CommandName(sfcCommandNameStringConstant)
	CommandCHKDSK     CommandName = CommandName(chkdskCommandNameStringConstant)
	CommandPowerShell CommandName = CommandName(powerShellCommandNameStringConstant)
	CommandRunDLL     CommandName = CommandName(runDLLCommandNameStringConstant)
)

// CommandDetails describes command invocation properties.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	OutputEncoding       OutputEncoding
}

// ShellCommand represents a fully qualified command invocation.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures observable command results.
type ExecutionResult struct {
	OutputLines   []string
	StandardError string
	ExitCode      int
}

// CommandRunner executes shell commands.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// ShellExecutor orchestrates running shell commands with logging.
type ShellExecutor struct {
	commandRunner        CommandRunner
	logger               *zap.Logger
	humanReadableLogging bool
	messageFormatter     CommandMessageFormatter
	encodingMutex        sync.Mutex
	outputEncoding       OutputEncoding
}

var (
	// ErrLoggerNotConfigured indicates the logger dependency was missing.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrCommandRunnerNotConfigured indicates the command runner dependency was missing.
	ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)
	// ErrCommandNameMissing indicates the command name was not provided.
	ErrCommandNameMissing = errors.New(commandNameMissingMessageConstant)
)

// CommandFailedError provides details about commands exiting with a non-zero code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

const commandFailureErrorMessageTemplateConstant = "%s command exited with code %d"

// Error describes the failure in a readable format.
func (commandError CommandFailedError) Error() string {
	baseMessage := fmt.Sprintf(commandFailureErrorMessageTemplateConstant, commandError.Command.Name, commandError.Result.ExitCode)

	if len(commandError.Command.Details.Arguments) > 0 {
		baseMessage = fmt.Sprintf("%s (%s)", baseMessage, strings.Join(commandError.Command.Details.Arguments, " "))
	}

	detailLines := strings.Split(strings.TrimSpace(commandError.Result.StandardError), "\n")
	if len(strings.TrimSpace(commandError.Result.StandardError)) == 0 {
		detailLines = commandError.Result.OutputLines
	}

	normalized := make([]string, 0, failureDetailLineLimitConstant)
	for _, line := range detailLines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		normalized = append(normalized, trimmed)
		if len(normalized) == failureDetailLineLimitConstant {
			break
		}
	}
	if len(normalized) > 0 {
		baseMessage = fmt.Sprintf("%s: %s", baseMessage, strings.Join(normalized, " | "))
	}

	return baseMessage
}

// CommandExecutionError wraps unexpected execution failures from the runner.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

const commandExecutionErrorMessageTemplateConstant = "%s command execution failed: %v"

// Error describes the underlying runner failure.
func (executionError CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionErrorMessageTemplateConstant, executionError.Command.Name, executionError.Cause)
}

// Unwrap exposes the underlying error.
func (executionError CommandExecutionError) Unwrap() error {
	return executionError.Cause
}

// NewShellExecutor builds an executor for the provided runner and logger.
func NewShellExecutor(logger *zap.Logger, commandRunner CommandRunner, humanReadableLogging bool) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if commandRunner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}
	return &ShellExecutor{
		commandRunner:        commandRunner,
		logger:               logger,
		humanReadableLogging: humanReadableLogging,
		messageFormatter:     CommandMessageFormatter{},
		outputEncoding:       OutputEncodingConsole,
	}, nil
}

// OutputEncoding reports the decoding mode applied to commands that do not request one explicitly.
func (executor *ShellExecutor) OutputEncoding() OutputEncoding {
	executor.encodingMutex.Lock()
	defer executor.encodingMutex.Unlock()
	return executor.outputEncoding
}

// SwitchOutputEncoding replaces the decoding mode and returns a function restoring the previous one.
func (executor *ShellExecutor) SwitchOutputEncoding(encoding OutputEncoding) func() {
	executor.encodingMutex.Lock()
	previousEncoding := executor.outputEncoding
	executor.outputEncoding = encoding.Normalize()
	executor.encodingMutex.Unlock()

	var restoreOnce sync.Once
	return func() {
		restoreOnce.Do(func() {
			executor.encodingMutex.Lock()
			executor.outputEncoding = previousEncoding
			executor.encodingMutex.Unlock()
		})
	}
}

// Execute runs the provided shell command and logs lifecycle events.
// A non-zero exit returns the captured result together with a CommandFailedError.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	if len(command.Name) == 0 {
		return ExecutionResult{}, ErrCommandNameMissing
	}

	if len(command.Details.OutputEncoding) == 0 {
		command.Details.OutputEncoding = executor.OutputEncoding()
	}

	if executor.humanReadableLogging {
		executor.logger.Info(executor.messageFormatter.BuildStartedMessage(command))
	} else {
		executor.logger.Info(commandStartMessageConstant,
			zap.String(commandNameFieldNameConstant, string(command.Name)),
			zap.Strings(commandArgumentsFieldNameConstant, command.Details.Arguments),
			zap.String(workingDirectoryFieldNameConstant, command.Details.WorkingDirectory),
			zap.String(outputEncodingFieldNameConstant, string(command.Details.OutputEncoding)),
		)
	}

	executionResult, runnerError := executor.commandRunner.Run(executionContext, command)
	if runnerError != nil {
		if executor.humanReadableLogging {
			executor.logger.Error(executor.messageFormatter.BuildExecutionFailureMessage(command, runnerError))
		} else {
			executor.logger.Error(commandRunnerErrorMessageConstant,
				zap.String(commandNameFieldNameConstant, string(command.Name)),
				zap.Error(runnerError),
			)
		}
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runnerError}
	}

	if executionResult.ExitCode != 0 {
		if executor.humanReadableLogging {
			executor.logger.Warn(executor.messageFormatter.BuildFailureMessage(command, executionResult))
		} else {
			executor.logger.Warn(commandFailureMessageConstant,
				zap.String(commandNameFieldNameConstant, string(command.Name)),
				zap.Int(exitCodeFieldNameConstant, executionResult.ExitCode),
				zap.String(standardErrorFieldNameConstant, executionResult.StandardError),
			)
		}
		return executionResult, CommandFailedError{Command: command, Result: executionResult}
	}

	if executor.humanReadableLogging {
		executor.logger.Info(executor.messageFormatter.BuildSuccessMessage(command))
	} else {
		executor.logger.Info(commandSuccessMessageConstant,
			zap.String(commandNameFieldNameConstant, string(command.Name)),
			zap.Int(exitCodeFieldNameConstant, executionResult.ExitCode),
			zap.Int(outputLineCountFieldNameConstant, len(executionResult.OutputLines)),
		)
	}
	return executionResult, nil
}
