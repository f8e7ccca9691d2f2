package execshell

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
)

const (
	carriageReturnCharacterConstant = "\r"
	outputScannerBufferSizeConstant = 1024 * 1024
)

// OSCommandRunner executes commands through os/exec, capturing standard output line by line.
type OSCommandRunner struct{}

// NewOSCommandRunner constructs the default process-backed runner.
func NewOSCommandRunner() OSCommandRunner {
	return OSCommandRunner{}
}

// Run starts the command, decodes its standard output, and waits for the exit code.
// A missing executable surfaces an error wrapping exec.ErrNotFound.
func (runner OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	process := exec.CommandContext(executionContext, string(command.Name), command.Details.Arguments...)
	if len(command.Details.WorkingDirectory) > 0 {
		process.Dir = command.Details.WorkingDirectory
	}
	if len(command.Details.EnvironmentVariables) > 0 {
		environment := os.Environ()
		for name, value := range command.Details.EnvironmentVariables {
			environment = append(environment, name+"="+value)
		}
		process.Env = environment
	}

	var standardOutput bytes.Buffer
	var standardError bytes.Buffer
	process.Stdout = &standardOutput
	process.Stderr = &standardError

	runError := process.Run()
	outputLines, decodeError := SplitOutputLines(NewDecodingReader(&standardOutput, command.Details.OutputEncoding))
	if decodeError != nil {
		return ExecutionResult{}, decodeError
	}

	result := ExecutionResult{
		OutputLines:   outputLines,
		StandardError: standardError.String(),
	}
	if runError == nil {
		return result, nil
	}

	var exitError *exec.ExitError
	if errors.As(runError, &exitError) {
		result.ExitCode = NormalizeExitCode(exitError.ExitCode())
		return result, nil
	}
	return ExecutionResult{}, runError
}

// NormalizeExitCode reinterprets a process exit status as a signed 32-bit value.
// Windows reports exit statuses as unsigned, so HRESULT codes such as 0x800F0806 become negative
// while small codes are unchanged.
func NormalizeExitCode(exitCode int) int {
	return int(int32(uint32(exitCode)))
}

// SplitOutputLines reads every line from the reader, dropping trailing carriage returns.
func SplitOutputLines(reader io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), outputScannerBufferSizeConstant)
	lines := make([]string, 0)
	for scanner.Scan() {
		lines = append(lines, strings.TrimSuffix(scanner.Text(), carriageReturnCharacterConstant))
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, scanError
	}
	return lines, nil
}
