package runcommand

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tyemirov/winvitals/internal/taskengine"
	flagutils "github.com/tyemirov/winvitals/internal/utils/flags"
)

const publisherMissingMessageConstant = "report publisher not configured"

// ErrPublisherMissing indicates that no report publisher was configured.
var ErrPublisherMissing = errors.New(publisherMissingMessageConstant)

// Runtime groups the collaborators shared by every runner command.
type Runtime struct {
	LoggerProvider   func() *zap.Logger
	PrivilegeChecker taskengine.PrivilegeChecker
	Publisher        ReportPublisher
}

// Run resolves the selection for the command, runs the catalogue and publishes the report.
// Selection and privilege failures are returned without publishing anything.
func Run(command *cobra.Command, catalogue taskengine.Catalogue, configuration SelectionConfiguration, runtime Runtime) error {
	if runtime.Publisher == nil {
		return ErrPublisherMissing
	}

	runner, runnerError := taskengine.NewRunner(catalogue, runtime.PrivilegeChecker, taskengine.RunnerDependencies{
		Logger: resolveLogger(runtime.LoggerProvider),
	})
	if runnerError != nil {
		return runnerError
	}

	selectorInput := ResolveSelectorInput(flagutils.CollectSelectionFlags(command), configuration)
	report, runError := runner.Run(command.Context(), selectorInput)
	if runError != nil {
		return runError
	}
	return runtime.Publisher.Publish(command, report)
}

func resolveLogger(loggerProvider func() *zap.Logger) *zap.Logger {
	if loggerProvider == nil {
		return zap.NewNop()
	}
	logger := loggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
