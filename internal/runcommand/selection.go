// Package runcommand connects Cobra commands to task runners and publishes their reports.
package runcommand

import (
	"strings"

	"github.com/tyemirov/winvitals/internal/taskengine"
	flagutils "github.com/tyemirov/winvitals/internal/utils/flags"
)

// SelectionConfiguration captures the configured default task selection of a runner.
type SelectionConfiguration struct {
	Include []string `mapstructure:"include"`
	Exclude []string `mapstructure:"exclude"`
}

// Sanitize trims task names and drops blank entries. A configured list stays non-nil after
// sanitizing, so an include list that is present but empty remains distinguishable from an absent one.
func (configuration SelectionConfiguration) Sanitize() SelectionConfiguration {
	return SelectionConfiguration{
		Include: sanitizeNames(configuration.Include),
		Exclude: sanitizeNames(configuration.Exclude),
	}
}

// ResolveSelectorInput prefers command line flags; configured defaults apply only when neither
// selection flag was changed. A configured include list counts as provided whenever it is present.
func ResolveSelectorInput(selectionFlags flagutils.SelectionFlags, configuration SelectionConfiguration) taskengine.SelectorInput {
	if selectionFlags.IncludeSet || selectionFlags.ExcludeSet {
		return taskengine.SelectorInput{
			Include:         selectionFlags.Include,
			IncludeProvided: selectionFlags.IncludeSet,
			Exclude:         selectionFlags.Exclude,
			ExcludeProvided: selectionFlags.ExcludeSet,
		}
	}

	sanitized := configuration.Sanitize()
	return taskengine.SelectorInput{
		Include:         sanitized.Include,
		IncludeProvided: sanitized.Include != nil,
		Exclude:         sanitized.Exclude,
	}
}

func sanitizeNames(names []string) []string {
	if names == nil {
		return nil
	}
	sanitized := make([]string, 0, len(names))
	for _, name := range names {
		trimmed := strings.TrimSpace(name)
		if len(trimmed) == 0 {
			continue
		}
		sanitized = append(sanitized, trimmed)
	}
	return sanitized
}
