package flags

import (
	"strings"

	"github.com/spf13/cobra"
)

const (
	// IncludeFlagName exposes the task include-set flag name.
	IncludeFlagName = "include"
	// IncludeFlagUsage describes the task include-set flag purpose.
	IncludeFlagUsage = "Run only the named tasks (repeatable or comma separated)"
	// ExcludeFlagName exposes the task exclude-set flag name.
	ExcludeFlagName = "exclude"
	// ExcludeFlagUsage describes the task exclude-set flag purpose.
	ExcludeFlagUsage = "Run every task except the named ones (repeatable or comma separated)"
)

// SelectionFlags captures the include and exclude task names supplied on the command line.
// A flag counts as set whenever it was changed, even when its value is empty.
type SelectionFlags struct {
	Include    []string
	IncludeSet bool
	Exclude    []string
	ExcludeSet bool
}

// BindSelectionFlags attaches the include and exclude flags to the provided command.
func BindSelectionFlags(command *cobra.Command) {
	if command == nil {
		return
	}
	flagSet := command.Flags()
	if flagSet.Lookup(IncludeFlagName) == nil {
		flagSet.StringSlice(IncludeFlagName, nil, IncludeFlagUsage)
	}
	if flagSet.Lookup(ExcludeFlagName) == nil {
		flagSet.StringSlice(ExcludeFlagName, nil, ExcludeFlagUsage)
	}
}

// CollectSelectionFlags reads the include and exclude flags from the command.
func CollectSelectionFlags(command *cobra.Command) SelectionFlags {
	selection := SelectionFlags{}
	if command == nil {
		return selection
	}

	if includeValues, includeChanged, includeError := StringSliceFlag(command, IncludeFlagName); includeError == nil {
		selection.Include = trimValues(includeValues)
		selection.IncludeSet = includeChanged
	}
	if excludeValues, excludeChanged, excludeError := StringSliceFlag(command, ExcludeFlagName); excludeError == nil {
		selection.Exclude = trimValues(excludeValues)
		selection.ExcludeSet = excludeChanged
	}

	return selection
}

func trimValues(values []string) []string {
	trimmed := make([]string, 0, len(values))
	for _, value := range values {
		candidate := strings.TrimSpace(value)
		if len(candidate) == 0 {
			continue
		}
		trimmed = append(trimmed, candidate)
	}
	return trimmed
}
