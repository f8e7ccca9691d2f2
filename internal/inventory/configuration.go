package inventory

import "github.com/tyemirov/winvitals/internal/runcommand"

// CommandConfiguration captures persistent settings for the info command.
type CommandConfiguration struct {
	Include []string `mapstructure:"include"`
	Exclude []string `mapstructure:"exclude"`
}

// DefaultCommandConfiguration enables every inventory task.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{}
}

// Selection returns the configured default task selection.
func (configuration CommandConfiguration) Selection() runcommand.SelectionConfiguration {
	return runcommand.SelectionConfiguration{Include: configuration.Include, Exclude: configuration.Exclude}.Sanitize()
}
