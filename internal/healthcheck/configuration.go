package healthcheck

import (
	"github.com/tyemirov/winvitals/internal/repairtools"
	"github.com/tyemirov/winvitals/internal/runcommand"
)

// CommandConfiguration captures persistent settings for the check command.
type CommandConfiguration struct {
	Include    []string `mapstructure:"include"`
	Exclude    []string `mapstructure:"exclude"`
	VerifyOnly bool     `mapstructure:"verify_only"`
}

// DefaultCommandConfiguration runs every health check in repair mode.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{VerifyOnly: false}
}

// Selection returns the configured default task selection.
func (configuration CommandConfiguration) Selection() runcommand.SelectionConfiguration {
	return runcommand.SelectionConfiguration{Include: configuration.Include, Exclude: configuration.Exclude}.Sanitize()
}

// Intent maps the verify-only setting onto a tool intent.
func (configuration CommandConfiguration) Intent() repairtools.Intent {
	if configuration.VerifyOnly {
		return repairtools.IntentVerify
	}
	return repairtools.IntentRepair
}
