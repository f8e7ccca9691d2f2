package maintenance

import (
	"strings"

	"github.com/tyemirov/winvitals/internal/artifact"
	"github.com/tyemirov/winvitals/internal/runcommand"
)

// SysinternalsConfiguration describes where the Sysinternals Suite is downloaded from and installed to.
type SysinternalsConfiguration struct {
	DownloadURL        string `mapstructure:"download_url"`
	InstallDirectory   string `mapstructure:"install_directory"`
	TemporaryDirectory string `mapstructure:"temporary_directory"`
	MarkerFile         string `mapstructure:"marker_file"`
}

// CommandConfiguration captures persistent settings for the maintain command.
type CommandConfiguration struct {
	Include      []string                  `mapstructure:"include"`
	Exclude      []string                  `mapstructure:"exclude"`
	Sysinternals SysinternalsConfiguration `mapstructure:"sysinternals"`
}

// DefaultCommandConfiguration enables every maintenance task with the default marker file.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Sysinternals: SysinternalsConfiguration{MarkerFile: artifact.DefaultMarkerFileNameConstant},
	}
}

// Sanitize trims the Sysinternals settings.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Sysinternals = SysinternalsConfiguration{
		DownloadURL:        strings.TrimSpace(configuration.Sysinternals.DownloadURL),
		InstallDirectory:   strings.TrimSpace(configuration.Sysinternals.InstallDirectory),
		TemporaryDirectory: strings.TrimSpace(configuration.Sysinternals.TemporaryDirectory),
		MarkerFile:         strings.TrimSpace(configuration.Sysinternals.MarkerFile),
	}
	return sanitized
}

// Selection returns the configured default task selection.
func (configuration CommandConfiguration) Selection() runcommand.SelectionConfiguration {
	return runcommand.SelectionConfiguration{Include: configuration.Include, Exclude: configuration.Exclude}.Sanitize()
}

// UpdaterConfiguration converts the Sysinternals settings for the artifact updater.
func (configuration SysinternalsConfiguration) UpdaterConfiguration() artifact.UpdaterConfiguration {
	return artifact.UpdaterConfiguration{
		DownloadURL:        configuration.DownloadURL,
		InstallDirectory:   configuration.InstallDirectory,
		TemporaryDirectory: configuration.TemporaryDirectory,
		MarkerFileName:     configuration.MarkerFile,
	}
}
