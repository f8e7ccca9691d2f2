package artifact

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	vitalerrors "github.com/tyemirov/winvitals/internal/errors"
	"github.com/tyemirov/winvitals/internal/filesystem"
)

const (
	// DefaultMarkerFileNameConstant is the file holding the installed date stamp.
	DefaultMarkerFileNameConstant = "version.txt"

	stagingDirectoryTemplateConstant      = ".%s-staging-%s"
	markerFilePermissionsConstant         = 0o644
	installParentPermissionsConstant      = 0o755
	downloadURLMissingMessageConstant     = "artifact download URL not configured"
	installPathMissingMessageConstant     = "artifact install directory not configured"
	searchPathStoreMissingMessageConstant = "artifact search path store not configured"
	notInstalledMessageTemplateConstant   = "%s is not installed"
	candidateOlderMessageConstant         = "downloaded artifact is older than the installed version"
	invalidMarkerMessageConstant          = "ignoring unreadable version marker"
	artifactInstalledMessageConstant      = "artifact installed"
	artifactCurrentMessageConstant        = "artifact already current"
	searchPathUpdatedMessageConstant      = "install directory appended to search path"
	temporaryRemovalMessageConstant       = "unable to remove temporary download"
	installPathFieldNameConstant          = "install_path"
	installedVersionFieldNameConstant     = "installed_version"
	downloadedVersionFieldNameConstant    = "downloaded_version"
	markerPathFieldNameConstant           = "marker_path"
	temporaryPathFieldNameConstant        = "temporary_path"
)

var (
	// ErrDownloadURLMissing indicates the updater was created without a source URL.
	ErrDownloadURLMissing = errors.New(downloadURLMissingMessageConstant)
	// ErrInstallPathMissing indicates the updater was created without an install directory.
	ErrInstallPathMissing = errors.New(installPathMissingMessageConstant)
	// ErrSearchPathStoreMissing indicates the updater was created without a search path store.
	ErrSearchPathStoreMissing = errors.New(searchPathStoreMissingMessageConstant)
)

// UpdaterConfiguration describes the artifact source and install location.
type UpdaterConfiguration struct {
	DownloadURL        string
	InstallDirectory   string
	TemporaryDirectory string
	MarkerFileName     string
}

// UpdaterDependencies groups the collaborators used by the updater.
type UpdaterDependencies struct {
	FileSystem      filesystem.FileSystem
	Downloader      Downloader
	Archive         Archive
	SearchPathStore SearchPathStore
	Logger          *zap.Logger
}

// VersionedArtifact reports the outcome of one update attempt.
type VersionedArtifact struct {
	InstallPath       string    `json:"installPath" yaml:"installPath"`
	InstalledVersion  DateStamp `json:"installedVersion,omitempty" yaml:"installedVersion,omitempty"`
	DownloadedVersion DateStamp `json:"downloadedVersion" yaml:"downloadedVersion"`
	Updated           bool      `json:"updated" yaml:"updated"`
	SearchPathUpdated bool      `json:"searchPathUpdated" yaml:"searchPathUpdated"`
}

// ArtifactStatus describes the locally installed artifact without contacting the source.
type ArtifactStatus struct {
	InstallPath      string    `json:"installPath" yaml:"installPath"`
	InstalledVersion DateStamp `json:"installedVersion,omitempty" yaml:"installedVersion,omitempty"`
	OnSearchPath     bool      `json:"onSearchPath" yaml:"onSearchPath"`
}

// Updater installs a remote archive when it is newer than the installed copy.
type Updater struct {
	configuration UpdaterConfiguration
	fileSystem    filesystem.FileSystem
	downloader    Downloader
	archive       Archive
	searchPath    SearchPathStore
	logger        *zap.Logger
}

// NewUpdater validates the configuration and fills in default collaborators.
func NewUpdater(configuration UpdaterConfiguration, dependencies UpdaterDependencies) (*Updater, error) {
	configuration.DownloadURL = strings.TrimSpace(configuration.DownloadURL)
	configuration.InstallDirectory = strings.TrimSpace(configuration.InstallDirectory)
	configuration.MarkerFileName = strings.TrimSpace(configuration.MarkerFileName)

	if len(configuration.InstallDirectory) == 0 {
		return nil, ErrInstallPathMissing
	}
	if dependencies.SearchPathStore == nil {
		return nil, ErrSearchPathStoreMissing
	}
	if len(configuration.MarkerFileName) == 0 {
		configuration.MarkerFileName = DefaultMarkerFileNameConstant
	}

	downloader := dependencies.Downloader
	if downloader == nil {
		downloader = HTTPDownloader{}
	}
	archive := dependencies.Archive
	if archive == nil {
		archive = ZipArchive{}
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Updater{
		configuration: configuration,
		fileSystem:    filesystem.Resolve(dependencies.FileSystem),
		downloader:    downloader,
		archive:       archive,
		searchPath:    dependencies.SearchPathStore,
		logger:        logger,
	}, nil
}

// Status reports the installed version and search path membership.
// A missing install directory yields an error wrapping ErrUnavailable.
func (updater *Updater) Status() (ArtifactStatus, error) {
	installDirectory := updater.configuration.InstallDirectory
	if _, statError := updater.fileSystem.Stat(installDirectory); statError != nil {
		if errors.Is(statError, fs.ErrNotExist) {
			return ArtifactStatus{}, vitalerrors.WrapMessage(vitalerrors.OperationArtifactUpdate, installDirectory, vitalerrors.ErrUnavailable, fmt.Sprintf(notInstalledMessageTemplateConstant, installDirectory))
		}
		return ArtifactStatus{}, vitalerrors.Wrap(vitalerrors.OperationArtifactUpdate, installDirectory, vitalerrors.ErrIOFailure, statError)
	}

	installedVersion, markerError := updater.readInstalledVersion()
	if markerError != nil {
		return ArtifactStatus{}, markerError
	}

	searchPath, readError := updater.searchPath.ReadSearchPath()
	if readError != nil {
		return ArtifactStatus{}, vitalerrors.Wrap(vitalerrors.OperationSearchPathUpdate, installDirectory, vitalerrors.ErrIOFailure, readError)
	}

	return ArtifactStatus{
		InstallPath:      installDirectory,
		InstalledVersion: installedVersion,
		OnSearchPath:     SearchPathContains(searchPath, installDirectory),
	}, nil
}

// Update downloads the archive, installs it when strictly newer than the installed version,
// and ensures the install directory is a segment of the search path.
func (updater *Updater) Update(executionContext context.Context) (VersionedArtifact, error) {
	installDirectory := updater.configuration.InstallDirectory
	if len(updater.configuration.DownloadURL) == 0 {
		return VersionedArtifact{}, vitalerrors.Wrap(vitalerrors.OperationArtifactUpdate, installDirectory, vitalerrors.ErrDownloadFailed, ErrDownloadURLMissing)
	}

	installedVersion, markerError := updater.readInstalledVersion()
	if markerError != nil {
		return VersionedArtifact{}, markerError
	}

	downloadPath, downloadError := updater.downloader.Download(executionContext, updater.configuration.DownloadURL, updater.configuration.TemporaryDirectory)
	if downloadError != nil {
		return VersionedArtifact{}, vitalerrors.Wrap(vitalerrors.OperationArtifactUpdate, installDirectory, vitalerrors.ErrDownloadFailed, downloadError)
	}
	defer updater.removeTemporaryDownload(downloadPath)

	candidateVersion, versionError := updater.archive.Version(downloadPath)
	if versionError != nil {
		return VersionedArtifact{}, vitalerrors.Wrap(vitalerrors.OperationArtifactUpdate, installDirectory, vitalerrors.ErrIOFailure, versionError)
	}

	artifact := VersionedArtifact{
		InstallPath:       installDirectory,
		InstalledVersion:  installedVersion,
		DownloadedVersion: candidateVersion,
	}

	switch {
	case len(installedVersion) == 0 || candidateVersion.Compare(installedVersion) > 0:
		if installError := updater.install(downloadPath, candidateVersion); installError != nil {
			return VersionedArtifact{}, installError
		}
		artifact.InstalledVersion = candidateVersion
		artifact.Updated = true
		updater.logger.Info(artifactInstalledMessageConstant,
			zap.String(installPathFieldNameConstant, installDirectory),
			zap.String(installedVersionFieldNameConstant, installedVersion.String()),
			zap.String(downloadedVersionFieldNameConstant, candidateVersion.String()),
		)
	case candidateVersion.Compare(installedVersion) < 0:
		updater.logger.Warn(candidateOlderMessageConstant,
			zap.String(installPathFieldNameConstant, installDirectory),
			zap.String(installedVersionFieldNameConstant, installedVersion.String()),
			zap.String(downloadedVersionFieldNameConstant, candidateVersion.String()),
		)
	default:
		updater.logger.Info(artifactCurrentMessageConstant,
			zap.String(installPathFieldNameConstant, installDirectory),
			zap.String(installedVersionFieldNameConstant, installedVersion.String()),
		)
	}

	searchPathUpdated, searchPathError := updater.ensureSearchPath()
	if searchPathError != nil {
		return artifact, searchPathError
	}
	artifact.SearchPathUpdated = searchPathUpdated
	return artifact, nil
}

func (updater *Updater) markerPath(directory string) string {
	return filepath.Join(directory, updater.configuration.MarkerFileName)
}

func (updater *Updater) readInstalledVersion() (DateStamp, error) {
	markerPath := updater.markerPath(updater.configuration.InstallDirectory)
	contents, readError := updater.fileSystem.ReadFile(markerPath)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			return "", nil
		}
		return "", vitalerrors.Wrap(vitalerrors.OperationArtifactUpdate, markerPath, vitalerrors.ErrIOFailure, readError)
	}

	firstLine, _, _ := strings.Cut(string(contents), "\n")
	stamp, parseError := ParseDateStamp(firstLine)
	if parseError != nil {
		updater.logger.Warn(invalidMarkerMessageConstant, zap.String(markerPathFieldNameConstant, markerPath), zap.Error(parseError))
		return "", nil
	}
	return stamp, nil
}

// install extracts into a sibling staging directory, writes the marker there, and swaps it into place.
func (updater *Updater) install(downloadPath string, version DateStamp) error {
	installDirectory := filepath.Clean(updater.configuration.InstallDirectory)
	parentDirectory := filepath.Dir(installDirectory)
	if mkdirError := updater.fileSystem.MkdirAll(parentDirectory, installParentPermissionsConstant); mkdirError != nil {
		return vitalerrors.Wrap(vitalerrors.OperationArtifactUpdate, parentDirectory, vitalerrors.ErrIOFailure, mkdirError)
	}

	stagingDirectory := filepath.Join(parentDirectory, fmt.Sprintf(stagingDirectoryTemplateConstant, filepath.Base(installDirectory), uuid.NewString()))
	if extractError := updater.archive.Extract(downloadPath, stagingDirectory); extractError != nil {
		updater.fileSystem.RemoveAll(stagingDirectory)
		return vitalerrors.Wrap(vitalerrors.OperationArtifactUpdate, stagingDirectory, vitalerrors.ErrIOFailure, extractError)
	}

	if writeError := updater.fileSystem.WriteFile(updater.markerPath(stagingDirectory), []byte(version.String()), markerFilePermissionsConstant); writeError != nil {
		updater.fileSystem.RemoveAll(stagingDirectory)
		return vitalerrors.Wrap(vitalerrors.OperationArtifactUpdate, stagingDirectory, vitalerrors.ErrIOFailure, writeError)
	}

	if removeError := updater.fileSystem.RemoveAll(installDirectory); removeError != nil {
		updater.fileSystem.RemoveAll(stagingDirectory)
		return vitalerrors.Wrap(vitalerrors.OperationArtifactUpdate, installDirectory, vitalerrors.ErrIOFailure, removeError)
	}
	if renameError := updater.fileSystem.Rename(stagingDirectory, installDirectory); renameError != nil {
		updater.fileSystem.RemoveAll(stagingDirectory)
		return vitalerrors.Wrap(vitalerrors.OperationArtifactUpdate, installDirectory, vitalerrors.ErrIOFailure, renameError)
	}
	return nil
}

func (updater *Updater) ensureSearchPath() (bool, error) {
	installDirectory := updater.configuration.InstallDirectory
	currentPath, readError := updater.searchPath.ReadSearchPath()
	if readError != nil {
		return false, vitalerrors.Wrap(vitalerrors.OperationSearchPathUpdate, installDirectory, vitalerrors.ErrIOFailure, readError)
	}

	updatedPath, changed := EnsureSearchPathSegment(currentPath, installDirectory)
	if !changed {
		return false, nil
	}
	if writeError := updater.searchPath.WriteSearchPath(updatedPath); writeError != nil {
		return false, vitalerrors.Wrap(vitalerrors.OperationSearchPathUpdate, installDirectory, vitalerrors.ErrIOFailure, writeError)
	}
	updater.logger.Info(searchPathUpdatedMessageConstant, zap.String(installPathFieldNameConstant, installDirectory))
	return true, nil
}

func (updater *Updater) removeTemporaryDownload(downloadPath string) {
	if removeError := updater.fileSystem.Remove(downloadPath); removeError != nil && !errors.Is(removeError, fs.ErrNotExist) {
		updater.logger.Warn(temporaryRemovalMessageConstant, zap.String(temporaryPathFieldNameConstant, downloadPath), zap.Error(removeError))
	}
}
