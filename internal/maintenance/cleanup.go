package maintenance

import (
	"errors"
	"io/fs"
	"path/filepath"

	"go.uber.org/zap"

	vitalerrors "github.com/tyemirov/winvitals/internal/errors"
	"github.com/tyemirov/winvitals/internal/filesystem"
)

const (
	entryInUseMessageConstant  = "entry could not be removed"
	entryPathFieldNameConstant = "path"
)

// DirectoryCleanup summarizes the removal of one directory's contents.
type DirectoryCleanup struct {
	Path           string `json:"path" yaml:"path"`
	RemovedEntries int    `json:"removedEntries" yaml:"removedEntries"`
	InUseEntries   int    `json:"inUseEntries" yaml:"inUseEntries"`
}

// CleanupSummary aggregates the cleanup of several directories.
type CleanupSummary struct {
	Directories    []DirectoryCleanup `json:"directories" yaml:"directories"`
	RemovedEntries int                `json:"removedEntries" yaml:"removedEntries"`
	InUseEntries   int                `json:"inUseEntries" yaml:"inUseEntries"`
}

// EmptyDirectories removes the contents of every directory while keeping the directories themselves.
// Missing directories are ignored. Entries that cannot be removed, typically because another
// process holds them open, are counted and left in place.
func EmptyDirectories(fileSystem filesystem.FileSystem, directories []string, logger *zap.Logger) (CleanupSummary, error) {
	fileSystem = filesystem.Resolve(fileSystem)
	if logger == nil {
		logger = zap.NewNop()
	}

	summary := CleanupSummary{Directories: make([]DirectoryCleanup, 0, len(directories))}
	for _, directory := range directories {
		entries, listError := fileSystem.ReadDir(directory)
		if listError != nil {
			if errors.Is(listError, fs.ErrNotExist) {
				continue
			}
			return summary, vitalerrors.Wrap(vitalerrors.OperationMaintenanceAction, directory, vitalerrors.ErrIOFailure, listError)
		}

		cleanup := DirectoryCleanup{Path: directory}
		for _, entry := range entries {
			entryPath := filepath.Join(directory, entry.Name())
			if removeError := fileSystem.RemoveAll(entryPath); removeError != nil {
				logger.Debug(entryInUseMessageConstant, zap.String(entryPathFieldNameConstant, entryPath), zap.Error(removeError))
				cleanup.InUseEntries++
				continue
			}
			cleanup.RemovedEntries++
		}

		summary.Directories = append(summary.Directories, cleanup)
		summary.RemovedEntries += cleanup.RemovedEntries
		summary.InUseEntries += cleanup.InUseEntries
	}
	return summary, nil
}
