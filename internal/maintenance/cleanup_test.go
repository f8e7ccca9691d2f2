package maintenance_test

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	vitalerrors "github.com/tyemirov/winvitals/internal/errors"
	"github.com/tyemirov/winvitals/internal/filesystem"
	"github.com/tyemirov/winvitals/internal/maintenance"
)

type lockingFileSystem struct {
	filesystem.OSFileSystem
	locked map[string]bool
}

func (fileSystem lockingFileSystem) RemoveAll(path string) error {
	if fileSystem.locked[filepath.Base(path)] {
		return &fs.PathError{Op: "remove", Path: path, Err: errors.New("file in use")}
	}
	return fileSystem.OSFileSystem.RemoveAll(path)
}

type unreadableFileSystem struct {
	filesystem.OSFileSystem
}

func (unreadableFileSystem) ReadDir(path string) ([]fs.DirEntry, error) {
	return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrPermission}
}

func TestEmptyDirectoriesCountsEntriesInUse(testInstance *testing.T) {
	directory := testInstance.TempDir()
	for _, name := range []string{"a.tmp", "b.tmp", "locked.tmp"} {
		require.NoError(testInstance, os.WriteFile(filepath.Join(directory, name), []byte(name), 0o644))
	}

	summary, cleanupError := maintenance.EmptyDirectories(lockingFileSystem{locked: map[string]bool{"locked.tmp": true}}, []string{directory}, nil)
	require.NoError(testInstance, cleanupError)
	require.Equal(testInstance, 2, summary.RemovedEntries)
	require.Equal(testInstance, 1, summary.InUseEntries)
	require.Equal(testInstance, []maintenance.DirectoryCleanup{{Path: directory, RemovedEntries: 2, InUseEntries: 1}}, summary.Directories)

	remaining, listError := os.ReadDir(directory)
	require.NoError(testInstance, listError)
	require.Len(testInstance, remaining, 1)
	require.Equal(testInstance, "locked.tmp", remaining[0].Name())
}

func TestEmptyDirectoriesReportsUnreadableDirectory(testInstance *testing.T) {
	_, cleanupError := maintenance.EmptyDirectories(unreadableFileSystem{}, []string{testInstance.TempDir()}, nil)
	require.ErrorIs(testInstance, cleanupError, vitalerrors.ErrIOFailure)
}
