package filesystem_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/winvitals/internal/filesystem"
)

const (
	testFileNameConstant     = "version.txt"
	testFileContentsConstant = "20240115"
	testRenamedNameConstant  = "renamed.txt"
)

func TestOSFileSystemRoundTrip(testInstance *testing.T) {
	fileSystem := filesystem.Resolve(nil)
	rootDirectory := testInstance.TempDir()

	nestedDirectory := filepath.Join(rootDirectory, "nested", "child")
	require.NoError(testInstance, fileSystem.MkdirAll(nestedDirectory, 0o755))

	filePath := filepath.Join(nestedDirectory, testFileNameConstant)
	require.NoError(testInstance, fileSystem.WriteFile(filePath, []byte(testFileContentsConstant), 0o644))

	contents, readError := fileSystem.ReadFile(filePath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, testFileContentsConstant, string(contents))

	renamedPath := filepath.Join(nestedDirectory, testRenamedNameConstant)
	require.NoError(testInstance, fileSystem.Rename(filePath, renamedPath))

	entries, listError := fileSystem.ReadDir(nestedDirectory)
	require.NoError(testInstance, listError)
	require.Len(testInstance, entries, 1)
	require.Equal(testInstance, testRenamedNameConstant, entries[0].Name())

	temporaryDirectory, temporaryError := fileSystem.MkdirTemp(rootDirectory, "staging-*")
	require.NoError(testInstance, temporaryError)
	_, statError := fileSystem.Stat(temporaryDirectory)
	require.NoError(testInstance, statError)

	require.NoError(testInstance, fileSystem.Remove(renamedPath))
	require.NoError(testInstance, fileSystem.RemoveAll(filepath.Join(rootDirectory, "nested")))
	_, missingError := fileSystem.Stat(nestedDirectory)
	require.Error(testInstance, missingError)
}

type stubFileSystem struct {
	filesystem.OSFileSystem
}

func TestResolvePrefersProvidedFileSystem(testInstance *testing.T) {
	provided := stubFileSystem{}
	require.Equal(testInstance, provided, filesystem.Resolve(provided))
}
