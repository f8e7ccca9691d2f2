package artifact_test

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/tyemirov/winvitals/internal/artifact"
	vitalerrors "github.com/tyemirov/winvitals/internal/errors"
)

const (
	testInstallDirectoryNameConstant = "Sysinternals"
	testExecutableNameConstant       = "procexp.exe"
	testExecutableContentsConstant   = "binary"
	testInitialSearchPathConstant    = `C:\Windows;C:\Windows\System32`
)

type archiveEntry struct {
	name     string
	contents string
	modified time.Time
}

func buildArchive(testInstance *testing.T, entries ...archiveEntry) []byte {
	testInstance.Helper()
	var buffer bytes.Buffer
	writer := zip.NewWriter(&buffer)
	for _, entry := range entries {
		header := &zip.FileHeader{Name: entry.name, Method: zip.Deflate, Modified: entry.modified}
		entryWriter, createError := writer.CreateHeader(header)
		require.NoError(testInstance, createError)
		_, writeError := entryWriter.Write([]byte(entry.contents))
		require.NoError(testInstance, writeError)
	}
	require.NoError(testInstance, writer.Close())
	return buffer.Bytes()
}

func noonUTC(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
}

type archiveServer struct {
	server  *httptest.Server
	payload []byte
	status  int
	hits    int
}

func newArchiveServer(testInstance *testing.T, payload []byte) *archiveServer {
	served := &archiveServer{payload: payload, status: http.StatusOK}
	served.server = httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		served.hits++
		if served.status != http.StatusOK {
			responseWriter.WriteHeader(served.status)
			return
		}
		_, _ = responseWriter.Write(served.payload)
	}))
	testInstance.Cleanup(served.server.Close)
	return served
}

type memorySearchPathStore struct {
	value      string
	writeCount int
	readError  error
}

func (store *memorySearchPathStore) ReadSearchPath() (string, error) {
	return store.value, store.readError
}

func (store *memorySearchPathStore) WriteSearchPath(value string) error {
	store.value = value
	store.writeCount++
	return nil
}

type updaterFixture struct {
	updater            *artifact.Updater
	installDirectory   string
	temporaryDirectory string
	searchPath         *memorySearchPathStore
	server             *archiveServer
	logs               *observer.ObservedLogs
}

func newUpdaterFixture(testInstance *testing.T, payload []byte) *updaterFixture {
	testInstance.Helper()
	rootDirectory := testInstance.TempDir()
	temporaryDirectory := filepath.Join(rootDirectory, "temp")
	require.NoError(testInstance, os.MkdirAll(temporaryDirectory, 0o755))
	installDirectory := filepath.Join(rootDirectory, "programs", testInstallDirectoryNameConstant)

	observerCore, observedLogs := observer.New(zap.DebugLevel)
	server := newArchiveServer(testInstance, payload)
	searchPath := &memorySearchPathStore{value: testInitialSearchPathConstant}

	updater, creationError := artifact.NewUpdater(
		artifact.UpdaterConfiguration{
			DownloadURL:        server.server.URL + "/SysinternalsSuite.zip",
			InstallDirectory:   installDirectory,
			TemporaryDirectory: temporaryDirectory,
		},
		artifact.UpdaterDependencies{
			Downloader:      artifact.HTTPDownloader{Client: server.server.Client()},
			SearchPathStore: searchPath,
			Logger:          zap.New(observerCore),
		},
	)
	require.NoError(testInstance, creationError)

	return &updaterFixture{
		updater:            updater,
		installDirectory:   installDirectory,
		temporaryDirectory: temporaryDirectory,
		searchPath:         searchPath,
		server:             server,
		logs:               observedLogs,
	}
}

func readMarker(testInstance *testing.T, installDirectory string) string {
	contents, readError := os.ReadFile(filepath.Join(installDirectory, artifact.DefaultMarkerFileNameConstant))
	require.NoError(testInstance, readError)
	return string(contents)
}

func requireTemporaryDirectoryEmpty(testInstance *testing.T, temporaryDirectory string) {
	entries, listError := os.ReadDir(temporaryDirectory)
	require.NoError(testInstance, listError)
	require.Empty(testInstance, entries)
}

func TestNewUpdaterValidation(testInstance *testing.T) {
	_, missingPathError := artifact.NewUpdater(artifact.UpdaterConfiguration{}, artifact.UpdaterDependencies{SearchPathStore: &memorySearchPathStore{}})
	require.ErrorIs(testInstance, missingPathError, artifact.ErrInstallPathMissing)

	_, missingStoreError := artifact.NewUpdater(artifact.UpdaterConfiguration{InstallDirectory: testInstance.TempDir()}, artifact.UpdaterDependencies{})
	require.ErrorIs(testInstance, missingStoreError, artifact.ErrSearchPathStoreMissing)
}

func TestUpdaterInstallsOnceAndIsIdempotent(testInstance *testing.T) {
	payload := buildArchive(testInstance,
		archiveEntry{name: testExecutableNameConstant, contents: testExecutableContentsConstant, modified: noonUTC(2024, time.January, 10)},
		archiveEntry{name: "docs/Eula.txt", contents: "eula", modified: noonUTC(2024, time.January, 15)},
	)
	fixture := newUpdaterFixture(testInstance, payload)

	firstRun, firstError := fixture.updater.Update(context.Background())
	require.NoError(testInstance, firstError)
	require.True(testInstance, firstRun.Updated)
	require.True(testInstance, firstRun.SearchPathUpdated)
	require.Equal(testInstance, artifact.DateStamp("20240115"), firstRun.DownloadedVersion)
	require.Equal(testInstance, artifact.DateStamp("20240115"), firstRun.InstalledVersion)
	require.Equal(testInstance, "20240115", readMarker(testInstance, fixture.installDirectory))
	require.Equal(testInstance, testInitialSearchPathConstant+";"+fixture.installDirectory, fixture.searchPath.value)

	executable, readError := os.ReadFile(filepath.Join(fixture.installDirectory, testExecutableNameConstant))
	require.NoError(testInstance, readError)
	require.Equal(testInstance, testExecutableContentsConstant, string(executable))
	_, docsError := os.Stat(filepath.Join(fixture.installDirectory, "docs", "Eula.txt"))
	require.NoError(testInstance, docsError)
	requireTemporaryDirectoryEmpty(testInstance, fixture.temporaryDirectory)

	siblings, siblingsError := os.ReadDir(filepath.Dir(fixture.installDirectory))
	require.NoError(testInstance, siblingsError)
	require.Len(testInstance, siblings, 1)

	secondRun, secondError := fixture.updater.Update(context.Background())
	require.NoError(testInstance, secondError)
	require.False(testInstance, secondRun.Updated)
	require.False(testInstance, secondRun.SearchPathUpdated)
	require.Equal(testInstance, artifact.DateStamp("20240115"), secondRun.InstalledVersion)
	require.Equal(testInstance, "20240115", readMarker(testInstance, fixture.installDirectory))
	require.Equal(testInstance, 1, fixture.searchPath.writeCount)
	require.Equal(testInstance, 2, fixture.server.hits)
	requireTemporaryDirectoryEmpty(testInstance, fixture.temporaryDirectory)
}

func TestUpdaterComparesVersionsAsDates(testInstance *testing.T) {
	testCases := []struct {
		name             string
		installedMarker  string
		candidateDay     int
		expectUpdated    bool
		expectedVersion  artifact.DateStamp
		expectedWarnings int
	}{
		{name: "newer_candidate_installs", installedMarker: "20240110", candidateDay: 20, expectUpdated: true, expectedVersion: "20240120"},
		{name: "equal_candidate_keeps", installedMarker: "20240120", candidateDay: 20, expectedVersion: "20240120"},
		{name: "older_candidate_warns", installedMarker: "20240125", candidateDay: 20, expectedVersion: "20240125", expectedWarnings: 1},
		{name: "unreadable_marker_reinstalls", installedMarker: "not-a-date", candidateDay: 20, expectUpdated: true, expectedVersion: "20240120", expectedWarnings: 1},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			payload := buildArchive(testInstance, archiveEntry{name: testExecutableNameConstant, contents: testExecutableContentsConstant, modified: noonUTC(2024, time.January, testCase.candidateDay)})
			fixture := newUpdaterFixture(testInstance, payload)

			require.NoError(testInstance, os.MkdirAll(fixture.installDirectory, 0o755))
			require.NoError(testInstance, os.WriteFile(filepath.Join(fixture.installDirectory, artifact.DefaultMarkerFileNameConstant), []byte(testCase.installedMarker+"\r\n"), 0o644))
			require.NoError(testInstance, os.WriteFile(filepath.Join(fixture.installDirectory, "stale.exe"), []byte("old"), 0o644))

			result, updateError := fixture.updater.Update(context.Background())
			require.NoError(testInstance, updateError)
			require.Equal(testInstance, testCase.expectUpdated, result.Updated)
			require.Equal(testInstance, testCase.expectedVersion, result.InstalledVersion)
			require.Equal(testInstance, artifact.DateStamp(fmt.Sprintf("202401%02d", testCase.candidateDay)), result.DownloadedVersion)

			_, staleError := os.Stat(filepath.Join(fixture.installDirectory, "stale.exe"))
			if testCase.expectUpdated {
				require.True(testInstance, errors.Is(staleError, os.ErrNotExist))
				require.Equal(testInstance, string(testCase.expectedVersion), readMarker(testInstance, fixture.installDirectory))
			} else {
				require.NoError(testInstance, staleError)
			}

			require.Equal(testInstance, testCase.expectedWarnings, fixture.logs.FilterLevelExact(zapcore.WarnLevel).Len())
			requireTemporaryDirectoryEmpty(testInstance, fixture.temporaryDirectory)
		})
	}
}

func TestUpdaterDownloadFailureLeavesNoState(testInstance *testing.T) {
	fixture := newUpdaterFixture(testInstance, nil)
	fixture.server.status = http.StatusInternalServerError

	result, updateError := fixture.updater.Update(context.Background())
	require.ErrorIs(testInstance, updateError, vitalerrors.ErrDownloadFailed)
	require.Equal(testInstance, artifact.VersionedArtifact{}, result)

	_, statError := os.Stat(fixture.installDirectory)
	require.True(testInstance, errors.Is(statError, os.ErrNotExist))
	require.Equal(testInstance, testInitialSearchPathConstant, fixture.searchPath.value)
	require.Zero(testInstance, fixture.searchPath.writeCount)
	requireTemporaryDirectoryEmpty(testInstance, fixture.temporaryDirectory)
}

func TestUpdaterStatus(testInstance *testing.T) {
	payload := buildArchive(testInstance, archiveEntry{name: testExecutableNameConstant, contents: testExecutableContentsConstant, modified: noonUTC(2024, time.March, 2)})
	fixture := newUpdaterFixture(testInstance, payload)

	_, missingError := fixture.updater.Status()
	require.ErrorIs(testInstance, missingError, vitalerrors.ErrUnavailable)

	_, updateError := fixture.updater.Update(context.Background())
	require.NoError(testInstance, updateError)

	status, statusError := fixture.updater.Status()
	require.NoError(testInstance, statusError)
	require.Equal(testInstance, fixture.installDirectory, status.InstallPath)
	require.Equal(testInstance, artifact.DateStamp("20240302"), status.InstalledVersion)
	require.True(testInstance, status.OnSearchPath)
}

func TestEnsureSearchPathSegment(testInstance *testing.T) {
	testCases := []struct {
		name          string
		current       string
		directory     string
		expectedPath  string
		expectChanged bool
	}{
		{name: "appends_missing", current: "A;B", directory: "D", expectedPath: "A;B;D", expectChanged: true},
		{name: "keeps_present", current: "A;D;B", directory: "D", expectedPath: "A;D;B"},
		{name: "keeps_present_last", current: "A;B;D", directory: "D", expectedPath: "A;B;D"},
		{name: "keeps_present_with_separators", current: ";D;", directory: "D", expectedPath: ";D;"},
		{name: "reuses_trailing_separator", current: "A;B;", directory: "D", expectedPath: "A;B;D", expectChanged: true},
		{name: "empty_path", current: "", directory: "D", expectedPath: "D", expectChanged: true},
		{name: "partial_match_is_not_present", current: `A;C:\Tools\D`, directory: `C:\Tools`, expectedPath: `A;C:\Tools\D;C:\Tools`, expectChanged: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			updatedPath, changed := artifact.EnsureSearchPathSegment(testCase.current, testCase.directory)
			require.Equal(testInstance, testCase.expectedPath, updatedPath)
			require.Equal(testInstance, testCase.expectChanged, changed)
		})
	}
}

func TestDateStamp(testInstance *testing.T) {
	stamp, parseError := artifact.ParseDateStamp(" 20240229 ")
	require.NoError(testInstance, parseError)
	require.Equal(testInstance, artifact.DateStamp("20240229"), stamp)

	_, invalidError := artifact.ParseDateStamp("20240230")
	require.Error(testInstance, invalidError)

	require.Equal(testInstance, 1, artifact.DateStamp("20240301").Compare("20240229"))
	require.Equal(testInstance, -1, artifact.DateStamp("20231231").Compare("20240101"))
	require.Equal(testInstance, 0, artifact.DateStamp("20240101").Compare("20240101"))
	require.Equal(testInstance, artifact.DateStamp("20240115"), artifact.DateStampFromTime(time.Date(2024, time.January, 15, 23, 59, 0, 0, time.UTC)))
}

func TestZipArchiveRejectsEscapingEntries(testInstance *testing.T) {
	rootDirectory := testInstance.TempDir()
	archivePath := filepath.Join(rootDirectory, "escape.zip")
	payload := buildArchive(testInstance, archiveEntry{name: "../escaped.txt", contents: "x", modified: noonUTC(2024, time.January, 1)})
	require.NoError(testInstance, os.WriteFile(archivePath, payload, 0o644))

	extractError := artifact.ZipArchive{}.Extract(archivePath, filepath.Join(rootDirectory, "target"))
	require.Error(testInstance, extractError)
	_, statError := os.Stat(filepath.Join(rootDirectory, "escaped.txt"))
	require.True(testInstance, errors.Is(statError, os.ErrNotExist))
}

func TestZipArchiveVersionRejectsEmptyArchive(testInstance *testing.T) {
	archivePath := filepath.Join(testInstance.TempDir(), "empty.zip")
	require.NoError(testInstance, os.WriteFile(archivePath, buildArchive(testInstance), 0o644))

	_, versionError := artifact.ZipArchive{}.Version(archivePath)
	require.ErrorIs(testInstance, versionError, artifact.ErrArchiveEmpty)
}

func TestZipArchiveVersionRejectsUndatedEntries(testInstance *testing.T) {
	archivePath := filepath.Join(testInstance.TempDir(), "undated.zip")
	payload := buildArchive(testInstance,
		archiveEntry{name: testExecutableNameConstant, contents: testExecutableContentsConstant},
		archiveEntry{name: "psexec.exe", contents: testExecutableContentsConstant},
	)
	require.NoError(testInstance, os.WriteFile(archivePath, payload, 0o644))

	_, versionError := artifact.ZipArchive{}.Version(archivePath)
	require.ErrorIs(testInstance, versionError, artifact.ErrArchiveUndated)
}
