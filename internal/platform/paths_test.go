package platform_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/winvitals/internal/platform"
)

func TestResolveHostPathsFromSnapshot(testInstance *testing.T) {
	lookup := platform.EnvironmentFromMap(map[string]string{
		"SystemRoot":   `D:\Windows`,
		"ProgramData":  `D:\ProgramData`,
		"LOCALAPPDATA": `C:\Users\operator\AppData\Local`,
		"TEMP":         `C:\Users\operator\AppData\Local\Temp`,
		"TMP":          `C:\Users\operator\AppData\Local\Temp\`,
		"ProgramFiles": `C:\Program Files (x86)`,
		"ProgramW6432": `C:\Program Files`,
	})

	paths := platform.ResolveHostPaths(lookup)

	require.Equal(testInstance, `C:\Program Files`, paths.ProgramFilesDirectory)
	require.Equal(testInstance, []string{`C:\Users\operator\AppData\Local\Temp`, `D:\Windows\Temp`}, paths.TemporaryDirectories)
	require.Equal(testInstance, []string{
		`D:\ProgramData\Microsoft\Windows\WER\ReportArchive`,
		`D:\ProgramData\Microsoft\Windows\WER\ReportQueue`,
		`C:\Users\operator\AppData\Local\Microsoft\Windows\WER\ReportArchive`,
		`C:\Users\operator\AppData\Local\Microsoft\Windows\WER\ReportQueue`,
	}, paths.ErrorReportDirectories)
	require.Equal(testInstance, `D:\Windows\MEMORY.DMP`, paths.CrashDumps.KernelDumpFile)
	require.Equal(testInstance, []string{
		`D:\Windows\Minidump`,
		`C:\Users\operator\AppData\Local\CrashDumps`,
		`D:\Windows\ServiceProfiles\LocalService\AppData\Local\CrashDumps`,
		`D:\Windows\ServiceProfiles\NetworkService\AppData\Local\CrashDumps`,
		`D:\Windows\System32\config\systemprofile\AppData\Local\CrashDumps`,
	}, paths.CrashDumps.DumpDirectories)
	require.Equal(testInstance, `D:\Windows\System32\inetcpl.cpl`, paths.InternetOptionsLibrary)
}

func TestResolveHostPathsDefaults(testInstance *testing.T) {
	paths := platform.ResolveHostPaths(platform.EnvironmentFromMap(map[string]string{
		"programfiles": `E:\Apps`,
	}))

	require.Equal(testInstance, `E:\Apps`, paths.ProgramFilesDirectory)
	require.Equal(testInstance, []string{`C:\Windows\Temp`}, paths.TemporaryDirectories)
	require.Len(testInstance, paths.ErrorReportDirectories, 2)
	require.Equal(testInstance, `C:\Windows\MEMORY.DMP`, paths.CrashDumps.KernelDumpFile)
}

func TestJoinWindowsPath(testInstance *testing.T) {
	testCases := []struct {
		name     string
		elements []string
		expected string
	}{
		{name: "drive_root", elements: []string{`C:\`, "Temp"}, expected: `C:\Temp`},
		{name: "nested", elements: []string{`C:\Windows`, `\System32\`, "drivers"}, expected: `C:\Windows\System32\drivers`},
		{name: "empty_elements", elements: []string{`C:\Windows`, "", "Temp"}, expected: `C:\Windows\Temp`},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, platform.JoinWindowsPath(testCase.elements...))
		})
	}
}
