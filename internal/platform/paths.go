package platform

import (
	"os"
	"strings"
)

const (
	windowsPathSeparatorConstant         = `\`
	programFilesVariableConstant         = "ProgramFiles"
	programFilesNativeVariableConstant   = "ProgramW6432"
	systemRootVariableConstant           = "SystemRoot"
	programDataVariableConstant          = "ProgramData"
	localApplicationDataVariableConstant = "LOCALAPPDATA"
	temporaryVariableConstant            = "TEMP"
	temporaryFallbackVariableConstant    = "TMP"
	defaultSystemRootConstant            = `C:\Windows`
	defaultProgramFilesConstant          = `C:\Program Files`
	defaultProgramDataConstant           = `C:\ProgramData`
	systemTemporaryDirectoryNameConstant = "Temp"
	kernelDumpFileNameConstant           = "MEMORY.DMP"
	minidumpDirectoryNameConstant        = "Minidump"
	crashDumpsDirectoryNameConstant      = "CrashDumps"
	errorReportRelativeDirectoryConstant = `Microsoft\Windows\WER`
	errorReportArchiveDirectoryConstant  = "ReportArchive"
	errorReportQueueDirectoryConstant    = "ReportQueue"
	serviceProfilesRelativeConstant      = "ServiceProfiles"
	localServiceProfileNameConstant      = "LocalService"
	networkServiceProfileNameConstant    = "NetworkService"
	profileLocalApplicationDataConstant  = `AppData\Local`
	systemProfileRelativeConstant        = `System32\config\systemprofile`
	internetOptionsRelativeConstant      = `System32\inetcpl.cpl`
)

// EnvironmentLookup resolves one environment variable.
type EnvironmentLookup func(name string) (string, bool)

// ProcessEnvironment reads the current process environment.
func ProcessEnvironment() EnvironmentLookup {
	return os.LookupEnv
}

// EnvironmentFromMap resolves variables from a fixed snapshot. Names match case-insensitively.
func EnvironmentFromMap(values map[string]string) EnvironmentLookup {
	normalized := make(map[string]string, len(values))
	for name, value := range values {
		normalized[strings.ToUpper(name)] = value
	}
	return func(name string) (string, bool) {
		value, found := normalized[strings.ToUpper(name)]
		return value, found
	}
}

// CrashDumpLocations lists where the operating system writes crash dumps.
type CrashDumpLocations struct {
	KernelDumpFile  string
	DumpDirectories []string
}

// HostPaths groups the well-known directories resolved once from the environment.
type HostPaths struct {
	ProgramFilesDirectory  string
	TemporaryDirectories   []string
	ErrorReportDirectories []string
	CrashDumps             CrashDumpLocations
	InternetOptionsLibrary string
}

// ResolveHostPaths derives the well-known directories from an environment snapshot.
func ResolveHostPaths(lookup EnvironmentLookup) HostPaths {
	systemRoot := lookupWithDefault(lookup, systemRootVariableConstant, defaultSystemRootConstant)
	programData := lookupWithDefault(lookup, programDataVariableConstant, defaultProgramDataConstant)
	localApplicationData := lookupWithDefault(lookup, localApplicationDataVariableConstant, "")

	errorReportDirectories := []string{
		JoinWindowsPath(programData, errorReportRelativeDirectoryConstant, errorReportArchiveDirectoryConstant),
		JoinWindowsPath(programData, errorReportRelativeDirectoryConstant, errorReportQueueDirectoryConstant),
	}
	dumpDirectories := []string{
		JoinWindowsPath(systemRoot, minidumpDirectoryNameConstant),
	}
	if len(localApplicationData) > 0 {
		errorReportDirectories = append(errorReportDirectories,
			JoinWindowsPath(localApplicationData, errorReportRelativeDirectoryConstant, errorReportArchiveDirectoryConstant),
			JoinWindowsPath(localApplicationData, errorReportRelativeDirectoryConstant, errorReportQueueDirectoryConstant),
		)
		dumpDirectories = append(dumpDirectories, JoinWindowsPath(localApplicationData, crashDumpsDirectoryNameConstant))
	}
	dumpDirectories = append(dumpDirectories,
		JoinWindowsPath(systemRoot, serviceProfilesRelativeConstant, localServiceProfileNameConstant, profileLocalApplicationDataConstant, crashDumpsDirectoryNameConstant),
		JoinWindowsPath(systemRoot, serviceProfilesRelativeConstant, networkServiceProfileNameConstant, profileLocalApplicationDataConstant, crashDumpsDirectoryNameConstant),
		JoinWindowsPath(systemRoot, systemProfileRelativeConstant, profileLocalApplicationDataConstant, crashDumpsDirectoryNameConstant),
	)

	return HostPaths{
		ProgramFilesDirectory:  resolveNativeProgramFiles(lookup),
		TemporaryDirectories:   resolveTemporaryDirectories(lookup, systemRoot),
		ErrorReportDirectories: errorReportDirectories,
		CrashDumps: CrashDumpLocations{
			KernelDumpFile:  JoinWindowsPath(systemRoot, kernelDumpFileNameConstant),
			DumpDirectories: dumpDirectories,
		},
		InternetOptionsLibrary: JoinWindowsPath(systemRoot, internetOptionsRelativeConstant),
	}
}

// JoinWindowsPath joins path elements with backslashes regardless of the build platform.
func JoinWindowsPath(elements ...string) string {
	trimmed := make([]string, 0, len(elements))
	for index, element := range elements {
		if index > 0 {
			element = strings.TrimLeft(element, windowsPathSeparatorConstant)
		}
		element = strings.TrimRight(element, windowsPathSeparatorConstant)
		if len(element) == 0 {
			continue
		}
		trimmed = append(trimmed, element)
	}
	return strings.Join(trimmed, windowsPathSeparatorConstant)
}

// resolveNativeProgramFiles prefers the native Program Files directory so a 32-bit process
// on a 64-bit host does not install into the redirected location.
func resolveNativeProgramFiles(lookup EnvironmentLookup) string {
	if native := lookupWithDefault(lookup, programFilesNativeVariableConstant, ""); len(native) > 0 {
		return native
	}
	return lookupWithDefault(lookup, programFilesVariableConstant, defaultProgramFilesConstant)
}

func resolveTemporaryDirectories(lookup EnvironmentLookup, systemRoot string) []string {
	candidates := []string{
		lookupWithDefault(lookup, temporaryVariableConstant, ""),
		lookupWithDefault(lookup, temporaryFallbackVariableConstant, ""),
		JoinWindowsPath(systemRoot, systemTemporaryDirectoryNameConstant),
	}
	directories := make([]string, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, candidate := range candidates {
		if len(candidate) == 0 {
			continue
		}
		key := strings.ToLower(strings.TrimRight(candidate, windowsPathSeparatorConstant))
		if _, duplicate := seen[key]; duplicate {
			continue
		}
		seen[key] = struct{}{}
		directories = append(directories, candidate)
	}
	return directories
}

func lookupWithDefault(lookup EnvironmentLookup, name string, fallback string) string {
	if lookup == nil {
		return fallback
	}
	value, found := lookup(name)
	value = strings.TrimSpace(value)
	if !found || len(value) == 0 {
		return fallback
	}
	return value
}
