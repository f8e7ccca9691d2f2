package repairtools

import (
	"strings"
)

// Intent selects between the read-only and the mutating form of a tool.
type Intent string

// Supported intents.
const (
	IntentVerify Intent = "verify"
	IntentRepair Intent = "repair"
)

// Tool identifies one of the wrapped repair executables.
type Tool string

// Supported tools.
const (
	ToolComponentStore    Tool = "component_store"
	ToolSystemFileChecker Tool = "system_file_checker"
	ToolFileSystemCheck   Tool = "filesystem_check"
)

// Operation identifies the concrete tool operation performed.
type Operation string

// Supported operations.
const (
	OperationScanHealth            Operation = "ScanHealth"
	OperationRestoreHealth         Operation = "RestoreHealth"
	OperationAnalyzeComponentStore Operation = "AnalyzeComponentStore"
	OperationStartComponentCleanup Operation = "StartComponentCleanup"
	OperationVerifyOnly            Operation = "VerifyOnly"
	OperationScanNow               Operation = "ScanNow"
	OperationVolumeScan            Operation = "Scan"
	OperationVolumeSpotFix         Operation = "SpotFix"
)

// ToolInvocation records one synchronous tool call. It is never mutated after classification.
type ToolInvocation struct {
	Operation  Operation `json:"operation" yaml:"operation"`
	TargetPath string    `json:"targetPath,omitempty" yaml:"targetPath,omitempty"`
	Output     []string  `json:"output" yaml:"output"`
	ExitCode   int       `json:"exitCode" yaml:"exitCode"`
}

// ToolReport pairs an invocation with its classification.
type ToolReport struct {
	Tool       Tool           `json:"tool" yaml:"tool"`
	Invocation ToolInvocation `json:"invocation" yaml:"invocation"`
	Outcome    Outcome        `json:"outcome" yaml:"outcome"`
}

// Volume describes a fixed volume considered for filesystem checks.
type Volume struct {
	DriveLetter string
	Label       string
	FileSystem  string
}

// VolumeScan is the per-volume entry of a filesystem scan.
type VolumeScan struct {
	DriveLetter string          `json:"driveLetter" yaml:"driveLetter"`
	FileSystem  string          `json:"fileSystem" yaml:"fileSystem"`
	Outcome     Outcome         `json:"outcome" yaml:"outcome"`
	Invocation  *ToolInvocation `json:"invocation,omitempty" yaml:"invocation,omitempty"`
}

var (
	onlineVerificationFileSystems = map[string]struct{}{
		"FAT":   {},
		"FAT16": {},
		"FAT32": {},
		"NTFS":  {},
		"NTFS4": {},
		"NTFS5": {},
	}
	onlineRepairFileSystems = map[string]struct{}{
		"NTFS":  {},
		"NTFS4": {},
		"NTFS5": {},
	}
)

// SupportsOnlineVerification reports whether CHKDSK can verify the filesystem while mounted.
func SupportsOnlineVerification(fileSystem string) bool {
	_, supported := onlineVerificationFileSystems[normalizeFileSystem(fileSystem)]
	return supported
}

// SupportsOnlineRepair reports whether CHKDSK can repair the filesystem while mounted.
func SupportsOnlineRepair(fileSystem string) bool {
	_, supported := onlineRepairFileSystems[normalizeFileSystem(fileSystem)]
	return supported
}

func normalizeFileSystem(fileSystem string) string {
	return strings.ToUpper(strings.TrimSpace(fileSystem))
}

// NormalizeDriveLetter renders a drive designator in the `X:` form CHKDSK expects.
func NormalizeDriveLetter(driveLetter string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(driveLetter), `\/`)
	if len(trimmed) == 0 {
		return ""
	}
	trimmed = strings.ToUpper(trimmed)
	if !strings.HasSuffix(trimmed, ":") {
		trimmed += ":"
	}
	return trimmed
}
