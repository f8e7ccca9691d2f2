// Package platform collects host facts and performs host actions for the task runners.
// Windows implementations live in _windows.go files; other platforms report every
// capability as unavailable.
package platform

import "time"

// HostSummary describes the operating system and hardware identity of the host.
type HostSummary struct {
	Hostname        string    `json:"hostname" yaml:"hostname"`
	OperatingSystem string    `json:"operatingSystem" yaml:"operatingSystem"`
	Platform        string    `json:"platform" yaml:"platform"`
	PlatformFamily  string    `json:"platformFamily" yaml:"platformFamily"`
	PlatformVersion string    `json:"platformVersion" yaml:"platformVersion"`
	KernelVersion   string    `json:"kernelVersion" yaml:"kernelVersion"`
	Architecture    string    `json:"architecture" yaml:"architecture"`
	UptimeSeconds   uint64    `json:"uptimeSeconds" yaml:"uptimeSeconds"`
	BootTime        time.Time `json:"bootTime" yaml:"bootTime"`
	ProcessBitness  int       `json:"processBitness" yaml:"processBitness"`
}

// Hypervisor describes the virtualization platform hosting the machine.
type Hypervisor struct {
	System string `json:"system" yaml:"system"`
	Role   string `json:"role" yaml:"role"`
}

// Device is a plug and play device entry.
type Device struct {
	Name                   string `json:"name" yaml:"name"`
	DeviceID               string `json:"deviceId" yaml:"deviceId"`
	Class                  string `json:"class,omitempty" yaml:"class,omitempty"`
	Manufacturer           string `json:"manufacturer,omitempty" yaml:"manufacturer,omitempty"`
	Status                 string `json:"status,omitempty" yaml:"status,omitempty"`
	ConfigManagerErrorCode uint32 `json:"configManagerErrorCode" yaml:"configManagerErrorCode"`
}

// EnvironmentSnapshot holds the persisted machine and user environment blocks.
type EnvironmentSnapshot struct {
	Machine map[string]string `json:"machine" yaml:"machine"`
	User    map[string]string `json:"user" yaml:"user"`
}

// OptionalFeature is an enabled Windows optional feature.
type OptionalFeature struct {
	Name    string `json:"name" yaml:"name"`
	Caption string `json:"caption,omitempty" yaml:"caption,omitempty"`
}

// InstalledProgram is one uninstall registry entry.
type InstalledProgram struct {
	Name            string `json:"name" yaml:"name"`
	Version         string `json:"version,omitempty" yaml:"version,omitempty"`
	Publisher       string `json:"publisher,omitempty" yaml:"publisher,omitempty"`
	InstallDate     string `json:"installDate,omitempty" yaml:"installDate,omitempty"`
	InstallLocation string `json:"installLocation,omitempty" yaml:"installLocation,omitempty"`
	Scope           string `json:"scope" yaml:"scope"`
}

// StorageVolume is a fixed local volume.
type StorageVolume struct {
	DriveLetter string `json:"driveLetter" yaml:"driveLetter"`
	Label       string `json:"label,omitempty" yaml:"label,omitempty"`
	FileSystem  string `json:"fileSystem" yaml:"fileSystem"`
	TotalBytes  uint64 `json:"totalBytes" yaml:"totalBytes"`
	FreeBytes   uint64 `json:"freeBytes" yaml:"freeBytes"`
}

// PendingUpdate is an applicable software update that is not yet installed.
type PendingUpdate struct {
	Identifier     string   `json:"identifier" yaml:"identifier"`
	Title          string   `json:"title" yaml:"title"`
	KnowledgeBase  []string `json:"knowledgeBase,omitempty" yaml:"knowledgeBase,omitempty"`
	IsDownloaded   bool     `json:"isDownloaded" yaml:"isDownloaded"`
	RebootRequired bool     `json:"rebootRequired" yaml:"rebootRequired"`
}

// UpdateInstallation summarizes one install pass of pending updates.
type UpdateInstallation struct {
	Updates        []PendingUpdate `json:"updates" yaml:"updates"`
	ResultCode     int             `json:"resultCode" yaml:"resultCode"`
	RebootRequired bool            `json:"rebootRequired" yaml:"rebootRequired"`
}

// Installed program scopes.
const (
	ProgramScopeMachine64 = "machine64"
	ProgramScopeMachine32 = "machine32"
	ProgramScopeUser      = "user"
)
