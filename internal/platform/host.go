package platform

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"

	vitalerrors "github.com/tyemirov/winvitals/internal/errors"
)

const (
	hostSummarySubjectConstant      = "host"
	hypervisorSubjectConstant       = "hypervisor"
	volumeUsageSubjectConstant      = "volume"
	hypervisorHostRoleConstant      = "host"
	hypervisorGuestRoleConstant     = "guest"
	volumeRootSuffixConstant        = `\`
	hypervisorUnknownSystemConstant = "unknown"
)

// HostInspector reads host identity, virtualization and volume usage facts.
type HostInspector struct {
	hypervisorProbe func(executionContext context.Context) (Hypervisor, bool, error)
}

// NewHostInspector constructs an inspector using the native hypervisor probe.
func NewHostInspector() *HostInspector {
	return &HostInspector{hypervisorProbe: probeNativeHypervisor}
}

// Summary returns the host summary.
func (inspector *HostInspector) Summary(executionContext context.Context) (HostSummary, error) {
	information, informationError := host.InfoWithContext(executionContext)
	if informationError != nil && information == nil {
		return HostSummary{}, vitalerrors.Wrap(vitalerrors.OperationInventoryQuery, hostSummarySubjectConstant, vitalerrors.ErrIOFailure, informationError)
	}

	return HostSummary{
		Hostname:        information.Hostname,
		OperatingSystem: information.OS,
		Platform:        information.Platform,
		PlatformFamily:  information.PlatformFamily,
		PlatformVersion: information.PlatformVersion,
		KernelVersion:   information.KernelVersion,
		Architecture:    information.KernelArch,
		UptimeSeconds:   information.Uptime,
		BootTime:        time.Unix(int64(information.BootTime), 0).UTC(),
		ProcessBitness:  strconv.IntSize,
	}, nil
}

// Hypervisor reports the virtualization system hosting the machine.
// The boolean is false on bare metal.
func (inspector *HostInspector) Hypervisor(executionContext context.Context) (Hypervisor, bool, error) {
	system, role, virtualizationError := host.VirtualizationWithContext(executionContext)
	if virtualizationError == nil && len(strings.TrimSpace(system)) > 0 {
		if role == hypervisorHostRoleConstant {
			return Hypervisor{System: system, Role: role}, false, nil
		}
		return Hypervisor{System: system, Role: role}, true, nil
	}
	if inspector.hypervisorProbe == nil {
		return Hypervisor{}, false, nil
	}
	hypervisor, present, probeError := inspector.hypervisorProbe(executionContext)
	if probeError != nil {
		return Hypervisor{}, false, vitalerrors.Wrap(vitalerrors.OperationInventoryQuery, hypervisorSubjectConstant, vitalerrors.ErrIOFailure, probeError)
	}
	return hypervisor, present, nil
}

// VolumeUsage returns the total and free byte counts of the volume mounted at the drive letter.
func (inspector *HostInspector) VolumeUsage(executionContext context.Context, driveLetter string) (uint64, uint64, error) {
	mountPoint := driveLetter
	if !strings.HasSuffix(mountPoint, volumeRootSuffixConstant) {
		mountPoint += volumeRootSuffixConstant
	}
	usage, usageError := disk.UsageWithContext(executionContext, mountPoint)
	if usageError != nil {
		return 0, 0, vitalerrors.Wrap(vitalerrors.OperationInventoryQuery, volumeUsageSubjectConstant, vitalerrors.ErrIOFailure, usageError)
	}
	return usage.Total, usage.Free, nil
}
