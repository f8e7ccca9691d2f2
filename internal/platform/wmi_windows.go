//go:build windows

package platform

import (
	"context"
	"sort"
	"strings"

	"github.com/yusufpapurcu/wmi"

	vitalerrors "github.com/tyemirov/winvitals/internal/errors"
)

const (
	pnpEntityQueryConstant      = "SELECT Name, DeviceID, PNPClass, Manufacturer, Status, ConfigManagerErrorCode FROM Win32_PnPEntity"
	fixedVolumeQueryConstant    = "SELECT DriveLetter, Label, FileSystem, Capacity, FreeSpace FROM Win32_Volume WHERE DriveType = 3"
	enabledFeatureQueryConstant = "SELECT Name, Caption FROM Win32_OptionalFeature WHERE InstallState = 1"
	computerSystemQueryConstant = "SELECT HypervisorPresent, Manufacturer, Model FROM Win32_ComputerSystem"
	devicesSubjectConstant      = "pnp_devices"
	volumesSubjectConstant      = "volumes"
	featuresSubjectConstant     = "optional_features"
)

type pnpEntityRecord struct {
	Name                   *string
	DeviceID               *string
	PNPClass               *string
	Manufacturer           *string
	Status                 *string
	ConfigManagerErrorCode *uint32
}

type volumeRecord struct {
	DriveLetter *string
	Label       *string
	FileSystem  *string
	Capacity    *uint64
	FreeSpace   *uint64
}

type optionalFeatureRecord struct {
	Name    *string
	Caption *string
}

type computerSystemRecord struct {
	HypervisorPresent *bool
	Manufacturer      *string
	Model             *string
}

// ManagementQuerier reads device, volume and feature facts from the CIM repository.
type ManagementQuerier struct{}

// Devices lists every plug and play entity.
func (ManagementQuerier) Devices(executionContext context.Context) ([]Device, error) {
	var records []pnpEntityRecord
	if queryError := wmi.Query(pnpEntityQueryConstant, &records); queryError != nil {
		return nil, vitalerrors.Wrap(vitalerrors.OperationInventoryQuery, devicesSubjectConstant, vitalerrors.ErrIOFailure, queryError)
	}
	devices := make([]Device, 0, len(records))
	for _, record := range records {
		devices = append(devices, Device{
			Name:                   dereferenceString(record.Name),
			DeviceID:               dereferenceString(record.DeviceID),
			Class:                  dereferenceString(record.PNPClass),
			Manufacturer:           dereferenceString(record.Manufacturer),
			Status:                 dereferenceString(record.Status),
			ConfigManagerErrorCode: dereferenceUint32(record.ConfigManagerErrorCode),
		})
	}
	return devices, nil
}

// FixedVolumes lists local fixed volumes, ordered by drive letter. Volumes without a letter are omitted.
func (ManagementQuerier) FixedVolumes(executionContext context.Context) ([]StorageVolume, error) {
	var records []volumeRecord
	if queryError := wmi.Query(fixedVolumeQueryConstant, &records); queryError != nil {
		return nil, vitalerrors.Wrap(vitalerrors.OperationInventoryQuery, volumesSubjectConstant, vitalerrors.ErrIOFailure, queryError)
	}
	volumes := make([]StorageVolume, 0, len(records))
	for _, record := range records {
		driveLetter := strings.TrimSpace(dereferenceString(record.DriveLetter))
		if len(driveLetter) == 0 {
			continue
		}
		volumes = append(volumes, StorageVolume{
			DriveLetter: driveLetter,
			Label:       dereferenceString(record.Label),
			FileSystem:  dereferenceString(record.FileSystem),
			TotalBytes:  dereferenceUint64(record.Capacity),
			FreeBytes:   dereferenceUint64(record.FreeSpace),
		})
	}
	sort.SliceStable(volumes, func(left int, right int) bool {
		return volumes[left].DriveLetter < volumes[right].DriveLetter
	})
	return volumes, nil
}

// EnabledFeatures lists enabled optional features. A missing CIM class is reported as unavailable.
func (ManagementQuerier) EnabledFeatures(executionContext context.Context) ([]OptionalFeature, error) {
	var records []optionalFeatureRecord
	if queryError := wmi.Query(enabledFeatureQueryConstant, &records); queryError != nil {
		return nil, vitalerrors.Wrap(vitalerrors.OperationInventoryQuery, featuresSubjectConstant, vitalerrors.ErrUnavailable, queryError)
	}
	features := make([]OptionalFeature, 0, len(records))
	for _, record := range records {
		features = append(features, OptionalFeature{
			Name:    dereferenceString(record.Name),
			Caption: dereferenceString(record.Caption),
		})
	}
	sort.SliceStable(features, func(left int, right int) bool {
		return features[left].Name < features[right].Name
	})
	return features, nil
}

func probeNativeHypervisor(executionContext context.Context) (Hypervisor, bool, error) {
	var records []computerSystemRecord
	if queryError := wmi.Query(computerSystemQueryConstant, &records); queryError != nil {
		return Hypervisor{}, false, queryError
	}
	if len(records) == 0 || records[0].HypervisorPresent == nil || !*records[0].HypervisorPresent {
		return Hypervisor{}, false, nil
	}

	system := strings.TrimSpace(strings.Join([]string{dereferenceString(records[0].Manufacturer), dereferenceString(records[0].Model)}, " "))
	if len(system) == 0 {
		system = hypervisorUnknownSystemConstant
	}
	return Hypervisor{System: system, Role: hypervisorGuestRoleConstant}, true, nil
}

func dereferenceString(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}

func dereferenceUint32(value *uint32) uint32 {
	if value == nil {
		return 0
	}
	return *value
}

func dereferenceUint64(value *uint64) uint64 {
	if value == nil {
		return 0
	}
	return *value
}
