//go:build windows

package platform

import (
	"errors"
	"sort"
	"strings"

	"golang.org/x/sys/windows/registry"

	vitalerrors "github.com/tyemirov/winvitals/internal/errors"
)

const (
	machineEnvironmentKeyConstant    = `SYSTEM\CurrentControlSet\Control\Session Manager\Environment`
	userEnvironmentKeyConstant       = `Environment`
	uninstallKey64Constant           = `SOFTWARE\Microsoft\Windows\CurrentVersion\Uninstall`
	uninstallKey32Constant           = `SOFTWARE\WOW6432Node\Microsoft\Windows\CurrentVersion\Uninstall`
	searchPathValueNameConstant      = "Path"
	displayNameValueConstant         = "DisplayName"
	displayVersionValueConstant      = "DisplayVersion"
	publisherValueConstant           = "Publisher"
	installDateValueConstant         = "InstallDate"
	installLocationValueConstant     = "InstallLocation"
	systemComponentValueConstant     = "SystemComponent"
	environmentSubjectConstant       = "environment"
	installedProgramsSubjectConstant = "installed_programs"
	searchPathSubjectConstant        = "machine_search_path"
	allNamesConstant                 = 0
)

// RegistryInspector reads persisted environment blocks and uninstall entries.
type RegistryInspector struct{}

// EnvironmentSnapshot returns the machine and current user environment blocks.
func (RegistryInspector) EnvironmentSnapshot() (EnvironmentSnapshot, error) {
	machineValues, machineError := readEnvironmentBlock(registry.LOCAL_MACHINE, machineEnvironmentKeyConstant)
	if machineError != nil {
		return EnvironmentSnapshot{}, vitalerrors.Wrap(vitalerrors.OperationInventoryQuery, environmentSubjectConstant, vitalerrors.ErrIOFailure, machineError)
	}
	userValues, userError := readEnvironmentBlock(registry.CURRENT_USER, userEnvironmentKeyConstant)
	if userError != nil && !errors.Is(userError, registry.ErrNotExist) {
		return EnvironmentSnapshot{}, vitalerrors.Wrap(vitalerrors.OperationInventoryQuery, environmentSubjectConstant, vitalerrors.ErrIOFailure, userError)
	}
	if userValues == nil {
		userValues = map[string]string{}
	}
	return EnvironmentSnapshot{Machine: machineValues, User: userValues}, nil
}

// InstalledPrograms enumerates the 64-bit, 32-bit and per-user uninstall entries.
func (RegistryInspector) InstalledPrograms() ([]InstalledProgram, error) {
	sources := []struct {
		root  registry.Key
		path  string
		scope string
	}{
		{root: registry.LOCAL_MACHINE, path: uninstallKey64Constant, scope: ProgramScopeMachine64},
		{root: registry.LOCAL_MACHINE, path: uninstallKey32Constant, scope: ProgramScopeMachine32},
		{root: registry.CURRENT_USER, path: uninstallKey64Constant, scope: ProgramScopeUser},
	}

	programs := make([]InstalledProgram, 0)
	readAny := false
	for _, source := range sources {
		scoped, readError := readUninstallEntries(source.root, source.path, source.scope)
		if readError != nil {
			if errors.Is(readError, registry.ErrNotExist) {
				continue
			}
			return nil, vitalerrors.Wrap(vitalerrors.OperationInventoryQuery, installedProgramsSubjectConstant, vitalerrors.ErrIOFailure, readError)
		}
		readAny = true
		programs = append(programs, scoped...)
	}
	if !readAny {
		return nil, vitalerrors.Wrap(vitalerrors.OperationInventoryQuery, installedProgramsSubjectConstant, vitalerrors.ErrUnavailable, registry.ErrNotExist)
	}

	sort.SliceStable(programs, func(left int, right int) bool {
		return strings.ToLower(programs[left].Name) < strings.ToLower(programs[right].Name)
	})
	return programs, nil
}

// MachineSearchPath reads and writes the machine-wide Path value.
type MachineSearchPath struct{}

// ReadSearchPath returns the raw machine Path value without expansion.
func (MachineSearchPath) ReadSearchPath() (string, error) {
	key, openError := registry.OpenKey(registry.LOCAL_MACHINE, machineEnvironmentKeyConstant, registry.QUERY_VALUE)
	if openError != nil {
		return "", vitalerrors.Wrap(vitalerrors.OperationSearchPathUpdate, searchPathSubjectConstant, vitalerrors.ErrIOFailure, openError)
	}
	defer key.Close()

	value, _, readError := key.GetStringValue(searchPathValueNameConstant)
	if readError != nil {
		if errors.Is(readError, registry.ErrNotExist) {
			return "", nil
		}
		return "", vitalerrors.Wrap(vitalerrors.OperationSearchPathUpdate, searchPathSubjectConstant, vitalerrors.ErrIOFailure, readError)
	}
	return value, nil
}

// WriteSearchPath stores the machine Path value as an expandable string and
// broadcasts the environment change.
func (MachineSearchPath) WriteSearchPath(value string) error {
	key, openError := registry.OpenKey(registry.LOCAL_MACHINE, machineEnvironmentKeyConstant, registry.SET_VALUE)
	if openError != nil {
		return vitalerrors.Wrap(vitalerrors.OperationSearchPathUpdate, searchPathSubjectConstant, vitalerrors.ErrIOFailure, openError)
	}
	defer key.Close()

	if writeError := key.SetExpandStringValue(searchPathValueNameConstant, value); writeError != nil {
		return vitalerrors.Wrap(vitalerrors.OperationSearchPathUpdate, searchPathSubjectConstant, vitalerrors.ErrIOFailure, writeError)
	}
	return broadcastEnvironmentChange()
}

func readEnvironmentBlock(root registry.Key, path string) (map[string]string, error) {
	key, openError := registry.OpenKey(root, path, registry.QUERY_VALUE)
	if openError != nil {
		return nil, openError
	}
	defer key.Close()

	names, namesError := key.ReadValueNames(allNamesConstant)
	if namesError != nil {
		return nil, namesError
	}
	values := make(map[string]string, len(names))
	for _, name := range names {
		value, _, valueError := key.GetStringValue(name)
		if valueError != nil {
			continue
		}
		values[name] = value
	}
	return values, nil
}

func readUninstallEntries(root registry.Key, path string, scope string) ([]InstalledProgram, error) {
	key, openError := registry.OpenKey(root, path, registry.ENUMERATE_SUB_KEYS)
	if openError != nil {
		return nil, openError
	}
	defer key.Close()

	subKeyNames, namesError := key.ReadSubKeyNames(allNamesConstant)
	if namesError != nil {
		return nil, namesError
	}

	programs := make([]InstalledProgram, 0, len(subKeyNames))
	for _, subKeyName := range subKeyNames {
		program, found := readUninstallEntry(root, path+`\`+subKeyName, scope)
		if found {
			programs = append(programs, program)
		}
	}
	return programs, nil
}

func readUninstallEntry(root registry.Key, path string, scope string) (InstalledProgram, bool) {
	entryKey, openError := registry.OpenKey(root, path, registry.QUERY_VALUE)
	if openError != nil {
		return InstalledProgram{}, false
	}
	defer entryKey.Close()

	name, _, nameError := entryKey.GetStringValue(displayNameValueConstant)
	if nameError != nil || len(strings.TrimSpace(name)) == 0 {
		return InstalledProgram{}, false
	}
	if systemComponent, _, componentError := entryKey.GetIntegerValue(systemComponentValueConstant); componentError == nil && systemComponent == 1 {
		return InstalledProgram{}, false
	}

	program := InstalledProgram{Name: strings.TrimSpace(name), Scope: scope}
	program.Version = optionalStringValue(entryKey, displayVersionValueConstant)
	program.Publisher = optionalStringValue(entryKey, publisherValueConstant)
	program.InstallDate = optionalStringValue(entryKey, installDateValueConstant)
	program.InstallLocation = optionalStringValue(entryKey, installLocationValueConstant)
	return program, true
}

func optionalStringValue(key registry.Key, name string) string {
	value, _, valueError := key.GetStringValue(name)
	if valueError != nil {
		return ""
	}
	return strings.TrimSpace(value)
}
