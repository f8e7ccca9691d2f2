package inventory

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	vitalerrors "github.com/tyemirov/winvitals/internal/errors"
	"github.com/tyemirov/winvitals/internal/filesystem"
	"github.com/tyemirov/winvitals/internal/platform"
)

const dumpFileExtensionConstant = ".dmp"

// CrashDump describes a memory dump left behind by a crashed kernel, process or service.
type CrashDump struct {
	Path       string    `json:"path" yaml:"path"`
	SizeBytes  int64     `json:"sizeBytes" yaml:"sizeBytes"`
	ModifiedAt time.Time `json:"modifiedAt" yaml:"modifiedAt"`
}

// CollectCrashDumps returns the kernel dump followed by the dump files of every dump directory.
// Locations that do not exist are ignored.
func CollectCrashDumps(fileSystem filesystem.FileSystem, locations platform.CrashDumpLocations) ([]CrashDump, error) {
	fileSystem = filesystem.Resolve(fileSystem)
	dumps := make([]CrashDump, 0)

	if len(locations.KernelDumpFile) > 0 {
		info, statError := fileSystem.Stat(locations.KernelDumpFile)
		switch {
		case statError == nil:
			dumps = append(dumps, CrashDump{Path: locations.KernelDumpFile, SizeBytes: info.Size(), ModifiedAt: info.ModTime().UTC()})
		case !errors.Is(statError, fs.ErrNotExist):
			return nil, vitalerrors.Wrap(vitalerrors.OperationInventoryQuery, locations.KernelDumpFile, vitalerrors.ErrIOFailure, statError)
		}
	}

	for _, directory := range locations.DumpDirectories {
		entries, listError := fileSystem.ReadDir(directory)
		if listError != nil {
			if errors.Is(listError, fs.ErrNotExist) {
				continue
			}
			return nil, vitalerrors.Wrap(vitalerrors.OperationInventoryQuery, directory, vitalerrors.ErrIOFailure, listError)
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), dumpFileExtensionConstant) {
				continue
			}
			info, infoError := entry.Info()
			if infoError != nil {
				if errors.Is(infoError, fs.ErrNotExist) {
					continue
				}
				return nil, vitalerrors.Wrap(vitalerrors.OperationInventoryQuery, directory, vitalerrors.ErrIOFailure, infoError)
			}
			dumps = append(dumps, CrashDump{
				Path:       filepath.Join(directory, entry.Name()),
				SizeBytes:  info.Size(),
				ModifiedAt: info.ModTime().UTC(),
			})
		}
	}

	return dumps, nil
}
