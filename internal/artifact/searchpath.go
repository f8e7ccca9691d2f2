package artifact

import (
	"strings"
)

const searchPathSeparatorConstant = ";"

// SearchPathStore reads and writes the machine-wide executable search path.
type SearchPathStore interface {
	ReadSearchPath() (string, error)
	WriteSearchPath(value string) error
}

// SearchPathContains reports whether directory is one of the semicolon-delimited segments, compared verbatim.
func SearchPathContains(searchPath string, directory string) bool {
	for _, segment := range strings.Split(searchPath, searchPathSeparatorConstant) {
		if segment == directory {
			return true
		}
	}
	return false
}

// EnsureSearchPathSegment appends directory as the last segment unless a segment already matches it.
// Existing segments are never reordered. The boolean reports whether the path changed.
func EnsureSearchPathSegment(searchPath string, directory string) (string, bool) {
	if len(directory) == 0 || SearchPathContains(searchPath, directory) {
		return searchPath, false
	}
	if len(searchPath) == 0 {
		return directory, true
	}
	if !strings.HasSuffix(searchPath, searchPathSeparatorConstant) {
		searchPath += searchPathSeparatorConstant
	}
	return searchPath + directory, true
}
