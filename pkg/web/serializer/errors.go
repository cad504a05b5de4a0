package serializer

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRelationPath is returned when an include or relationship path
	// names a relation that does not exist, is hidden, or is not includable
	ErrInvalidRelationPath = errors.New("invalid relation path")

	// ErrUnsupportedInclusion is returned when includes are requested while
	// inclusion of related resources is disabled
	ErrUnsupportedInclusion = errors.New("inclusion of related resources is not supported")
)

// InvalidRelationPathError carries the full path as requested by the client,
// even when a later segment is the one that failed.
type InvalidRelationPathError struct {
	Path string
}

// Error implements the error interface
func (e *InvalidRelationPathError) Error() string {
	return fmt.Sprintf("the relationship path %q could not be resolved", e.Path)
}

// Is matches ErrInvalidRelationPath
func (e *InvalidRelationPathError) Is(target error) bool {
	return target == ErrInvalidRelationPath
}

func invalidPath(path string) error {
	return &InvalidRelationPathError{Path: path}
}

// PathOf returns the offending path of an InvalidRelationPathError in err's chain
func PathOf(err error) (string, bool) {
	var pathErr *InvalidRelationPathError
	if errors.As(err, &pathErr) {
		return pathErr.Path, true
	}
	return "", false
}
