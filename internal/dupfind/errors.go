package dupfind

import (
	"errors"
	"fmt"
)

// ErrChannelClosed signals that the aggregator saw fewer results than were
// delivered. It indicates a bug, not an I/O problem.
var ErrChannelClosed = errors.New("internal error: delivery channel closed unexpectedly")

// ErrNotDirectory is returned when the scan root is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// DirectoryReadError reports a directory that could not be listed.
type DirectoryReadError struct {
	Path string
	Err  error
}

func (e *DirectoryReadError) Error() string {
	return fmt.Sprintf("reading directory %q: %v", e.Path, e.Err)
}

func (e *DirectoryReadError) Unwrap() error { return e.Err }

// MetadataError reports an entry whose metadata could not be retrieved.
type MetadataError struct {
	Path string
	Err  error
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("reading metadata of %q: %v", e.Path, e.Err)
}

func (e *MetadataError) Unwrap() error { return e.Err }

// FileReadError reports a file whose contents could not be hashed.
type FileReadError struct {
	Path string
	Err  error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("reading file %q: %v", e.Path, e.Err)
}

func (e *FileReadError) Unwrap() error { return e.Err }

// errorKind names a traversal error for log output.
func errorKind(err error) string {
	var (
		dirErr  *DirectoryReadError
		metaErr *MetadataError
		readErr *FileReadError
	)

	switch {
	case errors.As(err, &dirErr):
		return "directory"
	case errors.As(err, &metaErr):
		return "metadata"
	case errors.As(err, &readErr):
		return "read"
	default:
		return "unknown"
	}
}
