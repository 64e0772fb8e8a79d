package models

import (
	"path/filepath"
	"time"
)

// FileDescriptor describes a regular file found by the walker.
// Descriptors are never mutated after creation; a later scan of the same
// path produces a new descriptor.
type FileDescriptor struct {
	Path       string     `json:"path"`        // Absolute path, native separators
	Name       string     `json:"name"`        // Base name
	Extension  string     `json:"extension"`   // Lower-case extension without dot
	Media      MediaClass `json:"media"`       // Media class derived from extension
	Size       uint64     `json:"size"`        // Size in bytes
	ModTime    time.Time  `json:"mtime"`       // Modification time
	AccessTime time.Time  `json:"atime"`       // Last access time
	ChangeTime time.Time  `json:"ctime"`       // Inode change time (creation time on Windows)
}

// NewFileDescriptor builds a descriptor for path and fills the derived name fields
func NewFileDescriptor(path string, size uint64, mtime, atime, ctime time.Time) *FileDescriptor {
	name := filepath.Base(path)
	return &FileDescriptor{
		Path:       path,
		Name:       name,
		Extension:  GetExtension(name),
		Media:      MediaClassOf(name),
		Size:       size,
		ModTime:    mtime,
		AccessTime: atime,
		ChangeTime: ctime,
	}
}
