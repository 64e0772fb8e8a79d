package filesystem

import (
	"errors"
	"io/fs"
	"syscall"

	"github.com/NeoSilver997/silver-media-library/pkg/models"
)

// Sentinel errors for package filesystem.
// Callers check them with errors.Is; the underlying OS error stays in the chain.
var (
	// ErrInvalidRoot fails a whole walk before any event is emitted
	ErrInvalidRoot = errors.New("invalid scan root")
	// ErrNotDirectory is wrapped into ErrInvalidRoot for roots that are not directories
	ErrNotDirectory = errors.New("not a directory")
	// ErrAccessDenied marks per-entry permission failures
	ErrAccessDenied = errors.New("access denied")
	// ErrIOFailure marks per-entry and per-hash read failures
	ErrIOFailure = errors.New("i/o failure")
	// ErrUnsupportedAlgorithm is returned for unknown or unsuitable hash algorithms
	ErrUnsupportedAlgorithm = errors.New("unsupported hash algorithm")
)

// IsPermission reports whether err is an EACCES/EPERM style failure
func IsPermission(err error) bool {
	return errors.Is(err, fs.ErrPermission) ||
		errors.Is(err, syscall.EACCES) ||
		errors.Is(err, syscall.EPERM) ||
		errors.Is(err, ErrAccessDenied)
}

// Kind classifies err into one of the pipeline error kinds
func Kind(err error) models.ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidRoot):
		return models.KindInvalidRoot
	case IsPermission(err):
		return models.KindAccessDenied
	default:
		return models.KindIOFailure
	}
}
