package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/NeoSilver997/silver-media-library/internal/filter"
	"github.com/NeoSilver997/silver-media-library/internal/progress"
	"github.com/NeoSilver997/silver-media-library/pkg/models"
)

// Unbounded disables the depth limit
const Unbounded = -1

// readBatch is the number of names read from a directory at a time
const readBatch = 1000

// ScanOptions controls a traversal. It is copied into the walker and not
// changed afterwards.
type ScanOptions struct {
	FollowSymlinks    bool
	MaxDepth          int // root is depth 0, Unbounded for no limit
	DirProgressEvery  uint64
	FileProgressEvery uint64
}

// DefaultScanOptions returns the defaults: no symlinks, no depth limit,
// progress every 100 directories and every 1000 files
func DefaultScanOptions() ScanOptions {
	return ScanOptions{
		MaxDepth:          Unbounded,
		DirProgressEvery:  100,
		FileProgressEvery: 1000,
	}
}

// Totals are the final counters of a traversal
type Totals struct {
	Dirs  uint64
	Files uint64
	Bytes uint64
}

// frame is one pending directory on the work list
type frame struct {
	root  string
	path  string
	depth int
}

// Walker enumerates regular files under one or more roots
type Walker struct {
	fs     afero.Fs
	filter *filter.Filter
	opts   ScanOptions
	sink   progress.Sink
	logger *zap.Logger

	dirs  atomic.Uint64
	files atomic.Uint64
	bytes atomic.Uint64
}

// NewWalker creates a new filesystem walker
func NewWalker(fs afero.Fs, f *filter.Filter, opts ScanOptions, sink progress.Sink, logger *zap.Logger) *Walker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Walker{
		fs:     fs,
		filter: f,
		opts:   opts,
		sink:   progress.OrDiscard(sink),
		logger: logger,
	}
}

// Snapshot returns the counters so far. It may be called while a walk is running.
func (w *Walker) Snapshot() Totals {
	return Totals{
		Dirs:  w.dirs.Load(),
		Files: w.files.Load(),
		Bytes: w.bytes.Load(),
	}
}

// ValidateRoots checks that every root exists and is a directory and
// returns them as absolute paths. Repeated roots and roots nested inside
// another root are dropped so every file is visited once.
func (w *Walker) ValidateRoots(roots []string) ([]string, error) {
	if len(roots) == 0 {
		return nil, fmt.Errorf("%w: no roots given", ErrInvalidRoot)
	}

	abs := make([]string, 0, len(roots))
	for _, root := range roots {
		path, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidRoot, root, err)
		}
		info, err := w.fs.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidRoot, path, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidRoot, path, ErrNotDirectory)
		}
		abs = append(abs, path)
	}

	cleaned := make([]string, 0, len(abs))
	for i, root := range abs {
		covered := false
		for j, other := range abs {
			if (root == other && j < i) || isBelow(root, other) {
				covered = true
				break
			}
		}
		if covered {
			w.logger.Debug("Skipping overlapping root", zap.String("root", root))
			continue
		}
		cleaned = append(cleaned, root)
	}
	return cleaned, nil
}

// isBelow reports whether path lies strictly inside dir. Both must be clean.
func isBelow(path, dir string) bool {
	if path == dir {
		return false
	}
	if !strings.HasSuffix(dir, string(filepath.Separator)) {
		dir += string(filepath.Separator)
	}
	return strings.HasPrefix(path, dir)
}

// Walk visits every regular file under roots and calls fn for each one.
// An invalid root fails the call before any event is emitted. An error
// returned by fn stops the walk and is returned as is.
func (w *Walker) Walk(ctx context.Context, roots []string, fn func(*models.FileDescriptor) error) (Totals, error) {
	cleaned, err := w.ValidateRoots(roots)
	if err != nil {
		return Totals{}, err
	}

	var fnErr error
	totals, err := w.walk(ctx, cleaned, func(fd *models.FileDescriptor) bool {
		if fnErr = fn(fd); fnErr != nil {
			return false
		}
		return true
	})
	if fnErr != nil {
		return totals, fnErr
	}
	return totals, err
}

// Files returns a lazy, single-pass sequence of the files under roots.
// Roots are validated eagerly; traversal starts on the first iteration.
func (w *Walker) Files(ctx context.Context, roots []string) (iter.Seq[*models.FileDescriptor], error) {
	cleaned, err := w.ValidateRoots(roots)
	if err != nil {
		return nil, err
	}

	return func(yield func(*models.FileDescriptor) bool) {
		if _, err := w.walk(ctx, cleaned, yield); err != nil && !errors.Is(err, context.Canceled) {
			w.logger.Debug("Walk stopped", zap.Error(err))
		}
	}, nil
}

func (w *Walker) walk(ctx context.Context, roots []string, yield func(*models.FileDescriptor) bool) (Totals, error) {
	w.dirs.Store(0)
	w.files.Store(0)
	w.bytes.Store(0)

	// Seed in reverse so the first root is popped first
	stack := make([]frame, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{root: roots[i], path: roots[i]})
	}

	stopped := false
	for len(stack) > 0 && !stopped {
		if ctx.Err() != nil {
			break
		}

		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if w.opts.MaxDepth != Unbounded && top.depth > w.opts.MaxDepth {
			continue
		}

		var ok bool
		stack, ok = w.readDir(ctx, top, stack, yield)
		if !ok {
			stopped = true
		}
	}

	totals := w.Snapshot()
	cancelled := ctx.Err() != nil
	w.sink.Emit(models.CompleteEvent{
		Stage:          models.StageWalk,
		ProcessedDirs:  totals.Dirs,
		ProcessedFiles: totals.Files,
		TotalBytes:     totals.Bytes,
		Cancelled:      cancelled,
	})

	if cancelled {
		return totals, ctx.Err()
	}
	return totals, nil
}

// readDir lists one directory in batches, pushing subdirectories onto
// stack and yielding files. It returns false when the consumer stopped.
func (w *Walker) readDir(ctx context.Context, dir frame, stack []frame, yield func(*models.FileDescriptor) bool) ([]frame, bool) {
	f, err := w.fs.Open(dir.path)
	if err != nil {
		w.warn(dir.path, err)
		return stack, true
	}
	defer f.Close()

	counted := false
	for {
		names, err := f.Readdirnames(readBatch)
		if len(names) > 0 && !counted {
			counted = true
			w.countDir(dir.path, len(stack))
		}

		for _, name := range names {
			if ctx.Err() != nil {
				return stack, true
			}

			path := filepath.Join(dir.path, name)
			if w.filter.ShouldExcludeBelow(dir.root, path) {
				w.logger.Debug("Skipping excluded path", zap.String("path", path))
				continue
			}

			info, ok := w.stat(path)
			if !ok {
				continue
			}

			switch {
			case info.IsDir():
				stack = append(stack, frame{root: dir.root, path: path, depth: dir.depth + 1})
			case info.Mode().IsRegular():
				fd := w.describe(path, info)
				w.countFile(fd, len(stack))
				if !yield(fd) {
					return stack, false
				}
			}
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			w.warn(dir.path, err)
			return stack, true
		}
		if len(names) == 0 {
			break
		}
	}

	if !counted {
		// Empty directory
		w.countDir(dir.path, len(stack))
	}
	return stack, true
}

// stat resolves an entry according to the symlink policy. Permission
// errors are silent, other errors become warnings.
func (w *Walker) stat(path string) (os.FileInfo, bool) {
	info, err := w.lstat(path)
	if err == nil && info.Mode()&os.ModeSymlink != 0 {
		if !w.opts.FollowSymlinks {
			return nil, false
		}
		info, err = w.fs.Stat(path)
	}

	if err != nil {
		if IsPermission(err) {
			w.logger.Debug("Access denied", zap.String("path", path))
		} else {
			w.warn(path, err)
		}
		return nil, false
	}
	return info, true
}

func (w *Walker) lstat(path string) (os.FileInfo, error) {
	if l, ok := w.fs.(afero.Lstater); ok {
		info, _, err := l.LstatIfPossible(path)
		return info, err
	}
	return w.fs.Stat(path)
}

func (w *Walker) describe(path string, info os.FileInfo) *models.FileDescriptor {
	atime, ctime := fileTimes(info)
	return models.NewFileDescriptor(path, uint64(info.Size()), info.ModTime(), atime, ctime)
}

func (w *Walker) countDir(path string, queued int) {
	n := w.dirs.Add(1)
	if every := w.opts.DirProgressEvery; every > 0 && n%every == 0 {
		w.progress(path, queued)
	}
}

func (w *Walker) countFile(fd *models.FileDescriptor, queued int) {
	w.bytes.Add(fd.Size)
	n := w.files.Add(1)
	if every := w.opts.FileProgressEvery; every > 0 && n%every == 0 {
		w.progress(fd.Path, queued)
	}
}

func (w *Walker) progress(path string, queued int) {
	w.sink.Emit(models.ProgressEvent{
		Stage:          models.StageWalk,
		ProcessedDirs:  w.dirs.Load(),
		ProcessedFiles: w.files.Load(),
		CurrentPath:    path,
		QueueDepth:     queued,
	})
}

func (w *Walker) warn(path string, err error) {
	w.sink.Emit(models.WarningEvent{
		Stage:   models.StageWalk,
		Path:    path,
		Message: err.Error(),
		Kind:    Kind(err),
	})
}
