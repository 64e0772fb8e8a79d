package core

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/NeoSilver997/silver-media-library/internal/config"
	"github.com/NeoSilver997/silver-media-library/internal/dedup"
	"github.com/NeoSilver997/silver-media-library/internal/filesystem"
	"github.com/NeoSilver997/silver-media-library/internal/progress"
	"github.com/NeoSilver997/silver-media-library/pkg/models"
)

// Version is recorded in every ScanResults
const Version = "0.1.0"

// FileObserver is called for every walked file, in walk order, before any
// hashing. Returning an error aborts the scan.
type FileObserver func(*models.FileDescriptor) error

// Scanner is the duplicate scanner engine
type Scanner struct {
	config   *config.Config
	logger   *zap.Logger
	fs       afero.Fs
	sink     progress.Sink
	observer FileObserver

	// run state, reset by every scan
	events       progress.Sink
	warnings     atomic.Uint64
	quickHashed  atomic.Uint64
	fullHashed   atomic.Uint64
	hashFailures atomic.Uint64
	bytesHashed  atomic.Uint64
}

// NewScanner creates a new scanner instance reading the OS filesystem
func NewScanner(cfg *config.Config, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{
		config: cfg,
		logger: logger,
		fs:     afero.NewOsFs(),
		sink:   progress.Discard,
	}
}

// SetFs replaces the filesystem the scanner reads
func (s *Scanner) SetFs(fs afero.Fs) {
	s.fs = fs
}

// SetProgressSink sets the receiver of progress, warning and completion events
func (s *Scanner) SetProgressSink(sink progress.Sink) {
	s.sink = progress.OrDiscard(sink)
}

// SetFileObserver registers a callback for every walked file
func (s *Scanner) SetFileObserver(fn FileObserver) {
	s.observer = fn
}

// hashed is one successful hash on its way to the collector
type hashed struct {
	file   *models.FileDescriptor
	result models.HashResult
}

type hashFunc func(path string) (models.HashResult, error)

// pipeline bundles the per-scan components
type pipeline struct {
	walker  *filesystem.Walker
	hasher  *filesystem.Hasher
	grouper *dedup.Grouper
	minSize uint64
	results *models.ScanResults
}

// Scan walks roots, hashes candidate files and groups duplicates.
// An invalid root or configuration fails before any event is emitted.
// Cancelling ctx stops the walk and the hash pool between files; the files
// already hashed are still grouped and the results are marked cancelled.
func (s *Scanner) Scan(ctx context.Context, roots []string) (*models.ScanResults, error) {
	p, err := s.prepare(roots)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Starting scan",
		zap.String("session", p.results.SessionID),
		zap.Strings("roots", p.results.Roots),
		zap.Bool("quick_pass", s.config.QuickPass),
		zap.Int("workers", s.config.Workers))

	if s.config.QuickPass {
		err = s.runStaged(ctx, p)
	} else {
		err = s.runStreaming(ctx, p)
	}
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		p.results.Status = models.StatusFailed
		s.finish(p.results)
		return p.results, err
	}

	s.group(p)

	if ctx.Err() != nil {
		p.results.Status = models.StatusCancelled
	} else {
		p.results.Status = models.StatusCompleted
	}
	s.finish(p.results)

	s.logger.Info("Scan completed",
		zap.String("status", string(p.results.Status)),
		zap.Duration("duration", p.results.Duration),
		zap.Uint64("files", p.results.ProcessedFiles),
		zap.Int("groups", len(p.results.Groups)),
		zap.Uint64("wasted", p.results.WastedSpace))

	return p.results, nil
}

// Index walks roots without hashing and returns the traversal totals
func (s *Scanner) Index(ctx context.Context, roots []string) (*models.ScanResults, error) {
	p, err := s.prepare(roots)
	if err != nil {
		return nil, err
	}

	_, err = s.walk(ctx, p, p.results.Roots, func(*models.FileDescriptor) error { return nil })
	switch {
	case err == nil:
		p.results.Status = models.StatusCompleted
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		p.results.Status = models.StatusCancelled
	default:
		p.results.Status = models.StatusFailed
		s.finish(p.results)
		return p.results, err
	}

	s.finish(p.results)
	return p.results, nil
}

// prepare validates configuration and roots and builds the pipeline components
func (s *Scanner) prepare(roots []string) (*pipeline, error) {
	if err := s.config.Validate(); err != nil {
		return nil, err
	}

	f, err := s.config.BuildFilter()
	if err != nil {
		return nil, fmt.Errorf("failed to build path filter: %w", err)
	}
	hashOpts, err := s.config.HashOptions()
	if err != nil {
		return nil, err
	}
	minSize, err := s.config.MinSizeBytes()
	if err != nil {
		return nil, err
	}
	hasher, err := filesystem.NewHasher(s.fs, hashOpts)
	if err != nil {
		return nil, err
	}

	s.warnings.Store(0)
	s.quickHashed.Store(0)
	s.fullHashed.Store(0)
	s.hashFailures.Store(0)
	s.bytesHashed.Store(0)
	s.events = progress.Multi(s.sink, progress.SinkFunc(func(e models.Event) {
		if _, ok := e.(models.WarningEvent); ok {
			s.warnings.Add(1)
		}
	}))

	walker := filesystem.NewWalker(s.fs, f, s.config.ScanOptions(), s.events, s.logger)
	cleaned, err := walker.ValidateRoots(roots)
	if err != nil {
		return nil, err
	}

	results := models.NewScanResults(uuid.NewString(), cleaned)
	results.StartTime = time.Now()
	results.Version = Version
	results.Stats.FullAlgorithm = hashOpts.Full.String()
	results.Stats.QuickPass = s.config.QuickPass
	if s.config.QuickPass {
		results.Stats.QuickAlgorithm = hashOpts.Quick.String()
	}
	results.Stats.WorkersUsed = s.config.Workers

	return &pipeline{
		walker:  walker,
		hasher:  hasher,
		grouper: dedup.NewGrouper(hashOpts.Full.String()),
		minSize: minSize,
		results: results,
	}, nil
}

// runStaged walks everything first, then quick-hashes files that share a
// size, then full-hashes files that share size and quick digest
func (s *Scanner) runStaged(ctx context.Context, p *pipeline) error {
	var files []*models.FileDescriptor
	if _, err := s.walk(ctx, p, p.results.Roots, func(fd *models.FileDescriptor) error {
		files = append(files, fd)
		return nil
	}); err != nil {
		return err
	}

	sized := dedup.BySize(files, p.minSize)
	s.logger.Debug("Size candidates", zap.Int("files", len(files)), zap.Int("candidates", len(sized)))

	var samples []dedup.Sample
	err := s.hashPool(ctx, models.StageQuick, s.feed(ctx, sized), p.hasher.QuickHash, func(h hashed) {
		s.quickHashed.Add(1)
		samples = append(samples, dedup.Sample{File: h.file, Quick: h.result.Digest})
	})
	if err != nil {
		return err
	}

	full := dedup.ByQuickDigest(samples)
	s.logger.Debug("Quick hash candidates", zap.Int("candidates", len(full)))

	return s.hashPool(ctx, models.StageFull, s.feed(ctx, full), p.hasher.FullHash, func(h hashed) {
		s.fullHashed.Add(1)
		p.grouper.Add(dedup.Candidate{File: h.file, Digest: h.result.Digest})
	})
}

// runStreaming full-hashes every file as the walker produces it
func (s *Scanner) runStreaming(ctx context.Context, p *pipeline) error {
	in := make(chan *models.FileDescriptor, s.config.Queue())

	var g errgroup.Group
	g.Go(func() error {
		defer close(in)
		_, err := s.walk(ctx, p, p.results.Roots, func(fd *models.FileDescriptor) error {
			if fd.Size < p.minSize {
				return nil
			}
			select {
			case in <- fd:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		return err
	})
	g.Go(func() error {
		return s.hashPool(ctx, models.StageFull, in, p.hasher.FullHash, func(h hashed) {
			s.fullHashed.Add(1)
			p.grouper.Add(dedup.Candidate{File: h.file, Digest: h.result.Digest})
		})
	})

	return g.Wait()
}

// walk runs the walker and records traversal totals in the results
func (s *Scanner) walk(ctx context.Context, p *pipeline, roots []string, fn FileObserver) (filesystem.Totals, error) {
	totals, err := p.walker.Walk(ctx, roots, func(fd *models.FileDescriptor) error {
		p.results.AddFile(fd)
		if s.observer != nil {
			if err := s.observer(fd); err != nil {
				return fmt.Errorf("file observer: %w", err)
			}
		}
		return fn(fd)
	})
	p.results.ProcessedDirs = totals.Dirs
	return totals, err
}

// feed sends files into a bounded channel until done or cancelled
func (s *Scanner) feed(ctx context.Context, files []*models.FileDescriptor) <-chan *models.FileDescriptor {
	ch := make(chan *models.FileDescriptor, s.config.Queue())
	go func() {
		defer close(ch)
		for _, fd := range files {
			select {
			case ch <- fd:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

// hashPool hashes files from in with the configured number of workers and
// hands each success to collect on the calling goroutine. Workers finish
// the file they hold when ctx is cancelled and start nothing new.
func (s *Scanner) hashPool(ctx context.Context, stage models.Stage, in <-chan *models.FileDescriptor, hash hashFunc, collect func(hashed)) error {
	out := make(chan hashed, s.config.Queue())

	var workers errgroup.Group
	for i := 0; i < s.config.Workers; i++ {
		workers.Go(func() error {
			for fd := range in {
				if ctx.Err() != nil {
					continue
				}
				res, err := hash(fd.Path)
				if err != nil {
					s.hashFailed(stage, fd, err)
					continue
				}
				s.bytesHashed.Add(res.Bytes)
				out <- hashed{file: fd, result: res}
			}
			return nil
		})
	}

	go func() {
		workers.Wait()
		close(out)
	}()

	var processed, bytes uint64
	every := s.config.FileProgressEvery
	for h := range out {
		collect(h)
		processed++
		bytes += h.file.Size
		if every > 0 && processed%every == 0 {
			s.events.Emit(models.ProgressEvent{
				Stage:          stage,
				ProcessedFiles: processed,
				CurrentPath:    h.file.Path,
				QueueDepth:     len(in),
			})
		}
	}

	s.events.Emit(models.CompleteEvent{
		Stage:          stage,
		ProcessedFiles: processed,
		TotalBytes:     bytes,
		Cancelled:      ctx.Err() != nil,
	})
	return ctx.Err()
}

func (s *Scanner) hashFailed(stage models.Stage, fd *models.FileDescriptor, err error) {
	s.hashFailures.Add(1)
	s.logger.Debug("Hash failed",
		zap.String("stage", string(stage)),
		zap.String("path", fd.Path),
		zap.Error(err))
	s.events.Emit(models.WarningEvent{
		Stage:   stage,
		Path:    fd.Path,
		Message: err.Error(),
		Kind:    filesystem.Kind(err),
	})
}

// group materializes duplicate groups and reports integrity violations
func (s *Scanner) group(p *pipeline) {
	groups, err := p.grouper.Groups()
	for _, ie := range dedup.IntegrityErrors(err) {
		p.results.IntegrityErrors = append(p.results.IntegrityErrors, ie.Error())
		s.events.Emit(models.WarningEvent{
			Stage:   models.StageGroup,
			Path:    ie.Digest.Hex(),
			Message: ie.Error(),
			Kind:    ie.Kind(),
		})
	}
	p.results.SetGroups(groups)

	s.events.Emit(models.CompleteEvent{
		Stage:          models.StageGroup,
		ProcessedFiles: p.results.DuplicateFiles,
		TotalBytes:     p.results.WastedSpace,
	})
}

// finish stamps end time and statistics
func (s *Scanner) finish(r *models.ScanResults) {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
	r.Warnings = s.warnings.Load()
	r.QuickHashed = s.quickHashed.Load()
	r.FullHashed = s.fullHashed.Load()
	r.HashFailures = s.hashFailures.Load()
	r.Stats.BytesHashed = s.bytesHashed.Load()

	if secs := r.Duration.Seconds(); secs > 0 {
		r.Stats.FilesPerSecond = float64(r.ProcessedFiles) / secs
	}

	// Get memory usage
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	r.Stats.MemoryUsed = m.Alloc
}
