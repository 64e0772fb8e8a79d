package filesystem

import (
	"fmt"
	"hash"
	"io"
	"sync"

	"github.com/spf13/afero"

	"github.com/NeoSilver997/silver-media-library/pkg/models"
)

// HashOptions configures a Hasher
type HashOptions struct {
	Full               Algorithm
	Quick              Algorithm
	SampleSize         int64 // head and tail window of the quick hash
	LargeFileThreshold int64 // files at or above this size are streamed
	ChunkSize          int
}

// DefaultHashOptions returns sha256 full hashes, xxh64 quick hashes over
// 8 KiB head and tail, in-memory hashing below 2 GiB and 1 MiB chunks above
func DefaultHashOptions() HashOptions {
	return HashOptions{
		Full:               SHA256,
		Quick:              XXH64,
		SampleSize:         8 << 10,
		LargeFileThreshold: 2 << 30,
		ChunkSize:          1 << 20,
	}
}

// Hasher computes quick and full digests. It holds no per-file state and
// is safe for concurrent use.
type Hasher struct {
	fs   afero.Fs
	opts HashOptions
	bufs sync.Pool
}

// NewHasher validates opts and creates a hasher
func NewHasher(fs afero.Fs, opts HashOptions) (*Hasher, error) {
	if !opts.Full.Cryptographic() {
		return nil, fmt.Errorf("%w: %s cannot be used for full hashes", ErrUnsupportedAlgorithm, opts.Full)
	}
	for _, a := range []Algorithm{opts.Full, opts.Quick} {
		if _, err := a.New(); err != nil {
			return nil, err
		}
	}
	if opts.SampleSize <= 0 {
		return nil, fmt.Errorf("quick sample size must be positive, got %d", opts.SampleSize)
	}
	if opts.ChunkSize <= 0 {
		return nil, fmt.Errorf("stream chunk size must be positive, got %d", opts.ChunkSize)
	}

	h := &Hasher{fs: fs, opts: opts}
	h.bufs.New = func() any {
		buf := make([]byte, opts.ChunkSize)
		return &buf
	}
	return h, nil
}

// Options returns the hasher configuration
func (h *Hasher) Options() HashOptions {
	return h.opts
}

// QuickHash digests the first SampleSize bytes and, for larger files, the
// last SampleSize bytes. Head and tail overlap when the file is shorter
// than two windows.
func (h *Hasher) QuickHash(path string) (models.HashResult, error) {
	f, size, err := h.open(path)
	if err != nil {
		return models.HashResult{}, err
	}
	defer f.Close()

	d, _ := h.opts.Quick.New()
	window := make([]byte, h.opts.SampleSize)

	n, err := io.ReadFull(f, window)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return models.HashResult{}, ioError(path, err)
	}
	d.Write(window[:n])
	fed := uint64(n)

	if size > h.opts.SampleSize {
		tail := io.NewSectionReader(f, size-h.opts.SampleSize, h.opts.SampleSize)
		n, err = io.ReadFull(tail, window)
		if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
			return models.HashResult{}, ioError(path, err)
		}
		d.Write(window[:n])
		fed += uint64(n)
	}

	return result(path, h.opts.Quick, models.HashQuick, d, fed), nil
}

// FullHash digests the whole file. Files below LargeFileThreshold are read
// into memory; larger ones are streamed in ChunkSize pieces.
func (h *Hasher) FullHash(path string) (models.HashResult, error) {
	f, size, err := h.open(path)
	if err != nil {
		return models.HashResult{}, err
	}
	defer f.Close()

	d, _ := h.opts.Full.New()

	var fed int64
	if size < h.opts.LargeFileThreshold {
		data, err := io.ReadAll(f)
		if err != nil {
			return models.HashResult{}, ioError(path, err)
		}
		d.Write(data)
		fed = int64(len(data))
	} else {
		bufp := h.bufs.Get().(*[]byte)
		defer h.bufs.Put(bufp)

		// Hide WriterTo so the copy always goes through the bounded buffer
		fed, err = io.CopyBuffer(d, struct{ io.Reader }{f}, *bufp)
		if err != nil {
			return models.HashResult{}, ioError(path, err)
		}
	}

	return result(path, h.opts.Full, models.HashFull, d, uint64(fed)), nil
}

func (h *Hasher) open(path string) (afero.File, int64, error) {
	f, err := h.fs.Open(path)
	if err != nil {
		return nil, 0, ioError(path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, ioError(path, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, 0, fmt.Errorf("%w: %s: is a directory", ErrIOFailure, path)
	}
	return f, info.Size(), nil
}

func result(path string, a Algorithm, kind models.HashKind, d hash.Hash, fed uint64) models.HashResult {
	return models.HashResult{
		Path:      path,
		Algorithm: a.String(),
		Digest:    d.Sum(nil),
		Kind:      kind,
		Bytes:     fed,
	}
}

// ioError wraps err so both ErrIOFailure and the OS error match errors.Is
func ioError(path string, err error) error {
	if IsPermission(err) {
		return fmt.Errorf("%w: %s: %w", ErrAccessDenied, path, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrIOFailure, path, err)
}
