package filesystem

import (
	"crypto/sha256"
	"errors"
	"io/fs"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NeoSilver997/silver-media-library/pkg/models"
)

func newTestHasher(t *testing.T, mfs afero.Fs, mutate func(*HashOptions)) *Hasher {
	t.Helper()
	opts := DefaultHashOptions()
	if mutate != nil {
		mutate(&opts)
	}
	h, err := NewHasher(mfs, opts)
	require.NoError(t, err)
	return h
}

func pattern(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i*7 + i/251)
	}
	return data
}

func TestFullHash_KnownVectors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{"Empty", "", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{"abc", "abc", "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
	}

	mfs := afero.NewMemMapFs()
	require.NoError(t, mfs.MkdirAll("/data", 0755))
	h := newTestHasher(t, mfs, nil)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := "/data/" + tt.name
			require.NoError(t, afero.WriteFile(mfs, path, []byte(tt.content), 0644))

			res, err := h.FullHash(path)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, res.Digest.Hex())
			assert.Equal(t, "sha256", res.Algorithm)
			assert.Equal(t, models.HashFull, res.Kind)
			assert.Equal(t, uint64(len(tt.content)), res.Bytes)
		})
	}
}

func TestFullHash_Deterministic(t *testing.T) {
	mfs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(mfs, "/f", pattern(100000), 0644))
	h := newTestHasher(t, mfs, nil)

	first, err := h.FullHash("/f")
	require.NoError(t, err)
	second, err := h.FullHash("/f")
	require.NoError(t, err)
	assert.Equal(t, first.Digest, second.Digest)
}

func TestFullHash_StreamingMatchesInMemory(t *testing.T) {
	data := pattern(5<<20 + 123)
	mfs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(mfs, "/big.bin", data, 0644))

	inMemory := newTestHasher(t, mfs, nil)
	streaming := newTestHasher(t, mfs, func(o *HashOptions) {
		o.LargeFileThreshold = 1
		o.ChunkSize = 4096
	})

	a, err := inMemory.FullHash("/big.bin")
	require.NoError(t, err)
	b, err := streaming.FullHash("/big.bin")
	require.NoError(t, err)

	want := sha256.Sum256(data)
	assert.Equal(t, models.Digest(want[:]), a.Digest)
	assert.Equal(t, a.Digest, b.Digest)
	assert.Equal(t, uint64(len(data)), b.Bytes)
}

func TestFullHash_ThresholdBoundary(t *testing.T) {
	data := pattern(1000)
	mfs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(mfs, "/f", data, 0644))

	// At the threshold the file is streamed
	h := newTestHasher(t, mfs, func(o *HashOptions) {
		o.LargeFileThreshold = 1000
		o.ChunkSize = 7
	})
	res, err := h.FullHash("/f")
	require.NoError(t, err)

	want := sha256.Sum256(data)
	assert.Equal(t, models.Digest(want[:]), res.Digest)
}

func TestQuickHash_SmallFileIsWholeFile(t *testing.T) {
	mfs := afero.NewMemMapFs()
	h := newTestHasher(t, mfs, func(o *HashOptions) { o.Quick = SHA256 })

	for _, size := range []int{0, 1, 100, 8192} {
		data := pattern(size)
		require.NoError(t, afero.WriteFile(mfs, "/f", data, 0644))

		res, err := h.QuickHash("/f")
		require.NoError(t, err)

		want := sha256.Sum256(data)
		assert.Equal(t, models.Digest(want[:]), res.Digest, "size %d", size)
		assert.Equal(t, models.HashQuick, res.Kind)
		assert.Equal(t, uint64(size), res.Bytes)
	}
}

func TestQuickHash_HeadAndTail(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"Disjoint windows", 20},
		{"Overlapping windows", 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := pattern(tt.size)
			mfs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(mfs, "/f", data, 0644))

			h := newTestHasher(t, mfs, func(o *HashOptions) {
				o.Quick = SHA256
				o.SampleSize = 8
			})
			res, err := h.QuickHash("/f")
			require.NoError(t, err)

			sampled := append(append([]byte{}, data[:8]...), data[tt.size-8:]...)
			want := sha256.Sum256(sampled)
			assert.Equal(t, models.Digest(want[:]), res.Digest)
			assert.Equal(t, uint64(16), res.Bytes)
		})
	}
}

func TestQuickHash_MiddleDifferenceCollides(t *testing.T) {
	a := pattern(64)
	b := append([]byte{}, a...)
	b[32] ^= 0xff

	mfs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(mfs, "/a", a, 0644))
	require.NoError(t, afero.WriteFile(mfs, "/b", b, 0644))
	h := newTestHasher(t, mfs, func(o *HashOptions) { o.SampleSize = 8 })

	qa, err := h.QuickHash("/a")
	require.NoError(t, err)
	qb, err := h.QuickHash("/b")
	require.NoError(t, err)
	assert.Equal(t, qa.Digest, qb.Digest)

	fa, err := h.FullHash("/a")
	require.NoError(t, err)
	fb, err := h.FullHash("/b")
	require.NoError(t, err)
	assert.NotEqual(t, fa.Digest, fb.Digest)
}

func TestHasher_Errors(t *testing.T) {
	mfs := afero.NewMemMapFs()
	require.NoError(t, mfs.MkdirAll("/dir", 0755))
	h := newTestHasher(t, mfs, nil)

	_, err := h.FullHash("/missing")
	assert.ErrorIs(t, err, ErrIOFailure)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Equal(t, models.KindIOFailure, Kind(err))

	_, err = h.QuickHash("/missing")
	assert.ErrorIs(t, err, ErrIOFailure)

	_, err = h.FullHash("/dir")
	assert.ErrorIs(t, err, ErrIOFailure)
}

var errDisk = errors.New("input/output error")

// flakyFs serves files whose reads fail once failAfter bytes were returned
type flakyFs struct {
	afero.Fs
	failAfter int64
}

func (f flakyFs) Open(name string) (afero.File, error) {
	file, err := f.Fs.Open(name)
	if err != nil {
		return nil, err
	}
	return &flakyFile{File: file, remaining: f.failAfter, limit: f.failAfter}, nil
}

type flakyFile struct {
	afero.File
	remaining int64
	limit     int64
}

func (f *flakyFile) Read(p []byte) (int, error) {
	if f.remaining <= 0 {
		return 0, errDisk
	}
	if int64(len(p)) > f.remaining {
		p = p[:f.remaining]
	}
	n, err := f.File.Read(p)
	f.remaining -= int64(n)
	return n, err
}

func (f *flakyFile) ReadAt(p []byte, off int64) (int, error) {
	if off+int64(len(p)) > f.limit {
		return 0, errDisk
	}
	return f.File.ReadAt(p, off)
}

func TestHasher_ReadErrorMidFile(t *testing.T) {
	mem := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(mem, "/f", pattern(64<<10), 0644))
	mfs := flakyFs{Fs: mem, failAfter: 10000}

	tests := []struct {
		name   string
		mutate func(*HashOptions)
		hash   func(*Hasher, string) (models.HashResult, error)
	}{
		{"Full in memory", nil, (*Hasher).FullHash},
		{"Full streaming", func(o *HashOptions) {
			o.LargeFileThreshold = 1
			o.ChunkSize = 4096
		}, (*Hasher).FullHash},
		{"Quick head", func(o *HashOptions) { o.SampleSize = 16 << 10 }, (*Hasher).QuickHash},
		{"Quick tail", func(o *HashOptions) { o.SampleSize = 4096 }, (*Hasher).QuickHash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHasher(t, mfs, tt.mutate)
			res, err := tt.hash(h, "/f")
			assert.ErrorIs(t, err, ErrIOFailure)
			assert.ErrorIs(t, err, errDisk)
			assert.Equal(t, models.KindIOFailure, Kind(err))
			assert.Empty(t, res.Digest)
		})
	}
}

func TestNewHasher_Validation(t *testing.T) {
	mfs := afero.NewMemMapFs()

	_, err := NewHasher(mfs, HashOptions{Full: XXH64, Quick: XXH64, SampleSize: 8, ChunkSize: 8})
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)

	_, err = NewHasher(mfs, HashOptions{Full: "md4", Quick: XXH64, SampleSize: 8, ChunkSize: 8})
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)

	_, err = NewHasher(mfs, HashOptions{Full: SHA256, Quick: XXH64, SampleSize: 0, ChunkSize: 8})
	assert.Error(t, err)

	_, err = NewHasher(mfs, HashOptions{Full: SHA256, Quick: XXH64, SampleSize: 8, ChunkSize: 0})
	assert.Error(t, err)
}

func TestAlgorithms(t *testing.T) {
	sizes := map[Algorithm]int{
		SHA256:  32,
		SHA512:  64,
		BLAKE2b: 32,
		BLAKE3:  32,
		XXH64:   8,
	}

	mfs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(mfs, "/f", []byte("hello"), 0644))

	for _, a := range Algorithms() {
		t.Run(a.String(), func(t *testing.T) {
			d, err := a.New()
			require.NoError(t, err)
			assert.Equal(t, sizes[a], d.Size())

			h := newTestHasher(t, mfs, func(o *HashOptions) { o.Quick = a })
			res, err := h.QuickHash("/f")
			require.NoError(t, err)
			assert.Len(t, res.Digest, sizes[a])
			assert.Equal(t, string(a), res.Algorithm)
		})
	}

	assert.False(t, XXH64.Cryptographic())
	assert.True(t, BLAKE3.Cryptographic())
}

func TestParseAlgorithm(t *testing.T) {
	a, err := ParseAlgorithm(" SHA256 ")
	require.NoError(t, err)
	assert.Equal(t, SHA256, a)

	a, err = ParseAlgorithm("blake3")
	require.NoError(t, err)
	assert.Equal(t, BLAKE3, a)

	_, err = ParseAlgorithm("md5")
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}

func TestKind(t *testing.T) {
	assert.Equal(t, models.ErrorKind(""), Kind(nil))
	assert.Equal(t, models.KindAccessDenied, Kind(fs.ErrPermission))
	assert.Equal(t, models.KindAccessDenied, Kind(ErrAccessDenied))
	assert.Equal(t, models.KindIOFailure, Kind(assert.AnError))
	assert.Equal(t, models.KindInvalidRoot, Kind(ErrInvalidRoot))
}
