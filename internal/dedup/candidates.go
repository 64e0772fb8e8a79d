package dedup

import (
	"cmp"
	"slices"

	"github.com/samber/lo"

	"github.com/NeoSilver997/silver-media-library/pkg/models"
)

// Sample is a file with its quick digest
type Sample struct {
	File  *models.FileDescriptor
	Quick models.Digest
}

type sampleKey struct {
	size  uint64
	quick string
}

// BySize keeps the files that share their size with at least one other
// file. Files smaller than minSize are dropped first. Output is ordered by path.
func BySize(files []*models.FileDescriptor, minSize uint64) []*models.FileDescriptor {
	sized := lo.Filter(files, func(f *models.FileDescriptor, _ int) bool {
		return f.Size >= minSize
	})
	buckets := lo.GroupBy(sized, func(f *models.FileDescriptor) uint64 { return f.Size })
	return flattenShared(buckets, func(f *models.FileDescriptor) *models.FileDescriptor { return f })
}

// ByQuickDigest keeps the samples whose (size, quick digest) pair is shared
// with at least one other sample. Output is ordered by path.
func ByQuickDigest(samples []Sample) []*models.FileDescriptor {
	buckets := lo.GroupBy(samples, func(s Sample) sampleKey {
		return sampleKey{size: s.File.Size, quick: string(s.Quick)}
	})
	return flattenShared(buckets, func(s Sample) *models.FileDescriptor { return s.File })
}

func flattenShared[K comparable, T any](buckets map[K][]T, file func(T) *models.FileDescriptor) []*models.FileDescriptor {
	shared := lo.PickBy(buckets, func(_ K, items []T) bool { return len(items) >= 2 })

	out := make([]*models.FileDescriptor, 0)
	for _, items := range shared {
		for _, item := range items {
			out = append(out, file(item))
		}
	}
	slices.SortFunc(out, func(a, b *models.FileDescriptor) int {
		return cmp.Compare(a.Path, b.Path)
	})
	return out
}
