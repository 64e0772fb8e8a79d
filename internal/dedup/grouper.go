// Package dedup turns full-content digests into duplicate groups.
package dedup

import (
	"cmp"
	"slices"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/samber/lo"

	"github.com/NeoSilver997/silver-media-library/pkg/models"
)

// Candidate is a walked file paired with its full-content digest
type Candidate struct {
	File   *models.FileDescriptor
	Digest models.Digest
}

// Grouper partitions candidates by digest. The result does not depend on
// the order of Add calls or on how candidates were split across groupers
// later combined with Merge. It is safe for concurrent use.
type Grouper struct {
	mu         sync.Mutex
	algorithm  string
	partitions map[string]map[string]models.FileDescriptor // digest -> path -> file
}

// NewGrouper creates an empty grouper. algorithm is recorded on each group.
func NewGrouper(algorithm string) *Grouper {
	return &Grouper{
		algorithm:  algorithm,
		partitions: make(map[string]map[string]models.FileDescriptor),
	}
}

// Add records one candidate. A path seen twice under the same digest
// counts once.
func (g *Grouper) Add(c Candidate) {
	if c.File == nil || len(c.Digest) == 0 {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.addLocked(string(c.Digest), *c.File)
}

func (g *Grouper) addLocked(key string, fd models.FileDescriptor) {
	members, ok := g.partitions[key]
	if !ok {
		members = make(map[string]models.FileDescriptor)
		g.partitions[key] = members
	}
	if _, dup := members[fd.Path]; !dup {
		members[fd.Path] = fd
	}
}

// Merge folds the candidates of other into g
func (g *Grouper) Merge(other *Grouper) {
	if other == nil || other == g {
		return
	}

	other.mu.Lock()
	snapshot := make(map[string][]models.FileDescriptor, len(other.partitions))
	for key, members := range other.partitions {
		snapshot[key] = lo.Values(members)
	}
	other.mu.Unlock()

	g.mu.Lock()
	defer g.mu.Unlock()
	for key, files := range snapshot {
		for _, fd := range files {
			g.addLocked(key, fd)
		}
	}
}

// Len returns the number of distinct digests seen
func (g *Grouper) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.partitions)
}

// Groups materializes every partition with at least two members. Groups
// are ordered by digest and members by path. Partitions whose members
// disagree on size are left out and reported as *IntegrityError values
// inside a *multierror.Error; the returned groups are valid either way.
func (g *Grouper) Groups() ([]models.DuplicateGroup, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var errs *multierror.Error
	groups := make([]models.DuplicateGroup, 0)

	for key, members := range g.partitions {
		if len(members) < 2 {
			continue
		}

		files := lo.Values(members)
		slices.SortFunc(files, func(a, b models.FileDescriptor) int {
			return cmp.Compare(a.Path, b.Path)
		})

		size := files[0].Size
		mismatch := lo.SomeBy(files, func(f models.FileDescriptor) bool { return f.Size != size })
		if mismatch {
			errs = multierror.Append(errs, &IntegrityError{
				Digest: models.Digest(key),
				Sizes: lo.SliceToMap(files, func(f models.FileDescriptor) (string, uint64) {
					return f.Path, f.Size
				}),
			})
			continue
		}

		groups = append(groups, models.DuplicateGroup{
			Digest:      models.Digest(key),
			Algorithm:   g.algorithm,
			FileSize:    size,
			Members:     files,
			WastedSpace: models.WastedBytes(len(files), size),
		})
	}

	slices.SortFunc(groups, func(a, b models.DuplicateGroup) int {
		return cmp.Compare(string(a.Digest), string(b.Digest))
	})

	if errs != nil {
		slices.SortFunc(errs.Errors, func(a, b error) int {
			return cmp.Compare(a.Error(), b.Error())
		})
	}
	return groups, errs.ErrorOrNil()
}

// Group is a one-shot helper over a candidate slice
func Group(algorithm string, candidates []Candidate) ([]models.DuplicateGroup, error) {
	g := NewGrouper(algorithm)
	for _, c := range candidates {
		g.Add(c)
	}
	return g.Groups()
}

// TotalWasted sums the reclaimable bytes of groups
func TotalWasted(groups []models.DuplicateGroup) uint64 {
	return lo.SumBy(groups, func(g models.DuplicateGroup) uint64 { return g.WastedSpace })
}

// IntegrityErrors extracts the integrity failures from an error returned by Groups
func IntegrityErrors(err error) []*IntegrityError {
	if err == nil {
		return nil
	}
	merr, ok := err.(*multierror.Error)
	if !ok {
		if ie, ok := err.(*IntegrityError); ok {
			return []*IntegrityError{ie}
		}
		return nil
	}
	var out []*IntegrityError
	for _, e := range merr.Errors {
		if ie, ok := e.(*IntegrityError); ok {
			out = append(out, ie)
		}
	}
	return out
}
