package dedup

import (
	"fmt"
	"sort"
	"strings"

	"github.com/NeoSilver997/silver-media-library/pkg/models"
)

// IntegrityError reports a digest partition whose members disagree on
// size. It means a hash collision or a file that changed between stat and
// read; the partition is dropped, the rest of the grouping stands.
type IntegrityError struct {
	Digest models.Digest
	Sizes  map[string]uint64 // path -> size
}

func (e *IntegrityError) Error() string {
	paths := make([]string, 0, len(e.Sizes))
	for p := range e.Sizes {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	parts := make([]string, len(paths))
	for i, p := range paths {
		parts[i] = fmt.Sprintf("%s (%d bytes)", p, e.Sizes[p])
	}
	return fmt.Sprintf("integrity violation: digest %s shared by files of different sizes: %s",
		e.Digest.Hex(), strings.Join(parts, ", "))
}

// Kind returns the error kind used in warnings and reports
func (e *IntegrityError) Kind() models.ErrorKind {
	return models.KindIntegrityViolation
}
