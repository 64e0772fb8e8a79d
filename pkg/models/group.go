package models

// DuplicateGroup is a set of at least two byte-identical files
type DuplicateGroup struct {
	Digest      Digest           `json:"digest"`
	Algorithm   string           `json:"algorithm,omitempty"`
	FileSize    uint64           `json:"file_size"`
	Members     []FileDescriptor `json:"members"`
	WastedSpace uint64           `json:"wasted_space"`
}

// Count returns the number of member files
func (g *DuplicateGroup) Count() int {
	return len(g.Members)
}

// WastedBytes returns the bytes held by redundant copies beyond the first
func WastedBytes(members int, size uint64) uint64 {
	if members < 2 {
		return 0
	}
	return uint64(members-1) * size
}
