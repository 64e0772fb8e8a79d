package models

import "encoding/hex"

// HashKind distinguishes the sampled candidate hash from the full content hash
type HashKind string

const (
	HashQuick HashKind = "quick"
	HashFull  HashKind = "full"
)

// Digest is a raw, fixed-width hash value
type Digest []byte

// Hex returns the lower-case hex encoding of the digest
func (d Digest) Hex() string {
	return hex.EncodeToString(d)
}

// String implements fmt.Stringer
func (d Digest) String() string {
	return d.Hex()
}

// MarshalText encodes the digest as hex in JSON and YAML output
func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.Hex()), nil
}

// UnmarshalText decodes a hex digest
func (d *Digest) UnmarshalText(text []byte) error {
	raw, err := hex.DecodeString(string(text))
	if err != nil {
		return err
	}
	*d = raw
	return nil
}

// HashResult is one computed digest for one path.
// A quick match between two files is only a candidate signal.
type HashResult struct {
	Path      string   `json:"path"`
	Algorithm string   `json:"algorithm"`
	Digest    Digest   `json:"digest"`
	Kind      HashKind `json:"kind"`
	Bytes     uint64   `json:"bytes"` // bytes fed into the hash
}
