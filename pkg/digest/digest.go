// Package digest computes deterministic content digests for build inputs.
//
// Digests are SHA-256 over length-prefixed fields so that field boundaries
// are unambiguous: ("ab","c") and ("a","bc") never collide. All map-backed
// inputs are sorted before hashing to keep the result independent of
// iteration order.
package digest

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"sort"
)

// Hasher accumulates length-prefixed fields into a SHA-256 digest.
type Hasher struct {
	h hash.Hash
}

// New creates an empty Hasher.
func New() *Hasher {
	return &Hasher{h: sha256.New()}
}

// Field appends a single length-prefixed field.
func (d *Hasher) Field(data []byte) *Hasher {
	var length [8]byte
	binary.BigEndian.PutUint64(length[:], uint64(len(data)))
	d.h.Write(length[:])
	d.h.Write(data)
	return d
}

// String appends a string field.
func (d *Hasher) String(s string) *Hasher {
	return d.Field([]byte(s))
}

// Strings appends each element of the slice as its own field, preserving order.
func (d *Hasher) Strings(values []string) *Hasher {
	for _, v := range values {
		d.String(v)
	}
	return d
}

// SortedPairs appends the map's key=value pairs in ascending key order.
func (d *Hasher) SortedPairs(m map[string]string) *Hasher {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		d.String(k + "=" + m[k])
	}
	return d
}

// Sum returns the hex-encoded digest of everything appended so far.
func (d *Hasher) Sum() string {
	return hex.EncodeToString(d.h.Sum(nil))
}

// Short truncates a hex digest to 12 characters for use in image tags.
// Shorter inputs are returned unchanged.
func Short(digest string) string {
	if len(digest) <= 12 {
		return digest
	}
	return digest[:12]
}
