package core

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// DatasetHash fingerprints the raw bytes of an input file so a report
// can be tied back to the exact data it was computed from.
type DatasetHash Hash

func NewDatasetHash(data []byte) DatasetHash { return DatasetHash(NewHash(data)) }

func (h DatasetHash) String() string { return Hash(h).String() }
