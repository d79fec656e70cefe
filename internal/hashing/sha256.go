// Package hashing implements the HashService port (spec §6). It is the
// leaf of the dependency graph: everything else in the domain depends on
// it, it depends on nothing in this module.
package hashing

import (
	"crypto/sha256"
	"encoding/hex"
)

// SHA256Service computes content hashes over UTF-8 text.
type SHA256Service struct{}

func New() SHA256Service { return SHA256Service{} }

// SHA256 renders the digest of s as 64 lowercase hex characters.
func (SHA256Service) SHA256(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
