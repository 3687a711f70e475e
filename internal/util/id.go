package util

import (
	"crypto/rand"
	"encoding/hex"
)

// NewID returns a random 128-bit identifier carrying an entity prefix
// (pb_ playbooks, ver_ versions, fork_, pr_, prf_, ff_). The prefix keeps
// ids self-describing in logs and foreign keys.
func NewID(prefix string) string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	id := hex.EncodeToString(buf)
	if prefix == "" {
		return id
	}
	return prefix + "_" + id
}
