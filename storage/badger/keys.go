package badger

import (
	"encoding/binary"

	"github.com/poiesic/resolvit/core"
)

// Key prefixes for different data types
const (
	decisionRecordPrefix = "decrec"
)

// makeDecisionKey generates a key for a cached decision.
// Format: prefix:hash
func makeDecisionKey(id core.ID) []byte {
	prefix := decisionRecordPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8 // 8 bytes for the content hash
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}
