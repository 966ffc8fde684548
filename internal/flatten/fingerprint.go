package flatten

import (
	"fmt"

	"github.com/spaolacci/murmur3"

	"github.com/intakegrid/intakegrid/pkg/types"
)

// Fingerprint computes a stable 64-bit murmur3 hash over the row cells.
// Cells are delimited with 0x1f and rows with 0x1e so that cell boundaries
// contribute to the hash. Identical row sets always hash identically, which
// lets the grid store tell a republication of unchanged content from a real
// revision.
func Fingerprint(rows []types.FlatRow) uint64 {
	h := murmur3.New64()
	for _, r := range rows {
		cells := r.Cells()
		for _, cell := range cells {
			h.Write([]byte(cell))
			h.Write([]byte{0x1f})
		}
		h.Write([]byte{0x1e})
	}
	return h.Sum64()
}

// FingerprintString renders the fingerprint as a fixed-width hex string.
func FingerprintString(rows []types.FlatRow) string {
	return fmt.Sprintf("%016x", Fingerprint(rows))
}
