// Package sid computes stable, content-addressed identifiers for source
// spans and proof obligations. Stability across runs (not just within one)
// is required by the obligation cache (SPEC_FULL.md §11.1) and by the
// determinism properties in spec.md §8.
package sid

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// SID is a stable identifier: the first 16 hex characters of a SHA-256
// digest over a canonical input string. Sixteen hex chars (64 bits) is
// enough to make accidental collisions within one compilation unit
// negligible while keeping cache keys short.
type SID string

// ForSpan computes a stable id for a source span plus a node-kind tag,
// e.g. "call", "index", "unwrap" — used to key diagnostics and
// obligation-site identity so that two independent compiler runs over the
// same input agree on obligation identity (spec.md §8 P1, P4).
func ForSpan(fileID uint32, start, end int, kind string) SID {
	return hash(fmt.Sprintf("%d|%d|%d|%s", fileID, start, end, kind))
}

// ForObligation computes the cache key for a proof obligation: the
// formula text plus the serialized assumption context. Two obligations
// with the same formula and context always hash identically regardless of
// which call site produced them, so the cache never needs to distinguish
// "same obligation, different site" from "same obligation, same site" —
// both are safe to share a cached verdict.
func ForObligation(contextText, formulaText string) SID {
	return hash(contextText + "\x00" + formulaText)
}

func hash(input string) SID {
	sum := sha256.Sum256([]byte(input))
	return SID(hex.EncodeToString(sum[:])[:16])
}

// Short renders a SID for display in diagnostics, truncated further for
// readability (8 chars is still effectively unique per compilation unit).
func (s SID) Short() string {
	str := string(s)
	if len(str) <= 8 {
		return str
	}
	return str[:8]
}

func (s SID) String() string { return string(s) }

// Join concatenates child indices onto a base SID, used when a single
// source span produces more than one obligation (e.g. a chained
// comparison or multiple pre-clauses at one call site) and each needs its
// own stable identity derived from, but distinct from, the site's SID.
func Join(base SID, childIndex int) SID {
	return hash(string(base) + "#" + fmt.Sprint(childIndex))
}

// ParseList splits a "|"-joined list of SIDs, used when deserializing the
// obligation cache.
func ParseList(s string) []SID {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, "|")
	out := make([]SID, len(parts))
	for i, p := range parts {
		out[i] = SID(p)
	}
	return out
}
