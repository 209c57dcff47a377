package normalizer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/satenders/tender-indexer/internal/adapter"
)

// hasher produces the content hash over a per-source subset of semantic
// fields. The subset is marshalled, canonicalized with JCS so key order and
// number formatting cannot perturb the digest, then hashed with SHA-256.
type hasher struct {
	json adapter.JSON
	jcs  adapter.JCS
}

func newHasher(jsonAdapter adapter.JSON, jcsAdapter adapter.JCS) hasher {
	return hasher{json: jsonAdapter, jcs: jcsAdapter}
}

// Sum returns the lowercase hex SHA-256 of the canonical JSON of subset
func (h hasher) Sum(subset interface{}) (string, error) {
	data, err := h.json.Marshal(subset)
	if err != nil {
		return "", fmt.Errorf("failed to marshal hash subset: %w", err)
	}

	canonical, err := h.jcs.Transform(data)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize hash subset: %w", err)
	}

	digest := sha256.Sum256(canonical)
	return hex.EncodeToString(digest[:]), nil
}
