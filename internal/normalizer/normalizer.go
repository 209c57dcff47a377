// Package normalizer transforms raw per-portal payloads into the unified
// tender/document/contact triple. One normalizer per source; all of them
// share the contract that a record without a stable external id is skipped
// and that every free-text field is whitespace-squashed with empty mapping
// to nil.
package normalizer

import (
	"time"

	"github.com/satenders/tender-indexer/internal/adapter"
	"github.com/satenders/tender-indexer/internal/domain"
)

// Normalizer converts one raw object store payload into zero or more items
//
//go:generate mockgen -source=normalizer.go -destination=../mocks/normalizer.go -package=mocks -mock_names=Normalizer=MockNormalizer
type Normalizer interface {
	// Normalize parses the raw payload and returns the normalized items.
	// Records without an external id are dropped, not errored; an error is
	// returned only when the payload itself is unusable.
	Normalize(raw []byte) ([]domain.Item, error)

	// Source returns the portal this normalizer handles
	Source() domain.Source
}

// Registry resolves the normalizer for a source
type Registry struct {
	bySource map[domain.Source]Normalizer
}

// NewRegistry builds a registry covering all known sources
func NewRegistry(loc *time.Location, jsonAdapter adapter.JSON, jcsAdapter adapter.JCS) *Registry {
	h := newHasher(jsonAdapter, jcsAdapter)
	normalizers := []Normalizer{
		NewEskom(loc, jsonAdapter, h),
		NewSanral(loc, jsonAdapter, h),
		NewTransnet(loc, jsonAdapter, h),
		NewEtenders(loc, jsonAdapter, h),
	}

	bySource := make(map[domain.Source]Normalizer, len(normalizers))
	for _, n := range normalizers {
		bySource[n.Source()] = n
	}
	return &Registry{bySource: bySource}
}

// ForSource returns the normalizer for the source, or false when the source
// is unknown
func (r *Registry) ForSource(src domain.Source) (Normalizer, bool) {
	n, ok := r.bySource[src]
	return n, ok
}

// isoOrNil renders a timestamp as the UTC ISO-8601 string used inside hash
// subsets; nil stays nil so that "absent" and "midnight UTC" hash apart
func isoOrNil(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
