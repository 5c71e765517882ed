package idhash

import (
	"crypto/sha256"
	"fmt"

	"github.com/mr-tron/base58"

	"bar-feature-lab/internal/domain"
	"bar-feature-lab/internal/tabular"
)

// TableDigest hashes the canonical CSV rendering of a feature table.
// Two runs producing byte-identical output files share a digest.
// Returns base58-encoded SHA256.
func TableDigest(rows []domain.FeatureRow) (string, error) {
	h := sha256.New()
	if err := tabular.WriteFeatures(h, rows); err != nil {
		return "", fmt.Errorf("render table: %w", err)
	}
	return base58.Encode(h.Sum(nil)), nil
}
