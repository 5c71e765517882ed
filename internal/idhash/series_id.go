package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
)

// ComputeSeriesID computes a deterministic series_id using SHA256.
// Formula: SHA256(source|vol_win|mom_win|digest)
// source is reduced to its base file name so the same input file maps to
// the same series regardless of the working directory. digest is the
// TableDigest of the computed rows, so a series id only ever names one
// table: changed bars, different fills or strict pricing give a new id.
// Returns hex-encoded hash (64 characters).
func ComputeSeriesID(source string, volWin, momWin int, digest string) string {
	data := fmt.Sprintf("%s|%d|%d|%s",
		filepath.Base(source),
		volWin,
		momWin,
		digest,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
