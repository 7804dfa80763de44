package tryon

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/sydney-stones/rfwidjet-server/internal/domain"
)

// Fingerprint derives the deterministic cache key for a generation request.
// The hash covers the canonical tuple (customer ref, product ref, quality,
// style); option normalization guarantees that semantically equal requests
// always land on the same key, across calls and across restarts.
func Fingerprint(req domain.TryOnRequest) string {
	opts := req.Options.Normalize()
	hasher := sha256.New()
	for _, part := range []string{
		req.CustomerImage,
		req.ProductImage,
		string(opts.Quality),
		string(opts.Style),
	} {
		hasher.Write([]byte(part))
		hasher.Write([]byte{'|'})
	}
	return hex.EncodeToString(hasher.Sum(nil))
}
