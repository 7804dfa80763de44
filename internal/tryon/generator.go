package tryon

import (
	"context"

	"github.com/sydney-stones/rfwidjet-server/internal/domain"
)

// GenerationOutput is what the external capability hands back: either inline
// image bytes or a hosted URL, plus an optional free-text analysis that is
// expected (not required) to carry a size recommendation.
type GenerationOutput struct {
	ImageData []byte
	ImageURL  string
	Analysis  string
}

// Generator is the opaque generation capability. Implementations translate a
// shopper photo and a garment image into a composited try-on. Transient
// failures and throttling must surface as retryable provider errors; client
// errors must be classified non-retryable at the origin (see
// domain.NewProviderError).
type Generator interface {
	Generate(ctx context.Context, customer, product []byte, opts domain.TryOnOptions) (GenerationOutput, error)
}
