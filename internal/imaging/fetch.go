package imaging

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sydney-stones/rfwidjet-server/internal/domain"
)

const defaultFetchLimit = 20 << 20 // hard ceiling on remote downloads

// Resolver normalizes an image reference into raw bytes. Three reference
// forms are accepted: a data URI with an inline base64 payload, a bare base64
// string, and an http(s) URL fetched with a bounded timeout.
type Resolver struct {
	client *http.Client
}

// NewResolver builds a Resolver. A nil client gets a default with the given
// timeout applied.
func NewResolver(client *http.Client, timeout time.Duration) *Resolver {
	if client == nil {
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Resolver{client: client}
}

// Resolve turns ref into image bytes. Anything that starts with a data-URI
// prefix, or does not start with http, is treated as base64; everything else
// is fetched over HTTP.
func (r *Resolver) Resolve(ctx context.Context, ref string) ([]byte, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: empty image reference", domain.ErrInvalidInput)
	}
	if strings.HasPrefix(ref, "data:") || !strings.HasPrefix(strings.ToLower(ref), "http") {
		return decodeInline(ref)
	}
	return r.fetch(ctx, ref)
}

func decodeInline(ref string) ([]byte, error) {
	payload := ref
	if strings.HasPrefix(ref, "data:") {
		idx := strings.IndexByte(ref, ',')
		if idx < 0 {
			return nil, fmt.Errorf("%w: malformed data uri", domain.ErrInvalidInput)
		}
		payload = ref[idx+1:]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		if data, err = base64.RawStdEncoding.DecodeString(payload); err != nil {
			return nil, fmt.Errorf("%w: decode base64: %v", domain.ErrInvalidInput, err)
		}
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image payload", domain.ErrInvalidInput)
	}
	return data, nil
}

func (r *Resolver) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d from %s", domain.ErrUpstreamFetch, resp.StatusCode, url)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, defaultFetchLimit))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrUpstreamFetch, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty body from %s", domain.ErrUpstreamFetch, url)
	}
	return data, nil
}
