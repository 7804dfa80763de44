package domain

import (
	"strings"
	"time"
)

// Quality selects the rendering fidelity requested from the provider.
type Quality string

const (
	QualityStandard Quality = "standard"
	QualityHD       Quality = "hd"
)

// Style selects the photographic setting of the composite.
type Style string

const (
	StyleStudio Style = "studio"
	StyleCasual Style = "casual"
)

// TryOnOptions tune a single generation. SaveToCache controls whether the
// successful result is written back to the generation cache.
type TryOnOptions struct {
	Quality     Quality
	Style       Style
	SaveToCache bool
}

// Normalize lowercases the option values and fills defaults so that two
// semantically equal option sets always fingerprint identically.
func (o TryOnOptions) Normalize() TryOnOptions {
	out := o
	switch Quality(strings.ToLower(strings.TrimSpace(string(o.Quality)))) {
	case QualityHD:
		out.Quality = QualityHD
	default:
		out.Quality = QualityStandard
	}
	switch Style(strings.ToLower(strings.TrimSpace(string(o.Style)))) {
	case StyleCasual:
		out.Style = StyleCasual
	default:
		out.Style = StyleStudio
	}
	return out
}

// TryOnRequest is the immutable input to one try-on generation. Image
// references are either inline payloads (data URI or bare base64) or http(s)
// URLs.
type TryOnRequest struct {
	MerchantID    string
	CustomerImage string
	ProductImage  string
	Options       TryOnOptions
}

// TryOnResult is the output of one generation. The orchestrator keeps no
// reference to it after returning.
type TryOnResult struct {
	ImageRef         string
	RecommendedSize  string
	Analysis         string
	ProcessingTimeMS int64
	EstimatedCost    float64
	ServedFromCache  bool
}

// CacheEntry is the cached outcome of a successful generation. Entries are
// owned by the cache; lookups return copies.
type CacheEntry struct {
	Fingerprint      string
	ImageRef         string
	Analysis         string
	GenerationTimeMS int64
	Cost             float64
	CreatedAt        time.Time
}
