package imaging

import (
	"bytes"
	"fmt"

	"github.com/sydney-stones/rfwidjet-server/internal/domain"
)

// DefaultMaxInputBytes is the ceiling applied to shopper and garment uploads.
const DefaultMaxInputBytes = 5 << 20

var (
	jpegMagic = []byte{0xFF, 0xD8, 0xFF}
	pngMagic  = []byte{0x89, 0x50, 0x4E, 0x47}
	riffMagic = []byte("RIFF")
	webpMagic = []byte("WEBP")
)

// DetectFormat sniffs the image container from its magic-number prefix and
// returns the canonical format name, or "" when none matches.
func DetectFormat(data []byte) string {
	switch {
	case bytes.HasPrefix(data, jpegMagic):
		return "jpeg"
	case bytes.HasPrefix(data, pngMagic):
		return "png"
	case len(data) >= 12 && bytes.HasPrefix(data, riffMagic) && bytes.Equal(data[8:12], webpMagic):
		return "webp"
	default:
		return ""
	}
}

// Validate checks that data is a supported image format and within the byte
// ceiling. maxBytes <= 0 selects DefaultMaxInputBytes.
func Validate(data []byte, maxBytes int) error {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxInputBytes
	}
	if DetectFormat(data) == "" {
		return fmt.Errorf("%w: expected JPEG, PNG or WEBP", domain.ErrUnsupportedFormat)
	}
	if len(data) > maxBytes {
		return fmt.Errorf("%w: %d bytes exceeds the %d byte limit", domain.ErrPayloadTooLarge, len(data), maxBytes)
	}
	return nil
}
