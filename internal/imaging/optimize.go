package imaging

import (
	"bytes"
	"image"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// DefaultOptimizeBudget is the target size for images sent to the provider.
const DefaultOptimizeBudget = 500 << 10

const (
	optimizeMaxEdge   = 1200
	optimizeStartQ    = 85
	optimizeMinQ      = 60
	optimizeStepQ     = 5
	aggressiveMaxEdge = 800
	aggressiveQuality = 50
)

// Optimize re-encodes data until it fits the byte budget. Inputs already under
// budget are returned unchanged, which makes the fast path idempotent.
// Oversized images are scaled to a 1200px long edge and re-encoded as JPEG at
// decreasing quality; if the budget still cannot be met a final 800px
// low-quality pass is returned regardless of size. Optimize is best effort:
// undecodable input comes back untouched and no error is ever reported.
func Optimize(data []byte, maxBytes int) []byte {
	if maxBytes <= 0 {
		maxBytes = DefaultOptimizeBudget
	}
	if len(data) <= maxBytes {
		return data
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data
	}

	scaled := scaleDown(img, optimizeMaxEdge)
	for q := optimizeStartQ; q >= optimizeMinQ; q -= optimizeStepQ {
		out, err := encodeJPEG(scaled, q)
		if err != nil {
			return data
		}
		if len(out) <= maxBytes {
			return out
		}
	}

	out, err := encodeJPEG(scaleDown(img, aggressiveMaxEdge), aggressiveQuality)
	if err != nil {
		return data
	}
	return out
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// scaleDown caps the longer dimension at maxEdge, preserving aspect ratio.
// Images already within the cap are returned as-is.
func scaleDown(img image.Image, maxEdge int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxEdge && h <= maxEdge {
		return img
	}

	var dw, dh int
	if w >= h {
		dw = maxEdge
		dh = h * maxEdge / w
	} else {
		dh = maxEdge
		dw = w * maxEdge / h
	}
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
