package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
)

// noisyImage defeats compression so encoded sizes stay meaningfully large.
func noisyImage(t *testing.T, w, h int) image.Image {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	seed := uint32(2463534242)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			seed ^= seed << 13
			seed ^= seed >> 17
			seed ^= seed << 5
			img.Set(x, y, color.RGBA{uint8(seed), uint8(seed >> 8), uint8(seed >> 16), 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestOptimizeUnderBudgetIsIdentity(t *testing.T) {
	data := encodePNG(t, noisyImage(t, 32, 32))
	got := Optimize(data, len(data))
	require.Equal(t, data, got)
}

func TestOptimizeIdempotentOnSecondPass(t *testing.T) {
	data := encodePNG(t, noisyImage(t, 200, 200))
	budget := 80 << 10

	first := Optimize(data, budget)
	require.Less(t, len(first), len(data))
	require.LessOrEqual(t, len(first), budget)

	second := Optimize(first, budget)
	require.Equal(t, first, second)
}

func TestOptimizeShrinksOversizedInput(t *testing.T) {
	data := encodePNG(t, noisyImage(t, 600, 400))
	budget := len(data) / 4

	got := Optimize(data, budget)
	require.Less(t, len(got), len(data))
	require.Equal(t, "jpeg", DetectFormat(got))
}

func TestOptimizeScalesLongEdge(t *testing.T) {
	data := encodePNG(t, noisyImage(t, 2400, 1200))

	got := Optimize(data, 64<<10)
	require.Equal(t, "jpeg", DetectFormat(got))

	decoded, _, err := image.Decode(bytes.NewReader(got))
	require.NoError(t, err)
	bounds := decoded.Bounds()
	require.LessOrEqual(t, bounds.Dx(), optimizeMaxEdge)
	require.LessOrEqual(t, bounds.Dy(), optimizeMaxEdge)
	// Aspect ratio survives the resize.
	require.Equal(t, bounds.Dx(), bounds.Dy()*2)
}

func TestOptimizeAggressiveFallbackAlwaysReturns(t *testing.T) {
	data := encodePNG(t, noisyImage(t, 1600, 1600))

	// An unreachable budget still produces output rather than an error.
	got := Optimize(data, 10)
	require.NotEmpty(t, got)
	require.Equal(t, "jpeg", DetectFormat(got))

	decoded, _, err := image.Decode(bytes.NewReader(got))
	require.NoError(t, err)
	require.LessOrEqual(t, decoded.Bounds().Dx(), aggressiveMaxEdge)
}

func TestOptimizeUndecodableInputUntouched(t *testing.T) {
	data := bytes.Repeat([]byte{0xAB}, 4096)
	got := Optimize(data, 1024)
	require.Equal(t, data, got)
}

func TestOptimizeDefaultBudget(t *testing.T) {
	data := encodePNG(t, noisyImage(t, 16, 16))
	require.Equal(t, data, Optimize(data, 0))
}
