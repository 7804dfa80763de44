package tryon

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecommendSize(t *testing.T) {
	tests := []struct {
		name     string
		analysis string
		want     string
	}{
		{
			name:     "structured json field",
			analysis: `{"fit": "relaxed", "recommended_size": "L", "confidence": 0.9}`,
			want:     "L",
		},
		{
			name:     "structured plain field",
			analysis: "The garment drapes well.\nrecommended_size: XL",
			want:     "XL",
		},
		{
			name:     "structured field case insensitive",
			analysis: `RECOMMENDED_SIZE = 'xxl'`,
			want:     "XXL",
		},
		{
			name:     "structured field wins over earlier bare token",
			analysis: "This M-pattern jacket runs small. recommended_size: XL",
			want:     "XL",
		},
		{
			name:     "bare token fallback",
			analysis: "Based on the shoulders we suggest size S for this customer.",
			want:     "S",
		},
		{
			name:     "first bare token wins",
			analysis: "Either XS or S would work here.",
			want:     "XS",
		},
		{
			name:     "no token defaults",
			analysis: "The color complements the customer's complexion nicely.",
			want:     DefaultSize,
		},
		{
			name:     "empty analysis defaults",
			analysis: "",
			want:     DefaultSize,
		},
		{
			name:     "token embedded in a word is ignored",
			analysis: "The XLARGE print dominates the design.",
			want:     DefaultSize,
		},
		{
			name:     "extended sizes",
			analysis: "recommended_size: XXS",
			want:     "XXS",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, RecommendSize(tc.analysis))
		})
	}
}

func TestRecommendSizeIsTotal(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		strings.Repeat("noise ", 1000),
		"{\"broken json",
		"recommended_size:",
		"recommended_size: gigantic",
	}
	for _, in := range inputs {
		got := RecommendSize(in)
		_, ok := sizeTokens[got]
		require.True(t, ok, "input %q yielded %q", in, got)
	}
}
