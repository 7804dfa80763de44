package tryon

import (
	"regexp"
	"strings"
)

// DefaultSize is the recommendation used when the analysis text yields
// nothing usable. A missing size is not fatal to the overall result.
const DefaultSize = "M"

var sizeTokens = map[string]struct{}{
	"XXS": {}, "XS": {}, "S": {}, "M": {}, "L": {}, "XL": {}, "XXL": {},
}

var (
	// Matches a structured key/value line such as `recommended_size: "L"` or
	// `"recommended_size": "XL",` inside a JSON-ish analysis block.
	structuredSizeRe = regexp.MustCompile(`(?i)["']?recommended_size["']?\s*[:=]\s*["']?(XXS|XS|S|M|L|XL|XXL)["']?`)
	// Fallback scan for a bare size token anywhere in the text.
	bareSizeRe = regexp.MustCompile(`\b(XXS|XS|S|M|L|XL|XXL)\b`)
)

// RecommendSize extracts a garment size from the model's free-form analysis.
// Extraction is two-tier: a structured recommended_size field wins, otherwise
// the first bare size token found; when neither matches the result defaults
// to DefaultSize. The function is total — any input, including empty or
// malformed text, yields one of the seven size tokens.
func RecommendSize(analysis string) string {
	if m := structuredSizeRe.FindStringSubmatch(analysis); m != nil {
		return normalizeSize(m[1])
	}
	if m := bareSizeRe.FindStringSubmatch(analysis); m != nil {
		return normalizeSize(m[1])
	}
	return DefaultSize
}

func normalizeSize(token string) string {
	token = strings.ToUpper(strings.TrimSpace(token))
	if _, ok := sizeTokens[token]; ok {
		return token
	}
	return DefaultSize
}
