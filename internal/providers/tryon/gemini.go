package tryon

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sydney-stones/rfwidjet-server/internal/domain"
	"github.com/sydney-stones/rfwidjet-server/internal/tryon"
)

// Options controls how the Gemini provider is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

// GeminiProvider implements the try-on generation capability against the
// Gemini generateContent REST surface. The shopper photo and the garment
// image travel as inline parts; the response is expected to contain one image
// part plus a free-text fit analysis.
type GeminiProvider struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewGeminiProvider constructs a provider with sane defaults. Callers may
// provide a nil HTTP client; a reusable one with a generation-sized timeout
// is created.
func NewGeminiProvider(opts Options) *GeminiProvider {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	model := opts.Model
	if model == "" {
		model = "gemini-2.5-flash-image"
	}

	return &GeminiProvider{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		model:      model,
		httpClient: client,
	}
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts,omitempty"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiCandidate struct {
	Content geminiContent `json:"content"`
}

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

// Generate composites the garment onto the shopper photo. Failures carry
// their originating HTTP status so the retry executor can distinguish
// throttling and outages from client errors.
func (p *GeminiProvider) Generate(ctx context.Context, customer, product []byte, opts domain.TryOnOptions) (tryon.GenerationOutput, error) {
	payload := geminiRequest{
		Contents: []geminiContent{{
			Role: "user",
			Parts: []geminiPart{
				{Text: buildInstruction(opts)},
				{InlineData: &geminiInlineData{MimeType: http.DetectContentType(customer), Data: base64.StdEncoding.EncodeToString(customer)}},
				{InlineData: &geminiInlineData{MimeType: http.DetectContentType(product), Data: base64.StdEncoding.EncodeToString(product)}},
			},
		}},
	}

	var response geminiResponse
	if err := p.invoke(ctx, fmt.Sprintf("/models/%s:generateContent", url.PathEscape(p.model)), payload, &response); err != nil {
		return tryon.GenerationOutput{}, err
	}

	var out tryon.GenerationOutput
	for _, candidate := range response.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && part.InlineData.Data != "" && len(out.ImageData) == 0 {
				data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
				if err != nil {
					continue
				}
				out.ImageData = data
			}
			if part.Text != "" {
				if out.Analysis != "" {
					out.Analysis += "\n"
				}
				out.Analysis += part.Text
			}
		}
	}
	if len(out.ImageData) == 0 {
		return tryon.GenerationOutput{}, domain.NewProviderError(0, errors.New("gemini: no image content returned"))
	}
	return out, nil
}

func (p *GeminiProvider) invoke(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if p.apiKey != "" {
		q := req.URL.Query()
		q.Set("key", p.apiKey)
		req.URL.RawQuery = q.Encode()
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return domain.NewProviderError(0, fmt.Errorf("invoke gemini: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr geminiErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
			return domain.NewProviderError(resp.StatusCode, fmt.Errorf("gemini: %s", apiErr.Error.Message))
		}
		data, _ := io.ReadAll(resp.Body)
		if len(data) > 0 {
			return domain.NewProviderError(resp.StatusCode, fmt.Errorf("gemini: %s", strings.TrimSpace(string(data))))
		}
		return domain.NewProviderError(resp.StatusCode, errors.New("gemini request failed"))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.NewProviderError(0, fmt.Errorf("decode gemini response: %w", err))
	}
	return nil
}

// buildInstruction renders the prompt sent alongside the two images. The
// analysis block is requested in a structured form so the orchestrator can
// parse recommended_size back out.
func buildInstruction(opts domain.TryOnOptions) string {
	var b strings.Builder
	b.WriteString("Composite the garment from the second image onto the person in the first image.\n")
	b.WriteString("Keep the person's pose, body shape and face unchanged.\n")

	switch opts.Style {
	case domain.StyleCasual:
		b.WriteString("Setting: casual everyday scene with natural lighting.\n")
	default:
		b.WriteString("Setting: neutral studio backdrop with soft even lighting.\n")
	}
	if opts.Quality == domain.QualityHD {
		b.WriteString("Render at the highest available detail.\n")
	}

	b.WriteString("After the image, reply with a short fit assessment ending in a line of the form recommended_size: <XXS|XS|S|M|L|XL|XXL>.")
	return b.String()
}
