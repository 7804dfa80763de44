package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sydney-stones/rfwidjet-server/internal/domain"
	"github.com/sydney-stones/rfwidjet-server/internal/middleware"
)

type tryOnRequest struct {
	CustomerImage string `json:"customer_image"`
	ProductImage  string `json:"product_image"`
	Quality       string `json:"quality"`
	Style         string `json:"style"`
	SkipCache     bool   `json:"skip_cache"`
}

type tryOnResponse struct {
	ImageRef         string  `json:"image_ref"`
	RecommendedSize  string  `json:"recommended_size"`
	Analysis         string  `json:"analysis,omitempty"`
	ProcessingTimeMS int64   `json:"processing_time_ms"`
	EstimatedCost    float64 `json:"estimated_cost"`
	ServedFromCache  bool    `json:"served_from_cache"`
	Locale           string  `json:"locale"`
}

// TryOnGenerate runs one try-on generation for the authenticated merchant.
func (a *App) TryOnGenerate(w http.ResponseWriter, r *http.Request) {
	merchant, err := a.authenticate(r)
	if err != nil {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing or unknown API key")
		return
	}

	var req tryOnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	result, err := a.TryOn.Generate(r.Context(), domain.TryOnRequest{
		MerchantID:    merchant.ID,
		CustomerImage: req.CustomerImage,
		ProductImage:  req.ProductImage,
		Options: domain.TryOnOptions{
			Quality:     domain.Quality(req.Quality),
			Style:       domain.Style(req.Style),
			SaveToCache: !req.SkipCache,
		},
	})
	if err != nil {
		a.writeGenerateError(w, r, merchant.ID, err)
		return
	}

	a.json(w, http.StatusOK, tryOnResponse{
		ImageRef:         result.ImageRef,
		RecommendedSize:  result.RecommendedSize,
		Analysis:         result.Analysis,
		ProcessingTimeMS: result.ProcessingTimeMS,
		EstimatedCost:    result.EstimatedCost,
		ServedFromCache:  result.ServedFromCache,
		Locale:           middleware.LocaleFromContext(r.Context()),
	})
}

// writeGenerateError maps pipeline failures onto HTTP statuses so the widget
// can choose between retrying, prompting an upgrade, or a generic failure.
func (a *App) writeGenerateError(w http.ResponseWriter, r *http.Request, merchantID string, err error) {
	var quotaErr *domain.QuotaError
	switch {
	case errors.As(err, &quotaErr):
		a.json(w, http.StatusForbidden, map[string]any{
			"error":     "quota_exceeded",
			"message":   "monthly generation quota exhausted",
			"used":      quotaErr.Used,
			"limit":     quotaErr.Limit,
			"remaining": quotaErr.Remaining(),
		})
	case errors.Is(err, domain.ErrPayloadTooLarge):
		a.error(w, http.StatusRequestEntityTooLarge, "payload_too_large", "image exceeds the size limit")
	case errors.Is(err, domain.ErrUnsupportedFormat):
		a.error(w, http.StatusUnsupportedMediaType, "unsupported_format", "image must be JPEG, PNG or WEBP")
	case errors.Is(err, domain.ErrInvalidInput):
		a.error(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, domain.ErrUpstreamFetch):
		a.error(w, http.StatusBadGateway, "upstream_fetch", "could not download a referenced image")
	case errors.Is(err, domain.ErrGenerationFailed):
		a.error(w, http.StatusBadGateway, "generation_failed", "try-on generation failed")
	default:
		a.Logger.Error().
			Err(err).
			Str("merchant_id", merchantID).
			Str("request_id", middleware.RequestIDFromContext(r.Context())).
			Msg("tryon: unhandled generation error")
		a.error(w, http.StatusInternalServerError, "internal", "unexpected error")
	}
}
