package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sydney-stones/rfwidjet-server/internal/domain"
)

// TryOnService is the generation pipeline surface the handlers depend on.
type TryOnService interface {
	Generate(ctx context.Context, req domain.TryOnRequest) (*domain.TryOnResult, error)
}

// UsageReader answers quota questions for the usage endpoint.
type UsageReader interface {
	CheckQuota(ctx context.Context, merchantID string) (domain.QuotaStatus, error)
}

// App is the handler container wiring the widget API to the pipeline.
type App struct {
	Logger    zerolog.Logger
	TryOn     TryOnService
	Usage     UsageReader
	Merchants domain.MerchantRepository
}

func NewApp(logger zerolog.Logger, tryOn TryOnService, usage UsageReader, merchants domain.MerchantRepository) *App {
	return &App{Logger: logger, TryOn: tryOn, Usage: usage, Merchants: merchants}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, kind, message string) {
	a.json(w, code, map[string]string{"error": kind, "message": message})
}

// authenticate resolves the calling merchant from the X-API-Key header.
func (a *App) authenticate(r *http.Request) (*domain.Merchant, error) {
	key := strings.TrimSpace(r.Header.Get("X-API-Key"))
	if key == "" {
		return nil, domain.ErrNotFound
	}
	return a.Merchants.GetByAPIKey(r.Context(), key)
}
