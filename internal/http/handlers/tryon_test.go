package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/sydney-stones/rfwidjet-server/internal/adapter/repo"
	"github.com/sydney-stones/rfwidjet-server/internal/domain"
)

const testAPIKey = "wk_test_123"

type stubTryOn struct {
	lastReq domain.TryOnRequest
	result  *domain.TryOnResult
	err     error
}

func (s *stubTryOn) Generate(_ context.Context, req domain.TryOnRequest) (*domain.TryOnResult, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubUsage struct {
	status domain.QuotaStatus
	err    error
}

func (s *stubUsage) CheckQuota(context.Context, string) (domain.QuotaStatus, error) {
	return s.status, s.err
}

func newTestApp(tryOn *stubTryOn, usage *stubUsage) *App {
	merchants := repo.NewMemoryMerchantStore(domain.Merchant{
		ID:     "m-1",
		Name:   "Test Boutique",
		APIKey: testAPIKey,
		Plan:   domain.PlanStarter,
	})
	return NewApp(zerolog.Nop(), tryOn, usage, merchants)
}

func postTryOn(t *testing.T, app *App, apiKey, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/v1/tryon", strings.NewReader(body))
	if apiKey != "" {
		r.Header.Set("X-API-Key", apiKey)
	}
	w := httptest.NewRecorder()
	app.TryOnGenerate(w, r)
	return w
}

func TestTryOnGenerate(t *testing.T) {
	tryOn := &stubTryOn{result: &domain.TryOnResult{
		ImageRef:         "https://img.example.com/tryon/abc.jpg",
		RecommendedSize:  "L",
		Analysis:         "Fits true to size.",
		ProcessingTimeMS: 3100,
		EstimatedCost:    0.05,
	}}
	app := newTestApp(tryOn, &stubUsage{})

	w := postTryOn(t, app, testAPIKey, `{
		"customer_image": "data:image/jpeg;base64,AAA",
		"product_image": "https://shop.example.com/p.jpg",
		"quality": "hd",
		"style": "casual"
	}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp tryOnResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "https://img.example.com/tryon/abc.jpg", resp.ImageRef)
	require.Equal(t, "L", resp.RecommendedSize)
	require.Equal(t, int64(3100), resp.ProcessingTimeMS)
	require.False(t, resp.ServedFromCache)
	require.Equal(t, "en", resp.Locale)

	// The merchant comes from the API key, never from the payload.
	require.Equal(t, "m-1", tryOn.lastReq.MerchantID)
	require.Equal(t, domain.Quality("hd"), tryOn.lastReq.Options.Quality)
	require.Equal(t, domain.Style("casual"), tryOn.lastReq.Options.Style)
	require.True(t, tryOn.lastReq.Options.SaveToCache)
}

func TestTryOnGenerateSkipCacheFlag(t *testing.T) {
	tryOn := &stubTryOn{result: &domain.TryOnResult{ImageRef: "ref"}}
	app := newTestApp(tryOn, &stubUsage{})

	w := postTryOn(t, app, testAPIKey, `{"customer_image": "a", "product_image": "b", "skip_cache": true}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.False(t, tryOn.lastReq.Options.SaveToCache)
}

func TestTryOnGenerateUnauthorized(t *testing.T) {
	app := newTestApp(&stubTryOn{}, &stubUsage{})

	for _, key := range []string{"", "wk_wrong"} {
		w := postTryOn(t, app, key, `{}`)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	}
}

func TestTryOnGenerateBadPayload(t *testing.T) {
	app := newTestApp(&stubTryOn{}, &stubUsage{})
	w := postTryOn(t, app, testAPIKey, `{not json`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTryOnGenerateQuotaExceeded(t *testing.T) {
	app := newTestApp(&stubTryOn{err: &domain.QuotaError{MerchantID: "m-1", Used: 500, Limit: 500}}, &stubUsage{})

	w := postTryOn(t, app, testAPIKey, `{"customer_image": "a", "product_image": "b"}`)
	require.Equal(t, http.StatusForbidden, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "quota_exceeded", resp["error"])
	require.Equal(t, float64(500), resp["used"])
	require.Equal(t, float64(500), resp["limit"])
	require.Equal(t, float64(0), resp["remaining"])
}

func TestTryOnGenerateErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"payload too large", fmt.Errorf("%w: 6MB", domain.ErrPayloadTooLarge), http.StatusRequestEntityTooLarge},
		{"unsupported format", fmt.Errorf("%w: gif", domain.ErrUnsupportedFormat), http.StatusUnsupportedMediaType},
		{"invalid input", fmt.Errorf("%w: empty ref", domain.ErrInvalidInput), http.StatusBadRequest},
		{"upstream fetch", fmt.Errorf("%w: 404", domain.ErrUpstreamFetch), http.StatusBadGateway},
		{"generation failed", fmt.Errorf("%w: provider down", domain.ErrGenerationFailed), http.StatusBadGateway},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(&stubTryOn{err: tc.err}, &stubUsage{})
			w := postTryOn(t, app, testAPIKey, `{"customer_image": "a", "product_image": "b"}`)
			require.Equal(t, tc.wantCode, w.Code)
		})
	}
}

func TestUsageStatus(t *testing.T) {
	app := newTestApp(&stubTryOn{}, &stubUsage{status: domain.QuotaStatus{
		Allowed:   true,
		Used:      120,
		Limit:     500,
		Remaining: 380,
	}})

	r := httptest.NewRequest(http.MethodGet, "/v1/usage", nil)
	r.Header.Set("X-API-Key", testAPIKey)
	w := httptest.NewRecorder()
	app.UsageStatus(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	var resp usageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "starter", resp.Plan)
	require.Equal(t, 120, resp.Used)
	require.Equal(t, 380, resp.Remaining)
	require.True(t, resp.Allowed)
}

func TestUsageStatusUnauthorized(t *testing.T) {
	app := newTestApp(&stubTryOn{}, &stubUsage{})

	r := httptest.NewRequest(http.MethodGet, "/v1/usage", nil)
	w := httptest.NewRecorder()
	app.UsageStatus(w, r)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealth(t *testing.T) {
	app := newTestApp(&stubTryOn{}, &stubUsage{})

	r := httptest.NewRequest(http.MethodGet, "/v1/healthz", nil)
	w := httptest.NewRecorder()
	app.Health(w, r)
	require.Equal(t, http.StatusOK, w.Code)
}
