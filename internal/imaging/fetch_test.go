package imaging

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sydney-stones/rfwidjet-server/internal/domain"
)

func TestResolveDataURI(t *testing.T) {
	r := NewResolver(nil, time.Second)

	payload := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x01, 0x02}
	ref := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(payload)

	got, err := r.Resolve(context.Background(), ref)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestResolveBareBase64(t *testing.T) {
	r := NewResolver(nil, time.Second)

	payload := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D}
	got, err := r.Resolve(context.Background(), base64.StdEncoding.EncodeToString(payload))
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestResolveUnpaddedBase64(t *testing.T) {
	r := NewResolver(nil, time.Second)

	payload := []byte{0x01, 0x02, 0x03, 0x04, 0x05}
	got, err := r.Resolve(context.Background(), base64.RawStdEncoding.EncodeToString(payload))
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestResolveInvalidReferences(t *testing.T) {
	r := NewResolver(nil, time.Second)

	tests := []struct {
		name string
		ref  string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"data uri without comma", "data:image/jpeg;base64"},
		{"not base64", "!!!not-base64!!!"},
		{"empty payload", "data:image/jpeg;base64,"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := r.Resolve(context.Background(), tc.ref)
			require.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestResolveHTTPFetch(t *testing.T) {
	payload := []byte{0xFF, 0xD8, 0xFF, 0xE0}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	r := NewResolver(srv.Client(), 0)
	got, err := r.Resolve(context.Background(), srv.URL+"/customer.jpg")
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestResolveHTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	r := NewResolver(srv.Client(), 0)
	_, err := r.Resolve(context.Background(), srv.URL+"/missing.jpg")
	require.ErrorIs(t, err, domain.ErrUpstreamFetch)
}

func TestResolveHTTPEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := NewResolver(srv.Client(), 0)
	_, err := r.Resolve(context.Background(), srv.URL+"/empty.jpg")
	require.ErrorIs(t, err, domain.ErrUpstreamFetch)
}

func TestResolveHTTPConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	r := NewResolver(nil, time.Second)
	_, err := r.Resolve(context.Background(), url+"/x.jpg")
	require.ErrorIs(t, err, domain.ErrUpstreamFetch)
}
