package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreWrite(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	key, err := store.Write(context.Background(), "tryon/abc123.jpg", []byte("payload"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if key != "tryon/abc123.jpg" {
		t.Fatalf("key = %q, want tryon/abc123.jpg", key)
	}

	data, err := os.ReadFile(filepath.Join(store.BasePath(), "tryon", "abc123.jpg"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("data = %q, want payload", data)
	}
}

func TestSanitizeKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		want    string
		wantErr bool
	}{
		{"plain", "tryon/a.jpg", "tryon/a.jpg", false},
		{"leading slash", "/tryon/a.jpg", "tryon/a.jpg", false},
		{"dot slash prefix", "./tryon/a.jpg", "tryon/a.jpg", false},
		{"internal dots collapse", "tryon/sub/../a.jpg", "tryon/a.jpg", false},
		{"traversal rejected", "../../etc/passwd", "", true},
		{"empty rejected", "", "", true},
		{"whitespace rejected", "   ", "", true},
		{"bare dot rejected", ".", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := sanitizeKey(tc.key)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("sanitizeKey(%q) = %q, want error", tc.key, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("sanitizeKey(%q): %v", tc.key, err)
			}
			if got != tc.want {
				t.Fatalf("sanitizeKey(%q) = %q, want %q", tc.key, got, tc.want)
			}
		})
	}
}

func TestFileStoreRejectsEscapingKeys(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if _, err := store.Write(context.Background(), "../outside.jpg", []byte("x")); err == nil {
		t.Fatal("expected error for escaping key")
	}
}

func TestNewFileStoreRequiresPath(t *testing.T) {
	if _, err := NewFileStore("  "); err == nil {
		t.Fatal("expected error for empty base path")
	}
}
