package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadFromFileTrimsAndWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("  file-token\n"), 0o600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	got, err := Load(Source{Name: "session token", Value: "inline-token", File: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "file-token" {
		t.Fatalf("expected the file value, got %q", got)
	}
}

func TestLoadInlineValue(t *testing.T) {
	got, err := Load(Source{Name: "session token", Value: " inline-token "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "inline-token" {
		t.Fatalf("expected trimmed inline value, got %q", got)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     Source
		contain string
	}{
		{
			name:    "nothing configured",
			src:     Source{Name: "session token"},
			contain: "session token is not configured",
		},
		{
			name:    "missing file",
			src:     Source{Name: "session token", File: "/nonexistent/token"},
			contain: "reading session token from file",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.src)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.contain) {
				t.Fatalf("expected error containing %q, got %q", tt.contain, err)
			}
		})
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("   \n"), 0o600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	_, err := Load(Source{Name: "session token", File: path})
	if err == nil || !strings.Contains(err.Error(), "is empty") {
		t.Fatalf("expected an empty-file error, got %v", err)
	}
}
