package secrets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "secret")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing secret file: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		src       func(t *testing.T) Source
		expect    string
		wantErr   bool
		notConfig bool
	}{
		{
			name:   "inline value",
			src:    func(*testing.T) Source { return Source{Value: "  redis://cache:6379/0 \n"} },
			expect: "redis://cache:6379/0",
		},
		{
			name: "file wins over value",
			src: func(t *testing.T) Source {
				return Source{Value: "inline", File: writeFile(t, "redis://:pw@cache:6379/1\n")}
			},
			expect: "redis://:pw@cache:6379/1",
		},
		{
			name:    "empty file",
			src:     func(t *testing.T) Source { return Source{Value: "inline", File: writeFile(t, " \n")} },
			wantErr: true,
		},
		{
			name:    "missing file",
			src:     func(t *testing.T) Source { return Source{File: filepath.Join(t.TempDir(), "nope")} },
			wantErr: true,
		},
		{
			name:      "nothing set",
			src:       func(*testing.T) Source { return Source{Name: "redis url"} },
			wantErr:   true,
			notConfig: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Load(tt.src(t))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				if errors.Is(err, ErrNotConfigured) != tt.notConfig {
					t.Fatalf("unexpected not-configured state for %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestOptional(t *testing.T) {
	got, err := Optional(Source{})
	if err != nil || got != "" {
		t.Fatalf("expected empty value without error, got %q, %v", got, err)
	}

	if _, err := Optional(Source{File: filepath.Join(t.TempDir(), "nope")}); err == nil {
		t.Fatalf("expected error for unreadable file")
	}
}
