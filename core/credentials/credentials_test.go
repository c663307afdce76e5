package credentials

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadReadsAccessToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	if err := os.WriteFile(path, []byte(`{"accessToken":"tok-123","other":true}`), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	creds, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if creds.AccessToken != "tok-123" {
		t.Fatalf("expected tok-123, got %q", creds.AccessToken)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestParseRequiresAccessToken(t *testing.T) {
	for _, doc := range []string{`{}`, `{"accessToken":"  "}`} {
		if _, err := Parse([]byte(doc)); !errors.Is(err, ErrMissingAccessToken) {
			t.Fatalf("expected ErrMissingAccessToken for %s, got %v", doc, err)
		}
	}
	if _, err := Parse([]byte(`not json`)); err == nil || errors.Is(err, ErrMissingAccessToken) {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestFromValueAcceptsObjectAndString(t *testing.T) {
	tests := map[string]string{
		"object": `{"accessToken":"abc"}`,
		"string": `"{\"accessToken\":\"abc\"}"`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			creds, err := FromValue([]byte(raw))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if creds.AccessToken != "abc" {
				t.Fatalf("expected abc, got %q", creds.AccessToken)
			}
		})
	}
}
