package executor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

func writeCookieFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write cookie file: %v", err)
	}
	return path
}

func TestYTDLP_Validate(t *testing.T) {
	e := NewYTDLP(t.TempDir(), "%(title)s.%(ext)s", 30*24*time.Hour, zap.NewNop())
	ctx := context.Background()

	good := writeCookieFile(t, "good.txt",
		"# Netscape HTTP Cookie File\n.youtube.com\tTRUE\t/\tTRUE\t0\tSID\tabc\n")
	if !e.Validate(ctx, good) {
		t.Error("Expected fresh youtube cookie file to validate")
	}

	if e.Validate(ctx, filepath.Join(t.TempDir(), "missing.txt")) {
		t.Error("Expected missing cookie file to fail validation")
	}

	empty := writeCookieFile(t, "empty.txt", "")
	if e.Validate(ctx, empty) {
		t.Error("Expected empty cookie file to fail validation")
	}

	wrongSite := writeCookieFile(t, "other.txt",
		"# Netscape HTTP Cookie File\n.example.com\tTRUE\t/\tTRUE\t0\tSID\tabc\n")
	if e.Validate(ctx, wrongSite) {
		t.Error("Expected cookie file without youtube.com entries to fail validation")
	}
}

func TestYTDLP_ValidateStaleCookies(t *testing.T) {
	e := NewYTDLP(t.TempDir(), "%(title)s.%(ext)s", 24*time.Hour, zap.NewNop())

	stale := writeCookieFile(t, "stale.txt",
		"# Netscape HTTP Cookie File\n.youtube.com\tTRUE\t/\tTRUE\t0\tSID\tabc\n")
	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatalf("set mtime: %v", err)
	}

	if e.Validate(context.Background(), stale) {
		t.Error("Expected cookie file older than the cutoff to fail validation")
	}
}

func TestYTDLP_ValidateNoAgeCutoff(t *testing.T) {
	// Zero max age disables staleness checking.
	e := NewYTDLP(t.TempDir(), "%(title)s.%(ext)s", 0, zap.NewNop())

	old := writeCookieFile(t, "old.txt",
		"# Netscape HTTP Cookie File\n.youtube.com\tTRUE\t/\tTRUE\t0\tSID\tabc\n")
	past := time.Now().Add(-365 * 24 * time.Hour)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatalf("set mtime: %v", err)
	}

	if !e.Validate(context.Background(), old) {
		t.Error("Expected old cookie file to validate when staleness checking is off")
	}
}
