package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveIsContentAddressed(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	body := []byte("%PDF-1.4 statement")
	sum := sha256.Sum256(body)
	want := hex.EncodeToString(sum[:])

	first, err := store.Save(context.Background(), "Estado Enero.PDF", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if first.ContentHash != want {
		t.Fatalf("hash = %s, want %s", first.ContentHash, want)
	}
	if filepath.Base(first.Locator) != want+".pdf" {
		t.Fatalf("unexpected locator %s", first.Locator)
	}
	if first.Size != int64(len(body)) {
		t.Fatalf("size = %d, want %d", first.Size, len(body))
	}

	second, err := store.Save(context.Background(), "copy.pdf", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("save again: %v", err)
	}
	if second.Locator != first.Locator {
		t.Fatalf("expected same locator, got %s and %s", first.Locator, second.Locator)
	}

	onDisk, err := HashFile(first.Locator)
	if err != nil {
		t.Fatalf("hash file: %v", err)
	}
	if onDisk != want {
		t.Fatalf("stored content hash = %s, want %s", onDisk, want)
	}

	entries, err := os.ReadDir(filepath.Dir(first.Locator))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temp files to be cleaned up, found %d entries", len(entries))
	}
}

func TestSaveRejectsOversizedUpload(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), 4)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	_, err = store.Save(context.Background(), "big.pdf", strings.NewReader("0123456789"))
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestSaveHonoursCancellation(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.Save(ctx, "x.pdf", strings.NewReader("data")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestExtension(t *testing.T) {
	tests := map[string]string{
		"estado.PDF":        ".pdf",
		"scan.png":          ".png",
		"noext":             ".pdf",
		"weird.verylongext": ".pdf",
	}
	for in, want := range tests {
		if got := extension(in); got != want {
			t.Fatalf("extension(%q) = %q, want %q", in, got, want)
		}
	}
}
