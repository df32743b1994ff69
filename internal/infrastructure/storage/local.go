// Package storage keeps uploaded statements on the local filesystem, addressed by content hash.
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrTooLarge is returned when an upload exceeds the configured size limit.
var ErrTooLarge = errors.New("upload exceeds size limit")

// StoredFile describes a saved upload.
type StoredFile struct {
	Locator     string
	ContentHash string
	Size        int64
}

// LocalStore writes uploads under a single directory as <sha256><ext>.
type LocalStore struct {
	dir     string
	maxSize int64
}

// NewLocalStore creates dir if needed. A maxSize <= 0 disables the limit.
func NewLocalStore(dir string, maxSize int64) (*LocalStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve storage dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &LocalStore{dir: abs, maxSize: maxSize}, nil
}

// Save streams r to disk while hashing it. Identical content maps to the same file, so a
// re-upload leaves the existing copy in place.
func (s *LocalStore) Save(ctx context.Context, filename string, r io.Reader) (*StoredFile, error) {
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	hasher := sha256.New()
	src := r
	if s.maxSize > 0 {
		src = io.LimitReader(r, s.maxSize+1)
	}

	size, err := io.Copy(io.MultiWriter(tmp, hasher), &ctxReader{ctx: ctx, r: src})
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, fmt.Errorf("write upload: %w", err)
	}
	if s.maxSize > 0 && size > s.maxSize {
		return nil, ErrTooLarge
	}

	hash := hex.EncodeToString(hasher.Sum(nil))
	locator := filepath.Join(s.dir, hash+extension(filename))

	if _, err := os.Stat(locator); err == nil {
		return &StoredFile{Locator: locator, ContentHash: hash, Size: size}, nil
	}
	if err := os.Rename(tmp.Name(), locator); err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	return &StoredFile{Locator: locator, ContentHash: hash, Size: size}, nil
}

// HashFile returns the hex sha256 of the file at path.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func extension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if ext == "" || len(ext) > 8 || strings.ContainsAny(ext, `/\`) {
		return ".pdf"
	}
	return ext
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
