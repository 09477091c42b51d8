// Package storage keeps uploaded pet and sticker images. Two backends are
// provided: a local directory (default) and an S3-compatible MinIO bucket.
package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
)

var (
	// ErrObjectNotFound is returned when a key has no stored object.
	ErrObjectNotFound = errors.New("object not found")

	// ErrInvalidKey is returned for keys that are empty or contain path elements.
	ErrInvalidKey = errors.New("invalid object key")
)

// Info describes a stored object.
type Info struct {
	Size        int64
	ContentType string
}

// FileStore is the contract shared by all upload backends.
type FileStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, Info, error)
}

// ValidKey reports whether key is a flat object name.
func ValidKey(key string) bool {
	if key == "" || key == "." || key == ".." {
		return false
	}
	if strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return false
	}
	return filepath.Base(key) == key
}

// ContentTypeFor returns the image MIME type for an allowed extension.
func ContentTypeFor(ext string) (string, bool) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "jpg", "jpeg":
		return "image/jpeg", true
	case "png":
		return "image/png", true
	case "gif":
		return "image/gif", true
	}
	return "", false
}
