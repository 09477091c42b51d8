package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// Disk stores objects as files under a root directory.
type Disk struct {
	root string
}

// NewDisk creates root if needed and returns a store rooted there.
func NewDisk(root string) (*Disk, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Disk{root: root}, nil
}

// Put writes r to key. The file is written to a temp name first and renamed
// so readers never observe a partial upload.
func (d *Disk) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	if !ValidKey(key) {
		return ErrInvalidKey
	}
	tmp, err := os.CreateTemp(d.root, ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write upload: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(d.root, key)); err != nil {
		return fmt.Errorf("store upload: %w", err)
	}
	log.Debug().Str("key", key).Int64("size", n).Msg("stored upload on disk")
	return nil
}

// Open returns the object at key.
func (d *Disk) Open(_ context.Context, key string) (io.ReadCloser, Info, error) {
	if !ValidKey(key) {
		return nil, Info{}, ErrInvalidKey
	}
	f, err := os.Open(filepath.Join(d.root, key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, Info{}, ErrObjectNotFound
	}
	if err != nil {
		return nil, Info{}, fmt.Errorf("open upload: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, Info{}, fmt.Errorf("stat upload: %w", err)
	}
	ct, _ := ContentTypeFor(filepath.Ext(key))
	return f, Info{Size: st.Size(), ContentType: ct}, nil
}
