package slot

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// File keeps one file per key under Dir. Writes go through a temp file and a
// rename so a reader never sees a half-written cart.
type File struct {
	Dir string
}

func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("slot dir: %w", err)
	}
	return &File{Dir: dir}, nil
}

func (s *File) path(key string) string {
	return filepath.Join(s.Dir, base64.RawURLEncoding.EncodeToString([]byte(key))+".json")
}

func (s *File) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrEmpty
	}
	return b, err
}

func (s *File) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.Dir, ".slot-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path(key))
}

func (s *File) Ping(context.Context) error {
	_, err := os.Stat(s.Dir)
	return err
}
