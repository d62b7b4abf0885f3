package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrAvatarTooLarge is returned when an upload exceeds the store's limit.
var ErrAvatarTooLarge = errors.New("avatar too large")

// AvatarStore persists avatar images and returns their public URL.
type AvatarStore interface {
	Put(ctx context.Context, name string, r io.Reader) (string, error)
}

// FileAvatarStore writes avatars under Dir and serves them from BaseURL.
type FileAvatarStore struct {
	Dir      string
	BaseURL  string
	MaxBytes int64
}

// Put writes r to Dir/name. Files larger than MaxBytes are rejected and
// removed.
func (f *FileAvatarStore) Put(ctx context.Context, name string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid avatar name %q", name)
	}
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return "", fmt.Errorf("avatar dir: %w", err)
	}
	dst := filepath.Join(f.Dir, name)
	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create avatar: %w", err)
	}
	src := r
	if f.MaxBytes > 0 {
		src = io.LimitReader(r, f.MaxBytes+1)
	}
	n, err := io.Copy(out, src)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err == nil && f.MaxBytes > 0 && n > f.MaxBytes {
		err = ErrAvatarTooLarge
	}
	if err != nil {
		_ = os.Remove(dst)
		return "", err
	}
	return path.Join(f.BaseURL, name), nil
}
