// Package fs stores blobs as files under a root directory.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/capstonehub/capstone-hub/internal/blob"
)

// Store implements blob.Store on the local filesystem. Keys map to relative
// paths under the root.
type Store struct {
	root string
}

// New returns a filesystem store rooted at root, creating it if needed.
func New(root string) (*Store, error) {
	if root == "" {
		return nil, errors.New("blob root required")
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &Store{root: root}, nil
}

func (s *Store) Driver() blob.Driver { return blob.DriverFilesystem }

func sanitizeKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", errors.New("empty key")
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Clean(filepath.FromSlash(key)), nil
}

func (s *Store) Put(_ context.Context, key string, r io.Reader, _ string) (blob.Info, error) {
	rel, err := sanitizeKey(key)
	if err != nil {
		return blob.Info{}, err
	}
	path := filepath.Join(s.root, rel)
	if _, err := os.Stat(path); err == nil {
		return blob.Info{}, fmt.Errorf("%w: %s", blob.ErrExists, key)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return blob.Info{}, err
	}

	// Write to a temp file and rename so readers never see partial blobs.
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return blob.Info{}, err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	size, err := io.Copy(tmp, r)
	if err != nil {
		_ = tmp.Close()
		return blob.Info{}, err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return blob.Info{}, err
	}
	if err := tmp.Close(); err != nil {
		return blob.Info{}, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return blob.Info{}, err
	}

	st, err := os.Stat(path)
	if err != nil {
		return blob.Info{}, err
	}
	return blob.Info{Key: key, Size: size, ContentType: contentTypeFor(key), LastModified: st.ModTime().UTC()}, nil
}

func (s *Store) List(_ context.Context, prefix string) ([]blob.Info, error) {
	var infos []blob.Info
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".tmp-") {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		st, err := d.Info()
		if err != nil {
			return err
		}
		infos = append(infos, blob.Info{Key: key, Size: st.Size(), ContentType: contentTypeFor(key), LastModified: st.ModTime().UTC()})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	rel, err := sanitizeKey(key)
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(s.root, rel))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", blob.ErrNotFound, key)
	}
	return err
}

func contentTypeFor(key string) string {
	if strings.HasSuffix(key, ".zst") {
		return "application/zstd"
	}
	return mime.TypeByExtension(filepath.Ext(key))
}
