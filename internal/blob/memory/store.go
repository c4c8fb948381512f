// Package memory implements an in-memory blob store for tests and
// ephemeral deployments.
package memory

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/capstonehub/capstone-hub/internal/blob"
)

type entry struct {
	info blob.Info
	data []byte
}

// Store implements blob.Store backed by process memory.
type Store struct {
	mu   sync.RWMutex
	objs map[string]entry
}

// New returns an empty in-memory store.
func New() *Store { return &Store{objs: make(map[string]entry)} }

func (s *Store) Driver() blob.Driver { return blob.DriverMemory }

func (s *Store) Put(_ context.Context, key string, r io.Reader, contentType string) (blob.Info, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return blob.Info{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.objs[key]; exists {
		return blob.Info{}, fmt.Errorf("%w: %s", blob.ErrExists, key)
	}
	info := blob.Info{Key: key, Size: int64(len(b)), ContentType: contentType, LastModified: time.Now().UTC()}
	s.objs[key] = entry{info: info, data: b}
	return info, nil
}

func (s *Store) List(_ context.Context, prefix string) ([]blob.Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]blob.Info, 0, len(s.objs))
	for k, e := range s.objs {
		if strings.HasPrefix(k, prefix) {
			infos = append(infos, e.info)
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objs[key]; !ok {
		return fmt.Errorf("%w: %s", blob.ErrNotFound, key)
	}
	delete(s.objs, key)
	return nil
}

// Bytes returns a copy of the stored object.
func (s *Store) Bytes(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.objs[key]
	if !ok {
		return nil, false
	}
	out := make([]byte, len(e.data))
	copy(out, e.data)
	return out, true
}
