// Package storagetest provides an in-memory ObjectStore for tests.
package storagetest

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"
)

type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string

	FailPut    error
	FailDelete error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

func (s *MemoryStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if s.FailPut != nil {
		return s.FailPut
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if int64(len(data)) != size {
		return errors.New("size mismatch")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	s.types[key] = contentType
	return nil
}

func (s *MemoryStore) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; !ok {
		return "", errors.New("no such key")
	}
	return "https://signed.example.com/" + key + "?expires=" + expiry.String(), nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	if s.FailDelete != nil {
		return s.FailDelete
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	delete(s.types, key)
	return nil
}

func (s *MemoryStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *MemoryStore) ContentType(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.types[key]
}
