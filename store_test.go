package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"
)

// errBackend stands in for any storage-layer failure in tests.
var errBackend = errors.New("backend unavailable")

// fakeStore is an in-memory ObjectStore that records call counts and can
// be told to fail individual operations, so tests can observe the exact
// storage call pattern of each cache operation.
type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	order   []string // Insertion order; ListKeys reports it verbatim.

	readCalls      int
	writeCalls     int
	removeCalls    int
	removeAllCalls int
	listCalls      int

	lastRemoved []string // Keys passed to the most recent RemoveAll.

	failReads   bool
	failWrites  bool
	failRemoves bool
	failLists   bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

// seed stores objects directly, bypassing call counters.
func (s *fakeStore) seed(keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		if _, ok := s.objects[key]; !ok {
			s.order = append(s.order, key)
		}
		s.objects[key] = []byte(key)
	}
}

// seedBlob stores a raw object body directly, bypassing call counters.
func (s *fakeStore) seedBlob(key string, blob []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; !ok {
		s.order = append(s.order, key)
	}
	s.objects[key] = blob
}

func (s *fakeStore) Read(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readCalls++

	if s.failReads {
		return nil, errBackend
	}
	blob, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("read %q: %w", key, fs.ErrNotExist)
	}
	return blob, nil
}

func (s *fakeStore) Write(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeCalls++

	if s.failWrites {
		return errBackend
	}
	if _, ok := s.objects[key]; !ok {
		s.order = append(s.order, key)
	}
	s.objects[key] = append([]byte(nil), data...)
	return nil
}

func (s *fakeStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeCalls++

	if s.failRemoves {
		return errBackend
	}
	s.drop(key)
	return nil
}

func (s *fakeStore) RemoveAll(_ context.Context, keys []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeAllCalls++
	s.lastRemoved = append([]string(nil), keys...)

	if s.failRemoves {
		return errBackend
	}
	for _, key := range keys {
		s.drop(key)
	}
	return nil
}

func (s *fakeStore) ListKeys(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++

	if s.failLists {
		return nil, errBackend
	}
	return append([]string(nil), s.order...), nil
}

// drop removes key from both the object map and the listing order.
// Callers must hold the mutex.
func (s *fakeStore) drop(key string) {
	if _, ok := s.objects[key]; !ok {
		return
	}
	delete(s.objects, key)
	for i, existing := range s.order {
		if existing == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *fakeStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// Compile-time interface check.
var _ ObjectStore = (*fakeStore)(nil)
