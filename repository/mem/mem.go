// Package mem implements a main memory-backed ref store.  Listings are
// in lexicographic key order and paged like a remote store would page
// them, which makes it a faithful stand-in in tests.
package mem

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/lxr/gitkv/repository"
)

// DefaultPageSize is the page size used when New is given zero.
const DefaultPageSize = 1000

// Store is an in-memory key-value store.
type Store struct {
	lock     sync.RWMutex
	data     map[string]string
	pageSize int
}

// New returns an empty store that lists at most pageSize keys per page.
func New(pageSize int) *Store {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Store{
		data:     make(map[string]string),
		pageSize: pageSize,
	}
}

var _ repository.ReadWriter = (*Store)(nil)

// List returns keys with the given prefix.  The cursor is the last key
// of the previous page.
func (s *Store) List(ctx context.Context, prefix, cursor string) (repository.Page, error) {
	if err := ctx.Err(); err != nil {
		return repository.Page{}, err
	}
	s.lock.RLock()
	keys := make(sort.StringSlice, 0)
	for key := range s.data {
		if strings.HasPrefix(key, prefix) && key > cursor {
			keys = append(keys, key)
		}
	}
	s.lock.RUnlock()
	keys.Sort()
	if len(keys) <= s.pageSize {
		return repository.Page{Keys: keys, Complete: true}, nil
	}
	keys = keys[:s.pageSize]
	return repository.Page{Keys: keys, Cursor: keys[len(keys)-1]}, nil
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.lock.RLock()
	defer s.lock.RUnlock()
	value, ok := s.data[key]
	return value, ok, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.data[key] = value
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	delete(s.data, key)
	return nil
}

// Len returns the number of keys in the store.
func (s *Store) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.data)
}
