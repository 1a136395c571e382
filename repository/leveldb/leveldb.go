// Package leveldb implements a ref store in a LevelDB database on local
// disk.  Keys are listed in byte order.
package leveldb

import (
	"context"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/lxr/gitkv/repository"
)

// DefaultPageSize is the page size used when New is given zero.
const DefaultPageSize = 1000

// Store is a ref store backed by a LevelDB database.
type Store struct {
	db       *leveldb.DB
	pageSize int
}

var _ repository.ReadWriter = (*Store)(nil)

// New returns a store that uses db.
func New(db *leveldb.DB, pageSize int) *Store {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Store{db: db, pageSize: pageSize}
}

// Open opens or creates the database at path.
func Open(path string, pageSize int) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return New(db, pageSize), nil
}

// List returns keys with the given prefix.  The cursor is the last key
// of the previous page.
func (s *Store) List(ctx context.Context, prefix, cursor string) (repository.Page, error) {
	if err := ctx.Err(); err != nil {
		return repository.Page{}, err
	}
	iter := s.db.NewIterator(util.BytesPrefix([]byte(prefix)), nil)
	defer iter.Release()

	ok := iter.First()
	if cursor != "" {
		ok = iter.Seek([]byte(cursor))
		if ok && string(iter.Key()) == cursor {
			ok = iter.Next()
		}
	}
	var page repository.Page
	for ; ok; ok = iter.Next() {
		if len(page.Keys) == s.pageSize {
			page.Cursor = page.Keys[len(page.Keys)-1]
			return page, iter.Error()
		}
		page.Keys = append(page.Keys, string(iter.Key()))
	}
	page.Complete = true
	return page, iter.Error()
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.db.Get([]byte(key), nil)
	switch {
	case err == leveldb.ErrNotFound:
		return "", false, nil
	case err != nil:
		return "", false, err
	}
	return string(value), true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	return s.db.Put([]byte(key), []byte(value), nil)
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.db.Delete([]byte(key), nil)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
