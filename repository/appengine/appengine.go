// Package appengine implements a ref store backed by the Google App
// Engine datastore and memcache.
//
// Every key of the store is the string ID of one datastore entity whose
// single unindexed property holds the value.  Reads go through memcache
// first; writes update both.  The contexts passed to the store's
// methods must carry an App Engine request, see appengine.WithContext.
package appengine

import (
	"context"

	"google.golang.org/appengine/datastore"
	"google.golang.org/appengine/memcache"

	"github.com/lxr/gitkv/repository"
)

// DefaultPageSize is the query limit used when New is given zero.
const DefaultPageSize = 1000

// maxRune is the largest code point; it sorts after every other
// character that may follow a key prefix.
const maxRune = "\U0010FFFF"

type entry struct {
	Value string `datastore:",noindex"`
}

// New returns a store whose entities are of kind prefix+"ref".  The
// prefix string is used to "namespace" entity kinds and memcache
// accesses by prepending it to kind names and memcache keys.
func New(prefix string, pageSize int) *Store {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Store{prefix: prefix, pageSize: pageSize}
}

// Store is a ref store in the App Engine datastore.
type Store struct {
	prefix   string
	pageSize int
}

var _ repository.ReadWriter = (*Store)(nil)

func (s *Store) kind() string {
	return s.prefix + "ref"
}

func (s *Store) key(ctx context.Context, name string) *datastore.Key {
	return datastore.NewKey(ctx, s.kind(), name, 0, nil)
}

func (s *Store) memkey(name string) string {
	return s.prefix + "ref:" + name
}

// List runs a keys-only query over the key range covered by prefix.
// The cursor is an encoded datastore cursor.
func (s *Store) List(ctx context.Context, prefix, cursor string) (repository.Page, error) {
	q := datastore.NewQuery(s.kind()).KeysOnly().Order("__key__").Limit(s.pageSize)
	if prefix != "" {
		q = q.Filter("__key__ >=", s.key(ctx, prefix)).
			Filter("__key__ <", s.key(ctx, prefix+maxRune))
	}
	if cursor != "" {
		c, err := datastore.DecodeCursor(cursor)
		if err != nil {
			return repository.Page{}, err
		}
		q = q.Start(c)
	}
	var page repository.Page
	it := q.Run(ctx)
	for {
		key, err := it.Next(nil)
		if err == datastore.Done {
			break
		}
		if err != nil {
			return repository.Page{}, err
		}
		page.Keys = append(page.Keys, key.StringID())
	}
	if len(page.Keys) < s.pageSize {
		page.Complete = true
		return page, nil
	}
	c, err := it.Cursor()
	if err != nil {
		return repository.Page{}, err
	}
	page.Cursor = c.String()
	return page, nil
}

func (s *Store) Get(ctx context.Context, name string) (string, bool, error) {
	var e entry
	mk := s.memkey(name)
	_, err := memcache.Gob.Get(ctx, mk, &e)
	switch err {
	case nil:
		return e.Value, true, nil
	case memcache.ErrCacheMiss:
	default:
		return "", false, err
	}
	switch err := datastore.Get(ctx, s.key(ctx, name), &e); err {
	case nil:
	case datastore.ErrNoSuchEntity:
		return "", false, nil
	default:
		return "", false, err
	}
	memcache.Gob.Set(ctx, &memcache.Item{Key: mk, Object: &e})
	return e.Value, true, nil
}

func (s *Store) Set(ctx context.Context, name, value string) error {
	e := &entry{value}
	if _, err := datastore.Put(ctx, s.key(ctx, name), e); err != nil {
		return err
	}
	memcache.Gob.Set(ctx, &memcache.Item{Key: s.memkey(name), Object: e})
	return nil
}

func (s *Store) Delete(ctx context.Context, name string) error {
	memcache.Delete(ctx, s.memkey(name))
	err := datastore.Delete(ctx, s.key(ctx, name))
	if err == datastore.ErrNoSuchEntity {
		return nil
	}
	return err
}
