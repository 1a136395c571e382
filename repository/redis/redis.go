// Package redis implements a ref store on a Redis server.  Each key of
// the store is a plain Redis string key; listings use SCAN, so their
// order is unspecified and a key may be returned more than once.
package redis

import (
	"context"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/lxr/gitkv/repository"
)

// DefaultPageSize is the SCAN COUNT hint used when New is given zero.
const DefaultPageSize = 1000

// Store is a ref store backed by a Redis client.
type Store struct {
	client   redis.UniversalClient
	pageSize int64
}

var _ repository.ReadWriter = (*Store)(nil)

// New returns a store that uses client.  pageSize is passed to SCAN as
// its COUNT hint.
func New(client redis.UniversalClient, pageSize int) *Store {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Store{client: client, pageSize: int64(pageSize)}
}

// Dial connects to the Redis server at addr, selects database db and
// checks that the server answers.
func Dial(ctx context.Context, addr, password string, db, pageSize int) (*Store, error) {
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    []string{addr},
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return New(client, pageSize), nil
}

// List returns keys matching prefix.  The cursor is the decimal SCAN
// cursor; Redis signals the end of the iteration with cursor 0.
func (s *Store) List(ctx context.Context, prefix, cursor string) (repository.Page, error) {
	var c uint64
	if cursor != "" {
		var err error
		if c, err = strconv.ParseUint(cursor, 10, 64); err != nil {
			return repository.Page{}, err
		}
	}
	keys, next, err := s.client.Scan(ctx, c, escapeGlob(prefix)+"*", s.pageSize).Result()
	if err != nil {
		return repository.Page{}, err
	}
	return repository.Page{
		Keys:     keys,
		Cursor:   strconv.FormatUint(next, 10),
		Complete: next == 0,
	}, nil
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, key).Result()
	switch {
	case err == redis.Nil:
		return "", false, nil
	case err != nil:
		return "", false, err
	}
	return value, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, key, value, 0).Err()
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

// escapeGlob quotes the characters that SCAN MATCH would otherwise
// treat as pattern syntax.
func escapeGlob(s string) string {
	if !strings.ContainsAny(s, `*?[]\`) {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
