// Package repository defines the key-value store that Git refs are
// kept in and a set of convenience functions for reading refs out of
// it.
//
// Refs live under keys of the form "<owner>/<repo>/<refname>", e.g.
// "octocat/hello/refs/heads/main", and their values are 40-digit
// hexadecimal object IDs stored as text.
package repository

import (
	"context"
	"errors"
)

// Repository error conditions.
var (
	ErrInvalidRef  = errors.New("repository: malformed refname")
	ErrInvalidRepo = errors.New("repository: malformed repository name")
	ErrNotExist    = errors.New("repository: key does not exist")
	ErrCursor      = errors.New("repository: incomplete listing without cursor")
)

// A Page is one batch of keys returned by Interface.List.  If Complete
// is false, Cursor is passed to the next List call to continue the
// listing.
type Page struct {
	Keys     []string
	Cursor   string
	Complete bool
}

// Interface defines the read side of the store.  The store is assumed
// to be eventually consistent and to offer no multi-key atomicity.
//
// Implementations must provide safe concurrent access to the
// underlying datastore.
type Interface interface {
	// List returns a page of keys starting with prefix.  The empty
	// cursor starts a new listing.  Keys are returned in the
	// store's own listing order; a key may be repeated across
	// pages if the store's listing is not snapshot-isolated.
	List(ctx context.Context, prefix, cursor string) (Page, error)

	// Get returns the value stored under key.  A missing key is
	// reported with ok == false and a nil error.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
}

// Writer defines the write side of the store.  Nothing in the Git
// protocol handlers writes; it exists for administration.
type Writer interface {
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key.  Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// ReadWriter groups Interface and Writer.
type ReadWriter interface {
	Interface
	Writer
}

// A KV is a single key-value pair read from the store.
type KV struct {
	Key   string
	Value string
}

// GetAll returns every key-value pair under prefix.  It lists one page
// at a time and fetches the values of that page one key after another
// before requesting the next page.  Keys that vanish between listing
// and fetching are skipped, as are keys with an empty value and keys
// listed more than once.
func GetAll(ctx context.Context, s Interface, prefix string) ([]KV, error) {
	var kvs []KV
	seen := make(map[string]bool)
	cursor := ""
	for {
		page, err := s.List(ctx, prefix, cursor)
		if err != nil {
			return nil, err
		}
		for _, key := range page.Keys {
			if seen[key] {
				continue
			}
			seen[key] = true
			value, ok, err := s.Get(ctx, key)
			if err != nil {
				return nil, err
			}
			if ok && value != "" {
				kvs = append(kvs, KV{key, value})
			}
		}
		if page.Complete {
			return kvs, nil
		}
		if page.Cursor == "" {
			return nil, ErrCursor
		}
		cursor = page.Cursor
	}
}
