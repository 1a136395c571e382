package mem

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lxr/gitkv/repository"
)

func TestList(t *testing.T) {
	ctx := context.Background()
	s := New(2)
	for _, k := range []string{"a/c", "a/a", "b/a", "a/b", "a/d", "a"} {
		require.NoError(t, s.Set(ctx, k, "v"))
	}
	page, err := s.List(ctx, "a/", "")
	require.NoError(t, err)
	assert.Equal(t, repository.Page{Keys: []string{"a/a", "a/b"}, Cursor: "a/b"}, page)
	page, err = s.List(ctx, "a/", page.Cursor)
	require.NoError(t, err)
	assert.Equal(t, repository.Page{Keys: []string{"a/c", "a/d"}, Complete: true}, page)
}

func TestCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := New(0)
	_, err := s.List(ctx, "", "")
	assert.ErrorIs(t, err, context.Canceled)
	_, _, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.Set(ctx, "k", "v"), context.Canceled)
	assert.ErrorIs(t, s.Delete(ctx, "k"), context.Canceled)
}

func TestConcurrent(t *testing.T) {
	ctx := context.Background()
	s := New(7)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				key := fmt.Sprintf("o/r/refs/heads/%d-%d", i, j)
				assert.NoError(t, s.Set(ctx, key, "x"))
				_, err := repository.GetAll(ctx, s, "o/r/")
				assert.NoError(t, err)
			}
		}(i)
	}
	wg.Wait()
	kvs, err := repository.GetAll(ctx, s, "o/r/")
	require.NoError(t, err)
	assert.Len(t, kvs, 400)
}
