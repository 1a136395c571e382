package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lxr/gitkv/repository"
)

func newStore(t *testing.T, pageSize int) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return New(client, pageSize), mr
}

func TestGetSetDelete(t *testing.T) {
	ctx := context.Background()
	s, mr := newStore(t, 0)

	_, ok, err := s.Get(ctx, "a/b/refs/heads/main")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "a/b/refs/heads/main", "abc"))
	mr.CheckGet(t, "a/b/refs/heads/main", "abc")
	value, ok, err := s.Get(ctx, "a/b/refs/heads/main")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", value)

	require.NoError(t, s.Delete(ctx, "a/b/refs/heads/main"))
	assert.False(t, mr.Exists("a/b/refs/heads/main"))
	require.NoError(t, s.Delete(ctx, "a/b/refs/heads/main"))
}

func TestListRefs(t *testing.T) {
	ctx := context.Background()
	s, mr := newStore(t, 2)
	for _, key := range []string{
		"octo/hello/refs/heads/main",
		"octo/hello/refs/heads/dev",
		"octo/hello/refs/heads/feature/x",
		"octo/hello/refs/tags/v1",
		"octo/hello-world/refs/heads/main",
		"other/hello/refs/heads/main",
	} {
		require.NoError(t, mr.Set(key, "id-of-"+key))
	}

	repo := repository.Repo{Owner: "octo", Name: "hello"}
	refs, err := repository.ListRefs(ctx, s, repo, "refs/heads/")
	require.NoError(t, err)
	assert.ElementsMatch(t, []repository.Ref{
		{Name: "refs/heads/main", ID: "id-of-octo/hello/refs/heads/main"},
		{Name: "refs/heads/dev", ID: "id-of-octo/hello/refs/heads/dev"},
		{Name: "refs/heads/feature/x", ID: "id-of-octo/hello/refs/heads/feature/x"},
	}, refs)

	refs, err = repository.ListRefs(ctx, s, repo, "")
	require.NoError(t, err)
	assert.Len(t, refs, 4)
}

func TestListBadCursor(t *testing.T) {
	s, _ := newStore(t, 0)
	_, err := s.List(context.Background(), "x/", "not-a-number")
	assert.Error(t, err)
}

func TestEscapeGlob(t *testing.T) {
	assert.Equal(t, "octo/hello/", escapeGlob("octo/hello/"))
	assert.Equal(t, `a\*b\?c\[d\]e\\f`, escapeGlob(`a*b?c[d]e\f`))
}

func TestDial(t *testing.T) {
	mr := miniredis.RunT(t)
	s, err := Dial(context.Background(), mr.Addr(), "", 0, 10)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Set(context.Background(), "k", "v"))
	mr.CheckGet(t, "k", "v")

	mr.Close()
	_, err = Dial(context.Background(), mr.Addr(), "", 0, 10)
	assert.Error(t, err)
}
