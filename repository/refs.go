package repository

import (
	"context"
	"strings"

	"github.com/lxr/gitkv/object"
)

// A Repo names one repository in the store.  All of its refs share the
// key prefix "<Owner>/<Name>/".
type Repo struct {
	Owner string
	Name  string
}

// ParseRepo validates owner and name and returns the Repo they name.
// Neither may be empty, contain a slash or be a dot path component, as
// any of these would let the key prefix reach outside the repository.
func ParseRepo(owner, name string) (Repo, error) {
	for _, s := range []string{owner, name} {
		if s == "" || s == "." || s == ".." || strings.ContainsAny(s, "/\x00") {
			return Repo{}, ErrInvalidRepo
		}
	}
	return Repo{owner, name}, nil
}

// Prefix returns the key prefix of the repository's refs.
func (r Repo) Prefix() string {
	return r.Owner + "/" + r.Name + "/"
}

// Key returns the store key of the named ref.
func (r Repo) Key(ref string) string {
	return r.Prefix() + ref
}

func (r Repo) String() string {
	return r.Owner + "/" + r.Name
}

// A Ref is a named pointer to an object.  Name is the full refname
// ("refs/heads/main") and ID the hex object ID exactly as stored.
type Ref struct {
	Name string
	ID   string
}

// ListRefs returns the refs of repo whose names start with refPrefix,
// in store listing order.
func ListRefs(ctx context.Context, s Interface, repo Repo, refPrefix string) ([]Ref, error) {
	kvs, err := GetAll(ctx, s, repo.Key(refPrefix))
	if err != nil {
		return nil, err
	}
	prefix := repo.Prefix()
	refs := make([]Ref, len(kvs))
	for i, kv := range kvs {
		refs[i] = Ref{strings.TrimPrefix(kv.Key, prefix), kv.Value}
	}
	return refs, nil
}

// ListBranches returns the refs of repo under refs/heads/.
func ListBranches(ctx context.Context, s Interface, repo Repo) ([]Ref, error) {
	return ListRefs(ctx, s, repo, "refs/heads/")
}

// GetRef returns the object ID the named ref points to, or ErrNotExist
// if there is no such ref.
func GetRef(ctx context.Context, s Interface, repo Repo, name string) (string, error) {
	if !IsValidRef(name) {
		return "", ErrInvalidRef
	}
	id, ok, err := s.Get(ctx, repo.Key(name))
	switch {
	case err != nil:
		return "", err
	case !ok || id == "":
		return "", ErrNotExist
	}
	return id, nil
}

// SetRef points the named ref at id.  Setting a ref to the zero ID
// deletes it.  No compare-and-swap is attempted; the store offers no
// atomicity to build one on.
func SetRef(ctx context.Context, w Writer, repo Repo, name string, id object.ID) error {
	if !IsValidRef(name) {
		return ErrInvalidRef
	}
	if id.IsZero() {
		return w.Delete(ctx, repo.Key(name))
	}
	return w.Set(ctx, repo.Key(name), id.String())
}

// IsValidRef returns true if the argument refname is valid according
// to the git-check-ref-format(1) rules.  Store writers should use this
// to check that refnames are well-formed before storing them.
func IsValidRef(name string) bool {
	return strings.HasPrefix(name, "refs/") &&
		!strings.Contains(name, "/.") &&
		!strings.Contains(name, "..") &&
		strings.IndexFunc(name, func(r rune) bool {
			return r < 0x20 ||
				r == 0x7F ||
				r == ' ' ||
				r == '~' ||
				r == '^' ||
				r == ':' ||
				r == '?' ||
				r == '*' ||
				r == '['
		}) == -1 &&
		!strings.HasSuffix(name, "/") &&
		!strings.Contains(name, "//") &&
		!strings.HasSuffix(name, ".") &&
		!strings.HasSuffix(name, ".lock") &&
		!strings.Contains(name, "@{") &&
		!strings.Contains(name, `\`)
}
