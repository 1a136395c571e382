package object

import (
	"bytes"
	"errors"
	"strconv"
)

var errMalformedTree = errors.New("object: malformed tree entry")

// A TreeEntry is a single entry of a Tree object.
type TreeEntry struct {
	Mode   TreeMode
	Name   string
	Object ID
}

// A TreeMode is a six-digit octal number representing a tree entry's
// mode and permission bits.  It is identical in format to a Unix file
// mode, though Git supports only a fixed subset of possible values.
// A TreeMode's function is to encode the Git object and Unix file types
// of its associated object.
type TreeMode uint32

// The recognized modes for Git tree entries.  The encoded Git object
// and Unix file types are commented to the right.
const (
	ModeTree    TreeMode = 0040000 // tree, directory
	ModeBlob    TreeMode = 0100644 // blob, file
	ModeExec    TreeMode = 0100755 // blob, file
	ModeSymlink TreeMode = 0120000 // blob, file
	ModeGitlink TreeMode = 0160000 // commit, directory
)

// Type returns the Git object type encoded by the mode.  It returns
// TypeUnknown if the mode does not have an associated type.
func (m TreeMode) Type() Type {
	switch m {
	case ModeTree:
		return TypeTree
	case ModeBlob, ModeExec, ModeSymlink:
		return TypeBlob
	case ModeGitlink:
		return TypeCommit
	default:
		return TypeUnknown
	}
}

// ParseTree parses the content of a tree object into its entries, in
// the order they are stored.  Each entry is "<octal mode> <name>\x00"
// followed by the 20 raw bytes of the entry's ID.
func ParseTree(content []byte) ([]TreeEntry, error) {
	var entries []TreeEntry
	for len(content) > 0 {
		sp := bytes.IndexByte(content, ' ')
		nul := bytes.IndexByte(content, 0)
		if sp < 0 || nul < sp || len(content) < nul+1+len(ID{}) {
			return nil, errMalformedTree
		}
		mode, err := strconv.ParseUint(string(content[:sp]), 8, 32)
		if err != nil {
			return nil, errMalformedTree
		}
		e := TreeEntry{
			Mode: TreeMode(mode),
			Name: string(content[sp+1 : nul]),
		}
		content = content[nul+1:]
		content = content[copy(e.Object[:], content):]
		entries = append(entries, e)
	}
	return entries, nil
}
