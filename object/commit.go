package object

import (
	"errors"
)

var errNoTree = errors.New("object: commit has no tree")

// A Commit is a signed label for a Tree object, representing a snapshot
// of the repository state at a particular point in time.
type Commit struct {
	Tree      ID        // ID of the commit's root tree
	Parent    []ID      // the commit's parents
	Author    Signature // author name and date
	Committer Signature // committer name and date
	Message   string    // a commit message
}

// ParseCommit parses the content of a commit object.  Header fields
// other than tree, parent, author and committer are skipped.
func ParseCommit(content []byte) (*Commit, error) {
	fields, msg, err := parseHeaders(content)
	if err != nil {
		return nil, err
	}
	c := &Commit{Message: msg}
	hasTree := false
	for _, f := range fields {
		switch f.key {
		case "tree":
			if c.Tree, err = DecodeID(f.value); err != nil {
				return nil, err
			}
			hasTree = true
		case "parent":
			id, err := DecodeID(f.value)
			if err != nil {
				return nil, err
			}
			c.Parent = append(c.Parent, id)
		case "author":
			if c.Author, err = ParseSignature(f.value); err != nil {
				return nil, err
			}
		case "committer":
			if c.Committer, err = ParseSignature(f.value); err != nil {
				return nil, err
			}
		}
	}
	if !hasTree {
		return nil, errNoTree
	}
	return c, nil
}
