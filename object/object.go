// Package object implements the Git object naming scheme.
//
// A Git object is named by the SHA-1 digest of its framed form: the
// type name, a space, the decimal length of the content, a NUL byte and
// then the content itself.  The framed form, not the bare content, is
// what gets hashed.  The package additionally parses commits, tags and
// trees far enough to describe them in logs.
package object

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
)

var errBadIDLen = errors.New("object: invalid ID length")

// An ID is the name of a Git object.
type ID [sha1.Size]byte

// ZeroID (20 zero bytes) is used to designate a nonexistent object.
var ZeroID ID

// DecodeID parses a 40-character hexadecimal string as a Git ID.
func DecodeID(s string) (id ID, err error) {
	b, err := hex.DecodeString(s)
	switch {
	case err != nil:
		return id, err
	case len(b) != len(id):
		return id, errBadIDLen
	}
	copy(id[:], b)
	return id, err
}

// String returns the ID as a lowercase 40-digit hexadecimal string.
func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

// IsZero reports whether id is ZeroID.
func (id ID) IsZero() bool {
	return id == ZeroID
}

// Scan is a support routine for fmt.Scanner.  The format verb is
// ignored; Scan always attempts to read 40 hexadecimal digits from
// the input.
func (id *ID) Scan(ss fmt.ScanState, verb rune) error {
	var p []byte
	if _, err := fmt.Fscanf(ss, "%40x", &p); err != nil {
		return err
	}
	if copy((*id)[:], p) != len(*id) {
		return errBadIDLen
	}
	return nil
}

// Frame returns the framed form of content: "<type> <len>\x00" followed
// by content, where len is the decimal length of content.
func Frame(t Type, content []byte) []byte {
	hdr := t.String() + " " + strconv.Itoa(len(content)) + "\x00"
	buf := make([]byte, 0, len(hdr)+len(content))
	buf = append(buf, hdr...)
	return append(buf, content...)
}

// HashFramed returns the ID of an object given its framed form.  The
// bytes are hashed exactly as given.
func HashFramed(encoded []byte) ID {
	return ID(sha1.Sum(encoded))
}

// Hash returns the ID of an object of type t with the given content.
func Hash(t Type, content []byte) ID {
	return HashFramed(Frame(t, content))
}

// An Object is a Git object in its framed form together with its name.
// Invariant: ID == HashFramed(Encoded).
type Object struct {
	ID      ID
	Type    Type
	Encoded []byte
}

// New frames content as an object of type t and names it.
func New(t Type, content []byte) *Object {
	encoded := Frame(t, content)
	return &Object{
		ID:      HashFramed(encoded),
		Type:    t,
		Encoded: encoded,
	}
}

// Content returns the object's content without the frame header.
func (o *Object) Content() []byte {
	return o.Encoded[bytes.IndexByte(o.Encoded, 0)+1:]
}

// Size returns the length of the object's content.
func (o *Object) Size() int {
	return len(o.Content())
}
