package object

import (
	"fmt"
)

// Type enumerates the Git object types.  The values are the ones used
// in packfile object headers.
type Type byte

const (
	TypeUnknown Type = iota

	TypeCommit
	TypeTree
	TypeBlob
	TypeTag

	TypeReserved

	// Delta types occur only inside packfiles.
	TypeOffsetDelta
	TypeRefDelta
)

// A TypeError is used to report an invalid or unknown Git object type.
// Methods returning a TypeError specify the concrete type of the value
// it holds.
type TypeError struct {
	Value interface{}
}

func (e *TypeError) Error() string {
	if t, ok := e.Value.(Type); ok {
		return fmt.Sprintf("bad Git type code: %#x", byte(t))
	}
	return fmt.Sprintf("bad Git object type: %v", e.Value)
}

// Valid reports whether t is one of the four standard object types.
func (t Type) Valid() bool {
	return t >= TypeCommit && t <= TypeTag
}

// IsDelta reports whether t is one of the packfile delta types.
func (t Type) IsDelta() bool {
	return t == TypeOffsetDelta || t == TypeRefDelta
}

// String returns "commit", "tree", "blob" or "tag" depending on the
// value of the type, and "ofs-delta" or "ref-delta" for the delta
// types.  It returns an empty string for any other value.
func (t Type) String() string {
	switch t {
	case TypeCommit:
		return "commit"
	case TypeTree:
		return "tree"
	case TypeBlob:
		return "blob"
	case TypeTag:
		return "tag"
	case TypeOffsetDelta:
		return "ofs-delta"
	case TypeRefDelta:
		return "ref-delta"
	default:
		return ""
	}
}

// ParseType interprets s as one of the standard type names.  It
// returns a TypeError containing s if the name is not recognized.
func ParseType(s string) (Type, error) {
	switch s {
	case "commit":
		return TypeCommit, nil
	case "tree":
		return TypeTree, nil
	case "blob":
		return TypeBlob, nil
	case "tag":
		return TypeTag, nil
	default:
		return TypeUnknown, &TypeError{s}
	}
}
