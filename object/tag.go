package object

import (
	"errors"
)

var errNoTagObject = errors.New("object: tag has no object")

// A Tag is a named label for another Git object, usually a Commit.
type Tag struct {
	Object  ID        // ID of the tagged object
	Type    Type      // type of the tagged object
	Tag     string    // tag name
	Tagger  Signature // tagger name and date; zero for old tags
	Message string    // a tag message
}

// ParseTag parses the content of a tag object.
func ParseTag(content []byte) (*Tag, error) {
	fields, msg, err := parseHeaders(content)
	if err != nil {
		return nil, err
	}
	t := &Tag{Message: msg}
	hasObject := false
	for _, f := range fields {
		switch f.key {
		case "object":
			if t.Object, err = DecodeID(f.value); err != nil {
				return nil, err
			}
			hasObject = true
		case "type":
			if t.Type, err = ParseType(f.value); err != nil {
				return nil, err
			}
		case "tag":
			t.Tag = f.value
		case "tagger":
			if t.Tagger, err = ParseSignature(f.value); err != nil {
				return nil, err
			}
		}
	}
	if !hasObject {
		return nil, errNoTagObject
	}
	return t, nil
}
