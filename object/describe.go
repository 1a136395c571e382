package object

import (
	"fmt"
	"strconv"
)

// Describe returns a one-line summary of o for logging.  Objects whose
// content cannot be parsed are still described, with the parse error
// in place of the details.
func Describe(o *Object) string {
	var detail string
	var err error
	switch o.Type {
	case TypeCommit:
		var c *Commit
		if c, err = ParseCommit(o.Content()); err == nil {
			detail = fmt.Sprintf("tree %s, %d parent(s), %s: %s",
				c.Tree, len(c.Parent), c.Author.Name, strconv.Quote(firstLine(c.Message)))
		}
	case TypeTag:
		var t *Tag
		if t, err = ParseTag(o.Content()); err == nil {
			detail = fmt.Sprintf("%s -> %s %s", t.Tag, t.Type, t.Object)
		}
	case TypeTree:
		var entries []TreeEntry
		if entries, err = ParseTree(o.Content()); err == nil {
			detail = fmt.Sprintf("%d entries", len(entries))
		}
	case TypeBlob:
		detail = fmt.Sprintf("%d bytes", o.Size())
	default:
		err = &TypeError{o.Type}
	}
	if err != nil {
		detail = "unparseable: " + err.Error()
	}
	return fmt.Sprintf("%s %s (%s)", o.Type, o.ID, detail)
}
