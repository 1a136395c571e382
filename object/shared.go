// Functionality shared between Commit and Tag objects.

package object

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var errMalformedHeader = errors.New("object: malformed header line")

// A field is a single header line of a commit or tag object.
type field struct {
	key   string
	value string
}

// parseHeaders splits the text of a commit or tag object into its
// header fields and message.  Lines starting with a space continue the
// value of the previous field, as in multi-line gpgsig headers.  The
// message is everything after the first blank line.
func parseHeaders(data []byte) ([]field, string, error) {
	var fields []field
	text := string(data)
	for text != "" {
		var line string
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			line, text = text[:i], text[i+1:]
		} else {
			line, text = text, ""
		}
		switch {
		case line == "":
			return fields, text, nil
		case line[0] == ' ' && len(fields) > 0:
			fields[len(fields)-1].value += "\n" + line[1:]
			continue
		}
		key, value, ok := strings.Cut(line, " ")
		if !ok {
			return nil, "", fmt.Errorf("%w: %q", errMalformedHeader, line)
		}
		fields = append(fields, field{key, value})
	}
	return fields, "", nil
}

// A Signature tells the author and date of a Git commit or tag.
type Signature struct {
	Name  string
	Email string
	Date  time.Time
}

// String returns the Signature in the format "Name <Email> Date",
// where Date is formatted as the Unix time followed by a space and
// a four-digits-plus-sign timezone offset.
func (s Signature) String() string {
	return fmt.Sprintf("%s <%s> %d %s",
		s.Name,
		s.Email,
		s.Date.Unix(),
		s.Date.Format("-0700"),
	)
}

// ParseSignature parses a signature in the format returned by String.
func ParseSignature(s string) (Signature, error) {
	var sig Signature
	lt := strings.IndexByte(s, '<')
	gt := strings.LastIndexByte(s, '>')
	if lt < 0 || gt < lt {
		return sig, fmt.Errorf("object: malformed signature %q", s)
	}
	sig.Name = strings.TrimSpace(s[:lt])
	sig.Email = s[lt+1 : gt]

	date := strings.Fields(s[gt+1:])
	if len(date) != 2 {
		return sig, fmt.Errorf("object: malformed signature date %q", s[gt+1:])
	}
	unix, err := strconv.ParseInt(date[0], 10, 64)
	if err != nil {
		return sig, fmt.Errorf("object: malformed signature time: %w", err)
	}
	zone, err := time.Parse("-0700", date[1])
	if err != nil {
		return sig, fmt.Errorf("object: malformed signature zone: %w", err)
	}
	_, offset := zone.Zone()
	sig.Date = time.Unix(unix, 0).In(time.FixedZone("", offset))
	return sig, nil
}

// firstLine returns the first line of s.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
