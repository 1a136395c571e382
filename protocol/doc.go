// Package protocol implements the server side of the Git smart
// protocol as far as a read-only ref store allows: the info/refs
// advertisement, the protocol v2 ls-refs command and the unpacking of
// pushed packfiles.  See
// https://git-scm.com/docs/protocol-v2 and
// https://git-scm.com/docs/pack-protocol for details.
//
// The functions work on decoded pkt-line streams and return the
// response as a list of packets; framing them onto the wire is left to
// the caller.
package protocol

// BUG(lor): Pushed objects are unpacked and logged but never stored,
// and no ref is updated.  The receive-pack response carries no status
// report.

import "errors"

// Protocol error conditions.
var (
	// ErrLegacyProtocol is returned when the client asks to advertise
	// a service other than git-upload-pack or git-receive-pack, as
	// dumb-protocol clients do.
	ErrLegacyProtocol = errors.New("protocol: legacy protocol not allowed")
	// ErrUnsupportedCommand is returned when an upload-pack request
	// is not a well-formed ls-refs command.
	ErrUnsupportedCommand = errors.New("protocol: unsupported command")
	// ErrNoPack is returned when a receive-pack request that creates
	// or updates refs carries no packfile.
	ErrNoPack = errors.New("protocol: request has no packfile")
)

// An ArgumentError reports a command argument that is not understood.
type ArgumentError struct {
	Command string
	Arg     string
}

func (e *ArgumentError) Error() string {
	return "protocol: unknown argument to " + e.Command + ": " + e.Arg
}
