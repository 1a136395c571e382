package protocol

import (
	"strings"
)

// A Service is a Git service name as it appears in the service query
// parameter and in the request path.
type Service string

// The supported services.
const (
	UploadPack  Service = "git-upload-pack"
	ReceivePack Service = "git-receive-pack"
)

// ParseService returns the Service named by s, or ErrLegacyProtocol if
// s names no supported service.
func ParseService(s string) (Service, error) {
	switch svc := Service(s); svc {
	case UploadPack, ReceivePack:
		return svc, nil
	default:
		return "", ErrLegacyProtocol
	}
}

// A CapList represents an ordered list of Git protocol capabilities.
type CapList []string

// UploadPackCapabilities is the protocol v2 capability advertisement of
// git-upload-pack.  fetch is advertised but not served.
var UploadPackCapabilities = CapList{"ls-refs", "fetch"}

// ReceivePackCapabilities is the capability list appended to the first
// ref of the git-receive-pack advertisement.  It is empty: the server
// reports no status and accepts no options.
var ReceivePackCapabilities = CapList{}

// String returns the capabilities in c joined by spaces.
func (c CapList) String() string {
	return strings.Join(c, " ")
}

// Has reports whether c contains the capability cp.  A capability with
// a value, such as "agent=git/2.43.0", matches its bare name.
func (c CapList) Has(cp string) bool {
	for _, x := range c {
		if x == cp || strings.HasPrefix(x, cp+"=") {
			return true
		}
	}
	return false
}

// ParseCapList parses a whitespace-separated list of capabilities.
func ParseCapList(s string) CapList {
	return CapList(strings.Fields(s))
}
