package protocol

import (
	"context"
	"strings"

	"github.com/lxr/gitkv/pktline"
	"github.com/lxr/gitkv/repository"
)

// An LsRefsRequest holds the arguments of a protocol v2 ls-refs
// command.  Peel and Symrefs are recorded but do not change the
// response: refs are listed with their stored IDs only.
type LsRefsRequest struct {
	Peel      bool
	Symrefs   bool
	RefPrefix []string
}

// ParseCommand parses the body of a protocol v2 upload-pack request.
// Only the ls-refs command is understood.  The body must consist of
// "command=ls-refs", a delim-pkt, the arguments and a final flush-pkt;
// anything else is ErrUnsupportedCommand.  Control packets among the
// arguments are skipped.
func ParseCommand(pkts []pktline.Packet) (*LsRefsRequest, error) {
	n := len(pkts)
	if n < 3 ||
		!pkts[0].IsLine("command=ls-refs") ||
		pkts[1].Kind != pktline.Delim ||
		pkts[n-1].Kind != pktline.Flush {
		return nil, ErrUnsupportedCommand
	}
	req := new(LsRefsRequest)
	for _, p := range pkts[2 : n-1] {
		if p.Kind != pktline.Text {
			continue
		}
		switch arg := p.Text; {
		case arg == "peel":
			req.Peel = true
		case arg == "symrefs":
			req.Symrefs = true
		case strings.HasPrefix(arg, "ref-prefix "):
			req.RefPrefix = append(req.RefPrefix, strings.TrimPrefix(arg, "ref-prefix "))
		default:
			return nil, &ArgumentError{"ls-refs", arg}
		}
	}
	return req, nil
}

// LsRefs answers req for repo.  Each ref-prefix is looked up in turn
// and every ref under it is listed as "<id> <refname>" in store order,
// so a ref matched by two prefixes is listed twice.  The response ends
// with a flush-pkt.
func LsRefs(ctx context.Context, s repository.Interface, repo repository.Repo, req *LsRefsRequest) ([]pktline.Packet, error) {
	var out packetBuffer
	for _, prefix := range req.RefPrefix {
		refs, err := repository.ListRefs(ctx, s, repo, prefix)
		if err != nil {
			return nil, err
		}
		for _, ref := range refs {
			fmtLprintf(&out, "%s %s", ref.ID, ref.Name)
		}
	}
	out.Flush()
	return out, nil
}
