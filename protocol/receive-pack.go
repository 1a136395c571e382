package protocol

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/lxr/gitkv/object"
	"github.com/lxr/gitkv/packfile"
	"github.com/lxr/gitkv/pktline"
)

// A refName is a string representing the name of a Git ref.  Its Scan
// method refuses to scan certain ill-formed refs, but not all.
type refName string

func (r *refName) Scan(ss fmt.ScanState, verb rune) error {
	tok, err := ss.Token(true, func(r rune) bool {
		return r >= 0x20 && !strings.ContainsRune(" *:?[^~", r)
	})
	if err != nil {
		return err
	}
	*r = refName(tok)
	return nil
}

// An UpdateCommand is one "<old> <new> <refname>" line of a push.
type UpdateCommand struct {
	Old  object.ID
	New  object.ID
	Name string
}

func (c UpdateCommand) String() string {
	return fmt.Sprintf("%s %s %s", c.Old, c.New, c.Name)
}

// IsDelete reports whether c deletes its ref.
func (c UpdateCommand) IsDelete() bool {
	return c.New.IsZero()
}

// A ReceiveResult is what was read from a push.
type ReceiveResult struct {
	Commands     []UpdateCommand
	Capabilities CapList
	Objects      map[object.ID]*object.Object
}

// BUG(lor): Git does not end update commands with a newline, so the
// pkt-line decoder strips the last character of every command line.
// The first line loses a character of its capability list; the others
// lose the last character of their ref name.

// ReceivePack reads a push request: ref update commands up to a
// flush-pkt, followed by a packfile.  The commands are parsed for
// logging only; a command that cannot be parsed is logged and skipped.
// The packfile is decoded in full and each of its objects logged at
// debug level.  A request that only deletes refs need not carry a
// packfile; any other request without one fails with ErrNoPack.
//
// Nothing is stored.  The response to the client is a lone flush-pkt,
// even if the client asked for a status report.
func ReceivePack(ctx context.Context, logger hclog.Logger, pkts []pktline.Packet) (*ReceiveResult, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	res := new(ReceiveResult)
	pktr := &packetReader{pkts: pkts}
	deleteCommandsOnly := true
	for {
		s, err := pktr.ReadLine()
		if err != nil {
			break
		}
		line, caps, hasCaps := strings.Cut(s, "\x00")
		if hasCaps && res.Capabilities == nil {
			res.Capabilities = ParseCapList(caps)
		}
		var cmd UpdateCommand
		var name refName
		if _, err := fmt.Sscanf(line, "%s %s %s", &cmd.Old, &cmd.New, &name); err != nil {
			logger.Warn("skipping malformed update command", "line", line, "error", err)
			continue
		}
		cmd.Name = string(name)
		res.Commands = append(res.Commands, cmd)
		if !cmd.IsDelete() {
			deleteCommandsOnly = false
		}
		logger.Debug("update command", "command", cmd.String())
	}

	for _, cp := range []string{"report-status", "report-status-v2"} {
		if res.Capabilities.Has(cp) {
			logger.Warn("client requested a status report; none will be sent", "capability", cp)
		}
	}

	var pack []byte
	for _, p := range pktr.rest() {
		if p.Kind == pktline.Tail {
			pack = p.Data
			break
		}
	}
	if pack == nil {
		if deleteCommandsOnly {
			return res, nil
		}
		return nil, ErrNoPack
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, err := packfile.Decode(pack)
	if err != nil {
		return nil, err
	}
	for _, obj := range p.Objects {
		logger.Debug("unpacked object", "object", object.Describe(obj))
	}
	res.Objects = p.Map()
	logger.Info("received pack",
		"commands", len(res.Commands),
		"objects", len(res.Objects),
		"capabilities", res.Capabilities.String())
	return res, nil
}
