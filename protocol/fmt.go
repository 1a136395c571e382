// These types and functions provide a convenient interface for
// reading lines out of and printing lines into decoded pkt-line
// streams.

package protocol

import (
	"fmt"
	"io"

	"github.com/lxr/gitkv/pktline"
)

type lineReader interface {
	ReadLine() (string, error)
}

type lineWriter interface {
	WriteLine(string) error
}

func fmtLprintf(lw lineWriter, format string, a ...interface{}) error {
	s := fmt.Sprintf(format, a...)
	return lw.WriteLine(s)
}

// A packetBuffer collects the packets of a response.
type packetBuffer []pktline.Packet

func (b *packetBuffer) WriteLine(s string) error {
	*b = append(*b, pktline.Line(s))
	return nil
}

func (b *packetBuffer) Flush() {
	*b = append(*b, pktline.FlushPkt)
}

// A packetReader reads the text packets of a stream up to its first
// flush-pkt, which is consumed.  Any other packet ends the lines
// without being consumed.
type packetReader struct {
	pkts []pktline.Packet
	pos  int
}

var _ lineReader = (*packetReader)(nil)

func (r *packetReader) ReadLine() (string, error) {
	if r.pos >= len(r.pkts) {
		return "", io.EOF
	}
	switch p := r.pkts[r.pos]; p.Kind {
	case pktline.Text:
		r.pos++
		return p.Text, nil
	case pktline.Flush:
		r.pos++
	}
	return "", io.EOF
}

// rest returns the packets that have not been read.
func (r *packetReader) rest() []pktline.Packet {
	return r.pkts[r.pos:]
}
