// Package pktline implements the Git pkt-line wire format as spoken by
// the smart HTTP transport.  See https://git-scm.com/docs/protocol-common#_pkt_line_format
// for details.
//
// A pkt-line stream is a sequence of packets, each either a text line
// prefixed with its four-hex-digit length or one of the zero-payload
// control packets.  On push, the line-oriented part of the stream is
// followed by a raw packfile; Decode hands that over as a single Tail
// packet.
package pktline

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// BUG(lor): Line lengths are neither computed against nor validated
// against the 65520-byte pkt-line maximum.

// Packet decoding error conditions.
var (
	// ErrReserved is returned when decoding the reserved length
	// code 0003.
	ErrReserved = errors.New("pktline: reserved packet type 0x3")
	// ErrLength is returned when a length header is not four
	// hexadecimal digits or is too short to frame a text line.
	ErrLength = errors.New("pktline: malformed length")
	// ErrShortBuffer is returned when a length header announces more
	// bytes than remain in the buffer.
	ErrShortBuffer = errors.New("pktline: read beyond end of buffer")
)

// An Error records the offset in the input at which decoding failed.
type Error struct {
	Offset int
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v (offset %d)", e.Err, e.Offset)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Kind enumerates the packet variants.
type Kind uint8

const (
	Flush       Kind = iota // 0000
	Delim                   // 0001
	ResponseEnd             // 0002
	Text                    // a length-prefixed, newline-terminated line
	Tail                    // everything from a "PACK" signature onwards
)

func (k Kind) String() string {
	switch k {
	case Flush:
		return "flush"
	case Delim:
		return "delim"
	case ResponseEnd:
		return "response-end"
	case Text:
		return "text"
	case Tail:
		return "tail"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// A Packet is a single element of a pkt-line stream.  Text is set only
// for Text packets and Data only for Tail packets.  Text excludes both
// the length header and the trailing newline.
type Packet struct {
	Kind Kind
	Text string
	Data []byte
}

// The control packets.
var (
	FlushPkt       = Packet{Kind: Flush}
	DelimPkt       = Packet{Kind: Delim}
	ResponseEndPkt = Packet{Kind: ResponseEnd}
)

// Line returns a Text packet holding s.
func Line(s string) Packet {
	return Packet{Kind: Text, Text: s}
}

// TailOf returns a Tail packet holding b.  The slice is not copied.
func TailOf(b []byte) Packet {
	return Packet{Kind: Tail, Data: b}
}

// IsLine reports whether p is a Text packet holding exactly s.
func (p Packet) IsLine(s string) bool {
	return p.Kind == Text && p.Text == s
}

// Equal reports whether p and q are the same packet.
func (p Packet) Equal(q Packet) bool {
	return p.Kind == q.Kind && p.Text == q.Text && bytes.Equal(p.Data, q.Data)
}

func (p Packet) String() string {
	switch p.Kind {
	case Text:
		return strconv.Quote(p.Text)
	case Tail:
		return fmt.Sprintf("tail(%d bytes)", len(p.Data))
	default:
		return p.Kind.String()
	}
}

// signature marks the start of a packfile within a pkt-line stream.
const signature = "PACK"

// Encode returns the wire form of pkts.  No flush-pkt is appended; the
// caller includes one wherever the protocol requires it.  Encode
// panics if a packet has an unknown Kind.
func Encode(pkts ...Packet) []byte {
	buf := new(bytes.Buffer)
	w := NewWriter(buf)
	for _, p := range pkts {
		if err := w.WritePacket(p); err != nil {
			panic(err)
		}
	}
	return buf.Bytes()
}

// Decode splits buf into packets.  Decoding stops at the first length
// field that reads "PACK"; the remainder of buf, signature included, is
// returned as the final Tail packet.  The Tail shares memory with buf.
func Decode(buf []byte) ([]Packet, error) {
	var pkts []Packet
	d := decoder{buf: buf}
	for d.pos < len(buf) {
		start := d.pos
		hdr, err := d.read(4)
		if err != nil {
			return nil, err
		}
		if string(hdr) == signature {
			pkts = append(pkts, TailOf(buf[start:]))
			break
		}
		n, err := strconv.ParseUint(string(hdr), 16, 16)
		if err != nil {
			return nil, &Error{start, ErrLength}
		}
		switch n {
		case 0:
			pkts = append(pkts, FlushPkt)
			continue
		case 1:
			pkts = append(pkts, DelimPkt)
			continue
		case 2:
			pkts = append(pkts, ResponseEndPkt)
			continue
		case 3:
			return nil, &Error{start, ErrReserved}
		case 4:
			return nil, &Error{start, ErrLength}
		}
		payload, err := d.read(int(n) - 5)
		if err != nil {
			return nil, err
		}
		// The newline is consumed but not checked.
		if _, err := d.read(1); err != nil {
			return nil, err
		}
		pkts = append(pkts, Line(string(payload)))
	}
	return pkts, nil
}

// decoder is a cursor over an in-memory pkt-line stream.
type decoder struct {
	buf []byte
	pos int
}

func (d *decoder) read(n int) ([]byte, error) {
	if n > len(d.buf)-d.pos {
		return nil, &Error{d.pos, ErrShortBuffer}
	}
	p := d.buf[d.pos : d.pos+n]
	d.pos += n
	return p, nil
}

// A Writer writes packets to an underlying writer.
type Writer struct {
	w io.Writer
}

// NewWriter creates a new Writer from w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w}
}

// WritePacket writes p in its wire form.  Tail packets are written
// verbatim.
func (w *Writer) WritePacket(p Packet) error {
	var err error
	switch p.Kind {
	case Flush, Delim, ResponseEnd:
		_, err = fmt.Fprintf(w.w, "%04x", int(p.Kind))
	case Text:
		_, err = fmt.Fprintf(w.w, "%04x%s\n", len(p.Text)+5, p.Text)
	case Tail:
		_, err = w.w.Write(p.Data)
	default:
		err = fmt.Errorf("pktline: cannot encode %v", p.Kind)
	}
	return err
}

// Flush writes a flush-pkt.
func (w *Writer) Flush() error {
	return w.WritePacket(FlushPkt)
}
