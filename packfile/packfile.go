// Package packfile reads and writes version 2 Git packfiles.  See
// https://git-scm.com/docs/pack-format for details.
//
// A packfile is the "PACK" signature, a version number, an object
// count and then that many objects, each a variable-length type and
// size header followed by its individually zlib-compressed content.
// The length of the compressed data is not recorded anywhere; an
// object ends where its zlib stream ends.
package packfile

// BUG(lor): Delta objects (ofs-delta and ref-delta) are recognized but
// not resolved; reading one fails with ErrDeltaNotImplemented.

// BUG(lor): The SHA-1 trailer of a packfile is neither read nor
// verified by Reader.

import (
	"bytes"
	"crypto/sha1"
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/lxr/gitkv/object"
)

var (
	// ErrHeader is returned when reading packfile data that does not
	// begin with the packfile signature.
	ErrHeader = errors.New("packfile: invalid header")
	// ErrVersion is returned when reading packfile data with a
	// version number other than 2.
	ErrVersion = errors.New("packfile: unsupported version")
	// ErrDeltaNotImplemented is returned when reading a delta
	// object.
	ErrDeltaNotImplemented = errors.New("packfile: delta objects are not implemented")
	// ErrTooManyObjects is returned when creating a packfile with
	// an invalid number of objects, or when writing too many
	// objects into one.
	ErrTooManyObjects = errors.New("packfile: too many objects")
)

// An Error records the offset of the object or header at which reading
// a packfile failed.
type Error struct {
	Offset int64
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v (offset %d)", e.Err, e.Offset)
}

func (e *Error) Unwrap() error {
	return e.Err
}

var signature = [4]byte{'P', 'A', 'C', 'K'}

// Version is the only packfile version read and written.
const Version = 2

type header struct {
	Signature [4]byte
	Version   uint32
	Nobjects  uint32
}

// A Pack is a fully decoded packfile.  Objects are in stream order and
// may contain duplicates.
type Pack struct {
	Version uint32
	Count   uint32
	Objects []*object.Object
}

// Map returns the pack's objects keyed by ID.  Of several objects with
// the same ID, the last one wins; they have identical content anyway.
func (p *Pack) Map() map[object.ID]*object.Object {
	m := make(map[object.ID]*object.Object, len(p.Objects))
	for _, obj := range p.Objects {
		m[obj.ID] = obj
	}
	return m
}

// Decode reads a complete packfile from data, which must begin with
// the packfile signature.  Bytes following the last object, normally
// the trailer, are ignored.
func Decode(data []byte) (*Pack, error) {
	r, err := NewReader(data)
	if err != nil {
		return nil, err
	}
	p := &Pack{
		Version: r.version,
		Count:   r.count,
		Objects: make([]*object.Object, 0, min(r.count, 1024)),
	}
	for r.Len() > 0 {
		obj, err := r.Read()
		if err != nil {
			return nil, err
		}
		p.Objects = append(p.Objects, obj)
	}
	return p, nil
}

// A Reader reads Git objects from an in-memory packfile.
type Reader struct {
	r       *bytes.Reader
	size    int64
	version uint32
	count   uint32
	n       uint32
}

// NewReader creates a new Reader from data.  It returns an error if
// data does not begin with a packfile header or if the packfile version
// is unsupported.
func NewReader(data []byte) (*Reader, error) {
	r := &Reader{r: bytes.NewReader(data), size: int64(len(data))}
	var h header
	// XXX(lor): The version and object count are full big-endian
	// 32-bit words.  Shifting each byte by four bits instead of eight
	// would misread any count above 15.
	if err := binary.Read(r.r, binary.BigEndian, &h); err != nil {
		return nil, &Error{0, unexpected(err)}
	}
	switch {
	case h.Signature != signature:
		return nil, &Error{0, ErrHeader}
	case h.Version != Version:
		return nil, &Error{4, fmt.Errorf("%w %d", ErrVersion, h.Version)}
	}
	r.version = h.Version
	r.count = h.Nobjects
	r.n = h.Nobjects
	return r, nil
}

// Len returns the number of objects remaining in the packfile.
func (r *Reader) Len() int {
	return int(r.n)
}

// offset returns the current position in the packfile.
func (r *Reader) offset() int64 {
	return r.size - int64(r.r.Len())
}

// Read returns the next object in the stream, or nil, io.EOF if there
// are no more objects.
func (r *Reader) Read() (*object.Object, error) {
	if r.n == 0 {
		return nil, io.EOF
	}
	pos := r.offset()
	objType, size, err := readObjHeader(r.r)
	if err != nil {
		return nil, &Error{pos, unexpected(err)}
	}
	content, err := inflate(r.r, size)
	if err != nil {
		return nil, &Error{pos, err}
	}
	r.n--
	return object.New(objType, content), nil
}

// inflate decompresses one zlib stream from r.  The decompressor pulls
// its input through io.ByteReader, so it stops at the exact end of the
// stream and leaves r positioned at the next object's header.  The
// content is as long as the stream says; sizeHint only preallocates.
func inflate(r *bytes.Reader, sizeHint int64) ([]byte, error) {
	zr, err := zlib.NewReader(r)
	if err != nil {
		return nil, unexpected(err)
	}
	defer zr.Close()
	buf := bytes.NewBuffer(make([]byte, 0, min(sizeHint, int64(r.Len())*4+64)))
	if _, err := io.Copy(buf, zr); err != nil {
		return nil, unexpected(err)
	}
	return buf.Bytes(), nil
}

// unexpected converts a bare io.EOF, which here always means the data
// ended in the middle of something, into io.ErrUnexpectedEOF.
func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// A Writer writes Git objects to a packfile stream.
type Writer struct {
	w      io.Writer
	n      int64
	digest hash.Hash
}

// NewWriter creates a new Writer from w.  n is the number of objects
// that the packfile will contain.  NewWriter returns a non-nil error
// if it fails to write the packfile header or if n is outside the range
// of an unsigned 32-bit integer.
func NewWriter(w io.Writer, n int64) (*Writer, error) {
	if int64(uint32(n)) != n {
		return nil, ErrTooManyObjects
	}
	pfw := new(Writer)
	pfw.n = n
	pfw.digest = sha1.New()
	pfw.w = io.MultiWriter(w, pfw.digest)
	h := header{signature, Version, uint32(n)}
	return pfw, binary.Write(pfw.w, binary.BigEndian, h)
}

// BUG(lor): Writer.Write writes all its arguments as full objects;
// it does not attempt to delta compress them.

// Write writes an object of the given type and content to the stream.
// It returns ErrTooManyObjects if trying to write more objects than
// were specified in the call to NewWriter.
func (w *Writer) Write(objType object.Type, content []byte) error {
	if w.n == 0 {
		return ErrTooManyObjects
	}
	if !objType.Valid() {
		return &object.TypeError{Value: objType}
	}
	if err := writeObjHeader(w.w, objType, int64(len(content))); err != nil {
		return err
	}
	z := zlib.NewWriter(w.w)
	if _, err := z.Write(content); err != nil {
		return err
	}
	w.n--
	return z.Close()
}

// Close writes the packfile SHA-1 trailer to the stream.  It does not
// close the underlying writer.
func (w *Writer) Close() error {
	_, err := w.w.Write(w.digest.Sum(nil))
	return err
}
