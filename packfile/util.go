package packfile

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/lxr/gitkv/object"
)

// A packfile object header is a little-endian base128-encoded number
// where bits 4-6 encode the object's type and the rest its size.  The
// first byte holds the type and the low four bits of the size; every
// byte with its high bit set is followed by seven more bits of size.

// readObjHeader reads an object header from r.  The type is checked as
// soon as the first byte is read, before any size bytes.  The size is
// only a hint: every continuation byte is consumed, but bits beyond
// the 60th are dropped.
func readObjHeader(r io.ByteReader) (object.Type, int64, error) {
	c, err := r.ReadByte()
	if err != nil {
		return 0, 0, err
	}
	objType := object.Type(c >> 4 & 0x7)
	switch {
	case objType.IsDelta():
		return objType, 0, ErrDeltaNotImplemented
	case !objType.Valid():
		return objType, 0, &object.TypeError{Value: objType}
	}
	size := int64(c & 0xF)
	for shift := uint(4); c&0x80 != 0; shift += 7 {
		if c, err = r.ReadByte(); err != nil {
			return objType, 0, err
		}
		if shift <= 53 {
			size |= int64(c&0x7F) << shift
		}
	}
	return objType, size, nil
}

func writeObjHeader(w io.Writer, objType object.Type, size int64) error {
	// XXX(lor): Objects larger than 2305843009213693951 bytes
	// (0x1FFFFFFFFFFFFFFF in hex) cannot be written, as an object's
	// size is internally represented as a 64-bit integer, of which
	// three bits are reserved for encoding the object's type.
	if size < 0 || size > 0x1FFFFFFFFFFFFFFF {
		return errors.New("packfile: object size out of range")
	}
	hdr := uint64((size&^0xF)<<3 | int64(objType)<<4 | size&0xF)
	var p [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(p[:], hdr)
	_, err := w.Write(p[:n])
	return err
}
