package pktline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	got := Encode(
		Line("# service=git-upload-pack"),
		FlushPkt,
		Line("version 2"),
		DelimPkt,
		ResponseEndPkt,
	)
	assert.Equal(t, "001e# service=git-upload-pack\n0000000eversion 2\n00010002", string(got))
}

func TestEncodeEmpty(t *testing.T) {
	assert.Empty(t, Encode())
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		pkts []Packet
	}{
		{"single line", []Packet{Line("hello")}},
		{"controls", []Packet{FlushPkt, DelimPkt, ResponseEndPkt}},
		{"ls-refs", []Packet{
			Line("command=ls-refs"),
			DelimPkt,
			Line("peel"),
			Line("symrefs"),
			Line("ref-prefix refs/heads/"),
			FlushPkt,
		}},
		{"empty line", []Packet{Line(""), FlushPkt}},
		{"nul inside", []Packet{Line("0123 refs/heads/main\x00report-status"), FlushPkt}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(Encode(tt.pkts...))
			require.NoError(t, err)
			assert.Equal(t, tt.pkts, got)
		})
	}
}

func TestDecodeControlCodes(t *testing.T) {
	tests := []struct {
		in   string
		want Packet
	}{
		{"0000", FlushPkt},
		{"0001", DelimPkt},
		{"0002", ResponseEndPkt},
	}
	for _, tt := range tests {
		got, err := Decode([]byte(tt.in))
		require.NoError(t, err, tt.in)
		require.Len(t, got, 1)
		assert.True(t, tt.want.Equal(got[0]), "%s decoded to %v", tt.in, got[0])
	}
}

func TestDecodeReserved(t *testing.T) {
	_, err := Decode([]byte("0003"))
	assert.ErrorIs(t, err, ErrReserved)

	var perr *Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 0, perr.Offset)
}

func TestDecodeTail(t *testing.T) {
	in := append(Encode(Line("0000000000000000000000000000000000000000 1111111111111111111111111111111111111111 refs/heads/main\x00report-status"), FlushPkt),
		[]byte("PACK\x00\x00\x00\x02\x00\x00\x00\x00")...)
	got, err := Decode(in)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, Text, got[0].Kind)
	assert.Equal(t, Flush, got[1].Kind)
	assert.Equal(t, Tail, got[2].Kind)
	assert.Equal(t, []byte("PACK\x00\x00\x00\x02\x00\x00\x00\x00"), got[2].Data)
}

func TestDecodeTailFirst(t *testing.T) {
	got, err := Decode([]byte("PACKanything at all"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "PACKanything at all", string(got[0].Data))
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{"truncated header", "00", ErrShortBuffer},
		{"truncated payload", "000ahel", ErrShortBuffer},
		{"missing newline", "000ahello", ErrShortBuffer},
		{"not hex", "zzzz", ErrLength},
		{"signed", "+00a", ErrLength},
		{"too short for a line", "0004", ErrLength},
		{"error after good packets", "0000000ahello\n0003", ErrReserved},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.in))
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, got)
		})
	}
}

func TestWriter(t *testing.T) {
	var buf []byte
	w := NewWriter(writerFunc(func(p []byte) (int, error) {
		buf = append(buf, p...)
		return len(p), nil
	}))
	require.NoError(t, w.WritePacket(Line("ls-refs")))
	require.NoError(t, w.WritePacket(DelimPkt))
	require.NoError(t, w.Flush())
	require.NoError(t, w.WritePacket(ResponseEndPkt))
	assert.Equal(t, "000cls-refs\n000100000002", string(buf))

	assert.Error(t, w.WritePacket(Packet{Kind: Kind(42)}))
}

func TestEncodeUnknownKind(t *testing.T) {
	assert.Panics(t, func() {
		Encode(Line("ok"), Packet{Kind: Kind(42)})
	})
}

type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }

func TestPacketString(t *testing.T) {
	assert.Equal(t, `"a\x00b"`, Line("a\x00b").String())
	assert.Equal(t, "flush", FlushPkt.String())
	assert.Equal(t, "tail(3 bytes)", TailOf([]byte("abc")).String())
	assert.Equal(t, "Kind(9)", Kind(9).String())
}
