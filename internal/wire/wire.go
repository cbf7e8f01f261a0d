// Package wire frames persisted records and encrypted envelopes as bytes.
//
// Byte stores (memory, bigcache, redis) are value-transparent: they persist
// exactly the bytes handed to them. The frame therefore has to carry the
// response headers (content type, max-age, last-modified) alongside the body,
// and strict validation lets readers treat foreign bytes as corruption.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"time"
)

const (
	version      byte = 1
	kindRecord   byte = 1
	kindEnvelope byte = 2

	flagBinary byte = 1 << 0
)

var (
	ErrCorrupt = errors.New("wire: corrupt frame")
	magic4     = [...]byte{'C', 'V', 'L', 'T'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Record is one persisted cache entry: the JSON body plus the headers the
// platform cache would carry for it.
type Record struct {
	Body         []byte
	ContentType  string
	MaxAge       int
	LastModified time.Time
}

// Record: magic(4) | ver(1) | kind(1=record) | lastModified unix (u64 be) |
// maxAge (u32 be) | ctypeLen (u16 be) | ctype | bodyLen (u32 be) | body
func EncodeRecord(r Record) []byte {
	var buf bytes.Buffer
	buf.Grow(4 + 1 + 1 + 8 + 4 + 2 + len(r.ContentType) + 4 + len(r.Body))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kindRecord)

	var u8 [8]byte
	var u4 [4]byte
	var u2 [2]byte

	binary.BigEndian.PutUint64(u8[:], uint64(r.LastModified.Unix()))
	buf.Write(u8[:])

	binary.BigEndian.PutUint32(u4[:], uint32(r.MaxAge))
	buf.Write(u4[:])

	binary.BigEndian.PutUint16(u2[:], uint16(len(r.ContentType)))
	buf.Write(u2[:])
	buf.WriteString(r.ContentType)

	binary.BigEndian.PutUint32(u4[:], uint32(len(r.Body)))
	buf.Write(u4[:])
	buf.Write(r.Body)

	return buf.Bytes()
}

func DecodeRecord(b []byte) (Record, error) {
	const hdr = 4 + 1 + 1 + 8 + 4 + 2
	if len(b) < hdr || !hasMagic(b) || b[4] != version || b[5] != kindRecord {
		return Record{}, ErrCorrupt
	}

	off := 6

	sec := int64(binary.BigEndian.Uint64(b[off : off+8]))
	off += 8

	maxAge := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4

	clen := int(binary.BigEndian.Uint16(b[off : off+2]))
	off += 2
	if clen > len(b)-off {
		return Record{}, ErrCorrupt
	}
	ctype := string(b[off : off+clen])
	off += clen

	if off+4 > len(b) {
		return Record{}, ErrCorrupt
	}
	blen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if blen < 0 || blen > len(b)-off { // overflow-safe bound check
		return Record{}, ErrCorrupt
	}

	return Record{
		Body:         b[off : off+blen],
		ContentType:  ctype,
		MaxAge:       maxAge,
		LastModified: time.Unix(sec, 0).UTC(),
	}, nil
}

// Envelope: magic(4) | ver(1) | kind(2=envelope) | flags(1) |
// ivLen (u16 be) | iv | clen (u32 be) | ciphertext
func EncodeEnvelope(iv, ciphertext []byte, isBinary bool) []byte {
	var buf bytes.Buffer
	buf.Grow(4 + 1 + 1 + 1 + 2 + len(iv) + 4 + len(ciphertext))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kindEnvelope)

	var flags byte
	if isBinary {
		flags |= flagBinary
	}
	buf.WriteByte(flags)

	var u4 [4]byte
	var u2 [2]byte

	binary.BigEndian.PutUint16(u2[:], uint16(len(iv)))
	buf.Write(u2[:])
	buf.Write(iv)

	binary.BigEndian.PutUint32(u4[:], uint32(len(ciphertext)))
	buf.Write(u4[:])
	buf.Write(ciphertext)

	return buf.Bytes()
}

func DecodeEnvelope(b []byte) (iv, ciphertext []byte, isBinary bool, err error) {
	const hdr = 4 + 1 + 1 + 1 + 2
	if len(b) < hdr || !hasMagic(b) || b[4] != version || b[5] != kindEnvelope {
		return nil, nil, false, ErrCorrupt
	}

	flags := b[6]
	off := 7

	ivLen := int(binary.BigEndian.Uint16(b[off : off+2]))
	off += 2
	if ivLen > len(b)-off {
		return nil, nil, false, ErrCorrupt
	}
	iv = b[off : off+ivLen]
	off += ivLen

	if off+4 > len(b) {
		return nil, nil, false, ErrCorrupt
	}
	clen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if clen < 0 || clen > len(b)-off {
		return nil, nil, false, ErrCorrupt
	}

	return iv, b[off : off+clen], flags&flagBinary != 0, nil
}
