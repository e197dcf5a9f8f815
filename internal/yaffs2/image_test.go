package yaffs2

import (
	"bytes"
	"encoding/binary"
)

// encodeTag is the test-only mirror of parseTag, used to synthesize images.
func encodeTag(t tag) []byte {
	b := make([]byte, tagSize)
	binary.LittleEndian.PutUint32(b[0:4], t.SequenceNumber)
	binary.LittleEndian.PutUint32(b[4:8], t.ObjectID)
	binary.LittleEndian.PutUint32(b[8:12], t.ChunkID)
	binary.LittleEndian.PutUint32(b[12:16], t.ByteCount)
	return b
}

func putCString(b []byte, s string) {
	copy(b, s)
	// b is zero-initialized by make(), so the NUL terminator (and all
	// bytes after it) are already in place.
}

// encodeHeader is the test-only mirror of decodeObjectHeader: same field
// order, same natural-alignment layout (including the 2-byte pad before
// yst_mode).
func encodeHeader(hdr ObjectHeader) []byte {
	b := make([]byte, headerRecordSize)
	c := 0
	putU32 := func(v uint32) {
		binary.LittleEndian.PutUint32(b[c:c+4], v)
		c += 4
	}

	putU32(uint32(hdr.Type))
	putU32(hdr.ParentObjectID)
	c += 2 // checksum, unused

	putCString(b[c:c+nameFieldSize], hdr.Name)
	c += nameFieldSize
	c += 2 // alignment padding before yst_mode

	putU32(hdr.Mode)
	putU32(hdr.UID)
	putU32(hdr.GID)
	putU32(hdr.ATime)
	putU32(hdr.MTime)
	putU32(hdr.CTime)
	putU32(hdr.FileSize)
	putU32(hdr.EquivalentObjectID)

	putCString(b[c:c+aliasFieldSize], hdr.Alias)
	c += aliasFieldSize

	putU32(hdr.RDev)
	c += 4 * 6 // roomToGrow[6]
	c += 4 + 4 // inbandShadowsObject, inbandIsShrink
	c += 4 * 2 // reservedSpace[2]
	c += 4 + 4 // shadowsObject, isShrink

	return b
}

// imageBuilder assembles a synthetic YAFFS2 image byte stream for a given
// layout, one record at a time, in stream order.
type imageBuilder struct {
	layout Layout
	buf    bytes.Buffer
	seq    uint32
}

func newImageBuilder(layout Layout) *imageBuilder {
	return &imageBuilder{layout: layout, seq: 0x1000}
}

func (b *imageBuilder) chunk(payload []byte) []byte {
	c := make([]byte, b.layout.ChunkSize)
	copy(c, payload)
	return c
}

func (b *imageBuilder) writeRecord(chunk, spare []byte) {
	full := make([]byte, b.layout.ChunkSize+b.layout.SpareSize)
	copy(full, chunk)
	copy(full[b.layout.ChunkSize:], spare)
	b.buf.Write(full)
}

func (b *imageBuilder) WriteHeader(id uint32, hdr ObjectHeader) {
	b.seq++
	spare := encodeTag(tag{SequenceNumber: b.seq, ObjectID: id, ChunkID: 0, ByteCount: tagByteCountHeader})
	b.writeRecord(b.chunk(encodeHeader(hdr)), spare)
}

func (b *imageBuilder) WriteData(id, chunkID uint32, data []byte) {
	b.seq++
	spare := encodeTag(tag{SequenceNumber: b.seq, ObjectID: id, ChunkID: chunkID, ByteCount: uint32(len(data))})
	b.writeRecord(b.chunk(data), spare)
}

func (b *imageBuilder) WriteMalformed() {
	b.seq++
	spare := encodeTag(tag{SequenceNumber: b.seq, ObjectID: 0, ChunkID: 0, ByteCount: 1})
	b.writeRecord(b.chunk(nil), spare)
}

func (b *imageBuilder) Bytes() []byte { return b.buf.Bytes() }

func rootHeader(atime, mtime uint32) ObjectHeader {
	return ObjectHeader{Type: TypeDirectory, ParentObjectID: RootObjectID, Mode: 040755, ATime: atime, MTime: mtime}
}
