package yaffs2

import (
	"bytes"
	"io"
)

// Reader pulls fixed-size chunk+spare records from a byte source. It never
// seeks: a layout-detection look-ahead, if any, is fed back in front of the
// source at construction time.
type Reader struct {
	src    io.Reader
	layout Layout
	buf    []byte // len == layout.ChunkSize + layout.SpareSize
	chunks int
}

// newReader wraps src for the given layout. prefix, if non-empty, is
// replayed before src is read from again — the look-ahead buffer consumed
// by the layout detector.
func newReader(src io.Reader, layout Layout, prefix []byte) *Reader {
	r := src
	if len(prefix) > 0 {
		r = io.MultiReader(bytes.NewReader(prefix), src)
	}
	return &Reader{
		src:    r,
		layout: layout,
		buf:    make([]byte, layout.ChunkSize+layout.SpareSize),
	}
}

// Next fills the current record's buffers. It returns present=false only on
// a clean end of stream (zero bytes read); a partial final record is a
// TruncatedImage error.
func (r *Reader) Next() (present bool, err error) {
	n, rerr := io.ReadFull(r.src, r.buf)
	r.chunks++
	switch rerr {
	case nil:
		return true, nil
	case io.EOF:
		return false, nil
	case io.ErrUnexpectedEOF:
		return false, newError(KindTruncatedImage, "truncated image: got %d of %d bytes for chunk %d", n, len(r.buf), r.chunks)
	default:
		return false, wrapError(KindTruncatedImage, rerr, "reading chunk %d", r.chunks)
	}
}

// Chunk returns the current record's payload bytes.
func (r *Reader) Chunk() []byte { return r.buf[:r.layout.ChunkSize] }

// Spare returns the current record's tag-area bytes.
func (r *Reader) Spare() []byte { return r.buf[r.layout.ChunkSize:] }

// ChunkCount is the number of records pulled so far, including the current
// one. It exists purely for diagnostics.
func (r *Reader) ChunkCount() int { return r.chunks }
