package yaffs2

import (
	"io"
)

// lookaheadSize is the number of bytes the layout detector reads before any
// chunk size is known: two records' worth of the largest supported layout.
func lookaheadSize() int {
	chunk, spare := maxChunkAndSpare()
	return 2 * (chunk + spare)
}

// readLookahead fills the look-ahead buffer from src, tolerating a source
// shorter than lookaheadSize (small images still need to be detectable).
func readLookahead(src io.Reader) ([]byte, error) {
	buf := make([]byte, lookaheadSize())
	n, err := io.ReadFull(src, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, wrapError(KindUndetectableLayout, err, "reading look-ahead buffer")
	}
	return buf[:n], nil
}

// detectLayout selects a (chunk, spare) pair from the look-ahead buffer.
// The buffer is not consumed here; newReader replays it.
func detectLayout(prefix []byte) (Layout, error) {
	if len(prefix) < headerRecordSize {
		return Layout{}, newError(KindNotYaffs2, "image shorter than one object header")
	}

	first, err := decodeObjectHeader(prefix[:headerRecordSize])
	if err != nil || !first.Type.Valid() || first.ParentObjectID != RootObjectID {
		return Layout{}, newError(KindNotYaffs2, "first header is not a valid root-parented object")
	}
	switch first.Type {
	case TypeFile, TypeDirectory, TypeSymlink, TypeHardlink, TypeSpecial:
	default:
		return Layout{}, newError(KindNotYaffs2, "first header has unsupported type %s", first.Type)
	}

	for _, cand := range Layouts {
		need := 2 * (cand.ChunkSize + cand.SpareSize)
		if len(prefix) < need {
			continue
		}

		tag1 := parseTag(prefix[cand.ChunkSize : cand.ChunkSize+tagSize])
		if tag1.ByteCount != tagByteCountHeader || tag1.ChunkID != headerRecordChunkID {
			continue
		}

		tag2Offset := 2*cand.ChunkSize + cand.SpareSize
		tag2 := parseTag(prefix[tag2Offset : tag2Offset+tagSize])

		secondHeader := tag2.ByteCount == tagByteCountHeader && tag2.ChunkID == headerRecordChunkID
		firstDataChunk := tag2.ObjectID == tag1.ObjectID && tag2.ChunkID == 1
		if secondHeader || firstDataChunk {
			return cand, nil
		}
	}

	return Layout{}, newError(KindUndetectableLayout, "no candidate layout matched the image prefix")
}
