package yaffs2

import (
	"encoding/binary"
	"errors"
)

// ObjectHeader is the decoded payload of a header record. Field order
// follows original_source/unyaffs.h's non-WinCE layout exactly (the WinCE
// variant is unsupported). original_source/unyaffs.c reads the chunk via a
// struct overlay, so the layout follows normal C alignment rather than a
// packed encoding: yst_mode is a __u32 and must start on a 4-byte boundary,
// so the compiler inserts 2 bytes of padding after the 256-byte name field
// (which ends 2 bytes short of one).
type ObjectHeader struct {
	Type               ObjectType
	ParentObjectID     uint32
	Name               string
	Mode               uint32
	UID                uint32
	GID                uint32
	ATime              uint32
	MTime              uint32
	CTime              uint32
	FileSize           uint32
	EquivalentObjectID uint32
	Alias              string
	RDev               uint32
}

const (
	nameFieldSize  = MaxNameLength + 1
	aliasFieldSize = MaxAliasLength + 1

	// headerRecordSize is the exact on-disk size of the object header,
	// including the padding/reserved fields the extractor never looks at.
	headerRecordSize = 4 + 4 + 2 + nameFieldSize + // type, parent, checksum, name
		2 + // alignment padding before yst_mode
		4*6 + // mode, uid, gid, atime, mtime, ctime
		4 + 4 + aliasFieldSize + 4 + // fileSize, equivalentObjectId, alias, rdev
		4*6 + // roomToGrow[6]
		4 + 4 + // inbandShadowsObject, inbandIsShrink
		4*2 + // reservedSpace[2]
		4 + 4 // shadowsObject, isShrink
)

var errShortHeader = errors.New("object header record shorter than on-disk struct")
var errBadString = errors.New("string field has no NUL terminator within its declared length")

type cursor struct {
	b   []byte
	off int
}

func (c *cursor) u32() uint32 {
	v := binary.LittleEndian.Uint32(c.b[c.off : c.off+4])
	c.off += 4
	return v
}

func (c *cursor) skip(n int) { c.off += n }

func (c *cursor) cstring(fieldLen int) (string, error) {
	field := c.b[c.off : c.off+fieldLen]
	c.off += fieldLen
	nul := -1
	for i, b := range field {
		if b == 0 {
			nul = i
			break
		}
	}
	if nul < 0 {
		return "", errBadString
	}
	return string(field[:nul]), nil
}

// decodeObjectHeader decodes the payload of a header record. It returns
// errShortHeader if b is too small to hold the on-disk struct, and
// errBadString (reported as a Malformed record by the caller) if the name
// or alias field lacks a NUL terminator within its declared maximum.
func decodeObjectHeader(b []byte) (ObjectHeader, error) {
	if len(b) < headerRecordSize {
		return ObjectHeader{}, errShortHeader
	}
	c := &cursor{b: b}

	typ := ObjectType(c.u32())
	parent := c.u32()
	c.skip(2) // checksum, unused

	name, err := c.cstring(nameFieldSize)
	if err != nil {
		return ObjectHeader{}, err
	}
	c.skip(2) // alignment padding before yst_mode

	mode := c.u32()
	uid := c.u32()
	gid := c.u32()
	atime := c.u32()
	mtime := c.u32()
	ctime := c.u32()
	fileSize := c.u32()
	equiv := c.u32()

	alias, err := c.cstring(aliasFieldSize)
	if err != nil {
		return ObjectHeader{}, err
	}

	rdev := c.u32()
	c.skip(4 * 6) // roomToGrow[6]
	c.skip(4 + 4) // inbandShadowsObject, inbandIsShrink
	c.skip(4 * 2) // reservedSpace[2]
	c.skip(4 + 4) // shadowsObject, isShrink

	return ObjectHeader{
		Type:               typ,
		ParentObjectID:     parent,
		Name:               name,
		Mode:               mode,
		UID:                uid,
		GID:                gid,
		ATime:              atime,
		MTime:              mtime,
		CTime:              ctime,
		FileSize:           fileSize,
		EquivalentObjectID: equiv,
		Alias:              alias,
		RDev:               rdev,
	}, nil
}
