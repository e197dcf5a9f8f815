package yaffs2

import (
	"fmt"
	"time"
)

// FormatLongLine renders one long-listing line: 1-char type, 9-char
// permission string, an 8-wide size field, a YYYY-MM-DD date, an HH:MM
// time, the name, and an optional " -> target".
//
// target is the resolved hardlink target entry, or nil for every other
// type (and, defensively, for an unresolved hardlink, never actually
// reached in practice since resolution failure aborts before a line is
// ever formatted).
func FormatLongLine(e *Entry, hdr ObjectHeader, target *Entry) string {
	typ := typeChar(hdr, e.Type)
	perm := permString(hdr.Mode)
	size := sizeField(hdr, e.Type, target)

	mtime := hdr.MTime
	if e.Type == TypeHardlink {
		if target != nil {
			mtime = target.MTime
		} else {
			mtime = 0
		}
	}
	t := time.Unix(int64(mtime), 0).Local()

	line := fmt.Sprintf("%c%s %-8s %s %s %s", typ, perm, size, t.Format("2006-01-02"), t.Format("15:04"), e.Path)

	switch e.Type {
	case TypeSymlink:
		line += " -> " + hdr.Alias
	case TypeHardlink:
		if target != nil {
			line += " -> /" + target.Path
		}
	}
	return line
}

func typeChar(hdr ObjectHeader, t ObjectType) byte {
	switch t {
	case TypeDirectory:
		return 'd'
	case TypeSymlink:
		return 'l'
	case TypeSpecial:
		if isBlockDevice(hdr.Mode) {
			return 'b'
		}
		return 'c'
	default: // file, hardlink, unknown
		return '-'
	}
}

func sizeField(hdr ObjectHeader, t ObjectType, target *Entry) string {
	switch t {
	case TypeFile:
		return fmt.Sprintf("%d", hdr.FileSize)
	case TypeHardlink:
		if target != nil && target.Type == TypeFile {
			return fmt.Sprintf("%d", hdr.FileSize)
		}
		return "0"
	case TypeSpecial:
		major, minor := deviceNumbers(uint64(hdr.RDev))
		return fmt.Sprintf("%d,%04d", major, minor)
	default:
		return "0"
	}
}

// permString renders the 9 rwx characters following ls -l conventions,
// including s/S and t/T for setuid/setgid/sticky.
func permString(mode uint32) string {
	const rwx = "rwxrwxrwx"
	buf := make([]byte, 9)
	for i := range buf {
		bit := uint32(1) << (8 - i)
		if mode&bit != 0 {
			buf[i] = rwx[i]
		} else {
			buf[i] = '-'
		}
	}
	applySpecialBit(buf, 2, mode&04000 != 0, 's', 'S') // setuid -> owner x
	applySpecialBit(buf, 5, mode&02000 != 0, 's', 'S') // setgid -> group x
	applySpecialBit(buf, 8, mode&01000 != 0, 't', 'T') // sticky -> other x
	return string(buf)
}

func applySpecialBit(buf []byte, idx int, set bool, lower, upper byte) {
	if !set {
		return
	}
	if buf[idx] == 'x' {
		buf[idx] = lower
	} else {
		buf[idx] = upper
	}
}

func isBlockDevice(mode uint32) bool {
	const sIFMT = 0170000
	const sIFBLK = 0060000
	return mode&sIFMT == sIFBLK
}
