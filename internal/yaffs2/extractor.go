package yaffs2

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Mode selects the extractor's operating mode.
type Mode int

const (
	ModeExtract Mode = iota
	ModeListNames
	ModeListLong
)

// PullFunc fetches and decodes the next chunk record, the way a FILE
// header's data keeps arriving from the same stream the header came from.
type PullFunc func() (rec Record, present bool, err error)

// Extractor turns header records into filesystem operations, streams data
// chunks into open files, and enforces the object graph's ordering
// constraints.
type Extractor struct {
	fs     FileSystem
	mode   Mode
	table  *Table
	stdout io.Writer
	stderr io.Writer
	pull   PullFunc

	lastDirID   uint32
	warnCount   int
	objectCount int
}

// ObjectCount returns the number of non-root objects materialized or
// listed so far.
func (e *Extractor) ObjectCount() int { return e.objectCount }

// NewExtractor builds an Extractor with a pre-populated root entry at path
// ".", the one id allowed to pre-exist.
func NewExtractor(fs FileSystem, mode Mode, stdout, stderr io.Writer, pull PullFunc) *Extractor {
	t := NewTable()
	t.Insert(&Entry{ID: RootObjectID, Type: TypeDirectory, Path: "."})
	return &Extractor{
		fs:     fs,
		mode:   mode,
		table:  t,
		stdout: stdout,
		stderr: stderr,
		pull:   pull,
	}
}

// Table exposes the object table for the orchestrator's directory-mtime
// replay at shutdown.
func (e *Extractor) Table() *Table { return e.table }

// LastDirID is the head of the directory stack, used to start the
// shutdown replay walk.
func (e *Extractor) LastDirID() uint32 { return e.lastDirID }

func (e *Extractor) warn(format string, args ...interface{}) {
	fmt.Fprintf(e.stderr, format+"\n", args...)
}

// HandleRecord processes one top-level record from the main chunk loop.
// Data records reaching this level are orphaned (not consumed as part of a
// FILE's materialization) and are silently skipped.
func (e *Extractor) HandleRecord(rec Record) error {
	switch rec.Kind {
	case RecordEmpty, RecordData:
		return nil
	case RecordMalformed:
		return e.warnMalformed()
	case RecordHeader:
		return e.handleHeader(rec.ObjectID, rec.Header)
	default:
		return nil
	}
}

func (e *Extractor) warnMalformed() error {
	e.warnCount++
	e.warn("Warning: malformed record, skipping...")
	if e.warnCount >= MaxWarnings {
		return newError(KindTooManyWarnings, "Giving up")
	}
	return nil
}

func (e *Extractor) handleHeader(id uint32, hdr ObjectHeader) error {
	if id == RootObjectID {
		return e.handleRoot(hdr)
	}

	if _, dup := e.table.Get(id); dup {
		return newError(KindInvalidReference, "duplicate object id %d (%s)", id, hdr.Name)
	}

	parent, ok := e.table.Get(hdr.ParentObjectID)
	if !ok {
		return newError(KindInvalidReference, "Invalid parentObjectId %d in object %d (%s)", hdr.ParentObjectID, id, hdr.Name)
	}
	if parent.Type != TypeDirectory {
		return newError(KindInvalidReference, "parentObjectId %d of object %d (%s) is not a directory", hdr.ParentObjectID, id, hdr.Name)
	}

	if err := validateName(hdr.Name); err != nil {
		return newError(KindInvalidReference, "illegal name %q in object %d: %v", hdr.Name, id, err)
	}

	entry := &Entry{
		ID:    id,
		Type:  hdr.Type,
		Path:  PathFor(parent, hdr.Name),
		ATime: hdr.ATime,
		MTime: hdr.MTime,
	}
	e.table.Insert(entry)
	e.objectCount++

	if hdr.Type == TypeDirectory {
		entry.PrevDirID = e.lastDirID
		e.lastDirID = id
	}

	if e.mode != ModeExtract {
		return e.dispatchList(entry, hdr)
	}
	return e.dispatchExtract(entry, hdr)
}

func (e *Extractor) handleRoot(hdr ObjectHeader) error {
	if hdr.Type != TypeDirectory {
		return newError(KindInvalidReference, "root object is not a directory")
	}
	root, ok := e.table.Get(RootObjectID)
	if !ok {
		return newError(KindInvalidReference, "root object missing from table")
	}
	e.table.RefreshTimes(RootObjectID, hdr.ATime, hdr.MTime)
	if e.lastDirID == 0 {
		e.lastDirID = RootObjectID
	}
	if e.mode == ModeExtract {
		// Root is never mkdir'd, but it still gets lchown and a full
		// chmod to install its on-disk mode bits — only the mkdir is
		// skipped for root, not the ownership/mode restoration.
		if err := e.fs.Lchown(root.Path, int(hdr.UID), int(hdr.GID)); err != nil {
			e.warn("Warning: lchown %s: %v", root.Path, err)
		}
		if err := e.fs.Chmod(root.Path, chmodMode(hdr.Mode)); err != nil {
			e.warn("Warning: chmod %s: %v", root.Path, err)
		}
	}
	return nil
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("empty name")
	}
	if name == "." || name == ".." {
		return fmt.Errorf("reserved name %q", name)
	}
	if strings.Contains(name, "/") {
		return fmt.Errorf("name contains '/'")
	}
	return nil
}

// dispatchList handles list-mode side effects: no filesystem operations,
// but FILE data still has to be drained to keep the reader aligned, and a
// line is emitted immediately so listing order matches extraction order.
func (e *Extractor) dispatchList(entry *Entry, hdr ObjectHeader) error {
	if hdr.Type == TypeFile {
		if err := e.drainFile(nil, hdr.FileSize); err != nil {
			return err
		}
	}
	if hdr.Type == TypeHardlink {
		target, err := e.resolveHardlink(entry.ID, hdr)
		if err != nil {
			return err
		}
		if e.mode == ModeListLong {
			fmt.Fprintln(e.stdout, FormatLongLine(entry, hdr, target))
		} else {
			fmt.Fprintln(e.stdout, entry.Path)
		}
		return nil
	}
	if e.mode == ModeListLong {
		fmt.Fprintln(e.stdout, FormatLongLine(entry, hdr, nil))
	} else {
		fmt.Fprintln(e.stdout, entry.Path)
	}
	return nil
}

func (e *Extractor) dispatchExtract(entry *Entry, hdr ObjectHeader) error {
	switch hdr.Type {
	case TypeFile:
		return e.extractFile(entry, hdr)
	case TypeSymlink:
		return e.extractSymlink(entry, hdr)
	case TypeDirectory:
		return e.extractDirectory(entry, hdr)
	case TypeHardlink:
		return e.extractHardlink(entry, hdr)
	case TypeSpecial:
		return e.extractSpecial(entry, hdr)
	case TypeUnknown:
		return nil
	default:
		return nil
	}
}

func (e *Extractor) extractFile(entry *Entry, hdr ObjectHeader) error {
	w, err := e.fs.Create(entry.Path, os.FileMode(hdr.Mode&0777))
	if err != nil {
		return wrapError(KindOutputError, err, "creating file %s", entry.Path)
	}
	if err := e.drainFile(w, hdr.FileSize); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return wrapError(KindOutputError, err, "closing file %s", entry.Path)
	}

	if err := e.fs.Lchown(entry.Path, int(hdr.UID), int(hdr.GID)); err != nil {
		e.warn("Warning: lchown %s: %v", entry.Path, err)
	}
	if hdr.Mode&07000 != 0 {
		if err := e.fs.Chmod(entry.Path, chmodMode(hdr.Mode)); err != nil {
			e.warn("Warning: chmod %s: %v", entry.Path, err)
		}
	}
	if err := e.fs.Utimes(entry.Path, unixTime(hdr.ATime), unixTime(hdr.MTime)); err != nil {
		e.warn("Warning: utime %s: %v", entry.Path, err)
	}
	return nil
}

// drainFile pulls consecutive data records until fileSize bytes have been
// consumed, writing them to w if non-nil (list mode passes nil to discard
// the payload while still keeping the reader aligned).
func (e *Extractor) drainFile(w io.Writer, fileSize uint32) error {
	remaining := int64(fileSize)
	for remaining > 0 {
		rec, present, err := e.pull()
		if err != nil {
			return err
		}
		if !present {
			return newError(KindBrokenImage, "image ended before file size was reached (%d bytes remaining)", remaining)
		}
		if rec.Kind != RecordData {
			return newError(KindBrokenImage, "expected data record, missing before fileSize consumed")
		}
		n := int64(rec.ByteCount)
		if n > remaining {
			n = remaining
		}
		if w != nil {
			if _, err := w.Write(rec.Payload[:n]); err != nil {
				return wrapError(KindOutputError, err, "writing file data")
			}
		}
		remaining -= n
	}
	return nil
}

func (e *Extractor) extractSymlink(entry *Entry, hdr ObjectHeader) error {
	if err := e.fs.Symlink(hdr.Alias, entry.Path); err != nil {
		return wrapError(KindOutputError, err, "creating symlink %s", entry.Path)
	}
	if err := e.fs.Lchown(entry.Path, int(hdr.UID), int(hdr.GID)); err != nil {
		e.warn("Warning: lchown %s: %v", entry.Path, err)
	}
	if e.fs.SupportsLutimes() {
		if err := e.fs.Lutimes(entry.Path, unixTime(hdr.ATime), unixTime(hdr.MTime)); err != nil {
			e.warn("Warning: lutimes %s: %v", entry.Path, err)
		}
	}
	return nil
}

func (e *Extractor) extractDirectory(entry *Entry, hdr ObjectHeader) error {
	if err := e.fs.Mkdir(entry.Path, os.FileMode(hdr.Mode&0777)); err != nil {
		return wrapError(KindOutputError, err, "creating directory %s", entry.Path)
	}
	if err := e.fs.Lchown(entry.Path, int(hdr.UID), int(hdr.GID)); err != nil {
		e.warn("Warning: lchown %s: %v", entry.Path, err)
	}
	if hdr.Mode&07000 != 0 {
		if err := e.fs.Chmod(entry.Path, chmodMode(hdr.Mode)); err != nil {
			e.warn("Warning: chmod %s: %v", entry.Path, err)
		}
	}
	// Directory mtime/atime is deferred to the shutdown replay, so a
	// later child write never clobbers the restored value.
	return nil
}

func (e *Extractor) resolveHardlink(id uint32, hdr ObjectHeader) (*Entry, error) {
	target, ok := e.table.Get(hdr.EquivalentObjectID)
	if !ok || target.Type == TypeDirectory {
		return nil, newError(KindInvalidReference, "Invalid equivalentObjectId %d in object %d (%s)", hdr.EquivalentObjectID, id, hdr.Name)
	}
	return target, nil
}

func (e *Extractor) extractHardlink(entry *Entry, hdr ObjectHeader) error {
	target, err := e.resolveHardlink(entry.ID, hdr)
	if err != nil {
		return err
	}
	if err := e.fs.Link(target.Path, entry.Path); err != nil {
		return wrapError(KindOutputError, err, "linking %s to %s", entry.Path, target.Path)
	}
	return nil
}

func (e *Extractor) extractSpecial(entry *Entry, hdr ObjectHeader) error {
	err := e.fs.Mknod(entry.Path, os.FileMode(hdr.Mode), uint64(hdr.RDev))
	if err != nil {
		if IsPermissionIsh(err) {
			e.warn("Warning: mknod %s: %v", entry.Path, err)
			return nil
		}
		return wrapError(KindOutputError, err, "creating device node %s", entry.Path)
	}
	if err := e.fs.Lchown(entry.Path, int(hdr.UID), int(hdr.GID)); err != nil {
		e.warn("Warning: lchown %s: %v", entry.Path, err)
	}
	if err := e.fs.Utimes(entry.Path, unixTime(hdr.ATime), unixTime(hdr.MTime)); err != nil {
		e.warn("Warning: utime %s: %v", entry.Path, err)
	}
	return nil
}

func unixTime(sec uint32) time.Time { return time.Unix(int64(sec), 0) }

// chmodMode builds the os.FileMode argument for a Chmod call from a raw
// on-disk mode: the permission bits plus the setuid/setgid/sticky special
// bits translated to os.ModeSetuid/os.ModeSetgid/os.ModeSticky, since
// os.Chmod's syscallMode only recognizes those bits via the dedicated
// os.FileMode flags, not at their raw 07000 octal positions.
func chmodMode(mode uint32) os.FileMode {
	m := os.FileMode(mode & 0777)
	if mode&04000 != 0 {
		m |= os.ModeSetuid
	}
	if mode&02000 != 0 {
		m |= os.ModeSetgid
	}
	if mode&01000 != 0 {
		m |= os.ModeSticky
	}
	return m
}

// ReplayDirectoryTimes walks the directory stack from head backward,
// applying each directory's recorded (atime, mtime) — most-recently-created
// directory first, root last — so that child writes never clobber an
// ancestor's restored mtime again.
func (e *Extractor) ReplayDirectoryTimes() error {
	if e.mode != ModeExtract {
		return nil
	}
	for id := e.lastDirID; id != 0; {
		entry, ok := e.table.Get(id)
		if !ok {
			break
		}
		if err := e.fs.Utimes(entry.Path, unixTime(entry.ATime), unixTime(entry.MTime)); err != nil {
			e.warn("Warning: utime %s: %v", entry.Path, err)
		}
		id = entry.PrevDirID
	}
	return nil
}
