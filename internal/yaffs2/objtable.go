package yaffs2

// Entry is one materialized object: file, directory, symlink, hardlink or
// special node.
type Entry struct {
	ID   uint32
	Type ObjectType
	Path string

	// PrevDirID threads directories into the reverse-chronological stack
	// used to re-apply directory mtimes after all children are written.
	// Zero means "no earlier directory" (this is the bottom of the stack).
	PrevDirID uint32

	ATime uint32
	MTime uint32
}

// Table maps object id to Entry. Lookups are O(1) average via a bucket
// hash on id modulo a prime; entries live for the process lifetime and
// are never removed.
type Table struct {
	buckets [][]*Entry
}

// NewTable returns an empty object table.
func NewTable() *Table {
	return &Table{buckets: make([][]*Entry, objectTableBuckets)}
}

func (t *Table) bucket(id uint32) int {
	return int(id % objectTableBuckets)
}

// Get looks up an entry by id.
func (t *Table) Get(id uint32) (*Entry, bool) {
	for _, e := range t.buckets[t.bucket(id)] {
		if e.ID == id {
			return e, true
		}
	}
	return nil, false
}

// Insert adds a new entry. The caller must already have checked for
// duplicate ids (an object id appears at most once, root excepted) —
// Insert does not check.
func (t *Table) Insert(e *Entry) {
	b := t.bucket(e.ID)
	t.buckets[b] = append(t.buckets[b], e)
}

// RefreshTimes updates atime/mtime on an already-inserted entry — the only
// mutation a re-seen header record (the root) is allowed to make.
func (t *Table) RefreshTimes(id uint32, atime, mtime uint32) {
	if e, ok := t.Get(id); ok {
		e.ATime = atime
		e.MTime = mtime
	}
}

// PathFor builds the path (relative to the extraction root) for a child
// named name under parent. The root's path is always ".", and no path
// this produces ever starts with "/".
func PathFor(parent *Entry, name string) string {
	if parent.Path == "." {
		return name
	}
	return parent.Path + "/" + name
}
