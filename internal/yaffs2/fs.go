package yaffs2

import (
	"io"
	"os"
	"time"
)

// FileSystem is the contract the extractor consumes from the POSIX
// primitives: file creation, chown, chmod, mknod, symlink, link and the
// utime family. Concrete implementations live in fs_unix.go (real
// syscalls) and in tests (fakes), keeping the decoder/extractor core
// free of direct syscalls.
type FileSystem interface {
	// MkdirAll creates dest and any missing parent components with mode
	// 0777, failing if an existing path component is not a directory.
	MkdirAll(dest string) error
	Chdir(dest string) error
	Umask(mask int) int

	Create(path string, mode os.FileMode) (io.WriteCloser, error)
	Mkdir(path string, mode os.FileMode) error
	Symlink(oldname, newname string) error
	Link(oldname, newname string) error
	Mknod(path string, mode os.FileMode, rdev uint64) error

	Lchown(path string, uid, gid int) error
	Chmod(path string, mode os.FileMode) error

	Utimes(path string, atime, mtime time.Time) error
	Lutimes(path string, atime, mtime time.Time) error
	// SupportsLutimes reports whether Lutimes actually restores a
	// symlink's own timestamps rather than silently following it.
	SupportsLutimes() bool
}

// IsPermissionIsh reports whether err looks like EPERM/EINVAL, the two
// errno values that downgrade a failed device-node creation to a warning.
func IsPermissionIsh(err error) bool {
	return isEPERM(err) || isEINVAL(err)
}
