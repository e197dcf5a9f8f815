//go:build !windows

package yaffs2

import (
	"io"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// osFS implements FileSystem against the real POSIX primitives via os and
// golang.org/x/sys/unix for the syscalls os doesn't wrap directly.
type osFS struct{}

// NewOSFileSystem returns the production FileSystem implementation.
func NewOSFileSystem() FileSystem { return osFS{} }

func (osFS) MkdirAll(dest string) error {
	return os.MkdirAll(dest, 0777)
}

func (osFS) Chdir(dest string) error { return os.Chdir(dest) }

func (osFS) Umask(mask int) int { return unix.Umask(mask) }

func (osFS) Create(path string, mode os.FileMode) (io.WriteCloser, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
}

func (osFS) Mkdir(path string, mode os.FileMode) error {
	return os.Mkdir(path, mode)
}

func (osFS) Symlink(oldname, newname string) error {
	return os.Symlink(oldname, newname)
}

func (osFS) Link(oldname, newname string) error {
	return os.Link(oldname, newname)
}

func (osFS) Mknod(path string, mode os.FileMode, rdev uint64) error {
	return unix.Mknod(path, uint32(mode), int(rdev))
}

func (osFS) Lchown(path string, uid, gid int) error {
	return os.Lchown(path, uid, gid)
}

func (osFS) Chmod(path string, mode os.FileMode) error {
	return os.Chmod(path, mode)
}

func (osFS) Utimes(path string, atime, mtime time.Time) error {
	return os.Chtimes(path, atime, mtime)
}

func (osFS) Lutimes(path string, atime, mtime time.Time) error {
	times := []unix.Timespec{
		unix.NsecToTimespec(atime.UnixNano()),
		unix.NsecToTimespec(mtime.UnixNano()),
	}
	return unix.UtimesNanoAt(unix.AT_FDCWD, path, times, unix.AT_SYMLINK_NOFOLLOW)
}

func (osFS) SupportsLutimes() bool { return true }

func isEPERM(err error) bool { return errIsErrno(err, unix.EPERM) }
func isEINVAL(err error) bool { return errIsErrno(err, unix.EINVAL) }

func errIsErrno(err error, errno unix.Errno) bool {
	for err != nil {
		if e, ok := err.(unix.Errno); ok {
			return e == errno
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// deviceNumbers decomposes a combined rdev into (major, minor) for the
// listing formatter's "major,minor" size rendering.
func deviceNumbers(rdev uint64) (major, minor uint32) {
	return unix.Major(rdev), unix.Minor(rdev)
}
