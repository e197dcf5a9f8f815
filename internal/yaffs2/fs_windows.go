//go:build windows

package yaffs2

import (
	"io"
	"os"
	"time"
)

// osFS on Windows has no mknod, no lchown and no symlink-aware utime; the
// capability is surfaced via SupportsLutimes rather than failing loudly.
type osFS struct{}

// NewOSFileSystem returns the production FileSystem implementation.
func NewOSFileSystem() FileSystem { return osFS{} }

func (osFS) MkdirAll(dest string) error { return os.MkdirAll(dest, 0777) }
func (osFS) Chdir(dest string) error    { return os.Chdir(dest) }
func (osFS) Umask(mask int) int         { return 0 }

func (osFS) Create(path string, mode os.FileMode) (io.WriteCloser, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
}

func (osFS) Mkdir(path string, mode os.FileMode) error { return os.Mkdir(path, mode) }

func (osFS) Symlink(oldname, newname string) error { return os.Symlink(oldname, newname) }
func (osFS) Link(oldname, newname string) error     { return os.Link(oldname, newname) }

func (osFS) Mknod(path string, mode os.FileMode, rdev uint64) error {
	return os.ErrInvalid
}

func (osFS) Lchown(path string, uid, gid int) error { return nil }
func (osFS) Chmod(path string, mode os.FileMode) error {
	return os.Chmod(path, mode)
}

func (osFS) Utimes(path string, atime, mtime time.Time) error {
	return os.Chtimes(path, atime, mtime)
}

func (osFS) Lutimes(path string, atime, mtime time.Time) error { return nil }
func (osFS) SupportsLutimes() bool                             { return false }

func isEPERM(err error) bool  { return false }
func isEINVAL(err error) bool { return true }

func deviceNumbers(rdev uint64) (major, minor uint32) {
	return uint32(rdev >> 8), uint32(rdev & 0xff)
}
