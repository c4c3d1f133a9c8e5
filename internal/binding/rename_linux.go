//go:build linux

package binding

import (
	"os"

	"golang.org/x/sys/unix"
)

// atomicReplace renames oldpath over newpath using renameat2(2) with no
// flags, which on Linux is guaranteed atomic even across the replace of an
// existing destination (unlike a plain rename(2) on some older
// filesystems). Falls back to os.Rename if the syscall isn't available
// (e.g. a kernel predating renameat2, or a filesystem that doesn't support
// it), which is always safe, just not guaranteed atomic in every case.
func atomicReplace(oldpath, newpath string) error {
	err := unix.Renameat2(unix.AT_FDCWD, oldpath, unix.AT_FDCWD, newpath, 0)
	if err == nil {
		return nil
	}
	if err == unix.ENOSYS || err == unix.EINVAL {
		return os.Rename(oldpath, newpath)
	}
	return err
}
