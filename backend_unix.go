// backend_unix.go - mapping backend for unix-like systems
//
// (c) 2024- Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2
//
// If you need a commercial license for this work, please contact
// the author.
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

//go:build darwin || linux || freebsd || openbsd || solaris || netbsd || dragonfly

package fileview

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

type unixBackend struct {
	fd       *os.File
	path     string
	writable bool
}

func openBackend(path string, mode Mode) (backend, error) {
	flag, perm, writable, err := osOpenFlags(mode)
	if err != nil {
		return nil, err
	}

	fd, err := os.OpenFile(path, flag, perm)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	st, err := fd.Stat()
	if err != nil {
		fd.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !st.Mode().IsRegular() {
		fd.Close()
		return nil, fmt.Errorf("open %s: not a regular file", path)
	}

	return &unixBackend{fd: fd, path: path, writable: writable}, nil
}

func (b *unixBackend) granularity() (int64, error) {
	return int64(unix.Getpagesize()), nil
}

func (b *unixBackend) length() (int64, error) {
	st, err := b.fd.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", b.path, err)
	}
	return st.Size(), nil
}

// setLength grows the file with a seek to the new last byte and a
// single-byte write (leaving the extended region's contents undefined),
// and shrinks it with ftruncate, per spec.md section 4.2.
func (b *unixBackend) setLength(newLen int64) error {
	cur, err := b.length()
	if err != nil {
		return err
	}

	if newLen > cur {
		if _, err := b.fd.Seek(newLen-1, 0); err != nil {
			return fmt.Errorf("seek %s: %w", b.path, err)
		}
		if _, err := b.fd.Write([]byte{0}); err != nil {
			return fmt.Errorf("extend %s: %w", b.path, err)
		}
		return nil
	}

	if err := unix.Ftruncate(int(b.fd.Fd()), newLen); err != nil {
		return fmt.Errorf("truncate %s: %w", b.path, err)
	}
	return nil
}

func (b *unixBackend) mapWindow(fileOffset, length int64, writable bool) ([]byte, error) {
	prot := unix.PROT_READ
	if writable {
		prot |= unix.PROT_WRITE
	}

	buf, err := unix.Mmap(int(b.fd.Fd()), fileOffset, int(length), prot, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap %s: %d at %d: %w", b.path, length, fileOffset, err)
	}
	return buf, nil
}

func (b *unixBackend) unmapWindow(buf []byte) error {
	if err := unix.Munmap(buf); err != nil {
		return fmt.Errorf("munmap %s: %w", b.path, err)
	}
	return nil
}

func (b *unixBackend) flushWindow(buf []byte) error {
	if err := unix.Msync(buf, unix.MS_SYNC); err != nil {
		return fmt.Errorf("msync %s: %w", b.path, err)
	}
	return nil
}

func (b *unixBackend) setModTimeNow() error {
	now := time.Now()
	if err := os.Chtimes(b.path, now, now); err != nil {
		return fmt.Errorf("chtimes %s: %w", b.path, err)
	}
	return nil
}

// invalidate is a no-op on POSIX: mmap folds the Windows file-mapping
// object concept into the mapping call itself, so there is no separate
// handle to drop on resize.
func (b *unixBackend) invalidate() {}

func (b *unixBackend) close() error {
	if err := b.fd.Close(); err != nil {
		return fmt.Errorf("close %s: %w", b.path, err)
	}
	return nil
}
