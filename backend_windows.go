// backend_windows.go - mapping backend for windows
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

//go:build windows

package fileview

import (
	"fmt"
	"os"
	"reflect"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

// windowsBackend lazily creates the Win32 file-mapping object on first
// map and destroys it on resize or close; this is the "mapping handle"
// the data model calls out as Windows-only internal state (spec.md
// section 3, section 4.3 "Mapping lifecycle").
type windowsBackend struct {
	fd       *os.File
	path     string
	writable bool
	mapping  windows.Handle // 0 iff none
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

	return &windowsBackend{fd: fd, path: path, writable: writable}, nil
}

func (b *windowsBackend) granularity() (int64, error) {
	var info windows.SystemInfo
	windows.GetSystemInfo(&info)
	return int64(info.AllocationGranularity), nil
}

func (b *windowsBackend) length() (int64, error) {
	st, err := b.fd.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", b.path, err)
	}
	return st.Size(), nil
}

// setLength uses SetFilePointer + SetEndOfFile for both growth and
// shrink -- Windows has no separate truncate primitive (spec.md
// section 4.2). This always invalidates any existing file-mapping
// object: its maximum size was baked in at creation time.
func (b *windowsBackend) setLength(newLen int64) error {
	b.invalidate()

	h := windows.Handle(b.fd.Fd())
	lo := int32(uint32(newLen & 0xffffffff))
	hi := int32(uint32(newLen >> 32))
	if _, err := windows.SetFilePointer(h, lo, &hi, windows.FILE_BEGIN); err != nil {
		return fmt.Errorf("%s: SetFilePointer: %w", b.path, err)
	}
	if err := windows.SetEndOfFile(h); err != nil {
		return fmt.Errorf("%s: SetEndOfFile: %w", b.path, err)
	}
	return nil
}

// ensureMapping lazily creates the file-mapping object. The protection
// is PAGE_READONLY iff the viewer is read-only, else PAGE_READWRITE --
// the intended semantics of the source's brace-bug branch (spec.md
// section 9 open question), implemented unambiguously.
func (b *windowsBackend) ensureMapping(length int64) error {
	if b.mapping != 0 {
		return nil
	}

	prot := uint32(windows.PAGE_READONLY)
	if b.writable {
		prot = windows.PAGE_READWRITE
	}

	maxSz := uint64(length)
	maxHi := uint32(maxSz >> 32)
	maxLo := uint32(maxSz & 0xffffffff)

	h, err := windows.CreateFileMapping(windows.Handle(b.fd.Fd()), nil, prot, maxHi, maxLo, nil)
	if err != nil {
		return fmt.Errorf("%s: CreateFileMapping: %w", b.path, err)
	}
	b.mapping = h
	return nil
}

func (b *windowsBackend) mapWindow(fileOffset, length int64, writable bool) ([]byte, error) {
	fileLen, err := b.length()
	if err != nil {
		return nil, err
	}
	if err := b.ensureMapping(fileLen); err != nil {
		return nil, err
	}

	access := uint32(windows.FILE_MAP_READ)
	if writable {
		access = windows.FILE_MAP_WRITE
	}

	offHi := uint32(uint64(fileOffset) >> 32)
	offLo := uint32(uint64(fileOffset) & 0xffffffff)

	addr, err := windows.MapViewOfFile(b.mapping, access, offHi, offLo, uintptr(length))
	if err != nil {
		return nil, fmt.Errorf("%s: MapViewOfFile %d at %d: %w", b.path, length, fileOffset, err)
	}

	var buf []byte
	sh := (*reflect.SliceHeader)(unsafe.Pointer(&buf))
	sh.Data = addr
	sh.Len = int(length)
	sh.Cap = int(length)
	return buf, nil
}

func (b *windowsBackend) unmapWindow(buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	addr := uintptr(unsafe.Pointer(&buf[0]))
	if err := windows.UnmapViewOfFile(addr); err != nil {
		return fmt.Errorf("%s: UnmapViewOfFile: %w", b.path, err)
	}
	return nil
}

func (b *windowsBackend) flushWindow(buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	addr := uintptr(unsafe.Pointer(&buf[0]))
	if err := windows.FlushViewOfFile(addr, uintptr(len(buf))); err != nil {
		return fmt.Errorf("%s: FlushViewOfFile: %w", b.path, err)
	}
	if b.writable {
		if err := windows.FlushFileBuffers(windows.Handle(b.fd.Fd())); err != nil {
			return fmt.Errorf("%s: FlushFileBuffers: %w", b.path, err)
		}
	}
	return nil
}

func (b *windowsBackend) setModTimeNow() error {
	now := time.Now()
	if err := os.Chtimes(b.path, now, now); err != nil {
		return fmt.Errorf("chtimes %s: %w", b.path, err)
	}
	return nil
}

func (b *windowsBackend) invalidate() {
	if b.mapping != 0 {
		windows.CloseHandle(b.mapping)
		b.mapping = 0
	}
}

func (b *windowsBackend) close() error {
	b.invalidate()
	if err := b.fd.Close(); err != nil {
		return fmt.Errorf("close %s: %w", b.path, err)
	}
	return nil
}
