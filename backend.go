// backend.go - mapping backend abstraction
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

package fileview

import "os"

// osOpenFlags translates a creation Mode into the os.OpenFile flags and
// permission bits shared by both platform backends. POSIX creation
// permissions are owner/group/other read+write, filtered by umask, per
// spec.md section 4.2; Windows ignores the permission bits.
func osOpenFlags(mode Mode) (flag int, perm os.FileMode, writable bool, err error) {
	switch mode {
	case READONLY:
		return os.O_RDONLY, 0, false, nil
	case EXISTING:
		return os.O_RDWR, 0, true, nil
	case REGULAR:
		return os.O_RDWR | os.O_CREATE | os.O_TRUNC, 0666, true, nil
	case EXCLUSIVE:
		return os.O_RDWR | os.O_CREATE | os.O_EXCL, 0666, true, nil
	default:
		// Open already validates mode before reaching here; an
		// unrecognized mode at this point is an internal invariant
		// violation, not a user-correctable BAD_MODE (spec.md
		// section 7, fatal faults: "unrecognized creation mode in
		// an internal branch").
		return 0, 0, false, fault("osOpenFlags: unrecognized mode %d", mode)
	}
}

// backend is the thin, OS-specific shim over the host's mapping
// primitives. The Windowing Engine and Typed Access Layer never branch
// on platform; they only ever talk to this interface.
//
// Two implementations exist: backend_unix.go (mmap/munmap/msync,
// directly) and backend_windows.go (CreateFileMapping/MapViewOfFile,
// with the file-mapping object owned privately by the implementation).
type backend interface {
	// granularity returns the host's mapping granularity (page size on
	// POSIX, allocation granularity on Windows).
	granularity() (int64, error)

	// length returns the file's current byte length.
	length() (int64, error)

	// setLength resizes the backing file. On Windows this also
	// invalidates any lazily-created file-mapping object.
	setLength(newLen int64) error

	// mapWindow maps [fileOffset, fileOffset+length) with the given
	// protection. fileOffset must be a multiple of the granularity.
	mapWindow(fileOffset, length int64, writable bool) ([]byte, error)

	// unmapWindow unmaps a previously mapped window. Failure is a
	// warning, never fatal.
	unmapWindow(buf []byte) error

	// flushWindow synchronously pushes dirty bytes to the backing
	// file. Failure is never fatal: it is a warning when flushing
	// before an unmap, and is returned to the caller by Viewer.Flush.
	flushWindow(buf []byte) error

	// setModTimeNow sets the file's last-modified time to now.
	setModTimeNow() error

	// invalidate drops any cached mapping-object state (Windows only;
	// a no-op on POSIX) so the next mapWindow call picks up the
	// current file length. Close calls it; the Windows setLength also
	// calls it itself before resizing.
	invalidate()

	// close releases the file handle. Failure is a warning.
	close() error
}
