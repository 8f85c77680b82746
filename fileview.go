// fileview.go - the public Viewer type and its lifecycle
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

// Package fileview is an OS independent library for random-access
// typed-integer load/store operations against an ordinary on-disk
// file, managing a sliding memory-mapped window over that file rather
// than mapping it whole.
package fileview

import "fmt"

// Mode selects exactly one creation mode for Open.
type Mode int

const (
	// READONLY requires the file to exist; the Viewer is read-only.
	READONLY Mode = iota
	// EXISTING requires the file to exist; the Viewer is read-write.
	EXISTING
	// REGULAR creates the file if absent, truncating it to zero
	// length if it already exists; the Viewer is read-write.
	REGULAR
	// EXCLUSIVE creates the file; it is an error if it already exists.
	EXCLUSIVE
)

const (
	// MaxLen bounds file_length and every offset to guard offset+W
	// arithmetic against overflow (spec.md section 6: INT64_MAX/2,
	// preserved literally).
	MaxLen int64 = 1<<62 - 1

	// DefaultHint is the window-size hint used when a Viewer is
	// created without an explicit SetHint call.
	DefaultHint int32 = 16 << 20

	// windowCeiling bounds the derived window size regardless of
	// hint or file length (spec.md section 4.3 step 3).
	windowCeiling int64 = 1 << 30
)

// Viewer is the opaque handle to one open, memory-mapped file. None of
// its internals (file handle, mapping handle, mapped window) are
// observable to clients; a Viewer exclusively owns all of them.
type Viewer struct {
	be       backend
	readOnly bool
	hostLE   bool

	pathCopy string

	fileLength int64
	pageSize   int64
	hint       int32
	windowSize int64

	window      []byte
	windowFirst int64
	windowLast  int64

	dirty   bool
	tsDirty bool
}

// Open creates a Viewer over path using the given creation mode. On
// failure it returns a nil Viewer and a reported error (wrapping one
// of BAD_MODE, PATH_TRANSLATE, OPEN or LEN_QUERY, classifiable with
// errors.Is).
func Open(path string, mode Mode) (*Viewer, error) {
	if mode < READONLY || mode > EXCLUSIVE {
		return nil, Errno(BAD_MODE)
	}

	np, err := translatePath(path)
	if err != nil {
		return nil, err
	}

	be, err := openBackend(np, mode)
	if err != nil {
		if errno, ok := err.(Errno); ok {
			return nil, errno
		}
		return nil, fmt.Errorf("%w: %s", Errno(OPEN), err)
	}

	fileLength, err := be.length()
	if err != nil {
		be.close()
		return nil, fmt.Errorf("%w: %s", Errno(LEN_QUERY), err)
	}

	rawPageSize, err := be.granularity()
	if err != nil {
		be.close()
		return nil, fmt.Errorf("%w: %s", Errno(OPEN), err)
	}
	pageSize, err := probePageSize(rawPageSize)
	if err != nil {
		be.close()
		return nil, err
	}

	hostLE, err := probeEndian()
	if err != nil {
		be.close()
		return nil, err
	}

	v := &Viewer{
		be:          be,
		readOnly:    mode == READONLY,
		hostLE:      hostLE,
		pathCopy:    np,
		fileLength:  fileLength,
		pageSize:    pageSize,
		hint:        DefaultHint,
		windowFirst: -1,
		windowLast:  -1,
	}
	v.windowSize = computeWindowSize(v.hint, v.pageSize, v.fileLength)
	return v, nil
}

// Close flushes any dirty window, unmaps it, updates the file's
// last-modified timestamp if needed, and releases the file handle.
// Close is idempotent on a nil Viewer. Teardown failures are warnings,
// never fatal -- Close always runs every remaining step.
func Close(v *Viewer) {
	if v == nil {
		return
	}

	v.unmapCurrent()

	// Destroy any lingering mapping object (spec.md section 5's
	// teardown order: flush, unmap, destroy mapping object, update
	// timestamp, close handle). A no-op on POSIX.
	v.be.invalidate()

	if v.tsDirty {
		if err := v.be.setModTimeNow(); err != nil {
			warn("set mtime %s: %s", v.pathCopy, err)
		}
	}

	if err := v.be.close(); err != nil {
		warn("close %s: %s", v.pathCopy, err)
	}
}

// Writable reports whether v accepts writes.
func (v *Viewer) Writable() bool {
	return !v.readOnly
}

// GetLength returns the cached file length in O(1).
func (v *Viewer) GetLength() int64 {
	return v.fileLength
}

// SetLength resizes the backing file. It is a fatal fault to call this
// on a read-only Viewer. A no-op if newLen equals the current length.
// On success, window_size is recomputed (possibly invalidating the
// mapped window) and the timestamp-dirty flag is set.
func (v *Viewer) SetLength(newLen int64) error {
	if v.readOnly {
		return fault("SetLength on read-only viewer %s", v.pathCopy)
	}
	if newLen < 0 || newLen > MaxLen {
		return fault("SetLength(%d): out of range [0, %d]", newLen, MaxLen)
	}
	if newLen == v.fileLength {
		return nil
	}

	// Unmap (flushing first if dirty) against the file's current,
	// still-valid size before resizing underneath it: once the file
	// shrinks, a window mapped past the new end is no longer safe to
	// flush or touch.
	v.unmapCurrent()

	if err := v.be.setLength(newLen); err != nil {
		// Per spec.md section 9: on failure the cached length is
		// left untouched; on-disk length may now be stale.
		return err
	}

	v.fileLength = newLen
	v.tsDirty = true
	return v.recomputeWindowSize()
}

// SetHint changes the client's window-size hint. A no-op if unchanged.
// May unmap the current window if the derived window_size changes.
func (v *Viewer) SetHint(newHint int32) {
	if newHint == v.hint {
		return
	}
	v.hint = newHint
	if err := v.recomputeWindowSize(); err != nil {
		warn("recompute window after SetHint: %s", err)
	}
}

// Flush pushes dirty window bytes to the backing file. A no-op if no
// window is mapped or the window isn't dirty.
func (v *Viewer) Flush() error {
	if v.window == nil || !v.dirty {
		return nil
	}
	if err := v.be.flushWindow(v.window); err != nil {
		return err
	}
	v.dirty = false
	return nil
}
