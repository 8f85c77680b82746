// window.go - the windowing engine: window sizing, selection, remap
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

// computeWindowSize derives the actual window size from a client hint,
// the host page size and the current file length, per spec.md section
// 4.3 steps 1-5.
func computeWindowSize(hint int32, pageSize, fileLength int64) int64 {
	wl := int64(hint)

	if wl < pageSize {
		wl = pageSize
	}
	if wl > windowCeiling {
		wl = windowCeiling
	}
	if rem := wl % pageSize; rem != 0 {
		wl += pageSize - rem
	}
	if wl > fileLength {
		wl = fileLength
	}
	return wl
}

// recomputeWindowSize recomputes window_size from the current hint,
// page size and file length. If the result differs from the prior
// value, any mapped window is invalidated (unmapped, flushing first if
// dirty) per spec.md section 4.3.
func (v *Viewer) recomputeWindowSize() error {
	newSize := computeWindowSize(v.hint, v.pageSize, v.fileLength)
	if newSize == v.windowSize {
		return nil
	}
	v.windowSize = newSize
	v.unmapCurrent()
	return nil
}

// ensureWindow guarantees that byte offset b is covered by the mapped
// window, remapping on a miss. Callers must have already validated
// 0 <= b < file_length.
func (v *Viewer) ensureWindow(b int64) error {
	if v.window != nil && v.windowFirst <= b && b <= v.windowLast {
		return nil
	}

	v.unmapCurrent()
	return v.mapFor(b)
}

// unmapCurrent flushes (if dirty) and unmaps the currently mapped
// window, if any. Both flush and unmap failures are warnings, never
// fatal: the viewer must still make progress through teardown, so
// unmapCurrent itself cannot fail.
func (v *Viewer) unmapCurrent() {
	if v.window == nil {
		return
	}

	if v.dirty {
		if err := v.be.flushWindow(v.window); err != nil {
			warn("flush %s: %s", v.pathCopy, err)
		} else {
			v.dirty = false
		}
	}

	if err := v.be.unmapWindow(v.window); err != nil {
		warn("unmap %s: %s", v.pathCopy, err)
	}

	v.window = nil
	v.windowFirst = -1
	v.windowLast = -1
}

// mapFor maps the window that covers byte offset b.
func (v *Viewer) mapFor(b int64) error {
	if v.windowSize == 0 {
		return fault("mapFor called with zero window size (offset %d)", b)
	}

	newFirst := (b / v.windowSize) * v.windowSize
	newLen := v.windowSize
	if newFirst+newLen > v.fileLength {
		newLen = v.fileLength - newFirst
	}

	buf, err := v.be.mapWindow(newFirst, newLen, !v.readOnly)
	if err != nil {
		return fault("map window at %d: %s", newFirst, err)
	}

	v.window = buf
	v.windowFirst = newFirst
	v.windowLast = newFirst + newLen - 1
	return nil
}
