// io.go - streaming bulk export, adapted from the teacher's chunked
// mmap.Reader helper
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

import "io"

// WriteTo streams the entire file to w, window by window, without
// ever holding more than one window mapped at a time. It implements
// io.WriterTo. This is read-only: it never marks the viewer dirty and
// never changes window_size.
func (v *Viewer) WriteTo(w io.Writer) (int64, error) {
	var written int64

	for off := int64(0); off < v.fileLength; {
		if err := v.ensureWindow(off); err != nil {
			return written, err
		}

		start := off - v.windowFirst
		chunk := v.window[start:]

		n, err := w.Write(chunk)
		written += int64(n)
		if err != nil {
			return written, err
		}
		if n != len(chunk) {
			return written, io.ErrShortWrite
		}

		off = v.windowLast + 1
	}

	return written, nil
}
