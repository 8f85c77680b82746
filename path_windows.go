// path_windows.go - path encoding for windows
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

import "golang.org/x/sys/windows"

// translatePath converts a UTF-8 input path to the host's native
// wide-character encoding, surfacing any conversion failure
// as PATH_TRANSLATE (spec.md section 6). The UTF-8 string itself is
// what's actually passed on to os.OpenFile -- the os package performs
// the same UTF16 conversion internally -- this step exists purely to
// validate the path up front and report PATH_TRANSLATE rather than a
// generic OPEN failure.
func translatePath(path string) (string, error) {
	if _, err := windows.UTF16FromString(path); err != nil {
		return "", Errno(PATH_TRANSLATE)
	}
	return path, nil
}
