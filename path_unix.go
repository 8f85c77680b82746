// path_unix.go - path encoding for unix-like systems
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

// translatePath passes the UTF-8 path through unchanged, per spec.md
// section 6: "On POSIX, the path is passed through unchanged."
func translatePath(path string) (string, error) {
	return path, nil
}
