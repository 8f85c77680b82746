// helpers_test.go - shared test scaffolding
//
// (c) 2024- Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2

package fileview_test

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	fileview "github.com/opencoff/go-fileview"
)

func newAsserter(t *testing.T) func(cond bool, format string, args ...interface{}) {
	t.Helper()
	return func(cond bool, format string, args ...interface{}) {
		if !cond {
			t.Helper()
			t.Fatalf(format, args...)
		}
	}
}

func tmpName(t *testing.T) string {
	dn := t.TempDir()
	return filepath.Join(dn, fmt.Sprintf("tmp%d-%x", os.Getpid(), randU32()))
}

func randU32() uint32 {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func mustCreate(t *testing.T, size int64) (*fileview.Viewer, string) {
	t.Helper()
	name := tmpName(t)
	v, err := fileview.Open(name, fileview.EXCLUSIVE)
	if err != nil {
		t.Fatalf("create %s: %s", name, err)
	}
	if size > 0 {
		if err := v.SetLength(size); err != nil {
			t.Fatalf("set length %s: %s", name, err)
		}
	}
	return v, name
}
