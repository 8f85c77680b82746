// errno.go - reported error codes and the fault/warn handler registry
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

import (
	"fmt"
	"os"
	"runtime"
	"sync"
)

// Errno is the small, fixed set of reported error codes returned at the
// API boundary by Open and SetLength. It does not cover mapping, flush,
// unmap or timestamp failures: a refused window mapping is a fatal
// fault, flush/unmap/timestamp failures during remap or Close are
// warnings (see FaultHandler and WarnHandler below), and an explicit
// Flush returns its failure as a plain error.
type Errno int

const (
	NONE Errno = iota
	BAD_MODE
	PATH_TRANSLATE
	OPEN
	LEN_QUERY
)

var errnoStrings = [...]string{
	NONE:           "no error",
	BAD_MODE:       "invalid creation mode",
	PATH_TRANSLATE: "path encoding conversion failed",
	OPEN:           "open failed",
	LEN_QUERY:      "length query failed",
}

// Errstr returns a static, human readable string for an Errno.
func Errstr(e Errno) string {
	if int(e) < 0 || int(e) >= len(errnoStrings) {
		return "unknown error"
	}
	return errnoStrings[e]
}

func (e Errno) Error() string {
	return Errstr(e)
}

// FaultHandler is invoked for programming errors and invariant
// violations that cannot be locally recovered (spec: "Fatal faults").
// The default handler prints the caller's location and message to
// stderr and terminates the process.
type FaultHandler func(msg string)

// WarnHandler is invoked for non-fatal OS failures encountered during
// teardown (unmap, flush, close). The default handler prints the
// caller's location and message to stderr and returns.
type WarnHandler func(msg string)

var (
	handlerMu    sync.Mutex
	faultHandler FaultHandler = defaultFaultHandler
	warnHandler  WarnHandler  = defaultWarnHandler
)

// SetFaultHandler installs a process-wide fault handler. Last writer
// wins; callers should install a handler before creating any Viewer.
func SetFaultHandler(h FaultHandler) {
	handlerMu.Lock()
	defer handlerMu.Unlock()
	if h == nil {
		h = defaultFaultHandler
	}
	faultHandler = h
}

// SetWarnHandler installs a process-wide warn handler. Last writer
// wins; callers should install a handler before creating any Viewer.
func SetWarnHandler(h WarnHandler) {
	handlerMu.Lock()
	defer handlerMu.Unlock()
	if h == nil {
		h = defaultWarnHandler
	}
	warnHandler = h
}

func defaultFaultHandler(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(2)
}

func defaultWarnHandler(msg string) {
	fmt.Fprintln(os.Stderr, msg)
}

// fault reports a fatal invariant violation. The installed handler may
// terminate the process; if it returns (a caller installed a
// non-terminating handler), fault still returns an error so the call
// site can unwind.
func fault(format string, args ...any) error {
	_, file, line, ok := runtime.Caller(1)
	msg := fmt.Sprintf(format, args...)
	if ok {
		msg = fmt.Sprintf("%s:%d: fatal: %s", file, line, msg)
	} else {
		msg = fmt.Sprintf("fatal: %s", msg)
	}

	handlerMu.Lock()
	h := faultHandler
	handlerMu.Unlock()

	h(msg)
	return fmt.Errorf("%s", msg)
}

// warn reports a non-fatal teardown failure.
func warn(format string, args ...any) {
	_, file, line, ok := runtime.Caller(1)
	msg := fmt.Sprintf(format, args...)
	if ok {
		msg = fmt.Sprintf("%s:%d: warning: %s", file, line, msg)
	} else {
		msg = fmt.Sprintf("warning: %s", msg)
	}

	handlerMu.Lock()
	h := warnHandler
	handlerMu.Unlock()

	h(msg)
}
