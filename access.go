// access.go - the typed load/store surface
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

import "encoding/binary"

// uword is the set of unsigned integer widths the Typed Access Layer
// understands; signed reads/writes reinterpret the same bit pattern.
type uword interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

func byteOrder(le bool) binary.ByteOrder {
	if le {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// checkAccess enforces the Typed Access Layer's preconditions (spec.md
// section 4.4): all violations are fatal faults, not reported errors.
func (v *Viewer) checkAccess(offset int64, width int, forWrite bool) error {
	if offset < 0 || offset >= MaxLen {
		return fault("offset %d out of range [0, %d)", offset, MaxLen)
	}
	if offset+int64(width) > v.fileLength {
		return fault("access at %d width %d exceeds file length %d", offset, width, v.fileLength)
	}
	if forWrite && v.readOnly {
		return fault("write at %d on read-only viewer %q", offset, v.pathCopy)
	}
	return nil
}

// loadInt reads width bytes at offset as an unsigned accumulator. The
// aligned case is the fast path (single window check, direct decode);
// the unaligned case recurses into two half-width aligned accesses,
// which always terminates at width 1 (trivially aligned).
func (v *Viewer) loadInt(offset int64, width int, le bool) (uint64, error) {
	if width == 1 {
		return v.loadByte(offset)
	}
	if offset%int64(width) == 0 {
		return v.loadAligned(offset, width, le)
	}

	half := width / 2
	bits := uint(half) * 8

	lo, err := v.loadInt(offset, half, le)
	if err != nil {
		return 0, err
	}
	hi, err := v.loadInt(offset+int64(half), half, le)
	if err != nil {
		return 0, err
	}

	if le {
		return (hi << bits) | lo, nil
	}
	return (lo << bits) | hi, nil
}

func (v *Viewer) loadByte(offset int64) (uint64, error) {
	if err := v.ensureWindow(offset); err != nil {
		return 0, err
	}
	return uint64(v.window[offset-v.windowFirst]), nil
}

func (v *Viewer) loadAligned(offset int64, width int, le bool) (uint64, error) {
	if err := v.ensureWindow(offset + int64(width) - 1); err != nil {
		return 0, err
	}

	start := offset - v.windowFirst
	buf := v.window[start : start+int64(width)]
	order := byteOrder(le)

	switch width {
	case 2:
		return uint64(order.Uint16(buf)), nil
	case 4:
		return uint64(order.Uint32(buf)), nil
	case 8:
		return order.Uint64(buf), nil
	default:
		return 0, fault("loadAligned: unsupported width %d", width)
	}
}

// storeInt is the write-side mirror of loadInt.
func (v *Viewer) storeInt(offset int64, width int, le bool, value uint64) error {
	if width == 1 {
		return v.storeByte(offset, byte(value))
	}
	if offset%int64(width) == 0 {
		return v.storeAligned(offset, width, le, value)
	}

	half := width / 2
	bits := uint(half) * 8
	mask := uint64(1)<<bits - 1

	var loVal, hiVal uint64
	if le {
		loVal = value & mask
		hiVal = (value >> bits) & mask
	} else {
		hiVal = value & mask
		loVal = (value >> bits) & mask
	}

	if err := v.storeInt(offset, half, le, loVal); err != nil {
		return err
	}
	return v.storeInt(offset+int64(half), half, le, hiVal)
}

func (v *Viewer) storeByte(offset int64, b byte) error {
	if err := v.ensureWindow(offset); err != nil {
		return err
	}
	v.window[offset-v.windowFirst] = b
	v.markDirty()
	return nil
}

func (v *Viewer) storeAligned(offset int64, width int, le bool, value uint64) error {
	if err := v.ensureWindow(offset + int64(width) - 1); err != nil {
		return err
	}

	start := offset - v.windowFirst
	buf := v.window[start : start+int64(width)]
	order := byteOrder(le)

	switch width {
	case 2:
		order.PutUint16(buf, uint16(value))
	case 4:
		order.PutUint32(buf, uint32(value))
	case 8:
		order.PutUint64(buf, value)
	default:
		return fault("storeAligned: unsupported width %d", width)
	}
	v.markDirty()
	return nil
}

func (v *Viewer) markDirty() {
	v.dirty = true
	v.tsDirty = true
}

func readWidth[T uword](v *Viewer, offset int64, width int, le bool) (T, error) {
	if err := v.checkAccess(offset, width, false); err != nil {
		return 0, err
	}
	raw, err := v.loadInt(offset, width, le)
	return T(raw), err
}

func writeWidth[T uword](v *Viewer, offset int64, width int, le bool, val T) error {
	if err := v.checkAccess(offset, width, true); err != nil {
		return err
	}
	return v.storeInt(offset, width, le, uint64(val))
}

// Read8U reads an unsigned 8-bit integer at offset.
func (v *Viewer) Read8U(offset int64) (uint8, error) { return readWidth[uint8](v, offset, 1, true) }

// Read8S reads a signed 8-bit integer at offset.
func (v *Viewer) Read8S(offset int64) (int8, error) {
	u, err := readWidth[uint8](v, offset, 1, true)
	return int8(u), err
}

// Write8U writes an unsigned 8-bit integer at offset.
func (v *Viewer) Write8U(offset int64, val uint8) error {
	return writeWidth(v, offset, 1, true, val)
}

// Write8S writes a signed 8-bit integer at offset.
func (v *Viewer) Write8S(offset int64, val int8) error {
	return writeWidth(v, offset, 1, true, uint8(val))
}

// Read16U reads an unsigned 16-bit integer at offset, in the given
// byte order.
func (v *Viewer) Read16U(offset int64, le bool) (uint16, error) {
	return readWidth[uint16](v, offset, 2, le)
}

// Read16S reads a signed 16-bit integer at offset, in the given byte
// order.
func (v *Viewer) Read16S(offset int64, le bool) (int16, error) {
	u, err := readWidth[uint16](v, offset, 2, le)
	return int16(u), err
}

// Write16U writes an unsigned 16-bit integer at offset, in the given
// byte order.
func (v *Viewer) Write16U(offset int64, le bool, val uint16) error {
	return writeWidth(v, offset, 2, le, val)
}

// Write16S writes a signed 16-bit integer at offset, in the given
// byte order.
func (v *Viewer) Write16S(offset int64, le bool, val int16) error {
	return writeWidth(v, offset, 2, le, uint16(val))
}

// Read32U reads an unsigned 32-bit integer at offset, in the given
// byte order.
func (v *Viewer) Read32U(offset int64, le bool) (uint32, error) {
	return readWidth[uint32](v, offset, 4, le)
}

// Read32S reads a signed 32-bit integer at offset, in the given byte
// order.
func (v *Viewer) Read32S(offset int64, le bool) (int32, error) {
	u, err := readWidth[uint32](v, offset, 4, le)
	return int32(u), err
}

// Write32U writes an unsigned 32-bit integer at offset, in the given
// byte order.
func (v *Viewer) Write32U(offset int64, le bool, val uint32) error {
	return writeWidth(v, offset, 4, le, val)
}

// Write32S writes a signed 32-bit integer at offset, in the given
// byte order.
func (v *Viewer) Write32S(offset int64, le bool, val int32) error {
	return writeWidth(v, offset, 4, le, uint32(val))
}

// Read64U reads an unsigned 64-bit integer at offset, in the given
// byte order.
func (v *Viewer) Read64U(offset int64, le bool) (uint64, error) {
	return readWidth[uint64](v, offset, 8, le)
}

// Read64S reads a signed 64-bit integer at offset, in the given byte
// order.
func (v *Viewer) Read64S(offset int64, le bool) (int64, error) {
	u, err := readWidth[uint64](v, offset, 8, le)
	return int64(u), err
}

// Write64U writes an unsigned 64-bit integer at offset, in the given
// byte order.
func (v *Viewer) Write64U(offset int64, le bool, val uint64) error {
	return writeWidth(v, offset, 8, le, val)
}

// Write64S writes a signed 64-bit integer at offset, in the given
// byte order.
func (v *Viewer) Write64S(offset int64, le bool, val int64) error {
	return writeWidth(v, offset, 8, le, uint64(val))
}
