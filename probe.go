// probe.go - one-shot platform probe: endianness and page size
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

// probeEndian writes -2 as a signed 16-bit value via the host's native
// byte order and checks the resulting byte pattern. 0xFE 0xFF means
// little-endian two's complement; 0xFF 0xFE means big-endian two's
// complement. Anything else means the host isn't two's complement (or
// NativeEndian lied to us), and that is a fatal, unrecoverable
// assumption violation.
func probeEndian() (littleEndian bool, err error) {
	var buf [2]byte
	binary.NativeEndian.PutUint16(buf[:], uint16(int16(-2)))

	switch {
	case buf[0] == 0xFE && buf[1] == 0xFF:
		return true, nil
	case buf[0] == 0xFF && buf[1] == 0xFE:
		return false, nil
	default:
		return false, fault("host is not two's complement (probe bytes %x %x)", buf[0], buf[1])
	}
}

// probePageSize validates a mapping granularity reported by the backend.
func probePageSize(sz int64) (int64, error) {
	if sz < 8 || sz%8 != 0 {
		return 0, fault("bad page size %d: must be >= 8 and a multiple of 8", sz)
	}
	return sz, nil
}
