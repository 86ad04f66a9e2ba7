package rdb

import (
	"bufio"
	"encoding/binary"
	"io"
)

// readLength parses the RDB variable-width length encoding. The top two
// bits of the first byte select the scheme; special reports whether the
// remaining six bits name an integer/LZF sub-encoding rather than a
// literal length.
func readLength(r *bufio.Reader) (length uint64, special bool, err error) {
	first, err := r.ReadByte()
	if err != nil {
		return 0, false, err
	}

	switch (first >> 6) & 0x03 {
	case 0:
		// 00|XXXXXX: 6-bit length.
		return uint64(first & 0x3F), false, nil

	case 1:
		// 01|XXXXXX XXXXXXXX: 14-bit length.
		next, err := r.ReadByte()
		if err != nil {
			return 0, false, err
		}
		return (uint64(first&0x3F) << 8) | uint64(next), false, nil

	case 2:
		switch first {
		case 0x80:
			var buf [4]byte
			if _, err := io.ReadFull(r, buf[:]); err != nil {
				return 0, false, err
			}
			return uint64(binary.BigEndian.Uint32(buf[:])), false, nil
		case 0x81:
			var buf [8]byte
			if _, err := io.ReadFull(r, buf[:]); err != nil {
				return 0, false, err
			}
			return binary.BigEndian.Uint64(buf[:]), false, nil
		default:
			return uint64(first & 0x3F), true, nil
		}

	default: // case 3
		// 11|XXXXXX: special encoding (integer or LZF string).
		return uint64(first & 0x3F), true, nil
	}
}

func readUint32BE(r *bufio.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

func readUint64BE(r *bufio.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}
