package rdb

import (
	"bufio"
	"encoding/binary"
	"io"
)

// skipValue consumes the bytes for a value of the given type without
// retaining its contents, so the stream stays aligned for the next
// entry. Only the plain (non-ziplist/listpack/quicklist) encodings of
// each container type are named by this snapshot format's scope; a
// collection value always degrades to an empty string for the caller.
func skipValue(r *bufio.Reader, typeByte byte) error {
	switch typeByte {
	case TypeString:
		_, err := readString(r)
		return err

	case TypeList, TypeSet:
		size, _, err := readLength(r)
		if err != nil {
			return err
		}
		for i := uint64(0); i < size; i++ {
			if _, err := readString(r); err != nil {
				return err
			}
		}
		return nil

	case TypeHash:
		size, _, err := readLength(r)
		if err != nil {
			return err
		}
		for i := uint64(0); i < size; i++ {
			if _, err := readString(r); err != nil {
				return err
			}
			if _, err := readString(r); err != nil {
				return err
			}
		}
		return nil

	case TypeZSet:
		size, _, err := readLength(r)
		if err != nil {
			return err
		}
		for i := uint64(0); i < size; i++ {
			if _, err := readString(r); err != nil {
				return err
			}
			if err := skipZSetScore(r); err != nil {
				return err
			}
		}
		return nil

	default:
		return newErr(ErrKindInvalidType, "unsupported value type", nil)
	}
}

// skipZSetScore consumes an 8-byte IEEE-754 double, the encoding used by
// the modern (RDB_TYPE_ZSET_2-style) member score.
func skipZSetScore(r *bufio.Reader) error {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return err
	}
	_ = binary.LittleEndian.Uint64(buf[:])
	return nil
}
