package rdb

import (
	"bufio"
	"encoding/binary"
	"io"
	"strconv"

	lzf "github.com/zhuyie/golzf"
)

// readString decodes one RDB string value: a length-prefixed byte run,
// or — when the length's top bits name a special encoding — an integer
// stored inline or an LZF-compressed payload.
func readString(r *bufio.Reader) (string, error) {
	length, special, err := readLength(r)
	if err != nil {
		return "", err
	}
	if special {
		return readEncodedString(r, length)
	}
	if length == 0 {
		return "", nil
	}

	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func readEncodedString(r *bufio.Reader, encoding uint64) (string, error) {
	switch encoding {
	case EncInt8:
		b, err := r.ReadByte()
		if err != nil {
			return "", err
		}
		return strconv.Itoa(int(int8(b))), nil

	case EncInt16:
		var buf [2]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return "", err
		}
		v := int16(binary.BigEndian.Uint16(buf[:]))
		return strconv.Itoa(int(v)), nil

	case EncInt32:
		v, err := readUint32BE(r)
		if err != nil {
			return "", err
		}
		return strconv.Itoa(int(int32(v))), nil

	case EncLZF:
		return readLZFString(r)

	default:
		return "", newErr(ErrKindInvalidType, "unsupported string encoding", nil)
	}
}

// readLZFString decodes the LZF container format: a length-encoded
// compressed size, a length-encoded original size, then the compressed
// payload itself.
func readLZFString(r *bufio.Reader) (string, error) {
	compressedLen, _, err := readLength(r)
	if err != nil {
		return "", err
	}
	originalLen, _, err := readLength(r)
	if err != nil {
		return "", err
	}

	compressed := make([]byte, compressedLen)
	if _, err := io.ReadFull(r, compressed); err != nil {
		return "", err
	}

	dst := make([]byte, originalLen)
	n, err := lzf.Decompress(compressed, dst)
	if err != nil {
		return "", newErr(ErrKindInvalidLength, "LZF decompression failed", err)
	}
	if uint64(n) != originalLen {
		return "", newErr(ErrKindInvalidLength, "LZF decompressed length mismatch", nil)
	}
	return string(dst), nil
}
