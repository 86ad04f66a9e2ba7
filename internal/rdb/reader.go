package rdb

import (
	"bufio"
	"io"
)

// Reader parses a snapshot stream entry by entry. It is not safe for
// concurrent use.
type Reader struct {
	r        *bufio.Reader
	db       int
	expireAt int64
}

// NewReader wraps src for parsing. Call ParseHeader before Next.
func NewReader(src io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(src)}
}

// ParseHeader validates the magic bytes and version. It must be called
// exactly once, before the first call to Next.
func (p *Reader) ParseHeader() error {
	magic := make([]byte, len(Magic))
	if _, err := io.ReadFull(p.r, magic); err != nil {
		return newErr(ErrKindIO, "read magic", err)
	}
	if string(magic) != Magic {
		return newErr(ErrKindInvalidMagic, "bad magic header", nil)
	}

	verBytes := make([]byte, 4)
	if _, err := io.ReadFull(p.r, verBytes); err != nil {
		return newErr(ErrKindIO, "read version", err)
	}
	version := 0
	for _, b := range verBytes {
		if b < '0' || b > '9' {
			return newErr(ErrKindUnsupportedVersion, "non-numeric version field", nil)
		}
		version = version*10 + int(b-'0')
	}
	if version != SupportedVersion {
		return newErr(ErrKindUnsupportedVersion, "unsupported RDB version", nil)
	}
	return nil
}

// Next returns the next key/value entry, or io.EOF once the stream's EOF
// opcode has been consumed. An expiry opcode attaches to exactly the
// entry immediately following it; if that opcode is itself EOF, the
// pending expiry is simply discarded.
func (p *Reader) Next() (*Entry, error) {
	for {
		opcode, err := p.r.ReadByte()
		if err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, newErr(ErrKindIO, "read opcode", err)
		}

		switch opcode {
		case OpExpireTimeMS:
			ms, err := readUint64BE(p.r)
			if err != nil {
				return nil, newErr(ErrKindIO, "read expiretime_ms", err)
			}
			p.expireAt = int64(ms)
			continue

		case OpExpireTime:
			sec, err := readUint64BE(p.r)
			if err != nil {
				return nil, newErr(ErrKindIO, "read expiretime", err)
			}
			p.expireAt = int64(sec) * 1000
			continue

		case OpSelectDB:
			idx, _, err := readLength(p.r)
			if err != nil {
				return nil, newErr(ErrKindIO, "read selectdb index", err)
			}
			p.db = int(idx)
			continue

		case OpResizeDB:
			if _, _, err := readLength(p.r); err != nil {
				return nil, newErr(ErrKindIO, "read resizedb hash size", err)
			}
			if _, _, err := readLength(p.r); err != nil {
				return nil, newErr(ErrKindIO, "read resizedb expire size", err)
			}
			continue

		case OpAux:
			if _, err := readString(p.r); err != nil {
				return nil, newErr(ErrKindIO, "read aux key", err)
			}
			if _, err := readString(p.r); err != nil {
				return nil, newErr(ErrKindIO, "read aux value", err)
			}
			continue

		case OpEOF:
			p.expireAt = 0
			return nil, io.EOF

		default:
			return p.parseEntry(opcode)
		}
	}
}

func (p *Reader) parseEntry(typeByte byte) (*Entry, error) {
	key, err := readString(p.r)
	if err != nil {
		return nil, newErr(ErrKindIO, "read key", err)
	}

	entry := &Entry{
		DB:       p.db,
		Key:      key,
		Type:     typeByte,
		ExpireAt: p.expireAt,
	}
	p.expireAt = 0

	if typeByte == TypeString {
		val, err := readString(p.r)
		if err != nil {
			return nil, newErr(ErrKindIO, "read string value", err)
		}
		entry.Value = val
		return entry, nil
	}

	if err := skipValue(p.r, typeByte); err != nil {
		if rdbErr, ok := err.(*Error); ok {
			return nil, rdbErr
		}
		return nil, newErr(ErrKindIO, "read value", err)
	}
	return entry, nil
}

// Load drains every entry from src and invokes fn for each. It is the
// convenience path for seeding a store from a snapshot file.
func Load(src io.Reader, fn func(Entry) error) error {
	r := NewReader(src)
	if err := r.ParseHeader(); err != nil {
		return err
	}
	for {
		entry, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(*entry); err != nil {
			return err
		}
	}
}
