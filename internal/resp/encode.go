package resp

import (
	"errors"
	"strconv"
	"strings"
)

// ErrEmbeddedCRLF is returned by Encode when a SimpleString or Error frame
// contains a \r or \n, which the line-oriented grammar cannot represent.
var ErrEmbeddedCRLF = errors.New("resp: simple string/error must not contain CR or LF")

// Encode serializes f per the wire grammar.
func Encode(f Frame) ([]byte, error) {
	switch f.Kind {
	case KindSimpleString:
		if strings.ContainsAny(f.Str, "\r\n") {
			return nil, ErrEmbeddedCRLF
		}
		return []byte("+" + f.Str + "\r\n"), nil
	case KindError:
		if strings.ContainsAny(f.Str, "\r\n") {
			return nil, ErrEmbeddedCRLF
		}
		return []byte("-" + f.Str + "\r\n"), nil
	case KindInteger:
		return []byte(":" + strconv.FormatInt(f.Int, 10) + "\r\n"), nil
	case KindDouble:
		return []byte("," + strconv.FormatFloat(f.Double, 'g', -1, 64) + "\r\n"), nil
	case KindBoolean:
		if f.Bool {
			return []byte("#t\r\n"), nil
		}
		return []byte("#f\r\n"), nil
	case KindNull:
		return []byte("_\r\n"), nil
	case KindBulkString:
		if f.IsNull {
			return []byte("$-1\r\n"), nil
		}
		buf := make([]byte, 0, len(f.Bulk)+16)
		buf = append(buf, '$')
		buf = strconv.AppendInt(buf, int64(len(f.Bulk)), 10)
		buf = append(buf, '\r', '\n')
		buf = append(buf, f.Bulk...)
		buf = append(buf, '\r', '\n')
		return buf, nil
	case KindArray:
		buf := make([]byte, 0, 32)
		buf = append(buf, '*')
		buf = strconv.AppendInt(buf, int64(len(f.Items)), 10)
		buf = append(buf, '\r', '\n')
		for _, item := range f.Items {
			enc, err := Encode(item)
			if err != nil {
				return nil, err
			}
			buf = append(buf, enc...)
		}
		return buf, nil
	default:
		return nil, errors.New("resp: unknown frame kind")
	}
}
