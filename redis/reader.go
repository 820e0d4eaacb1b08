package redis

import (
	"bufio"
	"io"
)

// ReadResponse reads a single RESP reply from b.
//
// Reply values map to go types as follows: status string - string,
// integer - int64, bulk string - []byte, nil reply - nil, array -
// []interface{} (possibly nested). Server error replies come back as
// *errorx.Error of type ErrResult; everything else error-shaped is a hard
// io/protocol error.
func ReadResponse(b *bufio.Reader) interface{} {
	line, isPrefix, err := b.ReadLine()
	if err != nil {
		return ErrIO.Wrap(err, "request failed")
	}

	if isPrefix {
		// line is the reader's internal buffer here, may be shorter than 128
		head := line
		if len(head) > 128 {
			head = head[:128]
		}
		return ErrHeaderlineTooLarge.NewWithNoMessage().WithProperty(EKLine, string(head))
	}

	if len(line) == 0 {
		return ErrHeaderlineEmpty.NewWithNoMessage()
	}

	var v int64
	switch line[0] {
	case '+':
		return string(line[1:])
	case '-':
		return ErrResult.New(string(line[1:]))
	case ':':
		if v, err = parseInt(line[1:]); err != nil {
			return err
		}
		return v
	case '$':
		if v, err = parseInt(line[1:]); err != nil {
			return err
		}
		if v < 0 {
			return nil
		}
		buf := make([]byte, v+2)
		if _, err = io.ReadFull(b, buf); err != nil {
			return ErrIO.Wrap(err, "request failed")
		}
		if buf[v] != '\r' || buf[v+1] != '\n' {
			return ErrNoFinalRN.NewWithNoMessage()
		}
		return buf[:v:v]
	case '*':
		if v, err = parseInt(line[1:]); err != nil {
			return err
		}
		if v < 0 {
			return nil
		}
		result := make([]interface{}, v)
		for i := int64(0); i < v; i++ {
			result[i] = ReadResponse(b)
			// nested io/protocol errors leave the stream desynced,
			// fail the whole array
			if e := AsErrorx(result[i]); e != nil && HardError(e) {
				return e
			}
		}
		return result
	default:
		return ErrUnknownHeaderType.NewWithNoMessage().WithProperty(EKLine, string(line))
	}
}

func parseInt(buf []byte) (int64, error) {
	if len(buf) == 0 {
		return 0, ErrIntegerParsing.NewWithNoMessage()
	}
	neg := buf[0] == '-'
	if neg {
		buf = buf[1:]
		if len(buf) == 0 {
			return 0, ErrIntegerParsing.NewWithNoMessage()
		}
	}
	v := int64(0)
	for _, b := range buf {
		if b < '0' || b > '9' {
			return 0, ErrIntegerParsing.NewWithNoMessage()
		}
		v *= 10
		v += int64(b - '0')
	}
	if neg {
		v = -v
	}
	return v, nil
}
