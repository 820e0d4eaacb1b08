package redis

import (
	"strconv"

	"github.com/joomcode/errorx"
)

// AppendRequest appends the RESP serialization of req to buf.
// On argument conversion failure buf is returned unchanged together with an
// ErrArgumentType error; nothing is written in that case.
func AppendRequest(buf []byte, req Request) ([]byte, *errorx.Error) {
	out := appendHead(buf, '*', int64(len(req.Args)+1))
	out = appendHead(out, '$', int64(len(req.Cmd)))
	out = append(out, req.Cmd...)
	out = append(out, '\r', '\n')
	for i, arg := range req.Args {
		str, ok := ArgToString(arg)
		if !ok {
			return buf, ErrArgumentType.New("command argument is not serializable").
				WithProperty(EKCmd, req.Cmd).
				WithProperty(EKArgPos, i)
		}
		out = appendHead(out, '$', int64(len(str)))
		out = append(out, str...)
		out = append(out, '\r', '\n')
	}
	return out, nil
}

func appendHead(b []byte, t byte, i int64) []byte {
	b = append(b, t)
	b = strconv.AppendInt(b, i, 10)
	return append(b, '\r', '\n')
}
