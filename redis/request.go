package redis

import "strconv"

// Req is a shortcut to build Request.
func Req(cmd string, args ...interface{}) Request {
	return Request{cmd, args}
}

// Request is a single redis command with arguments.
type Request struct {
	Cmd  string
	Args []interface{}
}

// Future is the completion handle stored with every in-flight request.
// Resolve is called exactly once with the reply value (or error) and the
// number the request was sent with.
type Future interface {
	Resolve(res interface{}, n uint64)
	Cancelled() bool
}

// FuncFuture adapts a plain function to Future.
type FuncFuture func(res interface{}, n uint64)

// Cancelled implements Future.
func (f FuncFuture) Cancelled() bool { return false }

// Resolve implements Future.
func (f FuncFuture) Resolve(res interface{}, n uint64) { f(res, n) }

// ArgToString converts an argument to its bulk-string form.
// Returns false if the argument type is not serializable.
func ArgToString(arg interface{}) (string, bool) {
	switch v := arg.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	case int:
		return strconv.FormatInt(int64(v), 10), true
	case uint:
		return strconv.FormatUint(uint64(v), 10), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	case int32:
		return strconv.FormatInt(int64(v), 10), true
	case uint32:
		return strconv.FormatUint(uint64(v), 10), true
	case int16:
		return strconv.FormatInt(int64(v), 10), true
	case uint16:
		return strconv.FormatUint(uint64(v), 10), true
	case int8:
		return strconv.FormatInt(int64(v), 10), true
	case uint8:
		return strconv.FormatUint(uint64(v), 10), true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		if v {
			return "1", true
		}
		return "0", true
	case nil:
		return "", true
	default:
		return "", false
	}
}
