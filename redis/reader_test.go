package redis_test

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/joomcode/errorx"
	"github.com/stretchr/testify/assert"

	. "github.com/redisq/redisq/redis"
)

func lines2bufio(lines ...string) *bufio.Reader {
	buf := []byte(strings.Join(lines, ""))
	return bufio.NewReader(bytes.NewReader(buf))
}

func readLines(lines ...string) interface{} {
	return ReadResponse(lines2bufio(lines...))
}

func checkErrType(t *testing.T, res interface{}, typ *errorx.Type) bool {
	if assert.IsType(t, (*errorx.Error)(nil), res) {
		err := res.(*errorx.Error)
		return assert.True(t, err.IsOfType(typ), "expected %v, got %v", typ, err)
	}
	return false
}

func TestReadResponse_IOAndFormatErrors(t *testing.T) {
	var res interface{}

	res = readLines("")
	checkErrType(t, res, ErrIO)

	res = readLines("\n")
	checkErrType(t, res, ErrHeaderlineEmpty)

	res = readLines("\r\n")
	checkErrType(t, res, ErrHeaderlineEmpty)

	res = readLines("$\r\n")
	checkErrType(t, res, ErrIntegerParsing)

	res = readLines("/\r\n")
	checkErrType(t, res, ErrUnknownHeaderType)

	res = readLines("+" + strings.Repeat("A", 1024*1024) + "\r\n")
	checkErrType(t, res, ErrHeaderlineTooLarge)

	// same overflow with a reader buffer smaller than the attached line prefix
	small := bufio.NewReaderSize(bytes.NewReader([]byte("+"+strings.Repeat("A", 200)+"\r\n")), 16)
	checkErrType(t, ReadResponse(small), ErrHeaderlineTooLarge)

	res = readLines(":\r\n")
	checkErrType(t, res, ErrIntegerParsing)

	res = readLines(":1.1\r\n")
	checkErrType(t, res, ErrIntegerParsing)

	res = readLines(":a\r\n")
	checkErrType(t, res, ErrIntegerParsing)

	res = readLines(":-\r\n")
	checkErrType(t, res, ErrIntegerParsing)

	res = readLines("$a\r\n")
	checkErrType(t, res, ErrIntegerParsing)

	res = readLines("*a\r\n")
	checkErrType(t, res, ErrIntegerParsing)

	res = readLines("$0\r\n")
	checkErrType(t, res, ErrIO)

	res = readLines("$1\r\n")
	checkErrType(t, res, ErrIO)

	res = readLines("$1\r\na")
	checkErrType(t, res, ErrIO)

	res = readLines("$1\r\nabc")
	checkErrType(t, res, ErrNoFinalRN)

	res = readLines("*1\r\n")
	checkErrType(t, res, ErrIO)

	res = readLines("*1\r\n:a\r\n")
	checkErrType(t, res, ErrIntegerParsing)
}

func TestReadResponse_Values(t *testing.T) {
	var res interface{}

	res = readLines("+\r\n")
	assert.Equal(t, "", res)

	res = readLines("+OK\r\n")
	assert.Equal(t, "OK", res)

	res = readLines(":0\r\n")
	assert.Equal(t, int64(0), res)

	res = readLines(":-1\r\n")
	assert.Equal(t, int64(-1), res)

	res = readLines(":9223372036854775807\r\n")
	assert.Equal(t, int64(9223372036854775807), res)

	res = readLines("$0\r\n", "\r\n")
	assert.Equal(t, []byte{}, res)

	res = readLines("$4\r\n", "asdf\r\n")
	assert.Equal(t, []byte("asdf"), res)

	res = readLines("$-1\r\n")
	assert.Nil(t, res)

	res = readLines("*-1\r\n")
	assert.Nil(t, res)

	res = readLines("*0\r\n")
	assert.Equal(t, []interface{}{}, res)

	res = readLines("*3\r\n", "+OK\r\n", ":1\r\n", "$2\r\nhi\r\n")
	assert.Equal(t, []interface{}{"OK", int64(1), []byte("hi")}, res)

	res = readLines("*2\r\n", "*1\r\n", ":5\r\n", "$-1\r\n")
	assert.Equal(t, []interface{}{[]interface{}{int64(5)}, nil}, res)
}

func TestReadResponse_ServerError(t *testing.T) {
	res := readLines("-ERR unknown command 'oops'\r\n")
	if checkErrType(t, res, ErrResult) {
		err := res.(*errorx.Error)
		assert.Contains(t, err.Error(), "unknown command 'oops'")
		assert.False(t, HardError(err))
	}

	// server side errors embedded in arrays don't poison the array
	res = readLines("*2\r\n", "+OK\r\n", "-ERR nope\r\n")
	arr, ok := res.([]interface{})
	if assert.True(t, ok) {
		assert.Equal(t, "OK", arr[0])
		checkErrType(t, arr[1], ErrResult)
	}

	// io errors do
	res = readLines("*2\r\n", "+OK\r\n")
	checkErrType(t, res, ErrIO)
}

func TestHardError(t *testing.T) {
	assert.False(t, HardError(nil))
	assert.False(t, HardError(ErrResult.New("ERR hi")))
	assert.False(t, HardError(ErrExecAbort.New("exec failed")))
	assert.True(t, HardError(ErrIO.New("broken")))
	assert.True(t, HardError(ErrResponseUnexpected.New("nope")))
}
