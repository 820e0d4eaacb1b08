package redis_test

import (
	"testing"

	"github.com/joomcode/errorx"
	"github.com/stretchr/testify/assert"

	. "github.com/redisq/redisq/redis"
)

func TestScanOptsRequest(t *testing.T) {
	req := ScanOpts{}.Request(nil)
	assert.Equal(t, "SCAN", req.Cmd)
	assert.Equal(t, []interface{}{[]byte("0")}, req.Args)

	req = ScanOpts{Match: "h*", Count: 100}.Request([]byte("17"))
	assert.Equal(t, "SCAN", req.Cmd)
	assert.Equal(t, []interface{}{[]byte("17"), "MATCH", "h*", "COUNT", 100}, req.Args)

	req = ScanOpts{Cmd: "HSCAN", Key: "h"}.Request(nil)
	assert.Equal(t, "HSCAN", req.Cmd)
	assert.Equal(t, []interface{}{"h", []byte("0")}, req.Args)
}

func TestScanResponse(t *testing.T) {
	it, keys, err := ScanResponse([]interface{}{
		[]byte("25"),
		[]interface{}{[]byte("a"), []byte("b")},
	})
	assert.NoError(t, err)
	assert.Equal(t, []byte("25"), it)
	assert.Equal(t, []string{"a", "b"}, keys)

	ioerr := ErrIO.New("broken")
	_, _, err = ScanResponse(ioerr)
	assert.Equal(t, error(ioerr), err)

	_, _, err = ScanResponse("nope")
	assert.True(t, errorx.IsOfType(err, ErrResponseUnexpected))

	_, _, err = ScanResponse([]interface{}{[]byte("0")})
	assert.True(t, errorx.IsOfType(err, ErrResponseUnexpected))

	_, _, err = ScanResponse([]interface{}{[]byte("0"), []interface{}{int64(1)}})
	assert.True(t, errorx.IsOfType(err, ErrResponseUnexpected))
}
