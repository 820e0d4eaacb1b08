package redis_test

import (
	"testing"

	"github.com/joomcode/errorx"
	"github.com/stretchr/testify/assert"

	. "github.com/redisq/redisq/redis"
)

func TestTransactionResponse(t *testing.T) {
	arr, err := TransactionResponse([]interface{}{int64(1), "OK"})
	assert.NoError(t, err)
	assert.Equal(t, []interface{}{int64(1), "OK"}, arr)

	_, err = TransactionResponse(nil)
	assert.True(t, errorx.IsOfType(err, ErrExecEmpty))

	_, err = TransactionResponse("OK")
	assert.True(t, errorx.IsOfType(err, ErrResponseUnexpected))

	srverr := ErrResult.New("EXECABORT Transaction discarded because of previous errors.")
	_, err = TransactionResponse(srverr)
	assert.Equal(t, srverr, err)
}

func TestInfoMap(t *testing.T) {
	raw := []byte("# Server\r\nredis_version:6.2.6\r\nuptime_in_seconds:100\r\n\r\n# Keyspace\r\ndb0:keys=1,expires=0\r\n")
	res := InfoMap(raw)
	info, ok := res.(map[string]string)
	if assert.True(t, ok, "%#v", res) {
		assert.Equal(t, "6.2.6", info["redis_version"])
		assert.Equal(t, "keys=1,expires=0", info["db0"])
		assert.NotContains(t, info, "# Server")
	}

	res = InfoMap(int64(1))
	assert.True(t, errorx.IsOfType(AsError(res), ErrResponseUnexpected))

	// errors pass through untouched
	ioerr := ErrIO.New("broken")
	assert.Equal(t, ioerr, InfoMap(ioerr))
}

func TestPairsMap(t *testing.T) {
	res := PairsMap([]interface{}{[]byte("a"), []byte("1"), "b", []byte("2")})
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, res)

	res = PairsMap([]interface{}{})
	assert.Equal(t, map[string]string{}, res)

	res = PairsMap([]interface{}{[]byte("a")})
	assert.True(t, errorx.IsOfType(AsError(res), ErrResponseUnexpected))

	res = PairsMap([]interface{}{[]byte("a"), int64(1)})
	assert.True(t, errorx.IsOfType(AsError(res), ErrResponseUnexpected))

	res = PairsMap("nope")
	assert.True(t, errorx.IsOfType(AsError(res), ErrResponseUnexpected))

	ioerr := ErrIO.New("broken")
	assert.Equal(t, ioerr, PairsMap(ioerr))
}
