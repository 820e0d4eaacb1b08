package redis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/redisq/redisq/redis"
)

func TestArgToString(t *testing.T) {
	for _, c := range []struct {
		arg interface{}
		res string
	}{
		{"hi", "hi"},
		{[]byte("raw"), "raw"},
		{int(-1), "-1"},
		{uint(1), "1"},
		{int64(-9223372036854775808), "-9223372036854775808"},
		{uint64(18446744073709551615), "18446744073709551615"},
		{int8(-128), "-128"},
		{uint8(255), "255"},
		{float32(0.5), "0.5"},
		{float64(-1.25), "-1.25"},
		{true, "1"},
		{false, "0"},
		{nil, ""},
	} {
		s, ok := ArgToString(c.arg)
		assert.True(t, ok, "%#v", c.arg)
		assert.Equal(t, c.res, s, "%#v", c.arg)
	}

	for _, arg := range []interface{}{
		make(chan int),
		struct{}{},
		[]string{"no"},
		map[string]string{},
	} {
		_, ok := ArgToString(arg)
		assert.False(t, ok, "%#v", arg)
	}
}

func TestAppendRequest(t *testing.T) {
	buf, err := AppendRequest(nil, Req("PING"))
	assert.Nil(t, err)
	assert.Equal(t, "*1\r\n$4\r\nPING\r\n", string(buf))

	buf, err = AppendRequest(buf[:0], Req("SET", "key", int64(7)))
	assert.Nil(t, err)
	assert.Equal(t, "*3\r\n$3\r\nSET\r\n$3\r\nkey\r\n$1\r\n7\r\n", string(buf))

	buf, err = AppendRequest(buf[:0], Req("GET", []byte{0, 1, 2}))
	assert.Nil(t, err)
	assert.Equal(t, "*2\r\n$3\r\nGET\r\n$3\r\n\x00\x01\x02\r\n", string(buf))

	// a bad argument leaves the buffer untouched
	buf, err = AppendRequest(buf[:0], Req("SET", "key", make(chan int)))
	if assert.NotNil(t, err) {
		assert.True(t, err.IsOfType(ErrArgumentType))
		assert.Contains(t, err.Error(), "SET")
	}
	assert.Len(t, buf, 0)
}
