package redis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/redisq/redisq/redis"
)

func TestForbidden(t *testing.T) {
	assert.True(t, Forbidden("SUBSCRIBE"))
	assert.True(t, Forbidden("subscribe"))
	assert.True(t, Forbidden("pSubScribe"))
	assert.True(t, Forbidden("MONITOR"))
	assert.False(t, Forbidden("GET"))
	assert.False(t, Forbidden("multi"))
	assert.False(t, Forbidden("SUBSCRIBED")) // not a prefix check
}

func TestBlocking(t *testing.T) {
	assert.True(t, Blocking("BLPOP"))
	assert.True(t, Blocking("blpop"))
	assert.True(t, Blocking("WAIT"))
	assert.False(t, Blocking("LPOP"))
	assert.False(t, Blocking("GET"))
}

func TestPostProcess(t *testing.T) {
	assert.NotNil(t, PostProcess("INFO"))
	assert.NotNil(t, PostProcess("info"))
	assert.NotNil(t, PostProcess("HGETALL"))
	assert.Nil(t, PostProcess("GET"))
	assert.Nil(t, PostProcess("HGET"))
}

func TestUpcase(t *testing.T) {
	assert.Equal(t, "GET", Upcase("get"))
	assert.Equal(t, "GET", Upcase("Get"))
	// already canonical strings are returned as is
	s := "HGETALL"
	assert.Equal(t, s, Upcase(s))
}
