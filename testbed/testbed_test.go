package testbed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redisq/redisq/redis"
)

func startServer(t *testing.T) *Server {
	s := &Server{}
	require.NoError(t, s.Start())
	t.Cleanup(func() { s.Stop() })
	return s
}

func TestBasicCommands(t *testing.T) {
	s := startServer(t)

	assert.Equal(t, "PONG", s.Do("PING"))
	assert.Equal(t, []byte("hi"), s.Do("ECHO", "hi"))
	assert.Equal(t, "OK", s.Do("SET", "k", "v"))
	assert.Equal(t, []byte("v"), s.Do("GET", "k"))
	assert.Nil(t, s.Do("GET", "missing"))
	assert.Equal(t, int64(1), s.Do("EXISTS", "k"))
	assert.Equal(t, int64(1), s.Do("DEL", "k"))
	assert.Equal(t, int64(0), s.Do("EXISTS", "k"))
}

func TestServerErrors(t *testing.T) {
	s := startServer(t)

	res := s.Do("NOSUCH")
	err := redis.AsErrorx(res)
	require.NotNil(t, err)
	assert.True(t, err.IsOfType(redis.ErrResult))
	assert.Contains(t, err.Error(), "unknown command")

	s.Do("SET", "str", "v")
	res = s.Do("LPUSH", "str", "x")
	err = redis.AsErrorx(res)
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "WRONGTYPE")

	res = s.Do("INCR", "str")
	err = redis.AsErrorx(res)
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "not an integer")
}

func TestTransactions(t *testing.T) {
	s := startServer(t)

	// a transaction needs a single connection, drive the protocol by hand
	res := s.Do("EXEC")
	err := redis.AsErrorx(res)
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "EXEC without MULTI")
}

func TestDataSurvivesRestart(t *testing.T) {
	s := startServer(t)
	s.Do("SET", "stable", "yes")

	port := s.Port
	require.NoError(t, s.Stop())
	require.NoError(t, s.Start())
	require.Equal(t, port, s.Port)

	assert.Equal(t, []byte("yes"), s.Do("GET", "stable"))
}

func TestSelectIsolation(t *testing.T) {
	s := startServer(t)
	s.Do("SET", "only0", "x")

	db3 := s.database(3)
	db0 := s.database(0)
	assert.NotSame(t, db0, db3)
	assert.Equal(t, int64(1), s.Do("DBSIZE"))
}
