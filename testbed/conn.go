package testbed

import (
	"bufio"
	"net"
	"time"

	"github.com/redisq/redisq/redis"
)

// Do runs a single command over a throwaway connection. Used by tests to
// inspect server state independently of the client under test.
func Do(addr string, cmd string, args ...interface{}) interface{} {
	conn, err := net.DialTimeout("tcp", addr, 100*time.Millisecond)
	if err != nil {
		return redis.ErrDial.Wrap(err, "could not connect to %s", addr)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(1 * time.Second))
	req, rerr := redis.AppendRequest(nil, redis.Request{Cmd: cmd, Args: args})
	if rerr != nil {
		return rerr
	}
	if _, err = conn.Write(req); err != nil {
		return redis.ErrIO.Wrap(err, "write failed")
	}
	return redis.ReadResponse(bufio.NewReader(conn))
}

// Do runs a single command against this server over a throwaway connection.
func (s *Server) Do(cmd string, args ...interface{}) interface{} {
	return Do(s.Addr(), cmd, args...)
}
