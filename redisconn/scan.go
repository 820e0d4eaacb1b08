package redisconn

import (
	"github.com/redisq/redisq/redis"
)

// Scanner iterates a SCAN-family cursor over the connection. Each Next call
// performs one synchronous round trip, so it drains any pipelined requests
// issued before it, like every other synchronous call.
type Scanner struct {
	conn *Connection
	opts redis.ScanOpts
	iter []byte
	done bool
}

// Scanner returns an iterator over keys matching opts.
func (conn *Connection) Scanner(opts redis.ScanOpts) *Scanner {
	return &Scanner{conn: conn, opts: opts}
}

// Next returns the next batch of keys. It finishes with redis.ScanEOF.
// A batch may be empty without the iteration being finished.
func (s *Scanner) Next() ([]string, error) {
	if s.done {
		return nil, redis.ScanEOF
	}
	res := s.conn.doReq(s.opts.Request(s.iter))
	iter, keys, err := redis.ScanResponse(res)
	if err != nil {
		s.done = true
		return nil, err
	}
	s.iter = iter
	if len(iter) == 1 && iter[0] == '0' {
		s.done = true
	}
	return keys, nil
}
