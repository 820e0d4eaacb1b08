package redisconn

import (
	"io"
	"net"
	"time"
)

// deadlineIO enforces Opts.IOTimeout as a fresh socket deadline before every
// read and write, so a stalled flush or drain surfaces as an io error instead
// of hanging the calling goroutine.
type deadlineIO struct {
	timeout time.Duration
	c       net.Conn
}

func newDeadlineIO(c net.Conn, timeout time.Duration) io.ReadWriter {
	if timeout <= 0 {
		return c
	}
	return &deadlineIO{timeout: timeout, c: c}
}

func (d *deadlineIO) Write(b []byte) (int, error) {
	d.c.SetWriteDeadline(time.Now().Add(d.timeout))
	return d.c.Write(b)
}

func (d *deadlineIO) Read(b []byte) (int, error) {
	d.c.SetReadDeadline(time.Now().Add(d.timeout))
	return d.c.Read(b)
}
