package redisconn

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"time"

	"github.com/joomcode/errorx"

	"github.com/redisq/redisq/redis"
)

const (
	defaultIOTimeout   = 1 * time.Second
	defaultDialTimeout = 5 * time.Second
	defaultKeepAlive   = 300 * time.Millisecond
)

// Opts are options for Connect.
type Opts struct {
	// DialTimeout is timeout for net.Dialer. Default is 5s.
	DialTimeout time.Duration
	// IOTimeout - timeout on read/write to socket.
	// If IOTimeout == 0, then it is set to 1 second.
	// If IOTimeout < 0, then timeout is disabled.
	IOTimeout time.Duration
	// DB - database number to SELECT after connecting.
	DB int
	// Password for AUTH.
	Password string
	// Handle is returned with Connection.Handle(). Useful for custom logging.
	Handle interface{}
	// TCPKeepAlive - KeepAlive parameter for net.Dialer.
	TCPKeepAlive time.Duration
	// Logger for connection events.
	Logger Logger
}

// Request is an alias for the common request type.
type Request = redis.Request

// pending is a single in-flight request: written to the socket, reply not yet
// read. The queue of pendings mirrors the write order exactly.
type pending struct {
	fut  redis.Future
	n    uint64
	cmd  string
	sync bool
	// inTx - the immediate reply must be the QUEUED status.
	inTx bool
	// exec - the reply is the transaction aggregate.
	exec    bool
	members int
	cmds    []string
	proc    redis.PostProc
}

func (p pending) resolve(res interface{}) {
	if p.fut != nil {
		p.fut.Resolve(res, p.n)
	}
}

// Connection is a single redis connection with explicit pipelining.
//
// It is owned by a single goroutine: Send queues a request without blocking,
// Wait/WaitAll read replies back and resolve futures in the order requests
// were sent, Do is the synchronous form. Sharing a Connection between
// goroutines requires external serialization.
type Connection struct {
	ctx  context.Context
	addr string
	opts Opts

	c net.Conn
	r *bufio.Reader
	w *bufio.Writer

	buf   []byte
	queue []pending
	tx    txState
	err   *errorx.Error
}

// Connect establishes a connection to a redis server and performs the
// AUTH/PING/SELECT handshake.
func Connect(ctx context.Context, addr string, opts Opts) (*Connection, error) {
	if ctx == nil {
		return nil, redis.ErrContextIsNil.NewWithNoMessage()
	}
	if addr == "" {
		return nil, redis.ErrNoAddressProvided.NewWithNoMessage()
	}
	conn := &Connection{
		ctx:  ctx,
		addr: addr,
		opts: opts,
	}

	if conn.opts.DialTimeout <= 0 {
		conn.opts.DialTimeout = defaultDialTimeout
	}
	if conn.opts.IOTimeout == 0 {
		conn.opts.IOTimeout = defaultIOTimeout
	} else if conn.opts.IOTimeout < 0 {
		conn.opts.IOTimeout = 0
	}
	if conn.opts.TCPKeepAlive == 0 {
		conn.opts.TCPKeepAlive = defaultKeepAlive
	} else if conn.opts.TCPKeepAlive < 0 {
		conn.opts.TCPKeepAlive = 0
	}
	if conn.opts.Logger == nil {
		conn.opts.Logger = defaultLogger{}
	}

	conn.report(LogConnecting)
	if err := conn.dial(); err != nil {
		conn.report(LogConnectFailed, err)
		return nil, err
	}
	conn.report(LogConnected,
		conn.c.LocalAddr().String(),
		conn.c.RemoteAddr().String())
	return conn, nil
}

func (conn *Connection) dial() error {
	network := "tcp"
	address := conn.addr
	if address[0] == '.' || address[0] == '/' {
		network = "unix"
	} else if len(address) > 7 && address[0:7] == "unix://" {
		network = "unix"
		address = address[7:]
	} else if len(address) > 6 && address[0:6] == "tcp://" {
		network = "tcp"
		address = address[6:]
	}
	dialer := net.Dialer{
		Timeout:   conn.opts.DialTimeout,
		KeepAlive: conn.opts.TCPKeepAlive,
	}
	c, err := dialer.DialContext(conn.ctx, network, address)
	if err != nil {
		return redis.ErrDial.Wrap(err, "could not connect to %s", conn.addr)
	}
	dc := newDeadlineIO(c, conn.opts.IOTimeout)
	r := bufio.NewReaderSize(dc, 64*1024)
	w := bufio.NewWriterSize(dc, 64*1024)

	var req []byte
	if conn.opts.Password != "" {
		req, _ = redis.AppendRequest(req, redis.Req("AUTH", conn.opts.Password))
	}
	req, _ = redis.AppendRequest(req, redis.Req("PING"))
	if conn.opts.DB != 0 {
		req, _ = redis.AppendRequest(req, redis.Req("SELECT", conn.opts.DB))
	}
	if _, err = dc.Write(req); err != nil {
		c.Close()
		return redis.ErrConnSetup.Wrap(err, "could not write handshake")
	}
	var res interface{}
	if conn.opts.Password != "" {
		res = redis.ReadResponse(r)
		if err := redis.AsError(res); err != nil {
			c.Close()
			return redis.ErrAuth.Wrap(err, "auth is not successful").WithProperty(EKConnection, conn)
		}
	}
	res = redis.ReadResponse(r)
	if err := redis.AsError(res); err != nil {
		c.Close()
		return redis.ErrConnSetup.Wrap(err, "ping failed")
	}
	if str, ok := res.(string); !ok || str != "PONG" {
		c.Close()
		return redis.ErrConnSetup.New("ping response mismatch").
			WithProperty(redis.EKResponse, res).
			WithProperty(EKConnection, conn)
	}
	if conn.opts.DB != 0 {
		res = redis.ReadResponse(r)
		if err := redis.AsError(res); err != nil {
			c.Close()
			return redis.ErrConnSetup.Wrap(err, "could not select db").
				WithProperty(EKDb, conn.opts.DB)
		}
		if str, ok := res.(string); !ok || str != "OK" {
			c.Close()
			return redis.ErrConnSetup.New("SELECT db response mismatch").
				WithProperty(EKDb, conn.opts.DB).
				WithProperty(redis.EKResponse, res)
		}
	}

	conn.c = c
	conn.r = r
	conn.w = w
	return nil
}

// Addr is the address the connection was established to.
func (conn *Connection) Addr() string {
	return conn.addr
}

// RemoteAddr is the address of the redis socket.
func (conn *Connection) RemoteAddr() string {
	if conn.c == nil {
		return ""
	}
	return conn.c.RemoteAddr().String()
}

// LocalAddr is the outgoing socket address.
func (conn *Connection) LocalAddr() string {
	if conn.c == nil {
		return ""
	}
	return conn.c.LocalAddr().String()
}

// Handle returns the user specified handle from Opts.
func (conn *Connection) Handle() interface{} {
	return conn.opts.Handle
}

// PendingCount is the number of requests written whose replies were not yet
// delivered. Non-zero after an io error means the stream is desynchronized.
func (conn *Connection) PendingCount() int {
	return len(conn.queue)
}

// Err returns the latched fatal error, if any. Once set, the connection only
// accepts Close.
func (conn *Connection) Err() error {
	if conn.err != nil {
		return conn.err
	}
	return nil
}

// Close closes the connection. Every pending request is resolved with
// ErrConnClosed.
func (conn *Connection) Close() {
	closeErr := redis.ErrConnClosed.NewWithNoMessage().WithProperty(EKConnection, conn)
	if conn.err == nil {
		conn.err = closeErr
	}
	if conn.c != nil {
		conn.c.Close()
		conn.c = nil
	}
	conn.dropPending(closeErr)
	conn.report(LogClosed)
}

// Send writes the request to the connection and queues cb for its reply.
// It never blocks on the network and never returns an error: failures to
// accept the request resolve cb immediately, in the calling goroutine.
func (conn *Connection) Send(req Request, cb redis.Future, n uint64) {
	if cb != nil && cb.Cancelled() {
		cb.Resolve(redis.ErrRequestCancelled.NewWithNoMessage().WithProperty(EKConnection, conn), n)
		return
	}
	conn.send(req, cb, n, false)
}

// Do executes the command synchronously: every reply pending before it is
// drained first (resolving its callbacks in order), then the command's own
// reply is returned. Errors are returned as the result value; use
// redis.AsError to detect them.
func (conn *Connection) Do(cmd string, args ...interface{}) interface{} {
	return conn.doReq(Request{Cmd: cmd, Args: args})
}

func (conn *Connection) doReq(req Request) interface{} {
	var res syncRes
	conn.send(req, &res, 0, true)
	for !res.done {
		if err := conn.Wait(); err != nil {
			if !res.done {
				return err
			}
		}
	}
	return res.r
}

// Wait reads exactly one reply and delivers it to the oldest pending request.
// Called on an empty queue it is a no-op. The returned error is non-nil only
// for hard io/protocol failures; ordinary server errors are delivered to the
// pending future and do not disturb the stream.
func (conn *Connection) Wait() error {
	if len(conn.queue) == 0 {
		return nil
	}
	if conn.err != nil {
		// keep undelivered entries so the desync is observable
		return conn.err
	}
	if err := conn.w.Flush(); err != nil {
		return conn.fatal(redis.ErrIO.Wrap(err, "write failed").WithProperty(EKConnection, conn))
	}
	res := redis.ReadResponse(conn.r)
	if rerr := redis.AsErrorx(res); redis.HardError(rerr) {
		return conn.fatal(rerr.WithProperty(EKConnection, conn))
	}
	conn.deliver(res)
	return nil
}

// WaitAll drains every pending reply. Safe to call with nothing pending.
func (conn *Connection) WaitAll() error {
	for len(conn.queue) > 0 {
		if err := conn.Wait(); err != nil {
			return err
		}
	}
	return nil
}

// Ping checks the connection is alive and in sync.
func (conn *Connection) Ping() error {
	res := conn.Do("PING")
	if err := redis.AsError(res); err != nil {
		return err
	}
	if str, ok := res.(string); !ok || str != "PONG" {
		return redis.ErrPing.NewWithNoMessage().
			WithProperty(redis.EKResponse, res).
			WithProperty(EKConnection, conn)
	}
	return nil
}

func (conn *Connection) String() string {
	return fmt.Sprintf("*redisconn.Connection{addr: %s}", conn.addr)
}

/********** private api **************/

func (conn *Connection) send(req Request, cb redis.Future, n uint64, sync bool) {
	p := pending{fut: cb, n: n, sync: sync}
	if conn.err != nil {
		p.resolve(conn.err)
		return
	}
	cmd := redis.Upcase(req.Cmd)
	if redis.Forbidden(cmd) {
		p.resolve(redis.ErrCommandForbidden.New("command %s is not allowed on a pipelined connection", cmd).
			WithProperty(redis.EKCmd, cmd).
			WithProperty(EKConnection, conn))
		return
	}
	buf, rerr := redis.AppendRequest(conn.buf[:0], req)
	if rerr != nil {
		p.resolve(rerr.WithProperty(EKConnection, conn))
		return
	}
	if _, err := conn.w.Write(buf); err != nil {
		p.resolve(conn.fatal(redis.ErrIO.Wrap(err, "write failed").WithProperty(EKConnection, conn)))
		return
	}
	conn.buf = buf[:0]

	p.cmd = cmd
	p.proc = redis.PostProcess(cmd)
	conn.track(&p)
	conn.queue = append(conn.queue, p)
}

// deliver hands res to the head of the queue.
func (conn *Connection) deliver(res interface{}) {
	p := conn.queue[0]
	conn.queue[0] = pending{}
	conn.queue = conn.queue[1:]
	if len(conn.queue) == 0 {
		conn.queue = nil
	}
	switch {
	case p.exec:
		res = conn.finishExec(p, res)
	case p.inTx:
		res = checkQueued(p, res)
	default:
		if p.proc != nil {
			res = p.proc(res)
		}
	}
	p.resolve(res)
}

// fatal latches err, delivers it to the request currently due and stops
// draining. Requests behind the head stay queued: their replies were never
// read and the stream position can not be trusted anymore.
func (conn *Connection) fatal(err *errorx.Error) *errorx.Error {
	if conn.err == nil {
		conn.err = err
	}
	conn.report(LogFatal, err)
	if len(conn.queue) > 0 {
		p := conn.queue[0]
		conn.queue[0] = pending{}
		conn.queue = conn.queue[1:]
		p.resolve(err)
	}
	return err
}

func (conn *Connection) dropPending(err *errorx.Error) {
	for _, p := range conn.queue {
		p.resolve(err)
	}
	conn.queue = nil
	conn.tx = txState{}
}

func (conn *Connection) report(event LogKind, v ...interface{}) {
	conn.opts.Logger.Report(event, conn, v...)
}

// syncRes is the future of a synchronous caller. Resolution happens inline
// during drain, so a flag is enough: no goroutine parking is involved.
type syncRes struct {
	r    interface{}
	done bool
}

func (s *syncRes) Cancelled() bool { return false }

func (s *syncRes) Resolve(res interface{}, _ uint64) {
	s.r = res
	s.done = true
}
