package redisconn

import (
	"github.com/redisq/redisq/redis"
)

// txState tracks the MULTI...EXEC framing. It goes Open the moment MULTI is
// written: pipelining sends member requests before MULTI's own reply is read,
// so tracking is optimistic.
type txState struct {
	open   bool
	queued int
	cmds   []string
}

// track sets the transaction flags of a freshly written request and advances
// the state machine.
func (conn *Connection) track(p *pending) {
	switch {
	case p.cmd == redis.CmdMulti:
		if conn.tx.open {
			// nested MULTI: the server errors this slot, the transaction
			// itself stays open
			p.inTx = true
			return
		}
		conn.tx = txState{open: true}
	case p.cmd == redis.CmdExec:
		p.exec = true
		p.members = conn.tx.queued
		p.cmds = conn.tx.cmds
		conn.tx = txState{}
	case p.cmd == redis.CmdDiscard:
		conn.tx = txState{}
	case conn.tx.open:
		p.inTx = true
		conn.tx.queued++
		conn.tx.cmds = append(conn.tx.cmds, p.cmd)
	}
}

// checkQueued validates the immediate reply of a transaction member. The
// server acknowledges queueing with the literal QUEUED status; anything else
// non-error means the command was not actually queued server side.
func checkQueued(p pending, res interface{}) interface{} {
	if err := redis.AsError(res); err != nil {
		return res
	}
	if str, ok := res.(string); ok && str == "QUEUED" {
		return res
	}
	return redis.ErrResponseUnexpected.New("expected QUEUED status for %s inside MULTI", p.cmd).
		WithProperty(redis.EKCmd, p.cmd).
		WithProperty(redis.EKResponse, res)
}

// finishExec turns the raw EXEC reply into the value delivered to the
// exec request's future.
func (conn *Connection) finishExec(p pending, res interface{}) interface{} {
	// TransactionResponse passes server refusals (EXECABORT and friends)
	// through and turns the nil aggregate of a violated WATCH into
	// ErrExecEmpty.
	arr, err := redis.TransactionResponse(res)
	if err != nil {
		return redis.AsErrorx(err).WithProperty(EKConnection, conn)
	}
	if len(arr) != p.members {
		return redis.ErrResponseUnexpected.New("EXEC returned %d results for %d queued commands", len(arr), p.members).
			WithProperty(EKConnection, conn)
	}
	if p.sync {
		// a synchronous EXEC raises on the first failed member; pipelined
		// callers receive the aggregate with errors embedded instead
		for i, v := range arr {
			if err := redis.AsError(v); err != nil {
				cmd := "?"
				if i < len(p.cmds) {
					cmd = p.cmds[i]
				}
				return redis.ErrExecAbort.Wrap(err, "exec: queued command %d (%s) failed", i, cmd).
					WithProperty(redis.EKCmd, cmd)
			}
		}
	}
	return arr
}

// SendTransaction issues MULTI, reqs and EXEC as one pipelined unit. cb is
// resolved with the []interface{} of per-command results (or with an error
// when the transaction did not run). Member acknowledgements are consumed
// internally.
func (conn *Connection) SendTransaction(reqs []Request, cb redis.Future, n uint64) {
	p := pending{fut: cb, n: n}
	if cb != nil && cb.Cancelled() {
		p.resolve(redis.ErrRequestCancelled.NewWithNoMessage().WithProperty(EKConnection, conn))
		return
	}
	if conn.tx.open {
		p.resolve(redis.ErrBatchFormat.New("transaction is already open").WithProperty(EKConnection, conn))
		return
	}
	for _, r := range reqs {
		switch redis.Upcase(r.Cmd) {
		case redis.CmdMulti, redis.CmdExec, redis.CmdDiscard:
			p.resolve(redis.ErrBatchFormat.New("%s is not allowed inside a transaction batch", redis.Upcase(r.Cmd)).
				WithProperty(redis.EKCmd, r.Cmd).
				WithProperty(EKConnection, conn))
			return
		}
	}
	conn.send(redis.Req("MULTI"), nil, 0, false)
	for _, r := range reqs {
		conn.send(r, nil, 0, false)
	}
	conn.send(redis.Req("EXEC"), cb, n, false)
}
