package redis

import "strings"

// Normalized command names used by the transaction tracker.
const (
	CmdMulti   = "MULTI"
	CmdExec    = "EXEC"
	CmdDiscard = "DISCARD"
)

// forbidden commands switch the connection into a different communication
// mode and therefore can not be mixed with request/reply traffic.
var forbidden = map[string]struct{}{
	"SUBSCRIBE":    {},
	"PSUBSCRIBE":   {},
	"UNSUBSCRIBE":  {},
	"PUNSUBSCRIBE": {},
	"SSUBSCRIBE":   {},
	"SUNSUBSCRIBE": {},
	"MONITOR":      {},
}

var blocking = map[string]struct{}{
	"BLPOP":      {},
	"BRPOP":      {},
	"BRPOPLPUSH": {},
	"BLMOVE":     {},
	"BLMPOP":     {},
	"BZPOPMIN":   {},
	"BZPOPMAX":   {},
	"WAIT":       {},
}

// Forbidden reports whether cmd is not allowed on a pipelined connection.
func Forbidden(cmd string) bool {
	_, ok := forbidden[Upcase(cmd)]
	return ok
}

// Blocking reports whether cmd may block server side. Such commands are legal
// here (the connection has a single owner), but stall every reply queued
// behind them, so embedders may want to check.
func Blocking(cmd string) bool {
	_, ok := blocking[Upcase(cmd)]
	return ok
}

// PostProc reshapes a raw reply of a command with a known aggregate shape.
// It is fed the decoded reply and returns either the reshaped value or an
// error value.
type PostProc func(res interface{}) interface{}

// postProcess lists the commands whose replies are reshaped at this layer
// instead of being handed out raw.
var postProcess = map[string]PostProc{
	"INFO":    InfoMap,
	"HGETALL": PairsMap,
}

// PostProcess returns the reply post-processor for cmd, nil for most commands.
func PostProcess(cmd string) PostProc {
	return postProcess[Upcase(cmd)]
}

// Upcase returns cmd in the canonical upper-case spelling.
func Upcase(cmd string) string {
	for i := 0; i < len(cmd); i++ {
		if cmd[i] >= 'a' && cmd[i] <= 'z' {
			return strings.ToUpper(cmd)
		}
	}
	return cmd
}
