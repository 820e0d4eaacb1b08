package testbed

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/tidwall/resp"
)

// session is the per-connection protocol state: selected db, the
// transaction queue and the WATCH set.
type session struct {
	srv     *Server
	db      *database
	tx      *tx
	watches []watchEntry
}

// watchEntry is the revision of a key at WATCH time. EXEC returns a nil
// aggregate when any watched key moved past its recorded revision.
type watchEntry struct {
	db  *database
	key string
	rev uint64
}

// tx is a server-side transaction: commands queued between MULTI and EXEC.
// dirty is set when a command failed validation at queue time; EXEC then
// refuses to run.
type tx struct {
	queued []command
	dirty  bool
}

type command struct {
	name string
	args []string
}

func (s *Server) serve(c net.Conn) {
	defer s.forget(c)
	defer c.Close()

	sess := &session{srv: s, db: s.database(0)}
	rd := resp.NewReader(bufio.NewReader(c))
	bw := bufio.NewWriter(c)
	wr := resp.NewWriter(bw)
	for {
		v, _, err := rd.ReadValue()
		if err != nil {
			return
		}
		reply := sess.dispatch(parseCommand(v))
		if err := wr.WriteValue(reply); err != nil {
			return
		}
		if err := bw.Flush(); err != nil {
			return
		}
	}
}

func parseCommand(v resp.Value) command {
	arr := v.Array()
	if len(arr) == 0 {
		return command{}
	}
	cmd := command{name: strings.ToUpper(arr[0].String())}
	for _, a := range arr[1:] {
		cmd.args = append(cmd.args, a.String())
	}
	return cmd
}

func (sess *session) dispatch(cmd command) resp.Value {
	if cmd.name == "" {
		return respError("ERR empty command")
	}
	switch cmd.name {
	case "MULTI":
		if sess.tx != nil {
			return respError("ERR MULTI calls can not be nested")
		}
		sess.tx = &tx{}
		return resp.SimpleStringValue("OK")
	case "EXEC":
		return sess.exec()
	case "DISCARD":
		if sess.tx == nil {
			return respError("ERR DISCARD without MULTI")
		}
		sess.tx = nil
		sess.watches = nil
		return resp.SimpleStringValue("OK")
	case "WATCH":
		if sess.tx != nil {
			return respError("ERR WATCH inside MULTI is not allowed")
		}
		return sess.run(cmd)
	}
	if sess.tx != nil {
		return sess.enqueue(cmd)
	}
	return sess.run(cmd)
}

// enqueue validates a command inside MULTI and queues it for EXEC.
func (sess *session) enqueue(cmd command) resp.Value {
	h, ok := handlers[cmd.name]
	if !ok {
		sess.tx.dirty = true
		return respError(fmt.Sprintf("ERR unknown command '%s'", strings.ToLower(cmd.name)))
	}
	if !h.arityOk(len(cmd.args)) {
		sess.tx.dirty = true
		return respError(fmt.Sprintf("ERR wrong number of arguments for '%s' command", strings.ToLower(cmd.name)))
	}
	sess.tx.queued = append(sess.tx.queued, cmd)
	return resp.SimpleStringValue("QUEUED")
}

func (sess *session) exec() resp.Value {
	if sess.tx == nil {
		return respError("ERR EXEC without MULTI")
	}
	t := sess.tx
	sess.tx = nil
	watched := sess.watches
	sess.watches = nil
	if t.dirty {
		return respError("EXECABORT Transaction discarded because of previous errors.")
	}
	for _, w := range watched {
		w.db.mu.Lock()
		rev := w.db.revs[w.key]
		w.db.mu.Unlock()
		if rev != w.rev {
			return resp.NullValue()
		}
	}
	results := make([]resp.Value, len(t.queued))
	for i, cmd := range t.queued {
		results[i] = sess.run(cmd)
	}
	return resp.ArrayValue(results)
}

func (sess *session) run(cmd command) resp.Value {
	h, ok := handlers[cmd.name]
	if !ok {
		return respError(fmt.Sprintf("ERR unknown command '%s'", strings.ToLower(cmd.name)))
	}
	if !h.arityOk(len(cmd.args)) {
		return respError(fmt.Sprintf("ERR wrong number of arguments for '%s' command", strings.ToLower(cmd.name)))
	}
	return h.fn(sess, cmd.args)
}

func respError(msg string) resp.Value {
	return resp.ErrorValue(errors.New(msg))
}
