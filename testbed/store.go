package testbed

import (
	"fmt"
	"path"
	"strconv"
	"strings"
	"sync"

	"github.com/tidwall/resp"
)

const (
	kindString = iota
	kindList
	kindHash
)

type entry struct {
	kind int
	str  string
	list []string
	hash map[string]string
}

type database struct {
	mu   sync.Mutex
	vals map[string]*entry
	// revs counts modifications per key, WATCH compares against it
	revs map[string]uint64
}

func newDatabase() *database {
	return &database{
		vals: make(map[string]*entry),
		revs: make(map[string]uint64),
	}
}

// touch must be called with mu held.
func (db *database) touch(keys ...string) {
	for _, k := range keys {
		db.revs[k]++
	}
}

type handler struct {
	fn      func(sess *session, args []string) resp.Value
	minArgs int
	maxArgs int // -1 means unbounded
}

func (h handler) arityOk(n int) bool {
	if n < h.minArgs {
		return false
	}
	return h.maxArgs < 0 || n <= h.maxArgs
}

var handlers = map[string]handler{
	"PING":    {ping, 0, 1},
	"ECHO":    {echo, 1, 1},
	"AUTH":    {ok, 1, 1},
	"SELECT":  {selectDb, 1, 1},
	"FLUSHDB": {flushDb, 0, 0},
	"DBSIZE":  {dbSize, 0, 0},
	"KEYS":    {keysCmd, 1, 1},
	"SCAN":    {scan, 1, 5},
	"WATCH":   {watchCmd, 1, -1},
	"UNWATCH": {unwatchCmd, 0, 0},
	"INFO":    {info, 0, 1},

	"SET":    {set, 2, 2},
	"GET":    {get, 1, 1},
	"APPEND": {appendCmd, 2, 2},
	"INCR":   {incr, 1, 1},
	"DEL":    {del, 1, -1},
	"EXISTS": {exists, 1, -1},
	"MGET":   {mget, 1, -1},
	"TYPE":   {typeCmd, 1, 1},

	"LPUSH":  {lpush, 2, -1},
	"RPUSH":  {rpush, 2, -1},
	"LLEN":   {llen, 1, 1},
	"LRANGE": {lrange, 3, 3},

	"HSET":    {hset, 3, -1},
	"HGET":    {hget, 2, 2},
	"HGETALL": {hgetall, 1, 1},
}

var wrongType = respError("WRONGTYPE Operation against a key holding the wrong kind of value")
var notInteger = respError("ERR value is not an integer or out of range")

func ping(sess *session, args []string) resp.Value {
	if len(args) == 1 {
		return resp.StringValue(args[0])
	}
	return resp.SimpleStringValue("PONG")
}

func echo(sess *session, args []string) resp.Value {
	return resp.StringValue(args[0])
}

func ok(sess *session, args []string) resp.Value {
	return resp.SimpleStringValue("OK")
}

func selectDb(sess *session, args []string) resp.Value {
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 || n > 15 {
		return respError("ERR DB index is out of range")
	}
	sess.db = sess.srv.database(n)
	return resp.SimpleStringValue("OK")
}

func watchCmd(sess *session, args []string) resp.Value {
	db := sess.db
	db.mu.Lock()
	for _, k := range args {
		sess.watches = append(sess.watches, watchEntry{db: db, key: k, rev: db.revs[k]})
	}
	db.mu.Unlock()
	return resp.SimpleStringValue("OK")
}

func unwatchCmd(sess *session, args []string) resp.Value {
	sess.watches = nil
	return resp.SimpleStringValue("OK")
}

func flushDb(sess *session, args []string) resp.Value {
	db := sess.db
	db.mu.Lock()
	for k := range db.vals {
		db.touch(k)
	}
	db.vals = make(map[string]*entry)
	db.mu.Unlock()
	return resp.SimpleStringValue("OK")
}

func dbSize(sess *session, args []string) resp.Value {
	db := sess.db
	db.mu.Lock()
	defer db.mu.Unlock()
	return resp.IntegerValue(len(db.vals))
}

func keysCmd(sess *session, args []string) resp.Value {
	return matchedKeys(sess.db, args[0])
}

func scan(sess *session, args []string) resp.Value {
	// single-batch cursor: everything in one reply, next cursor is 0
	pattern := "*"
	for i := 1; i+1 < len(args); i += 2 {
		if strings.ToUpper(args[i]) == "MATCH" {
			pattern = args[i+1]
		}
	}
	keys := matchedKeys(sess.db, pattern)
	return resp.ArrayValue([]resp.Value{resp.StringValue("0"), keys})
}

func matchedKeys(db *database, pattern string) resp.Value {
	db.mu.Lock()
	defer db.mu.Unlock()
	var keys []resp.Value
	for k := range db.vals {
		if m, _ := path.Match(pattern, k); m {
			keys = append(keys, resp.StringValue(k))
		}
	}
	return resp.ArrayValue(keys)
}

func info(sess *session, args []string) resp.Value {
	db := sess.db
	db.mu.Lock()
	size := len(db.vals)
	db.mu.Unlock()
	text := "# Server\r\n" +
		"redis_version:7.9.255\r\n" +
		"redis_mode:standalone\r\n" +
		"\r\n# Clients\r\n" +
		"connected_clients:1\r\n" +
		"\r\n# Keyspace\r\n" +
		fmt.Sprintf("db0:keys=%d,expires=0,avg_ttl=0\r\n", size)
	return resp.StringValue(text)
}

func set(sess *session, args []string) resp.Value {
	db := sess.db
	db.mu.Lock()
	db.vals[args[0]] = &entry{kind: kindString, str: args[1]}
	db.touch(args[0])
	db.mu.Unlock()
	return resp.SimpleStringValue("OK")
}

func get(sess *session, args []string) resp.Value {
	db := sess.db
	db.mu.Lock()
	defer db.mu.Unlock()
	e, ok := db.vals[args[0]]
	if !ok {
		return resp.NullValue()
	}
	if e.kind != kindString {
		return wrongType
	}
	return resp.StringValue(e.str)
}

func appendCmd(sess *session, args []string) resp.Value {
	db := sess.db
	db.mu.Lock()
	defer db.mu.Unlock()
	e, ok := db.vals[args[0]]
	if !ok {
		e = &entry{kind: kindString}
		db.vals[args[0]] = e
	}
	if e.kind != kindString {
		return wrongType
	}
	e.str += args[1]
	db.touch(args[0])
	return resp.IntegerValue(len(e.str))
}

func incr(sess *session, args []string) resp.Value {
	db := sess.db
	db.mu.Lock()
	defer db.mu.Unlock()
	e, ok := db.vals[args[0]]
	if !ok {
		e = &entry{kind: kindString, str: "0"}
		db.vals[args[0]] = e
	}
	if e.kind != kindString {
		return wrongType
	}
	n, err := strconv.ParseInt(e.str, 10, 64)
	if err != nil {
		return notInteger
	}
	n++
	e.str = strconv.FormatInt(n, 10)
	db.touch(args[0])
	return resp.IntegerValue(int(n))
}

func del(sess *session, args []string) resp.Value {
	db := sess.db
	db.mu.Lock()
	defer db.mu.Unlock()
	n := 0
	for _, k := range args {
		if _, ok := db.vals[k]; ok {
			delete(db.vals, k)
			db.touch(k)
			n++
		}
	}
	return resp.IntegerValue(n)
}

func exists(sess *session, args []string) resp.Value {
	db := sess.db
	db.mu.Lock()
	defer db.mu.Unlock()
	n := 0
	for _, k := range args {
		if _, ok := db.vals[k]; ok {
			n++
		}
	}
	return resp.IntegerValue(n)
}

func mget(sess *session, args []string) resp.Value {
	db := sess.db
	db.mu.Lock()
	defer db.mu.Unlock()
	vals := make([]resp.Value, len(args))
	for i, k := range args {
		if e, ok := db.vals[k]; ok && e.kind == kindString {
			vals[i] = resp.StringValue(e.str)
		} else {
			vals[i] = resp.NullValue()
		}
	}
	return resp.ArrayValue(vals)
}

func typeCmd(sess *session, args []string) resp.Value {
	db := sess.db
	db.mu.Lock()
	defer db.mu.Unlock()
	e, ok := db.vals[args[0]]
	if !ok {
		return resp.SimpleStringValue("none")
	}
	switch e.kind {
	case kindList:
		return resp.SimpleStringValue("list")
	case kindHash:
		return resp.SimpleStringValue("hash")
	default:
		return resp.SimpleStringValue("string")
	}
}

func lpush(sess *session, args []string) resp.Value {
	return push(sess.db, args, true)
}

func rpush(sess *session, args []string) resp.Value {
	return push(sess.db, args, false)
}

func push(db *database, args []string, front bool) resp.Value {
	db.mu.Lock()
	defer db.mu.Unlock()
	e, ok := db.vals[args[0]]
	if !ok {
		e = &entry{kind: kindList}
		db.vals[args[0]] = e
	}
	if e.kind != kindList {
		return wrongType
	}
	for _, v := range args[1:] {
		if front {
			e.list = append([]string{v}, e.list...)
		} else {
			e.list = append(e.list, v)
		}
	}
	db.touch(args[0])
	return resp.IntegerValue(len(e.list))
}

func llen(sess *session, args []string) resp.Value {
	db := sess.db
	db.mu.Lock()
	defer db.mu.Unlock()
	e, ok := db.vals[args[0]]
	if !ok {
		return resp.IntegerValue(0)
	}
	if e.kind != kindList {
		return wrongType
	}
	return resp.IntegerValue(len(e.list))
}

func lrange(sess *session, args []string) resp.Value {
	start, err1 := strconv.Atoi(args[1])
	stop, err2 := strconv.Atoi(args[2])
	if err1 != nil || err2 != nil {
		return notInteger
	}
	db := sess.db
	db.mu.Lock()
	defer db.mu.Unlock()
	e, ok := db.vals[args[0]]
	if !ok {
		return resp.ArrayValue(nil)
	}
	if e.kind != kindList {
		return wrongType
	}
	n := len(e.list)
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop || start >= n {
		return resp.ArrayValue(nil)
	}
	vals := make([]resp.Value, 0, stop-start+1)
	for _, v := range e.list[start : stop+1] {
		vals = append(vals, resp.StringValue(v))
	}
	return resp.ArrayValue(vals)
}

func hset(sess *session, args []string) resp.Value {
	if len(args)%2 != 1 {
		return respError("ERR wrong number of arguments for 'hset' command")
	}
	db := sess.db
	db.mu.Lock()
	defer db.mu.Unlock()
	e, ok := db.vals[args[0]]
	if !ok {
		e = &entry{kind: kindHash, hash: make(map[string]string)}
		db.vals[args[0]] = e
	}
	if e.kind != kindHash {
		return wrongType
	}
	added := 0
	for i := 1; i < len(args); i += 2 {
		if _, ok := e.hash[args[i]]; !ok {
			added++
		}
		e.hash[args[i]] = args[i+1]
	}
	db.touch(args[0])
	return resp.IntegerValue(added)
}

func hget(sess *session, args []string) resp.Value {
	db := sess.db
	db.mu.Lock()
	defer db.mu.Unlock()
	e, ok := db.vals[args[0]]
	if !ok {
		return resp.NullValue()
	}
	if e.kind != kindHash {
		return wrongType
	}
	v, ok := e.hash[args[1]]
	if !ok {
		return resp.NullValue()
	}
	return resp.StringValue(v)
}

func hgetall(sess *session, args []string) resp.Value {
	db := sess.db
	db.mu.Lock()
	defer db.mu.Unlock()
	e, ok := db.vals[args[0]]
	if !ok {
		return resp.ArrayValue(nil)
	}
	if e.kind != kindHash {
		return wrongType
	}
	vals := make([]resp.Value, 0, len(e.hash)*2)
	for k, v := range e.hash {
		vals = append(vals, resp.StringValue(k), resp.StringValue(v))
	}
	return resp.ArrayValue(vals)
}
