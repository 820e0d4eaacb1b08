/*
Package redisq - redis client with explicit pipelining.

https://redis.io/topics/pipelining

Pipelining trades round-trip latency for throughput: several requests are
written to the connection before any of their replies is read. This client
makes that explicit. A connection is owned by a single goroutine; that owner
decides, per command, whether to block for the reply right away or to queue
the request and collect replies later. Replies are always delivered in the
order requests were issued, no matter how many are in flight.

Capabilities

- explicit pipelining: Send queues a request without blocking, Wait/WaitAll
drain replies back in FIFO order, resolving each request's future,

- synchronous calls: Do drains everything issued before it (firing those
futures as a side effect) and returns its own reply,

- transactions: MULTI/EXEC issued as ordinary commands are tracked, so the
QUEUED acknowledgements and the EXEC aggregate land in the right reply slots;
SendTransaction bundles the whole exchange,

- hook for custom logging.

Limitations

- one owner per connection: nothing is locked, sharing a Connection between
goroutines requires external serialization,

- SUBSCRIBE/PSUBSCRIBE/MONITOR are forbidden: they switch the connection into
a different communication mode that can not be mixed with request/reply
traffic,

- no reconnection: once an io or protocol error desynchronizes the stream the
connection only reports the latched error, and the owner must tear it down.
Requests already written can not be cancelled either; their replies must be
drained to keep the stream position correct.

Structure

- root package is empty,

- common functionality (requests, futures, the wire codec, errors, the
command table) is in the redis subpackage,

- the connection and its pipelining engine are in the redisconn subpackage,

- an in-process server for tests is in the testbed subpackage.

Types accepted as command arguments: nil, []byte, string, int (and all other
integer types), float64, float32, bool. All arguments are converted to redis
bulk strings as usual (string and bytes as is; numbers in decimal notation;
bool as "0"/"1"; nil as the empty string).

No custom types are used for request results. Results are de-serialized into
plain go types and are returned as interface{}:

	redis        | go
	-------------|-------
	plain string | string
	bulk string  | []byte
	integer      | int64
	array        | []interface{}
	error        | error (*errorx.Error)

IO, connection, and other errors are not returned separately but as the
result value (and have the same *errorx.Error underlying type). A couple of
commands with well-known reply shapes are reshaped at this layer: INFO and
HGETALL come back as map[string]string.
*/
package redisq
