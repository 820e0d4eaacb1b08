package redisconn

import "log"

// LogKind enumerates connection events fed to Logger.
type LogKind int

const (
	LogConnecting LogKind = iota
	LogConnected
	LogConnectFailed
	LogFatal
	LogClosed
	LogMAX
)

// Logger is a hook for custom logging of connection events.
type Logger interface {
	Report(event LogKind, conn *Connection, v ...interface{})
}

type defaultLogger struct{}

func (d defaultLogger) Report(event LogKind, conn *Connection, v ...interface{}) {
	switch event {
	case LogConnecting:
		log.Printf("redis: connecting to %s", conn.Addr())
	case LogConnected:
		localAddr := v[0].(string)
		remoteAddr := v[1].(string)
		log.Printf("redis: connected to %s (local addr: %s, remote addr: %s)",
			conn.Addr(), localAddr, remoteAddr)
	case LogConnectFailed:
		err := v[0].(error)
		log.Printf("redis: connection to %s failed: %s", conn.Addr(), err.Error())
	case LogFatal:
		err := v[0].(error)
		log.Printf("redis: connection to %s broken: %s (%d replies undelivered)",
			conn.Addr(), err.Error(), conn.PendingCount())
	case LogClosed:
		log.Printf("redis: connection to %s closed", conn.Addr())
	default:
		args := []interface{}{"redis: unexpected event:", event, conn}
		args = append(args, v...)
		log.Print(args...)
	}
}

// NoopLogger shuts logging up.
type NoopLogger struct{}

// Report implements Logger.
func (d NoopLogger) Report(LogKind, *Connection, ...interface{}) {}
