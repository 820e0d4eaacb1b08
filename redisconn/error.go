package redisconn

import (
	"github.com/joomcode/errorx"
)

var (
	// EKConnection - key for the connection that handled the request.
	EKConnection = errorx.RegisterPrintableProperty("connection")
	// EKDb - db number to select.
	EKDb = errorx.RegisterPrintableProperty("db")
)
