package redis

import (
	"fmt"

	"github.com/joomcode/errorx"
)

// Errors is the root namespace for all errors produced by this library.
var Errors = errorx.NewNamespace("redisq")

var (
	// ErrTraitNotSent marks errors for requests that were never written to the socket:
	// the server did not see them, and no reply slot was consumed.
	ErrTraitNotSent = errorx.RegisterTrait("request_not_sent")
	// ErrTraitConnectivity marks io level and connection level failures.
	ErrTraitConnectivity = errorx.RegisterTrait("network")
)

var (
	// ErrOpts - wrong options were passed to Connect.
	ErrOpts = Errors.NewSubNamespace("opts", ErrTraitNotSent)
	// ErrContextIsNil - context is not passed to Connect.
	ErrContextIsNil = ErrOpts.NewType("context_is_nil")
	// ErrNoAddressProvided - address is empty.
	ErrNoAddressProvided = ErrOpts.NewType("no_address")

	// ErrConnection - connection level errors.
	ErrConnection = Errors.NewSubNamespace("connection", ErrTraitConnectivity)
	// ErrDial - could not connect.
	ErrDial = ErrConnection.NewType("could_not_connect", ErrTraitNotSent)
	// ErrAuth - password didn't match.
	ErrAuth = ErrConnection.NewType("could_not_auth", ErrTraitNotSent)
	// ErrConnSetup - other connection initialization error (handshake).
	ErrConnSetup = ErrConnection.NewType("connection_setup", ErrTraitNotSent)
	// ErrConnClosed - connection is closed. Requests enqueued before the close
	// are resolved with this error as well.
	ErrConnClosed = ErrConnection.NewType("connection_closed")

	// ErrIO - read/write error or timeout. The stream position is no longer
	// trustworthy after this one.
	ErrIO = Errors.NewType("io_error", ErrTraitConnectivity)

	// ErrRequest - request was malformed and was not sent.
	ErrRequest = Errors.NewSubNamespace("request", ErrTraitNotSent)
	// ErrArgumentType - argument is not serializable.
	ErrArgumentType = ErrRequest.NewType("argument_type")
	// ErrCommandForbidden - command switches connection mode and is not allowed.
	ErrCommandForbidden = ErrRequest.NewType("command_forbidden")
	// ErrBatchFormat - transaction request list is malformed.
	ErrBatchFormat = ErrRequest.NewType("batch_format")
	// ErrRequestCancelled - future was cancelled before the request was written.
	ErrRequestCancelled = ErrRequest.NewType("request_cancelled")

	// ErrResponse - response was malformed or unexpected.
	ErrResponse = Errors.NewSubNamespace("response")
	// ErrResponseFormat - response is not a valid RESP frame.
	ErrResponseFormat = ErrResponse.NewType("format")
	// ErrHeaderlineTooLarge - reply header line exceeds the read buffer.
	ErrHeaderlineTooLarge = ErrResponseFormat.NewSubtype("headerline_too_large")
	// ErrHeaderlineEmpty - reply header line is empty.
	ErrHeaderlineEmpty = ErrResponseFormat.NewSubtype("headerline_empty")
	// ErrIntegerParsing - reply integer is malformed.
	ErrIntegerParsing = ErrResponseFormat.NewSubtype("integer_parsing")
	// ErrNoFinalRN - no final "\r\n" after a bulk string.
	ErrNoFinalRN = ErrResponseFormat.NewSubtype("no_final_rn")
	// ErrUnknownHeaderType - reply type byte is not one of "+-:$*".
	ErrUnknownHeaderType = ErrResponseFormat.NewSubtype("unknown_header_type")
	// ErrResponseUnexpected - response is valid RESP, but its shape is not
	// what the protocol position calls for.
	ErrResponseUnexpected = ErrResponse.NewType("unexpected")
	// ErrPing - ping response doesn't match.
	ErrPing = ErrResponse.NewType("ping")

	// ErrResult - just a regular error returned by the server. Does not affect
	// the stream position.
	ErrResult = Errors.NewType("result")
	// ErrExecAbort - transaction failed; raised from a synchronous EXEC.
	ErrExecAbort = ErrResult.NewSubtype("exec_abort")
	// ErrExecEmpty - EXEC returned nil, i.e. a WATCH-ed key changed.
	ErrExecEmpty = ErrResult.NewSubtype("exec_empty")
)

var (
	// EKCmd - command name the error relates to.
	EKCmd = errorx.RegisterPrintableProperty("cmd")
	// EKArgPos - position of the offending command argument.
	EKArgPos = errorx.RegisterPrintableProperty("argpos")
	// EKResponse - reply value that was not expected.
	EKResponse = errorx.RegisterPrintableProperty("response")
	// EKLine - raw header line of a malformed reply.
	EKLine = errorx.RegisterPrintableProperty("line")
)

// AsError casts a reply value to error if it is one.
func AsError(v interface{}) error {
	e, _ := v.(error)
	return e
}

// AsErrorx casts a reply value to *errorx.Error if it is one.
// Every error placed into a reply slot by this library is an *errorx.Error.
func AsErrorx(v interface{}) *errorx.Error {
	e, _ := v.(*errorx.Error)
	if e == nil {
		if _, ok := v.(error); ok {
			panic(fmt.Errorf("result should be either *errorx.Error or not error at all, but got %#v", v))
		}
	}
	return e
}

// HardError reports whether err makes the stream position untrustworthy.
// Regular server error replies are soft: the reply slot was consumed as usual.
func HardError(err *errorx.Error) bool {
	return err != nil && !err.IsOfType(ErrResult)
}
