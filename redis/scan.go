package redis

import "errors"

// ScanEOF is returned by scan iterators when iteration is finished.
var ScanEOF = errors.New("iteration finished")

// ScanOpts describes a SCAN-family iteration.
type ScanOpts struct {
	// Cmd is one of SCAN, SSCAN, HSCAN, ZSCAN. Default is SCAN.
	Cmd string
	// Key is the key to iterate (every command except SCAN).
	Key string
	// Match is a glob pattern, passed as is.
	Match string
	// Count is a hint for batch size.
	Count int
}

// Request builds the request for the next batch given current cursor it.
func (s ScanOpts) Request(it []byte) Request {
	if it == nil {
		it = []byte("0")
	}
	cmd := s.Cmd
	if cmd == "" {
		cmd = "SCAN"
	}
	var args []interface{}
	if cmd != "SCAN" {
		args = append(args, s.Key)
	}
	args = append(args, it)
	if s.Match != "" {
		args = append(args, "MATCH", s.Match)
	}
	if s.Count > 0 {
		args = append(args, "COUNT", s.Count)
	}
	return Request{cmd, args}
}

// ScanResponse unpacks a SCAN-family reply into the next cursor and a batch
// of keys.
func ScanResponse(res interface{}) ([]byte, []string, error) {
	if err := AsError(res); err != nil {
		return nil, nil, err
	}
	arr, ok := res.([]interface{})
	if !ok || len(arr) != 2 {
		return nil, nil, scanUnexpected(res)
	}
	it, ok := arr[0].([]byte)
	if !ok {
		return nil, nil, scanUnexpected(res)
	}
	keys, ok := arr[1].([]interface{})
	if !ok {
		return nil, nil, scanUnexpected(res)
	}
	strs := make([]string, len(keys))
	for i, k := range keys {
		b, ok := k.([]byte)
		if !ok {
			return nil, nil, scanUnexpected(res)
		}
		strs[i] = string(b)
	}
	return it, strs, nil
}

func scanUnexpected(res interface{}) error {
	return ErrResponseUnexpected.New("SCAN reply is not [cursor, keys]").WithProperty(EKResponse, res)
}
