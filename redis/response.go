package redis

import "strings"

// TransactionResponse checks and unpacks the reply of EXEC.
func TransactionResponse(res interface{}) ([]interface{}, error) {
	if arr, ok := res.([]interface{}); ok {
		return arr, nil
	}
	if res == nil {
		res = ErrExecEmpty.NewWithNoMessage()
	}
	if _, ok := res.(error); !ok {
		res = ErrResponseUnexpected.New("EXEC reply is not an array").WithProperty(EKResponse, res)
	}
	return nil, res.(error)
}

// InfoMap parses the bulk-string reply of INFO into a key to value mapping.
// Section headers ("# Server") and empty lines are skipped.
func InfoMap(res interface{}) interface{} {
	txt, ok := asString(res)
	if !ok {
		if err := AsError(res); err != nil {
			return res
		}
		return ErrResponseUnexpected.New("INFO reply is not a string").WithProperty(EKResponse, res)
	}
	info := make(map[string]string)
	for _, line := range strings.Split(txt, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" || line[0] == '#' {
			continue
		}
		kv := strings.SplitN(line, ":", 2)
		if len(kv) != 2 {
			continue
		}
		info[kv[0]] = kv[1]
	}
	return info
}

// PairsMap folds a flat field/value array reply (HGETALL and friends) into a
// mapping.
func PairsMap(res interface{}) interface{} {
	arr, ok := res.([]interface{})
	if !ok {
		if err := AsError(res); err != nil {
			return res
		}
		return ErrResponseUnexpected.New("reply is not a field/value array").WithProperty(EKResponse, res)
	}
	if len(arr)%2 != 0 {
		return ErrResponseUnexpected.New("field/value array has odd length").WithProperty(EKResponse, res)
	}
	m := make(map[string]string, len(arr)/2)
	for i := 0; i < len(arr); i += 2 {
		k, kok := asString(arr[i])
		v, vok := asString(arr[i+1])
		if !kok || !vok {
			return ErrResponseUnexpected.New("field/value array element is not a string").WithProperty(EKResponse, res)
		}
		m[k] = v
	}
	return m
}

func asString(v interface{}) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	default:
		return "", false
	}
}
