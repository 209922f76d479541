// Package persistence provides the execution-record sinks: an
// in-memory store for tests and local runs, and a SQLite store for
// durable execution logs.
package persistence

import "encoding/json"

// EncodeValue serializes a record payload as JSON. JSON keeps the
// stored log readable by external tooling (stats and export scripts
// share the same database file). Callers must ensure values are
// JSON-encodable; executors that return non-encodable outputs should
// not attach a recorder.
func EncodeValue(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// DecodeValue deserializes a payload previously written by EncodeValue.
// Empty payloads decode to nil.
func DecodeValue(data []byte) (any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}
