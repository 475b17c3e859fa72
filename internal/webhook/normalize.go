package webhook

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// listKeys are the envelope fields the backend has used for list payloads.
var listKeys = []string{"data", "items", "events", "schedules", "requests", "records"}

// decodeList accepts a bare JSON array, an object that wraps the array under
// one of listKeys, or an empty/null body. Items that do not decode into T are
// dropped and reported to skip, which may be nil.
func decodeList[T any](body []byte, skip func(index int, err error)) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []T{}, nil
	}

	switch trimmed[0] {
	case '[':
		return decodeArray[T](trimmed, skip)
	case '{':
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
		}
		for _, key := range listKeys {
			raw, ok := envelope[key]
			if !ok {
				continue
			}
			inner := bytes.TrimSpace(raw)
			if bytes.Equal(inner, []byte("null")) {
				return []T{}, nil
			}
			if len(inner) > 0 && inner[0] == '[' {
				return decodeArray[T](inner, skip)
			}
		}
	}
	return nil, ErrUnexpectedShape
}

func decodeArray[T any](raw []byte, skip func(index int, err error)) ([]T, error) {
	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
	}
	items := make([]T, 0, len(elements))
	for i, element := range elements {
		var item T
		if err := json.Unmarshal(element, &item); err != nil {
			if skip != nil {
				skip(i, err)
			}
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// decodeOne accepts either the record object itself or an object wrapping it
// under "data".
func decodeOne[T any](body []byte) (T, error) {
	var zero T
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return zero, ErrUnexpectedShape
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
	}
	if raw, ok := envelope["data"]; ok {
		inner := bytes.TrimSpace(raw)
		if len(inner) > 0 && inner[0] == '{' {
			trimmed = inner
		}
	}

	var out T
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
	}
	return out, nil
}
