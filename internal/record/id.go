package record

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ID identifies a record or user as delivered by the webhook backend.
//
// The backend mixes numeric and string identifiers, so an ID remembers which
// JSON kind it was decoded from. Two IDs are equal only when both the value and
// the kind match, which keeps ownership checks free of implicit coercion.
type ID struct {
	value   string
	numeric bool
}

// StringID builds an identifier that encodes as a JSON string.
func StringID(value string) ID {
	return ID{value: value}
}

// NumericID builds an identifier that encodes as a JSON number. The literal is
// stored verbatim.
func NumericID(literal string) ID {
	return ID{value: literal, numeric: true}
}

// ParseID rebuilds an identifier from its stored parts.
func ParseID(value string, numeric bool) ID {
	if value == "" {
		return ID{}
	}
	return ID{value: value, numeric: numeric}
}

// String returns the identifier value without JSON quoting.
func (id ID) String() string {
	return id.value
}

// Numeric reports whether the identifier was a JSON number.
func (id ID) Numeric() bool {
	return id.numeric
}

// SameValue reports whether id and other carry the same value, ignoring the
// JSON kind. It is meant for identifiers that arrive without a kind, such as
// URL path segments. Ownership comparisons use ==.
func (id ID) SameValue(other ID) bool {
	return !id.IsZero() && id.value == other.value
}

// IsZero reports whether the identifier is absent.
func (id ID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.IsZero() {
		return []byte("null"), nil
	}
	if id.numeric {
		return []byte(id.value), nil
	}
	return json.Marshal(id.value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*id = ID{}
		return nil
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("record: decode id: %w", err)
		}
		*id = StringID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("record: decode id: %w", err)
	}
	*id = NumericID(n.String())
	return nil
}
