// Package snowflake provides the 64-bit identifier used to name every
// entity on the gateway protocol.
//
// Identifiers travel as decimal strings because their magnitude exceeds
// the safe integer range of a float64. Zero is reserved as the "unset"
// sentinel and never names a real entity.
package snowflake

import (
	"bytes"
	"fmt"
	"strconv"
	"time"
)

// Epoch is the protocol epoch in milliseconds since the Unix epoch.
const Epoch int64 = 1420070400000

// ID is a 64-bit unsigned entity identifier.
type ID uint64

// Parse parses a decimal-encoded identifier.
func Parse(s string) (ID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse snowflake %q: %w", s, err)
	}
	return ID(v), nil
}

// MustParse is like Parse but panics on error. Intended for constants in tests.
func MustParse(s string) ID {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

// IsZero reports whether the identifier is the unset sentinel.
func (id ID) IsZero() bool {
	return id == 0
}

// String returns the decimal form.
func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Time returns the creation time encoded in the identifier.
func (id ID) Time() time.Time {
	ms := int64(uint64(id)>>22) + Epoch
	return time.UnixMilli(ms).UTC()
}

// MarshalJSON implements json.Marshaler. Identifiers are always quoted.
func (id ID) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(id.String())), nil
}

// UnmarshalJSON implements json.Unmarshaler.
// Accepts a quoted decimal string, a bare number, or null (zero).
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = 0
		return nil
	}
	s := string(data)
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return fmt.Errorf("unquote snowflake: %w", err)
		}
		s = unquoted
	}
	if s == "" {
		*id = 0
		return nil
	}
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*id = v
	return nil
}
