package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/randalmurphal/gatecore/pkg/gatecore/snowflake"
)

// Value lists the scalar types Get can produce.
type Value interface {
	snowflake.ID | int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64 | float64 | bool | string | time.Time
}

// Get returns the value for key converted to T.
//
// An absent key or a null value yields the zero value of T and a nil error.
// A present value of an incompatible shape yields a *MalformedFieldError.
func Get[T Value](src Source, key string) (T, error) {
	var out T
	if src == nil {
		return out, nil
	}
	raw, ok := src.Lookup(key)
	if !ok || raw == nil {
		return out, nil
	}

	var err error
	switch p := any(&out).(type) {
	case *snowflake.ID:
		*p, err = asSnowflake(key, raw)
	case *int8:
		var n int64
		n, err = asInt(key, "int8", raw, math.MinInt8, math.MaxInt8)
		*p = int8(n)
	case *int16:
		var n int64
		n, err = asInt(key, "int16", raw, math.MinInt16, math.MaxInt16)
		*p = int16(n)
	case *int32:
		var n int64
		n, err = asInt(key, "int32", raw, math.MinInt32, math.MaxInt32)
		*p = int32(n)
	case *int64:
		*p, err = asInt(key, "int64", raw, math.MinInt64, math.MaxInt64)
	case *uint8:
		var n uint64
		n, err = asUint(key, "uint8", raw, math.MaxUint8)
		*p = uint8(n)
	case *uint16:
		var n uint64
		n, err = asUint(key, "uint16", raw, math.MaxUint16)
		*p = uint16(n)
	case *uint32:
		var n uint64
		n, err = asUint(key, "uint32", raw, math.MaxUint32)
		*p = uint32(n)
	case *uint64:
		*p, err = asBits(key, raw)
	case *float64:
		*p, err = asFloat(key, raw)
	case *bool:
		b, isBool := raw.(bool)
		if !isBool {
			err = malformed(key, "bool", raw, nil)
		}
		*p = b
	case *string:
		s, isString := raw.(string)
		if !isString {
			err = malformed(key, "string", raw, nil)
		}
		*p = s
	case *time.Time:
		*p, err = asTime(key, raw)
	}

	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Nested returns the child object stored under key.
// ok is false when the key is absent or null.
func Nested(src Source, key string) (Source, bool, error) {
	if src == nil {
		return nil, false, nil
	}
	raw, ok := src.Lookup(key)
	if !ok || raw == nil {
		return nil, false, nil
	}
	switch v := raw.(type) {
	case Object:
		return v, true, nil
	case map[string]any:
		return Object(v), true, nil
	default:
		return nil, false, malformed(key, "object", raw, nil)
	}
}

// Ref returns the identifier of a referenced entity.
//
// The reference may be a nested object carrying "id" or a bare identifier.
// When the key is absent the result is zero and the child is never read.
func Ref(src Source, key string) (snowflake.ID, error) {
	if src == nil {
		return 0, nil
	}
	raw, ok := src.Lookup(key)
	if !ok || raw == nil {
		return 0, nil
	}

	child, isObject, err := Nested(src, key)
	if err != nil {
		// Not an object, so it must be the identifier itself.
		return asSnowflake(key, raw)
	}
	if !isObject {
		return 0, nil
	}

	id, err := Get[snowflake.ID](child, "id")
	if err != nil {
		var mf *MalformedFieldError
		if errors.As(err, &mf) {
			mf.Key = key + "." + mf.Key
		}
		return 0, err
	}
	return id, nil
}

// IDList returns an array of identifiers.
func IDList(src Source, key string) ([]snowflake.ID, error) {
	items, err := array(src, key)
	if err != nil || len(items) == 0 {
		return nil, err
	}
	ids := make([]snowflake.ID, 0, len(items))
	for i, item := range items {
		id, err := asSnowflake(fmt.Sprintf("%s[%d]", key, i), item)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Strings returns an array of strings.
func Strings(src Source, key string) ([]string, error) {
	items, err := array(src, key)
	if err != nil || len(items) == 0 {
		return nil, err
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, malformed(fmt.Sprintf("%s[%d]", key, i), "string", item, nil)
		}
		out = append(out, s)
	}
	return out, nil
}

// Objects returns an array of child objects.
func Objects(src Source, key string) ([]Source, error) {
	items, err := array(src, key)
	if err != nil || len(items) == 0 {
		return nil, err
	}
	out := make([]Source, 0, len(items))
	for i, item := range items {
		switch v := item.(type) {
		case Object:
			out = append(out, v)
		case map[string]any:
			out = append(out, Object(v))
		default:
			return nil, malformed(fmt.Sprintf("%s[%d]", key, i), "object", item, nil)
		}
	}
	return out, nil
}

func array(src Source, key string) ([]any, error) {
	if src == nil {
		return nil, nil
	}
	raw, ok := src.Lookup(key)
	if !ok || raw == nil {
		return nil, nil
	}
	switch v := raw.(type) {
	case []any:
		return v, nil
	case []string:
		items := make([]any, len(v))
		for i, s := range v {
			items[i] = s
		}
		return items, nil
	default:
		return nil, malformed(key, "array", raw, nil)
	}
}

func asSnowflake(key string, raw any) (snowflake.ID, error) {
	switch v := raw.(type) {
	case snowflake.ID:
		return v, nil
	case string:
		if v == "" {
			return 0, nil
		}
		id, err := snowflake.Parse(v)
		if err != nil {
			return 0, malformed(key, "snowflake", raw, err)
		}
		return id, nil
	case json.Number:
		n, err := strconv.ParseUint(v.String(), 10, 64)
		if err != nil {
			return 0, malformed(key, "snowflake", raw, err)
		}
		return snowflake.ID(n), nil
	default:
		n, err := asUint(key, "snowflake", raw, math.MaxUint64)
		return snowflake.ID(n), err
	}
}

func asInt(key, want string, raw any, lo, hi int64) (int64, error) {
	var n int64
	switch v := raw.(type) {
	case json.Number:
		parsed, err := v.Int64()
		if err != nil {
			return 0, malformed(key, want, raw, err)
		}
		n = parsed
	case float64:
		if v != math.Trunc(v) || v < math.MinInt64 || v > math.MaxInt64 {
			return 0, malformed(key, want, raw, nil)
		}
		n = int64(v)
	case float32:
		f := float64(v)
		if f != math.Trunc(f) {
			return 0, malformed(key, want, raw, nil)
		}
		n = int64(f)
	case int:
		n = int64(v)
	case int8:
		n = int64(v)
	case int16:
		n = int64(v)
	case int32:
		n = int64(v)
	case int64:
		n = v
	case uint:
		if uint64(v) > math.MaxInt64 {
			return 0, malformed(key, want, raw, nil)
		}
		n = int64(v)
	case uint8:
		n = int64(v)
	case uint16:
		n = int64(v)
	case uint32:
		n = int64(v)
	case uint64:
		if v > math.MaxInt64 {
			return 0, malformed(key, want, raw, nil)
		}
		n = int64(v)
	default:
		return 0, malformed(key, want, raw, nil)
	}
	if n < lo || n > hi {
		return 0, malformed(key, want, raw, fmt.Errorf("%d out of range", n))
	}
	return n, nil
}

func asUint(key, want string, raw any, hi uint64) (uint64, error) {
	var n uint64
	switch v := raw.(type) {
	case json.Number:
		parsed, err := strconv.ParseUint(v.String(), 10, 64)
		if err != nil {
			return 0, malformed(key, want, raw, err)
		}
		n = parsed
	case uint:
		n = uint64(v)
	case uint8:
		n = uint64(v)
	case uint16:
		n = uint64(v)
	case uint32:
		n = uint64(v)
	case uint64:
		n = v
	default:
		signed, err := asInt(key, want, raw, 0, math.MaxInt64)
		if err != nil {
			return 0, err
		}
		n = uint64(signed)
	}
	if n > hi {
		return 0, malformed(key, want, raw, fmt.Errorf("%d out of range", n))
	}
	return n, nil
}

// asBits reads a 64-bit bitset, which the gateway sends as a decimal string
// because it does not fit a JSON double.
func asBits(key string, raw any) (uint64, error) {
	if v, ok := raw.(string); ok {
		if v == "" {
			return 0, nil
		}
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, malformed(key, "uint64", raw, err)
		}
		return n, nil
	}
	return asUint(key, "uint64", raw, math.MaxUint64)
}

func asFloat(key string, raw any) (float64, error) {
	switch v := raw.(type) {
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, malformed(key, "float64", raw, err)
		}
		return f, nil
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	default:
		n, err := asInt(key, "float64", raw, math.MinInt64, math.MaxInt64)
		return float64(n), err
	}
}

// asTime accepts epoch seconds (integral or fractional, as a number or a
// numeric string) and RFC 3339 strings.
func asTime(key string, raw any) (time.Time, error) {
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case string:
		if v == "" {
			return time.Time{}, nil
		}
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t.UTC(), nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return time.Time{}, malformed(key, "timestamp", raw, err)
		}
		return fromSeconds(f), nil
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return time.Unix(n, 0).UTC(), nil
		}
		f, err := v.Float64()
		if err != nil {
			return time.Time{}, malformed(key, "timestamp", raw, err)
		}
		return fromSeconds(f), nil
	default:
		f, err := asFloat(key, raw)
		if err != nil {
			return time.Time{}, malformed(key, "timestamp", raw, nil)
		}
		return fromSeconds(f), nil
	}
}

func fromSeconds(f float64) time.Time {
	sec := math.Floor(f)
	nsec := math.Round((f - sec) * 1e9)
	return time.Unix(int64(sec), int64(nsec)).UTC()
}
