package document

import (
	"github.com/randalmurphal/gatecore/pkg/gatecore/snowflake"
)

// Field describes one outbound key of an entity.
// Fields are evaluated uniformly by Build; keys absent from an entity's
// table are never sent, whatever their value.
type Field[E any] struct {
	// Key is the outbound document key.
	Key string

	// value returns the encoded value and whether it should be emitted.
	value func(*E) (any, bool)
}

// Emit declares a field that is sent only when it differs from the zero
// value of V.
func Emit[E any, V comparable](key string, get func(*E) V) Field[E] {
	var zero V
	return EmitUnless(key, zero, get)
}

// EmitUnless declares a field that is sent only when it differs from def.
func EmitUnless[E any, V comparable](key string, def V, get func(*E) V) Field[E] {
	return Field[E]{
		Key: key,
		value: func(e *E) (any, bool) {
			v := get(e)
			if v == def {
				return nil, false
			}
			return encode(v), true
		},
	}
}

// Always declares a field that is sent whatever its value.
// Use it for keys where the zero value carries meaning, such as a
// toggle the caller may be switching off.
func Always[E any, V any](key string, get func(*E) V) Field[E] {
	return Field[E]{
		Key: key,
		value: func(e *E) (any, bool) {
			return encode(get(e)), true
		},
	}
}

// EmitList declares a list field that is sent only when non-empty.
func EmitList[E any, V any](key string, get func(*E) []V) Field[E] {
	return Field[E]{
		Key: key,
		value: func(e *E) (any, bool) {
			items := get(e)
			if len(items) == 0 {
				return nil, false
			}
			out := make([]any, len(items))
			for i, item := range items {
				out[i] = encode(item)
			}
			return out, true
		},
	}
}

// When restricts a field to entities satisfying pred.
func (f Field[E]) When(pred func(*E) bool) Field[E] {
	inner := f.value
	f.value = func(e *E) (any, bool) {
		if !pred(e) {
			return nil, false
		}
		return inner(e)
	}
	return f
}

// Build evaluates fields against e and returns the resulting document.
// The result contains only emitted keys.
func Build[E any](e *E, fields []Field[E]) Object {
	out := make(Object, len(fields))
	if e == nil {
		return out
	}
	for _, f := range fields {
		if v, ok := f.value(e); ok {
			out[f.Key] = v
		}
	}
	return out
}

// encode renders identifiers in their wire form.
func encode(v any) any {
	if id, ok := v.(snowflake.ID); ok {
		return id.String()
	}
	return v
}
