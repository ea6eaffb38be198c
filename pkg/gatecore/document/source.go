package document

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// Source is a read-only view over a document object.
// Lookup distinguishes an absent key (ok=false) from a null value (nil, true).
type Source interface {
	Lookup(key string) (any, bool)
}

// Object is a decoded document object.
type Object map[string]any

// Compile-time interface check.
var _ Source = Object(nil)

// Lookup implements Source. A nil Object behaves as an empty one.
func (o Object) Lookup(key string) (any, bool) {
	v, ok := o[key]
	return v, ok
}

// Has reports whether key is present, even if null.
func (o Object) Has(key string) bool {
	_, ok := o[key]
	return ok
}

// codec keeps numbers as json.Number so 64-bit identifiers sent as bare
// numbers are not rounded through float64.
var codec = sonic.Config{
	UseNumber:   true,
	SortMapKeys: true,
}.Froze()

// Parse decodes a JSON object.
func Parse(data []byte) (Object, error) {
	var obj Object
	if err := codec.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if obj == nil {
		obj = Object{}
	}
	return obj, nil
}

// Marshal encodes an object with sorted keys.
func Marshal(obj Object) ([]byte, error) {
	if obj == nil {
		obj = Object{}
	}
	data, err := codec.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}
