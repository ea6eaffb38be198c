package entity

import (
	"github.com/randalmurphal/gatecore/pkg/gatecore/document"
	"github.com/randalmurphal/gatecore/pkg/gatecore/snowflake"
)

// reader wraps a source and keeps the first extraction error.
// Once an error is recorded every later read returns the zero value, so a
// constructor can read all its fields and check err once at the end.
type reader struct {
	src document.Source
	err error
}

func newReader(src document.Source) *reader {
	return &reader{src: src}
}

func read[T document.Value](r *reader, key string) T {
	var zero T
	if r.err != nil {
		return zero
	}
	v, err := document.Get[T](r.src, key)
	if err != nil {
		r.err = err
		return zero
	}
	return v
}

// set stores the value for key in dst only when the key is present and
// not null, leaving dst untouched otherwise.
func set[T document.Value](r *reader, key string, dst *T) {
	if r.err != nil || !r.present(key) {
		return
	}
	*dst = read[T](r, key)
}

// present reports whether key holds a non-null value.
func (r *reader) present(key string) bool {
	if r.src == nil {
		return false
	}
	v, ok := r.src.Lookup(key)
	return ok && v != nil
}

func (r *reader) ref(key string) snowflake.ID {
	if r.err != nil {
		return 0
	}
	id, err := document.Ref(r.src, key)
	if err != nil {
		r.err = err
		return 0
	}
	return id
}

// firstRef returns the first non-zero reference among keys.
func (r *reader) firstRef(keys ...string) snowflake.ID {
	for _, key := range keys {
		if id := r.ref(key); id != 0 {
			return id
		}
	}
	return 0
}

func (r *reader) ids(key string) []snowflake.ID {
	if r.err != nil {
		return nil
	}
	ids, err := document.IDList(r.src, key)
	if err != nil {
		r.err = err
		return nil
	}
	return ids
}

func (r *reader) strings(key string) []string {
	if r.err != nil {
		return nil
	}
	out, err := document.Strings(r.src, key)
	if err != nil {
		r.err = err
		return nil
	}
	return out
}

func (r *reader) objects(key string) []document.Source {
	if r.err != nil {
		return nil
	}
	out, err := document.Objects(r.src, key)
	if err != nil {
		r.err = err
		return nil
	}
	return out
}

func (r *reader) nested(key string) (document.Source, bool) {
	if r.err != nil {
		return nil, false
	}
	child, ok, err := document.Nested(r.src, key)
	if err != nil {
		r.err = err
		return nil, false
	}
	return child, ok
}
