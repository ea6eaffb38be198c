// Package cache is the in-process directory of live gateway entities.
//
// The dispatch path only reads from the cache through Finder. Writes come
// from the Maintainer, which applies create/update/delete events as a
// separate pipeline. Entries are immutable once stored: writers replace
// the pointer, so a reader holding a Ref never observes a half-built entity.
package cache

// Ref is an optional, non-owning reference to a cached entity.
// The zero Ref is absent.
type Ref[T any] struct {
	v *T
}

// Some wraps v. A nil v yields an absent Ref.
func Some[T any](v *T) Ref[T] {
	return Ref[T]{v: v}
}

// None returns an absent Ref.
func None[T any]() Ref[T] {
	return Ref[T]{}
}

// Get returns the referenced entity and whether it is present.
func (r Ref[T]) Get() (*T, bool) {
	return r.v, r.v != nil
}

// Present reports whether the reference resolved.
func (r Ref[T]) Present() bool {
	return r.v != nil
}

// OrNil returns the entity or nil.
func (r Ref[T]) OrNil() *T {
	return r.v
}
