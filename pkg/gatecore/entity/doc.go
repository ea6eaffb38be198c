// Package entity holds the gateway entity records and their document
// conversions.
//
// Every entity has an inbound constructor (XFromDocument) that starts
// from zero defaults and overwrites only fields present in the source,
// and an outbound ToDocument that emits only non-default whitelisted
// fields. A malformed field aborts the whole entity: constructors return
// nil and the extraction error, never a partially filled record.
package entity
