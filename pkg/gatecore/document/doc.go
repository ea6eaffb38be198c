// Package document provides null-safe, type-coercing access to loosely
// typed gateway payloads.
//
// Payloads arrive as trees of objects, arrays and scalars. Any key may be
// missing or null; both read as the zero value of the requested type.
// A key that is present with an incompatible shape is reported as a
// *MalformedFieldError so the caller can drop the whole record.
//
//	typing, _ := document.Parse(raw)
//	channelID, err := document.Get[snowflake.ID](typing, "channel_id")
//	ts, err := document.Get[time.Time](typing, "timestamp")
//
// Outbound documents are built from a declarative field table so that
// only values the caller actually set are sent:
//
//	var inviteFields = []document.Field[Invite]{
//	    document.Emit("max_age", func(i *Invite) int32 { return i.MaxAge }),
//	    document.Emit("temporary", func(i *Invite) bool { return i.Temporary }),
//	}
//	body := document.Build(&inv, inviteFields)
package document
