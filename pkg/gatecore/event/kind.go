package event

import "context"

// Gateway event types with typed records.
const (
	TypeTypingStart   = "TYPING_START"
	TypeChannelDelete = "CHANNEL_DELETE"
	TypeGuildCreate   = "GUILD_CREATE"
	TypeInviteCreate  = "INVITE_CREATE"
	TypeInviteDelete  = "INVITE_DELETE"
)

// Kind ties a gateway event type to its record type E.
type Kind[E any] struct {
	name string
}

// String returns the gateway event type.
func (k Kind[E]) String() string { return k.name }

// Event kinds.
var (
	KindTypingStart   = Kind[TypingStart]{name: TypeTypingStart}
	KindChannelDelete = Kind[ChannelDelete]{name: TypeChannelDelete}
	KindGuildCreate   = Kind[GuildCreate]{name: TypeGuildCreate}
	KindInviteCreate  = Kind[InviteCreate]{name: TypeInviteCreate}
	KindInviteDelete  = Kind[InviteDelete]{name: TypeInviteDelete}
)

// Listener observes events of one kind. The record must not be modified
// or retained after the listener returns.
type Listener[E any] func(ctx context.Context, e *E) error

// On registers fn for events of kind k.
func On[E any](d *Dispatcher, k Kind[E], fn Listener[E]) ListenerID {
	return d.registry.Add(k.name, func(ctx context.Context, ev any) error {
		return fn(ctx, ev.(*E))
	})
}

// Off removes a listener registered with On.
func Off[E any](d *Dispatcher, k Kind[E], id ListenerID) bool {
	return d.registry.Remove(k.name, id)
}
