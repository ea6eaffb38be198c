package event

import (
	"time"

	"github.com/randalmurphal/gatecore/pkg/gatecore/document"
	"github.com/randalmurphal/gatecore/pkg/gatecore/entity"
	"github.com/randalmurphal/gatecore/pkg/gatecore/snowflake"
)

// hydrator builds the record for one event type. A nil record with a nil
// error means there is nothing to deliver.
type hydrator func(d *Dispatcher, data document.Source, meta Meta) (any, error)

var hydrators = map[string]hydrator{
	TypeTypingStart:   typingStart,
	TypeChannelDelete: channelDelete,
	TypeGuildCreate:   guildCreate,
	TypeInviteCreate:  inviteCreate,
	TypeInviteDelete:  inviteDelete,
}

// fields reads scalars and keeps the first error.
type fields struct {
	src document.Source
	err error
}

func get[T document.Value](f *fields, key string) T {
	var zero T
	if f.err != nil {
		return zero
	}
	v, err := document.Get[T](f.src, key)
	if err != nil {
		f.err = err
		return zero
	}
	return v
}

func typingStart(d *Dispatcher, data document.Source, meta Meta) (any, error) {
	f := &fields{src: data}
	guildID := get[snowflake.ID](f, "guild_id")
	channelID := get[snowflake.ID](f, "channel_id")
	userID := get[snowflake.ID](f, "user_id")
	ts := get[time.Time](f, "timestamp")
	if f.err != nil {
		return nil, f.err
	}
	return &TypingStart{
		Meta:      meta,
		Guild:     d.finder.FindGuild(guildID),
		Channel:   d.finder.FindChannel(channelID),
		UserID:    userID,
		User:      d.finder.FindUser(userID),
		Timestamp: ts,
	}, nil
}

// channelDelete delivers only channels the cache knows about. The cache
// maintainer removes the channel after dispatch.
func channelDelete(d *Dispatcher, data document.Source, meta Meta) (any, error) {
	id, err := document.Get[snowflake.ID](data, "id")
	if err != nil {
		return nil, err
	}
	ch, ok := d.finder.FindChannel(id).Get()
	if !ok {
		return nil, nil
	}
	return &ChannelDelete{
		Meta:    meta,
		Deleted: ch,
		Guild:   d.finder.FindGuild(ch.GuildID),
	}, nil
}

// guildCreate validates the payload, then hands listeners the cached guild
// when the cache maintainer has stored it, so listeners and later lookups
// share one entity.
func guildCreate(d *Dispatcher, data document.Source, meta Meta) (any, error) {
	g, err := entity.GuildFromDocument(data)
	if err != nil {
		return nil, err
	}
	if cached, ok := d.finder.FindGuild(g.ID).Get(); ok {
		g = cached
	}
	return &GuildCreate{Meta: meta, Guild: g}, nil
}

func inviteCreate(d *Dispatcher, data document.Source, meta Meta) (any, error) {
	inv, err := entity.InviteFromDocument(data)
	if err != nil {
		return nil, err
	}
	return &InviteCreate{
		Meta:    meta,
		Invite:  inv,
		Guild:   d.finder.FindGuild(inv.GuildID),
		Channel: d.finder.FindChannel(inv.ChannelID),
	}, nil
}

func inviteDelete(d *Dispatcher, data document.Source, meta Meta) (any, error) {
	f := &fields{src: data}
	code := get[string](f, "code")
	guildID := get[snowflake.ID](f, "guild_id")
	channelID := get[snowflake.ID](f, "channel_id")
	if f.err != nil {
		return nil, f.err
	}
	return &InviteDelete{
		Meta:      meta,
		Code:      code,
		GuildID:   guildID,
		ChannelID: channelID,
		Guild:     d.finder.FindGuild(guildID),
		Channel:   d.finder.FindChannel(channelID),
	}, nil
}
