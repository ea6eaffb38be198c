package entity

import (
	"github.com/randalmurphal/gatecore/pkg/gatecore/document"
	"github.com/randalmurphal/gatecore/pkg/gatecore/snowflake"
)

// GuildWidget is a guild's embeddable widget settings.
type GuildWidget struct {
	Enabled   bool
	ChannelID snowflake.ID
}

// Both keys are always sent: disabling the widget means sending false.
var widgetFields = []document.Field[GuildWidget]{
	document.Always("channel_id", func(w *GuildWidget) snowflake.ID { return w.ChannelID }),
	document.Always("enabled", func(w *GuildWidget) bool { return w.Enabled }),
}

// GuildWidgetFromDocument hydrates widget settings.
func GuildWidgetFromDocument(src document.Source) (*GuildWidget, error) {
	r := newReader(src)
	w := &GuildWidget{
		Enabled:   read[bool](r, "enabled"),
		ChannelID: read[snowflake.ID](r, "channel_id"),
	}
	if r.err != nil {
		return nil, r.err
	}
	return w, nil
}

// ToDocument returns the widget modification payload.
func (w *GuildWidget) ToDocument() document.Object {
	return document.Build(w, widgetFields)
}
