package entity

import (
	"strings"

	"github.com/randalmurphal/gatecore/pkg/gatecore/document"
	"github.com/randalmurphal/gatecore/pkg/gatecore/snowflake"
)

// GuildFlags is a bitmask of guild state and feature bits.
type GuildFlags uint32

// Guild flag bits.
const (
	GuildLarge GuildFlags = 1 << iota
	GuildUnavailable
	GuildWidgetEnabled
	GuildInviteSplash
	GuildVIPRegions
	GuildVanityURL
	GuildVerified
	GuildPartnered
	GuildCommunity
	GuildCommerce
	GuildNews
	GuildDiscoverable
	GuildFeatureable
	GuildAnimatedIcon
	GuildBanner
	GuildWelcomeScreenEnabled
	GuildMemberVerificationGate
	GuildPreviewEnabled
	GuildNoJoinNotifications
	GuildNoBoostNotifications
	GuildHasAnimatedIcon
	GuildHasAnimatedBanner
	GuildNoSetupTips
	GuildNoStickerGreeting
	GuildMonetizationEnabled
	GuildMoreStickers
	GuildPrivateThreads
	GuildRoleIcons
	GuildSevenDayThreadArchive
	GuildThreeDayThreadArchive
	GuildTicketedEvents
)

// featureFlags maps feature strings to flag bits. Unknown features are ignored.
var featureFlags = map[string]GuildFlags{
	"INVITE_SPLASH":                    GuildInviteSplash,
	"VIP_REGIONS":                      GuildVIPRegions,
	"VANITY_URL":                       GuildVanityURL,
	"VERIFIED":                         GuildVerified,
	"PARTNERED":                        GuildPartnered,
	"COMMUNITY":                        GuildCommunity,
	"COMMERCE":                         GuildCommerce,
	"NEWS":                             GuildNews,
	"DISCOVERABLE":                     GuildDiscoverable,
	"FEATUREABLE":                      GuildFeatureable,
	"ANIMATED_ICON":                    GuildAnimatedIcon,
	"BANNER":                           GuildBanner,
	"WELCOME_SCREEN_ENABLED":           GuildWelcomeScreenEnabled,
	"MEMBER_VERIFICATION_GATE_ENABLED": GuildMemberVerificationGate,
	"PREVIEW_ENABLED":                  GuildPreviewEnabled,
	"MONETIZATION_ENABLED":             GuildMonetizationEnabled,
	"MORE_STICKERS":                    GuildMoreStickers,
	"PRIVATE_THREADS":                  GuildPrivateThreads,
	"ROLE_ICONS":                       GuildRoleIcons,
	"SEVEN_DAY_THREAD_ARCHIVE":         GuildSevenDayThreadArchive,
	"THREE_DAY_THREAD_ARCHIVE":         GuildThreeDayThreadArchive,
	"TICKETED_EVENTS_ENABLED":          GuildTicketedEvents,
}

// featureMask covers every bit a feature string can set.
var featureMask = func() GuildFlags {
	var m GuildFlags
	for _, f := range featureFlags {
		m |= f
	}
	return m
}()

// systemChannelFlags maps system_channel_flags bits to guild flags.
var systemChannelFlags = []struct {
	bit  uint8
	flag GuildFlags
}{
	{1, GuildNoJoinNotifications},
	{2, GuildNoBoostNotifications},
	{4, GuildNoSetupTips},
	{8, GuildNoStickerGreeting},
}

// WelcomeChannel is one entry of a guild welcome screen.
type WelcomeChannel struct {
	ChannelID   snowflake.ID
	Description string
	EmojiID     snowflake.ID
	EmojiName   string
}

// WelcomeScreen is shown to new members of community guilds.
type WelcomeScreen struct {
	Description string
	Channels    []WelcomeChannel
}

// Guild is a server: a collection of channels, roles and members.
type Guild struct {
	ID          snowflake.ID
	ShardID     int
	Flags       GuildFlags
	Name        string
	Description string
	Icon        string
	Banner      string
	Splash      string
	VanityURL   string

	OwnerID                snowflake.ID
	ApplicationID          snowflake.ID
	AFKChannelID           snowflake.ID
	AFKTimeout             uint16
	WidgetChannelID        snowflake.ID
	SystemChannelID        snowflake.ID
	RulesChannelID         snowflake.ID
	PublicUpdatesChannelID snowflake.ID

	VerificationLevel           uint8
	DefaultMessageNotifications uint8
	ExplicitContentFilter       uint8
	MFALevel                    uint8
	NSFWLevel                   uint8

	MemberCount              uint32
	PremiumTier              uint8
	PremiumSubscriptionCount uint16
	MaxPresences             uint32
	MaxMembers               uint32
	MaxVideoChannelUsers     uint16

	Roles    []snowflake.ID
	Channels []snowflake.ID
	Threads  []snowflake.ID

	WelcomeScreen WelcomeScreen
}

var guildFields = []document.Field[Guild]{
	document.Emit("name", func(g *Guild) string { return g.Name }),
	document.Emit("widget_enabled", func(g *Guild) bool { return g.WidgetEnabled() }),
	document.Emit("afk_channel_id", func(g *Guild) snowflake.ID { return g.AFKChannelID }),
	document.Emit("afk_timeout", func(g *Guild) uint16 { return g.AFKTimeout }).
		When(func(g *Guild) bool { return g.AFKChannelID != 0 }),
	document.Emit("widget_channel_id", func(g *Guild) snowflake.ID { return g.WidgetChannelID }).
		When((*Guild).WidgetEnabled),
	document.Emit("verification_level", func(g *Guild) uint8 { return g.VerificationLevel }),
	document.Emit("default_message_notifications", func(g *Guild) uint8 { return g.DefaultMessageNotifications }),
	document.Emit("explicit_content_filter", func(g *Guild) uint8 { return g.ExplicitContentFilter }),
	document.Emit("system_channel_id", func(g *Guild) snowflake.ID { return g.SystemChannelID }),
	document.Emit("rules_channel_id", func(g *Guild) snowflake.ID { return g.RulesChannelID }),
	document.Emit("vanity_url_code", func(g *Guild) string { return g.VanityURL }),
	document.Emit("description", func(g *Guild) string { return g.Description }),
}

// GuildFromDocument hydrates a guild from a guild create payload.
//
// An unavailable guild (outage) carries only its id; every other field
// stays at its default and the GuildUnavailable flag is set.
func GuildFromDocument(src document.Source) (*Guild, error) {
	return (&Guild{}).apply(src)
}

// UpdateFromDocument returns a copy of g with the fields present in a
// partial guild update applied. Keys the update omits or sends as null
// keep their value from g, so create-only data such as the member count
// survives. g itself is never modified.
func (g *Guild) UpdateFromDocument(src document.Source) (*Guild, error) {
	return g.Clone().apply(src)
}

// apply overlays src onto g. Absent and null keys leave g unchanged.
func (g *Guild) apply(src document.Source) (*Guild, error) {
	r := newReader(src)
	set(r, "id", &g.ID)
	if read[bool](r, "unavailable") {
		if r.err != nil {
			return nil, r.err
		}
		g.Flags |= GuildUnavailable
		return g, nil
	}
	g.Flags &^= GuildUnavailable

	set(r, "name", &g.Name)
	set(r, "description", &g.Description)
	set(r, "discovery_splash", &g.Splash)
	set(r, "vanity_url_code", &g.VanityURL)
	if r.present("icon") {
		icon := read[string](r, "icon")
		g.Flags &^= GuildHasAnimatedIcon
		if len(icon) > 2 && strings.HasPrefix(icon, "a_") {
			icon = icon[2:]
			g.Flags |= GuildHasAnimatedIcon
		}
		g.Icon = icon
	}
	if r.present("banner") {
		banner := read[string](r, "banner")
		g.Flags &^= GuildHasAnimatedBanner
		if len(banner) > 2 && strings.HasPrefix(banner, "a_") {
			g.Flags |= GuildHasAnimatedBanner
		}
		g.Banner = banner
	}

	set(r, "owner_id", &g.OwnerID)
	set(r, "application_id", &g.ApplicationID)
	set(r, "afk_channel_id", &g.AFKChannelID)
	set(r, "afk_timeout", &g.AFKTimeout)
	set(r, "widget_channel_id", &g.WidgetChannelID)
	set(r, "system_channel_id", &g.SystemChannelID)
	set(r, "rules_channel_id", &g.RulesChannelID)
	set(r, "public_updates_channel_id", &g.PublicUpdatesChannelID)

	set(r, "verification_level", &g.VerificationLevel)
	set(r, "default_message_notifications", &g.DefaultMessageNotifications)
	set(r, "explicit_content_filter", &g.ExplicitContentFilter)
	set(r, "mfa_level", &g.MFALevel)
	set(r, "nsfw_level", &g.NSFWLevel)

	set(r, "member_count", &g.MemberCount)
	set(r, "premium_tier", &g.PremiumTier)
	set(r, "premium_subscription_count", &g.PremiumSubscriptionCount)
	set(r, "max_presences", &g.MaxPresences)
	set(r, "max_members", &g.MaxMembers)
	set(r, "max_video_channel_users", &g.MaxVideoChannelUsers)

	setFlag(r, "large", &g.Flags, GuildLarge)
	setFlag(r, "widget_enabled", &g.Flags, GuildWidgetEnabled)
	if r.present("features") {
		g.Flags &^= featureMask
		for _, feature := range r.strings("features") {
			g.Flags |= featureFlags[feature]
		}
	}
	if r.present("system_channel_flags") {
		scf := read[uint8](r, "system_channel_flags")
		for _, m := range systemChannelFlags {
			g.Flags &^= m.flag
			if scf&m.bit != 0 {
				g.Flags |= m.flag
			}
		}
	}

	if r.present("roles") {
		g.Roles = objectIDs(r, "roles")
	}
	if r.present("channels") {
		g.Channels = objectIDs(r, "channels")
	}
	if r.present("threads") {
		g.Threads = objectIDs(r, "threads")
	}

	if ws, ok := r.nested("welcome_screen"); ok {
		g.WelcomeScreen = readWelcomeScreen(r, ws)
	}

	if r.err != nil {
		return nil, r.err
	}
	return g, nil
}

// setFlag sets or clears bit from a boolean key when it is present.
func setFlag(r *reader, key string, flags *GuildFlags, bit GuildFlags) {
	if !r.present(key) {
		return
	}
	if read[bool](r, key) {
		*flags |= bit
	} else {
		*flags &^= bit
	}
}

// objectIDs collects the ids of an array of child objects.
func objectIDs(r *reader, key string) []snowflake.ID {
	children := r.objects(key)
	if len(children) == 0 {
		return nil
	}
	ids := make([]snowflake.ID, 0, len(children))
	for _, child := range children {
		cr := newReader(child)
		id := read[snowflake.ID](cr, "id")
		if cr.err != nil {
			r.err = cr.err
			return nil
		}
		ids = append(ids, id)
	}
	return ids
}

func readWelcomeScreen(r *reader, src document.Source) WelcomeScreen {
	wr := newReader(src)
	ws := WelcomeScreen{Description: read[string](wr, "description")}
	for _, child := range wr.objects("welcome_channels") {
		cr := newReader(child)
		wc := WelcomeChannel{
			ChannelID:   read[snowflake.ID](cr, "channel_id"),
			Description: read[string](cr, "description"),
			EmojiID:     read[snowflake.ID](cr, "emoji_id"),
			EmojiName:   read[string](cr, "emoji_name"),
		}
		if cr.err != nil {
			wr.err = cr.err
			break
		}
		ws.Channels = append(ws.Channels, wc)
	}
	if wr.err != nil && r.err == nil {
		r.err = wr.err
	}
	return ws
}

// ToDocument returns the guild modification payload.
func (g *Guild) ToDocument() document.Object {
	return document.Build(g, guildFields)
}

// Has reports whether all bits of f are set.
func (g *Guild) Has(f GuildFlags) bool {
	return g.Flags&f == f
}

// IsLarge reports whether the guild is over the large threshold.
func (g *Guild) IsLarge() bool { return g.Has(GuildLarge) }

// IsUnavailable reports whether the guild is in an outage.
func (g *Guild) IsUnavailable() bool { return g.Has(GuildUnavailable) }

// WidgetEnabled reports whether the server widget is on.
func (g *Guild) WidgetEnabled() bool { return g.Has(GuildWidgetEnabled) }

// IsCommunity reports whether community features are enabled.
func (g *Guild) IsCommunity() bool { return g.Has(GuildCommunity) }

// IsVerified reports whether the guild is verified.
func (g *Guild) IsVerified() bool { return g.Has(GuildVerified) }

// IsPartnered reports whether the guild is partnered.
func (g *Guild) IsPartnered() bool { return g.Has(GuildPartnered) }

// Clone returns a copy that does not share slices with g.
func (g *Guild) Clone() *Guild {
	c := *g
	c.Roles = append([]snowflake.ID(nil), g.Roles...)
	c.Channels = append([]snowflake.ID(nil), g.Channels...)
	c.Threads = append([]snowflake.ID(nil), g.Threads...)
	c.WelcomeScreen.Channels = append([]WelcomeChannel(nil), g.WelcomeScreen.Channels...)
	return &c
}
