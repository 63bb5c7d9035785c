// Package settings manages the persistent playback preferences that feed
// every stream negotiation.
package settings

import (
	"github.com/lumen-cli/lumen/filesystem"
	"github.com/lumen-cli/lumen/key"
	"github.com/lumen-cli/lumen/where"
	"github.com/metafates/gache"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Mode decides how the client asks the server to deliver a stream.
type Mode string

const (
	// ModeAuto picks direct play or transcoding from the measured downlink.
	ModeAuto      Mode = "auto"
	ModeDirect    Mode = "direct"
	ModeTranscode Mode = "transcode"
)

// SubtitlePolicy decides how a selected subtitle track is rendered.
type SubtitlePolicy string

const (
	SubtitlesOff  SubtitlePolicy = "off"
	SubtitlesSoft SubtitlePolicy = "soft"
	SubtitlesBurn SubtitlePolicy = "burn"
)

// Playback is the full set of stream preferences. It is read at every
// stream start, so edits take effect on the next negotiation.
type Playback struct {
	Mode           Mode           `json:"mode"`
	Quality        string         `json:"quality"`
	Scale          string         `json:"scale"`
	SubtitlePolicy SubtitlePolicy `json:"subtitle_policy"`
}

// Qualities and Scales enumerate the transcode presets the server accepts.
var (
	Modes            = []Mode{ModeAuto, ModeDirect, ModeTranscode}
	Qualities        = []string{"low", "medium", "high"}
	Scales           = []string{"source", "1080p", "720p", "480p", "360p"}
	SubtitlePolicies = []SubtitlePolicy{SubtitlesOff, SubtitlesSoft, SubtitlesBurn}
)

var cacher = gache.New[*Playback](
	&gache.Options{
		Path:       where.Settings(),
		FileSystem: &filesystem.GacheFs{},
	},
)

// Defaults returns the playback preferences seeded from configuration.
func Defaults() Playback {
	return Playback{
		Mode:           Mode(viper.GetString(key.PlaybackMode)),
		Quality:        viper.GetString(key.PlaybackQuality),
		Scale:          viper.GetString(key.PlaybackScale),
		SubtitlePolicy: SubtitlePolicy(viper.GetString(key.PlaybackSubtitlePolicy)),
	}
}

// Load returns the persisted preferences, falling back to configured
// defaults when nothing has been saved yet.
func Load() Playback {
	cached, expired, err := cacher.Get()
	if err != nil || expired || cached == nil {
		return Defaults()
	}
	return normalize(*cached)
}

// Save persists the preferences for subsequent sessions.
func Save(p Playback) error {
	p = normalize(p)
	return cacher.Set(&p)
}

// normalize replaces unknown enum values with the configured defaults, so a
// hand-edited settings file cannot produce a request the server rejects.
func normalize(p Playback) Playback {
	defaults := Defaults()
	if !lo.Contains(Modes, p.Mode) {
		p.Mode = defaults.Mode
	}
	if !lo.Contains(Qualities, p.Quality) {
		p.Quality = defaults.Quality
	}
	if !lo.Contains(Scales, p.Scale) {
		p.Scale = defaults.Scale
	}
	if !lo.Contains(SubtitlePolicies, p.SubtitlePolicy) {
		p.SubtitlePolicy = defaults.SubtitlePolicy
	}
	return p
}
