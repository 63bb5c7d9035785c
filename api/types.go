// Package api provides a typed client for the media server's REST API:
// stream negotiation, watch history, subtitle selection and library browsing.
package api

import (
	"fmt"

	"github.com/samber/mo"
)

// ItemKind distinguishes the two playable unit types the server knows about.
type ItemKind string

const (
	Movie   ItemKind = "movie"
	Episode ItemKind = "episode"
)

// MediaItem identifies a playable unit. A new item value starts a brand-new
// playback session; the fields never change within one.
type MediaItem struct {
	ID              int64    `json:"id"`
	Kind            ItemKind `json:"kind"`
	Title           string   `json:"title"`
	DurationSeconds float64  `json:"duration_seconds"`
}

func (m MediaItem) String() string {
	return fmt.Sprintf("%s %d (%s)", m.Kind, m.ID, m.Title)
}

// TransportKind is the delivery mechanism the server decided on.
type TransportKind string

const (
	// Segmented streams are delivered as an HLS manifest referencing
	// time-sliced media segments; arbitrary seeks need re-negotiation.
	Segmented TransportKind = "segmented"
	// Progressive streams serve the original file; the player seeks
	// within it without any backend involvement.
	Progressive TransportKind = "progressive"
)

// StreamRequest carries the client's preferences into a negotiation call.
type StreamRequest struct {
	SeekTime       float64
	PreferDirect   bool
	ForceTranscode bool
	Quality        string
	Scale          string
	SubtitleID     mo.Option[int]
	Burn           bool
}

// StreamDescriptor is the result of one negotiation call. It is owned by the
// session controller and superseded, never merged, by each new negotiation.
type StreamDescriptor struct {
	Kind            TransportKind
	URL             string
	SoftSubURL      string
	DurationSeconds float64
}

// ProgressSnapshot is the last playback position reported to the watch history.
type ProgressSnapshot struct {
	PositionSeconds int `json:"position_seconds"`
	DurationSeconds int `json:"duration_seconds"`
}

// SubtitleChoice is the user's persisted subtitle selection for an item.
type SubtitleChoice struct {
	ID   int    `json:"subtitle_id"`
	Lang string `json:"lang"`
}

// Subtitle is one locally cached subtitle track offered by the server.
type Subtitle struct {
	ID       int    `json:"id"`
	Lang     string `json:"lang"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	Selected bool   `json:"selected"`
}

// MovieEntry is a library listing row for a movie.
type MovieEntry struct {
	ID              int64   `json:"id"`
	Title           string  `json:"title"`
	Overview        string  `json:"overview"`
	PosterPath      string  `json:"poster_path"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// Item converts a library row into a playable media item reference.
func (m MovieEntry) Item() MediaItem {
	return MediaItem{ID: m.ID, Kind: Movie, Title: m.Title, DurationSeconds: m.DurationSeconds}
}

// SeriesEntry is a library listing row for a series.
type SeriesEntry struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Overview     string `json:"overview"`
	PosterPath   string `json:"poster_path"`
	FirstAirDate string `json:"first_air_date"`
}

// EpisodeEntry is a library listing row for an episode of a series.
type EpisodeEntry struct {
	ID              int64   `json:"id"`
	Season          int     `json:"season"`
	Episode         int     `json:"episode"`
	Title           string  `json:"title"`
	Overview        string  `json:"overview"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// Item converts a library row into a playable media item reference.
func (e EpisodeEntry) Item(series *SeriesEntry) MediaItem {
	title := e.Title
	if series != nil {
		title = fmt.Sprintf("%s S%02dE%02d - %s", series.Title, e.Season, e.Episode, e.Title)
	}
	return MediaItem{ID: e.ID, Kind: Episode, Title: title, DurationSeconds: e.DurationSeconds}
}

// ContinueEntry is one partially watched item from the continue-watching list.
type ContinueEntry struct {
	Item            MediaItem
	PositionSeconds float64
}
