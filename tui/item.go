// Package tui provides the primary terminal user interface implementation.
package tui

import (
	"fmt"
	"strings"

	"github.com/lumen-cli/lumen/api"
	"github.com/lumen-cli/lumen/icon"
	"github.com/lumen-cli/lumen/key"
	"github.com/lumen-cli/lumen/style"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/viper"
)

// episodeItem couples an episode row with the series it belongs to.
type episodeItem struct {
	entry  api.EpisodeEntry
	series api.SeriesEntry
}

func (e episodeItem) item() api.MediaItem {
	return e.entry.Item(&e.series)
}

// settingRow is one editable playback preference in the settings picker.
type settingRow struct {
	label  string
	values []string
	index  int
}

func (s *settingRow) current() string {
	return s.values[s.index]
}

func (s *settingRow) cycle() {
	s.index = (s.index + 1) % len(s.values)
}

// listItem implements the list.Item interface, wrapping various domain models for terminal display.
type listItem struct {
	internal interface{}
	marked   bool
}

func (t *listItem) toggleMark() {
	t.marked = !t.marked
}

// Title retrieves the primary display text for the list item.
func (t *listItem) Title() (title string) {
	switch e := t.internal.(type) {
	case api.MovieEntry:
		title = e.Title
	case api.SeriesEntry:
		title = e.Title
	case episodeItem:
		title = fmt.Sprintf("S%02dE%02d %s", e.entry.Season, e.entry.Episode, e.entry.Title)
	case api.ContinueEntry:
		title = e.Item.Title
	case api.Subtitle:
		title = e.Name
		if title == "" {
			title = e.Lang
		}
		if e.Selected {
			title = fmt.Sprintf("%s %s", title, lipgloss.NewStyle().Bold(true).Foreground(style.AccentColor).Render(icon.Get(icon.Mark)))
		}
	case *settingRow:
		title = fmt.Sprintf("%s: %s", e.label, style.Fg(style.AccentColor)(e.current()))
	case string:
		title = e
	}

	if viper.GetBool(key.TUIShowIDs) {
		switch e := t.internal.(type) {
		case api.MovieEntry:
			title = fmt.Sprintf("%s %s", title, style.Faint(fmt.Sprintf("#%d", e.ID)))
		case api.SeriesEntry:
			title = fmt.Sprintf("%s %s", title, style.Faint(fmt.Sprintf("#%d", e.ID)))
		case episodeItem:
			title = fmt.Sprintf("%s %s", title, style.Faint(fmt.Sprintf("#%d", e.entry.ID)))
		}
	}

	return
}

// Description retrieves the secondary metadata line for the list item.
func (t *listItem) Description() (description string) {
	switch e := t.internal.(type) {
	case api.MovieEntry:
		var parts []string
		if e.DurationSeconds > 0 {
			parts = append(parts, formatTime(e.DurationSeconds))
		}
		if e.Overview != "" {
			parts = append(parts, e.Overview)
		}
		description = strings.Join(parts, " • ")
	case api.SeriesEntry:
		var parts []string
		if e.FirstAirDate != "" {
			parts = append(parts, e.FirstAirDate)
		}
		if e.Overview != "" {
			parts = append(parts, e.Overview)
		}
		description = strings.Join(parts, " • ")
	case episodeItem:
		description = e.entry.Overview
	case api.ContinueEntry:
		watched := ""
		if dur := e.Item.DurationSeconds; dur > 0 {
			watched = fmt.Sprintf(" (%.0f%%)", e.PositionSeconds/dur*100)
		}
		description = fmt.Sprintf("%s at %s%s",
			lipgloss.NewStyle().Foreground(style.Yellow).Render("Paused"),
			formatTime(e.PositionSeconds),
			watched,
		)
	case api.Subtitle:
		description = e.Lang
	}

	return
}

// FilterValue returns the string used for real-time list filtering and searching.
func (t *listItem) FilterValue() string {
	switch e := t.internal.(type) {
	case api.MovieEntry:
		return e.Title
	case api.SeriesEntry:
		return e.Title
	case episodeItem:
		return e.entry.Title
	case api.ContinueEntry:
		return e.Item.Title
	case api.Subtitle:
		return e.Name + " " + e.Lang
	case *settingRow:
		return e.label
	case string:
		return e
	default:
		return ""
	}
}

// formatTime renders a second count as a playback clock.
func formatTime(seconds float64) string {
	s := int(seconds)
	if s < 0 {
		s = 0
	}
	if s >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", s/3600, s%3600/60, s%60)
	}
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}
