package api

import (
	"context"
	"fmt"
	"net/url"
)

// Progress returns the saved watch position for the item. A zero snapshot
// (no error) means the item has no meaningful history.
func (c *Client) Progress(ctx context.Context, item MediaItem) (ProgressSnapshot, error) {
	q := url.Values{"item_type": {string(item.Kind)}}

	var snap ProgressSnapshot
	if err := c.do(ctx, "GET", fmt.Sprintf("/history/%d", item.ID), q, nil, &snap); err != nil {
		return ProgressSnapshot{}, fmt.Errorf("fetch progress for %s: %w", item, err)
	}
	return snap, nil
}

// SaveProgress upserts the watch position for the item.
func (c *Client) SaveProgress(ctx context.Context, item MediaItem, snap ProgressSnapshot) error {
	q := url.Values{"item_type": {string(item.Kind)}}
	if err := c.do(ctx, "PUT", fmt.Sprintf("/history/%d", item.ID), q, snap, nil); err != nil {
		return fmt.Errorf("save progress for %s: %w", item, err)
	}
	return nil
}

// ClearProgress deletes the watch history record for the item, removing it
// from the continue-watching list.
func (c *Client) ClearProgress(ctx context.Context, item MediaItem) error {
	q := url.Values{"item_type": {string(item.Kind)}}
	if err := c.do(ctx, "DELETE", fmt.Sprintf("/history/%d", item.ID), q, nil, nil); err != nil {
		return fmt.Errorf("clear progress for %s: %w", item, err)
	}
	return nil
}

// continueResponse mirrors the raw /history/continue/ reply.
type continueResponse struct {
	Movies []struct {
		MovieEntry
		PositionSeconds float64 `json:"position_seconds"`
	} `json:"movies"`
	Episodes []struct {
		ID              int64   `json:"id"`
		Season          int     `json:"season"`
		Episode         int     `json:"episode"`
		Title           string  `json:"title"`
		DurationSeconds float64 `json:"duration_seconds"`
		SeriesTitle     string  `json:"series_title"`
		PositionSeconds float64 `json:"position_seconds"`
	} `json:"episodes"`
}

// ContinueWatching returns the partially watched movies and episodes,
// most recently watched first.
func (c *Client) ContinueWatching(ctx context.Context) ([]ContinueEntry, error) {
	var resp continueResponse
	if err := c.do(ctx, "GET", "/history/continue/", nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch continue watching: %w", err)
	}

	entries := make([]ContinueEntry, 0, len(resp.Movies)+len(resp.Episodes))
	for _, m := range resp.Movies {
		entries = append(entries, ContinueEntry{
			Item:            m.Item(),
			PositionSeconds: m.PositionSeconds,
		})
	}
	for _, e := range resp.Episodes {
		entry := EpisodeEntry{
			ID:              e.ID,
			Season:          e.Season,
			Episode:         e.Episode,
			Title:           e.Title,
			DurationSeconds: e.DurationSeconds,
		}
		entries = append(entries, ContinueEntry{
			Item:            entry.Item(&SeriesEntry{Title: e.SeriesTitle}),
			PositionSeconds: e.PositionSeconds,
		})
	}
	return entries, nil
}
