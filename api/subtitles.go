package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/samber/mo"
)

// Subtitles lists the locally cached subtitle tracks the server offers for the item.
func (c *Client) Subtitles(ctx context.Context, item MediaItem) ([]Subtitle, error) {
	q := url.Values{"item_type": {string(item.Kind)}}

	var subs []Subtitle
	if err := c.do(ctx, "GET", fmt.Sprintf("/subtitles/%d", item.ID), q, nil, &subs); err != nil {
		return nil, fmt.Errorf("list subtitles for %s: %w", item, err)
	}
	return subs, nil
}

// CurrentSubtitle fetches the persisted subtitle selection for the item.
// Absence of a selection is not an error; it returns None.
func (c *Client) CurrentSubtitle(ctx context.Context, item MediaItem) (mo.Option[SubtitleChoice], error) {
	q := url.Values{"item_type": {string(item.Kind)}}

	var resp struct {
		SubtitleID *int   `json:"subtitle_id"`
		Lang       string `json:"lang"`
	}
	if err := c.do(ctx, "GET", fmt.Sprintf("/subtitles/%d/current", item.ID), q, nil, &resp); err != nil {
		return mo.None[SubtitleChoice](), fmt.Errorf("fetch subtitle selection for %s: %w", item, err)
	}

	if resp.SubtitleID == nil {
		return mo.None[SubtitleChoice](), nil
	}
	return mo.Some(SubtitleChoice{ID: *resp.SubtitleID, Lang: resp.Lang}), nil
}

// SelectSubtitle persists the subtitle selection for the item.
// Passing None clears the selection.
func (c *Client) SelectSubtitle(ctx context.Context, item MediaItem, choice mo.Option[SubtitleChoice]) error {
	q := url.Values{"item_type": {string(item.Kind)}}

	body := struct {
		SubtitleID *int `json:"subtitle_id"`
	}{}
	if ch, ok := choice.Get(); ok {
		body.SubtitleID = &ch.ID
	}

	if err := c.do(ctx, "PUT", fmt.Sprintf("/subtitles/%d/select", item.ID), q, body, nil); err != nil {
		return fmt.Errorf("select subtitle for %s: %w", item, err)
	}
	return nil
}
