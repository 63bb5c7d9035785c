package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/lumen-cli/lumen/log"
)

// negotiationResponse mirrors the raw /stream reply. Exactly one of
// direct_url / hls_playlist_url is set depending on the server's decision.
type negotiationResponse struct {
	Mode            string  `json:"mode"`
	DirectURL       string  `json:"direct_url"`
	HLSPlaylistURL  string  `json:"hls_playlist_url"`
	DurationSeconds float64 `json:"duration_seconds"`
	SoftSubURL      string  `json:"soft_sub_url"`
}

// Negotiate asks the server to prepare a stream for the item starting at
// req.SeekTime and returns the resulting descriptor. The server has the
// final word on the transport kind regardless of the request's preference.
func (c *Client) Negotiate(ctx context.Context, item MediaItem, req StreamRequest) (*StreamDescriptor, error) {
	q := url.Values{}
	q.Set("item_type", string(item.Kind))
	q.Set("seek_time", strconv.FormatFloat(req.SeekTime, 'f', -1, 64))
	q.Set("quality", req.Quality)
	q.Set("scale", req.Scale)
	if req.ForceTranscode {
		q.Set("force_transcode", "true")
	} else if req.PreferDirect {
		q.Set("prefer_direct", "true")
	}
	if id, ok := req.SubtitleID.Get(); ok {
		q.Set("subtitle_id", strconv.Itoa(id))
		if req.Burn {
			q.Set("burn", "true")
		}
	}

	var resp negotiationResponse
	if err := c.do(ctx, "GET", fmt.Sprintf("/stream/%d", item.ID), q, nil, &resp); err != nil {
		return nil, fmt.Errorf("negotiate stream for %s: %w", item, err)
	}

	desc := &StreamDescriptor{
		SoftSubURL:      c.absolute(resp.SoftSubURL),
		DurationSeconds: resp.DurationSeconds,
	}
	if desc.DurationSeconds == 0 {
		desc.DurationSeconds = item.DurationSeconds
	}

	if resp.Mode == "direct" && resp.DirectURL != "" {
		desc.Kind = Progressive
		desc.URL = c.absolute(resp.DirectURL)
	} else {
		desc.Kind = Segmented
		desc.URL = c.absolute(resp.HLSPlaylistURL)
	}

	if desc.URL == "" {
		return nil, fmt.Errorf("negotiate stream for %s: server returned no playable url", item)
	}

	log.Infof("negotiated %s stream for %s (seek %.1fs)", desc.Kind, item, req.SeekTime)
	return desc, nil
}

// StopStream releases the server-side resources (an active transcode, for
// instance) associated with the item's stream. Best-effort.
func (c *Client) StopStream(ctx context.Context, item MediaItem) error {
	if err := c.do(ctx, "DELETE", fmt.Sprintf("/stream/%d", item.ID), nil, nil, nil); err != nil {
		return fmt.Errorf("stop stream for %s: %w", item, err)
	}
	return nil
}
