package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// Movies lists every movie in the server library, ordered by title.
func (c *Client) Movies(ctx context.Context) ([]MovieEntry, error) {
	var movies []MovieEntry
	if err := c.do(ctx, "GET", "/library/movies", nil, nil, &movies); err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	return movies, nil
}

// Series lists every series in the server library, ordered by title.
func (c *Client) Series(ctx context.Context) ([]SeriesEntry, error) {
	var series []SeriesEntry
	if err := c.do(ctx, "GET", "/library/series", nil, nil, &series); err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}
	return series, nil
}

// Episodes lists the episodes of a series, ordered by season and episode.
// A season of 0 returns all seasons.
func (c *Client) Episodes(ctx context.Context, seriesID int64, season int) ([]EpisodeEntry, error) {
	q := url.Values{}
	if season > 0 {
		q.Set("season", strconv.Itoa(season))
	}

	var episodes []EpisodeEntry
	if err := c.do(ctx, "GET", fmt.Sprintf("/library/series/%d/episodes", seriesID), q, nil, &episodes); err != nil {
		return nil, fmt.Errorf("list episodes of series %d: %w", seriesID, err)
	}
	return episodes, nil
}
