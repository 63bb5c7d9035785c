// Package inline provides the implementation for the application's non-interactive, programmable execution mode.
package inline

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/lumen-cli/lumen/api"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

func Run(client *api.Client, options *Options) error {
	if options.Out == nil {
		options.Out = os.Stdout
	}

	output := &Output{Query: options.Query}
	ctx := context.Background()

	switch options.Section {
	case SectionMovies:
		movies, err := client.Movies(ctx)
		if err != nil {
			return err
		}
		for i := range movies {
			if matches(options.Query, movies[i].Title) {
				output.Movies = append(output.Movies, movies[i])
			}
		}

	case SectionSeries:
		series, err := client.Series(ctx)
		if err != nil {
			return err
		}
		for i := range series {
			if matches(options.Query, series[i].Title) {
				output.Series = append(output.Series, series[i])
			}
		}

		if options.SeriesID != 0 {
			episodes, err := client.Episodes(ctx, options.SeriesID, 0)
			if err != nil {
				return err
			}
			output.Episodes = episodes
		}

	case SectionContinue:
		entries, err := client.ContinueWatching(ctx)
		if err != nil {
			return err
		}
		for i := range entries {
			if matches(options.Query, entries[i].Item.Title) {
				output.Continue = append(output.Continue, entries[i])
			}
		}

	default:
		return fmt.Errorf("unknown section %q", options.Section)
	}

	if options.Json {
		return writeJson(options.Out, output)
	}
	return writePlain(options.Out, output)
}

func matches(query, title string) bool {
	return query == "" || fuzzy.MatchFold(query, title)
}

func writePlain(w io.Writer, output *Output) error {
	for _, m := range output.Movies {
		if _, err := fmt.Fprintln(w, m.Title); err != nil {
			return err
		}
	}
	for _, s := range output.Series {
		if _, err := fmt.Fprintln(w, s.Title); err != nil {
			return err
		}
	}
	for _, e := range output.Episodes {
		if _, err := fmt.Fprintf(w, "S%02dE%02d %s\n", e.Season, e.Episode, e.Title); err != nil {
			return err
		}
	}
	for _, c := range output.Continue {
		if _, err := fmt.Fprintln(w, c.Item.Title); err != nil {
			return err
		}
	}
	return nil
}
