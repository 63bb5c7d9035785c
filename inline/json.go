// Package inline provides the implementation for the application's non-interactive, programmable execution mode.
package inline

import (
	"encoding/json"
	"io"

	"github.com/lumen-cli/lumen/api"
)

// Output is the structured document inline mode emits with the json flag.
// Only the sections that were requested are populated.
type Output struct {
	Query    string              `json:"query,omitempty"`
	Movies   []api.MovieEntry    `json:"movies,omitempty"`
	Series   []api.SeriesEntry   `json:"series,omitempty"`
	Episodes []api.EpisodeEntry  `json:"episodes,omitempty"`
	Continue []api.ContinueEntry `json:"continue,omitempty"`
}

func writeJson(w io.Writer, output *Output) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
