// Package cmd implements the command-line interface for lumen.
package cmd

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/lumen-cli/lumen/api"
	"github.com/lumen-cli/lumen/filesystem"
	"github.com/lumen-cli/lumen/inline"
	"github.com/lumen-cli/lumen/query"

	"github.com/invopop/jsonschema"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(inlineCmd)

	inlineCmd.Flags().StringP("section", "t", "movies", "The library section to read (movies, series, continue)")
	inlineCmd.Flags().StringP("query", "q", "", "Filter results by fuzzy title match")
	inlineCmd.Flags().Int64("series-id", 0, "Expand the episodes of one series (series section only)")
	inlineCmd.Flags().BoolP("json", "j", false, "Format the command output as a JSON object")
	inlineCmd.Flags().StringP("output", "o", "", "Specify a file path to write the command output")

	inlineCmd.RegisterFlagCompletionFunc("query", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return query.SuggestMany(toComplete), cobra.ShellCompDirectiveNoFileComp
	})
	inlineCmd.RegisterFlagCompletionFunc("section", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"movies", "series", "continue"}, cobra.ShellCompDirectiveNoFileComp
	})
}

// inlineCmd executes the application in non-interactive, scriptable inline mode.
var inlineCmd = &cobra.Command{
	Use:   "inline",
	Short: "Execute the application in non-interactive, scriptable inline mode",
	Long: `Read the media server library without entering the interactive UI.

Sections:
  movies   - the movie library
  series   - the series library (add --series-id to expand episodes)
  continue - partially watched items

Plain output prints one title per line; the json flag emits a structured
document suitable for scripting.`,
	Run: func(cmd *cobra.Command, args []string) {
		section, err := inline.ParseSection(lo.Must(cmd.Flags().GetString("section")))
		handleErr(err)

		output := lo.Must(cmd.Flags().GetString("output"))
		var writer io.Writer
		if output != "" {
			writer, err = filesystem.API().Create(output)
			handleErr(err)
		} else {
			writer = os.Stdout
		}

		options := &inline.Options{
			Out:      writer,
			Section:  section,
			SeriesID: lo.Must(cmd.Flags().GetInt64("series-id")),
			Query:    lo.Must(cmd.Flags().GetString("query")),
			Json:     lo.Must(cmd.Flags().GetBool("json")),
		}

		handleErr(inline.Run(api.New(), options))
	},
}

func init() {
	inlineCmd.AddCommand(inlineSchemaCmd)
}

// inlineSchemaCmd generates the JSON schema for structured inline mode output.
var inlineSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Generate the JSON schema for structured inline mode output",
	Run: func(cmd *cobra.Command, args []string) {
		reflector := new(jsonschema.Reflector)
		reflector.Anonymous = true
		reflector.Namer = func(t reflect.Type) string {
			name := t.Name()
			switch strings.ToLower(name) {
			case "movieentry", "seriesentry", "episodeentry", "continueentry", "output":
				return filepath.Base(t.PkgPath()) + "." + name
			}

			return name
		}

		schema := reflector.Reflect(&inline.Output{})
		handleErr(json.NewEncoder(os.Stdout).Encode(schema))
	},
}
