// Package cmd implements the command-line interface for lumen.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lumen-cli/lumen/api"
	"github.com/lumen-cli/lumen/color"
	"github.com/lumen-cli/lumen/query"
	"github.com/lumen-cli/lumen/style"
	"github.com/lumen-cli/lumen/tui"
	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().Int64("id", 0, "Play the movie with this server ID, skipping title matching")

	watchCmd.RegisterFlagCompletionFunc("id", cobra.NoFileCompletions)
	watchCmd.ValidArgsFunction = func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return query.SuggestMany(toComplete), cobra.ShellCompDirectiveNoFileComp
	}
}

// watchCmd starts playback for a movie straight from the command line.
var watchCmd = &cobra.Command{
	Use:   "watch [title]",
	Short: "Play a movie by title without browsing the library",
	Long: `Play a movie straight from the command line.

The title does not have to be exact: the closest library match is
picked. Use the --id flag to bypass matching entirely.`,
	Args: cobra.MaximumNArgs(1),
	PreRun: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 && !cmd.Flags().Changed("id") {
			handleErr(errors.New("a title argument or the --id flag is required"))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		CheckDependencies()

		client := api.New()
		movies, err := client.Movies(context.Background())
		handleErr(err)

		if len(movies) == 0 {
			handleErr(errors.New("the movie library is empty"))
		}

		var movie api.MovieEntry
		if id := lo.Must(cmd.Flags().GetInt64("id")); id != 0 {
			found, ok := lo.Find(movies, func(m api.MovieEntry) bool {
				return m.ID == id
			})
			if !ok {
				handleErr(fmt.Errorf("no movie with id %d", id))
			}
			movie = found
		} else {
			title := strings.ToLower(args[0])
			movie = lo.MinBy(movies, func(a, b api.MovieEntry) bool {
				return levenshtein.Distance(title, strings.ToLower(a.Title)) <
					levenshtein.Distance(title, strings.ToLower(b.Title))
			})

			if !strings.EqualFold(movie.Title, args[0]) {
				fmt.Printf("Playing closest match %s\n", style.Fg(color.Yellow)(movie.Title))
			}
			go query.Remember(movie.Title, 1)
		}

		handleErr(tui.Run(&tui.Options{
			Item: mo.Some(movie.Item()),
		}))
	},
}
