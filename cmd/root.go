// Package cmd implements the command-line interface for lumen.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/lumen-cli/lumen/api"
	"github.com/lumen-cli/lumen/color"
	"github.com/lumen-cli/lumen/constant"
	"github.com/lumen-cli/lumen/icon"
	"github.com/lumen-cli/lumen/key"
	"github.com/lumen-cli/lumen/log"
	"github.com/lumen-cli/lumen/style"
	"github.com/lumen-cli/lumen/tui"
	"github.com/lumen-cli/lumen/util"
	"github.com/lumen-cli/lumen/version"
	"github.com/lumen-cli/lumen/where"
	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Set the visual icon variant (e.g., nerd, emoji, square)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.PersistentFlags().BoolP("write-progress", "H", true, "Persist playback progress to the server watch history")
	lo.Must0(viper.BindPFlag(key.SessionHistorySaveOnPlayback, rootCmd.PersistentFlags().Lookup("write-progress")))

	rootCmd.Flags().BoolP("continue", "c", false, "Open the continue-watching list instead of the library")

	helpFunc := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		helpFunc(cmd, args)
		version.Notify()
	})

	// Initialize cleanup of localized temporary files on application startup.
	go func() {
		_ = util.Delete(where.Temp())
	}()
}

// rootCmd defines the entry point for the lumen application.
var rootCmd = &cobra.Command{
	Use:   constant.Lumen,
	Short: "A minimalist command-line client for self-hosted media streaming",
	Long: constant.AsciiArtLogo + "\n" +
		style.New().Italic(true).Foreground(color.HiRed).Render("    - A minimalist command-line client for self-hosted media streaming"),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		CheckDependencies()

		options := tui.Options{
			Continue: lo.Must(cmd.Flags().GetBool("continue")),
			Item:     mo.None[api.MediaItem](),
		}
		handleErr(tui.Run(&options))
	},
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
