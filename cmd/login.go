// Package cmd implements the command-line interface for lumen.
package cmd

import (
	"context"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/lumen-cli/lumen/api"
	"github.com/lumen-cli/lumen/auth"
	"github.com/lumen-cli/lumen/color"
	"github.com/lumen-cli/lumen/icon"
	"github.com/lumen-cli/lumen/key"
	"github.com/lumen-cli/lumen/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(loginCmd)

	loginCmd.Flags().StringP("server", "s", "", "Media server URL (persisted to the config on success)")
	loginCmd.Flags().StringP("username", "u", "", "Media server account name")
	loginCmd.Flags().StringP("password", "p", "", "Media server account password (prompted when omitted)")
}

// loginCmd authenticates against the media server and stores the session
// token in the system keyring.
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate against the media server",
	Run: func(cmd *cobra.Command, args []string) {
		server := lo.Must(cmd.Flags().GetString("server"))
		username := lo.Must(cmd.Flags().GetString("username"))
		password := lo.Must(cmd.Flags().GetString("password"))

		if username == "" {
			prompt := survey.Input{Message: "Username:"}
			handleErr(survey.AskOne(&prompt, &username, survey.WithValidator(survey.Required)))
		}
		if password == "" {
			prompt := survey.Password{Message: "Password:"}
			handleErr(survey.AskOne(&prompt, &password, survey.WithValidator(survey.Required)))
		}

		serverURL := viper.GetString(key.ServerURL)
		if server != "" {
			serverURL = server
		}

		token, err := api.Login(context.Background(), serverURL, username, password)
		handleErr(err)
		handleErr(auth.SetToken(token))

		if server != "" {
			viper.Set(key.ServerURL, server)
			switch err := viper.WriteConfig(); err.(type) {
			case viper.ConfigFileNotFoundError:
				handleErr(viper.SafeWriteConfig())
			default:
				handleErr(err)
			}
		}

		fmt.Printf(
			"%s logged in to %s as %s\n",
			style.Fg(color.Green)(icon.Get(icon.Success)),
			style.Fg(color.Purple)(serverURL),
			style.Fg(color.Yellow)(username),
		)
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

// logoutCmd discards the stored session token.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the stored media server session token",
	Run: func(cmd *cobra.Command, args []string) {
		if err := auth.DeleteToken(); err != nil {
			handleErr(fmt.Errorf("no stored session: %w", err))
		}

		fmt.Printf("%s logged out\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}
