package cmd

import (
	"github.com/maxsid/siteauth/cli"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"time"
)

var authCMD = &cobra.Command{
	Use:   "auth",
	Short: "Inspect and manage stored credentials.",
}

var authStatusCMD = &cobra.Command{
	Use:   "status",
	Short: "Show which credentials are available and which one is used.",
	RunE: func(cmd *cobra.Command, args []string) error {
		comps, err := newComponents(cmd.Context())
		if err != nil {
			return err
		}
		defer comps.Close()
		return cli.Status(cmd.Context(), cmd.OutOrStdout(), comps.auth)
	},
}

var authKeyCMD = &cobra.Command{
	Use:   "key <file>",
	Short: "Import a GitHub App private key (PEM).",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		comps, err := newComponents(cmd.Context())
		if err != nil {
			return err
		}
		defer comps.Close()
		if !viper.GetBool(keyCachePem) {
			comps.logger.Warn("site.cache_pem is false, the key is usable by this command only")
		}
		return cli.ImportKey(cmd.Context(), cmd.OutOrStdout(), comps.auth, args[0])
	},
}

var authLogoutCMD = &cobra.Command{
	Use:   "logout",
	Short: "Remove the OAuth2 token and the cached private key.",
	RunE: func(cmd *cobra.Command, args []string) error {
		comps, err := newComponents(cmd.Context())
		if err != nil {
			return err
		}
		defer comps.Close()
		return cli.Logout(cmd.Context(), cmd.OutOrStdout(), comps.auth)
	},
}

var authWhoAmICMD = &cobra.Command{
	Use:   "whoami",
	Short: "Show the GitHub user of the OAuth2 token.",
	RunE: func(cmd *cobra.Command, args []string) error {
		comps, err := newComponents(cmd.Context())
		if err != nil {
			return err
		}
		defer comps.Close()
		return cli.WhoAmI(cmd.Context(), cmd.OutOrStdout(), comps.profiles)
	},
}

var authAppJWTCMD = &cobra.Command{
	Use:   "app-jwt",
	Short: "Print a GitHub App JWT signed by the private key.",
	RunE: func(cmd *cobra.Command, args []string) error {
		comps, err := newComponents(cmd.Context())
		if err != nil {
			return err
		}
		defer comps.Close()
		return cli.AppJWT(cmd.Context(), cmd.OutOrStdout(), comps.auth, viper.GetString(keyAppID), time.Now())
	},
}

func initAuthCommands() {
	authCMD.AddCommand(authStatusCMD, authKeyCMD, authLogoutCMD, authWhoAmICMD, authAppJWTCMD)
}
