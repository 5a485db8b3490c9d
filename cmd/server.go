package cmd

import (
	"github.com/maxsid/siteauth/auth"
	"github.com/maxsid/siteauth/github"
	ghauth "github.com/maxsid/siteauth/github/auth"
	"github.com/maxsid/siteauth/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	serverAddress = ":8080"
)

var serverCMD = &cobra.Command{
	Use:   "server",
	Short: "Run web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		comps, err := newComponents(cmd.Context())
		if err != nil {
			return err
		}
		defer comps.Close()

		secret := viper.GetString(keyClientSecret)
		var conf github.Config
		conf, err = ghauth.NewOAuthConfig(viper.GetString(keyClientID), secret, viper.GetString(keySiteURL))
		if err != nil {
			return err
		}
		exchanger := auth.NewEndpointExchanger(exchangeURL(), github.NewHTTPClient(0))
		flow := auth.NewFlow(conf, comps.states, comps.tokens, exchanger, comps.logger.Named("oauth2"))

		h := &server.Handlers{
			Flow:     flow,
			Auth:     comps.auth,
			Profiles: comps.profiles,
			Logger:   comps.logger.Named("server"),
		}
		if secret != "" {
			h.Exchanger = conf
		} else {
			comps.logger.Info("github.client_secret is not set, the token exchange endpoint is disabled", "exchange_url", exchangeURL())
		}
		return server.Run(serverAddress, h)
	},
}

func initServerFlags() {
	serverCMD.PersistentFlags().StringVar(&serverAddress, "addr", serverAddress, "Server listening address")
}
