package cmd

import (
	"fmt"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"os"
	"path"
	"strings"
)

const (
	keyClientID     = "github.client_id"
	keyClientSecret = "github.client_secret"
	keyAppID        = "github.app_id"
	keySiteURL      = "site.url"
	keyCachePem     = "site.cache_pem"
	keyEncryptKey   = "site.encrypt_key"
	keyExchangeURL  = "auth.exchange_url"
	keyStoragePath  = "storage.path"
	keyLogLevel     = "log.level"
)

var (
	userConfigDir string

	cfgFile   string
	ephemeral bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:          "siteauth",
	Short:        "Manages GitHub credentials of the site editor.",
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(serverCMD)
	rootCmd.AddCommand(authCMD)

	initRootFlags()
	initServerFlags()
	initAuthCommands()
}

func initRootFlags() {
	cfgDir, err := getConfigDirectory()
	if err != nil {
		panic(err)
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", fmt.Sprintf("%s/config.yaml", cfgDir), "config file")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "keep credentials in memory only")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (trace, debug, info, warn, error)")
	cobra.CheckErr(viper.BindPFlag(keyLogLevel, rootCmd.PersistentFlags().Lookup("log-level")))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	setDefaults()
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find config directory.
		dir, err := getConfigDirectory()
		cobra.CheckErr(err)

		// Search config in dir directory with name "config" (without extension).
		viper.AddConfigPath(dir)
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("siteauth")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		_, _ = fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func setDefaults() {
	dir, err := getConfigDirectory()
	cobra.CheckErr(err)
	viper.SetDefault(keySiteURL, "http://localhost:8080")
	viper.SetDefault(keyCachePem, false)
	viper.SetDefault(keyAppID, "-")
	viper.SetDefault(keyStoragePath, path.Join(dir, "siteauth.db"))
	viper.SetDefault(keyLogLevel, "info")
}

func getConfigDirectory() (string, error) {
	if userConfigDir != "" {
		return userConfigDir, nil
	}
	configPath, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	userConfigDir = path.Join(configPath, "siteauth")
	return userConfigDir, nil
}
