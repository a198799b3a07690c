// Package cmd implements the tgtg CLI commands.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	apiclient "github.com/donaldgifford/tgtg-watcher/internal/api/client"
	"github.com/donaldgifford/tgtg-watcher/internal/config"
)

var (
	cliConfigFile string
	rootCmd       = &cobra.Command{
		Use:   "tgtg",
		Short: "Surprise bag search and restock watcher",
		Long: "tgtg logs in to the surprise-bag marketplace with an emailed magic link,\n" +
			"searches for bags near a location, and runs a watcher service that\n" +
			"records stock and sends restock alerts.",
		SilenceUsage: true,
	}
)

// Root returns the root cobra command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "service config file (YAML)")
	flags.StringVar(&cliConfigFile, "cli-config", "", "CLI settings file (default $HOME/.tgtg.yaml)")
	flags.String("email", "", "account email, overrides tgtg.email")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (text, json)")
	flags.String("server", "http://localhost:8080", "watcher API server URL")
	flags.StringP("output", "o", "table", "output format (table, json)")

	for _, name := range []string{"config", "email", "log-level", "log-format", "server", "output"} {
		cobra.CheckErr(viper.BindPFlag(name, flags.Lookup(name)))
	}

	rootCmd.AddCommand(
		loginCmd(),
		searchCmd(),
		serveCmd(),
		migrateCmd(),
		sessionCmd(),
		watchCmd(),
		snapshotsCmd(),
		versionCmd(),
	)
}

func initConfig() {
	if cliConfigFile != "" {
		viper.SetConfigFile(cliConfigFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".tgtg")
	}

	viper.SetEnvPrefix("TGTG")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using CLI settings:", viper.ConfigFileUsed())
	}
}

// flagOverrides applies persistent flags and TGTG_* variables on top of the
// service config file.
func flagOverrides(c *config.Config) {
	if v := viper.GetString("email"); v != "" {
		c.TGTG.Email = v
	}
	if v := viper.GetString("log-level"); v != "" {
		c.Logging.Level = v
	}
	if v := viper.GetString("log-format"); v != "" {
		c.Logging.Format = v
	}
}

func newClient() *apiclient.Client {
	return apiclient.New(viper.GetString("server"))
}

func jsonOutput() bool {
	return viper.GetString("output") == "json"
}
