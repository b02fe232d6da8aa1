package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "spoilsctl",
	Short: "Spoilsctl is a command line tool for interacting with the spoils API",
	Long: `spoilsctl is the command-line interface for the spoils food data service.

Spoils caches product records by barcode, resolves free-text ingredient
statements into a graph of atomic ingredients with per-gram macros, and
runs all of it through a durable background job queue.

Common workflows:

  Fetch a product by barcode (enqueues the fetch, then analysis):
    spoilsctl fetch 3017620422003

  Resolve an ingredient by name:
    spoilsctl resolve "Wheat Flour"

  Look up a resolved ingredient:
    spoilsctl ingredient "Wheat Flour"

  Check a job's status:
    spoilsctl status <job-id>

Configuration:
  Set the API endpoint and credentials via environment variables or a config file:
    SPOILS_URL      API endpoint (default: http://localhost:8080)
    SPOILS_TOKEN    API key for the submission endpoints`,
}

func Execute() error {
	return rootCmd.Execute()
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".spoilsctl"
		viper.AddConfigPath(home)
		viper.SetConfigName(".spoilsctl")
		viper.SetConfigType("yaml")
	}

	// Read environment variables that match "SPOILS_VARNAME"
	viper.SetEnvPrefix("SPOILS")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.spoilsctl.yaml)")

	rootCmd.PersistentFlags().String("url", "http://localhost:8080", "Spoils API URL")
	viper.BindPFlag("url", rootCmd.PersistentFlags().Lookup("url"))

	rootCmd.PersistentFlags().StringP("token", "t", "", "API key for the submission endpoints")
	viper.BindPFlag("token", rootCmd.PersistentFlags().Lookup("token"))
}
