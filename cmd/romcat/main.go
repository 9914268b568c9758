package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/elwood/romcat/internal/util"
)

var (
	// Version is set at build time.
	Version = "dev"

	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "romcat",
		Short: "Ingest and query an arcade-machine ROM catalog",
		Long: `romcat ingests a MAME-style machine catalog from XML into a compact
SQLite store, then answers ROM-set queries (split/merged/nonmerged and
their device/BIOS variants) against it.`,
		Version: Version,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./romcat.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "quiet output (errors only)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored log output")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	viper.BindPFlag("no-color", rootCmd.PersistentFlags().Lookup("no-color"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("romcat")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("ROMCAT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && !viper.GetBool("quiet") {
		util.InfoLog("using config file: %s", viper.ConfigFileUsed())
	}

	if viper.GetBool("verbose") {
		util.SetVerbose(true)
	}
	if viper.GetBool("quiet") {
		util.SetQuiet(true)
	}
	if viper.GetBool("no-color") || !util.IsTerminal(os.Stderr.Fd()) {
		util.SetColors(false)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
