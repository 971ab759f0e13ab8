// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the award-extract CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/SeverinoCenter/nsf-award-extract/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// setting returns the flag value when explicitly set, falling back to the
// config file key when one is present.
func setting(cmd *cobra.Command, flag, key string) string {
	if cmd.Flags().Changed(flag) || !viper.IsSet(key) {
		v, _ := cmd.Flags().GetString(flag)
		return v
	}
	return viper.GetString(key)
}

// rootCmd is the base command for the award-extract CLI.
var rootCmd = &cobra.Command{
	Use:   "award-extract",
	Short: "Extract grant and investigator tables from NSF award archives",
	Long: `award-extract turns yearly NSF award archives into analysis-ready
tables. Each pipeline stage is a subcommand: scan unpacks yearly ZIP
archives, ingest parses the XML documents into grant and investigator
tables, enrich adds SBIR/STTR and I-Corps features, reconcile fills
missing institution identity fields, and match links free-form
institution names against a reference list with text embeddings.

Stages read and write a shared SQLite snapshot plus per-stage CSV
outputs, so each can be rerun independently.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./award-extract.yaml or ~/.config/award-extract/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("award-extract")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "award-extract"))
		}
	}

	viper.SetEnvPrefix("AWARD_EXTRACT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
