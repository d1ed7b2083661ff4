// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the familytree CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/daveshawley/familytree/internal/neo4j"
	"github.com/daveshawley/familytree/internal/secrets"
	"github.com/daveshawley/familytree/internal/storage"
	"github.com/daveshawley/familytree/pkg/logger"
	"github.com/daveshawley/familytree/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// log is initialized before any subcommand runs.
var log *zap.Logger

// loadedSecrets holds graph credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback when set, otherwise the secret value
// for key if one was loaded.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	return loadedSecrets[key]
}

// rootCmd is the base command for the familytree CLI.
var rootCmd = &cobra.Command{
	Use:   "familytree",
	Short: "Record and reason about a family tree",
	Long: `familytree keeps genealogical research in two stores: a SQLite database
for people, sources, and facts, and a Neo4j graph for the relationships
between people. Assert what your sources actually say; the infer command
derives the rest (siblings, grandparents, cousins, in-laws) from it.

Each concern is a subcommand: person, source, fact, relate, infer,
ingest, and export.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		debug, _ := cmd.Flags().GetBool("debug")
		log = logger.NewLogger(debug)

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			log.Sync()
		}
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./familytree.yaml or ~/.config/familytree/config.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "", "directory holding the SQLite database (default: ./data)")
	rootCmd.PersistentFlags().String("graph-url", "", "Neo4j REST endpoint (default: http://localhost:7474/db/data)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("familytree")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "familytree"))
		}
	}

	viper.SetEnvPrefix("FAMILYTREE")
	viper.AutomaticEnv()

	viper.SetDefault("storage.data_dir", "data")
	viper.SetDefault("storage.max_results", 20)
	viper.SetDefault("graph.base_url", "http://localhost:7474/db/data")
	viper.SetDefault("graph.timeout", 30*time.Second)
	viper.SetDefault("graph.requests_per_second", 10.0)
	viper.SetDefault("graph.max_retries", 3)
	viper.SetDefault("ingest.records_dir", "records")
	viper.SetDefault("ingest.concurrency", 4)

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// treeConfig resolves the effective configuration from flags, config
// file, and environment, in that order of precedence.
func treeConfig(cmd *cobra.Command) types.TreeConfig {
	cfg := types.TreeConfig{
		Storage: types.StorageConfig{
			DataDir:    viper.GetString("storage.data_dir"),
			MaxResults: viper.GetInt("storage.max_results"),
		},
		Graph: types.GraphConfig{
			BaseURL:           viper.GetString("graph.base_url"),
			Timeout:           viper.GetDuration("graph.timeout"),
			RequestsPerSecond: viper.GetFloat64("graph.requests_per_second"),
			MaxRetries:        viper.GetInt("graph.max_retries"),
			Username:          secretDefault("neo4j-user", viper.GetString("graph.username")),
			Password:          secretDefault("neo4j-password", viper.GetString("graph.password")),
		},
		Ingest: types.IngestConfig{
			RecordsDir:  viper.GetString("ingest.records_dir"),
			Concurrency: viper.GetInt("ingest.concurrency"),
		},
	}

	if dataDir, _ := cmd.Flags().GetString("data-dir"); dataDir != "" {
		cfg.Storage.DataDir = dataDir
	}
	if graphURL, _ := cmd.Flags().GetString("graph-url"); graphURL != "" {
		cfg.Graph.BaseURL = graphURL
	}
	return cfg
}

// openLayer opens both backends. The caller must Close the returned
// store when done.
func openLayer(cmd *cobra.Command) (*storage.Layer, *storage.Store, error) {
	cfg := treeConfig(cmd)

	store, err := storage.NewStore(cfg.Storage)
	if err != nil {
		return nil, nil, err
	}

	graph := neo4j.NewClient(cfg.Graph)
	return storage.NewLayer(store, graph, log), store, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
