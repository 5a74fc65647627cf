// Package main is the entry point for the sitesearch CLI.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jonwraymond/sitesearch/config"
)

// version is set at build time via ldflags.
var version = "dev"

// cfg holds the resolved configuration once PersistentPreRunE has run.
var cfg config.Config

// rootCmd is the base command for the sitesearch CLI.
var rootCmd = &cobra.Command{
	Use:   "sitesearch",
	Short: "Full-text search over a site's blog posts and projects",
	Long: `sitesearch indexes the blog posts and project pages under a content
directory (<dir>/blog/*.mdx, <dir>/projects/*.mdx) and answers prefix-matching
free-text queries ranked by where the words appear: title first, then
description and tags, then body text.

Run "serve" for the HTTP API, "mcp" to expose search as an MCP tool over
stdio, or "query" for a one-off search from the terminal.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envFile, _ := cmd.Flags().GetString("env-file")
		if err := loadDotEnv(envFile); err != nil {
			return err
		}

		cfgFile, _ := cmd.Flags().GetString("config")
		c, err := config.Load(viper.GetViper(), cfgFile)
		if err != nil {
			return err
		}
		cfg = c
		return nil
	},
}

func init() {
	d := config.Defaults()

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default: ./sitesearch.yaml or ~/.config/sitesearch/sitesearch.yaml)")
	flags.String("env-file", "", "dotenv file to load before reading the environment (default: .env if present)")
	flags.String("content-dir", d.ContentDir, "content root containing blog/ and projects/")
	flags.String("log-level", d.Log.Level, "log level: debug, info, warn, error")
	flags.String("log-format", d.Log.Format, "log format: json or text")

	bindFlag(config.KeyContentDir, flags.Lookup("content-dir"))
	bindFlag(config.KeyLogLevel, flags.Lookup("log-level"))
	bindFlag(config.KeyLogFormat, flags.Lookup("log-format"))
}

// loadDotEnv loads an explicit dotenv file, or .env when present.
// Variables already set in the environment win.
func loadDotEnv(path string) error {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load env file %s: %w", path, err)
		}
		return nil
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
