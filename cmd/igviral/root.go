package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"igviral/pkg/auth"
	"igviral/pkg/config"
	"igviral/pkg/logger"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	apiURL     string
	hikerURL   string
	listenAddr string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "igviral",
	Short: "Instagram virality ranking service",
	Long: `igviral ranks Instagram content by a virality score computed against
the median engagement of each result set.

It fronts two scraping backends (a self-hosted search API and a third-party
scrape provider), normalizes their payloads, scores and orders the results,
and serves them to the dashboard over HTTP with cursor pagination and a
local media cache.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is $HOME/.igviral.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "scrape provider base URL")
	rootCmd.PersistentFlags().StringVar(&hikerURL, "hiker-url", "", "search API base URL")
	rootCmd.PersistentFlags().StringVar(&listenAddr, "listen-addr", "", "HTTP listen address")

	rootCmd.SetVersionTemplate(`igviral {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// loadConfig builds the effective configuration from flags, environment, and
// files, then pulls missing API keys from the credential stores.
func loadConfig() (*config.Config, error) {
	flags := map[string]interface{}{
		"api-url":     apiURL,
		"hiker-url":   hikerURL,
		"listen-addr": listenAddr,
		"log-level":   logLevel,
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return nil, err
	}

	if cfg.Upstream.ApifyKey == "" || cfg.Upstream.HikerKey == "" {
		if manager, err := auth.NewManager(); err == nil {
			if cfg.Upstream.ApifyKey == "" {
				if cred, err := manager.Retrieve(auth.ProviderApify); err == nil {
					cfg.Upstream.ApifyKey = cred.APIKey
				}
			}
			if cfg.Upstream.HikerKey == "" {
				if cred, err := manager.Retrieve(auth.ProviderHiker); err == nil {
					cfg.Upstream.HikerKey = cred.APIKey
				}
			}
		}
	}

	return cfg, nil
}

// setupLogging initializes the global logger from configuration
func setupLogging(cfg *config.Config) error {
	return logger.Initialize(&cfg.Logging)
}
