package main

import (
	"fmt"
	"os"

	"github.com/gstoney/mchandshake/internal/config"
	"github.com/gstoney/mchandshake/internal/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const appName = "mchandshake"

type globalFlags struct {
	configPath string
	envFile    string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var g globalFlags

	rootCmd := &cobra.Command{
		Use:   appName,
		Short: "Decode Minecraft handshake packets",
		Long: `mchandshake decodes the handshake packet that opens a Minecraft Java
connection: a length-prefixed frame carrying the protocol version,
server address, server port and requested next state.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "TOML config file")
	rootCmd.PersistentFlags().StringVar(&g.envFile, "env-file", ".env", "dotenv file with MCHANDSHAKE_* variables, ignored when missing")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level (trace, debug, info, warn, error, off)")

	rootCmd.AddCommand(
		decodeCmd(&g),
		scanCmd(&g),
		versionCmd(),
	)

	return rootCmd
}

func (g *globalFlags) load() (config.Config, error) {
	cfg, err := config.Load(g.configPath, g.envFile)
	if err != nil {
		return config.Config{}, err
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg config.Config) zerolog.Logger {
	return logging.New(cmd.ErrOrStderr(), appName, logging.Options{
		Level:   cfg.LogLevel,
		JSON:    cfg.LogJSON,
		NoColor: cfg.LogNoColor,
	})
}
