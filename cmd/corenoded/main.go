// Command corenoded runs the module repository and script scheduler, and
// exposes both over a cobra CLI. serve also builds a pkg/ops operation
// dispatcher over both, which nothing in this binary calls. There is no
// peer-to-peer transport: see pkg/particle for the
// connection pool and failure source this binary expects an embedder to
// eventually supply.
package main

import (
	"fmt"
	"os"

	"github.com/cuemby/corenode/pkg/config"
	"github.com/cuemby/corenode/pkg/log"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

var (
	cfgFile string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:     "corenoded",
	Short:   "Module repository and script scheduler node",
	Version: fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildTime),
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "path to a YAML config file")
	flags.String("modules_dir", config.Default().ModulesDir, "directory storing module .wasm and config files")
	flags.String("blueprints_dir", config.Default().BlueprintsDir, "directory storing blueprint TOML files")
	flags.String("peer_id", config.Default().PeerID, "peer id this node fires particles as")
	flags.Duration("timer_resolution", config.Default().TimerResolution, "script scheduler tick interval")
	flags.Duration("particle_ttl", config.Default().ParticleTTL, "TTL assigned to particles produced by fired scripts")
	flags.Uint8("max_failures", config.Default().MaxFailures, "failures a script tolerates before being dropped")
	flags.String("log_level", config.Default().LogLevel, "log level (debug, info, warn, error)")
	flags.Bool("log_json", config.Default().LogJSON, "emit logs as JSON")
	flags.String("metrics_addr", config.Default().MetricsAddr, "address the /metrics, /health, /ready and /live endpoints listen on")

	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(moduleCmd, blueprintCmd, scriptCmd, serveCmd)
}

func initConfig() {
	loaded, err := config.Load(cfgFile, rootCmd.PersistentFlags())
	if err != nil {
		fmt.Fprintln(os.Stderr, "corenoded:", err)
		os.Exit(1)
	}
	cfg = loaded

	level := log.InfoLevel
	switch cfg.LogLevel {
	case "debug":
		level = log.DebugLevel
	case "warn":
		level = log.WarnLevel
	case "error":
		level = log.ErrorLevel
	}
	log.Init(log.Config{Level: level, JSONOutput: cfg.LogJSON})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
