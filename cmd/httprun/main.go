package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/httprun/internal/cliconfig"
	"github.com/bft-labs/httprun/pkg/httprun"
	logAdapter "github.com/bft-labs/httprun/pkg/log"
	"github.com/bft-labs/httprun/plugins/configwatcher"
	"github.com/bft-labs/httprun/plugins/pidfile"
)

const helpBanner = `
 _     _   _
| |__ | |_| |_ _ __  _ __ _   _ _ __
| '_ \| __| __| '_ \| '__| | | | '_ \
| | | | |_| |_| |_) | |  | |_| | | | |
|_| |_|\__|\__| .__/|_|   \__,_|_| |_|
              |_|
`

const helpDescription = `
Serve a long-lived HTTP service with ordered startup, signal handling and
bounded graceful shutdown.

Highlights:
  - Startup callbacks run in order and abort the launch on failure (exit 70).
  - SIGTERM triggers a graceful drain bounded by the shutdown deadline.
  - Scales past one process with port-sharing workers that restart on crash.
  - Configure via file, environment, or flags; --watch-config restarts on edits.

Docs: https://pkg.go.dev/github.com/bft-labs/httprun
`

var longHelp = strings.TrimSpace(helpBanner) + "\n\n" + strings.TrimSpace(helpDescription)

var exampleUsage = strings.TrimSpace(`
  httprun --port 8080 --debug
  httprun --workers 4 --shutdown-timeout 10s
  httprun --config $HOME/.httprun/config.toml --watch-config
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string
	var envFile string

	log := cliconfig.Logger()

	root := &cobra.Command{
		Use:     "httprun",
		Short:   "Serve a long-lived HTTP service with graceful startup and shutdown",
		Long:    longHelp,
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Determine config path (default $HOME/.httprun/config.toml)
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			// Build set of changed flags
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			// Environment files apply before anything else reads the
			// environment. A missing file is an error: the caller asked
			// for it explicitly.
			if envFile != "" {
				if err := cliconfig.LoadEnvFile(envFile); err != nil {
					return err
				}
			}

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			// Apply environment variables (PORT, DEBUG, NUMBER_OF_PROCS)
			// These override file config but are overridden by flags (checked via changed map)
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			if cfg.Debug {
				log = log.Level(zerolog.DebugLevel)
			}
			log.Info().Interface("config", cfg).Msg("configuration")

			// Create zerolog adapter for the library
			zerologAdapter := logAdapter.NewZerologAdapterWithLogger(log)

			opts := []httprun.Option{
				httprun.WithSettings(cfg.Settings()),
				httprun.WithLogger(zerologAdapter),
			}
			if cfg.PIDFile != "" {
				opts = append(opts, pidfile.WithPIDFile(pidfile.Config{Path: cfg.PIDFile}))
			}
			if cfg.WatchConfig {
				if cfgFile != "" && cliconfig.FileExists(cfgFile) {
					opts = append(opts, configwatcher.WithWatchedFile(cfgFile))
				} else {
					log.Warn().Msg("config watching requested but no config file found")
				}
			}

			runner, err := httprun.New(newDemoApplication(log), opts...)
			if err != nil {
				return fmt.Errorf("create runner: %w", err)
			}

			// The runner traps SIGTERM (and SIGINT under --debug) itself.
			return runner.Run(cmd.Context())
		},
	}

	// Flags
	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.httprun/config.toml)")
	root.Flags().StringVar(&envFile, "env-file", "", "file of NAME=value pairs applied to the environment before startup")

	root.Flags().IntVar(&cfg.Port, "port", cfg.Port, "TCP port to serve on")
	root.Flags().IntVar(&cfg.Workers, "workers", cfg.Workers, "number of serving processes sharing the port")
	root.Flags().BoolVar(&cfg.Debug, "debug", cfg.Debug, "debug mode: single process, debug logging, SIGINT stops the server")
	root.Flags().DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "graceful shutdown deadline")

	root.Flags().StringVar(&cfg.PIDFile, "pid-file", cfg.PIDFile, "write the server PID to this file while running")
	root.Flags().BoolVar(&cfg.WatchConfig, "watch-config", cfg.WatchConfig, "stop gracefully when the config file changes")

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("httprun")
		os.Exit(httprun.ExitCode(err))
	}
}
