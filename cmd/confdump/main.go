// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// confdump loads a layered configuration from files, the environment,
// command-line pairs, and ad-hoc overrides, then prints every resolved key
// with the source that provided it. Diagnostics only: values are printed
// verbatim.
//
// Usage:
//
//	confdump --file config.json --file conf/app.yaml --env-name dev \
//	    --env-prefix APP_ --set log:level=debug -- --server:port 9090
//
// Arguments after "--" are parsed as a command-line configuration source.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/MKhiriev/confstack"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

var (
	flagFiles     []string
	flagOptional  bool
	flagEnvName   string
	flagEnvPrefix string
	flagSets      []string
	flagNoEnv     bool
	flagWatch     bool
)

var rootCmd = &cobra.Command{
	Use:   "confdump",
	Short: "Dump a merged layered configuration with value origins",
	Long: "confdump merges configuration files, environment variables, command-line\n" +
		"pairs, and --set overrides in priority order and lists every resolved key,\n" +
		"its value, and the source it came from.",
	RunE:          runDump,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print confdump build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Build version: %s\n", orNA(buildVersion))
		fmt.Printf("Build date: %s\n", orNA(buildDate))
		fmt.Printf("Build commit: %s\n", orNA(buildCommit))
	},
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func main() {
	rootCmd.Flags().StringArrayVarP(&flagFiles, "file", "f", nil, "Configuration file (repeatable, merged in order)")
	rootCmd.Flags().BoolVar(&flagOptional, "optional", false, "Tolerate missing or malformed files")
	rootCmd.Flags().StringVar(&flagEnvName, "env-name", "", "Deployment environment overlay suffix (e.g. dev)")
	rootCmd.Flags().StringVar(&flagEnvPrefix, "env-prefix", "", "Environment variable prefix filter (e.g. APP_)")
	rootCmd.Flags().StringArrayVar(&flagSets, "set", nil, "In-memory override key=value (repeatable, highest priority)")
	rootCmd.Flags().BoolVar(&flagNoEnv, "no-env", false, "Skip the environment variable source")
	rootCmd.Flags().BoolVarP(&flagWatch, "watch", "w", false, "Re-dump when a configuration file changes")
	rootCmd.AddCommand(versionCmd)

	log := newLogger()
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("error dumping configuration")
	}
}

func newLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().
		Str("role", "confdump").
		Timestamp().
		Logger()
}

func runDump(cmd *cobra.Command, args []string) error {
	log := newLogger()
	registry := confstack.NewRegistry(confstack.WithLogger(log))

	for _, path := range flagFiles {
		var opts []confstack.RegisterOption
		if flagOptional {
			opts = append(opts, confstack.WithOptional())
		}
		registry.Register(confstack.NewFileSource(path, confstack.FileOptions{
			Environment: flagEnvName,
		}), opts...)
	}

	if !flagNoEnv {
		registry.Register(confstack.NewEnvSource(confstack.EnvOptions{Prefix: flagEnvPrefix}))
	}

	if len(args) > 0 {
		registry.Register(confstack.NewArgsSource(args))
	}

	if len(flagSets) > 0 {
		overrides := confstack.NewMemSource("overrides", nil)
		for _, kv := range flagSets {
			key, value, ok := strings.Cut(kv, "=")
			if !ok {
				return fmt.Errorf("invalid --set %q: want key=value", kv)
			}
			overrides.Set(key, value)
		}
		registry.Register(overrides, confstack.WithRank(100))
	}

	view, err := registry.Load()
	if err != nil {
		return err
	}
	view.Dump(os.Stdout)

	if !flagWatch {
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Msg("watching for configuration changes")
	err = registry.WatchChanges(ctx, func(source string) {
		reloaded, err := registry.Reload()
		if err != nil {
			log.Error().Err(err).Str("source", source).Msg("error reloading configuration")
			return
		}
		fmt.Printf("--- reloaded after change in %s ---\n", source)
		reloaded.Dump(os.Stdout)
	})
	if ctx.Err() != nil {
		return nil // interrupted by the user
	}
	return err
}
