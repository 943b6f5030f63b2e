package main

import (
	"github.com/lithictech/go-profiles/config"
	"github.com/lithictech/go-profiles/logctx"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Build-time variables (set via ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

var (
	envFiles  []string
	logLevel  string
	logFormat string
	seedFile  string
)

// Set up by the root command before any subcommand runs.
var (
	cfg    config.Config
	logger *logrus.Entry
)

var rootCmd = &cobra.Command{
	Use:     "profilesd",
	Short:   "Validated in-memory user profile store",
	Version: Version,
	Long: `
profilesd keeps user profiles in memory, validated and indexed by username.

COMMANDS:
  serve       Run the HTTP API, optionally seeded from a json file
  stats       Print statistics for the profiles in a seed file
  version     Print version information

Configuration comes from PROFILES_* environment variables,
optionally loaded from .env files, and can be overridden with flags.

EXAMPLES:
  profilesd serve --seed profiles.json
  PROFILES_PORT=9000 profilesd serve
  profilesd stats --seed profiles.json
`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringSliceVar(&envFiles, "env-file", nil, "dotenv files to load (default .env)")
	pf.StringVar(&logLevel, "log-level", "", "log level, overrides PROFILES_LOG_LEVEL")
	pf.StringVar(&logFormat, "log-format", "", "log format (json or text), overrides PROFILES_LOG_FORMAT")
	pf.StringVar(&seedFile, "seed", "", "json file of profiles, overrides PROFILES_SEED_FILE")
}

func setup(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load(envFiles...)
	if err != nil {
		return err
	}
	pf := cmd.Flags()
	if pf.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if pf.Changed("log-format") {
		cfg.LogFormat = logFormat
	}
	if pf.Changed("seed") {
		cfg.SeedFile = seedFile
	}
	in := logctx.NewLoggerInput{
		Level:     cfg.LogLevel,
		Format:    cfg.LogFormat,
		File:      cfg.LogFile,
		BuildSha:  cfg.BuildSha,
		BuildTime: cfg.BuildTime,
	}
	if cfg.LogFile == "" {
		// stdout is for command output
		in.Out = cmd.ErrOrStderr()
	}
	logger, err = logctx.NewLogger(in)
	return err
}
