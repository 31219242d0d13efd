package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/global-trade-alert/ms-teams-push/internal/config"
	"github.com/global-trade-alert/ms-teams-push/internal/logging"
	"github.com/global-trade-alert/ms-teams-push/internal/metrics"
	"github.com/global-trade-alert/ms-teams-push/internal/relay"
	"github.com/global-trade-alert/ms-teams-push/internal/sink"
	"github.com/global-trade-alert/ms-teams-push/internal/source"
	"github.com/global-trade-alert/ms-teams-push/internal/util"
)

const (
	exitOK     = 0
	exitConfig = 1
)

type options struct {
	configPath string
	dotenvPath string
	logLevel   string
	logFormat  string
	dryRun     bool
}

// run parses args, performs one relay cycle and returns the process exit code.
// Only configuration problems produce a non-zero code.
func run(args []string, getenv func(string) string, stdout, stderr io.Writer) int {
	code := exitOK
	root := newRootCmd(getenv, stdout, stderr, &code)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "ms-teams-push: %v\n", err)
		return exitConfig
	}
	return code
}

func newRootCmd(getenv func(string) string, stdout, stderr io.Writer, code *int) *cobra.Command {
	var opts options
	root := &cobra.Command{
		Use:           "ms-teams-push",
		Short:         "Post the latest GTA intervention to a Teams channel",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			*code = relayOnce(cmd.Context(), opts, getenv, stdout, stderr)
			return nil
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	f := root.Flags()
	f.StringVar(&opts.configPath, "config", "", "optional YAML config file")
	f.StringVar(&opts.dotenvPath, "dotenv", ".env", "dotenv file to read (missing file is ignored)")
	f.StringVar(&opts.logLevel, "log-level", "", "log level (trace|debug|info|warn|error)")
	f.StringVar(&opts.logFormat, "log-format", "", "log format (console|json)")
	f.BoolVar(&opts.dryRun, "dry-run", false, "print the card without posting it")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
		},
	})
	return root
}

func relayOnce(parent context.Context, opts options, getenv func(string) string, stdout, stderr io.Writer) int {
	boot := logging.New("info", "console", stderr)

	env, err := withDotenv(opts.dotenvPath, getenv)
	if err != nil {
		boot.Warn().Err(err).Str("path", opts.dotenvPath).Msg("dotenv not loaded")
	}

	cfg, err := config.Load(opts.configPath, env)
	if err != nil {
		boot.Error().Err(err).Msg("FATAL: could not load configuration.")
		return exitConfig
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.Log.Format = opts.logFormat
	}

	log := logging.New(cfg.Log.Level, cfg.Log.Format, stderr).
		With().Str("run_id", uuid.NewString()).Logger()

	if err := cfg.Validate(!opts.dryRun); err != nil {
		var me *config.MissingEnvError
		if errors.As(err, &me) {
			log.Error().Msgf("FATAL: The '%s' environment variable is not set.", me.Var)
			log.Error().Msg("Set the environment variable in your .env file and try again.")
		} else {
			log.Error().Err(err).Msg("FATAL: invalid configuration.")
		}
		return exitConfig
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	m := metrics.New()
	src := source.NewGTASource(cfg.GTA, logging.Component(log, "source"), m)
	var snd relay.Sender
	if !opts.dryRun {
		snd = sink.NewTeams(cfg.Teams)
	}

	log.Info().Str("version", Version).Bool("dry_run", opts.dryRun).Msg("ms-teams-push starting")
	res := relay.New(src, snd,
		relay.WithLogger(logging.Component(log, "relay")),
		relay.WithOutput(stdout),
		relay.WithMetrics(m),
		relay.WithDryRun(opts.dryRun),
	).Run(ctx)

	pushMetrics(ctx, log, cfg.Metrics, m)
	log.Debug().Str("outcome", string(res.Outcome)).Msg("run finished")
	return exitOK
}

// withDotenv layers values from the dotenv file under getenv: variables
// already present in the environment win, as with godotenv.Load.
func withDotenv(path string, getenv func(string) string) (func(string) string, error) {
	if path == "" {
		return getenv, nil
	}
	vals, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return getenv, nil
		}
		return getenv, err
	}
	return func(k string) string {
		if v := getenv(k); v != "" {
			return v
		}
		return vals[k]
	}, nil
}

func pushMetrics(ctx context.Context, log zerolog.Logger, cfg config.MetricsConfig, m *metrics.Metrics) {
	if cfg.PushgatewayURL == "" {
		return
	}
	client := util.NewHTTPClient(5*time.Second, 5*time.Second)
	if err := m.Push(ctx, cfg.PushgatewayURL, cfg.Job, client); err != nil {
		log.Warn().Err(err).Str("url", cfg.PushgatewayURL).Msg("push metrics")
	}
}
