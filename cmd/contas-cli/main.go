package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"contas/internal/backend"
	"contas/internal/cli"
	"contas/internal/config"
	applog "contas/internal/log"
	"contas/internal/services"
	"contas/internal/store"
	"contas/internal/store/memory"
)

// app holds what the subcommands share once the root command has run.
type app struct {
	v      *viper.Viper
	out    io.Writer
	cfg    *config.Config
	logger *applog.Logger

	svc     *services.ObligationService
	cleanup func() error
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{v: viper.New(), out: out}

	root := &cobra.Command{
		Use:           "contas-cli",
		Short:         "Project recurring bills and inspect monthly timelines",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(errOut)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if a.cleanup != nil {
				return a.cleanup()
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.String("env-file", "", "Load variables from this env file before the environment")
	flags.String("backend", "", "Data backend: memory or sqlite (DATA_BACKEND)")
	flags.String("db", "", "SQLite database path (SQLITE_DB_PATH)")
	flags.String("timezone", "", "Time zone used for today (TIMEZONE)")
	flags.String("locale", "", "Locale for amounts: pt-BR, en-US or it-IT (LOCALE)")
	flags.String("log-level", "", "Log level (LOG_LEVEL)")
	flags.Bool("demo", false, "Use the built-in demo data instead of a backend")
	flags.String("today", "", "Pretend today is this date (YYYY-MM-DD)")

	for key, env := range map[string]string{
		"backend":   "DATA_BACKEND",
		"db":        "SQLITE_DB_PATH",
		"timezone":  "TIMEZONE",
		"locale":    "LOCALE",
		"log-level": "LOG_LEVEL",
	} {
		_ = a.v.BindEnv(key, env)
	}
	_ = a.v.BindPFlags(flags)

	root.AddCommand(newNextCmd(a), newProjectCmd(a), newTimelineCmd(a), newUpcomingCmd(a))
	return root
}

// setup loads the configuration, applies flag overrides and opens the store.
func (a *app) setup(errOut io.Writer) error {
	if err := cli.LoadConfigFile(a.v.GetString("env-file")); err != nil {
		return err
	}
	cli.LoadEnvFile()

	cfg := config.Load()
	override := func(dst *string, key string) {
		if s := strings.TrimSpace(a.v.GetString(key)); s != "" {
			*dst = s
		}
	}
	override(&cfg.DataBackend, "backend")
	override(&cfg.SQLiteDBPath, "db")
	override(&cfg.Timezone, "timezone")
	override(&cfg.Locale, "locale")
	override(&cfg.LogLevel, "log-level")
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	handler := charmlog.NewWithOptions(errOut, charmlog.Options{
		Prefix:          "contas-cli",
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Level:           charmLevel(cfg.LogLevel),
	})
	a.logger = applog.New(applog.Config{Component: applog.ComponentCLI, Handler: handler})
	applog.SetDefault(a.logger)

	st, cleanup, err := a.openStore()
	if err != nil {
		return err
	}
	a.cleanup = cleanup

	opts := []services.ObligationOption{services.WithLocation(cfg.Location())}
	if s := strings.TrimSpace(a.v.GetString("today")); s != "" {
		clock, err := fixedClock(s, cfg.Location())
		if err != nil {
			return err
		}
		opts = append(opts, services.WithClock(clock))
	}
	a.svc = services.NewObligationService(st, nil, opts...)
	return nil
}

func (a *app) openStore() (store.Store, func() error, error) {
	if a.v.GetBool("demo") {
		st := memory.NewDemo()
		return st, st.Close, nil
	}
	backendCfg, err := backend.FromAppConfig(a.cfg)
	if err != nil {
		return nil, nil, err
	}
	// the CLI never publishes status messages
	backendCfg.AMQPURL = ""
	res, err := backend.NewFactory(a.logger.Logger, nil).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s backend: %w", a.cfg.DataBackend, err)
	}
	return res.Store, res.Cleanup, nil
}

func fixedClock(day string, loc *time.Location) (func() time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", day, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid --today %q: %w", day, err)
	}
	noon := t.Add(12 * time.Hour)
	return func() time.Time { return noon }, nil
}

func charmLevel(s string) charmlog.Level {
	lvl, err := charmlog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return charmlog.InfoLevel
	}
	return lvl
}
