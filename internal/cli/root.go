package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"timeline-cli/internal/config"
	"timeline-cli/internal/format"
	"timeline-cli/internal/journal"
	"timeline-cli/internal/seed"
	"timeline-cli/internal/tui"

	"github.com/spf13/cobra"
)

const (
	envFormat   = "TIMELINE_FORMAT"
	envDebugLog = "TIMELINE_TUI_DEBUG_LOG"
)

type App struct {
	ConfigPath string
	SeedFile   string
	Format     string
	Pretty     bool

	// now is swapped in tests.
	now func() time.Time
}

func NewRootCmd() *cobra.Command {
	app := &App{now: time.Now}

	cmd := &cobra.Command{
		Use:          "timeline",
		Short:        "Timeline with rubber-band selection and group drag",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive timeline
  timeline

  # Start it on a prepared session
  timeline --seed-file shifts.yaml

  # Play a gesture script headlessly
  timeline replay drag.yaml --pretty
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		f, err := format.Normalize(app.Format)
		if err != nil {
			return writeErr(cmd, err)
		}
		app.Format = f
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr(config.EnvConfig, ""), "Path to config.toml (default: user config dir)")
	cmd.PersistentFlags().StringVar(&app.SeedFile, "seed-file", envOr(config.EnvSeed, ""), "YAML seed file to load instead of a random session")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr(envFormat, format.JSON), "Output format (json|edn|yaml)")
	cmd.PersistentFlags().BoolVar(&app.Pretty, "pretty", false, "Pretty-print JSON/EDN output")

	cmd.AddCommand(newSeedCmd(app))
	cmd.AddCommand(newItemsCmd(app))
	cmd.AddCommand(newReplayCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

func runTUI(cmd *cobra.Command, app *App) error {
	cfg, err := loadConfig(app)
	if err != nil {
		return writeErr(cmd, err)
	}
	sess, err := loadSession(app, cfg)
	if err != nil {
		return writeErr(cmd, err)
	}
	logger, closeLog, err := newLogger(os.Getenv(envDebugLog))
	if err != nil {
		return writeErr(cmd, err)
	}
	defer closeLog()

	j, err := journal.Open(cmd.Context())
	if err != nil {
		return writeErr(cmd, fmt.Errorf("open journal: %w", err))
	}
	defer j.Close()

	return tui.Run(tui.Options{Session: sess, Config: cfg, Logger: logger, Journal: j})
}

func configPath(app *App) (string, error) {
	if p := strings.TrimSpace(app.ConfigPath); p != "" {
		return p, nil
	}
	return config.Path()
}

// loadConfig reads the config file and applies env overrides. The
// --seed-file flag wins over both.
func loadConfig(app *App) (config.Config, error) {
	path, err := configPath(app)
	if err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	cfg.ApplyEnv(os.Getenv)
	if f := strings.TrimSpace(app.SeedFile); f != "" {
		cfg.Seed.File = f
	}
	return cfg, nil
}

// loadSession reads the configured seed file, or generates a random session
// from the [seed] table.
func loadSession(app *App, cfg config.Config) (seed.Session, error) {
	if cfg.Seed.File != "" {
		sess, err := seed.LoadFile(cfg.Seed.File, app.now)
		if err != nil {
			return seed.Session{}, fmt.Errorf("load seed file %s: %w", cfg.Seed.File, err)
		}
		return sess, nil
	}
	return seed.NewGenerator(nil).Generate(cfg.SeedOptions(app.now())), nil
}

// newLogger writes text logs to path. Stdout belongs to the TUI, so with no
// path every record is dropped.
func newLogger(path string) (*slog.Logger, func(), error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open debug log: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, func() { _ = f.Close() }, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.Pretty)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
