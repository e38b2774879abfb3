package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"timeline-cli/internal/model"
	"timeline-cli/internal/seed"

	"github.com/BurntSushi/toml"
)

const (
	EnvConfig = "TIMELINE_CONFIG"
	EnvSeed   = "TIMELINE_SEED"
	EnvGlyphs = "TIMELINE_TUI_GLYPHS"
)

var (
	ErrInvalid = errors.New("invalid config")
	ErrExists  = errors.New("config already exists")
)

// Duration is a time.Duration written as a Go duration string ("90m").
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

type Config struct {
	Seed Seed `toml:"seed" json:"seed" yaml:"seed"`
	View View `toml:"view" json:"view" yaml:"view"`
	TUI  TUI  `toml:"tui" json:"tui" yaml:"tui"`
}

type Seed struct {
	// File is a yaml seed document; empty means generate.
	File        string   `toml:"file" json:"file,omitempty" yaml:"file,omitempty"`
	Rows        int      `toml:"rows" json:"rows" yaml:"rows"`
	Items       int      `toml:"items" json:"items" yaml:"items"`
	MinDuration Duration `toml:"min_duration" json:"minDuration" yaml:"minDuration"`
	MaxDuration Duration `toml:"max_duration" json:"maxDuration" yaml:"maxDuration"`
}

type View struct {
	RangeStartHour int      `toml:"range_start_hour" json:"rangeStartHour" yaml:"rangeStartHour"`
	RangeHours     int      `toml:"range_hours" json:"rangeHours" yaml:"rangeHours"`
	Snap           Duration `toml:"snap" json:"snap" yaml:"snap"`
	Glyphs         string   `toml:"glyphs" json:"glyphs" yaml:"glyphs"`
	RowHeight      int      `toml:"row_height" json:"rowHeight" yaml:"rowHeight"`
}

type TUI struct {
	Mouse string `toml:"mouse" json:"mouse" yaml:"mouse"`
}

// Mouse modes.
const (
	MouseCellMotion = "cell-motion"
	MouseAllMotion  = "all-motion"
	MouseOff        = "off"
)

const DefaultConfigToml = `# timeline configuration

[seed]
# file = "~/timeline.yaml"
rows = 4
items = 10
min_duration = "1h"
max_duration = "6h"

[view]
range_start_hour = 0
range_hours = 24
snap = "15m"
glyphs = "unicode"
row_height = 1

[tui]
# cell-motion reports motion only while a button is held.
mouse = "cell-motion"
`

func Default() Config {
	return Config{
		Seed: Seed{
			Rows:        seed.DefaultRowCount,
			Items:       seed.DefaultItemCount,
			MinDuration: Duration{seed.DefaultMinDuration},
			MaxDuration: Duration{seed.DefaultMaxDuration},
		},
		View: View{
			RangeHours: 24,
			Snap:       Duration{15 * time.Minute},
			Glyphs:     "unicode",
			RowHeight:  1,
		},
		TUI: TUI{Mouse: MouseCellMotion},
	}
}

// Path returns $TIMELINE_CONFIG or <user config dir>/timeline/config.toml.
func Path() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfig)); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "timeline", "config.toml"), nil
}

// Load reads path on top of the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, err
	}
	return Parse(raw)
}

func Parse(raw []byte) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(raw), &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if extra := md.Undecoded(); len(extra) > 0 {
		keys := make([]string, 0, len(extra))
		for _, k := range extra {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("%w: unknown keys %s", ErrInvalid, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Init writes DefaultConfigToml to path. It refuses to overwrite unless
// force is set.
func Init(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrExists, path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(DefaultConfigToml), 0o644)
}

// ApplyEnv lets environment variables win over the file.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := strings.TrimSpace(getenv(EnvSeed)); v != "" {
		c.Seed.File = v
	}
	if v := strings.ToLower(strings.TrimSpace(getenv(EnvGlyphs))); v != "" {
		c.View.Glyphs = v
	}
}

func (c Config) Validate() error {
	var problems []string
	if c.Seed.Rows < 1 {
		problems = append(problems, "seed.rows must be at least 1")
	}
	if c.Seed.Items < 0 {
		problems = append(problems, "seed.items must not be negative")
	}
	if c.Seed.MinDuration.Duration <= 0 || c.Seed.MaxDuration.Duration < c.Seed.MinDuration.Duration {
		problems = append(problems, "seed durations need 0 < min_duration <= max_duration")
	}
	if c.View.RangeStartHour < 0 || c.View.RangeStartHour > 23 {
		problems = append(problems, "view.range_start_hour must be within 0..23")
	}
	if c.View.RangeHours < 1 || c.View.RangeHours > 24*7 {
		problems = append(problems, "view.range_hours must be within 1..168")
	}
	if c.View.Snap.Duration < 0 {
		problems = append(problems, "view.snap must not be negative")
	}
	switch c.View.Glyphs {
	case "", "unicode", "ascii":
	default:
		problems = append(problems, fmt.Sprintf("view.glyphs %q (want unicode|ascii)", c.View.Glyphs))
	}
	if c.View.RowHeight < 1 || c.View.RowHeight > 3 {
		problems = append(problems, "view.row_height must be within 1..3")
	}
	switch c.TUI.Mouse {
	case MouseCellMotion, MouseAllMotion, MouseOff:
	default:
		problems = append(problems, fmt.Sprintf("tui.mouse %q (want cell-motion|all-motion|off)", c.TUI.Mouse))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// Range is the initial visible window for the day containing now.
func (c Config) Range(now time.Time) model.Range {
	y, m, d := now.Date()
	start := time.Date(y, m, d, c.View.RangeStartHour, 0, 0, 0, now.Location())
	end := start.Add(time.Duration(c.View.RangeHours) * time.Hour).Add(-time.Millisecond)
	return model.Range{Start: start.UnixMilli(), End: end.UnixMilli()}
}

// SeedOptions maps the [seed] table onto generator options.
func (c Config) SeedOptions(now time.Time) seed.Options {
	return seed.Options{
		Rows:        c.Seed.Rows,
		Items:       c.Seed.Items,
		MinDuration: c.Seed.MinDuration.Duration,
		MaxDuration: c.Seed.MaxDuration.Duration,
		Now:         func() time.Time { return now },
		Range:       c.Range(now),
	}
}
