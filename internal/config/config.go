package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/atomicstack/treecombo/internal/app"
	"github.com/atomicstack/treecombo/internal/source"
	"github.com/atomicstack/treecombo/internal/tree"
)

// Config captures runtime configuration for the application.
type Config struct {
	App     app.Config
	Logging Logging
	File    string
	Flags   map[string]string
	Args    []string
}

type Logging struct {
	FilePath string
	Trace    bool
}

const (
	envConfig    = "TREECOMBO_CONFIG"
	envSource    = "TREECOMBO_SOURCE"
	envPath      = "TREECOMBO_PATH"
	envSearch    = "TREECOMBO_SEARCH"
	envDelay     = "TREECOMBO_DELAY"
	envInterval  = "TREECOMBO_INTERVAL"
	envFanout    = "TREECOMBO_FANOUT"
	envSeed      = "TREECOMBO_SEED"
	envWidth     = "TREECOMBO_WIDTH"
	envHeight    = "TREECOMBO_HEIGHT"
	envFooter    = "TREECOMBO_FOOTER"
	envJSON      = "TREECOMBO_JSON"
	envLabels    = "TREECOMBO_LABELS"
	envClipboard = "TREECOMBO_CLIPBOARD"
	envWatch     = "TREECOMBO_WATCH"
	envVerbose   = "TREECOMBO_VERBOSE"
	envTrace     = "TREECOMBO_TRACE"
	envLogFile   = "TREECOMBO_LOG_FILE"
)

// fileConfig mirrors the YAML config file. Unset keys keep the defaults.
type fileConfig struct {
	Source    *string        `yaml:"source"`
	Path      *string        `yaml:"path"`
	Search    *string        `yaml:"search"`
	Delay     *time.Duration `yaml:"delay"`
	Interval  *time.Duration `yaml:"interval"`
	Fanout    *int           `yaml:"fanout"`
	Seed      *int64         `yaml:"seed"`
	Width     *int           `yaml:"width"`
	Height    *int           `yaml:"height"`
	Footer    *bool          `yaml:"footer"`
	JSON      *bool          `yaml:"json"`
	Labels    *bool          `yaml:"labels"`
	Clipboard *bool          `yaml:"clipboard"`
	Watch     *bool          `yaml:"watch"`
	Verbose   *bool          `yaml:"verbose"`
	Trace     *bool          `yaml:"trace"`
	LogFile   *string        `yaml:"log_file"`
}

// Load parses configuration from CLI arguments and environment variables.
func Load() (Config, error) {
	return LoadArgs(os.Args[1:], os.Environ())
}

// LoadArgs allows tests to supply specific args/environment. Values resolve
// as defaults, then the YAML config file, then environment, then flags.
func LoadArgs(args []string, environ []string) (Config, error) {
	env := parseEnv(environ)

	configPath := findConfigPath(args, envOrDefault(env, envConfig, ""))
	base := defaults()
	if configPath != "" {
		if err := applyFile(&base, configPath); err != nil {
			return Config{}, err
		}
	}

	fs := flag.NewFlagSet("treecombo", flag.ContinueOnError)
	fs.SetOutput(new(strings.Builder))

	fs.String("config", configPath, "path to a YAML config file")
	kind := fs.String("source", envOrDefault(env, envSource, base.Source), "node source: random, file or sqlite")
	path := fs.String("path", envOrDefault(env, envPath, base.Path), "tree file or sqlite database for file/sqlite sources")
	search := fs.String("search", envOrDefault(env, envSearch, base.Search), "search matcher: substring or fuzzy")
	delay := fs.Duration("delay", envOrDuration(env, envDelay, base.Delay), "artificial fetch latency for the random source")
	interval := fs.Duration("interval", envOrDuration(env, envInterval, base.Interval), "minimum spacing between source fetches")
	fanout := fs.Int("fanout", envOrInt(env, envFanout, base.Fanout), "children per node for the random source")
	seed := fs.Int64("seed", envOrInt64(env, envSeed, base.Seed), "random source seed (0 uses the clock)")
	width := fs.Int("width", envOrInt(env, envWidth, base.Width), "desired viewport width in cells (0 uses terminal width)")
	height := fs.Int("height", envOrInt(env, envHeight, base.Height), "desired viewport height in rows (0 uses terminal height)")
	footer := fs.Bool("footer", envOrBool(env, envFooter, base.Footer), "enable footer hint row")
	asJSON := fs.Bool("json", envOrBool(env, envJSON, base.JSON), "print the selection as JSON")
	labels := fs.Bool("labels", envOrBool(env, envLabels, base.Labels), "print ids with labels in aligned columns")
	clip := fs.Bool("clipboard", envOrBool(env, envClipboard, base.Clipboard), "copy the selected ids to the clipboard")
	watch := fs.Bool("watch", envOrBool(env, envWatch, base.Watch), "reload when the source file changes")
	dump := fs.Bool("dump", false, "print the tree without starting the picker")
	depth := fs.Int("depth", 2, "levels to load in dump mode")
	trace := fs.Bool("trace", envOrBool(env, envTrace, base.Trace), "enable verbose JSON trace logging")
	verbose := fs.Bool("verbose", envOrBool(env, envVerbose, base.Verbose), "show node counts in the status line")
	logFile := fs.String("log-file", envOrDefault(env, envLogFile, base.LogFile), "path to the log file")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if *width < 0 {
		return Config{}, fmt.Errorf("width must be >= 0 (got %d)", *width)
	}
	if *height < 0 {
		return Config{}, fmt.Errorf("height must be >= 0 (got %d)", *height)
	}

	cfg := Config{
		App: app.Config{
			Source: source.Options{
				Kind:     strings.ToLower(strings.TrimSpace(*kind)),
				Path:     *path,
				Delay:    *delay,
				Fanout:   *fanout,
				Seed:     *seed,
				Interval: *interval,
			},
			Search:     strings.ToLower(strings.TrimSpace(*search)),
			Width:      *width,
			Height:     *height,
			ShowFooter: *footer,
			Verbose:    *verbose,
			Watch:      *watch,
			Dump:       *dump,
			Depth:      *depth,
			Output: app.Output{
				JSON:      *asJSON,
				Labels:    *labels,
				Clipboard: *clip,
			},
		},
		Logging: Logging{
			FilePath: *logFile,
			Trace:    *trace,
		},
		File: configPath,
		Flags: map[string]string{
			"source":    *kind,
			"path":      *path,
			"search":    *search,
			"delay":     delay.String(),
			"interval":  interval.String(),
			"fanout":    strconv.Itoa(*fanout),
			"seed":      strconv.FormatInt(*seed, 10),
			"width":     strconv.Itoa(*width),
			"height":    strconv.Itoa(*height),
			"footer":    strconv.FormatBool(*footer),
			"json":      strconv.FormatBool(*asJSON),
			"labels":    strconv.FormatBool(*labels),
			"clipboard": strconv.FormatBool(*clip),
			"watch":     strconv.FormatBool(*watch),
			"dump":      strconv.FormatBool(*dump),
			"depth":     strconv.Itoa(*depth),
			"trace":     strconv.FormatBool(*trace),
			"verbose":   strconv.FormatBool(*verbose),
			"logFile":   *logFile,
		},
		Args: append([]string(nil), args...),
	}

	return cfg, nil
}

// settings is the layer flags fall back to.
type settings struct {
	Source    string
	Path      string
	Search    string
	Delay     time.Duration
	Interval  time.Duration
	Fanout    int
	Seed      int64
	Width     int
	Height    int
	Footer    bool
	JSON      bool
	Labels    bool
	Clipboard bool
	Watch     bool
	Verbose   bool
	Trace     bool
	LogFile   string
}

func defaults() settings {
	return settings{
		Source: source.KindRandom,
		Search: tree.MatchSubstring,
		Delay:  source.DefaultDelay,
		Fanout: source.DefaultFanout,
	}
}

func applyFile(s *settings, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	set(&s.Source, fc.Source)
	set(&s.Path, fc.Path)
	set(&s.Search, fc.Search)
	set(&s.Delay, fc.Delay)
	set(&s.Interval, fc.Interval)
	set(&s.Fanout, fc.Fanout)
	set(&s.Seed, fc.Seed)
	set(&s.Width, fc.Width)
	set(&s.Height, fc.Height)
	set(&s.Footer, fc.Footer)
	set(&s.JSON, fc.JSON)
	set(&s.Labels, fc.Labels)
	set(&s.Clipboard, fc.Clipboard)
	set(&s.Watch, fc.Watch)
	set(&s.Verbose, fc.Verbose)
	set(&s.Trace, fc.Trace)
	set(&s.LogFile, fc.LogFile)
	return nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// findConfigPath picks --config out of args ahead of the real parse so the
// file can seed flag defaults.
func findConfigPath(args []string, fallback string) string {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}
		name := strings.TrimLeft(arg, "-")
		if name == arg {
			continue
		}
		if value, ok := strings.CutPrefix(name, "config="); ok {
			return value
		}
		if name == "config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return fallback
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

func envOrDefault(env map[string]string, key, fallback string) string {
	if v, ok := env[key]; ok {
		return v
	}
	return fallback
}

func envOrInt(env map[string]string, key string, fallback int) int {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrInt64(env map[string]string, key string, fallback int64) int64 {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrBool(env map[string]string, key string, fallback bool) bool {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDuration(env map[string]string, key string, fallback time.Duration) time.Duration {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}

// MustLoad returns configuration or exits.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	return cfg
}

// Validate rejects combinations the application cannot run with.
func Validate(cfg Config) error {
	var errs []error
	a := cfg.App
	switch a.Source.Kind {
	case source.KindRandom:
	case source.KindFile, source.KindSQLite:
		if strings.TrimSpace(a.Source.Path) == "" {
			errs = append(errs, fmt.Errorf("--path is required for the %s source", a.Source.Kind))
		}
	default:
		errs = append(errs, fmt.Errorf("%w: %q", source.ErrUnknownSource, a.Source.Kind))
	}
	switch a.Search {
	case tree.MatchSubstring, tree.MatchFuzzy:
	default:
		errs = append(errs, fmt.Errorf("unknown search mode %q", a.Search))
	}
	if a.Source.Delay < 0 {
		errs = append(errs, fmt.Errorf("delay must be >= 0 (got %s)", a.Source.Delay))
	}
	if a.Source.Interval < 0 {
		errs = append(errs, fmt.Errorf("interval must be >= 0 (got %s)", a.Source.Interval))
	}
	if a.Source.Fanout < 0 {
		errs = append(errs, fmt.Errorf("fanout must be >= 0 (got %d)", a.Source.Fanout))
	}
	if a.Dump && a.Depth < 1 {
		errs = append(errs, fmt.Errorf("depth must be >= 1 (got %d)", a.Depth))
	}
	if a.Output.JSON && a.Output.Labels {
		errs = append(errs, errors.New("--json and --labels are mutually exclusive"))
	}
	if a.Watch && a.Source.Kind == source.KindRandom {
		errs = append(errs, errors.New("--watch needs a file or sqlite source"))
	}
	return errors.Join(errs...)
}
