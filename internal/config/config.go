// Package config builds the resolved, read-only configuration of the
// stylesheet task.
//
// User overrides are merged onto Defaults by Resolve, which validates the
// result and normalizes the input pattern so it ends with exactly one "/".
// Load gathers overrides from Viper, which in turn reads .lesstask.yml,
// LESSTASK_* environment variables and bound command-line flags.
package config

import (
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// StylesheetExt is the extension of source files picked up by the task.
const StylesheetExt = ".less"

// OutputExt replaces StylesheetExt on written artifacts.
const OutputExt = ".css"

// NameFunc rewrites the base name of an output file. outBase is the source
// base name with its extension already swapped to .css, inBase is the
// source base name.
type NameFunc func(outBase, inBase string) string

// IdentityName returns outBase unchanged.
func IdentityName(outBase, _ string) string {
	return outBase
}

// Config is the resolved task configuration. It is built once by Resolve and
// must be treated as read-only afterwards; it is shared by every compiler.
type Config struct {
	Input          string           `yaml:"input"`
	Output         string           `yaml:"output"`
	Browsers       []string         `yaml:"browsers"`
	OutputFileName NameFunc         `yaml:"-"`
	OutputName     string           `yaml:"output_name,omitempty"`
	Debug          *bool            `yaml:"debug"`
	Watch          *bool            `yaml:"watch"`
	Concurrency    int              `yaml:"concurrency"`
	WatchDebounce  time.Duration    `yaml:"watch_debounce"`
	Renderer       RendererConfig   `yaml:"renderer"`
	LiveReload     LiveReloadConfig `yaml:"livereload"`
	Metrics        MetricsConfig    `yaml:"metrics"`
	Log            LogConfig        `yaml:"log"`
}

type RendererConfig struct {
	Command string        `yaml:"command"`
	Timeout time.Duration `yaml:"timeout"`
}

type LiveReloadConfig struct {
	Addr string `yaml:"addr"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Overrides carries user-supplied values. Nil fields keep the default.
type Overrides struct {
	Input           *string
	Output          *string
	Browsers        []string
	OutputFileName  NameFunc
	OutputName      *string
	Debug           *bool
	Watch           *bool
	Concurrency     *int
	WatchDebounce   *time.Duration
	RendererCmd     *string
	RendererTimeout *time.Duration
	LiveReloadAddr  *string
	MetricsAddr     *string
	LogLevel        *string
	LogFormat       *string
}

// Defaults returns the configuration used when nothing is overridden.
func Defaults() Config {
	return Config{
		// can be a glob matching many directories
		Input: "src/**/Resources/assets/less/",
		// relative to each matched input directory
		Output:   "../../public/css",
		Browsers: []string{"last 2 versions", "IE 10"},
		Renderer: RendererConfig{
			Command: "lessc",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Resolve merges o onto Defaults, validates the result and normalizes the
// input pattern.
func Resolve(o Overrides) (Config, error) {
	cfg := Defaults()

	if o.Input != nil {
		cfg.Input = *o.Input
	}
	if o.Output != nil {
		cfg.Output = *o.Output
	}
	if o.Browsers != nil {
		cfg.Browsers = o.Browsers
	}
	if o.OutputName != nil {
		cfg.OutputName = *o.OutputName
	}
	cfg.Debug = cloneBool(o.Debug)
	cfg.Watch = cloneBool(o.Watch)
	if o.Concurrency != nil {
		cfg.Concurrency = *o.Concurrency
	}
	if o.WatchDebounce != nil {
		cfg.WatchDebounce = *o.WatchDebounce
	}
	if o.RendererCmd != nil {
		cfg.Renderer.Command = *o.RendererCmd
	}
	if o.RendererTimeout != nil {
		cfg.Renderer.Timeout = *o.RendererTimeout
	}
	if o.LiveReloadAddr != nil {
		cfg.LiveReload.Addr = *o.LiveReloadAddr
	}
	if o.MetricsAddr != nil {
		cfg.Metrics.Addr = *o.MetricsAddr
	}
	if o.LogLevel != nil {
		cfg.Log.Level = *o.LogLevel
	}
	if o.LogFormat != nil {
		cfg.Log.Format = *o.LogFormat
	}

	if err := validateConfig(&cfg); err != nil {
		return Config{}, err
	}

	cfg.Input = NormalizeInput(cfg.Input)
	cfg.Browsers = slices.Clone(cfg.Browsers)

	switch {
	case o.OutputFileName != nil:
		cfg.OutputFileName = o.OutputFileName
	case cfg.OutputName != "":
		cfg.OutputFileName = TemplateName(cfg.OutputName)
	default:
		cfg.OutputFileName = IdentityName
	}

	return cfg, nil
}

// NormalizeInput makes pattern end with exactly one "/".
func NormalizeInput(pattern string) string {
	pattern = filepath.ToSlash(pattern)
	return strings.TrimRight(pattern, "/") + "/"
}

// TemplateName builds a NameFunc from a template such as "[name].min.css",
// where [name] is the source base name without its extension.
func TemplateName(template string) NameFunc {
	return func(outBase, _ string) string {
		name := strings.TrimSuffix(outBase, OutputExt)
		return strings.ReplaceAll(template, "[name]", name)
	}
}

func cloneBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}

// DebugMode reports whether debug mode is on, adopting ambient when the
// configuration leaves it unset.
func (c Config) DebugMode(ambient bool) bool {
	if c.Debug != nil {
		return *c.Debug
	}
	return ambient
}

// WatchMode reports whether watch mode is on, adopting ambient when the
// configuration leaves it unset.
func (c Config) WatchMode(ambient bool) bool {
	if c.Watch != nil {
		return *c.Watch
	}
	return ambient
}

// InputBase returns the longest leading part of the input pattern that
// contains no glob meta characters.
func (c Config) InputBase() string {
	base, _ := doublestar.SplitPattern(c.Input)
	return base
}

// WatchPattern matches any stylesheet at any depth below the input pattern.
func (c Config) WatchPattern() string {
	return c.Input + "**/*" + StylesheetExt
}

// NameFor applies the output file name hook.
func (c Config) NameFor(outBase, inBase string) string {
	if c.OutputFileName == nil {
		return outBase
	}
	return c.OutputFileName(outBase, inBase)
}

// YAML renders the configuration for display.
func (c Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
