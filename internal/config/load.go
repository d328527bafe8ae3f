package config

import (
	"github.com/spf13/viper"
)

// Load resolves the configuration from v. Only keys that are set in v (from
// a config file, the environment or a bound flag) override the defaults.
func Load(v *viper.Viper) (Config, error) {
	if v == nil {
		v = viper.GetViper()
	}

	var o Overrides

	if v.IsSet("input") {
		o.Input = ptr(v.GetString("input"))
	}
	if v.IsSet("output") {
		o.Output = ptr(v.GetString("output"))
	}
	// Handle browsers set via viper (workaround for viper slice handling)
	if v.IsSet("browsers") {
		o.Browsers = v.GetStringSlice("browsers")
		if o.Browsers == nil {
			o.Browsers = []string{}
		}
	}
	if v.IsSet("output_name") {
		o.OutputName = ptr(v.GetString("output_name"))
	}
	if v.IsSet("debug") {
		o.Debug = ptr(v.GetBool("debug"))
	}
	if v.IsSet("watch") {
		o.Watch = ptr(v.GetBool("watch"))
	}
	if v.IsSet("concurrency") {
		o.Concurrency = ptr(v.GetInt("concurrency"))
	}
	if v.IsSet("watch_debounce") {
		o.WatchDebounce = ptr(v.GetDuration("watch_debounce"))
	}
	if v.IsSet("renderer.command") {
		o.RendererCmd = ptr(v.GetString("renderer.command"))
	}
	if v.IsSet("renderer.timeout") {
		o.RendererTimeout = ptr(v.GetDuration("renderer.timeout"))
	}
	if v.IsSet("livereload.addr") {
		o.LiveReloadAddr = ptr(v.GetString("livereload.addr"))
	}
	if v.IsSet("metrics.addr") {
		o.MetricsAddr = ptr(v.GetString("metrics.addr"))
	}
	if v.IsSet("log.level") {
		o.LogLevel = ptr(v.GetString("log.level"))
	}
	if v.IsSet("log.format") {
		o.LogFormat = ptr(v.GetString("log.format"))
	}

	return Resolve(o)
}

func ptr[T any](v T) *T {
	return &v
}
