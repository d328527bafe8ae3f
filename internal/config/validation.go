package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	taskerrors "github.com/conneroisu/lesstask/internal/errors"
	"github.com/conneroisu/lesstask/internal/logging"
)

// validateConfig validates configuration values for correctness
func validateConfig(config *Config) error {
	if strings.TrimSpace(config.Input) == "" {
		return invalid("input", "must not be empty")
	}
	if !doublestar.ValidatePattern(NormalizeInput(config.Input)) {
		return invalid("input", fmt.Sprintf("%q is not a valid glob pattern", config.Input))
	}

	if strings.TrimSpace(config.Output) == "" {
		return invalid("output", "must not be empty")
	}

	for _, browser := range config.Browsers {
		if strings.TrimSpace(browser) == "" {
			return invalid("browsers", "entries must not be empty")
		}
	}

	if config.OutputName != "" {
		if !strings.Contains(config.OutputName, "[name]") {
			return invalid("output_name", "template must contain [name]")
		}
		if strings.ContainsAny(config.OutputName, `/\`) {
			return invalid("output_name", "template must be a file name, not a path")
		}
	}

	if config.Concurrency < 0 {
		return invalid("concurrency", fmt.Sprintf("%d is negative", config.Concurrency))
	}
	if config.WatchDebounce < 0 {
		return invalid("watch_debounce", "must not be negative")
	}

	if len(strings.Fields(config.Renderer.Command)) == 0 {
		return invalid("renderer.command", "must not be empty")
	}
	if config.Renderer.Timeout < 0 {
		return invalid("renderer.timeout", "must not be negative")
	}

	if err := validateAddr(config.LiveReload.Addr); err != nil {
		return invalid("livereload.addr", err.Error())
	}
	if err := validateAddr(config.Metrics.Addr); err != nil {
		return invalid("metrics.addr", err.Error())
	}

	if _, err := logging.ParseLevel(config.Log.Level); err != nil {
		return invalid("log.level", err.Error())
	}
	switch config.Log.Format {
	case "text", "json":
	default:
		return invalid("log.format", fmt.Sprintf("unsupported format %q (supported: text, json)", config.Log.Format))
	}

	return nil
}

func validateAddr(addr string) error {
	if addr == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return err
	}
	return nil
}

func invalid(field, message string) error {
	return taskerrors.NewConfigError(taskerrors.CodeInvalidValue, fmt.Sprintf("%s: %s", field, message))
}
