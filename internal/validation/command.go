// Package validation guards the external commands the task is allowed to
// spawn against injection through configuration values.
package validation

import (
	"fmt"
	"path/filepath"
	"strings"
)

// RendererCommands lists the executables accepted as stylesheet renderer.
var RendererCommands = map[string]bool{
	"lessc": true,
	"npx":   true,
	"node":  true,
}

// ValidateArgument validates a command line argument to prevent injection attacks
func ValidateArgument(arg string) error {
	// Check for shell metacharacters that could be used for command injection
	dangerous := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\\", "\"", "'"}
	for _, char := range dangerous {
		if strings.Contains(arg, char) {
			return fmt.Errorf("contains dangerous character: %s", char)
		}
	}

	if strings.Contains(arg, "..") {
		return fmt.Errorf("contains path traversal: %s", arg)
	}

	// Absolute paths are only accepted for system binaries
	if filepath.IsAbs(arg) && !strings.HasPrefix(arg, "/usr/bin/") &&
		!strings.HasPrefix(arg, "/usr/local/bin/") && !strings.HasPrefix(arg, "/bin/") {
		return fmt.Errorf("absolute path not allowed: %s", arg)
	}

	return nil
}

// ValidateCommand validates a command name against an allowlist. Paths are
// accepted when their base name is allowed, e.g. ./node_modules/.bin/lessc.
func ValidateCommand(command string, allowedCommands map[string]bool) error {
	if command == "" {
		return fmt.Errorf("command cannot be empty")
	}

	if !allowedCommands[filepath.Base(command)] {
		return fmt.Errorf("command '%s' is not allowed", command)
	}

	if err := ValidateArgument(command); err != nil {
		return fmt.Errorf("invalid command '%s': %w", command, err)
	}

	return nil
}

// SplitCommandLine splits a configured command line such as "npx lessc" into
// its words and validates each of them.
func SplitCommandLine(line string, allowedCommands map[string]bool) ([]string, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil, fmt.Errorf("command cannot be empty")
	}

	if err := ValidateCommand(parts[0], allowedCommands); err != nil {
		return nil, err
	}

	for _, arg := range parts[1:] {
		if err := ValidateArgument(arg); err != nil {
			return nil, fmt.Errorf("invalid argument '%s': %w", arg, err)
		}
	}

	return parts, nil
}
