package renderer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	taskerrors "github.com/conneroisu/lesstask/internal/errors"
	"github.com/conneroisu/lesstask/internal/validation"
)

// Lessc renders stylesheets by running the lessc compiler.
type Lessc struct {
	command []string
	timeout time.Duration

	execCommand func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// NewLessc creates a renderer for commandLine, e.g. "lessc" or "npx lessc".
// A zero timeout leaves renders unbounded.
func NewLessc(commandLine string, timeout time.Duration) (*Lessc, error) {
	parts, err := validation.SplitCommandLine(commandLine, validation.RendererCommands)
	if err != nil {
		return nil, taskerrors.NewConfigError(taskerrors.CodeInvalidValue,
			fmt.Sprintf("renderer.command: %v", err))
	}

	return &Lessc{
		command:     parts,
		timeout:     timeout,
		execCommand: exec.CommandContext,
	}, nil
}

// Args returns the arguments passed to the compiler for opts, after any
// words of the configured command line.
func (l *Lessc) Args(opts Options) []string {
	args := append([]string{}, l.command[1:]...)
	args = append(args, "--no-color")

	if len(opts.IncludePaths) > 0 {
		args = append(args, "--include-path="+strings.Join(opts.IncludePaths, string(os.PathListSeparator)))
	}
	if len(opts.Browsers) > 0 {
		args = append(args, "--autoprefix="+strings.Join(opts.Browsers, ","))
	}
	if opts.SourceMapInline {
		args = append(args, "--source-map-inline")
	}

	// read the source from stdin
	return append(args, "-")
}

// Render compiles source with lessc.
func (l *Lessc) Render(ctx context.Context, source []byte, opts Options) (Result, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer

	cmd := l.execCommand(ctx, l.command[0], l.Args(opts)...)
	cmd.Stdin = bytes.NewReader(source)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if len(opts.IncludePaths) > 0 {
		cmd.Dir = opts.IncludePaths[0]
	}

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return Result{}, taskerrors.NewRenderError(taskerrors.CodeRender, &taskerrors.Diagnostic{
				File:    opts.Filename,
				Message: fmt.Sprintf("render aborted: %v", ctx.Err()),
			})
		}

		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return Result{}, fmt.Errorf("running %s: %w", l.command[0], err)
		}

		return Result{}, taskerrors.NewRenderError(taskerrors.CodeRender,
			taskerrors.ParseLessOutput(stderr.String(), opts.Filename))
	}

	return Result{
		CSS:      stdout.Bytes(),
		Warnings: nonEmptyLines(stderr.String()),
	}, nil
}

func nonEmptyLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
