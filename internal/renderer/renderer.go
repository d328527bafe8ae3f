// Package renderer adapts the external stylesheet compiler and the CSS
// minifier to the interfaces the build pipeline consumes.
//
// Rendering runs lessc as a subprocess fed through stdin, with the
// autoprefix plugin receiving the configured browser targets and an inline
// source map requested in debug mode. Failures are parsed into diagnostics.
// Minification uses tdewolff/minify.
package renderer

import "context"

// Options controls a single render.
type Options struct {
	// Filename is the absolute path of the source, used for diagnostics.
	Filename string
	// IncludePaths are searched for @import targets.
	IncludePaths []string
	// Browsers are compatibility targets for vendor prefixing.
	Browsers []string
	// SourceMapInline embeds a source map in the rendered CSS.
	SourceMapInline bool
}

// Result is the output of a successful render.
type Result struct {
	CSS      []byte
	Warnings []string
}

// Renderer compiles stylesheet source into CSS.
type Renderer interface {
	Render(ctx context.Context, source []byte, opts Options) (Result, error)
}

// Minifier shrinks rendered CSS.
type Minifier interface {
	Minify(css []byte) ([]byte, error)
}
