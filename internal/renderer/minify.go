package renderer

import (
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"

	taskerrors "github.com/conneroisu/lesstask/internal/errors"
)

const cssMediaType = "text/css"

// CSSMinifier minifies stylesheets with tdewolff/minify.
type CSSMinifier struct {
	m *minify.M
}

// NewCSSMinifier creates a CSS minifier. It is safe for concurrent use.
func NewCSSMinifier() *CSSMinifier {
	m := minify.New()
	m.AddFunc(cssMediaType, css.Minify)

	return &CSSMinifier{m: m}
}

// Minify returns the minified form of in. Output never grows: when the
// minifier cannot shrink the input, the input is returned as is.
func (c *CSSMinifier) Minify(in []byte) ([]byte, error) {
	out, err := c.m.Bytes(cssMediaType, in)
	if err != nil {
		return nil, taskerrors.NewRenderError(taskerrors.CodeMinify, &taskerrors.Diagnostic{
			Message: err.Error(),
		})
	}
	if len(out) > len(in) {
		return in, nil
	}

	return out, nil
}
