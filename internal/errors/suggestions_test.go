package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggest(t *testing.T) {
	tests := []struct {
		name  string
		diag  *Diagnostic
		title string
	}{
		{
			name:  "undefined variable",
			diag:  &Diagnostic{Kind: "NameError", Message: "variable @brand-color is undefined"},
			title: "Define @brand-color or import the file that does",
		},
		{
			name:  "undefined mixin",
			diag:  &Diagnostic{Kind: "NameError", Message: ".rounded() is undefined"},
			title: "Mixin .rounded() is not defined",
		},
		{
			name:  "missing import",
			diag:  &Diagnostic{Kind: "FileError", Message: "'mixins.less' wasn't found. Tried - /src/mixins.less"},
			title: "Import mixins.less could not be resolved",
		},
		{
			name:  "parse error without kind",
			diag:  &Diagnostic{Message: "Unrecognised input"},
			title: "Check the syntax around the reported line",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			suggestions := Suggest(tt.diag)
			require.NotEmpty(t, suggestions)
			assert.Equal(t, tt.title, suggestions[0].Title)
			assert.NotEmpty(t, suggestions[0].Description)
		})
	}
}

func TestSuggestNothing(t *testing.T) {
	assert.Nil(t, Suggest(nil))
	assert.Empty(t, Suggest(&Diagnostic{Kind: "ParseError", Message: "something new"}))
	assert.Empty(t, Suggest(&Diagnostic{Kind: "FileError", Message: "Unrecognised input"}),
		"rules only apply to their own kind")
}
