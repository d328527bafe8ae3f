package errors

import (
	"regexp"
	"strings"
)

// Suggestion is a hint for fixing a render failure.
type Suggestion struct {
	Title       string
	Description string
	Example     string
}

type suggestionRule struct {
	kind    string
	pattern *regexp.Regexp
	build   func(match []string) Suggestion
}

var suggestionRules = []suggestionRule{
	{
		kind:    "NameError",
		pattern: regexp.MustCompile(`variable (@[\w-]+) is undefined`),
		build: func(m []string) Suggestion {
			return Suggestion{
				Title:       "Define " + m[1] + " or import the file that does",
				Description: "Variables are resolved against the file and its imports",
				Example:     `@import "variables.less";`,
			}
		},
	},
	{
		kind:    "NameError",
		pattern: regexp.MustCompile(`(\.[\w-]+(?:\(\))?) is undefined`),
		build: func(m []string) Suggestion {
			return Suggestion{
				Title:       "Mixin " + m[1] + " is not defined",
				Description: "Check the spelling or import the file that defines the mixin",
			}
		},
	},
	{
		kind:    "FileError",
		pattern: regexp.MustCompile(`'([^']+)' wasn't found`),
		build: func(m []string) Suggestion {
			return Suggestion{
				Title:       "Import " + m[1] + " could not be resolved",
				Description: "Imports are resolved relative to the importing file's directory",
			}
		},
	},
	{
		kind:    "ParseError",
		pattern: regexp.MustCompile(`Unrecognised input|missing closing`),
		build: func([]string) Suggestion {
			return Suggestion{
				Title:       "Check the syntax around the reported line",
				Description: "A missing semicolon, brace or quote is the usual cause",
			}
		},
	},
	{
		kind:    "SyntaxError",
		pattern: regexp.MustCompile(`Operation on an invalid type|Cannot read`),
		build: func([]string) Suggestion {
			return Suggestion{
				Title:       "An expression mixes incompatible values",
				Description: "Arithmetic needs numbers or colors with compatible units",
			}
		},
	},
}

// Suggest returns fix hints for diag, most specific first.
func Suggest(diag *Diagnostic) []Suggestion {
	if diag == nil {
		return nil
	}

	var suggestions []Suggestion
	for _, rule := range suggestionRules {
		if rule.kind != "" && diag.Kind != "" && !strings.EqualFold(rule.kind, diag.Kind) {
			continue
		}
		if m := rule.pattern.FindStringSubmatch(diag.Message); m != nil {
			suggestions = append(suggestions, rule.build(m))
		}
	}

	return suggestions
}
