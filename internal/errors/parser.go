// Package errors provides the error taxonomy of the stylesheet task and the
// parser that turns stylesheet compiler output into structured diagnostics.
//
// Discovery errors are fatal to a run, I/O and render errors are isolated to
// the file they concern. Render errors carry a Diagnostic with the location
// and a short source excerpt so they can be reported apart from plain I/O
// failures.
package errors

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Diagnostic describes a stylesheet compilation failure.
type Diagnostic struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
	Excerpt string `json:"excerpt,omitempty"`
}

// Location renders file:line:column, dropping the parts that are unknown.
func (d *Diagnostic) Location() string {
	location := d.File
	if d.Line > 0 {
		location += fmt.Sprintf(":%d", d.Line)
		if d.Column > 0 {
			location += fmt.Sprintf(":%d", d.Column)
		}
	}

	return location
}

// String formats the diagnostic for terminal output.
func (d *Diagnostic) String() string {
	var builder strings.Builder

	builder.WriteString(d.Location())
	builder.WriteString(": ")
	if d.Kind != "" {
		builder.WriteString(d.Kind)
		builder.WriteString(": ")
	}
	builder.WriteString(d.Message)

	if d.Excerpt != "" {
		for _, line := range strings.Split(d.Excerpt, "\n") {
			builder.WriteString("\n    ")
			builder.WriteString(line)
		}
	}

	return builder.String()
}

type lessPattern struct {
	regex       *regexp.Regexp
	parseFields func(matches []string) (kind, file string, line, column int, message string)
}

var lessPatterns = []lessPattern{
	{
		regex: regexp.MustCompile(`^(\w+Error): (.+?) in (\S+) on line (\d+), column (\d+):?$`),
		parseFields: func(m []string) (string, string, int, int, string) {
			line, _ := strconv.Atoi(m[4])
			column, _ := strconv.Atoi(m[5])
			return m[1], m[3], line, column, m[2]
		},
	},
	{
		regex: regexp.MustCompile(`^(\w+Error): (.+?) on line (\d+), column (\d+):?$`),
		parseFields: func(m []string) (string, string, int, int, string) {
			line, _ := strconv.Atoi(m[3])
			column, _ := strconv.Atoi(m[4])
			return m[1], "", line, column, m[2]
		},
	},
	{
		regex: regexp.MustCompile(`^(\w+Error): (.+)$`),
		parseFields: func(m []string) (string, string, int, int, string) {
			return m[1], "", 0, 0, m[2]
		},
	},
}

var excerptLine = regexp.MustCompile(`^\s*\d+(\s|$)`)

// ParseLessOutput turns the stderr of a failed lessc run into a Diagnostic.
// file is used unless the output names another one, which happens when the
// failure is inside an imported stylesheet.
// Output that matches no known pattern becomes a message-only diagnostic.
func ParseLessOutput(output, file string) *Diagnostic {
	lines := strings.Split(strings.ReplaceAll(output, "\r\n", "\n"), "\n")

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		for _, pattern := range lessPatterns {
			matches := pattern.regex.FindStringSubmatch(line)
			if matches == nil {
				continue
			}

			kind, reported, lineNum, column, message := pattern.parseFields(matches)
			diag := &Diagnostic{
				File:    file,
				Line:    lineNum,
				Column:  column,
				Kind:    kind,
				Message: message,
				Excerpt: excerpt(lines[i+1:]),
			}
			if reported != "" && reported != "-" && reported != "input" {
				diag.File = reported
			}

			return diag
		}
	}

	return &Diagnostic{
		File:    file,
		Message: firstLine(output),
	}
}

func excerpt(lines []string) string {
	var out []string
	for _, line := range lines {
		if !excerptLine.MatchString(line) {
			break
		}
		out = append(out, strings.TrimRight(line, " \t"))
	}

	return strings.Join(out, "\n")
}

func firstLine(output string) string {
	for _, line := range strings.Split(output, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}

	return "unknown error"
}
