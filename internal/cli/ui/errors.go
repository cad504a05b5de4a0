package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// ErrorLevel represents the severity of an error message
type ErrorLevel int

const (
	ErrorLevelError ErrorLevel = iota
	ErrorLevelWarning
	ErrorLevelInfo
)

type levelStyle struct {
	attr   color.Attribute
	symbol string
}

var levelStyles = map[ErrorLevel]levelStyle{
	ErrorLevelError:   {color.FgRed, "❌"},
	ErrorLevelWarning: {color.FgYellow, "⚠️"},
	ErrorLevelInfo:    {color.FgCyan, "ℹ️"},
}

// ErrorOptions configures the error message formatting
type ErrorOptions struct {
	Level        ErrorLevel
	Context      string
	Problem      string
	Consequence  string
	Suggestions  []string
	HelpCommands []string
	NoColor      bool
}

// FormatError creates a standardized error message with suggestions and help commands
//
// Example output:
//
//	❌ UNKNOWN TYPE
//	   Cannot find resource type 'psts'.
//
//	   Did you mean: posts?
//
//	   → See all types: resourcegraph types
func FormatError(opts ErrorOptions) string {
	style := levelStyles[opts.Level]
	header := color.New(style.attr, color.Bold)
	body := color.New(style.attr)
	hint := color.New(color.FgYellow)
	help := color.New(color.FgCyan)
	if opts.NoColor {
		for _, c := range []*color.Color{header, body, hint, help} {
			c.DisableColor()
		}
	}

	var b strings.Builder
	if opts.Context == "" {
		header.Fprintf(&b, "%s %s\n", style.symbol, opts.Problem)
	} else {
		header.Fprintf(&b, "%s %s\n", style.symbol, strings.ToUpper(opts.Context))
		body.Fprintf(&b, "   %s\n", opts.Problem)
	}

	if opts.Consequence != "" {
		body.Fprintf(&b, "\n   %s\n", opts.Consequence)
	}
	if len(opts.Suggestions) > 0 {
		hint.Fprintf(&b, "\n   Did you mean: %s?\n", strings.Join(opts.Suggestions, ", "))
	}
	if len(opts.HelpCommands) > 0 {
		b.WriteString("\n")
		for _, cmd := range opts.HelpCommands {
			help.Fprintf(&b, "   → %s\n", cmd)
		}
	}

	return b.String()
}

// WriteError writes a formatted error message to the writer
func WriteError(w io.Writer, opts ErrorOptions) {
	fmt.Fprint(w, FormatError(opts))
}

// FormatSuccess creates a success message
func FormatSuccess(message string, noColor bool) string {
	green := color.New(color.FgGreen, color.Bold)
	if noColor {
		green.DisableColor()
	}
	return green.Sprintf("✓ %s", message)
}

// WriteSuccess writes a success message to the writer
func WriteSuccess(w io.Writer, message string, noColor bool) {
	fmt.Fprintln(w, FormatSuccess(message, noColor))
}

// TypeNotFoundError reports an unknown resource type with close matches
func TypeNotFoundError(typeName string, suggestions []string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:       ErrorLevelError,
		Context:     "UNKNOWN TYPE",
		Problem:     fmt.Sprintf("Cannot find resource type '%s'.", typeName),
		Suggestions: suggestions,
		HelpCommands: []string{
			"See all types: resourcegraph types",
		},
		NoColor: noColor,
	})
}

// RecordNotFoundError reports a missing record of a known type
func RecordNotFoundError(typeName, id string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelError,
		Context: "RECORD NOT FOUND",
		Problem: fmt.Sprintf("No %s record with id '%s'.", typeName, id),
		HelpCommands: []string{
			fmt.Sprintf("List records: resourcegraph render %s", typeName),
		},
		NoColor: noColor,
	})
}

// RenderError reports a document that could not be built, such as an include
// path naming an undeclared relationship
func RenderError(message string, suggestions []string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:       ErrorLevelError,
		Context:     "RENDER FAILED",
		Problem:     message,
		Consequence: "No document was written.",
		Suggestions: suggestions,
		HelpCommands: []string{
			"Inspect relationships: resourcegraph types --verbose",
			"Get help: resourcegraph render --help",
		},
		NoColor: noColor,
	})
}

// ConfigError creates a standardized configuration error
func ConfigError(message string, suggestions []string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:       ErrorLevelError,
		Context:     "CONFIGURATION ERROR",
		Problem:     message,
		Suggestions: suggestions,
		HelpCommands: []string{
			"View config: cat resourcegraph.yaml",
			"Get help: resourcegraph --help",
		},
		NoColor: noColor,
	})
}

// Warning creates a standardized warning message
func Warning(message string, suggestions []string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:       ErrorLevelWarning,
		Problem:     message,
		Suggestions: suggestions,
		NoColor:     noColor,
	})
}
