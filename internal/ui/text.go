package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Formatter renders one semantic kind of output text. With color enabled
// it applies its color; without, it falls back to plain-text decorations
// so piped and logged output stays readable.
type Formatter struct {
	color       *color.Color
	open, close string
}

// Sprint formats the arguments in the formatter's style.
func (f Formatter) Sprint(a ...any) string {
	text := fmt.Sprint(a...)
	if colorDisabled() {
		return f.open + text + f.close
	}
	return f.color.Sprint(text)
}

// Sprintf formats according to format in the formatter's style.
func (f Formatter) Sprintf(format string, a ...any) string {
	return f.Sprint(fmt.Sprintf(format, a...))
}

// EnsureNewline appends a trailing newline when s lacks one. Spinner
// final messages need it so the shell prompt starts on a fresh line.
func EnsureNewline(s string) string {
	if len(s) == 0 || s[len(s)-1] != '\n' {
		return s + "\n"
	}
	return s
}

// colorDisabled honors NO_COLOR (https://no-color.org/) on top of
// fatih/color's own terminal detection.
func colorDisabled() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return true
	}
	return color.NoColor
}

// The formatters below are the output vocabulary of every command:
// ✗/✓/⚠/→ indicator lines built from Error, Success, Warning, and Info,
// with Code for runnable commands, Path for files, Flag for flags, and
// Highlight/Muted for values and asides.
var (
	// Code wraps runnable commands in `backticks` when color is off.
	Code = Formatter{color.New(color.FgYellow), "`", "`"}

	// Path marks file and directory paths. No plain-text decoration.
	Path = Formatter{color.New(color.FgYellow), "", ""}

	// Flag marks CLI flags like --env or --all. The double dash is
	// decoration enough without color.
	Flag = Formatter{color.New(color.FgYellow), "", ""}

	// Success marks the ✓ indicator and success text.
	Success = Formatter{color.New(color.FgGreen), "", ""}

	// Error marks the ✗ indicator and failure text.
	Error = Formatter{color.New(color.FgRed), "", ""}

	// Warning marks the ⚠ indicator and warning text.
	Warning = Formatter{color.New(color.FgYellow), "", ""}

	// Info marks the → indicator on remediation and next-step hints.
	Info = Formatter{color.New(color.FgCyan), "", ""}

	// Highlight marks user values such as project and environment
	// names, 'quoted' when color is off.
	Highlight = Formatter{color.New(color.FgCyan), "'", "'"}

	// Muted marks secondary text, (parenthesized) when color is off.
	Muted = Formatter{color.New(color.FgHiBlack), "(", ")"}
)
