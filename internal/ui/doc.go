// Package ui provides semantic text formatting for CLI output.
//
// This package defines formatters for different types of content (commands,
// paths, indicators, etc.) that render appropriately based on terminal
// capabilities. When colors are available, content is colorized. When
// NO_COLOR is set or the terminal doesn't support colors, text-based
// decorations (backticks, quotes) are used instead.
//
// Use the appropriate formatter for the content type:
//
//	ui.Code.Sprint("envctl init")        // Commands and code
//	ui.Path.Sprint(".env.production")    // File paths
//	ui.Success.Sprint("✓")                // Success indicators
//	ui.Error.Sprint("✗")                  // Error indicators
//	ui.Warning.Sprint("⚠")                // Warnings
//	ui.Info.Sprint("→")                   // Informational hints
//	ui.Highlight.Sprint("my-project")    // User values
//	ui.Muted.Sprint("optional")          // De-emphasized text
package ui
