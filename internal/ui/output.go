package ui

import (
	"fmt"
	"os"
)

// Unicode symbols for status indicators
const (
	SymbolSuccess = "✓"
	SymbolError   = "✗"
	SymbolWarning = "⚠"
	SymbolInfo    = "ℹ"
)

// Success returns a success message with checkmark symbol.
func Success(msg string) string {
	return fmt.Sprintf("%s %s", SymbolSuccess, msg)
}

// Successf returns a formatted success message with checkmark symbol.
func Successf(format string, args ...any) string {
	return Success(fmt.Sprintf(format, args...))
}

// Error returns an error message with X symbol.
func Error(msg string) string {
	return fmt.Sprintf("%s %s", SymbolError, msg)
}

// Errorf returns a formatted error message with X symbol.
func Errorf(format string, args ...any) string {
	return Error(fmt.Sprintf(format, args...))
}

// Warning returns a warning message with warning symbol.
func Warning(msg string) string {
	return fmt.Sprintf("%s %s", SymbolWarning, msg)
}

// Hint returns muted hint text.
func Hint(msg string) string {
	return Muted.Render(msg)
}

// Header returns a styled section header.
func Header(msg string) string {
	return Bold.Render(msg)
}

// Warnf prints a warning line to stderr. Engine components report
// degraded results through this instead of returning errors, so the
// host process keeps running.
func Warnf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", SymbolWarning, fmt.Sprintf(format, args...))
}

// Errf prints an error line to stderr without terminating anything.
func Errf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", SymbolError, fmt.Sprintf(format, args...))
}
