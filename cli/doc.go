// Package cli implements the command-line interface for exo.
//
// The cli package provides:
// - The terminal browser shell that observes the page controller
// - A one-shot fetch command for scripts and pipes
// - Configuration from EXO_* variables overridden by flags
// - Opening pages in the system browser
package cli
