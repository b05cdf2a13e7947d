// Package display formats user-facing warnings for the launcher CLI.
//
// Warnings are rendered in yellow when color output is enabled:
//
//	warning := display.Warning{
//	    Title:      "2 folders could not be scanned",
//	    Items:      []string{"/mnt/nas: permission denied"},
//	    Suggestion: "Remove them with 'launcher set folders ...'",
//	}
//	warning.Display(os.Stderr)
//
// All functions accept io.Writer interfaces for testability.
package display
