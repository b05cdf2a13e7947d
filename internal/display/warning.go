package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Warning represents a user-facing warning message
type Warning struct {
	Title      string   // Main warning title
	Message    string   // Detailed explanation (optional)
	ItemsLabel string   // Heading for Items, e.g. "Skipped folders" (optional)
	Items      []string // Related paths or entries (optional)
	Suggestion string   // Action to take (optional)
}

// Display shows a formatted warning in yellow
func (w Warning) Display(out io.Writer) {
	var b strings.Builder

	b.WriteString("Warning: ")
	b.WriteString(w.Title)
	b.WriteString("\n")

	if w.Message != "" {
		b.WriteString("    ")
		b.WriteString(w.Message)
		b.WriteString("\n")
	}

	if len(w.Items) > 0 {
		label := w.ItemsLabel
		if label == "" {
			label = "Affected"
		}
		fmt.Fprintf(&b, "    %s:\n", label)
		for i, item := range w.Items {
			fmt.Fprintf(&b, "      %d. %s\n", i+1, item)
		}
	}

	if w.Suggestion != "" {
		b.WriteString("    Suggestion:\n")
		b.WriteString("    ")
		b.WriteString(w.Suggestion)
		b.WriteString("\n")
	}

	color.New(color.FgYellow).Fprint(out, b.String())
}

// WarnSkippedFolders creates a warning for configured folders that could not
// be traversed. causes[i] is the error for folders[i].
func WarnSkippedFolders(folders []string, causes []error) Warning {
	items := make([]string, len(folders))
	for i, f := range folders {
		if i < len(causes) && causes[i] != nil {
			items[i] = fmt.Sprintf("%s: %v", f, causes[i])
		} else {
			items[i] = f
		}
	}

	title := "1 folder could not be scanned"
	if len(folders) != 1 {
		title = fmt.Sprintf("%d folders could not be scanned", len(folders))
	}
	return Warning{
		Title:      title,
		Message:    "These folders contributed no results; the other folders were scanned normally.",
		ItemsLabel: "Skipped folders",
		Items:      items,
		Suggestion: "Check their permissions or remove them with 'launcher set folders ...'",
	}
}
