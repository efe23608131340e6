package ui

import (
	"fmt"
	"io"

	"github.com/gubarz/snipgen/internal/snippet"
)

// PrintDuplicates writes a summary of duplicate prefixes to w
func PrintDuplicates(w io.Writer, dups []snippet.Duplicate) {
	if len(dups) == 0 {
		return
	}
	fmt.Fprintln(w, styles.Error.Render(fmt.Sprintf("Duplicate prefixes found (%d):", len(dups))))
	for _, dup := range dups {
		fmt.Fprintf(w, "  %s defined at:\n    - line %d\n    - line %d\n",
			styles.Prefix.Render(fmt.Sprintf("%q", dup.Name)), dup.FirstLine, dup.Line)
	}
	fmt.Fprintln(w, styles.Dim.Render("No output written."))
}

// PrintSummary writes the result of a check to w
func PrintSummary(w io.Writer, c *snippet.Collection) {
	if len(c.Duplicates) > 0 {
		PrintDuplicates(w, c.Duplicates)
		return
	}
	fmt.Fprintln(w, styles.Success.Render(fmt.Sprintf("OK: %d snippets", len(c.Entries))))
}
