// Package renderer turns engine reports into markdown, one builder per
// report. The output is plain markdown so it can go to a terminal
// renderer or straight into a file.
package renderer

import (
	"fmt"
	"strings"
)

// row writes one markdown table row.
func row(sb *strings.Builder, cells ...string) {
	sb.WriteString("|")
	for _, c := range cells {
		sb.WriteString(" ")
		sb.WriteString(c)
		sb.WriteString(" |")
	}
	sb.WriteString("\n")
}

// header writes the table header and its separator line.
func header(sb *strings.Builder, cells ...string) {
	row(sb, cells...)
	seps := make([]string, len(cells))
	for i := range seps {
		seps[i] = "---"
	}
	row(sb, seps...)
}

func title(sb *strings.Builder, format string, args ...any) {
	fmt.Fprintf(sb, "# "+format+"\n\n", args...)
}

func section(sb *strings.Builder, format string, args ...any) {
	fmt.Fprintf(sb, "\n## "+format+"\n\n", args...)
}
