// Package debug has helpers producing human readable dumps for debug reports.
package debug

import (
	"fmt"
	"strconv"
	"strings"
)

// TreeWriter accumulates indented lines, two spaces per level.
type TreeWriter struct {
	w *strings.Builder
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{
		w: &strings.Builder{},
	}
}

func (tw TreeWriter) String() string {
	return tw.w.String()
}

func (tw TreeWriter) indent(depth int) {
	for range depth {
		tw.w.WriteString("  ")
	}
}

func (tw TreeWriter) Line(depth int, format string, args ...any) {
	tw.indent(depth)
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// TextBlock writes "label: value" with value quoted.
func (tw TreeWriter) TextBlock(depth int, label, value string) {
	tw.indent(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(": ")
	tw.w.WriteString(encodeText(value))
	tw.w.WriteByte('\n')
}

// List writes "label: [v1 v2]" with every value quoted.
func (tw TreeWriter) List(depth int, label string, values []string) {
	tw.indent(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(": [")
	for i, v := range values {
		if i > 0 {
			tw.w.WriteByte(' ')
		}
		tw.w.WriteString(strconv.Quote(v))
	}
	tw.w.WriteString("]\n")
}

func encodeText(raw string) string {
	if raw == "" {
		return raw
	}
	return strconv.Quote(raw)
}
