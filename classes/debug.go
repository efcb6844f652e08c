package classes

import (
	"addcss/utils/debug"
)

// String returns a readable tree of the set. It exists solely for manual
// inspection and debug reports.
func (s ReplacementSet) String() string {
	tw := debug.NewTreeWriter()
	tw.Line(0, "ReplacementSet (%d entries)", len(s))
	for i, e := range s {
		tw.Line(1, "Entry[%d]", i)
		tw.TextBlock(2, "selector", e.Selector)
		tw.List(2, "classes", e.Classes)
	}
	return tw.String()
}

// Report returns a readable tree of matches collected by TransformWithStats.
func Report(matches []Match) string {
	tw := debug.NewTreeWriter()
	tw.Line(0, "Matches (%d selectors)", len(matches))
	for _, m := range matches {
		tw.Line(1, "%q matched %d element(s)", m.Selector, m.Count)
	}
	return tw.String()
}
