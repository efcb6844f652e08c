// Package css collects what site stylesheets define so configured classes
// could be checked against them.
package css

import (
	"slices"
	"sort"

	"github.com/maruel/natural"

	"addcss/utils/debug"
)

// Stylesheet keeps class names referenced by selectors of a single
// stylesheet and its imports.
type Stylesheet struct {
	Source  string
	Imports []string
	classes map[string]struct{}
}

func newStylesheet(source string) *Stylesheet {
	return &Stylesheet{Source: source, classes: make(map[string]struct{})}
}

// Defines reports if any rule of the stylesheet selects by class name.
func (s *Stylesheet) Defines(class string) bool {
	_, ok := s.classes[class]
	return ok
}

// Classes returns all class names in natural order.
func (s *Stylesheet) Classes() []string {
	out := make([]string, 0, len(s.classes))
	for c := range s.classes {
		out = append(out, c)
	}
	sort.Sort(natural.StringSlice(out))
	return out
}

// Inventory maps class name to stylesheets defining it.
type Inventory map[string][]string

// Add records all classes of the stylesheet.
func (inv Inventory) Add(s *Stylesheet) {
	for c := range s.classes {
		if !slices.Contains(inv[c], s.Source) {
			inv[c] = append(inv[c], s.Source)
		}
	}
}

// Missing returns classes not defined by any stylesheet keeping order and
// dropping repeats.
func (inv Inventory) Missing(classes []string) []string {
	var out []string
	for _, c := range classes {
		if _, ok := inv[c]; !ok && !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	return out
}

// String returns a readable tree of the inventory for debug reports.
func (inv Inventory) String() string {
	names := make([]string, 0, len(inv))
	for c := range inv {
		names = append(names, c)
	}
	sort.Sort(natural.StringSlice(names))

	tw := debug.NewTreeWriter()
	tw.Line(0, "Inventory (%d classes)", len(inv))
	for _, c := range names {
		tw.List(1, c, inv[c])
	}
	return tw.String()
}
