package classes

import (
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Compile parses selector. Blank selector is malformed too.
func Compile(selector string) (cascadia.Selector, error) {
	if len(strings.TrimSpace(selector)) == 0 {
		return nil, fmt.Errorf("%w: empty selector", ErrMalformedSelector)
	}
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrMalformedSelector, selector, err)
	}
	return sel, nil
}

// Apply finds all elements in doc matching selector and appends classes to
// their class attribute. It returns number of matched elements, zero matches
// is not an error.
func Apply(doc *html.Node, selector string, classes []string) (int, error) {
	sel, err := Compile(selector)
	if err != nil {
		return 0, err
	}
	return ApplyCompiled(doc, sel, classes), nil
}

// ApplyCompiled is Apply for already compiled selector.
func ApplyCompiled(doc *html.Node, sel cascadia.Selector, classes []string) int {
	matches := sel.MatchAll(doc)
	if len(classes) == 0 {
		return len(matches)
	}
	for _, n := range matches {
		appendClasses(n, classes)
	}
	return len(matches)
}

// appendClasses keeps existing classes in order and puts new ones after them.
// Only class attribute is touched, position of the attribute is preserved.
func appendClasses(n *html.Node, classes []string) {
	for i := range n.Attr {
		a := &n.Attr[i]
		if a.Namespace != "" || a.Key != "class" {
			continue
		}
		a.Val = strings.Join(append(strings.Fields(a.Val), classes...), " ")
		return
	}
	n.Attr = append(n.Attr, html.Attribute{Key: "class", Val: strings.Join(classes, " ")})
}
