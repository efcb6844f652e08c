package classes

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Match reports how many elements selector matched during transformation.
type Match struct {
	Selector string
	Count    int
}

// Transform parses fragment once, applies every entry of the set to it in
// order and serializes result back. Empty set returns input as is without
// parsing it. All selectors are compiled before document is touched, so
// malformed selector leaves nothing half applied.
func Transform(fragment string, set ReplacementSet) (string, error) {
	out, _, err := TransformWithStats(fragment, set)
	return out, err
}

// TransformWithStats is Transform which also reports per selector matches.
// When nothing was changed input is returned as is, rendering would normalize
// markup of untouched content.
func TransformWithStats(fragment string, set ReplacementSet) (string, []Match, error) {
	if len(set) == 0 {
		return fragment, nil, nil
	}

	selectors := make([]cascadia.Selector, 0, len(set))
	for _, e := range set {
		sel, err := Compile(e.Selector)
		if err != nil {
			return "", nil, err
		}
		selectors = append(selectors, sel)
	}

	root, document, err := parse(fragment)
	if err != nil {
		return "", nil, err
	}

	var changed bool
	matches := make([]Match, 0, len(set))
	for i, e := range set {
		n := ApplyCompiled(root, selectors[i], e.Classes)
		changed = changed || (n > 0 && len(e.Classes) > 0)
		matches = append(matches, Match{Selector: e.Selector, Count: n})
	}
	if !changed {
		return fragment, matches, nil
	}

	var buf bytes.Buffer
	if document {
		err = html.Render(&buf, root)
	} else {
		for n := root.FirstChild; n != nil && err == nil; n = n.NextSibling {
			err = html.Render(&buf, n)
		}
	}
	if err != nil {
		return "", nil, fmt.Errorf("unable to render html: %w", err)
	}
	return buf.String(), matches, nil
}

// parse returns root of the parsed tree. Full documents are parsed as is,
// everything else is parsed in body context and hung on synthetic document
// node so no html/head/body wrappers appear on output.
func parse(fragment string) (*html.Node, bool, error) {
	if IsDocument(strings.NewReader(fragment)) {
		doc, err := html.Parse(strings.NewReader(fragment))
		if err != nil {
			return nil, false, fmt.Errorf("unable to parse html document: %w", err)
		}
		return doc, true, nil
	}

	body := &html.Node{Type: html.ElementNode, Data: atom.Body.String(), DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), body)
	if err != nil {
		return nil, false, fmt.Errorf("unable to parse html fragment: %w", err)
	}
	root := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root, false, nil
}

// IsDocument reports if markup is a complete HTML document rather than a
// fragment: first token past comments and blank text is a doctype or an
// html start tag.
func IsDocument(r io.Reader) bool {
	z := html.NewTokenizer(r)
	for {
		switch z.Next() {
		case html.CommentToken:
		case html.TextToken:
			if len(bytes.TrimLeft(z.Text(), " \t\r\n\f\ufeff")) != 0 {
				return false
			}
		case html.DoctypeToken:
			return true
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			return atom.Lookup(name) == atom.Html
		default:
			return false
		}
	}
}
