// Package classes injects author specified CSS classes into HTML elements
// selected by CSS selectors.
package classes

import (
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"

	"github.com/maruel/natural"
	yaml "gopkg.in/yaml.v3"
)

// Entry is a single rule: elements matching Selector get Classes appended to
// their class attribute. Classes are not deduplicated.
type Entry struct {
	Selector string   `yaml:"selector"`
	Classes  []string `yaml:"classes"`
}

// ReplacementSet is an ordered list of entries with unique selectors. Order
// is the order in which entries are applied to the document.
type ReplacementSet []Entry

// NewReplacementSet builds set from entries. When selector repeats later
// entry replaces earlier one keeping its original position.
func NewReplacementSet(entries ...Entry) ReplacementSet {
	var s ReplacementSet
	for _, e := range entries {
		s.Set(e.Selector, e.Classes)
	}
	return s
}

// FromMap builds set from plain map. Go maps have no order so keys are sorted
// naturally to keep application order stable between runs.
func FromMap(m map[string][]string) ReplacementSet {
	if len(m) == 0 {
		return nil
	}
	keys := slices.Collect(maps.Keys(m))
	sort.Sort(natural.StringSlice(keys))

	s := make(ReplacementSet, 0, len(keys))
	for _, k := range keys {
		s = append(s, Entry{Selector: k, Classes: slices.Clone(m[k])})
	}
	return s
}

// Len returns number of entries.
func (s ReplacementSet) Len() int {
	return len(s)
}

func (s ReplacementSet) index(selector string) int {
	return slices.IndexFunc(s, func(e Entry) bool { return e.Selector == selector })
}

// Get returns classes for selector.
func (s ReplacementSet) Get(selector string) ([]string, bool) {
	if i := s.index(selector); i >= 0 {
		return s[i].Classes, true
	}
	return nil, false
}

// Set replaces classes for existing selector or appends new entry. Class
// lists are replaced, never concatenated.
func (s *ReplacementSet) Set(selector string, classes []string) {
	classes = slices.Clone(classes)
	if i := s.index(selector); i >= 0 {
		(*s)[i].Classes = classes
		return
	}
	*s = append(*s, Entry{Selector: selector, Classes: classes})
}

// Overlay sets every entry of o on top of s.
func (s *ReplacementSet) Overlay(o ReplacementSet) {
	for _, e := range o {
		s.Set(e.Selector, e.Classes)
	}
}

// Clone returns deep copy of the set.
func (s ReplacementSet) Clone() ReplacementSet {
	if s == nil {
		return nil
	}
	out := make(ReplacementSet, 0, len(s))
	for _, e := range s {
		out = append(out, Entry{Selector: e.Selector, Classes: slices.Clone(e.Classes)})
	}
	return out
}

// Map returns set as plain map losing order.
func (s ReplacementSet) Map() map[string][]string {
	m := make(map[string][]string, len(s))
	for _, e := range s {
		m[e.Selector] = slices.Clone(e.Classes)
	}
	return m
}

// FromValue converts untyped configuration value into set. Accepted shapes
// are mapping of selector to classes and list of explicit entries (either
// {selector, classes}, legacy {element_name, classes} or [selector, classes]
// pairs). Classes could be a list or a single whitespace separated string.
// Nil produces empty set.
func FromValue(v any) (ReplacementSet, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case ReplacementSet:
		return t.Clone(), nil
	case []Entry:
		return NewReplacementSet(t...), nil
	case map[string][]string:
		return FromMap(t), nil
	case map[string]string:
		m := make(map[string][]string, len(t))
		for k, v := range t {
			m[k] = strings.Fields(v)
		}
		return FromMap(m), nil
	case map[string]any:
		m := make(map[string][]string, len(t))
		for k, v := range t {
			classes, err := classesFromValue(v)
			if err != nil {
				return nil, fmt.Errorf("selector %q: %w", k, err)
			}
			m[k] = classes
		}
		return FromMap(m), nil
	case []map[string]any:
		items := make([]any, 0, len(t))
		for _, item := range t {
			items = append(items, item)
		}
		return fromList(items)
	case []any:
		return fromList(t)
	default:
		return nil, fmt.Errorf("%w: expected mapping of selector to classes, got %T", ErrInvalidConfigurationShape, v)
	}
}

func fromList(items []any) (ReplacementSet, error) {
	var s ReplacementSet
	for i, item := range items {
		selector, classes, err := entryFromValue(item)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		s.Set(selector, classes)
	}
	return s, nil
}

func entryFromValue(item any) (string, []string, error) {
	switch t := item.(type) {
	case map[string]any:
		var selector string
		for _, key := range []string{"selector", "element_name"} {
			if v, ok := t[key]; ok {
				str, ok := v.(string)
				if !ok {
					return "", nil, fmt.Errorf("%w: %s must be a string, got %T", ErrInvalidConfigurationShape, key, v)
				}
				selector = str
				break
			}
		}
		if len(selector) == 0 {
			return "", nil, fmt.Errorf("%w: entry has no selector", ErrInvalidConfigurationShape)
		}
		classes, err := classesFromValue(t["classes"])
		if err != nil {
			return "", nil, err
		}
		return selector, classes, nil
	case []any:
		if len(t) != 2 {
			return "", nil, fmt.Errorf("%w: pair must have exactly 2 elements, got %d", ErrInvalidConfigurationShape, len(t))
		}
		selector, ok := t[0].(string)
		if !ok {
			return "", nil, fmt.Errorf("%w: selector must be a string, got %T", ErrInvalidConfigurationShape, t[0])
		}
		classes, err := classesFromValue(t[1])
		if err != nil {
			return "", nil, err
		}
		return selector, classes, nil
	case Entry:
		return t.Selector, t.Classes, nil
	default:
		return "", nil, fmt.Errorf("%w: unexpected entry type %T", ErrInvalidConfigurationShape, item)
	}
}

func classesFromValue(v any) ([]string, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		return strings.Fields(t), nil
	case []string:
		return slices.Clone(t), nil
	case []any:
		out := make([]string, 0, len(t))
		for _, c := range t {
			str, ok := c.(string)
			if !ok {
				return nil, fmt.Errorf("%w: class name must be a string, got %T", ErrInvalidConfigurationShape, c)
			}
			out = append(out, str)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: classes must be a list of strings, got %T", ErrInvalidConfigurationShape, v)
	}
}

// UnmarshalYAML accepts the same shapes as FromValue keeping document order
// of mapping keys.
func (s *ReplacementSet) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.AliasNode {
		return s.UnmarshalYAML(node.Alias)
	}

	var out ReplacementSet
	switch node.Kind {
	case yaml.ScalarNode:
		if node.ShortTag() != "!!null" {
			return fmt.Errorf("%w: line %d: expected mapping of selector to classes, got scalar %q", ErrInvalidConfigurationShape, node.Line, node.Value)
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, val := node.Content[i], node.Content[i+1]
			if key.Kind != yaml.ScalarNode {
				return fmt.Errorf("%w: line %d: selector must be a string", ErrInvalidConfigurationShape, key.Line)
			}
			classes, err := classesFromNode(val)
			if err != nil {
				return fmt.Errorf("selector %q: %w", key.Value, err)
			}
			out.Set(key.Value, classes)
		}
	case yaml.SequenceNode:
		for _, item := range node.Content {
			selector, classes, err := entryFromNode(item)
			if err != nil {
				return err
			}
			out.Set(selector, classes)
		}
	default:
		return fmt.Errorf("%w: line %d: expected mapping of selector to classes", ErrInvalidConfigurationShape, node.Line)
	}
	*s = out
	return nil
}

// MarshalYAML always produces mapping form.
func (s ReplacementSet) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, e := range s {
		val := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Style: yaml.FlowStyle}
		for _, c := range e.Classes {
			val.Content = append(val.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: c})
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Selector},
			val,
		)
	}
	return node, nil
}

func entryFromNode(item *yaml.Node) (string, []string, error) {
	if item.Kind == yaml.AliasNode {
		item = item.Alias
	}
	switch item.Kind {
	case yaml.MappingNode:
		var (
			selector string
			classes  []string
		)
		for i := 0; i+1 < len(item.Content); i += 2 {
			key, val := item.Content[i], item.Content[i+1]
			switch key.Value {
			case "selector", "element_name":
				if val.Kind != yaml.ScalarNode {
					return "", nil, fmt.Errorf("%w: line %d: %s must be a string", ErrInvalidConfigurationShape, val.Line, key.Value)
				}
				selector = val.Value
			case "classes":
				var err error
				if classes, err = classesFromNode(val); err != nil {
					return "", nil, err
				}
			default:
				return "", nil, fmt.Errorf("%w: line %d: unknown entry field %q", ErrInvalidConfigurationShape, key.Line, key.Value)
			}
		}
		if len(selector) == 0 {
			return "", nil, fmt.Errorf("%w: line %d: entry has no selector", ErrInvalidConfigurationShape, item.Line)
		}
		return selector, classes, nil
	case yaml.SequenceNode:
		if len(item.Content) != 2 || item.Content[0].Kind != yaml.ScalarNode {
			return "", nil, fmt.Errorf("%w: line %d: expected [selector, classes] pair", ErrInvalidConfigurationShape, item.Line)
		}
		classes, err := classesFromNode(item.Content[1])
		if err != nil {
			return "", nil, err
		}
		return item.Content[0].Value, classes, nil
	default:
		return "", nil, fmt.Errorf("%w: line %d: unexpected list entry", ErrInvalidConfigurationShape, item.Line)
	}
}

func classesFromNode(node *yaml.Node) ([]string, error) {
	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	switch node.Kind {
	case yaml.ScalarNode:
		if node.ShortTag() == "!!null" {
			return nil, nil
		}
		return strings.Fields(node.Value), nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(node.Content))
		for _, c := range node.Content {
			if c.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("%w: line %d: class name must be a string", ErrInvalidConfigurationShape, c.Line)
			}
			out = append(out, c.Value)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: line %d: classes must be a list of strings", ErrInvalidConfigurationShape, node.Line)
	}
}
