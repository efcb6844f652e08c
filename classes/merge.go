package classes

import (
	"fmt"

	"addcss/common"
)

// Settings keys.
const (
	BaseKey    = "ADD_CSS_CLASSES"
	PageKey    = "ADD_CSS_CLASSES_TO_PAGE"
	ArticleKey = "ADD_CSS_CLASSES_TO_ARTICLE"
)

// Settings resolves configuration values by key.
type Settings interface {
	Lookup(key string) (any, bool)
}

// SettingsMap is the simplest Settings.
type SettingsMap map[string]any

func (m SettingsMap) Lookup(key string) (any, bool) {
	v, ok := m[key]
	return v, ok
}

// Merge produces effective set for content of the given kind: copy of base
// with kind specific override laid on top of it. Override for the opposite
// kind is always ignored. Inputs are never modified.
func Merge(base, page, article ReplacementSet, kind common.ContentKind) (ReplacementSet, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w, got %s", ErrInvalidContentKind, kind)
	}

	result := base.Clone()
	switch kind {
	case common.ContentKindPage:
		if len(page) > 0 {
			result.Overlay(page)
		}
	case common.ContentKindArticle:
		if len(article) > 0 {
			result.Overlay(article)
		}
	}
	return result, nil
}

// Resolve reads base, page and article sets from settings and merges them for
// the given kind. Absent key means empty set, value of unexpected shape is an
// error.
func Resolve(settings Settings, kind common.ContentKind) (ReplacementSet, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w, got %s", ErrInvalidContentKind, kind)
	}

	var sets [3]ReplacementSet
	for i, key := range []string{BaseKey, PageKey, ArticleKey} {
		v, ok := settings.Lookup(key)
		if !ok {
			continue
		}
		set, err := FromValue(v)
		if err != nil {
			return nil, fmt.Errorf("setting %s: %w", key, err)
		}
		sets[i] = set
	}
	return Merge(sets[0], sets[1], sets[2], kind)
}
