package classes

import (
	"errors"
	"fmt"
	"strings"

	"addcss/common"
)

var (
	// ErrInvalidConfigurationShape is returned when configuration value
	// cannot be interpreted as selector to classes mapping.
	ErrInvalidConfigurationShape = errors.New("invalid configuration shape")

	// ErrInvalidContentKind is returned when content kind is not one of
	// the recognized values. Message names all accepted values.
	ErrInvalidContentKind = errors.New(kindMessage())

	// ErrMalformedSelector is returned when selector cannot be compiled.
	ErrMalformedSelector = errors.New("malformed selector")
)

func kindMessage() string {
	names := common.ContentKindNames()
	quoted := make([]string, 0, len(names))
	for _, n := range names {
		quoted = append(quoted, fmt.Sprintf("%q", n))
	}
	return "content kind must be " + strings.Join(quoted, " or ")
}

// ParseKind converts discriminator string to content kind.
func ParseKind(name string) (common.ContentKind, error) {
	kind, err := common.ParseContentKind(name)
	if err != nil {
		return kind, fmt.Errorf("%w, got %q", ErrInvalidContentKind, name)
	}
	return kind, nil
}
