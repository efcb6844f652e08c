package common

import (
	"errors"
	"testing"
)

func TestParseContentKind(t *testing.T) {
	tests := []struct {
		in      string
		want    ContentKind
		wantErr bool
	}{
		{in: "page", want: ContentKindPage},
		{in: "article", want: ContentKindArticle},
		{in: "foo", wantErr: true},
		{in: "Page", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseContentKind(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidContentKind) {
					t.Fatalf("ParseContentKind(%q) error = %v, want ErrInvalidContentKind", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseContentKind(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseContentKind(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestContentKind_IsValid(t *testing.T) {
	if !ContentKindPage.IsValid() || !ContentKindArticle.IsValid() {
		t.Error("declared kinds must be valid")
	}
	if ContentKind(42).IsValid() {
		t.Error("ContentKind(42) must not be valid")
	}
	if got := ContentKind(42).String(); got != "ContentKind(42)" {
		t.Errorf("String() = %q", got)
	}
}

func TestContentKindNames(t *testing.T) {
	names := ContentKindNames()
	if len(names) != 2 || names[0] != "page" || names[1] != "article" {
		t.Errorf("ContentKindNames() = %v", names)
	}
}
