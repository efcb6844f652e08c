package pipeline

import (
	"archive/zip"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"addcss/classes"
	"addcss/common"
	"addcss/config"
)

func testSettings() classes.SettingsMap {
	return classes.SettingsMap{
		classes.BaseKey:    map[string]any{"table": []any{"table", "table-fluid"}},
		classes.PageKey:    map[string]any{"div": []any{"page_div_class"}},
		classes.ArticleKey: map[string]any{"p": []any{"article_p_class"}},
	}
}

func newTestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
}

func TestRegisterClasses(t *testing.T) {
	const body = `<div><p>text</p><table></table></div>`

	tests := []struct {
		name    string
		content Content
		want    string
	}{
		{
			name:    "page",
			content: Content{Source: "pages/about.html", Kind: common.ContentKindPage, Body: body},
			want:    `<div class="page_div_class"><p>text</p><table class="table table-fluid"></table></div>`,
		},
		{
			name:    "article",
			content: Content{Source: "posts/first.html", Kind: common.ContentKindArticle, Body: body},
			want:    `<div><p class="article_p_class">text</p><table class="table table-fluid"></table></div>`,
		},
		{
			name:    "static",
			content: Content{Source: "theme/style.html", Kind: common.ContentKindArticle, Static: true, Body: body},
			want:    body,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sig Signals
			RegisterClasses(&sig, testSettings(), newTestLogger(t))

			c := tt.content
			if err := sig.ContentInitialized(context.Background(), &c); err != nil {
				t.Fatalf("ContentInitialized() error = %v", err)
			}
			if c.Body != tt.want {
				t.Errorf("Body =\n%s\nwant\n%s", c.Body, tt.want)
			}
		})
	}
}

func TestRegisterClasses_EmptySettings(t *testing.T) {
	var sig Signals
	RegisterClasses(&sig, classes.SettingsMap{}, newTestLogger(t))

	// not even parsed, so markup is kept as is
	const body = `<P CLASS=x>Upper<br/>`
	c := &Content{Source: "a.html", Kind: common.ContentKindPage, Body: body}
	if err := sig.ContentInitialized(context.Background(), c); err != nil {
		t.Fatalf("ContentInitialized() error = %v", err)
	}
	if c.Body != body {
		t.Errorf("Body = %q, want untouched %q", c.Body, body)
	}
}

func TestRegisterClasses_Errors(t *testing.T) {
	tests := []struct {
		name     string
		settings classes.SettingsMap
		kind     common.ContentKind
		target   error
	}{
		{
			name:     "invalid shape",
			settings: classes.SettingsMap{classes.BaseKey: "table"},
			kind:     common.ContentKindPage,
			target:   classes.ErrInvalidConfigurationShape,
		},
		{
			name:     "invalid kind",
			settings: testSettings(),
			kind:     common.ContentKind(42),
			target:   classes.ErrInvalidContentKind,
		},
		{
			name:     "malformed selector",
			settings: classes.SettingsMap{classes.BaseKey: map[string]any{"div[": "x"}},
			kind:     common.ContentKindArticle,
			target:   classes.ErrMalformedSelector,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sig Signals
			RegisterClasses(&sig, tt.settings, newTestLogger(t))

			const body = `<div><p>x</p></div>`
			c := &Content{Source: "posts/broken.html", Kind: tt.kind, Body: body}
			err := sig.ContentInitialized(context.Background(), c)
			if !errors.Is(err, tt.target) {
				t.Fatalf("ContentInitialized() error = %v, want %v", err, tt.target)
			}
			if !strings.Contains(err.Error(), "posts/broken.html") {
				t.Errorf("error %q does not name the source", err)
			}
			if c.Body != body {
				t.Errorf("Body modified on error: %q", c.Body)
			}
		})
	}
}

func TestRegisterClasses_WithReport(t *testing.T) {
	name := filepath.Join(t.TempDir(), "report.zip")
	rpt, err := (&config.ReporterConfig{Destination: name}).Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	var sig Signals
	RegisterClasses(&sig, testSettings(), newTestLogger(t), WithReport(rpt))

	c := &Content{Source: "posts/First Post.html", Kind: common.ContentKindArticle, Body: `<p>x</p>`}
	if err := sig.ContentInitialized(context.Background(), c); err != nil {
		t.Fatalf("ContentInitialized() error = %v", err)
	}
	if err := rpt.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	zr, err := zip.OpenReader(name)
	if err != nil {
		t.Fatalf("unable to open report: %v", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != "classes/article-posts-first-post-html.txt" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("unable to open report entry: %v", err)
		}
		data, _ := io.ReadAll(rc)
		rc.Close()
		if !strings.Contains(string(data), `"p" matched 1 element(s)`) {
			t.Errorf("report entry does not have match statistics:\n%s", data)
		}
		return
	}
	t.Error("report entry for content item not found")
}
