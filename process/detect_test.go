package process

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/encoding/charmap"

	"addcss/common"
	"addcss/config"
)

// TestIsArchiveFile tests archive file detection
func TestIsArchiveFile(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("non-zip extension", func(t *testing.T) {
		filePath := filepath.Join(tmpDir, "test.txt")
		if err := os.WriteFile(filePath, []byte("not a zip"), 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}
		got, err := isArchiveFile(filePath)
		if err != nil {
			t.Errorf("isArchiveFile() error = %v", err)
		}
		if got {
			t.Errorf("isArchiveFile() = %v, want false", got)
		}
	})

	t.Run("zip extension but invalid content", func(t *testing.T) {
		filePath := filepath.Join(tmpDir, "test.zip")
		if err := os.WriteFile(filePath, []byte("not a real zip file"), 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}
		got, err := isArchiveFile(filePath)
		if err != nil {
			t.Errorf("isArchiveFile() error = %v", err)
		}
		if got {
			t.Errorf("isArchiveFile() = %v, want false", got)
		}
	})

	t.Run("valid zip file", func(t *testing.T) {
		filePath := filepath.Join(tmpDir, "site.ZIP")
		zipFile, err := os.Create(filePath)
		if err != nil {
			t.Fatalf("Failed to create zip file: %v", err)
		}
		w := zip.NewWriter(zipFile)
		f, err := w.Create("index.html")
		if err != nil {
			t.Fatalf("Failed to create file in zip: %v", err)
		}
		f.Write([]byte(sampleBody))
		w.Close()
		zipFile.Close()

		got, err := isArchiveFile(filePath)
		if err != nil {
			t.Errorf("isArchiveFile() error = %v", err)
		}
		if !got {
			t.Errorf("isArchiveFile() = %v, want true", got)
		}
	})
}

func TestIsArchiveFile_NonExistent(t *testing.T) {
	if _, err := isArchiveFile("/nonexistent/file.zip"); err == nil {
		t.Error("Expected error for non-existent file, got nil")
	}
}

func TestHTMLMatcher(t *testing.T) {
	tests := []struct {
		name string
		data string
		want bool
	}{
		{name: "doctype", data: "<!DOCTYPE html><html></html>", want: true},
		{name: "html", data: "\n  <HTML lang=en>", want: true},
		{name: "bom", data: "\xef\xbb\xbf<!doctype html>", want: true},
		{name: "banner comment", data: "<!-- " + strings.Repeat("generated ", 80) + "-->\n<!doctype html>", want: true},
		{name: "fragment", data: "<p>text</p>", want: false},
		{name: "xml", data: `<?xml version="1.0"?><root/>`, want: false},
		{name: "empty", data: "", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := htmlMatcher([]byte(tt.data)); got != tt.want {
				t.Errorf("htmlMatcher() = %v, want %v", got, tt.want)
			}
		})
	}

	if kind := sniff([]byte("<!doctype html><p>x</p>")); kind != typeHTML {
		t.Errorf("sniff() = %v, HTML matcher is not registered", kind)
	}
}

func TestClassify(t *testing.T) {
	cfg := &config.ContentConfig{
		Extensions: []string{".html", ".htm"},
		Pages:      []string{"pages/**", "about.html"},
		Static:     []string{"theme/**"},
	}
	wasm := "\x00asm\x01\x00\x00\x00"

	tests := []struct {
		name string
		data string
		want classification
	}{
		{name: "index.html", data: sampleBody, want: classification{html: true, kind: common.ContentKindArticle}},
		{name: "posts/2024/first.HTM", data: sampleBody, want: classification{html: true, kind: common.ContentKindArticle}},
		{name: "pages/about.html", data: sampleBody, want: classification{html: true, kind: common.ContentKindPage}},
		{name: "pages/deep/nested/info.html", data: sampleBody, want: classification{html: true, kind: common.ContentKindPage}},
		{name: "about.html", data: "<!doctype html><html></html>", want: classification{html: true, kind: common.ContentKindPage}},
		{name: "theme/base.html", data: sampleBody, want: classification{static: true}},
		{name: "posts/image.html", data: string(pngHeader), want: classification{static: true}},
		{name: "posts/module.html", data: wasm, want: classification{kind: common.ContentKindArticle}},
		{name: "notes.txt", data: sampleBody, want: classification{kind: common.ContentKindArticle}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify(cfg, tt.name, []byte(tt.data)); got != tt.want {
				t.Errorf("classify() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestIsCandidate(t *testing.T) {
	cfg := &config.ContentConfig{Extensions: []string{".html"}, Static: []string{"theme/**"}}
	tests := []struct {
		name string
		want bool
	}{
		{"index.html", true},
		{"theme/a.html", false},
		{"images/logo.png", false},
	}
	for _, tt := range tests {
		if got := isCandidate(cfg, tt.name); got != tt.want {
			t.Errorf("isCandidate(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestDecode(t *testing.T) {
	t.Run("utf-8", func(t *testing.T) {
		body, enc, err := decode([]byte("\xef\xbb\xbf<p>Привет</p>"), nil)
		if err != nil {
			t.Fatalf("decode() error = %v", err)
		}
		if enc != nil || body != "<p>Привет</p>" {
			t.Errorf("decode() = %q, %v", body, enc)
		}
	})

	t.Run("ascii", func(t *testing.T) {
		body, enc, err := decode([]byte("<p>x</p>"), nil)
		if err != nil {
			t.Fatalf("decode() error = %v", err)
		}
		if enc != nil || body != "<p>x</p>" {
			t.Errorf("decode() = %q, %v", body, enc)
		}
	})

	t.Run("declared", func(t *testing.T) {
		data, _ := charmap.Windows1251.NewEncoder().Bytes([]byte(`<meta charset="windows-1251"><p>Привет</p>`))
		body, enc, err := decode(data, nil)
		if err != nil {
			t.Fatalf("decode() error = %v", err)
		}
		if body != `<meta charset="windows-1251"><p>Привет</p>` {
			t.Errorf("decode() = %q", body)
		}
		if name := encodingName(enc); name != "windows-1251" {
			t.Errorf("encoding = %s, want windows-1251", name)
		}
		out, err := encode(body, enc)
		if err != nil {
			t.Fatalf("encode() error = %v", err)
		}
		if string(out) != string(data) {
			t.Errorf("encode() did not restore original bytes")
		}
	})

	t.Run("forced", func(t *testing.T) {
		data, _ := charmap.KOI8R.NewEncoder().Bytes([]byte(`<p>Привет</p>`))
		body, enc, err := decode(data, charmap.KOI8R)
		if err != nil {
			t.Fatalf("decode() error = %v", err)
		}
		if body != `<p>Привет</p>` || enc != charmap.KOI8R {
			t.Errorf("decode() = %q, %v", body, enc)
		}
	})
}

func TestRelativeInArchive(t *testing.T) {
	tests := []struct {
		name, pathIn, want string
	}{
		{"site/index.html", "", "site/index.html"},
		{"site/pages/a.html", "site", "pages/a.html"},
		{"site/pages/a.html", "site/pages/a.html", "a.html"},
	}
	for _, tt := range tests {
		if got := relativeInArchive(tt.name, tt.pathIn); got != tt.want {
			t.Errorf("relativeInArchive(%q, %q) = %q, want %q", tt.name, tt.pathIn, got, tt.want)
		}
	}
}
