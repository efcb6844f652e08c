package process

import (
	"bytes"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
	"github.com/h2non/filetype/types"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"

	"addcss/classes"
	"addcss/common"
	"addcss/config"
)

var typeHTML = filetype.NewType("html", "text/html")

func init() {
	filetype.AddMatcher(typeHTML, htmlMatcher)
}

// htmlMatcher recognizes complete HTML documents the same way transformation
// does. Fragments have no signature and are left to extension check.
func htmlMatcher(buf []byte) bool {
	return classes.IsDocument(bytes.NewReader(buf))
}

// isArchiveFile checks if file is a zip archive by extension and signature.
func isArchiveFile(fname string) (bool, error) {
	if !strings.EqualFold(filepath.Ext(fname), ".zip") {
		return false, nil
	}
	kind, err := filetype.MatchFile(fname)
	if err != nil {
		return false, err
	}
	return kind == matchers.TypeZip, nil
}

// sniff returns type detected from content signature, types.Unknown when
// nothing matched.
func sniff(data []byte) types.Type {
	kind, err := filetype.Match(data)
	if err != nil {
		return types.Unknown
	}
	return kind
}

// isStaticData reports content which is never HTML: images, fonts, media
// and archives.
func isStaticData(data []byte) bool {
	return filetype.IsImage(data) || filetype.IsFont(data) ||
		filetype.IsVideo(data) || filetype.IsAudio(data) || filetype.IsArchive(data)
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}

func hasExtension(cfg *config.ContentConfig, name string) bool {
	return slices.ContainsFunc(cfg.Extensions, func(ext string) bool { return strings.EqualFold(ext, path.Ext(name)) })
}

// isCandidate selects items worth reading by name alone.
func isCandidate(cfg *config.ContentConfig, name string) bool {
	return hasExtension(cfg, name) && !matchAny(cfg.Static, name)
}

type classification struct {
	static bool
	html   bool
	kind   common.ContentKind
}

// classify decides what to do with content item. Name is slash separated path
// relative to processed root.
func classify(cfg *config.ContentConfig, name string, data []byte) classification {
	if matchAny(cfg.Static, name) || isStaticData(data) {
		return classification{static: true}
	}

	var c classification
	if hasExtension(cfg, name) {
		if kind := sniff(data); kind == types.Unknown || kind == typeHTML {
			c.html = true
		}
	}

	c.kind = common.ContentKindArticle
	if matchAny(cfg.Pages, name) {
		c.kind = common.ContentKindPage
	}
	return c
}

// decode returns content as UTF-8 text along with the source encoding, nil
// encoding means content was UTF-8 already. When cp is not nil it is used
// unconditionally, otherwise encoding is detected from BOM, meta tags and
// content itself.
func decode(data []byte, cp encoding.Encoding) (string, encoding.Encoding, error) {
	enc := cp
	if enc == nil {
		var name string
		enc, name, _ = charset.DetermineEncoding(data, "text/html")
		// pure ASCII is reported as windows-1252 fallback
		if name == "utf-8" || name == "windows-1252" {
			if trimmed := bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")); utf8.Valid(trimmed) {
				return string(trimmed), nil, nil
			}
		}
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", enc, err
	}
	return string(out), enc, nil
}

// encode converts result back to the encoding content came in, so declared
// charset stays truthful. Characters the encoding cannot represent become
// numeric character references.
func encode(body string, enc encoding.Encoding) ([]byte, error) {
	if enc == nil {
		return []byte(body), nil
	}
	return encoding.HTMLEscapeUnsupported(enc.NewEncoder()).Bytes([]byte(body))
}

func encodingName(enc encoding.Encoding) string {
	if enc == nil {
		return "utf-8"
	}
	if name, err := ianaindex.IANA.Name(enc); err == nil {
		return name
	}
	return "unknown"
}

func fileMode(fname string) os.FileMode {
	if fi, err := os.Stat(fname); err == nil {
		return fi.Mode().Perm()
	}
	return 0644
}
