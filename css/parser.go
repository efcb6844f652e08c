package css

import (
	"bytes"
	"errors"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser extracts class names from CSS stylesheets.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// Parse walks stylesheet rules, including ones nested in @media and
// @supports blocks, recording class names used by their selectors. Parsing
// errors are logged and whatever was collected so far is returned.
func (p *Parser) Parse(data []byte, source string) *Stylesheet {
	sheet := newStylesheet(source)
	p.log.Debug("Parsing CSS", zap.String("source", source), zap.Int("bytes", len(data)))

	parser := css.NewParser(parse.NewInput(bytes.NewReader(data)), false)
	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			if err := parser.Err(); err != nil && !errors.Is(err, io.EOF) {
				p.log.Debug("CSS parse error", zap.String("source", source), zap.Error(err))
			}
			return sheet

		case css.AtRuleGrammar:
			if string(data) == "@import" {
				if url := extractImportURL(parser.Values()); url != "" {
					sheet.Imports = append(sheet.Imports, url)
				}
			}

		case css.BeginRulesetGrammar, css.QualifiedRuleGrammar:
			for _, sel := range selectors(data, parser.Values()) {
				for _, c := range classesOf(sel) {
					sheet.classes[c] = struct{}{}
				}
			}
		}
	}
}

// selectors builds selector strings from token data splitting groups.
func selectors(data []byte, values []css.Token) []string {
	var sb strings.Builder
	sb.Write(data)
	for _, v := range values {
		sb.Write(v.Data)
	}

	var out []string
	for s := range strings.SplitSeq(sb.String(), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// classesOf returns class names of compound selector: every identifier
// directly following "." delimiter.
func classesOf(selector string) []string {
	var (
		out   []string
		isDot bool
	)
	l := css.NewLexer(parse.NewInputString(selector))
	for {
		tt, text := l.Next()
		switch {
		case tt == css.ErrorToken:
			return out
		case tt == css.DelimToken && string(text) == ".":
			isDot = true
			continue
		case tt == css.IdentToken && isDot:
			out = append(out, string(text))
		}
		isDot = false
	}
}

// extractImportURL extracts the URL from @import tokens.
// Handles: @import "url"; @import url("url"); @import url(url);
func extractImportURL(tokens []css.Token) string {
	for _, t := range tokens {
		switch t.TokenType {
		case css.StringToken:
			return unquote(string(t.Data))
		case css.URLToken:
			s := strings.TrimSuffix(strings.TrimPrefix(string(t.Data), "url("), ")")
			return unquote(strings.TrimSpace(s))
		}
	}
	return ""
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
