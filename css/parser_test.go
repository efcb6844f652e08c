package css_test

import (
	"reflect"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"addcss/css"
)

const sampleCSS = `
@import url("fonts.css");
@import 'print.css';

body { margin: 0 }
table.table, .table-fluid { width: 100%; }
div.note > p.lead:first-child { font-size: 1.5em }
a:not(.plain)::after { content: "." }
h10.h-10, h2.h-2 { }

@media (max-width: 600px) {
  .img-fluid { max-width: 100% }
}

@font-face {
  font-family: "Serif";
  src: url(serif.woff2);
}
`

func TestParser_Parse(t *testing.T) {
	p := css.NewParser(zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller())))
	sheet := p.Parse([]byte(sampleCSS), "theme/site.css")

	want := []string{"h-2", "h-10", "img-fluid", "lead", "note", "plain", "table", "table-fluid"}
	if got := sheet.Classes(); !reflect.DeepEqual(got, want) {
		t.Errorf("Classes() = %v, want %v", got, want)
	}
	if want := []string{"fonts.css", "print.css"}; !reflect.DeepEqual(sheet.Imports, want) {
		t.Errorf("Imports = %v, want %v", sheet.Imports, want)
	}
	if sheet.Source != "theme/site.css" {
		t.Errorf("Source = %q", sheet.Source)
	}
	for _, c := range []string{"table", "img-fluid"} {
		if !sheet.Defines(c) {
			t.Errorf("Defines(%q) = false", c)
		}
	}
	// values and element names are not classes
	for _, c := range []string{"5em", "body", "p", "Serif"} {
		if sheet.Defines(c) {
			t.Errorf("Defines(%q) = true", c)
		}
	}
}

func TestParser_Broken(t *testing.T) {
	p := css.NewParser(nil)
	sheet := p.Parse([]byte(`.ok { color: red } .broken { color: `), "broken.css")
	if !sheet.Defines("ok") {
		t.Errorf("classes before error must be collected, got %v", sheet.Classes())
	}

	if got := p.Parse(nil, "empty.css").Classes(); len(got) != 0 {
		t.Errorf("empty stylesheet classes = %v", got)
	}
}

func TestInventory(t *testing.T) {
	p := css.NewParser(nil)
	inv := css.Inventory{}
	inv.Add(p.Parse([]byte(`.table { } .lead { }`), "a.css"))
	inv.Add(p.Parse([]byte(`.table { }`), "b.css"))
	inv.Add(p.Parse([]byte(`.table { }`), "b.css"))

	if want := []string{"a.css", "b.css"}; !reflect.DeepEqual(inv["table"], want) {
		t.Errorf("inv[table] = %v, want %v", inv["table"], want)
	}

	missing := inv.Missing([]string{"table", "page_div_class", "lead", "page_div_class", "x"})
	if want := []string{"page_div_class", "x"}; !reflect.DeepEqual(missing, want) {
		t.Errorf("Missing() = %v, want %v", missing, want)
	}
}

func TestInventory_String(t *testing.T) {
	p := css.NewParser(nil)
	inv := css.Inventory{}
	inv.Add(p.Parse([]byte(`.h-10 { } .h-2 { }`), "a.css"))
	inv.Add(p.Parse([]byte(`.h-2 { }`), "b.css"))

	want := "Inventory (2 classes)\n" +
		"  h-2: [\"a.css\" \"b.css\"]\n" +
		"  h-10: [\"a.css\"]\n"
	if got := inv.String(); got != want {
		t.Errorf("String() =\n%q\nwant\n%q", got, want)
	}
}
