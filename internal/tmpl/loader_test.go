package tmpl

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoadParsesPages(t *testing.T) {
	templates, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, name := range []string{"dashboard.html", "habits.html"} {
		if _, ok := templates.pages[name]; !ok {
			t.Fatalf("page %s not loaded", name)
		}
	}
	if _, ok := templates.pages["layout.html"]; ok {
		t.Fatal("layout must not be a page")
	}
}

func TestExecuteUnknownTemplate(t *testing.T) {
	templates, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if err := templates.ExecuteTemplate(&bytes.Buffer{}, "missing.html", nil); err == nil {
		t.Fatal("expected error for unknown page")
	}
}

func TestQueryFunc(t *testing.T) {
	templates, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	q := templates.pages["habits.html"].Lookup("content")
	if q == nil {
		t.Fatal("habits content not defined")
	}
	var buf bytes.Buffer
	tpl, err := templates.pages["habits.html"].Clone()
	if err != nil {
		t.Fatal(err)
	}
	tpl, err = tpl.New("probe").Parse(`{{query "filter" "pending" "sort" ""}}|{{query "a" ""}}`)
	if err != nil {
		t.Fatal(err)
	}
	if err := tpl.Execute(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); !strings.HasPrefix(got, "?filter=pending|") {
		t.Fatalf("query output %q", got)
	}
}
