package symboltable

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestDumpRendersScopeNameAndSymbols(t *testing.T) {
	g := NewGlobal()
	g.Insert(&Symbol{Identifier: "counter", Base: "integer", Kind: KindVariable, Line: 1})

	var buf bytes.Buffer
	Dump(&buf, g, 0)

	out := buf.String()
	if !strings.Contains(out, "Scope: Global") {
		t.Fatalf("expected the root scope name, got:\n%s", out)
	}
	if !strings.Contains(out, "counter: kind=variable base=integer") {
		t.Fatalf("expected the counter symbol rendered, got:\n%s", out)
	}
}

func TestDumpJSONRoundTripsScopeTree(t *testing.T) {
	g := NewGlobal()
	g.Insert(&Symbol{Identifier: "x", Base: "integer", Kind: KindVariable, Line: 1})
	child, _ := g.CreateChild("function_f")
	child.Insert(&Symbol{Identifier: "y", Base: "boolean", Kind: KindVariable, Line: 2})

	data, err := DumpJSON(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var view ScopeView
	if err := json.Unmarshal(data, &view); err != nil {
		t.Fatalf("unexpected unmarshal error: %v", err)
	}
	if view.Name != "Global" || len(view.Symbols) != 1 || view.Symbols[0].Identifier != "x" {
		t.Fatalf("unexpected root view: %+v", view)
	}
	if len(view.Children) != 1 || view.Children[0].Symbols[0].Identifier != "y" {
		t.Fatalf("unexpected child view: %+v", view.Children)
	}
}

func TestDumpMarksEmptyScope(t *testing.T) {
	g := NewGlobal()
	var buf bytes.Buffer
	Dump(&buf, g, 0)
	if !strings.Contains(buf.String(), "(empty)") {
		t.Fatalf("expected an empty-scope marker, got:\n%s", buf.String())
	}
}
