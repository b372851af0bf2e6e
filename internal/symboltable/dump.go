package symboltable

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Dump renders the scope tree hierarchically, the Go counterpart of the
// original `Symbol_table.print_table`. The symbol-table pretty-printer
// itself is out of scope per spec.md §1, but a plain structural dump is
// useful for the CLI's diagnostics output and is not the same thing as
// the excluded pretty-printer (no type inference or coloring here).
func Dump(w io.Writer, s *Scope, indent int) {
	pad := strings.Repeat("  ", indent)
	fmt.Fprintf(w, "%sScope: %s\n", pad, s.Name)

	syms := s.Symbols()
	if len(syms) == 0 {
		fmt.Fprintf(w, "%s  (empty)\n", pad)
	}
	for _, sym := range syms {
		fmt.Fprintf(w, "%s  - %s: kind=%s base=%s rank=%d mutable=%v line=%d parent=%s\n",
			pad, sym.Identifier, sym.Kind, baseOrVoid(sym.Base), sym.Rank, sym.Mutable, sym.Line, sym.ParentClass)
	}
	for _, child := range s.Children {
		Dump(w, child, indent+1)
	}
}

func baseOrVoid(base string) string {
	if base == "" {
		return "void"
	}
	return base
}

// SymbolView is the JSON-facing shape of one Symbol, stripped of the
// codegen-only Offset/HasOffset bookkeeping a dump reader has no use
// for.
type SymbolView struct {
	Identifier  string `json:"identifier"`
	Kind        Kind   `json:"kind"`
	Base        string `json:"base"`
	Rank        int    `json:"rank"`
	Mutable     bool   `json:"mutable"`
	Line        int    `json:"line"`
	ParentClass string `json:"parentClass,omitempty"`
}

// ScopeView is the JSON-facing shape of one Scope: its own symbols plus
// nested child scopes, recursively.
type ScopeView struct {
	Name     string       `json:"name"`
	Symbols  []SymbolView `json:"symbols"`
	Children []ScopeView  `json:"children,omitempty"`
}

func viewScope(s *Scope) ScopeView {
	v := ScopeView{Name: s.Name}
	for _, sym := range s.Symbols() {
		v.Symbols = append(v.Symbols, SymbolView{
			Identifier:  sym.Identifier,
			Kind:        sym.Kind,
			Base:        baseOrVoid(sym.Base),
			Rank:        sym.Rank,
			Mutable:     sym.Mutable,
			Line:        sym.Line,
			ParentClass: sym.ParentClass,
		})
	}
	for _, child := range s.Children {
		v.Children = append(v.Children, viewScope(child))
	}
	return v
}

// DumpJSON renders the same scope tree as Dump, as indented JSON, for
// callers that want a structured symbol-table listing instead of the
// text form.
func DumpJSON(s *Scope) ([]byte, error) {
	return json.MarshalIndent(viewScope(s), "", "  ")
}
