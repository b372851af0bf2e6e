// Package pipeline wires the three compiler phases together in the
// order the original Python driver's codegen_driver.py uses: parse,
// analyze, generate TAC, block-group, generate MIPS.
package pipeline

import (
	"fmt"

	"github.com/compiscript/compiscript/internal/analyzer"
	"github.com/compiscript/compiscript/internal/ast"
	"github.com/compiscript/compiscript/internal/mipsgen"
	"github.com/compiscript/compiscript/internal/quad"
	"github.com/compiscript/compiscript/internal/symboltable"
	"github.com/compiscript/compiscript/internal/tacgen"
)

// Result carries every phase's output, so callers can render whichever
// slice (diagnostics, symbol table, quadruples, or assembly) their
// subcommand needs.
type Result struct {
	Program     *ast.Program
	Diagnostics []string
	Global      *symboltable.Scope
	Quads       []quad.Quad
	Assembly    string
}

// Run executes the pipeline over source text with MIPS's full 10 $t / 8
// $s register pool. Per spec.md §7, the driver prints the diagnostic
// list and stops before TAC generation iff the list is non-empty —
// codegen never runs over a program the analyzer rejected. A non-nil
// error here means a lexical/parse failure, which aborts even earlier.
func Run(source string) (*Result, error) {
	return RunWithRegisters(source, 10, 8)
}

// RunWithRegisters is Run with the MIPS generator's register pool sized
// by tempCount/savedCount, the compiscript.yaml `registers.tempCount`/
// `registers.savedCount` knobs.
func RunWithRegisters(source string, tempCount, savedCount int) (*Result, error) {
	scanner := ast.NewScanner(source)
	tokens := scanner.ScanTokens()
	parser := ast.NewParser(tokens)
	prog := parser.Parse()
	if prog == nil {
		return nil, fmt.Errorf("pipeline: parse failed")
	}

	a := analyzer.New()
	a.Analyze(prog)
	if a.Diags.HasErrors() {
		return &Result{Program: prog, Diagnostics: a.Diags.Lines(), Global: a.Global}, nil
	}

	g := tacgen.New(a.Global)
	table := g.Generate(prog)
	grouped := table.GroupByBlocks()

	mg := mipsgen.NewWithRegisters(a.Global, tempCount, savedCount)
	asm := mg.Generate(grouped)

	return &Result{
		Program:     prog,
		Diagnostics: a.Diags.Lines(),
		Global:      a.Global,
		Quads:       grouped,
		Assembly:    asm,
	}, nil
}

// RenderQuads formats a quadruple list in the raw "NNN: (op,a1,a2,r)"
// listing form used by `compiscript tac`.
func RenderQuads(qs []quad.Quad) string {
	var out string
	for i, q := range qs {
		out += quad.Render(i, q) + "\n"
	}
	return out
}
