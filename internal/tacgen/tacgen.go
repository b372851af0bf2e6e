// Package tacgen implements the TAC Generator: a second tree visitor
// that walks the same parse tree as the analyzer, switching into the
// scope tree the analyzer already built by the same canonical keys, and
// emits quadruples into a quad.Table per spec.md §4.3.
package tacgen

import (
	"github.com/compiscript/compiscript/internal/ast"
	"github.com/compiscript/compiscript/internal/quad"
	"github.com/compiscript/compiscript/internal/symboltable"
)

// ctrlFrame is one entry of the break/continue target stack. A switch
// pushes a frame with only a break label; continue skips over it to
// find the nearest enclosing loop, per the Open Question decision
// recorded in DESIGN.md.
type ctrlFrame struct {
	continueLabel string
	breakLabel    string
	isSwitch      bool
}

// TACGen emits a quad.Table by re-walking the parse tree, consulting the
// symbol-table tree the analyzer produced for scope switches and type
// lookups. It assumes a type-consistent tree and does not re-diagnose.
type TACGen struct {
	Quads  *quad.Table
	Global *symboltable.Scope

	current      *symboltable.Scope
	currentClass string
	ctrl         []ctrlFrame
	lineCounters map[string]int
}

// New builds a TACGen rooted at the given (already analyzed) scope tree.
func New(global *symboltable.Scope) *TACGen {
	return &TACGen{Quads: quad.New(), Global: global, current: global, lineCounters: map[string]int{}}
}

// Generate lowers every top-level statement, resetting the temporary
// counter after each per spec.md §3's reset-point rule.
func (g *TACGen) Generate(prog *ast.Program) *quad.Table {
	for _, s := range prog.Stmts {
		s.Accept(g)
		g.Quads.ResetTemps()
	}
	return g.Quads
}

// enterScope switches into a child scope the analyzer already built.
// Unlike the analyzer it never creates scopes — phase two only reads the
// tree phase one constructed.
func (g *TACGen) enterScope(key string) func() {
	child, ok := g.current.Child(key)
	if !ok {
		// Scope-key discipline broke between phases; proceed in the
		// current scope rather than panic, since this phase does not
		// re-diagnose.
		return func() {}
	}
	prev := g.current
	g.current = child
	return func() { g.current = prev }
}

func (g *TACGen) nextCaseIndex(line int) int {
	key := symboltable.CaseKey(line, -1)
	n := g.lineCounters[key]
	g.lineCounters[key] = n + 1
	return n
}

func (g *TACGen) pushLoop(continueLabel, breakLabel string) {
	g.ctrl = append(g.ctrl, ctrlFrame{continueLabel: continueLabel, breakLabel: breakLabel})
}

func (g *TACGen) pushSwitch(breakLabel string) {
	g.ctrl = append(g.ctrl, ctrlFrame{breakLabel: breakLabel, isSwitch: true})
}

func (g *TACGen) popCtrl() { g.ctrl = g.ctrl[:len(g.ctrl)-1] }

func (g *TACGen) breakTarget() string {
	if len(g.ctrl) == 0 {
		return ""
	}
	return g.ctrl[len(g.ctrl)-1].breakLabel
}

// continueTarget finds the nearest enclosing loop frame, skipping over
// any switch frames in between.
func (g *TACGen) continueTarget() string {
	for i := len(g.ctrl) - 1; i >= 0; i-- {
		if !g.ctrl[i].isSwitch {
			return g.ctrl[i].continueLabel
		}
	}
	return ""
}
