package analyzer

import (
	"github.com/compiscript/compiscript/internal/ast"
	"github.com/compiscript/compiscript/internal/errors"
	"github.com/compiscript/compiscript/internal/symboltable"
)

// frame tracks the next free $fp-relative byte offset for the function
// currently being analyzed. Offset 0 and 4 are reserved for the saved
// $fp/$ra per spec.md §4.5, so a function's own locals start at 8 —
// resolving the "local frame offsets" open question from spec.md §9.
type frame struct {
	cursor int
}

func newFrame() *frame { return &frame{cursor: 8} }

func (f *frame) assign(sym *symboltable.Symbol) {
	sym.Offset = f.cursor
	sym.HasOffset = true
	f.cursor += 4
}

// Analyzer walks a parsed program, building the scope tree and
// collecting diagnostics. It never halts on error, per spec.md §4.2.
type Analyzer struct {
	Global *symboltable.Scope
	Diags  errors.Diagnostics

	current      *symboltable.Scope
	currentClass string // "" outside a class body
	frames       []*frame
	loopDepth    int
	// switchDepth counts enclosing switches, so break is accepted inside
	// a switch even when no loop encloses it, per the Open Question
	// decision in DESIGN.md.
	switchDepth int

	// per-function return tracking
	returnBase Type
	inFunction bool

	lineCounters map[string]int // disambiguates case_<line>_<i> keys
}

// New constructs an Analyzer with a fresh Global scope.
func New() *Analyzer {
	g := symboltable.NewGlobal()
	return &Analyzer{Global: g, current: g, lineCounters: map[string]int{}}
}

// Analyze walks the whole program, returning the built scope tree (also
// available as a.Global) and leaving diagnostics in a.Diags.
func (a *Analyzer) Analyze(prog *ast.Program) *symboltable.Scope {
	a.frames = append(a.frames, newFrame())
	for _, s := range prog.Stmts {
		s.Accept(a)
	}
	return a.Global
}

func (a *Analyzer) curFrame() *frame { return a.frames[len(a.frames)-1] }

func (a *Analyzer) pushFrame() { a.frames = append(a.frames, newFrame()) }
func (a *Analyzer) popFrame()  { a.frames = a.frames[:len(a.frames)-1] }

// enterScope creates (or, if a test re-enters, just switches into) a
// child scope keyed by the canonical name and returns a restore func.
func (a *Analyzer) enterScope(key string) func() {
	child, ok := a.current.CreateChild(key)
	if !ok {
		// Duplicate key: a line-numbered key collided, which should not
		// happen since keys embed the source line; fall back to the
		// existing child so analysis still proceeds without crashing.
		child, _ = a.current.Child(key)
	}
	prev := a.current
	a.current = child
	return func() { a.current = prev }
}

// declareLocal inserts a variable/const symbol into the current scope,
// assigning it a frame offset unless it is the Global scope.
func (a *Analyzer) declareLocal(sym *symboltable.Symbol, line int) bool {
	ok := a.current.Insert(sym)
	if !ok {
		a.Diags.Add(line, "identifier '%s' is already declared in this scope", sym.Identifier)
		return false
	}
	if a.current != a.Global {
		a.curFrame().assign(sym)
	}
	return true
}

// nextCaseIndex returns the disambiguating index for the i-th `case` at
// a given source line, used to build the case_<line>_<i> scope key.
func (a *Analyzer) nextCaseIndex(line int) int {
	key := caseCounterKey(line)
	n := a.lineCounters[key]
	a.lineCounters[key] = n + 1
	return n
}

func caseCounterKey(line int) string {
	return symboltable.CaseKey(line, -1)
}

// blockReturns reports whether every control-flow path through b ends in
// a `return`. This is a conservative "definitely returns" check: loops
// never count (a zero-iteration while/for always falls through), and an
// `if` only counts when both branches return.
func blockReturns(b *ast.Block) bool {
	if b == nil {
		return false
	}
	for _, s := range b.Stmts {
		if stmtReturns(s) {
			return true
		}
	}
	return false
}

func stmtReturns(s ast.Stmt) bool {
	switch v := s.(type) {
	case *ast.Return:
		return true
	case *ast.Block:
		return blockReturns(v)
	case *ast.If:
		return v.Else != nil && blockReturns(v.Then) && blockReturns(v.Else)
	case *ast.TryCatch:
		return blockReturns(v.Try) && blockReturns(v.CatchBlock)
	case *ast.Switch:
		if v.Default == nil {
			return false
		}
		for _, c := range v.Cases {
			if !stmtListReturns(c.Body) {
				return false
			}
		}
		return stmtListReturns(v.Default)
	default:
		return false
	}
}

func stmtListReturns(stmts []ast.Stmt) bool {
	for _, s := range stmts {
		if stmtReturns(s) {
			return true
		}
	}
	return false
}
