package tacgen

import (
	"testing"

	"github.com/compiscript/compiscript/internal/analyzer"
	"github.com/compiscript/compiscript/internal/ast"
	"github.com/compiscript/compiscript/internal/quad"
)

func generate(t *testing.T, src string) []quad.Quad {
	t.Helper()
	s := ast.NewScanner(src)
	p := ast.NewParser(s.ScanTokens())
	prog := p.Parse()

	a := analyzer.New()
	a.Analyze(prog)
	if a.Diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", a.Diags.Lines())
	}

	g := New(a.Global)
	return g.Generate(prog).All()
}

func opsOf(qs []quad.Quad) []string {
	ops := make([]string, len(qs))
	for i, q := range qs {
		ops[i] = q.Op
	}
	return ops
}

func containsOp(qs []quad.Quad, op string) bool {
	for _, q := range qs {
		if q.Op == op {
			return true
		}
	}
	return false
}

func TestBinaryFoldsLeftToRightWithFreshTemps(t *testing.T) {
	qs := generate(t, `let x: integer = (1+3)-(4*(5/2));`)
	var arith int
	for _, q := range qs {
		if q.Op == "+" || q.Op == "-" || q.Op == "*" || q.Op == "/" {
			arith++
		}
	}
	if arith != 4 {
		t.Fatalf("expected 4 arithmetic quadruples, got %d: %+v", arith, qs)
	}
	if qs[len(qs)-1].Op != "=" || qs[len(qs)-1].Result != "x" {
		t.Fatalf("expected final assignment into x, got %+v", qs[len(qs)-1])
	}
}

func TestIfWithoutElseCollapsesEndIntoFalseLabel(t *testing.T) {
	qs := generate(t, `if (1<2) { print(1); }`)
	var labels []string
	for _, q := range qs {
		if q.Op == "label" {
			labels = append(labels, q.Result)
		}
	}
	if len(labels) != 2 {
		t.Fatalf("expected exactly 2 labels (true, false/end), got %v", labels)
	}
}

func TestIfElseEmitsThreeLabels(t *testing.T) {
	qs := generate(t, `if (1<2) { print(1); } else { print(2); }`)
	var labels []string
	for _, q := range qs {
		if q.Op == "label" {
			labels = append(labels, q.Result)
		}
	}
	if len(labels) != 3 {
		t.Fatalf("expected 3 labels (true, false, end), got %v", labels)
	}
}

func TestWhileLoopStructure(t *testing.T) {
	qs := generate(t, `let i: integer = 0; while (i<3) { i = i+1; }`)
	if !containsOp(qs, "goto") {
		t.Fatal("expected at least one goto in while lowering")
	}
	var gotos, labels int
	for _, q := range qs {
		if q.Op == "goto" {
			gotos++
		}
		if q.Op == "label" {
			labels++
		}
	}
	if gotos != 2 || labels != 3 {
		t.Fatalf("expected 2 gotos and 3 labels for a while loop, got gotos=%d labels=%d", gotos, labels)
	}
}

func TestBreakJumpsToLoopAfterLabel(t *testing.T) {
	qs := generate(t, `while (true) { break; }`)
	// The last label emitted is L_after. Break is the first quad of the
	// body, right after the second label (L_body); its goto should target
	// L_after, the same label as the loop's own exit goto.
	var breakGoto, lastLabel string
	labels := 0
	for i, q := range qs {
		if q.Op == "label" {
			labels++
			lastLabel = q.Result
			if labels == 2 && i+1 < len(qs) && qs[i+1].Op == "goto" {
				breakGoto = qs[i+1].Arg1
			}
		}
	}
	if breakGoto != lastLabel {
		t.Fatalf("expected break's goto target %q to equal loop's after-label %q", breakGoto, lastLabel)
	}
}

func TestFunctionDeclEmitsFuncParamsEndfunc(t *testing.T) {
	qs := generate(t, `function add(a:integer,b:integer):integer { return a+b; }`)
	if qs[0].Op != "FUNC" || qs[0].Arg1 != "add" || qs[0].Arg2 != "2" {
		t.Fatalf("expected FUNC add,2,... first, got %+v", qs[0])
	}
	if qs[1].Op != "param" || qs[1].Arg1 != "a" {
		t.Fatalf("expected param a second, got %+v", qs[1])
	}
	if qs[len(qs)-1].Op != "endfunc" {
		t.Fatalf("expected endfunc last, got %+v", qs[len(qs)-1])
	}
}

func TestArrayLiteralLoweringAndForeachSize(t *testing.T) {
	qs := generate(t, `let arr: integer[] = [1,2,3]; foreach (x in arr) { print(x); }`)
	if !containsOp(qs, "alloc") {
		t.Fatal("expected an alloc quadruple for the array literal")
	}
	var sawSize bool
	for _, q := range qs {
		if q.Op == "=" && q.Result == "arr.size" {
			sawSize = true
		}
	}
	if !sawSize {
		t.Fatalf("expected a synthesized arr.size quadruple, got %v", opsOf(qs))
	}
}

func TestSwitchEmitsLinearEqualityChain(t *testing.T) {
	qs := generate(t, `switch (1) { case 1: print(1); case 2: print(2); default: print(0); }`)
	var eqCount int
	for _, q := range qs {
		if q.Op == "==" {
			eqCount++
		}
	}
	if eqCount != 2 {
		t.Fatalf("expected 2 equality comparisons for 2 cases, got %d", eqCount)
	}
}

func TestNewAndMethodCallLowerToObjectOps(t *testing.T) {
	qs := generate(t, `
		class Animal { function speak(): string { return "..."; } }
		let a: Animal = new Animal();
		let s: string = a.speak();
	`)
	if !containsOp(qs, "ALLOC_OBJ") || !containsOp(qs, "CALL_CONSTRUCTOR") {
		t.Fatal("expected ALLOC_OBJ and CALL_CONSTRUCTOR for `new Animal()`")
	}
	if !containsOp(qs, "CALL_METHOD") {
		t.Fatal("expected CALL_METHOD for a.speak()")
	}
}

func TestGroupByBlocksKeepsGlobalPrefixFirst(t *testing.T) {
	qs := generate(t, `
		function f(): integer { return 1; }
		let x: integer = f();
	`)
	g := New(nil)
	for _, q := range qs {
		g.Quads.Emit(q.Op, q.Arg1, q.Arg2, q.Result)
	}
	grouped := g.Quads.GroupByBlocks()
	if grouped[0].Op == "FUNC" {
		t.Fatal("expected global-scope quadruples before the function span")
	}
	var sawFunc bool
	for _, q := range grouped {
		if q.Op == "FUNC" {
			sawFunc = true
		}
	}
	if !sawFunc {
		t.Fatal("expected the function span to still be present after grouping")
	}
}
