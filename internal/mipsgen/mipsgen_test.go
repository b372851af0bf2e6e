package mipsgen

import (
	"strings"
	"testing"

	"github.com/compiscript/compiscript/internal/analyzer"
	"github.com/compiscript/compiscript/internal/ast"
	"github.com/compiscript/compiscript/internal/quad"
	"github.com/compiscript/compiscript/internal/tacgen"
)

func render(t *testing.T, src string) string {
	t.Helper()
	s := ast.NewScanner(src)
	p := ast.NewParser(s.ScanTokens())
	prog := p.Parse()

	a := analyzer.New()
	a.Analyze(prog)
	if a.Diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", a.Diags.Lines())
	}

	tg := tacgen.New(a.Global)
	quads := tg.Generate(prog).GroupByBlocks()

	g := New(a.Global)
	return g.Generate(quads)
}

func TestStartTrampolineCallsMainWhenPresent(t *testing.T) {
	out := render(t, `function main(): void { print(1); }`)
	if !strings.Contains(out, "_start:") || !strings.Contains(out, "jal main") {
		t.Fatalf("expected _start to jal main, got:\n%s", out)
	}
}

func TestFunctionEmitsPrologueAndEpilogue(t *testing.T) {
	out := render(t, `function add(a: integer, b: integer): integer { return a+b; }`)
	if !strings.Contains(out, "add:") {
		t.Fatalf("expected add: label, got:\n%s", out)
	}
	if !strings.Contains(out, "sw $fp, 0($sp)") || !strings.Contains(out, "sw $ra, 4($sp)") {
		t.Fatalf("expected prologue frame save, got:\n%s", out)
	}
	if !strings.Contains(out, "lw $fp, 0($sp)") || !strings.Contains(out, "jr $ra") {
		t.Fatalf("expected epilogue, got:\n%s", out)
	}
}

func TestDivisionExpandsToDivMflo(t *testing.T) {
	out := render(t, `let x: integer = 10/2;`)
	if !strings.Contains(out, "div ") || !strings.Contains(out, "mflo") {
		t.Fatalf("expected div+mflo expansion, got:\n%s", out)
	}
}

func TestModuloExpandsToDivMfhi(t *testing.T) {
	out := render(t, `let x: integer = 10%3;`)
	if !strings.Contains(out, "div ") || !strings.Contains(out, "mfhi") {
		t.Fatalf("expected div+mfhi expansion, got:\n%s", out)
	}
}

func TestLessEqualUsesSltWithSwapAndNegation(t *testing.T) {
	out := render(t, `let x: boolean = 1<=2;`)
	if !strings.Contains(out, "slt ") || !strings.Contains(out, "xori ") {
		t.Fatalf("expected slt+xori for <=, got:\n%s", out)
	}
}

func TestEqualityUsesXorThenSltiu(t *testing.T) {
	out := render(t, `let x: boolean = 1==2;`)
	if !strings.Contains(out, "xor ") || !strings.Contains(out, "sltiu ") {
		t.Fatalf("expected xor+sltiu for ==, got:\n%s", out)
	}
}

func TestGlobalVariableAppearsInDataSection(t *testing.T) {
	out := render(t, `let counter: integer = 0;`)
	if !strings.Contains(out, ".data") || !strings.Contains(out, "counter: .word 0") {
		t.Fatalf("expected counter in .data section, got:\n%s", out)
	}
}

func TestStringLiteralInternsAsciizLabel(t *testing.T) {
	out := render(t, `print("hello");`)
	if !strings.Contains(out, ".asciiz") {
		t.Fatalf("expected an interned .asciiz string literal, got:\n%s", out)
	}
}

func TestPrintEmitsSyscallThenNewlineSyscall(t *testing.T) {
	out := render(t, `print(42);`)
	if !strings.Contains(out, "li $v0, 1") || !strings.Contains(out, "li $v0, 11") {
		t.Fatalf("expected int print syscall followed by newline syscall, got:\n%s", out)
	}
}

func TestCallPassesFirstFourArgsInRegisters(t *testing.T) {
	out := render(t, `function f(a:integer,b:integer):integer { return a+b; } let x: integer = f(1,2);`)
	if !strings.Contains(out, "move $a0,") || !strings.Contains(out, "move $a1,") {
		t.Fatalf("expected first two args moved into $a0/$a1, got:\n%s", out)
	}
}

func TestAllocObjBumpsHeapPointerAndReservesRegion(t *testing.T) {
	out := render(t, `
		class Point { let x: integer = 0; let y: integer = 0; }
		let p: Point = new Point();
	`)
	if !strings.Contains(out, "__heap_ptr: .word 0") || !strings.Contains(out, "__heap: .space") {
		t.Fatalf("expected a reserved heap region in .data, got:\n%s", out)
	}
	if !strings.Contains(out, "la ") || !strings.Contains(out, "__heap_ptr") {
		t.Fatalf("expected ALLOC_OBJ to bump __heap_ptr, got:\n%s", out)
	}
}

func TestDistinctFieldsGetDistinctOffsets(t *testing.T) {
	out := render(t, `
		class Point { let x: integer = 0; let y: integer = 0; }
		let p: Point = new Point();
		p.x = 1;
		p.y = 2;
		let a: integer = p.x;
		let b: integer = p.y;
	`)
	if !strings.Contains(out, "4(") {
		t.Fatalf("expected the second field to land at a nonzero offset, got:\n%s", out)
	}
	if strings.Contains(out, "fields share offset 0") || strings.Contains(out, "0($zero)") {
		t.Fatalf("expected real field offsets, not the aliasing stub, got:\n%s", out)
	}
}

func TestUnresolvableFieldAccessPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for a field access the generator cannot lay out")
		}
	}()
	g := New(nil)
	g.lowerGetField(quad.Quad{Op: "GET_FIELD", Arg1: "obj", Arg2: "field", Result: "t0"})
}
