package pipeline

import (
	"strings"
	"testing"
)

func TestRunCleanProgramProducesAssemblyAndNoDiagnostics(t *testing.T) {
	res, err := Run(`function add(a: integer, b: integer): integer { return a+b; } let x: integer = add(1,2);`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Diagnostics) != 0 {
		t.Fatalf("expected no diagnostics, got %v", res.Diagnostics)
	}
	if !strings.Contains(res.Assembly, "add:") {
		t.Fatalf("expected assembly to contain the add label, got:\n%s", res.Assembly)
	}
	if !strings.Contains(res.Assembly, "_start:") {
		t.Fatal("expected assembly to contain a _start trampoline")
	}
}

func TestRunSemanticErrorStopsBeforeTACGeneration(t *testing.T) {
	res, err := Run(`let x: integer = true;`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Diagnostics) == 0 {
		t.Fatal("expected at least one diagnostic for a type mismatch")
	}
	if res.Assembly != "" {
		t.Fatalf("expected no assembly once diagnostics are non-empty, got:\n%s", res.Assembly)
	}
	if res.Quads != nil {
		t.Fatalf("expected no quadruples once diagnostics are non-empty, got %v", res.Quads)
	}
	if res.Global == nil {
		t.Fatal("expected the partial symbol table to still be available for inspection")
	}
}

func TestRunWithRegistersHonorsSmallerPool(t *testing.T) {
	res, err := RunWithRegisters(`function add(a: integer, b: integer): integer { return a+b; } let x: integer = add(1,2);`, 2, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(res.Assembly, "add:") {
		t.Fatalf("expected assembly to still be produced with a 3-register pool, got:\n%s", res.Assembly)
	}
}

func TestRenderQuadsFormatsRawListing(t *testing.T) {
	res, err := Run(`let x: integer = 1+2;`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	listing := RenderQuads(res.Quads)
	if !strings.Contains(listing, "000: (") {
		t.Fatalf("expected a zero-indexed raw listing line, got:\n%s", listing)
	}
}
