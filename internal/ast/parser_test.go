package ast

import "testing"

func parse(src string) *Program {
	s := NewScanner(src)
	p := NewParser(s.ScanTokens())
	return p.Parse()
}

func TestParseVarDeclWithArithmetic(t *testing.T) {
	prog := parse(`let x: integer = (1+3)-(4*(5/2));`)
	if len(prog.Stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Stmts))
	}
	vd, ok := prog.Stmts[0].(*VarDecl)
	if !ok {
		t.Fatalf("expected *VarDecl, got %T", prog.Stmts[0])
	}
	if vd.Name != "x" || vd.Type.Base != "integer" || vd.Type.Rank != 0 {
		t.Fatalf("unexpected decl shape: %+v %+v", vd, vd.Type)
	}
	if _, ok := vd.Init.(*Binary); !ok {
		t.Fatalf("expected top-level Binary init, got %T", vd.Init)
	}
}

func TestParseArrayLiteralAndIndexAssignment(t *testing.T) {
	prog := parse(`let arr: integer[] = [1,2,3]; arr[0] = 10;`)
	if len(prog.Stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(prog.Stmts))
	}
	vd := prog.Stmts[0].(*VarDecl)
	if vd.Type.Rank != 1 {
		t.Fatalf("expected rank 1 for integer[], got %d", vd.Type.Rank)
	}
	arrLit, ok := vd.Init.(*ArrayLit)
	if !ok || len(arrLit.Elements) != 3 {
		t.Fatalf("expected 3-element array literal, got %+v", vd.Init)
	}

	es := prog.Stmts[1].(*ExprStmt)
	ia, ok := es.Expr.(*IndexAssign)
	if !ok {
		t.Fatalf("expected *IndexAssign, got %T", es.Expr)
	}
	if _, ok := ia.Array.(*Identifier); !ok {
		t.Fatalf("expected identifier array target, got %T", ia.Array)
	}
}

func TestParseIfElse(t *testing.T) {
	prog := parse(`if (1<2) { let a: integer = 1; } else { let b: integer = 2; }`)
	ifs, ok := prog.Stmts[0].(*If)
	if !ok {
		t.Fatalf("expected *If, got %T", prog.Stmts[0])
	}
	if ifs.Else == nil {
		t.Fatal("expected else branch to be parsed")
	}
	if _, ok := ifs.Cond.(*Binary); !ok {
		t.Fatalf("expected Binary condition, got %T", ifs.Cond)
	}
}

func TestParseFunctionDeclAndCall(t *testing.T) {
	prog := parse(`function add(a:integer,b:integer):integer { return a+b; } let c:integer = add(1,2);`)
	fn, ok := prog.Stmts[0].(*FunctionDecl)
	if !ok {
		t.Fatalf("expected *FunctionDecl, got %T", prog.Stmts[0])
	}
	if fn.Name != "add" || len(fn.Params) != 2 || fn.ReturnType.Base != "integer" {
		t.Fatalf("unexpected function shape: %+v", fn)
	}

	vd := prog.Stmts[1].(*VarDecl)
	call, ok := vd.Init.(*Call)
	if !ok || call.Callee != "add" || len(call.Args) != 2 {
		t.Fatalf("expected call to add with 2 args, got %+v", vd.Init)
	}
}

func TestParseClassWithExtendsAndMembers(t *testing.T) {
	prog := parse(`class Dog extends Animal { let name: string; function speak(): string { return name; } }`)
	cd, ok := prog.Stmts[0].(*ClassDecl)
	if !ok {
		t.Fatalf("expected *ClassDecl, got %T", prog.Stmts[0])
	}
	if cd.Parent != "Animal" {
		t.Fatalf("expected parent Animal, got %q", cd.Parent)
	}
	if len(cd.Members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(cd.Members))
	}
}

func TestParseWhileForForeachSwitch(t *testing.T) {
	prog := parse(`
		while (1<2) { print(1); }
		for (let i: integer = 0; i<3; i = i+1) { print(i); }
		foreach (x in arr) { print(x); }
		switch (n) { case 1: print(1); default: print(0); }
	`)
	if len(prog.Stmts) != 4 {
		t.Fatalf("expected 4 statements, got %d", len(prog.Stmts))
	}
	if _, ok := prog.Stmts[0].(*While); !ok {
		t.Fatalf("expected *While, got %T", prog.Stmts[0])
	}
	if _, ok := prog.Stmts[1].(*For); !ok {
		t.Fatalf("expected *For, got %T", prog.Stmts[1])
	}
	fe, ok := prog.Stmts[2].(*Foreach)
	if !ok || fe.VarName != "x" {
		t.Fatalf("expected *Foreach over x, got %+v", prog.Stmts[2])
	}
	sw, ok := prog.Stmts[3].(*Switch)
	if !ok || len(sw.Cases) != 1 || sw.Default == nil {
		t.Fatalf("expected switch with 1 case + default, got %+v", prog.Stmts[3])
	}
}

func TestParseMethodCallAndNew(t *testing.T) {
	prog := parse(`let d: Dog = new Dog("Rex"); d.speak();`)
	vd := prog.Stmts[0].(*VarDecl)
	nw, ok := vd.Init.(*New)
	if !ok || nw.Class != "Dog" || len(nw.Args) != 1 {
		t.Fatalf("expected New(Dog, 1 arg), got %+v", vd.Init)
	}
	es := prog.Stmts[1].(*ExprStmt)
	mc, ok := es.Expr.(*MethodCall)
	if !ok || mc.Method != "speak" {
		t.Fatalf("expected MethodCall speak, got %T", es.Expr)
	}
}
