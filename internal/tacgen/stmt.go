package tacgen

import (
	"strconv"

	"github.com/compiscript/compiscript/internal/ast"
	"github.com/compiscript/compiscript/internal/symboltable"
)

func (g *TACGen) VisitVarDecl(s *ast.VarDecl) interface{} {
	if s.Init != nil {
		v := g.eval(s.Init)
		g.Quads.Emit("=", v, "", s.Name)
		if arr, ok := s.Init.(*ast.ArrayLit); ok {
			// Synthesize a `<name>.size` constant so foreach can read the
			// declared array's length without a runtime length field.
			g.Quads.Emit("=", strconv.Itoa(len(arr.Elements)), "", s.Name+".size")
		}
	}
	return nil
}

func (g *TACGen) VisitConstDecl(s *ast.ConstDecl) interface{} {
	v := g.eval(s.Init)
	g.Quads.Emit("=", v, "", s.Name)
	return nil
}

func (g *TACGen) VisitExprStmt(s *ast.ExprStmt) interface{} {
	g.eval(s.Expr)
	return nil
}

func (g *TACGen) VisitPrintStmt(s *ast.PrintStmt) interface{} {
	v := g.eval(s.Expr)
	g.Quads.Emit("PRINT", "", "", v)
	return nil
}

func (g *TACGen) VisitBlock(s *ast.Block) interface{} {
	for _, stmt := range s.Stmts {
		stmt.Accept(g)
	}
	return nil
}

// VisitIf lowers `if (c) { T } [else { E }]` per spec.md §4.3's schema,
// collapsing L_end into L_false when there is no else branch.
func (g *TACGen) VisitIf(s *ast.If) interface{} {
	cond := g.eval(s.Cond)
	ltrue := g.Quads.NewLabel("true")
	lfalse := g.Quads.NewLabel("false")
	lend := lfalse
	if s.Else != nil {
		lend = g.Quads.NewLabel("end")
	}

	g.Quads.Emit("if", cond, "goto", ltrue)
	g.Quads.Emit("goto", lfalse, "", "")
	g.Quads.Emit("label", "", "", ltrue)

	exit := g.enterScope(symboltable.IfKey(s.Pos()))
	for _, stmt := range s.Then.Stmts {
		stmt.Accept(g)
	}
	exit()

	g.Quads.Emit("goto", lend, "", "")
	g.Quads.Emit("label", "", "", lfalse)
	if s.Else != nil {
		exit := g.enterScope(symboltable.ElseKey(s.Pos()))
		for _, stmt := range s.Else.Stmts {
			stmt.Accept(g)
		}
		exit()
		g.Quads.Emit("label", "", "", lend)
	}
	g.Quads.ResetTemps()
	return nil
}

func (g *TACGen) VisitWhile(s *ast.While) interface{} {
	lstart := g.Quads.NewLabel("start")
	lbody := g.Quads.NewLabel("body")
	lafter := g.Quads.NewLabel("after")

	g.Quads.Emit("label", "", "", lstart)
	cond := g.eval(s.Cond)
	g.Quads.Emit("if", cond, "goto", lbody)
	g.Quads.Emit("goto", lafter, "", "")
	g.Quads.Emit("label", "", "", lbody)

	g.pushLoop(lstart, lafter)
	exit := g.enterScope(symboltable.WhileKey(s.Pos()))
	for _, stmt := range s.Body.Stmts {
		stmt.Accept(g)
	}
	exit()
	g.popCtrl()

	g.Quads.Emit("goto", lstart, "", "")
	g.Quads.Emit("label", "", "", lafter)
	g.Quads.ResetTemps()
	return nil
}

func (g *TACGen) VisitDoWhile(s *ast.DoWhile) interface{} {
	lstart := g.Quads.NewLabel("start")
	lcond := g.Quads.NewLabel("cond")
	lafter := g.Quads.NewLabel("after")

	g.Quads.Emit("label", "", "", lstart)
	g.pushLoop(lcond, lafter)
	exit := g.enterScope(symboltable.DoWhileKey(s.Pos()))
	for _, stmt := range s.Body.Stmts {
		stmt.Accept(g)
	}
	exit()
	g.popCtrl()

	g.Quads.Emit("label", "", "", lcond)
	cond := g.eval(s.Cond)
	g.Quads.Emit("if", cond, "goto", lstart)
	g.Quads.Emit("goto", lafter, "", "")
	g.Quads.Emit("label", "", "", lafter)
	g.Quads.ResetTemps()
	return nil
}

func (g *TACGen) VisitFor(s *ast.For) interface{} {
	exit := g.enterScope(symboltable.ForKey(s.Pos()))
	defer exit()

	if s.Init != nil {
		s.Init.Accept(g)
	}
	lstart := g.Quads.NewLabel("start")
	lbody := g.Quads.NewLabel("body")
	lupdate := g.Quads.NewLabel("update")
	lafter := g.Quads.NewLabel("after")

	g.Quads.Emit("label", "", "", lstart)
	if s.Cond != nil {
		cond := g.eval(s.Cond)
		g.Quads.Emit("if", cond, "goto", lbody)
		g.Quads.Emit("goto", lafter, "", "")
	} else {
		g.Quads.Emit("goto", lbody, "", "")
	}
	g.Quads.Emit("label", "", "", lbody)

	g.pushLoop(lupdate, lafter)
	for _, stmt := range s.Body.Stmts {
		stmt.Accept(g)
	}
	g.popCtrl()

	g.Quads.Emit("label", "", "", lupdate)
	if s.Post != nil {
		s.Post.Accept(g)
	}
	g.Quads.Emit("goto", lstart, "", "")
	g.Quads.Emit("label", "", "", lafter)
	g.Quads.ResetTemps()
	return nil
}

// VisitForeach lowers `foreach (x in A)` to an induction variable
// compared against a synthesized `A.size`, per spec.md §4.3 and the
// Open Question decision in DESIGN.md.
func (g *TACGen) VisitForeach(s *ast.Foreach) interface{} {
	arrName := g.eval(s.Array)
	sizeOperand := arrName + ".size"

	exit := g.enterScope(symboltable.ForeachKey(s.Pos()))
	defer exit()

	i := g.Quads.NewTemp()
	g.Quads.Emit("=", "0", "", i)

	lstart := g.Quads.NewLabel("start")
	lbody := g.Quads.NewLabel("body")
	lupdate := g.Quads.NewLabel("update")
	lafter := g.Quads.NewLabel("after")

	g.Quads.Emit("label", "", "", lstart)
	cmp := g.Quads.NewTemp()
	g.Quads.Emit("<", i, sizeOperand, cmp)
	g.Quads.Emit("if", cmp, "goto", lbody)
	g.Quads.Emit("goto", lafter, "", "")
	g.Quads.Emit("label", "", "", lbody)

	elem := g.Quads.NewTemp()
	g.Quads.Emit("[]", arrName, i, elem)
	g.Quads.Emit("=", elem, "", s.VarName)

	g.pushLoop(lupdate, lafter)
	for _, stmt := range s.Body.Stmts {
		stmt.Accept(g)
	}
	g.popCtrl()

	g.Quads.Emit("label", "", "", lupdate)
	g.Quads.Emit("+", i, "1", i)
	g.Quads.Emit("goto", lstart, "", "")
	g.Quads.Emit("label", "", "", lafter)
	g.Quads.ResetTemps()
	return nil
}

func (g *TACGen) VisitBreak(s *ast.Break) interface{} {
	if t := g.breakTarget(); t != "" {
		g.Quads.Emit("goto", t, "", "")
	}
	return nil
}

func (g *TACGen) VisitContinue(s *ast.Continue) interface{} {
	if t := g.continueTarget(); t != "" {
		g.Quads.Emit("goto", t, "", "")
	}
	return nil
}

func (g *TACGen) VisitReturn(s *ast.Return) interface{} {
	v := g.eval(s.Value)
	g.Quads.Emit("RETURN", v, "", "")
	return nil
}

// VisitTryCatch has no explicit lowering schema in spec.md §4.3 beyond
// the ON_EXCEPTION/EXC_ASSIGN operation alphabet; this wires them into a
// conventional handler-jump shape consistent with the rest of the
// generator's label discipline.
func (g *TACGen) VisitTryCatch(s *ast.TryCatch) interface{} {
	lhandler := g.Quads.NewLabel("catch")
	lend := g.Quads.NewLabel("endtry")

	g.Quads.Emit("ON_EXCEPTION", "->", "", lhandler)
	exit := g.enterScope(symboltable.TryKey(s.Pos()))
	for _, stmt := range s.Try.Stmts {
		stmt.Accept(g)
	}
	exit()
	g.Quads.Emit("goto", lend, "", "")

	g.Quads.Emit("label", "", "", lhandler)
	exit = g.enterScope(symboltable.CatchKey(s.Pos()))
	g.Quads.Emit("EXC_ASSIGN", "exception", "", s.CatchName)
	for _, stmt := range s.CatchBlock.Stmts {
		stmt.Accept(g)
	}
	exit()
	g.Quads.Emit("label", "", "", lend)
	g.Quads.ResetTemps()
	return nil
}

// VisitSwitch lowers `switch (e) { case ki: Si; default: D }` to a linear
// `==`+`if` chain, per spec.md §4.3.
func (g *TACGen) VisitSwitch(s *ast.Switch) interface{} {
	scrutinee := g.eval(s.Scrutinee)
	lend := g.Quads.NewLabel("switchend")

	caseLabels := make([]string, len(s.Cases))
	for i := range s.Cases {
		caseLabels[i] = g.Quads.NewLabel("case")
	}
	var ldefault string
	if s.Default != nil {
		ldefault = g.Quads.NewLabel("default")
	}

	for i, c := range s.Cases {
		val := g.eval(c.Value)
		cmp := g.Quads.NewTemp()
		g.Quads.Emit("==", scrutinee, val, cmp)
		g.Quads.Emit("if", cmp, "goto", caseLabels[i])
	}
	if ldefault != "" {
		g.Quads.Emit("goto", ldefault, "", "")
	} else {
		g.Quads.Emit("goto", lend, "", "")
	}

	g.pushSwitch(lend)
	for i, c := range s.Cases {
		g.Quads.Emit("label", "", "", caseLabels[i])
		idx := g.nextCaseIndex(c.Line)
		exit := g.enterScope(symboltable.CaseKey(c.Line, idx))
		for _, stmt := range c.Body {
			stmt.Accept(g)
		}
		exit()
		g.Quads.Emit("goto", lend, "", "")
	}
	if s.Default != nil {
		g.Quads.Emit("label", "", "", ldefault)
		exit := g.enterScope(symboltable.DefaultKey(s.Pos()))
		for _, stmt := range s.Default {
			stmt.Accept(g)
		}
		exit()
		g.Quads.Emit("goto", lend, "", "")
	}
	g.popCtrl()
	g.Quads.Emit("label", "", "", lend)
	g.Quads.ResetTemps()
	return nil
}

// VisitFunctionDecl lowers `FUNC name, n_params, return_type`, one
// `param` per formal, the body, then `endfunc`, per spec.md §4.3.
func (g *TACGen) VisitFunctionDecl(s *ast.FunctionDecl) interface{} {
	retType := ""
	if s.ReturnType != nil {
		retType = s.ReturnType.Base
	}
	g.Quads.Emit("FUNC", s.Name, strconv.Itoa(len(s.Params)), retType)
	for _, p := range s.Params {
		g.Quads.Emit("param", p.Name, "", "")
	}

	exit := g.enterScope(symboltable.FunctionKey(s.Name))
	for _, stmt := range s.Body.Stmts {
		stmt.Accept(g)
	}
	exit()

	g.Quads.Emit("endfunc", "", "", "")
	g.Quads.ResetTemps()
	return nil
}

// VisitClassDecl lowers a class body to CLASS/INHERIT, one FIELD or
// FIELD_CONST per data member, one FUNC/endfunc span per method
// (including the constructor), then ENDCLASS.
func (g *TACGen) VisitClassDecl(s *ast.ClassDecl) interface{} {
	if s.Parent != "" {
		g.Quads.Emit("CLASS", s.Name, "inherits", s.Parent)
		g.Quads.Emit("INHERIT", s.Parent, "", "")
	} else {
		g.Quads.Emit("CLASS", s.Name, "", "")
	}

	exit := g.enterScope(symboltable.ClassKey(s.Name))
	prevClass := g.currentClass
	g.currentClass = s.Name
	for _, m := range s.Members {
		switch {
		case m.Field != nil:
			g.Quads.Emit("FIELD", m.Field.Name, "", "")
		case m.ConstField != nil:
			g.Quads.Emit("FIELD_CONST", m.ConstField.Name, "", "")
		case m.Method != nil:
			m.Method.Accept(g)
		}
	}
	g.currentClass = prevClass
	exit()

	g.Quads.Emit("ENDCLASS", "", "", "")
	return nil
}
