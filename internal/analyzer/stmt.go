package analyzer

import (
	"fmt"

	"github.com/compiscript/compiscript/internal/ast"
	"github.com/compiscript/compiscript/internal/symboltable"
)

func typeOf(ty *ast.TypeAnnotation) Type {
	if ty == nil {
		return Unknown
	}
	return Type{Base: ty.Base, Rank: ty.Rank}
}

func paramsOf(ps []ast.Param) []symboltable.Param {
	out := make([]symboltable.Param, len(ps))
	for i, p := range ps {
		t := typeOf(p.Type)
		out[i] = symboltable.Param{Name: p.Name, Base: t.Base, Rank: t.Rank}
	}
	return out
}

func (a *Analyzer) VisitVarDecl(s *ast.VarDecl) interface{} {
	if s.Type == nil {
		a.Diags.Add(s.Pos(), "variable '%s' requires an explicit type annotation", s.Name)
	}
	declared := typeOf(s.Type)

	var initType Type
	if s.Init != nil {
		if lit, ok := s.Init.(*ast.ArrayLit); ok && len(lit.Elements) == 0 && s.Type != nil {
			// An empty array literal adopts the declared base, per
			// spec.md §4.2's declaration rule.
			initType = declared
		} else {
			initType = a.inferType(s.Init)
			if s.Type != nil && !sameBaseAndRank(initType, declared) && !isUnknown(initType) {
				a.Diags.Add(s.Pos(), "initializer for '%s' has type %s[%d], expected %s[%d]", s.Name, initType.Base, initType.Rank, declared.Base, declared.Rank)
			}
		}
	}

	sym := &symboltable.Symbol{
		Identifier: s.Name,
		Base:       declared.Base,
		Rank:       declared.Rank,
		Scope:      a.current.Name,
		Line:       s.Pos(),
		Mutable:    true,
		Kind:       symboltable.KindVariable,
	}
	a.declareLocal(sym, s.Pos())
	if a.currentClass != "" {
		a.current.AddClassMember(a.currentClass, &symboltable.Symbol{
			Identifier: s.Name, Base: declared.Base, Rank: declared.Rank,
			Line: s.Pos(), Mutable: true, Kind: symboltable.KindField,
		})
	}
	return nil
}

func (a *Analyzer) VisitConstDecl(s *ast.ConstDecl) interface{} {
	declared := typeOf(s.Type)
	initType := a.inferType(s.Init)
	if s.Type != nil && !sameBaseAndRank(initType, declared) && !isUnknown(initType) {
		a.Diags.Add(s.Pos(), "initializer for const '%s' has type %s[%d], expected %s[%d]", s.Name, initType.Base, initType.Rank, declared.Base, declared.Rank)
	}
	if s.Type == nil {
		declared = initType
	}

	sym := &symboltable.Symbol{
		Identifier: s.Name,
		Base:       declared.Base,
		Rank:       declared.Rank,
		Scope:      a.current.Name,
		Line:       s.Pos(),
		Mutable:    false,
		Kind:       symboltable.KindVariable,
	}
	a.declareLocal(sym, s.Pos())
	if a.currentClass != "" {
		a.current.AddClassMember(a.currentClass, &symboltable.Symbol{
			Identifier: s.Name, Base: declared.Base, Rank: declared.Rank,
			Line: s.Pos(), Mutable: false, Kind: symboltable.KindField,
		})
	}
	return nil
}

func (a *Analyzer) VisitExprStmt(s *ast.ExprStmt) interface{} {
	a.inferType(s.Expr)
	return nil
}

func (a *Analyzer) VisitPrintStmt(s *ast.PrintStmt) interface{} {
	a.inferType(s.Expr)
	return nil
}

// VisitBlock visits a bare block in the current scope. Canonical scope
// keys (spec.md §3) are only minted for control-flow/function/class
// bodies, not for a brace group on its own.
func (a *Analyzer) VisitBlock(s *ast.Block) interface{} {
	for _, stmt := range s.Stmts {
		stmt.Accept(a)
	}
	return nil
}

func (a *Analyzer) visitChildBlock(key string, b *ast.Block) {
	exit := a.enterScope(key)
	defer exit()
	for _, stmt := range b.Stmts {
		stmt.Accept(a)
	}
}

func (a *Analyzer) checkCond(e ast.Expr, construct string) {
	t := a.inferType(e)
	if !t.isBool() {
		a.Diags.Add(e.Pos(), "%s condition must be boolean, got %s[%d]", construct, t.Base, t.Rank)
	}
}

func (a *Analyzer) VisitIf(s *ast.If) interface{} {
	a.checkCond(s.Cond, "if")
	a.visitChildBlock(symboltable.IfKey(s.Pos()), s.Then)
	if s.Else != nil {
		a.visitChildBlock(symboltable.ElseKey(s.Pos()), s.Else)
	}
	return nil
}

func (a *Analyzer) VisitWhile(s *ast.While) interface{} {
	a.checkCond(s.Cond, "while")
	a.loopDepth++
	a.visitChildBlock(symboltable.WhileKey(s.Pos()), s.Body)
	a.loopDepth--
	return nil
}

func (a *Analyzer) VisitDoWhile(s *ast.DoWhile) interface{} {
	a.loopDepth++
	a.visitChildBlock(symboltable.DoWhileKey(s.Pos()), s.Body)
	a.loopDepth--
	a.checkCond(s.Cond, "do-while")
	return nil
}

func (a *Analyzer) VisitFor(s *ast.For) interface{} {
	exit := a.enterScope(symboltable.ForKey(s.Pos()))
	defer exit()
	if s.Init != nil {
		s.Init.Accept(a)
	}
	if s.Cond != nil {
		a.checkCond(s.Cond, "for")
	}
	a.loopDepth++
	for _, stmt := range s.Body.Stmts {
		stmt.Accept(a)
	}
	if s.Post != nil {
		s.Post.Accept(a)
	}
	a.loopDepth--
	return nil
}

func (a *Analyzer) VisitForeach(s *ast.Foreach) interface{} {
	at := a.inferType(s.Array)
	if !at.isArray() {
		a.Diags.Add(s.Pos(), "foreach requires an array, got %s[%d]", at.Base, at.Rank)
	}
	exit := a.enterScope(symboltable.ForeachKey(s.Pos()))
	defer exit()
	elem := at.elementOf()
	sym := &symboltable.Symbol{Identifier: s.VarName, Base: elem.Base, Rank: elem.Rank, Line: s.Pos(), Mutable: true, Kind: symboltable.KindVariable}
	a.declareLocal(sym, s.Pos())
	a.loopDepth++
	for _, stmt := range s.Body.Stmts {
		stmt.Accept(a)
	}
	a.loopDepth--
	return nil
}

func (a *Analyzer) VisitBreak(s *ast.Break) interface{} {
	if a.loopDepth == 0 && a.switchDepth == 0 {
		a.Diags.Add(s.Pos(), "'break' used outside of a loop or switch")
	}
	return nil
}

func (a *Analyzer) VisitContinue(s *ast.Continue) interface{} {
	if a.loopDepth == 0 {
		a.Diags.Add(s.Pos(), "'continue' used outside of a loop")
	}
	return nil
}

func (a *Analyzer) VisitReturn(s *ast.Return) interface{} {
	if !a.inFunction {
		a.Diags.Add(s.Pos(), "'return' used outside of a function")
		if s.Value != nil {
			a.inferType(s.Value)
		}
		return nil
	}
	isVoid := isUnknown(a.returnBase)
	if s.Value == nil {
		if !isVoid {
			a.Diags.Add(s.Pos(), "missing return value, expected %s[%d]", a.returnBase.Base, a.returnBase.Rank)
		}
		return nil
	}
	vt := a.inferType(s.Value)
	if isVoid {
		a.Diags.Add(s.Pos(), "void function cannot return a value")
		return nil
	}
	if !sameBaseAndRank(vt, a.returnBase) && !isUnknown(vt) {
		a.Diags.Add(s.Pos(), "return type %s[%d] does not match declared %s[%d]", vt.Base, vt.Rank, a.returnBase.Base, a.returnBase.Rank)
	}
	return nil
}

func (a *Analyzer) VisitTryCatch(s *ast.TryCatch) interface{} {
	a.visitChildBlock(symboltable.TryKey(s.Pos()), s.Try)
	exit := a.enterScope(symboltable.CatchKey(s.Pos()))
	sym := &symboltable.Symbol{Identifier: s.CatchName, Base: "exception", Line: s.Pos(), Mutable: false, Kind: symboltable.KindVariable}
	a.declareLocal(sym, s.Pos())
	for _, stmt := range s.CatchBlock.Stmts {
		stmt.Accept(a)
	}
	exit()
	return nil
}

func (a *Analyzer) VisitSwitch(s *ast.Switch) interface{} {
	scrutinee := a.inferType(s.Scrutinee)
	a.switchDepth++
	seen := map[string]bool{}
	for _, c := range s.Cases {
		ct := a.inferType(c.Value)
		if ct.Base != scrutinee.Base {
			a.Diags.Add(c.Line, "case expression type %s does not match switch expression type %s", ct.Base, scrutinee.Base)
		}
		if lit := literalKey(c.Value); lit != "" {
			if seen[lit] {
				a.Diags.Add(c.Line, "duplicate case value %s", lit)
			}
			seen[lit] = true
		}
		idx := a.nextCaseIndex(c.Line)
		exit := a.enterScope(symboltable.CaseKey(c.Line, idx))
		for _, stmt := range c.Body {
			stmt.Accept(a)
		}
		exit()
	}
	if s.Default != nil {
		exit := a.enterScope(symboltable.DefaultKey(s.Pos()))
		for _, stmt := range s.Default {
			stmt.Accept(a)
		}
		exit()
	}
	a.switchDepth--
	return nil
}

func literalKey(e ast.Expr) string {
	switch v := e.(type) {
	case *ast.IntLit:
		return fmt.Sprintf("int:%d", v.Value)
	case *ast.StringLit:
		return fmt.Sprintf("str:%s", v.Value)
	case *ast.BoolLit:
		return fmt.Sprintf("bool:%v", v.Value)
	default:
		return ""
	}
}

func (a *Analyzer) VisitFunctionDecl(s *ast.FunctionDecl) interface{} {
	retType := typeOf(s.ReturnType)
	// An explicit `void` annotation is the same as no annotation.
	if retType.Base == "void" && retType.Rank == 0 {
		retType = Void
	}
	sym := &symboltable.Symbol{
		Identifier: s.Name,
		Line:       s.Pos(),
		Kind:       symboltable.KindFunction,
		Params:     paramsOf(s.Params),
		ReturnBase: retType.Base,
		ReturnRank: retType.Rank,
	}
	if a.currentClass != "" {
		sym.Kind = symboltable.KindMethod
		if s.Name == "constructor" {
			sym.Kind = symboltable.KindConstructor
		}
	}
	a.current.Insert(sym)
	if a.currentClass != "" {
		a.current.AddClassMember(a.currentClass, sym)
		if sym.Kind == symboltable.KindConstructor {
			if clsSym, ok := a.current.LookupGlobal(a.currentClass); ok && !clsSym.HasConstructor {
				clsSym.HasConstructor = true
				clsSym.ConstructorParams = sym.Params
			}
		}
	}

	exit := a.enterScope(symboltable.FunctionKey(s.Name))
	a.pushFrame()
	prevReturn, prevInFunc := a.returnBase, a.inFunction
	a.returnBase, a.inFunction = retType, true

	if a.currentClass != "" {
		thisSym := &symboltable.Symbol{Identifier: "this", Base: a.currentClass, Mutable: false, Kind: symboltable.KindVariable}
		a.current.Insert(thisSym)
	}
	for _, p := range s.Params {
		pt := typeOf(p.Type)
		psym := &symboltable.Symbol{Identifier: p.Name, Base: pt.Base, Rank: pt.Rank, Mutable: false, Kind: symboltable.KindVariable}
		a.declareLocal(psym, s.Pos())
	}
	for _, stmt := range s.Body.Stmts {
		stmt.Accept(a)
	}

	if !isUnknown(retType) && !blockReturns(s.Body) {
		a.Diags.Add(s.Pos(), "function '%s' does not return a value on all paths", s.Name)
	}

	a.returnBase, a.inFunction = prevReturn, prevInFunc
	a.popFrame()
	exit()
	return nil
}

func (a *Analyzer) VisitClassDecl(s *ast.ClassDecl) interface{} {
	if s.Parent != "" && a.current.InheritanceCycle(s.Name, s.Parent) {
		a.Diags.Add(s.Pos(), "class '%s' cannot extend '%s': inheritance cycle", s.Name, s.Parent)
		s.Parent = ""
	}
	sym := &symboltable.Symbol{
		Identifier:  s.Name,
		Line:        s.Pos(),
		Kind:        symboltable.KindClass,
		ParentClass: s.Parent,
		Members:     map[string]*symboltable.Symbol{},
	}
	a.current.Insert(sym)

	exit := a.enterScope(symboltable.ClassKey(s.Name))
	prevClass := a.currentClass
	a.currentClass = s.Name
	for _, m := range s.Members {
		switch {
		case m.Field != nil:
			m.Field.Accept(a)
		case m.ConstField != nil:
			m.ConstField.Accept(a)
		case m.Method != nil:
			m.Method.Accept(a)
		}
	}
	a.currentClass = prevClass
	exit()
	return nil
}
