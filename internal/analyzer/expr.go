package analyzer

import (
	"github.com/compiscript/compiscript/internal/ast"
	"github.com/compiscript/compiscript/internal/symboltable"
)

// inferType evaluates e through the visitor and casts the interface{}
// result back to the Type the caller expects.
func (a *Analyzer) inferType(e ast.Expr) Type {
	if e == nil {
		return Unknown
	}
	return e.Accept(a).(Type)
}

func (a *Analyzer) VisitIntLit(e *ast.IntLit) interface{}    { return integer() }
func (a *Analyzer) VisitBoolLit(e *ast.BoolLit) interface{}  { return boolean() }
func (a *Analyzer) VisitStringLit(e *ast.StringLit) interface{} { return str() }
func (a *Analyzer) VisitNullLit(e *ast.NullLit) interface{}  { return null() }

// VisitArrayLit computes (elementBase, 1+elementRank) when every element
// shares base and rank; heterogeneous or non-rectangular literals are
// each diagnosed once and degrade to Unknown (but see note in VarDecl
// handling for how an empty array literal adopts the declared base).
func (a *Analyzer) VisitArrayLit(e *ast.ArrayLit) interface{} {
	if len(e.Elements) == 0 {
		// Caller (a declaration with an explicit annotation) is expected
		// to special-case this; bare empty literals with no context are
		// simply (null, 1) placeholders.
		return Type{Base: "null", Rank: 1}
	}
	first := a.inferType(e.Elements[0])
	for _, el := range e.Elements[1:] {
		t := a.inferType(el)
		if !sameBaseAndRank(t, first) {
			a.Diags.Add(e.Pos(), "heterogeneous array literal: element type %s[%d] does not match %s[%d]", t.Base, t.Rank, first.Base, first.Rank)
			return Unknown
		}
	}
	return Type{Base: first.Base, Rank: first.Rank + 1}
}

func (a *Analyzer) VisitIdentifier(e *ast.Identifier) interface{} {
	sym, ok := a.current.LookupGlobal(e.Name)
	if !ok {
		a.Diags.Add(e.Pos(), "undeclared identifier '%s'", e.Name)
		return Unknown
	}
	return Type{Base: sym.Base, Rank: sym.Rank}
}

func (a *Analyzer) VisitThis(e *ast.This) interface{} {
	if a.currentClass == "" {
		a.Diags.Add(e.Pos(), "'this' used outside of a class method")
		return Unknown
	}
	return Type{Base: a.currentClass, Rank: 0}
}

func (a *Analyzer) VisitUnary(e *ast.Unary) interface{} {
	t := a.inferType(e.Operand)
	switch e.Operator {
	case "!":
		if !t.isBool() {
			a.Diags.Add(e.Pos(), "operator '!' requires a boolean operand")
			return Unknown
		}
		return boolean()
	case "-", "+":
		if !t.isInt() {
			a.Diags.Add(e.Pos(), "unary '%s' requires an integer operand", e.Operator)
			return Unknown
		}
		return integer()
	}
	return Unknown
}

func (a *Analyzer) VisitBinary(e *ast.Binary) interface{} {
	lt := a.inferType(e.Left)
	rt := a.inferType(e.Right)
	switch e.Operator {
	case "+":
		if lt.isInt() && rt.isInt() {
			return integer()
		}
		if lt.isString() || rt.isString() {
			return str()
		}
		a.Diags.Add(e.Pos(), "operator '+' requires two integers or a string operand, got %s[%d] and %s[%d]", lt.Base, lt.Rank, rt.Base, rt.Rank)
		return Unknown
	case "-", "*", "/", "%":
		if lt.isInt() && rt.isInt() {
			return integer()
		}
		a.Diags.Add(e.Pos(), "operator '%s' requires two integers, got %s[%d] and %s[%d]", e.Operator, lt.Base, lt.Rank, rt.Base, rt.Rank)
		return Unknown
	case "<", "<=", ">", ">=":
		if lt.isInt() && rt.isInt() {
			return boolean()
		}
		a.Diags.Add(e.Pos(), "operator '%s' requires two integers, got %s[%d] and %s[%d]", e.Operator, lt.Base, lt.Rank, rt.Base, rt.Rank)
		return Unknown
	case "==", "!=":
		if sameBaseAndRank(lt, rt) {
			return boolean()
		}
		a.Diags.Add(e.Pos(), "operator '%s' requires operands of the same type, got %s[%d] and %s[%d]", e.Operator, lt.Base, lt.Rank, rt.Base, rt.Rank)
		return Unknown
	}
	return Unknown
}

func (a *Analyzer) VisitLogical(e *ast.Logical) interface{} {
	lt := a.inferType(e.Left)
	rt := a.inferType(e.Right)
	if lt.isBool() && rt.isBool() {
		return boolean()
	}
	a.Diags.Add(e.Pos(), "operator '%s' requires two booleans, got %s[%d] and %s[%d]", e.Operator, lt.Base, lt.Rank, rt.Base, rt.Rank)
	return Unknown
}

func (a *Analyzer) VisitIndex(e *ast.Index) interface{} {
	at := a.inferType(e.Array)
	it := a.inferType(e.Idx)
	if !at.isArray() {
		a.Diags.Add(e.Pos(), "indexing requires an array, got %s[%d]", at.Base, at.Rank)
		return Unknown
	}
	if !it.isInt() {
		a.Diags.Add(e.Pos(), "array index must be an integer, got %s[%d]", it.Base, it.Rank)
		return Unknown
	}
	return at.elementOf()
}

func (a *Analyzer) VisitProperty(e *ast.Property) interface{} {
	ot := a.inferType(e.Object)
	if ot.Rank != 0 || !a.isClass(ot.Base) {
		a.Diags.Add(e.Pos(), "property access requires a class instance, got %s[%d]", ot.Base, ot.Rank)
		return Unknown
	}
	member, ok := a.current.GetClassMember(ot.Base, e.Name)
	if !ok {
		a.Diags.Add(e.Pos(), "class '%s' has no member '%s'", ot.Base, e.Name)
		return Unknown
	}
	return Type{Base: member.Base, Rank: member.Rank}
}

func (a *Analyzer) isClass(name string) bool {
	sym, ok := a.current.LookupGlobal(name)
	return ok && sym.Kind == symboltable.KindClass
}

func (a *Analyzer) checkArgs(line int, calleeName string, params []symboltable.Param, args []ast.Expr) {
	if len(params) != len(args) {
		a.Diags.Add(line, "'%s' expects %d argument(s), got %d", calleeName, len(params), len(args))
		return
	}
	for i, arg := range args {
		at := a.inferType(arg)
		pt := Type{Base: params[i].Base, Rank: params[i].Rank}
		if !sameBaseAndRank(at, pt) {
			a.Diags.Add(line, "'%s' argument %d: expected %s[%d], got %s[%d]", calleeName, i+1, pt.Base, pt.Rank, at.Base, at.Rank)
		}
	}
}

func (a *Analyzer) VisitCall(e *ast.Call) interface{} {
	sym, ok := a.current.LookupGlobal(e.Callee)
	if !ok || (sym.Kind != symboltable.KindFunction) {
		a.Diags.Add(e.Pos(), "call to undeclared function '%s'", e.Callee)
		for _, arg := range e.Args {
			a.inferType(arg)
		}
		return Unknown
	}
	a.checkArgs(e.Pos(), e.Callee, sym.Params, e.Args)
	return Type{Base: sym.ReturnBase, Rank: sym.ReturnRank}
}

func (a *Analyzer) VisitMethodCall(e *ast.MethodCall) interface{} {
	ot := a.inferType(e.Object)
	if ot.Rank != 0 || !a.isClass(ot.Base) {
		a.Diags.Add(e.Pos(), "method call requires a class instance, got %s[%d]", ot.Base, ot.Rank)
		for _, arg := range e.Args {
			a.inferType(arg)
		}
		return Unknown
	}
	member, ok := a.current.GetClassMember(ot.Base, e.Method)
	if !ok || member.Kind != symboltable.KindMethod {
		a.Diags.Add(e.Pos(), "class '%s' has no method '%s'", ot.Base, e.Method)
		for _, arg := range e.Args {
			a.inferType(arg)
		}
		return Unknown
	}
	a.checkArgs(e.Pos(), e.Method, member.Params, e.Args)
	return Type{Base: member.ReturnBase, Rank: member.ReturnRank}
}

func (a *Analyzer) VisitNew(e *ast.New) interface{} {
	sym, ok := a.current.LookupGlobal(e.Class)
	if !ok || sym.Kind != symboltable.KindClass {
		a.Diags.Add(e.Pos(), "'new' requires a declared class, got '%s'", e.Class)
		for _, arg := range e.Args {
			a.inferType(arg)
		}
		return Unknown
	}
	if sym.HasConstructor {
		a.checkArgs(e.Pos(), e.Class, sym.ConstructorParams, e.Args)
	} else if len(e.Args) != 0 {
		a.Diags.Add(e.Pos(), "class '%s' has no constructor but %d argument(s) were given", e.Class, len(e.Args))
	}
	return Type{Base: e.Class, Rank: 0}
}

// ---- Assignment shapes (three per spec.md §4.2) ----

func (a *Analyzer) VisitAssign(e *ast.Assign) interface{} {
	sym, ok := a.current.LookupGlobal(e.Name)
	if !ok {
		a.Diags.Add(e.Pos(), "assignment to undeclared identifier '%s'", e.Name)
		a.inferType(e.Value)
		return Unknown
	}
	if !sym.Mutable {
		a.Diags.Add(e.Pos(), "cannot assign to constant '%s'", e.Name)
	}
	vt := a.inferType(e.Value)
	target := Type{Base: sym.Base, Rank: sym.Rank}
	if !sameBaseAndRank(vt, target) && !isUnknown(vt) {
		a.Diags.Add(e.Pos(), "cannot assign %s[%d] to '%s' of type %s[%d]", vt.Base, vt.Rank, e.Name, target.Base, target.Rank)
	}
	return target
}

func (a *Analyzer) VisitIndexAssign(e *ast.IndexAssign) interface{} {
	at := a.inferType(e.Array)
	it := a.inferType(e.Index)
	vt := a.inferType(e.Value)
	if !at.isArray() {
		a.Diags.Add(e.Pos(), "indexed assignment requires an array target, got %s[%d]", at.Base, at.Rank)
		return Unknown
	}
	if !it.isInt() {
		a.Diags.Add(e.Pos(), "array index must be an integer, got %s[%d]", it.Base, it.Rank)
	}
	elem := at.elementOf()
	if !sameBaseAndRank(vt, elem) && !isUnknown(vt) {
		a.Diags.Add(e.Pos(), "cannot assign %s[%d] into array of %s[%d]", vt.Base, vt.Rank, elem.Base, elem.Rank)
	}
	return elem
}

func (a *Analyzer) VisitPropertyAssign(e *ast.PropertyAssign) interface{} {
	ot := a.inferType(e.Object)
	vt := a.inferType(e.Value)
	if ot.Rank != 0 || !a.isClass(ot.Base) {
		a.Diags.Add(e.Pos(), "property assignment requires a class instance, got %s[%d]", ot.Base, ot.Rank)
		return Unknown
	}
	member, ok := a.current.GetClassMember(ot.Base, e.Name)
	if !ok {
		a.Diags.Add(e.Pos(), "class '%s' has no member '%s'", ot.Base, e.Name)
		return Unknown
	}
	if !member.Mutable {
		a.Diags.Add(e.Pos(), "cannot assign to constant field '%s'", e.Name)
	}
	target := Type{Base: member.Base, Rank: member.Rank}
	if !sameBaseAndRank(vt, target) && !isUnknown(vt) {
		a.Diags.Add(e.Pos(), "cannot assign %s[%d] to field '%s' of type %s[%d]", vt.Base, vt.Rank, e.Name, target.Base, target.Rank)
	}
	return target
}
