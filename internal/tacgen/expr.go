package tacgen

import (
	"fmt"
	"strconv"

	"github.com/compiscript/compiscript/internal/ast"
)

// eval evaluates e and returns the operand name (a literal, an
// identifier, or a fresh temporary) that holds its value.
func (g *TACGen) eval(e ast.Expr) string {
	if e == nil {
		return ""
	}
	return e.Accept(g).(string)
}

func (g *TACGen) VisitIntLit(e *ast.IntLit) interface{} {
	return strconv.FormatInt(e.Value, 10)
}

func (g *TACGen) VisitBoolLit(e *ast.BoolLit) interface{} {
	if e.Value {
		return "true"
	}
	return "false"
}

func (g *TACGen) VisitStringLit(e *ast.StringLit) interface{} {
	return fmt.Sprintf("%q", e.Value)
}

func (g *TACGen) VisitNullLit(e *ast.NullLit) interface{} { return "null" }

// VisitArrayLit lowers `[e0, ..., en-1]` to `alloc n -> t` followed by
// one `= ei, _, t[i]` per element, per spec.md §4.3.
func (g *TACGen) VisitArrayLit(e *ast.ArrayLit) interface{} {
	t := g.Quads.NewTemp()
	g.Quads.Emit("alloc", strconv.Itoa(len(e.Elements)), "", t)
	for i, el := range e.Elements {
		v := g.eval(el)
		g.Quads.Emit("=", v, "", fmt.Sprintf("%s[%d]", t, i))
	}
	return t
}

func (g *TACGen) VisitIdentifier(e *ast.Identifier) interface{} { return e.Name }

func (g *TACGen) VisitThis(e *ast.This) interface{} { return "this" }

func (g *TACGen) VisitUnary(e *ast.Unary) interface{} {
	v := g.eval(e.Operand)
	t := g.Quads.NewTemp()
	g.Quads.Emit(e.Operator, v, "", t)
	return t
}

func (g *TACGen) VisitBinary(e *ast.Binary) interface{} {
	l := g.eval(e.Left)
	r := g.eval(e.Right)
	t := g.Quads.NewTemp()
	g.Quads.Emit(e.Operator, l, r, t)
	return t
}

func (g *TACGen) VisitLogical(e *ast.Logical) interface{} {
	l := g.eval(e.Left)
	r := g.eval(e.Right)
	t := g.Quads.NewTemp()
	g.Quads.Emit(e.Operator, l, r, t)
	return t
}

func (g *TACGen) VisitIndex(e *ast.Index) interface{} {
	arr := g.eval(e.Array)
	idx := g.eval(e.Idx)
	t := g.Quads.NewTemp()
	g.Quads.Emit("[]", arr, idx, t)
	return t
}

// VisitProperty lowers `obj.name` to a GET_FIELD whose Arg2 carries the
// owning class alongside the field, `Class.name`, so the MIPS generator
// can resolve a byte offset without re-inferring types.
func (g *TACGen) VisitProperty(e *ast.Property) interface{} {
	obj := g.eval(e.Object)
	t := g.Quads.NewTemp()
	g.Quads.Emit("GET_FIELD", obj, g.classOf(e.Object)+"."+e.Name, t)
	return t
}

func (g *TACGen) evalArgs(args []ast.Expr) []string {
	vals := make([]string, len(args))
	for i, a := range args {
		vals[i] = g.eval(a)
	}
	return vals
}

func (g *TACGen) emitParams(vals []string) {
	for _, v := range vals {
		g.Quads.Emit("param", v, "", "")
	}
}

func (g *TACGen) VisitCall(e *ast.Call) interface{} {
	vals := g.evalArgs(e.Args)
	g.emitParams(vals)
	n := strconv.Itoa(len(e.Args))
	if g.funcReturnsVoid(e.Callee) {
		g.Quads.Emit("CALL_FUNC", e.Callee, n, "")
		return ""
	}
	t := g.Quads.NewTemp()
	g.Quads.Emit("CALL_FUNC", e.Callee, n, t)
	return t
}

func (g *TACGen) VisitMethodCall(e *ast.MethodCall) interface{} {
	obj := g.eval(e.Object)
	vals := g.evalArgs(e.Args)
	g.emitParams(vals)
	qualified := obj + "." + e.Method
	n := strconv.Itoa(len(e.Args))
	className := g.classOf(e.Object)
	if g.methodReturnsVoid(className, e.Method) {
		g.Quads.Emit("CALL_METHOD", qualified, n, "")
		return ""
	}
	t := g.Quads.NewTemp()
	g.Quads.Emit("CALL_METHOD", qualified, n, t)
	return t
}

// VisitNew lowers `new C(args)` to argument params, ALLOC_OBJ, then
// CALL_CONSTRUCTOR, per spec.md §4.3.
func (g *TACGen) VisitNew(e *ast.New) interface{} {
	vals := g.evalArgs(e.Args)
	g.emitParams(vals)
	t := g.Quads.NewTemp()
	g.Quads.Emit("ALLOC_OBJ", e.Class, "", t)
	g.Quads.Emit("CALL_CONSTRUCTOR", e.Class, strconv.Itoa(len(e.Args)), t)
	return t
}

func (g *TACGen) VisitAssign(e *ast.Assign) interface{} {
	v := g.eval(e.Value)
	g.Quads.Emit("=", v, "", e.Name)
	return e.Name
}

// VisitIndexAssign lowers `A[e] = v` to `[]= v, e, A`, per spec.md §4.3.
func (g *TACGen) VisitIndexAssign(e *ast.IndexAssign) interface{} {
	arr := g.eval(e.Array)
	idx := g.eval(e.Index)
	val := g.eval(e.Value)
	g.Quads.Emit("[]=", val, idx, arr)
	return val
}

// VisitPropertyAssign lowers `obj.name = value` to a SET_FIELD, carrying
// the same `Class.name` encoding as VisitProperty.
func (g *TACGen) VisitPropertyAssign(e *ast.PropertyAssign) interface{} {
	obj := g.eval(e.Object)
	val := g.eval(e.Value)
	g.Quads.Emit("SET_FIELD", obj, g.classOf(e.Object)+"."+e.Name, val)
	return val
}
