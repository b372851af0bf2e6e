package tacgen

import (
	"github.com/compiscript/compiscript/internal/ast"
	"github.com/compiscript/compiscript/internal/symboltable"
)

// classOf returns the static class name of an expression, or "" if it is
// not a rank-0 class-typed expression. It trusts the symbol table the
// analyzer already validated rather than re-inferring from scratch.
func (g *TACGen) classOf(e ast.Expr) string {
	switch v := e.(type) {
	case *ast.This:
		return g.currentClass
	case *ast.Identifier:
		if sym, ok := g.current.LookupGlobal(v.Name); ok && sym.Rank == 0 {
			return sym.Base
		}
	case *ast.Property:
		owner := g.classOf(v.Object)
		if owner == "" {
			return ""
		}
		if m, ok := g.current.GetClassMember(owner, v.Name); ok && m.Rank == 0 {
			return m.Base
		}
	case *ast.MethodCall:
		owner := g.classOf(v.Object)
		if owner == "" {
			return ""
		}
		if m, ok := g.current.GetClassMember(owner, v.Method); ok && m.ReturnRank == 0 {
			return m.ReturnBase
		}
	case *ast.Call:
		if sym, ok := g.current.LookupGlobal(v.Callee); ok && sym.ReturnRank == 0 {
			return sym.ReturnBase
		}
	case *ast.New:
		return v.Class
	}
	return ""
}

// funcReturnsVoid reports whether a free function has no return type.
func (g *TACGen) funcReturnsVoid(name string) bool {
	sym, ok := g.current.LookupGlobal(name)
	return !ok || sym.ReturnBase == ""
}

// methodReturnsVoid reports whether a method on className has no return
// type. An unresolved method is treated as void so callers skip minting
// an unused result temporary.
func (g *TACGen) methodReturnsVoid(className, method string) bool {
	m, ok := g.current.GetClassMember(className, method)
	return !ok || m.Kind != symboltable.KindMethod || m.ReturnBase == ""
}
