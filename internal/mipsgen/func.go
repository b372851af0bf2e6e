package mipsgen

import (
	"strconv"

	"github.com/compiscript/compiscript/internal/quad"
	"github.com/compiscript/compiscript/internal/regalloc"
	"github.com/compiscript/compiscript/internal/symboltable"
)

// findFunctionScope locates the scope the analyzer created for a
// function or method by name, searching function_<name> at every
// nesting level (methods nest under class_<Class> rather than directly
// under Global).
func (g *Generator) findFunctionScope(name string) *symboltable.Scope {
	if g.global == nil {
		return nil
	}
	if s, ok := g.global.Child(symboltable.FunctionKey(name)); ok {
		return s
	}
	var walk func(s *symboltable.Scope) *symboltable.Scope
	walk = func(s *symboltable.Scope) *symboltable.Scope {
		for _, c := range s.Children {
			if found, ok := c.Child(symboltable.FunctionKey(name)); ok {
				return found
			}
			if found := walk(c); found != nil {
				return found
			}
		}
		return nil
	}
	return walk(g.global)
}

// computeFrameSize sums 4 bytes per local/parameter the analyzer
// assigned a frame offset to, on top of the fixed 8-byte $fp/$ra save
// area, per spec.md §4.5.
func computeFrameSize(scope *symboltable.Scope) int {
	size := 8
	if scope == nil {
		return size
	}
	for _, sym := range scope.Symbols() {
		if sym.HasOffset && sym.Offset+4 > size {
			size = sym.Offset + 4
		}
	}
	return size
}

// lowerFunc renders one FUNC...endfunc span: label, prologue (frame
// allocation, $fp/$ra save, first four parameters spilled from
// $a0-$a3), body, and a trailing epilogue as a fallback for paths that
// fall off the end of a non-void function without an explicit return.
func (g *Generator) lowerFunc(span []quad.Quad) {
	head := span[0] // FUNC name, paramCount, ...
	name := head.Arg1

	g.funcName = name
	g.funcScope = g.findFunctionScope(name)
	g.regs = regalloc.NewWithSize(g.tempCount, g.savedCount)
	frameSize := computeFrameSize(g.funcScope)
	g.regs.SetSpillBase(frameSize)

	g.emit(name + ":")
	g.emit("\taddi $sp, $sp, -" + itoa(frameSize))
	g.emit("\tsw $fp, 0($sp)")
	g.emit("\tsw $ra, 4($sp)")
	g.emit("\tmove $fp, $sp")

	i := 1
	var params []quad.Quad
	for i < len(span) && span[i].Op == "param" {
		params = append(params, span[i])
		i++
	}
	for idx, p := range params {
		if idx >= 4 {
			break
		}
		if g.funcScope != nil {
			if sym, ok := g.funcScope.LookupLocal(p.Arg1); ok && sym.HasOffset {
				g.emit("\tsw $a" + itoa(idx) + ", " + itoa(sym.Offset) + "($fp)")
			}
		}
	}

	for i < len(span) {
		q := span[i]
		if q.Op == "endfunc" {
			break
		}
		if q.Op == "FUNC" {
			nested := findSpanEnd(span, i)
			g.lowerFunc(span[i:nested])
			i = nested
			continue
		}
		g.lower(q)
		i++
	}

	g.emitEpilogue()
	g.funcScope = nil
	g.funcName = ""
}

func findSpanEnd(quads []quad.Quad, start int) int {
	depth := 1
	i := start + 1
	for i < len(quads) && depth > 0 {
		if quads[i].Op == "FUNC" {
			depth++
		}
		if quads[i].Op == "endfunc" {
			depth--
		}
		i++
	}
	return i
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
