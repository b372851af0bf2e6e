package mipsgen

import (
	"fmt"
	"strings"

	"github.com/compiscript/compiscript/internal/errors"
	"github.com/compiscript/compiscript/internal/quad"
	"github.com/compiscript/compiscript/internal/symboltable"
)

// heapLabel and heapPtrLabel name the bump-allocated object region and
// its free-pointer cell. Both live in .data alongside the ordinary
// globals, emitted only when a program actually allocates an object.
const (
	heapLabel    = "__heap"
	heapPtrLabel = "__heap_ptr"
	heapSize     = 65536
)

// findClassScope locates the scope the analyzer created for a class's
// own body (class_<Name>), mirroring findFunctionScope's search: most
// classes hang directly off Global, but the fallback walk covers
// whatever nesting the parser allows.
func (g *Generator) findClassScope(name string) *symboltable.Scope {
	if g.global == nil {
		return nil
	}
	if s, ok := g.global.Child(symboltable.ClassKey(name)); ok {
		return s
	}
	var walk func(s *symboltable.Scope) *symboltable.Scope
	walk = func(s *symboltable.Scope) *symboltable.Scope {
		for _, c := range s.Children {
			if found, ok := c.Child(symboltable.ClassKey(name)); ok {
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

// classLayout computes a byte offset for every field of className,
// parent fields first so a subclass instance can be passed anywhere its
// parent is expected. Field declaration order within a class comes from
// Scope.Symbols, which preserves insertion order, so the layout is
// stable across compiler runs. Returns the field-to-offset map and the
// object's total size in bytes (minimum one word, so two zero-field
// instances never alias).
func (g *Generator) classLayout(className string) (map[string]int, int) {
	offsets := map[string]int{}
	size := 0

	var walk func(name string)
	walk = func(name string) {
		sym, ok := g.global.LookupGlobal(name)
		if !ok || sym.Kind != symboltable.KindClass {
			return
		}
		if sym.ParentClass != "" {
			walk(sym.ParentClass)
		}
		scope := g.findClassScope(name)
		if scope == nil {
			return
		}
		for _, field := range scope.Symbols() {
			if field.Kind != symboltable.KindVariable {
				continue // methods and the constructor share this scope too
			}
			if _, overridden := offsets[field.Identifier]; overridden {
				continue // already laid out by an ancestor class
			}
			offsets[field.Identifier] = size
			size += 4
		}
	}
	walk(className)

	if size == 0 {
		size = 4
	}
	return offsets, size
}

// fatalCodegen raises an invariant violation that a validated program
// should never reach: the analyzer accepted a property access the
// generator can't lay out. spec.md §7 calls for unimplemented semantics
// to fail hard rather than silently corrupt memory.
func fatalCodegen(format string, args ...interface{}) {
	panic(errors.NewKind(errors.CodegenError, 0, format, args...))
}

// lowerAllocObj bump-allocates className's instance out of __heap and
// binds its base address to q.Result, per spec.md §4.3's ALLOC_OBJ.
func (g *Generator) lowerAllocObj(q quad.Quad) {
	_, size := g.classLayout(q.Arg1)
	g.usesHeap = true

	base := g.regs.GetRegFor(q.Result)
	cursor := g.regs.GetRegFor("heap_cursor")
	g.emit(fmt.Sprintf("\t# ALLOC_OBJ %s (%d bytes)", q.Arg1, size))
	g.emit(fmt.Sprintf("\tlw %s, %s", cursor, heapPtrLabel))
	g.emit(fmt.Sprintf("\tla %s, %s", base, heapLabel))
	g.emit(fmt.Sprintf("\tadd %s, %s, %s", base, base, cursor))
	g.emit(fmt.Sprintf("\taddi %s, %s, %d", cursor, cursor, size))
	g.emit(fmt.Sprintf("\tsw %s, %s", cursor, heapPtrLabel))
	g.maybeStoreNamed(q.Result, base)
}

// splitClassField parses the "Class.field" encoding VisitProperty and
// VisitPropertyAssign emit into Arg2.
func splitClassField(arg2 string) (class, field string, ok bool) {
	idx := strings.LastIndex(arg2, ".")
	if idx < 0 {
		return "", "", false
	}
	return arg2[:idx], arg2[idx+1:], true
}

// lowerGetField loads obj.field through the object's base address plus
// its compile-time-known byte offset within className's layout.
func (g *Generator) lowerGetField(q quad.Quad) {
	class, field, ok := splitClassField(q.Arg2)
	if !ok {
		fatalCodegen("GET_FIELD %s.%s: no static class recorded for the receiver", q.Arg1, q.Arg2)
	}
	offsets, _ := g.classLayout(class)
	off, ok := offsets[field]
	if !ok {
		fatalCodegen("GET_FIELD %s.%s: %q has no field %q", q.Arg1, q.Arg2, class, field)
	}
	objAddr := g.materialize(q.Arg1)
	dst := g.regs.GetRegFor(q.Result)
	g.emit(fmt.Sprintf("\tlw %s, %d(%s)", dst, off, objAddr))
	g.maybeStoreNamed(q.Result, dst)
}

// lowerSetField stores q.Result (the value, per VisitPropertyAssign's
// quad shape) into obj.field at its static offset within className.
func (g *Generator) lowerSetField(q quad.Quad) {
	class, field, ok := splitClassField(q.Arg2)
	if !ok {
		fatalCodegen("SET_FIELD %s.%s: no static class recorded for the receiver", q.Arg1, q.Arg2)
	}
	offsets, _ := g.classLayout(class)
	off, ok := offsets[field]
	if !ok {
		fatalCodegen("SET_FIELD %s.%s: %q has no field %q", q.Arg1, q.Arg2, class, field)
	}
	objAddr := g.materialize(q.Arg1)
	val := g.materialize(q.Result)
	g.emit(fmt.Sprintf("\tsw %s, %d(%s)", val, off, objAddr))
}
