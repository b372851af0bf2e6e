package mipsgen

import (
	"fmt"
	"strconv"
	"strings"
)

func isTemp(name string) bool {
	if len(name) < 2 || name[0] != 't' {
		return false
	}
	for _, r := range name[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isStringLiteral(name string) bool {
	return strings.HasPrefix(name, `"`) && strings.HasSuffix(name, `"`) && len(name) >= 2
}

func (g *Generator) internString(lit string) string {
	if label, ok := g.strLits[lit]; ok {
		return label
	}
	g.strLitSeq++
	label := fmt.Sprintf("str_%d", g.strLitSeq)
	g.strLits[lit] = label
	return label
}

// materialize implements the load discipline of spec.md §4.5: literal
// integers/booleans/null get `li`'d into a fresh register, string
// literals mint a .data label and return that label directly, resident
// temporaries/variables reuse their bound register, parameters and
// locals load from their `$fp`-relative offset, and anything else is
// treated as a global loaded by name.
func (g *Generator) materialize(name string) string {
	if name == "" {
		return ""
	}
	if isStringLiteral(name) {
		return g.internString(name)
	}
	if n, err := strconv.Atoi(name); err == nil {
		reg := g.regs.GetRegFor("const_" + name)
		g.emit(fmt.Sprintf("\tli %s, %d", reg, n))
		return reg
	}
	if name == "true" || name == "false" {
		reg := g.regs.GetRegFor("const_" + name)
		v := 0
		if name == "true" {
			v = 1
		}
		g.emit(fmt.Sprintf("\tli %s, %d", reg, v))
		return reg
	}
	if name == "null" {
		reg := g.regs.GetRegFor("const_null")
		g.emit(fmt.Sprintf("\tli %s, 0", reg))
		return reg
	}

	if isTemp(name) {
		if reg, ok := g.regs.FindByContent(name); ok {
			g.regs.GetRegFor(name)
			return reg
		}
		// The LRU allocator has no lookahead (spec.md §4.4): a temporary
		// evicted before reuse has no reconstructable value. Surface the
		// gap explicitly instead of silently fabricating a wrong one.
		reg := g.regs.GetRegFor(name)
		g.emit(fmt.Sprintf("\t# %s evicted before reuse under LRU pressure", name))
		g.emit(fmt.Sprintf("\tli %s, 0", reg))
		return reg
	}

	if reg, ok := g.regs.FindByContent(name); ok {
		g.regs.GetRegFor(name)
		return reg
	}
	reg := g.regs.GetRegFor(name)
	if g.funcScope != nil {
		if sym, ok := g.funcScope.LookupLocal(name); ok && sym.HasOffset {
			g.emit(fmt.Sprintf("\tlw %s, %d($fp)", reg, sym.Offset))
			return reg
		}
	}
	g.emit(fmt.Sprintf("\tlw %s, %s", reg, name))
	return reg
}

// storeNamed writes a register's value to its home: a local's `$fp`-
// relative offset if one was assigned during analysis, else a global
// label by name.
func (g *Generator) storeNamed(name, reg string) {
	if g.funcScope != nil {
		if sym, ok := g.funcScope.LookupLocal(name); ok && sym.HasOffset {
			g.emit(fmt.Sprintf("\tsw %s, %d($fp)", reg, sym.Offset))
			return
		}
	}
	g.emit(fmt.Sprintf("\tsw %s, %s", reg, name))
}

// maybeStoreNamed is called after any op writes its result register: a
// temporary stays resident in-register (marked dirty for the
// allocator's bookkeeping), while a named variable is written through
// to its memory home immediately.
func (g *Generator) maybeStoreNamed(name, reg string) {
	if isTemp(name) {
		g.regs.MarkDirty(reg)
		return
	}
	g.storeNamed(name, reg)
}
