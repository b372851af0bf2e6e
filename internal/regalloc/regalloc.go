// Package regalloc implements the fixed-pool LRU register allocator
// described in spec.md §4.4: ten temporary registers ($t0-$t9) and eight
// saved registers ($s0-$s7), owner-name binding, spill-to-stack
// bookkeeping, and a configurable base offset. Policy is LRU with no
// lookahead and no register classes, matching the ported
// original_source/program/register_allocator.py baseline.
package regalloc

import "fmt"

type regEntry struct {
	name    string // register name, e.g. "$t3"
	content string // bound owner name, or "" if free
	lastUse int
	dirty   bool
}

// Allocator is the fixed-size register pool.
type Allocator struct {
	pool      []*regEntry
	clock     int
	spillBase int
	stackOff  int
	spillMap  map[string]int
}

// New constructs a pool of 10 $t registers followed by 8 $s registers,
// MIPS's full complement of temporary and saved registers.
func New() *Allocator { return NewWithSize(10, 8) }

// NewWithSize constructs a pool of tempCount $t registers followed by
// savedCount $s registers, for callers (compiscript.yaml's
// registers.tempCount/savedCount) that want a narrower or wider pool
// than the MIPS-standard default. Counts are clamped to the
// architecture's 10/8 ceiling, since $t10+ and $s8+ don't exist.
func NewWithSize(tempCount, savedCount int) *Allocator {
	if tempCount > 10 {
		tempCount = 10
	}
	if savedCount > 8 {
		savedCount = 8
	}
	a := &Allocator{spillMap: map[string]int{}}
	for i := 0; i < tempCount; i++ {
		a.pool = append(a.pool, &regEntry{name: fmt.Sprintf("$t%d", i)})
	}
	for i := 0; i < savedCount; i++ {
		a.pool = append(a.pool, &regEntry{name: fmt.Sprintf("$s%d", i)})
	}
	return a
}

func (a *Allocator) touch(e *regEntry) {
	a.clock++
	e.lastUse = a.clock
}

// SetSpillBase configures the starting stack offset for spilled content,
// measured in bytes above the allocator's internal spill region.
func (a *Allocator) SetSpillBase(base int) {
	a.spillBase = base
	a.stackOff = base
}

// GetRegFor returns the register bound to name, allocating or evicting
// (LRU) as needed. A hit updates the tick; a miss binds a free slot if
// one exists, else spills the least-recently-used entry.
func (a *Allocator) GetRegFor(name string) string {
	for _, e := range a.pool {
		if e.content == name {
			a.touch(e)
			return e.name
		}
	}
	for _, e := range a.pool {
		if e.content == "" {
			e.content = name
			e.dirty = false
			a.touch(e)
			return e.name
		}
	}
	victim := a.pool[0]
	for _, e := range a.pool[1:] {
		if e.lastUse < victim.lastUse {
			victim = e
		}
	}
	a.spillEntry(victim)
	victim.content = name
	victim.dirty = false
	a.touch(victim)
	return victim.name
}

// Bind forcibly associates name with a specific register name, for a
// caller whose value already sits in a known register. The MIPS
// generator does not call it.
func (a *Allocator) Bind(regName, name string) {
	for _, e := range a.pool {
		if e.name == regName {
			e.content = name
			a.touch(e)
			return
		}
	}
}

// FindByContent returns the register currently bound to name, if any.
func (a *Allocator) FindByContent(name string) (string, bool) {
	for _, e := range a.pool {
		if e.content == name {
			return e.name, true
		}
	}
	return "", false
}

// MarkDirty flags a register's content as modified since load, updating
// its tick.
func (a *Allocator) MarkDirty(regName string) {
	for _, e := range a.pool {
		if e.name == regName {
			e.dirty = true
			a.touch(e)
			return
		}
	}
}

// FreeReg releases a register. If store is true and it held content,
// that content is spilled to the stack first.
func (a *Allocator) FreeReg(regName string, store bool) bool {
	for _, e := range a.pool {
		if e.name == regName {
			if store && e.content != "" {
				a.spillEntry(e)
			}
			e.content = ""
			e.dirty = false
			return true
		}
	}
	return false
}

// spillEntry assigns a stack slot to e's content (if it doesn't already
// have one) and marks the register free.
func (a *Allocator) spillEntry(e *regEntry) {
	if e.content == "" {
		return
	}
	if _, exists := a.spillMap[e.content]; !exists {
		a.spillMap[e.content] = a.stackOff
		a.stackOff += 4
	}
}

// Spill explicitly spills whatever register currently holds name.
func (a *Allocator) Spill(name string) {
	if reg, ok := a.FindByContent(name); ok {
		a.FreeReg(reg, true)
	}
}

// HasSpill reports whether name has a stack home.
func (a *Allocator) HasSpill(name string) bool {
	_, ok := a.spillMap[name]
	return ok
}

// GetSpillOffset returns name's stack slot offset, if any.
func (a *Allocator) GetSpillOffset(name string) (int, bool) {
	off, ok := a.spillMap[name]
	return off, ok
}
