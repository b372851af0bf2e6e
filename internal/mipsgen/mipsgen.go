// Package mipsgen implements the MIPS Generator: it consumes the
// block-grouped quadruple list, the symbol table, and per-scope frame
// offsets, and emits a MIPS-syntax assembly listing per spec.md §4.5.
// Opcode expansion is ported from original_source/program/mips_generator.py.
package mipsgen

import (
	"fmt"
	"strings"

	"github.com/compiscript/compiscript/internal/quad"
	"github.com/compiscript/compiscript/internal/regalloc"
	"github.com/compiscript/compiscript/internal/symboltable"
)

// Generator walks a grouped quadruple list once and renders assembly
// text. It is stateful only for the duration of one Generate call.
type Generator struct {
	global *symboltable.Scope
	regs   *regalloc.Allocator

	tempCount, savedCount int // register pool shape; reapplied per function by lowerFunc

	text []string

	strLits   map[string]string // literal -> label
	strLitSeq int

	funcScope *symboltable.Scope // scope of the function currently being emitted
	funcName  string

	pendingArgs []string // materialized call-argument registers awaiting a CALL_*
	usesHeap    bool     // set by lowerAllocObj; gates emitting the __heap region
}

// New builds a Generator over the symbol table the analyzer produced,
// using MIPS's full 10 $t / 8 $s register pool.
func New(global *symboltable.Scope) *Generator {
	return NewWithRegisters(global, 10, 8)
}

// NewWithRegisters builds a Generator whose register pool is sized by
// tempCount/savedCount, the compiscript.yaml `registers.tempCount` and
// `registers.savedCount` knobs (internal/config.Config.Registers).
func NewWithRegisters(global *symboltable.Scope, tempCount, savedCount int) *Generator {
	return &Generator{
		global:     global,
		regs:       regalloc.NewWithSize(tempCount, savedCount),
		tempCount:  tempCount,
		savedCount: savedCount,
		strLits:    map[string]string{},
	}
}

// Generate renders the full .data/.text listing for a block-grouped
// quadruple sequence.
func (g *Generator) Generate(quads []quad.Quad) string {
	hasMain := false
	for _, q := range quads {
		if q.Op == "FUNC" && q.Arg1 == "main" {
			hasMain = true
		}
	}

	var globalPrefix []quad.Quad
	i := 0
	for i < len(quads) && quads[i].Op != "FUNC" {
		globalPrefix = append(globalPrefix, quads[i])
		i++
	}

	g.emit("_start:")
	for _, q := range globalPrefix {
		g.lower(q)
	}
	if hasMain {
		g.emit("\tjal main")
	}
	g.emit("\tli $v0, 10")
	g.emit("\tsyscall")

	for i < len(quads) {
		q := quads[i]
		if q.Op == "FUNC" {
			end := i + 1
			depth := 1
			for end < len(quads) && depth > 0 {
				if quads[end].Op == "FUNC" {
					depth++
				}
				if quads[end].Op == "endfunc" {
					depth--
				}
				end++
			}
			g.lowerFunc(quads[i : end])
			i = end
			continue
		}
		g.lower(q)
		i++
	}

	var sb strings.Builder
	sb.WriteString(".data\n")
	for _, name := range g.dataNames() {
		sb.WriteString(fmt.Sprintf("%s: .word 0\n", name))
	}
	if g.usesHeap {
		sb.WriteString(fmt.Sprintf("%s: .word 0\n", heapPtrLabel))
		sb.WriteString(fmt.Sprintf("%s: .space %d\n", heapLabel, heapSize))
	}
	for lit, label := range g.strLits {
		sb.WriteString(fmt.Sprintf("%s: .asciiz %s\n", label, lit))
	}
	sb.WriteString(".text\n")
	for _, line := range g.text {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String()
}

// dataNames returns every Global-scope variable name in declaration
// order, for the .data section.
func (g *Generator) dataNames() []string {
	if g.global == nil {
		return nil
	}
	var names []string
	for _, sym := range g.global.Symbols() {
		if sym.Kind == symboltable.KindVariable {
			names = append(names, sym.Identifier)
		}
	}
	return names
}

func (g *Generator) emit(line string) { g.text = append(g.text, line) }
