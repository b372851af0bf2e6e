package mipsgen

import (
	"fmt"
	"strings"

	"github.com/compiscript/compiscript/internal/quad"
)

// lower expands one quadruple into one or more assembly lines, per the
// opcode table in spec.md §4.5.
func (g *Generator) lower(q quad.Quad) {
	switch q.Op {
	case "+", "-":
		if q.Arg2 == "" {
			g.lowerUnaryArith(q)
			return
		}
		g.lowerArith(q)
	case "*", "/", "%":
		g.lowerArith(q)
	case "<", "<=", ">", ">=":
		g.lowerRelational(q)
	case "==", "!=":
		g.lowerEquality(q)
	case "&&", "||":
		g.lowerLogical(q)
	case "!":
		g.lowerNot(q)
	case "=":
		v := g.materialize(q.Arg1)
		g.maybeStoreNamed(q.Result, v)
	case "[]":
		g.lowerIndexRead(q)
	case "[]=":
		g.lowerIndexWrite(q)
	case "alloc":
		reg := g.regs.GetRegFor(q.Result)
		g.emit(fmt.Sprintf("\t# alloc %s elements", q.Arg1))
		g.emit(fmt.Sprintf("\tli %s, 0", reg))
		g.maybeStoreNamed(q.Result, reg)
	case "label":
		g.emit(q.Result + ":")
	case "if":
		reg := g.materialize(q.Arg1)
		g.emit(fmt.Sprintf("\tbne %s, $zero, %s", reg, q.Result))
	case "goto":
		g.emit("\tj " + q.Arg1)
	case "param":
		v := g.materialize(q.Arg1)
		g.pendingArgs = append(g.pendingArgs, v)
	case "CALL_FUNC":
		g.lowerCallFunc(q)
	case "CALL_METHOD":
		g.lowerCallMethod(q)
	case "ALLOC_OBJ":
		g.lowerAllocObj(q)
	case "CALL_CONSTRUCTOR":
		g.lowerCallConstructor(q)
	case "GET_FIELD":
		g.lowerGetField(q)
	case "SET_FIELD":
		g.lowerSetField(q)
	case "RETURN":
		if q.Arg1 != "" {
			reg := g.materialize(q.Arg1)
			g.emit("\tmove $v0, " + reg)
		}
		g.emitEpilogue()
	case "CLASS":
		if q.Arg2 == "inherits" {
			g.emit(fmt.Sprintf("\t# class %s inherits %s", q.Arg1, q.Result))
		} else {
			g.emit(fmt.Sprintf("\t# class %s", q.Arg1))
		}
	case "INHERIT":
		g.emit(fmt.Sprintf("\t# inherit %s", q.Arg1))
	case "ENDCLASS":
		g.emit("\t# end class")
	case "FIELD":
		g.emit(fmt.Sprintf("\t# field %s", q.Arg1))
	case "FIELD_CONST":
		g.emit(fmt.Sprintf("\t# const field %s", q.Arg1))
	case "ON_EXCEPTION":
		g.emit(fmt.Sprintf("\t# on exception -> %s", q.Result))
	case "EXC_ASSIGN":
		g.emit(fmt.Sprintf("\t# exception bound to %s", q.Result))
	case "PRINT":
		g.lowerPrint(q)
	default:
		g.emit("\t# unrecognized op " + q.Op)
	}
}

func (g *Generator) lowerArith(q quad.Quad) {
	l := g.materialize(q.Arg1)
	r := g.materialize(q.Arg2)
	dst := g.regs.GetRegFor(q.Result)
	switch q.Op {
	case "+":
		g.emit(fmt.Sprintf("\tadd %s, %s, %s", dst, l, r))
	case "-":
		g.emit(fmt.Sprintf("\tsub %s, %s, %s", dst, l, r))
	case "*":
		g.emit(fmt.Sprintf("\tmul %s, %s, %s", dst, l, r))
	case "/":
		g.emit(fmt.Sprintf("\tdiv %s, %s", l, r))
		g.emit(fmt.Sprintf("\tmflo %s", dst))
	case "%":
		g.emit(fmt.Sprintf("\tdiv %s, %s", l, r))
		g.emit(fmt.Sprintf("\tmfhi %s", dst))
	}
	g.maybeStoreNamed(q.Result, dst)
}

func (g *Generator) lowerUnaryArith(q quad.Quad) {
	v := g.materialize(q.Arg1)
	dst := g.regs.GetRegFor(q.Result)
	if q.Op == "-" {
		g.emit(fmt.Sprintf("\tsub %s, $zero, %s", dst, v))
	} else {
		g.emit(fmt.Sprintf("\tmove %s, %s", dst, v))
	}
	g.maybeStoreNamed(q.Result, dst)
}

// lowerRelational expands <,<=,>,>= via slt with operand swap and an
// optional xori negation, per spec.md §4.5.
func (g *Generator) lowerRelational(q quad.Quad) {
	l := g.materialize(q.Arg1)
	r := g.materialize(q.Arg2)
	dst := g.regs.GetRegFor(q.Result)
	switch q.Op {
	case "<":
		g.emit(fmt.Sprintf("\tslt %s, %s, %s", dst, l, r))
	case ">":
		g.emit(fmt.Sprintf("\tslt %s, %s, %s", dst, r, l))
	case "<=":
		g.emit(fmt.Sprintf("\tslt %s, %s, %s", dst, r, l))
		g.emit(fmt.Sprintf("\txori %s, %s, 1", dst, dst))
	case ">=":
		g.emit(fmt.Sprintf("\tslt %s, %s, %s", dst, l, r))
		g.emit(fmt.Sprintf("\txori %s, %s, 1", dst, dst))
	}
	g.maybeStoreNamed(q.Result, dst)
}

// lowerEquality expands ==,!= via xor then sltiu/sltu, per spec.md §4.5.
func (g *Generator) lowerEquality(q quad.Quad) {
	l := g.materialize(q.Arg1)
	r := g.materialize(q.Arg2)
	dst := g.regs.GetRegFor(q.Result)
	g.emit(fmt.Sprintf("\txor %s, %s, %s", dst, l, r))
	if q.Op == "==" {
		g.emit(fmt.Sprintf("\tsltiu %s, %s, 1", dst, dst))
	} else {
		g.emit(fmt.Sprintf("\tsltu %s, $zero, %s", dst, dst))
	}
	g.maybeStoreNamed(q.Result, dst)
}

func (g *Generator) lowerLogical(q quad.Quad) {
	l := g.materialize(q.Arg1)
	r := g.materialize(q.Arg2)
	dst := g.regs.GetRegFor(q.Result)
	if q.Op == "&&" {
		g.emit(fmt.Sprintf("\tand %s, %s, %s", dst, l, r))
	} else {
		g.emit(fmt.Sprintf("\tor %s, %s, %s", dst, l, r))
	}
	g.maybeStoreNamed(q.Result, dst)
}

func (g *Generator) lowerNot(q quad.Quad) {
	v := g.materialize(q.Arg1)
	dst := g.regs.GetRegFor(q.Result)
	g.emit(fmt.Sprintf("\txori %s, %s, 1", dst, v))
	g.maybeStoreNamed(q.Result, dst)
}

func (g *Generator) lowerIndexRead(q quad.Quad) {
	base := g.materialize(q.Arg1)
	idx := g.materialize(q.Arg2)
	addr := g.regs.GetRegFor("addr_" + q.Result)
	g.emit(fmt.Sprintf("\tsll %s, %s, 2", addr, idx))
	g.emit(fmt.Sprintf("\tadd %s, %s, %s", addr, addr, base))
	dst := g.regs.GetRegFor(q.Result)
	g.emit(fmt.Sprintf("\tlw %s, 0(%s)", dst, addr))
	g.maybeStoreNamed(q.Result, dst)
}

func (g *Generator) lowerIndexWrite(q quad.Quad) {
	val := g.materialize(q.Arg1)
	idx := g.materialize(q.Arg2)
	base := g.materialize(q.Result)
	addr := g.regs.GetRegFor("addr_write_" + q.Result)
	g.emit(fmt.Sprintf("\tsll %s, %s, 2", addr, idx))
	g.emit(fmt.Sprintf("\tadd %s, %s, %s", addr, addr, base))
	g.emit(fmt.Sprintf("\tsw %s, 0(%s)", val, addr))
}

// flushArgsToRegs places pending call arguments per the calling
// convention of spec.md §4.5: the first four in $a0-$a3, the rest on
// the stack at 4+4*(i-4) bytes above $sp.
func (g *Generator) flushArgsToRegs() {
	for i, v := range g.pendingArgs {
		if i < 4 {
			g.emit(fmt.Sprintf("\tmove $a%d, %s", i, v))
		} else {
			off := 4 + 4*(i-4)
			g.emit(fmt.Sprintf("\tsw %s, %d($sp)", v, off))
		}
	}
	g.pendingArgs = nil
}

func (g *Generator) lowerCallFunc(q quad.Quad) {
	g.flushArgsToRegs()
	g.emit("\tjal " + q.Arg1)
	if q.Result != "" {
		dst := g.regs.GetRegFor(q.Result)
		g.emit(fmt.Sprintf("\tmove %s, $v0", dst))
		g.maybeStoreNamed(q.Result, dst)
	}
}

// lowerCallMethod resolves `obj.method` to the bare method name for its
// jal target. Methods are not class-qualified in the FUNC label space,
// so two classes defining the same method name collide — a known
// limitation inherited from keeping methods in the same label namespace
// as free functions.
func (g *Generator) lowerCallMethod(q quad.Quad) {
	parts := strings.SplitN(q.Arg1, ".", 2)
	method := parts[len(parts)-1]
	g.flushArgsToRegs()
	g.emit("\tjal " + method)
	if q.Result != "" {
		dst := g.regs.GetRegFor(q.Result)
		g.emit(fmt.Sprintf("\tmove %s, $v0", dst))
		g.maybeStoreNamed(q.Result, dst)
	}
}

func (g *Generator) lowerCallConstructor(q quad.Quad) {
	g.emit(fmt.Sprintf("\t# CALL_CONSTRUCTOR %s (constructor labels are not class-qualified; known limitation)", q.Arg1))
	g.flushArgsToRegs()
	g.emit("\tjal constructor")
	if q.Result != "" {
		dst := g.regs.GetRegFor(q.Result)
		g.emit(fmt.Sprintf("\tmove %s, $v0", dst))
		g.maybeStoreNamed(q.Result, dst)
	}
}

func (g *Generator) lowerPrint(q quad.Quad) {
	val := q.Result
	if isStringLiteral(val) {
		label := g.internString(val)
		g.emit("\tla $a0, " + label)
		g.emit("\tli $v0, 4")
		g.emit("\tsyscall")
	} else {
		reg := g.materialize(val)
		g.emit("\tmove $a0, " + reg)
		g.emit("\tli $v0, 1")
		g.emit("\tsyscall")
	}
	g.emit("\tli $v0, 11")
	g.emit("\tli $a0, 10")
	g.emit("\tsyscall")
}

func (g *Generator) emitEpilogue() {
	g.emit("\tlw $fp, 0($sp)")
	g.emit("\tlw $ra, 4($sp)")
	g.emit("\taddi $sp, $sp, " + itoa(computeFrameSize(g.funcScope)))
	g.emit("\tjr $ra")
}
