// Package quad implements the Quadruple Table: an ordered, append-only
// sequence of four-tuple TAC instructions, fresh-temporary and
// fresh-label minting, and the block-grouping transform that the MIPS
// generator consumes.
package quad

import "fmt"

// Quad is one immutable TAC instruction. Arguments are opaque strings —
// identifiers, literals, temporaries (t<n>), labels (L<n>), or "" for an
// absent operand — matching the wire shape spec.md §3 describes.
type Quad struct {
	Op     string
	Arg1   string
	Arg2   string
	Result string
}

// Table is the append-only quadruple sequence plus the counters that
// mint fresh temporaries and labels.
type Table struct {
	quads   []Quad
	tempSeq int
	lblSeq  int
}

// New returns an empty table.
func New() *Table {
	return &Table{}
}

// Emit appends one quadruple and returns its index.
func (t *Table) Emit(op, arg1, arg2, result string) int {
	t.quads = append(t.quads, Quad{Op: op, Arg1: arg1, Arg2: arg2, Result: result})
	return len(t.quads) - 1
}

// All returns the quadruples in emission order.
func (t *Table) All() []Quad {
	return t.quads
}

// Len reports how many quadruples have been emitted.
func (t *Table) Len() int { return len(t.quads) }

// NewTemp mints a fresh temporary name. Per spec.md §3, the counter
// resets at statement/function/control-structure boundaries via
// ResetTemps — callers own when that happens.
func (t *Table) NewTemp() string {
	t.tempSeq++
	return fmt.Sprintf("t%d", t.tempSeq)
}

// ResetTemps resets the temporary counter. Called at the end of each
// top-level declaration, function body, and control-flow structure so
// that temporaries never cross function boundaries.
func (t *Table) ResetTemps() {
	t.tempSeq = 0
}

// NewLabel mints a fresh, globally unique label of the form L<n>_<suffix>
// (or L<n> for an empty suffix), e.g. NewLabel("true") -> "L7_true". Uniqueness across the whole
// program (not just within one function) satisfies the "label
// uniqueness" testable property in spec.md §8.
func (t *Table) NewLabel(suffix string) string {
	t.lblSeq++
	if suffix == "" {
		return fmt.Sprintf("L%d", t.lblSeq)
	}
	return fmt.Sprintf("L%d_%s", t.lblSeq, suffix)
}

// Render formats a quadruple in "raw" mode: NNN: (op, arg1, arg2, result).
func Render(i int, q Quad) string {
	return fmt.Sprintf("%03d: (%s, %s, %s, %s)", i, q.Op, blank(q.Arg1), blank(q.Arg2), blank(q.Result))
}

func blank(s string) string {
	if s == "" {
		return "_"
	}
	return s
}

// GroupByBlocks reorders the quadruple sequence so the global prefix
// (the implicit "main") comes first, followed by one contiguous span per
// function in declaration order, each bracketed by FUNC/endfunc. Intra-
// span order is preserved — the only thing that moves is which
// contiguous spans come before which others, per spec.md §3 invariant (v)
// and §4.3 "Block grouping".
func (t *Table) GroupByBlocks() []Quad {
	var global []Quad
	var funcOrder []string
	spans := map[string][]Quad{}

	var current string
	inFunc := false

	for _, q := range t.quads {
		if q.Op == "FUNC" {
			current = fmt.Sprintf("%d:%s", len(funcOrder), q.Arg1)
			inFunc = true
			funcOrder = append(funcOrder, current)
			spans[current] = append(spans[current], q)
			continue
		}
		if q.Op == "endfunc" {
			spans[current] = append(spans[current], q)
			inFunc = false
			current = ""
			continue
		}
		if inFunc {
			spans[current] = append(spans[current], q)
		} else {
			global = append(global, q)
		}
	}

	out := make([]Quad, 0, len(t.quads))
	out = append(out, global...)
	for _, name := range funcOrder {
		out = append(out, spans[name]...)
	}
	return out
}
