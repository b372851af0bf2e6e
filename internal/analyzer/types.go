// Package analyzer implements the Semantic Analyzer: a tree visitor that
// builds the symbol-table tree, infers expression types with array rank,
// and records typed diagnostics per spec.md §4.2.
package analyzer

// Type is an expression's (base, rank) pair, per spec.md §4.2.
type Type struct {
	Base string
	Rank int
}

// Unknown is the propagated type of a failed inference: any mismatch
// diagnoses exactly once and returns Unknown so a single violation never
// cascades into many, per spec.md §4.2.
var Unknown = Type{}

// Void is a function's return type when no annotation is given.
var Void = Type{}

func isUnknown(t Type) bool { return t.Base == "" && t.Rank == 0 }

func integer() Type { return Type{Base: "integer"} }
func boolean() Type { return Type{Base: "boolean"} }
func str() Type     { return Type{Base: "string"} }
func null() Type    { return Type{Base: "null"} }

func (t Type) isInt() bool     { return t.Base == "integer" && t.Rank == 0 }
func (t Type) isBool() bool    { return t.Base == "boolean" && t.Rank == 0 }
func (t Type) isString() bool  { return t.Base == "string" && t.Rank == 0 }
func (t Type) isArray() bool   { return t.Rank > 0 }
func (t Type) elementOf() Type { return Type{Base: t.Base, Rank: t.Rank - 1} }

func sameBaseAndRank(a, b Type) bool { return a.Base == b.Base && a.Rank == b.Rank }
