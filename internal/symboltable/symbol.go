// Package symboltable implements the Symbol Table: a tree of scopes
// rooted at Global, carrying symbol records for variables, functions,
// methods, constructors, classes, and fields, per spec.md §3/§4.1.
package symboltable

// Kind classifies a Symbol.
type Kind string

const (
	KindVariable    Kind = "variable"
	KindFunction    Kind = "function"
	KindMethod      Kind = "method"
	KindConstructor Kind = "constructor"
	KindClass       Kind = "class"
	KindField       Kind = "field"
)

// Param is one formal parameter of a callable.
type Param struct {
	Name string
	Base string
	Rank int
}

// Symbol is one declared identifier's record. Base is one of "integer",
// "boolean", "string", "null", "exception", a class name, or "" meaning
// void for function returns.
type Symbol struct {
	Identifier string
	Base       string
	Rank       int
	Scope      string
	Line       int
	Mutable    bool
	Kind       Kind

	// Callables only.
	Params     []Param
	ReturnBase string
	ReturnRank int

	// Classes only.
	ParentClass       string
	HasConstructor    bool
	ConstructorParams []Param
	Members           map[string]*Symbol

	// Assigned by the analyzer at declaration time: the stack-frame byte
	// offset relative to $fp for every variable, constant or parameter
	// declared outside the Global scope, per spec.md §9's "local frame
	// offsets" open question.
	Offset int
	// HasOffset distinguishes "offset 0 assigned" from "never assigned".
	HasOffset bool
}

// IsArray reports whether the symbol's type has rank >= 1.
func (s *Symbol) IsArray() bool { return s.Rank > 0 }
