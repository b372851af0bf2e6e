package symboltable

import "fmt"

// Scope owns an insertion-ordered local symbol map, a link to its
// parent (nil at Global), and a canonical-key-indexed set of children.
// The canonical key is the contract that ties the analyzer and the TAC
// generator together: both switch `current_table` by the same string.
type Scope struct {
	Name     string
	Parent   *Scope
	Children []*Scope
	childMap map[string]*Scope

	order []string
	elems map[string]*Symbol
}

// NewGlobal constructs the root scope.
func NewGlobal() *Scope {
	return &Scope{
		Name:     "Global",
		childMap: map[string]*Scope{},
		elems:    map[string]*Symbol{},
	}
}

// Insert adds a symbol to this scope. Returns false without overwriting
// if the identifier already exists locally — the sole mechanism
// preventing redeclaration, per spec.md §4.1.
func (s *Scope) Insert(sym *Symbol) bool {
	if _, exists := s.elems[sym.Identifier]; exists {
		return false
	}
	s.elems[sym.Identifier] = sym
	s.order = append(s.order, sym.Identifier)
	return true
}

// LookupLocal resolves an identifier only within this scope.
func (s *Scope) LookupLocal(name string) (*Symbol, bool) {
	sym, ok := s.elems[name]
	return sym, ok
}

// LookupGlobal walks from this scope to the root, stopping at the first
// match; Global is always the final fallback.
func (s *Scope) LookupGlobal(name string) (*Symbol, bool) {
	for cur := s; cur != nil; cur = cur.Parent {
		if sym, ok := cur.elems[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// Symbols returns this scope's local symbols in insertion order.
func (s *Scope) Symbols() []*Symbol {
	out := make([]*Symbol, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.elems[name])
	}
	return out
}

// CreateChild constructs a child scope keyed by the given canonical
// name. Creating two children with the same key fails — the analyzer is
// responsible for making keys unique by embedding source line numbers.
func (s *Scope) CreateChild(key string) (*Scope, bool) {
	if _, exists := s.childMap[key]; exists {
		return nil, false
	}
	child := &Scope{
		Name:     key,
		Parent:   s,
		childMap: map[string]*Scope{},
		elems:    map[string]*Symbol{},
	}
	s.Children = append(s.Children, child)
	s.childMap[key] = child
	return child, true
}

// Child looks up a child scope by its canonical key.
func (s *Scope) Child(key string) (*Scope, bool) {
	c, ok := s.childMap[key]
	return c, ok
}

// AddClassMember attaches a field/method/constructor record to the named
// class symbol's Members map, walking from this scope via LookupGlobal.
// Duplicate members fail.
func (s *Scope) AddClassMember(className string, member *Symbol) bool {
	cls, ok := s.LookupGlobal(className)
	if !ok || cls.Kind != KindClass {
		return false
	}
	if cls.Members == nil {
		cls.Members = map[string]*Symbol{}
	}
	if _, exists := cls.Members[member.Identifier]; exists {
		return false
	}
	cls.Members[member.Identifier] = member
	return true
}

// GetClassMember walks the class's parent-class chain until the member
// is found or the chain ends.
func (s *Scope) GetClassMember(className, memberName string) (*Symbol, bool) {
	cls, ok := s.LookupGlobal(className)
	for ok && cls.Kind == KindClass {
		if cls.Members != nil {
			if m, found := cls.Members[memberName]; found {
				return m, true
			}
		}
		if cls.ParentClass == "" {
			break
		}
		cls, ok = s.LookupGlobal(cls.ParentClass)
	}
	return nil, false
}

// InheritanceCycle reports whether extending className with parentName
// would create a cycle in the parent_class chain, walking from
// parentName back up. Resolves the Open Question in spec.md §9: cycles
// are diagnosed rather than silently followed, which would otherwise
// infinite-loop GetClassMember.
func (s *Scope) InheritanceCycle(className, parentName string) bool {
	seen := map[string]bool{className: true}
	cur := parentName
	for cur != "" {
		if seen[cur] {
			return true
		}
		seen[cur] = true
		sym, ok := s.LookupGlobal(cur)
		if !ok || sym.Kind != KindClass {
			return false
		}
		cur = sym.ParentClass
	}
	return false
}

// Canonical scope-key builders, the "contract" named in spec.md §4.1 —
// both the analyzer and the TAC generator must produce byte-identical
// keys for the same lexical construct.

func FunctionKey(name string) string       { return fmt.Sprintf("function_%s", name) }
func ClassKey(name string) string          { return fmt.Sprintf("class_%s", name) }
func IfKey(line int) string                { return fmt.Sprintf("if_%d", line) }
func ElseKey(line int) string              { return fmt.Sprintf("else_%d", line) }
func WhileKey(line int) string             { return fmt.Sprintf("while_%d", line) }
func DoWhileKey(line int) string           { return fmt.Sprintf("doWhile_%d", line) }
func ForKey(line int) string               { return fmt.Sprintf("for_%d", line) }
func ForeachKey(line int) string           { return fmt.Sprintf("foreach_%d", line) }
func TryKey(line int) string               { return fmt.Sprintf("try_%d", line) }
func CatchKey(line int) string             { return fmt.Sprintf("catch_%d", line) }
func CaseKey(line, index int) string       { return fmt.Sprintf("case_%d_%d", line, index) }
func DefaultKey(line int) string           { return fmt.Sprintf("default_%d", line) }
