package compiler

import (
	"fmt"
	"sort"
	"strings"
)

// Kind is the declared storage class of a variable.
type Kind int

const (
	KindNone Kind = iota
	KindStatic
	KindField
	KindArgument
	KindLocal
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindStatic:
		return "static"
	case KindField:
		return "field"
	case KindArgument:
		return "argument"
	case KindLocal:
		return "local"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsClassKind reports whether k lives in class scope.
func (k Kind) IsClassKind() bool {
	return k == KindStatic || k == KindField
}

// IsSubroutineKind reports whether k lives in subroutine scope.
func (k Kind) IsSubroutineKind() bool {
	return k == KindArgument || k == KindLocal
}

type Symbol struct {
	Name  string
	Type  string
	Kind  Kind
	Index int
}

type scope struct {
	vars   map[string]Symbol
	counts map[Kind]int
}

func newScope() scope {
	return scope{vars: make(map[string]Symbol), counts: make(map[Kind]int)}
}

func (s scope) define(name, typ string, kind Kind) Symbol {
	sym := Symbol{Name: name, Type: typ, Kind: kind, Index: s.counts[kind]}
	s.counts[kind]++
	s.vars[name] = sym
	return sym
}

// SymbolTable binds names to storage slots in two scopes. The class scope
// lives for the whole source unit; the subroutine scope is recreated by
// StartSubroutine. Subroutine names shadow class names.
type SymbolTable struct {
	class      scope
	subroutine scope
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{class: newScope(), subroutine: newScope()}
}

// StartSubroutine clears the subroutine scope and resets its counters.
func (s *SymbolTable) StartSubroutine() {
	s.subroutine = newScope()
}

// DefineClassVar declares a static or field. Re-declaring a name overwrites
// the earlier binding and consumes a fresh index.
func (s *SymbolTable) DefineClassVar(name, typ string, kind Kind) Symbol {
	if !kind.IsClassKind() {
		panic(fmt.Sprintf("DefineClassVar: %s is not a class-scope kind", kind))
	}
	return s.class.define(name, typ, kind)
}

// DefineSubroutineVar declares an argument or local, with the same
// overwrite behaviour as DefineClassVar.
func (s *SymbolTable) DefineSubroutineVar(name, typ string, kind Kind) Symbol {
	if !kind.IsSubroutineKind() {
		panic(fmt.Sprintf("DefineSubroutineVar: %s is not a subroutine-scope kind", kind))
	}
	return s.subroutine.define(name, typ, kind)
}

// ReserveSlot consumes the next subroutine-scope index of kind without
// binding a name. Methods use it for the implicit receiver in argument 0.
func (s *SymbolTable) ReserveSlot(kind Kind) {
	if !kind.IsSubroutineKind() {
		panic(fmt.Sprintf("ReserveSlot: %s is not a subroutine-scope kind", kind))
	}
	s.subroutine.counts[kind]++
}

// VarCount returns how many variables of kind the owning scope has declared.
func (s *SymbolTable) VarCount(kind Kind) int {
	switch {
	case kind.IsClassKind():
		return s.class.counts[kind]
	case kind.IsSubroutineKind():
		return s.subroutine.counts[kind]
	}
	return 0
}

// Lookup searches the subroutine scope first, then the class scope.
func (s *SymbolTable) Lookup(name string) (Symbol, bool) {
	if sym, ok := s.subroutine.vars[name]; ok {
		return sym, true
	}
	sym, ok := s.class.vars[name]
	return sym, ok
}

// KindOf returns KindNone for unknown names.
func (s *SymbolTable) KindOf(name string) Kind {
	if sym, ok := s.Lookup(name); ok {
		return sym.Kind
	}
	return KindNone
}

// TypeOf returns "" for unknown names.
func (s *SymbolTable) TypeOf(name string) string {
	if sym, ok := s.Lookup(name); ok {
		return sym.Type
	}
	return ""
}

// IndexOf returns -1 for unknown names.
func (s *SymbolTable) IndexOf(name string) int {
	if sym, ok := s.Lookup(name); ok {
		return sym.Index
	}
	return -1
}

func (s *SymbolTable) Exists(name string) bool {
	_, ok := s.Lookup(name)
	return ok
}

// String returns a deterministically ordered dump of the table.
func (s *SymbolTable) String() string {
	var sb strings.Builder
	writeScope := func(title string, sc scope) {
		if len(sc.vars) == 0 {
			fmt.Fprintf(&sb, "%s: (empty)\n", title)
			return
		}
		fmt.Fprintf(&sb, "%s:\n", title)
		syms := make([]Symbol, 0, len(sc.vars))
		for _, sym := range sc.vars {
			syms = append(syms, sym)
		}
		sort.Slice(syms, func(i, j int) bool {
			if syms[i].Kind != syms[j].Kind {
				return syms[i].Kind < syms[j].Kind
			}
			if syms[i].Index != syms[j].Index {
				return syms[i].Index < syms[j].Index
			}
			return syms[i].Name < syms[j].Name
		})
		for _, sym := range syms {
			fmt.Fprintf(&sb, "  %-20s  %-8s %-3d  %s\n", sym.Name, sym.Kind, sym.Index, sym.Type)
		}
	}
	writeScope("Class", s.class)
	writeScope("Subroutine", s.subroutine)
	return sb.String()
}
