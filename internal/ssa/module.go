package ssa

import "strings"

// Module bundles the interners and tables every compilation stage reads
// and mutates: the string interner, type interner, constants pool,
// label table, and symbol table. The interners outlive every user.
type Module struct {
	Strings   *StringInterner
	Types     *TypeInterner
	Constants *Pool
	Labels    *LabelTable
	Symbols   *SymbolTable

	// DeclOrder records symbol names in declaration order; the
	// pipeline analyses functions in this order, so a callee is typed
	// before its caller only when it is declared first.
	DeclOrder []StringID
}

func NewModule() *Module {
	return &Module{
		Strings:   NewStringInterner(),
		Types:     NewTypeInterner(),
		Constants: NewPool(),
		Labels:    NewLabelTable(),
		Symbols:   NewSymbolTable(),
	}
}

// InternLabel interns name as a string and as a label, returning the
// label index for a LABEL operand.
func (m *Module) InternLabel(name string) uint32 {
	return m.Labels.Intern(m.Strings.Intern(name))
}

// SymbolAtLabel resolves a label index to the symbol it names, or nil.
func (m *Module) SymbolAtLabel(index uint32) *Symbol {
	return m.Symbols.Lookup(m.Labels.At(index))
}

// RangeDeclared calls f for every symbol in declaration order, falling
// back to table order when no order was recorded. It does not filter by
// symbol kind.
func (m *Module) RangeDeclared(f func(*Symbol)) {
	if len(m.DeclOrder) == 0 {
		m.Symbols.Range(f)
		return
	}
	for _, name := range m.DeclOrder {
		if sym := m.Symbols.Lookup(name); sym != nil {
			f(sym)
		}
	}
}

// Format renders every function body in IR assembly form.
func (m *Module) Format() string {
	var b strings.Builder
	m.RangeDeclared(func(sym *Symbol) {
		if sym.Kind != SymbolKindFunction {
			return
		}
		b.WriteString(sym.Body.Format(m.Strings.Get(sym.Name), m))
		b.WriteByte('\n')
	})
	return b.String()
}
