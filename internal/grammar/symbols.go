// internal/grammar/symbols.go
package grammar

// SymbolKind tags the three kinds of token a surface template is built from.
type SymbolKind int

const (
	KindTerminal SymbolKind = iota
	KindNonTerminal
	KindWildcard
)

// Symbol is one element of a production's surface template. Only the fields
// for its kind are set: Text for terminals, Category for non-terminals,
// Category+Variable for wildcards.
type Symbol struct {
	Kind     SymbolKind
	Text     string
	Category string
	Variable string
}

// TermKind tags the node kinds of a semantic template.
type TermKind int

const (
	// TermApplication is a functor applied to an argument list.
	TermApplication TermKind = iota
	// TermVariable references a wildcard binding by variable name (?var).
	TermVariable
	// TermChild references a non-terminal child, either the unique child of a
	// category ($category) or positionally ($N, 1-based over non-terminal
	// children).
	TermChild
	// TermConstant is a bare literal argument.
	TermConstant
)

// Term is a node of a production's semantic template. The template is a
// skeleton with holes; composition fills variable holes with bound entities
// and child holes with the child derivations' composed forms.
type Term struct {
	Kind     TermKind
	Functor  string
	Args     []*Term
	Variable string
	Category string
	Index    int
	Text     string
}

// Production is one rule of a non-terminal category: an ordered surface
// template plus the semantic template isomorphic to it.
type Production struct {
	Category string
	Weight   int
	Line     int
	Symbols  []Symbol
	Semantic *Term
}

// Wildcards returns the production's wildcard symbols in surface order.
func (p *Production) Wildcards() []Symbol {
	var out []Symbol
	for _, s := range p.Symbols {
		if s.Kind == KindWildcard {
			out = append(out, s)
		}
	}
	return out
}

// NonTerminals returns the production's non-terminal symbols in surface order.
func (p *Production) NonTerminals() []Symbol {
	var out []Symbol
	for _, s := range p.Symbols {
		if s.Kind == KindNonTerminal {
			out = append(out, s)
		}
	}
	return out
}
