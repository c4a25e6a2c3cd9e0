// internal/grammar/model.go
package grammar

import (
	"fmt"
	"sort"

	"command-generator/internal/common/errors"
)

// Model is the loaded rule set. It is constructed once at startup and is
// immutable afterwards, so it may be shared across concurrent generation
// calls without locking.
type Model struct {
	source      string
	start       string
	order       []string
	productions map[string][]*Production
}

func newModel(source string) *Model {
	return &Model{
		source:      source,
		productions: make(map[string][]*Production),
	}
}

func (m *Model) add(p *Production) {
	if _, ok := m.productions[p.Category]; !ok {
		m.order = append(m.order, p.Category)
		if m.start == "" {
			// The first category declared in the file is the start category.
			m.start = p.Category
		}
	}
	m.productions[p.Category] = append(m.productions[p.Category], p)
}

// Source returns the name the grammar was loaded from.
func (m *Model) Source() string { return m.source }

// Start returns the start category.
func (m *Model) Start() string { return m.start }

// Productions returns the productions of a category, nil if undeclared.
func (m *Model) Productions(category string) []*Production {
	return m.productions[category]
}

// Categories enumerates all declared categories, sorted.
func (m *Model) Categories() []string {
	out := make([]string, 0, len(m.productions))
	for c := range m.productions {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// WildcardCategories enumerates every category used by a wildcard anywhere in
// the grammar, sorted.
func (m *Model) WildcardCategories() []string {
	seen := map[string]bool{}
	for _, prods := range m.productions {
		for _, p := range prods {
			for _, w := range p.Wildcards() {
				seen[w.Category] = true
			}
		}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Inventory is the knowledge-base view the grammar needs for validation.
type Inventory interface {
	Count(category string) int
}

// Validate runs the load-time consistency checks: every referenced
// non-terminal has productions, every wildcard category has entities, and
// every semantic template hole is bound within its own production. Any
// violation is fatal; generation must not proceed against an inconsistent
// grammar.
func (m *Model) Validate(inv Inventory) error {
	for _, category := range m.order {
		for _, p := range m.productions[category] {
			for _, s := range p.NonTerminals() {
				if len(m.productions[s.Category]) == 0 {
					return errors.NewUndeclaredSymbolError(s.Category, p.Line)
				}
			}
			if inv != nil {
				variables := map[string]map[string]bool{}
				for _, w := range p.Wildcards() {
					if inv.Count(w.Category) == 0 {
						return errors.NewUnknownCategoryError(w.Category)
					}
					if variables[w.Category] == nil {
						variables[w.Category] = map[string]bool{}
					}
					variables[w.Category][w.Variable] = true
				}
				// Distinct variables of one category bind distinct entities,
				// so the inventory must be at least that large.
				for _, w := range p.Wildcards() {
					if n := len(variables[w.Category]); n > inv.Count(w.Category) {
						return errors.NewInsufficientEntitiesError(w.Category, n, inv.Count(w.Category))
					}
				}
			}
			if err := m.checkSemantic(p, p.Semantic); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkSemantic verifies every hole of a semantic template resolves within
// its own production: ?var to a wildcard variable, $category to exactly one
// non-terminal child, $N to a valid child position.
func (m *Model) checkSemantic(p *Production, t *Term) error {
	switch t.Kind {
	case TermVariable:
		for _, w := range p.Wildcards() {
			if w.Variable == t.Variable {
				return nil
			}
		}
		return errors.NewUnresolvedVariableError("?"+t.Variable, p.Category, p.Line)
	case TermChild:
		children := p.NonTerminals()
		if t.Index > 0 {
			if t.Index > len(children) {
				return errors.NewUnresolvedVariableError(fmt.Sprintf("$%d", t.Index), p.Category, p.Line)
			}
			return nil
		}
		matches := 0
		for _, c := range children {
			if c.Category == t.Category {
				matches++
			}
		}
		if matches != 1 {
			// Zero is an unbound hole; more than one is ambiguous and must use $N.
			return errors.NewUnresolvedVariableError("$"+t.Category, p.Category, p.Line)
		}
		return nil
	case TermApplication:
		for _, arg := range t.Args {
			if err := m.checkSemantic(p, arg); err != nil {
				return err
			}
		}
		return nil
	default:
		return nil
	}
}
