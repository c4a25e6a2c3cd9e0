// internal/generator/derivation.go
package generator

import (
	"command-generator/internal/grammar"
	"command-generator/internal/knowledge"
)

// Derivation is the concrete expansion of one non-terminal: the production
// chosen for it, the entity bound to each of its wildcards, and one child
// derivation per non-terminal symbol in surface order. Trees are built per
// generated example and discarded after serialization.
type Derivation struct {
	Category   string
	Production *grammar.Production
	Bindings   map[string]knowledge.Entity
	Children   []*Derivation
}

// Binding returns the entity bound to a wildcard variable in this production
// instance.
func (d *Derivation) Binding(variable string) (knowledge.Entity, bool) {
	e, ok := d.Bindings[variable]
	return e, ok
}

// ChildAt returns the n-th non-terminal child, 1-based.
func (d *Derivation) ChildAt(index int) (*Derivation, bool) {
	if index < 1 || index > len(d.Children) {
		return nil, false
	}
	return d.Children[index-1], true
}

// ChildByCategory returns the unique child of a category. The model validator
// guarantees uniqueness for every $category reference, so more than one match
// is treated the same as none.
func (d *Derivation) ChildByCategory(category string) (*Derivation, bool) {
	var found *Derivation
	for _, c := range d.Children {
		if c.Category == category {
			if found != nil {
				return nil, false
			}
			found = c
		}
	}
	if found == nil {
		return nil, false
	}
	return found, true
}

// Depth returns the length of the longest non-terminal expansion chain below
// (and including) this node's children.
func (d *Derivation) Depth() int {
	max := 0
	for _, c := range d.Children {
		if n := c.Depth() + 1; n > max {
			max = n
		}
	}
	return max
}

// Entities collects every entity bound anywhere in the tree, in surface order.
func (d *Derivation) Entities() []knowledge.Entity {
	var out []knowledge.Entity
	child := 0
	for _, s := range d.Production.Symbols {
		switch s.Kind {
		case grammar.KindWildcard:
			out = append(out, d.Bindings[s.Variable])
		case grammar.KindNonTerminal:
			out = append(out, d.Children[child].Entities()...)
			child++
		}
	}
	return out
}
