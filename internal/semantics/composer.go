// internal/semantics/composer.go
package semantics

import (
	"fmt"

	"command-generator/internal/common/errors"
	"command-generator/internal/generator"
	"command-generator/internal/grammar"
)

// Compose walks a derivation tree in lock-step with its productions' semantic
// templates and returns the fully resolved logical form. Bindings stay scoped
// to their own production instance: a ?var hole only ever sees the entities
// bound by the production that declared it, and child holes receive the
// recursively composed forms of the corresponding subtrees.
//
// Unresolved references indicate a malformed grammar and are normally caught
// by Model.Validate before any generation; Compose re-checks so a skipped
// validation still fails loudly instead of emitting a partial form.
func Compose(d *generator.Derivation) (*LogicalForm, error) {
	return substitute(d.Production.Semantic, d)
}

func substitute(t *grammar.Term, d *generator.Derivation) (*LogicalForm, error) {
	switch t.Kind {
	case grammar.TermConstant:
		return NewConstant(t.Text), nil

	case grammar.TermVariable:
		entity, ok := d.Binding(t.Variable)
		if !ok {
			return nil, errors.NewUnresolvedVariableError("?"+t.Variable, d.Category, d.Production.Line)
		}
		return NewConstant(entity.Name), nil

	case grammar.TermChild:
		child, ok := resolveChild(t, d)
		if !ok {
			return nil, errors.NewUnresolvedVariableError(childRef(t), d.Category, d.Production.Line)
		}
		return Compose(child)

	case grammar.TermApplication:
		form := &LogicalForm{Kind: FormApplication, Functor: t.Functor}
		for _, arg := range t.Args {
			resolved, err := substitute(arg, d)
			if err != nil {
				return nil, err
			}
			form.Args = append(form.Args, resolved)
		}
		return form, nil

	default:
		return nil, errors.NewUnresolvedVariableError(childRef(t), d.Category, d.Production.Line)
	}
}

func resolveChild(t *grammar.Term, d *generator.Derivation) (*generator.Derivation, bool) {
	if t.Index > 0 {
		return d.ChildAt(t.Index)
	}
	return d.ChildByCategory(t.Category)
}

func childRef(t *grammar.Term) string {
	if t.Index > 0 {
		return fmt.Sprintf("$%d", t.Index)
	}
	return "$" + t.Category
}
