// internal/semantics/logicalform.go

// Package semantics composes logical forms from derivation trees.
package semantics

// FormKind tags logical-form nodes. The tree is closed: a node is either a
// constant or a function application.
type FormKind int

const (
	FormConstant FormKind = iota
	FormApplication
)

// LogicalForm is the composed robot-intent expression. On completion it
// contains no unresolved holes: every leaf is a concrete constant.
type LogicalForm struct {
	Kind     FormKind
	Constant string
	Functor  string
	Args     []*LogicalForm
}

// NewConstant builds a constant leaf.
func NewConstant(name string) *LogicalForm {
	return &LogicalForm{Kind: FormConstant, Constant: name}
}

// NewApplication builds a function application node.
func NewApplication(functor string, args ...*LogicalForm) *LogicalForm {
	return &LogicalForm{Kind: FormApplication, Functor: functor, Args: args}
}

// Constants collects every constant in the form, in declared argument order.
func (f *LogicalForm) Constants() []string {
	if f.Kind == FormConstant {
		return []string{f.Constant}
	}
	var out []string
	for _, arg := range f.Args {
		out = append(out, arg.Constants()...)
	}
	return out
}
