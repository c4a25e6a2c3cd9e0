// internal/serializer/serializer.go

// Package serializer renders a derivation and its logical form into the
// output pair handed to dataset writers.
package serializer

import (
	"strings"

	"command-generator/internal/generator"
	"command-generator/internal/grammar"
	"command-generator/internal/models"
	"command-generator/internal/semantics"
)

// Options control surface-string normalization. Whitespace between tokens is
// always collapsed to single spaces.
type Options struct {
	Lowercase bool
	// TrailingPunctuation is appended to the utterance when non-empty,
	// e.g. ".".
	TrailingPunctuation string
}

type Serializer struct {
	opts Options
}

func New(opts Options) *Serializer {
	return &Serializer{opts: opts}
}

// Render produces the (utterance, logicalForm) pair as a unit; neither half
// is ever emitted without the other.
func (s *Serializer) Render(d *generator.Derivation, lf *semantics.LogicalForm) models.Pair {
	return models.Pair{
		Utterance:   s.renderSurface(d),
		LogicalForm: RenderLogicalForm(lf),
	}
}

func (s *Serializer) renderSurface(d *generator.Derivation) string {
	var tokens []string
	collect(d, &tokens)

	utterance := strings.Join(tokens, " ")
	utterance = strings.Join(strings.Fields(utterance), " ")
	if s.opts.Lowercase {
		utterance = strings.ToLower(utterance)
	}
	if s.opts.TrailingPunctuation != "" {
		utterance += s.opts.TrailingPunctuation
	}
	return utterance
}

// collect walks the derivation in surface order: terminal text and bound
// entity text become tokens, non-terminals recurse into their child.
func collect(d *generator.Derivation, tokens *[]string) {
	child := 0
	for _, sym := range d.Production.Symbols {
		switch sym.Kind {
		case grammar.KindTerminal:
			*tokens = append(*tokens, sym.Text)
		case grammar.KindWildcard:
			if entity, ok := d.Binding(sym.Variable); ok {
				*tokens = append(*tokens, entity.Name)
			}
		case grammar.KindNonTerminal:
			collect(d.Children[child], tokens)
			child++
		}
	}
}

// RenderLogicalForm writes the canonical prefix notation,
// functor(arg1, arg2, ...), with arguments in the semantic template's
// declared order.
func RenderLogicalForm(lf *semantics.LogicalForm) string {
	var sb strings.Builder
	writeForm(&sb, lf)
	return sb.String()
}

func writeForm(sb *strings.Builder, lf *semantics.LogicalForm) {
	if lf.Kind == semantics.FormConstant {
		sb.WriteString(lf.Constant)
		return
	}
	sb.WriteString(lf.Functor)
	sb.WriteByte('(')
	for i, arg := range lf.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		writeForm(sb, arg)
	}
	sb.WriteByte(')')
}
