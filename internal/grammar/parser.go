// internal/grammar/parser.go
package grammar

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"command-generator/internal/common/errors"
)

// Grammar files are line oriented:
//
//	; comment
//	$command = go to the {place} : goToLocation(?place)
//	$command [2] = $fetch and deliver it to {person} : deliverToPerson($fetch, ?person)
//	$fetch = fetch the {object o} : fetchObject(?o)
//
// The left-hand side names the production's category with an optional integer
// weight. The surface template mixes literal words, $category non-terminal
// references and {category} / {category var} wildcards. The semantic template
// after the colon is a prefix application skeleton whose holes are ?var
// wildcard references and $category / $N child references.

// Parse reads a grammar from r. The source name is used in error messages.
func Parse(r io.Reader, source string) (*Model, error) {
	model := newModel(source)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		line = scrubNonPrintable(line)
		if line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "#") {
			continue
		}

		prod, err := parseProductionLine(line, source, lineNo)
		if err != nil {
			return nil, err
		}
		model.add(prod)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.NewGrammarSyntaxError(source, lineNo, fmt.Sprintf("read error: %v", err))
	}

	if len(model.order) == 0 {
		return nil, errors.NewGrammarSyntaxError(source, lineNo, "grammar declares no productions")
	}
	return model, nil
}

// LoadFile reads a grammar from disk.
func LoadFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewGrammarSyntaxError(path, 0, fmt.Sprintf("open grammar file: %v", err))
	}
	defer f.Close()
	return Parse(f, path)
}

// Some grammar files ship with byte order markers or stray control bytes.
func scrubNonPrintable(line string) string {
	return strings.Map(func(r rune) rune {
		if r == '\t' {
			return ' '
		}
		if unicode.IsControl(r) || !unicode.IsPrint(r) {
			return -1
		}
		return r
	}, line)
}

func parseProductionLine(line, source string, lineNo int) (*Production, error) {
	if !strings.HasPrefix(line, "$") {
		return nil, errors.NewGrammarSyntaxError(source, lineNo, "production must start with a $category")
	}

	eq := strings.Index(line, "=")
	if eq < 0 {
		return nil, errors.NewGrammarSyntaxError(source, lineNo, "missing '=' between category and template")
	}

	category, weight, err := parseLHS(strings.TrimSpace(line[:eq]), source, lineNo)
	if err != nil {
		return nil, err
	}

	rhs := strings.TrimSpace(line[eq+1:])
	colon := strings.Index(rhs, ":")
	if colon < 0 {
		return nil, errors.NewGrammarSyntaxError(source, lineNo, "missing ':' before semantic template")
	}
	surface := strings.TrimSpace(rhs[:colon])
	semantic := strings.TrimSpace(rhs[colon+1:])
	if surface == "" {
		return nil, errors.NewGrammarSyntaxError(source, lineNo, "empty surface template")
	}
	if semantic == "" {
		return nil, errors.NewGrammarSyntaxError(source, lineNo, "empty semantic template")
	}

	symbols, err := parseSurface(surface, source, lineNo)
	if err != nil {
		return nil, err
	}

	term, err := parseSemantic(semantic, source, lineNo)
	if err != nil {
		return nil, err
	}

	prod := &Production{
		Category: category,
		Weight:   weight,
		Line:     lineNo,
		Symbols:  symbols,
		Semantic: term,
	}

	if err := checkWildcardVariables(prod, source); err != nil {
		return nil, err
	}
	return prod, nil
}

func parseLHS(lhs, source string, lineNo int) (category string, weight int, err error) {
	weight = 1
	if open := strings.Index(lhs, "["); open >= 0 {
		close := strings.Index(lhs, "]")
		if close < open {
			return "", 0, errors.NewGrammarSyntaxError(source, lineNo, "unclosed weight annotation")
		}
		w, convErr := strconv.Atoi(strings.TrimSpace(lhs[open+1 : close]))
		if convErr != nil || w < 1 {
			return "", 0, errors.NewGrammarSyntaxError(source, lineNo, "weight annotation must be a positive integer")
		}
		weight = w
		lhs = strings.TrimSpace(lhs[:open])
	}

	category = strings.TrimPrefix(lhs, "$")
	if !isName(category) {
		return "", 0, errors.NewGrammarSyntaxError(source, lineNo, fmt.Sprintf("invalid category name %q", lhs))
	}
	return category, weight, nil
}

// parseSurface tokenizes the surface template. Wildcard braces may contain a
// space ({object o}), so tokens cannot come from a plain Fields split.
func parseSurface(surface, source string, lineNo int) ([]Symbol, error) {
	var symbols []Symbol
	i := 0
	for i < len(surface) {
		switch {
		case surface[i] == ' ':
			i++
		case surface[i] == '{':
			end := strings.IndexByte(surface[i:], '}')
			if end < 0 {
				return nil, errors.NewGrammarSyntaxError(source, lineNo, "unclosed wildcard brace")
			}
			sym, err := parseWildcard(surface[i+1:i+end], source, lineNo)
			if err != nil {
				return nil, err
			}
			symbols = append(symbols, sym)
			i += end + 1
		default:
			j := i
			for j < len(surface) && surface[j] != ' ' && surface[j] != '{' {
				j++
			}
			word := surface[i:j]
			if strings.HasPrefix(word, "$") {
				name := strings.TrimPrefix(word, "$")
				if !isName(name) {
					return nil, errors.NewGrammarSyntaxError(source, lineNo, fmt.Sprintf("invalid non-terminal reference %q", word))
				}
				symbols = append(symbols, Symbol{Kind: KindNonTerminal, Category: name})
			} else {
				symbols = append(symbols, Symbol{Kind: KindTerminal, Text: word})
			}
			i = j
		}
	}
	if len(symbols) == 0 {
		return nil, errors.NewGrammarSyntaxError(source, lineNo, "empty surface template")
	}
	return symbols, nil
}

func parseWildcard(body, source string, lineNo int) (Symbol, error) {
	fields := strings.Fields(body)
	switch len(fields) {
	case 1:
		if !isName(fields[0]) {
			return Symbol{}, errors.NewGrammarSyntaxError(source, lineNo, fmt.Sprintf("invalid wildcard category %q", fields[0]))
		}
		// Variable name defaults to the category name.
		return Symbol{Kind: KindWildcard, Category: fields[0], Variable: fields[0]}, nil
	case 2:
		if !isName(fields[0]) || !isName(fields[1]) {
			return Symbol{}, errors.NewGrammarSyntaxError(source, lineNo, fmt.Sprintf("invalid wildcard %q", body))
		}
		return Symbol{Kind: KindWildcard, Category: fields[0], Variable: fields[1]}, nil
	default:
		return Symbol{}, errors.NewGrammarSyntaxError(source, lineNo, fmt.Sprintf("wildcard must be {category} or {category var}, got %q", body))
	}
}

// checkWildcardVariables rejects a variable name bound to two different
// wildcard categories within one production. Repeating the same
// category/variable pair is co-reference and stays legal.
func checkWildcardVariables(p *Production, source string) error {
	byVariable := map[string]string{}
	for _, s := range p.Wildcards() {
		if prev, ok := byVariable[s.Variable]; ok && prev != s.Category {
			return errors.NewDuplicateWildcardVariableError(s.Variable, prev, s.Category, p.Line)
		}
		byVariable[s.Variable] = s.Category
	}
	return nil
}

func isName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}

// ==========================
// Semantic template parser
// ==========================

type semanticParser struct {
	input  string
	pos    int
	source string
	line   int
}

func parseSemantic(input, source string, lineNo int) (*Term, error) {
	p := &semanticParser{input: input, source: source, line: lineNo}
	term, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	p.skipSpaces()
	if p.pos != len(p.input) {
		return nil, p.errorf("unexpected trailing input %q", p.input[p.pos:])
	}
	return term, nil
}

func (p *semanticParser) errorf(format string, args ...interface{}) error {
	return errors.NewGrammarSyntaxError(p.source, p.line, fmt.Sprintf("semantic template: "+format, args...))
}

func (p *semanticParser) skipSpaces() {
	for p.pos < len(p.input) && p.input[p.pos] == ' ' {
		p.pos++
	}
}

func (p *semanticParser) parseTerm() (*Term, error) {
	p.skipSpaces()
	if p.pos >= len(p.input) {
		return nil, p.errorf("unexpected end of template")
	}

	switch p.input[p.pos] {
	case '?':
		p.pos++
		name := p.readName()
		if name == "" {
			return nil, p.errorf("'?' must be followed by a variable name")
		}
		return &Term{Kind: TermVariable, Variable: name}, nil
	case '$':
		p.pos++
		name := p.readName()
		if name == "" {
			return nil, p.errorf("'$' must be followed by a category name or child index")
		}
		if idx, err := strconv.Atoi(name); err == nil {
			if idx < 1 {
				return nil, p.errorf("child index must be >= 1, got $%d", idx)
			}
			return &Term{Kind: TermChild, Index: idx}, nil
		}
		return &Term{Kind: TermChild, Category: name}, nil
	}

	name := p.readName()
	if name == "" {
		return nil, p.errorf("unexpected character %q", p.input[p.pos])
	}

	p.skipSpaces()
	if p.pos < len(p.input) && p.input[p.pos] == '(' {
		p.pos++
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		return &Term{Kind: TermApplication, Functor: name, Args: args}, nil
	}
	return &Term{Kind: TermConstant, Text: name}, nil
}

func (p *semanticParser) parseArgs() ([]*Term, error) {
	var args []*Term
	p.skipSpaces()
	if p.pos < len(p.input) && p.input[p.pos] == ')' {
		p.pos++
		return args, nil
	}
	for {
		arg, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		p.skipSpaces()
		if p.pos >= len(p.input) {
			return nil, p.errorf("unclosed argument list")
		}
		switch p.input[p.pos] {
		case ',':
			p.pos++
		case ')':
			p.pos++
			return args, nil
		default:
			return nil, p.errorf("expected ',' or ')', got %q", p.input[p.pos])
		}
	}
}

func (p *semanticParser) readName() string {
	start := p.pos
	for p.pos < len(p.input) {
		r, size := utf8.DecodeRuneInString(p.input[p.pos:])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			break
		}
		p.pos += size
	}
	return p.input[start:p.pos]
}
