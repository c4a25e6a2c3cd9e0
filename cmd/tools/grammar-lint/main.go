// cmd/tools/grammar-lint/main.go
package main

import (
	"flag"
	"fmt"
	"os"

	"command-generator/internal/grammar"
	"command-generator/internal/knowledge"
)

// grammar-lint checks a grammar file (and optionally its knowledge base) for
// the load-time defects the generator would refuse to run with: syntax
// errors, undeclared symbols, duplicate wildcard variables, unresolved
// semantic references and empty knowledge categories.
func main() {
	grammarPath := flag.String("grammar", "", "path to the grammar file (required)")
	knowledgePath := flag.String("knowledge", "", "path to the knowledge-base file (optional)")
	flag.Parse()

	if *grammarPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -grammar is required")
		flag.Usage()
		os.Exit(2)
	}

	model, err := grammar.LoadFile(*grammarPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FAIL %s\n  %v\n", *grammarPath, err)
		os.Exit(1)
	}

	var kb *knowledge.Base
	if *knowledgePath != "" {
		kb, err = knowledge.Load(*knowledgePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FAIL %s\n  %v\n", *knowledgePath, err)
			os.Exit(1)
		}
	}

	// kb may be nil; Validate then skips the inventory checks.
	var inv grammar.Inventory
	if kb != nil {
		inv = kb
	}
	if err := model.Validate(inv); err != nil {
		fmt.Fprintf(os.Stderr, "FAIL %s\n  %v\n", *grammarPath, err)
		os.Exit(1)
	}

	fmt.Printf("OK %s\n", *grammarPath)
	fmt.Printf("  start category: $%s\n", model.Start())
	fmt.Printf("  categories:     %d\n", len(model.Categories()))
	for _, c := range model.Categories() {
		fmt.Printf("    $%-20s %d productions\n", c, len(model.Productions(c)))
	}
	if kb != nil {
		fmt.Printf("  knowledge base: %d categories\n", len(kb.Categories()))
		for _, c := range model.WildcardCategories() {
			fmt.Printf("    {%s}%*s%d entities\n", c, 22-len(c), "", kb.Count(c))
		}
	}
}
