// Package symbols resolves currency codes to display symbols from a table shipped with the binary.
package symbols

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/damon-houk/exchange-rates-sync/internal/domain/service"
)

//go:embed symbols.yaml
var defaultTable []byte

// Ensure Resolver implements service.SymbolResolver at compile time.
var _ service.SymbolResolver = (*Resolver)(nil)

// Resolver is an immutable code to symbol lookup
type Resolver struct {
	symbols map[string]string
}

// NewResolver builds a Resolver from the embedded symbol table
func NewResolver() (*Resolver, error) {
	return Parse(defaultTable)
}

// Parse builds a Resolver from a YAML mapping of code to symbol
func Parse(data []byte) (*Resolver, error) {
	symbols := make(map[string]string)
	if err := yaml.Unmarshal(data, &symbols); err != nil {
		return nil, fmt.Errorf("parse symbol table: %w", err)
	}
	return &Resolver{symbols: symbols}, nil
}

// Resolve returns the symbol for code, or code unchanged when it is unknown
func (r *Resolver) Resolve(code string) string {
	if symbol, ok := r.symbols[code]; ok && symbol != "" {
		return symbol
	}
	return code
}

// Len returns the number of known symbols
func (r *Resolver) Len() int {
	return len(r.symbols)
}
