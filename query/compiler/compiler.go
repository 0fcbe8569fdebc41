// Package compiler compiles translation-aware filter trees and orderings into
// SQL SELECT statements.
package compiler

import (
	"fmt"

	"github.com/satishbabariya/multilingual-go/query/ast"
	"github.com/satishbabariya/multilingual-go/query/sqlgen"
	"github.com/satishbabariya/multilingual-go/schema"
)

// Compiler builds queries over a schema registry and renders them for one
// SQL dialect.
type Compiler struct {
	registry  *schema.Registry
	generator sqlgen.Generator
}

// NewCompiler creates a new query compiler
func NewCompiler(provider string, reg *schema.Registry) *Compiler {
	return &Compiler{
		registry:  reg,
		generator: sqlgen.NewGenerator(provider),
	}
}

// Generator returns the dialect generator.
func (c *Compiler) Generator() sqlgen.Generator { return c.generator }

// Registry returns the schema registry.
func (c *Compiler) Registry() *schema.Registry { return c.registry }

// Query starts a query over the named model.
func (c *Compiler) Query(model string) (*Query, error) {
	return New(c.registry, model)
}

// Compile renders q as a SELECT.
func (c *Compiler) Compile(q *Query) (*sqlgen.Query, error) {
	return q.Compile(c.generator)
}

// CompileCount renders a COUNT over q's rows.
func (c *Compiler) CompileCount(q *Query) (*sqlgen.Query, error) {
	return q.CompileCount(c.generator)
}

// CompileExpression parses a filter expression such as
// `category.name contains "2" or title = "x"` and compiles it against model.
// lang fixes the language of unqualified translated names; nil uses the
// registry default.
func (c *Compiler) CompileExpression(model, expr string, lang any, ordering ...string) (*sqlgen.Query, error) {
	q, err := c.Query(model)
	if err != nil {
		return nil, err
	}
	if err := q.SetLanguage(lang); err != nil {
		return nil, err
	}
	if expr != "" {
		node, err := ast.ParseFilter(expr)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCompilationFailed, err)
		}
		if err := q.AddFilter(node); err != nil {
			return nil, err
		}
	}
	if len(ordering) > 0 {
		if err := q.AddOrdering(ordering...); err != nil {
			return nil, err
		}
	}
	return c.Compile(q)
}
