package ast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// FilterLexer tokenizes filter expressions such as
// `category.name_pl contains "kat" or not (created isnull true)`.
// Path segments may also be joined with "__" as in lookups.
var FilterLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"(?:\\.|[^"\\])*"`},
	{Name: "Number", Pattern: `-?\d+(?:\.\d+)?`},
	{Name: "Ident", Pattern: `[\p{L}_][\p{L}\p{N}_]*`},
	{Name: "Operator", Pattern: `!=|>=|<=|==|=|>|<`},
	{Name: "Punct", Pattern: `[(),.\[\]]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

type orExpr struct {
	Terms []*andExpr `@@ ( ( "or" | "OR" ) @@ )*`
}

type andExpr struct {
	Terms []*unaryExpr `@@ ( ( "and" | "AND" ) @@ )*`
}

type unaryExpr struct {
	Not *unaryExpr  `  ( "not" | "NOT" ) @@`
	Sub *orExpr     `| "(" @@ ")"`
	Cmp *comparison `| @@`
}

type comparison struct {
	Path  []string `@Ident ( "." @Ident )*`
	Op    string   `@( Operator | Ident )`
	Value *literal `@@`
}

type literal struct {
	String *string  `  @String`
	Number *string  `| @Number`
	Bool   *string  `| @( "true" | "false" )`
	Null   bool     `| @"null"`
	List   *listLit `| @@`
}

type listLit struct {
	Open  bool       `@"["`
	Items []*literal `( @@ ( "," @@ )* )? "]"`
}

var filterParser = participle.MustBuild[orExpr](
	participle.Lexer(FilterLexer),
	participle.Elide("Whitespace"),
	participle.Unquote("String"),
	participle.UseLookahead(4),
)

// ParseFilter parses a textual filter expression into a filter tree.
func ParseFilter(input string) (Node, error) {
	expr, err := filterParser.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}
	return expr.node()
}

func (e *orExpr) node() (Node, error) {
	nodes := make([]Node, 0, len(e.Terms))
	for _, t := range e.Terms {
		n, err := t.node()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	if len(nodes) == 1 {
		return nodes[0], nil
	}
	return Or(nodes...), nil
}

func (e *andExpr) node() (Node, error) {
	nodes := make([]Node, 0, len(e.Terms))
	for _, t := range e.Terms {
		n, err := t.node()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	if len(nodes) == 1 {
		return nodes[0], nil
	}
	return And(nodes...), nil
}

func (e *unaryExpr) node() (Node, error) {
	switch {
	case e.Not != nil:
		n, err := e.Not.node()
		if err != nil {
			return nil, err
		}
		return Not(n), nil
	case e.Sub != nil:
		return e.Sub.node()
	default:
		return e.Cmp.node()
	}
}

var symbolOperators = map[string]ComparisonOperator{
	"=":  OpEquals,
	"==": OpEquals,
	"!=": OpNotEquals,
	">":  OpGreaterThan,
	">=": OpGreaterOrEqual,
	"<":  OpLessThan,
	"<=": OpLessOrEqual,
}

func (c *comparison) node() (Node, error) {
	op, ok := symbolOperators[c.Op]
	if !ok {
		op, ok = ParseOperator(c.Op)
	}
	if !ok {
		return nil, fmt.Errorf("invalid filter expression: unknown operator %q", c.Op)
	}
	value, err := c.Value.value()
	if err != nil {
		return nil, err
	}
	path := make([]string, 0, len(c.Path))
	for _, seg := range c.Path {
		path = append(path, strings.Split(seg, "__")...)
	}
	return &Condition{Path: path, Operator: op, Value: value}, nil
}

func (l *literal) value() (interface{}, error) {
	switch {
	case l.String != nil:
		return *l.String, nil
	case l.Number != nil:
		if i, err := strconv.ParseInt(*l.Number, 10, 64); err == nil {
			return i, nil
		}
		return strconv.ParseFloat(*l.Number, 64)
	case l.Bool != nil:
		return *l.Bool == "true", nil
	case l.List != nil:
		items := make([]interface{}, 0, len(l.List.Items))
		for _, item := range l.List.Items {
			v, err := item.value()
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return items, nil
	default:
		return nil, nil
	}
}
