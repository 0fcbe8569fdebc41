// Package ast defines the filter tree and ordering terms queries are built from.
package ast

import (
	"fmt"
	"strings"
)

// PathSeparator separates relation hops in a field path ("category.name_pl").
const PathSeparator = "."

// Node is a filter tree node: a Condition or a Group.
type Node interface {
	node()
}

// Condition compares the field at Path with Value.
type Condition struct {
	Path     []string
	Operator ComparisonOperator
	Value    interface{}
}

func (*Condition) node() {}

// String renders the condition in expression syntax.
func (c *Condition) String() string {
	return fmt.Sprintf("%s %s %#v", strings.Join(c.Path, PathSeparator), c.Operator, c.Value)
}

// Group combines children with a logical operator, optionally negated.
type Group struct {
	Operator LogicalOperator
	Children []Node
	Negated  bool
}

func (*Group) node() {}

// ComparisonOperator represents comparison operators
type ComparisonOperator string

const (
	OpEquals         ComparisonOperator = "equals"
	OpNotEquals      ComparisonOperator = "not"
	OpGreaterThan    ComparisonOperator = "gt"
	OpLessThan       ComparisonOperator = "lt"
	OpGreaterOrEqual ComparisonOperator = "gte"
	OpLessOrEqual    ComparisonOperator = "lte"
	OpIn             ComparisonOperator = "in"
	OpNotIn          ComparisonOperator = "notIn"
	OpContains       ComparisonOperator = "contains"
	OpIContains      ComparisonOperator = "icontains"
	OpStartsWith     ComparisonOperator = "startsWith"
	OpEndsWith       ComparisonOperator = "endsWith"
	OpIsNull         ComparisonOperator = "isNull"
)

var lookupNames = map[string]ComparisonOperator{
	"exact":      OpEquals,
	"equals":     OpEquals,
	"not":        OpNotEquals,
	"gt":         OpGreaterThan,
	"lt":         OpLessThan,
	"gte":        OpGreaterOrEqual,
	"lte":        OpLessOrEqual,
	"in":         OpIn,
	"notin":      OpNotIn,
	"contains":   OpContains,
	"icontains":  OpIContains,
	"startswith": OpStartsWith,
	"endswith":   OpEndsWith,
	"isnull":     OpIsNull,
}

// ParseOperator maps a lookup name ("contains", "startswith", ...) to its operator.
func ParseOperator(name string) (ComparisonOperator, bool) {
	op, ok := lookupNames[strings.ToLower(name)]
	return op, ok
}

// LogicalOperator represents logical operators
type LogicalOperator string

const (
	OpAND LogicalOperator = "AND"
	OpOR  LogicalOperator = "OR"
	OpNOT LogicalOperator = "NOT"
)

// Cond builds a condition from a dotted path.
func Cond(path string, op ComparisonOperator, value interface{}) *Condition {
	return &Condition{Path: SplitPath(path), Operator: op, Value: value}
}

// Eq is shorthand for an equality condition.
func Eq(path string, value interface{}) *Condition {
	return Cond(path, OpEquals, value)
}

// Lookup builds a condition from a double-underscore lookup such as
// "category__name_pl__contains". A trailing segment naming an operator selects
// it; otherwise the comparison is equality.
func Lookup(lookup string, value interface{}) *Condition {
	parts := strings.Split(lookup, "__")
	op := OpEquals
	if len(parts) > 1 {
		if parsed, ok := ParseOperator(parts[len(parts)-1]); ok {
			op = parsed
			parts = parts[:len(parts)-1]
		}
	}
	return &Condition{Path: parts, Operator: op, Value: value}
}

// And combines nodes conjunctively.
func And(nodes ...Node) *Group {
	return &Group{Operator: OpAND, Children: nodes}
}

// Or combines nodes disjunctively.
func Or(nodes ...Node) *Group {
	return &Group{Operator: OpOR, Children: nodes}
}

// Not negates a node.
func Not(n Node) *Group {
	if g, ok := n.(*Group); ok {
		c := *g
		c.Negated = !g.Negated
		return &c
	}
	return &Group{Operator: OpAND, Children: []Node{n}, Negated: true}
}

// SplitPath splits a dotted path into segments.
func SplitPath(path string) []string {
	return strings.Split(path, PathSeparator)
}

// OrderByClause represents ordering
type OrderByClause struct {
	Field     string
	Direction SortDirection
}

// SortDirection represents sort direction
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ParseOrder parses "-category.name" style terms.
func ParseOrder(term string) OrderByClause {
	if strings.HasPrefix(term, "-") {
		return OrderByClause{Field: term[1:], Direction: SortDesc}
	}
	return OrderByClause{Field: strings.TrimPrefix(term, "+"), Direction: SortAsc}
}

// String renders the clause back to term form.
func (o OrderByClause) String() string {
	if o.Direction == SortDesc {
		return "-" + o.Field
	}
	return o.Field
}
