package compiler

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/satishbabariya/multilingual-go/internal/debug"
	"github.com/satishbabariya/multilingual-go/query/ast"
	"github.com/satishbabariya/multilingual-go/query/optimizer"
	"github.com/satishbabariya/multilingual-go/query/sqlgen"
)

// PKer is implemented by values that compare as their primary key, such as
// loaded records.
type PKer interface {
	PK() any
}

// AddFilter ANDs node into the query's WHERE clause. Multi-valued joins made
// by one call are shared within it but never with joins of earlier calls.
func (q *Query) AddFilter(node ast.Node) error {
	if node == nil {
		return nil
	}
	reuse := map[string]bool{}
	used := map[string]bool{}
	return q.compileNode(node, false, reuse, used, q.where)
}

// AddExclude ANDs the negation of node into the WHERE clause.
func (q *Query) AddExclude(node ast.Node) error {
	if node == nil {
		return nil
	}
	return q.AddFilter(ast.Not(node))
}

func (q *Query) compileNode(node ast.Node, negated bool, reuse, used map[string]bool, where *sqlgen.WhereClause) error {
	switch n := node.(type) {
	case *ast.Condition:
		return q.compileCondition(n, negated, reuse, used, where)
	case *ast.Group:
		return q.compileGroup(n, negated, reuse, used, where)
	default:
		return fmt.Errorf("%w: unsupported node %T", ErrCompilationFailed, node)
	}
}

func (q *Query) compileGroup(g *ast.Group, negated bool, reuse, used map[string]bool, where *sqlgen.WhereClause) error {
	clause := sqlgen.NewWhereClause()
	switch g.Operator {
	case ast.OpOR:
		clause.SetOperator("OR")
	case ast.OpAND, ast.OpNOT, "":
	default:
		return fmt.Errorf("%w: unknown logical operator %q", ErrCompilationFailed, g.Operator)
	}
	if g.Operator == ast.OpNOT {
		clause.SetNot(!g.Negated)
	} else {
		clause.SetNot(g.Negated)
	}
	negated = negated != clause.IsNot

	if g.Operator != ast.OpOR {
		for _, child := range g.Children {
			if err := q.compileNode(child, negated, reuse, used, clause); err != nil {
				return err
			}
		}
	} else {
		snapshot := copySet(reuse)
		for _, child := range g.Children {
			before := q.plan.RefCounts()
			branchReuse := copySet(snapshot)
			branchUsed := map[string]bool{}
			if err := q.compileNode(child, negated, branchReuse, branchUsed, clause); err != nil {
				return err
			}
			q.plan.PromoteUnused(before, branchUsed)
			for a := range branchUsed {
				used[a] = true
				reuse[a] = true
			}
		}
	}

	if !clause.IsEmpty() {
		where.AddGroup(clause)
	}
	return nil
}

func copySet(s map[string]bool) map[string]bool {
	out := make(map[string]bool, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

func (q *Query) compileCondition(c *ast.Condition, negated bool, reuse, used map[string]bool, where *sqlgen.WhereClause) error {
	res, err := q.SetupJoins(JoinRequest{
		Names:           c.Path,
		DupeMultis:      true,
		AllowMany:       !negated,
		AllowExplicitFK: true,
		CanReuse:        reuse,
	})
	if err != nil {
		var multi *MultiJoinError
		if negated && errors.As(err, &multi) {
			return q.splitExclude(c, where)
		}
		return err
	}

	joins := res.Joins
	for _, a := range joins[1:] {
		reuse[a] = true
		used[a] = true
	}

	value := normalizeValue(c.Value)

	if c.Operator == ast.OpIsNull && value == true && !negated && len(joins) > 1 {
		q.plan.PromoteChain(joins[1:])
	}

	alias, col := q.trim(res, &joins)

	cond, err := buildCondition(alias, col, c.Operator, value)
	if err != nil {
		return err
	}

	if !negated {
		where.AddCondition(cond)
		return nil
	}

	q.plan.PromoteChain(joins[1:])
	guard, ok := q.nullGuard(joins, alias, col, res, c.Operator, value)
	if !ok {
		where.AddCondition(cond)
		return nil
	}
	pair := sqlgen.NewWhereClause()
	pair.AddCondition(cond)
	pair.AddCondition(guard)
	where.AddGroup(pair)
	return nil
}

// trim drops trailing joins whose only use would be to compare a column that
// is already available on the join's left side.
func (q *Query) trim(res *Resolution, joins *[]string) (string, string) {
	list := *joins
	alias := list[len(list)-1]
	col := res.Target.Column
	for len(list) > 1 {
		a, ok := q.plan.Lookup(alias)
		if !ok || a.Conn.Extra != nil || a.Conn.Column != col {
			break
		}
		q.plan.Unref(alias)
		alias, col = a.Conn.LHS, a.Conn.LHSColumn
		list = list[:len(list)-1]
	}
	*joins = list
	return alias, col
}

// nullGuard returns the IS NOT NULL condition a negated comparison needs so
// rows missing the joined value are not excluded by SQL's NULL logic.
func (q *Query) nullGuard(joins []string, alias, col string, res *Resolution, op ast.ComparisonOperator, value any) (sqlgen.Condition, bool) {
	if op == ast.OpIsNull {
		return sqlgen.Condition{}, false
	}
	if len(joins) > 1 {
		for _, name := range joins[1:] {
			a, ok := q.plan.Lookup(name)
			if ok && a.Type == sqlgen.LeftOuter {
				return sqlgen.Condition{Table: name, Field: a.Conn.Column, Operator: "IS NOT NULL"}, true
			}
		}
		return sqlgen.Condition{}, false
	}
	if op == ast.OpIn && isEmptyList(value) {
		return sqlgen.Condition{}, false
	}
	if res.Target.Nullable || (res.Field != nil && res.Field.Nullable && res.Field.Column == col) {
		return sqlgen.Condition{Table: alias, Field: col, Operator: "IS NOT NULL"}, true
	}
	return sqlgen.Condition{}, false
}

// splitExclude rewrites an excluded condition over a multi-valued relation
// into "pk NOT IN (rows matching the condition)".
func (q *Query) splitExclude(c *ast.Condition, where *sqlgen.WhereClause) error {
	sub := bare(q.registry, q.model)
	sub.classifier = q.classifier
	sub.language = q.language
	if err := sub.AddFilter(c); err != nil {
		return err
	}
	pk := q.model.PK().Column
	sel := &sqlgen.Select{
		Table:   q.model.Table,
		Columns: []sqlgen.Column{{Table: sub.plan.Base(), Name: pk}},
		Joins:   optimizer.NewOptimizer("").OptimizeJoins(sub.plan),
		Where:   sub.where,
	}
	debug.Debug("compiler: split exclude into subquery", "model", q.model.Name, "path", c.Path)
	where.AddCondition(sqlgen.Condition{Table: q.plan.Base(), Field: pk, Operator: "IN", Value: sel})
	return nil
}

func normalizeValue(v any) any {
	if pk, ok := v.(PKer); ok {
		return pk.PK()
	}
	return v
}

func isEmptyList(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.IsValid() && (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) && rv.Len() == 0
}

func toList(v any) ([]interface{}, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, fmt.Errorf("%w: expected a list, got %T", ErrInvalidLookup, v)
	}
	out := make([]interface{}, rv.Len())
	for i := range out {
		item := rv.Index(i).Interface()
		if pk, ok := item.(PKer); ok {
			item = pk.PK()
		}
		out[i] = item
	}
	return out, nil
}

func buildCondition(alias, col string, op ast.ComparisonOperator, value any) (sqlgen.Condition, error) {
	cond := sqlgen.Condition{Table: alias, Field: col}
	switch op {
	case ast.OpEquals:
		if value == nil {
			cond.Operator = "IS NULL"
			return cond, nil
		}
		cond.Operator = "="
	case ast.OpNotEquals:
		if value == nil {
			cond.Operator = "IS NOT NULL"
			return cond, nil
		}
		cond.Operator = "!="
	case ast.OpGreaterThan:
		cond.Operator = ">"
	case ast.OpLessThan:
		cond.Operator = "<"
	case ast.OpGreaterOrEqual:
		cond.Operator = ">="
	case ast.OpLessOrEqual:
		cond.Operator = "<="
	case ast.OpIn, ast.OpNotIn:
		list, err := toList(value)
		if err != nil {
			return cond, err
		}
		cond.Operator = "IN"
		if op == ast.OpNotIn {
			cond.Operator = "NOT IN"
		}
		cond.Value = list
		return cond, nil
	case ast.OpContains, ast.OpIContains, ast.OpStartsWith, ast.OpEndsWith:
		s, ok := value.(string)
		if !ok {
			return cond, fmt.Errorf("%w: %s needs a string, got %T", ErrInvalidLookup, op, value)
		}
		s = sqlgen.EscapeLike(s)
		cond.Operator = "LIKE"
		switch op {
		case ast.OpContains:
			s = "%" + s + "%"
		case ast.OpIContains:
			cond.Operator = "ILIKE"
			s = "%" + s + "%"
		case ast.OpStartsWith:
			s += "%"
		case ast.OpEndsWith:
			s = "%" + s
		}
		cond.Value = s
		return cond, nil
	case ast.OpIsNull:
		b, ok := value.(bool)
		if !ok {
			return cond, fmt.Errorf("%w: isnull needs a bool, got %T", ErrInvalidLookup, value)
		}
		cond.Operator = "IS NULL"
		if !b {
			cond.Operator = "IS NOT NULL"
		}
		return cond, nil
	default:
		return cond, fmt.Errorf("%w: unknown operator %q", ErrInvalidLookup, op)
	}
	cond.Value = value
	return cond, nil
}
