package sqlgen

import (
	"fmt"
	"strings"
)

// Select describes a SELECT over a base table and its joins.
type Select struct {
	Table    string
	Alias    string
	Distinct bool
	Columns  []Column
	Joins    []Join
	Where    *WhereClause
	OrderBy  []OrderBy
	Limit    *int
	Offset   *int
}

// Column is a selected column. As names the result column.
type Column struct {
	Table string
	Name  string
	As    string
}

// OrderBy represents an ORDER BY clause. An empty Table orders by a result
// column alias.
type OrderBy struct {
	Table     string
	Field     string
	Direction string // "ASC" or "DESC"
}

// BaseName returns the alias of the base table.
func (s *Select) BaseName() string {
	if s.Alias != "" {
		return s.Alias
	}
	return s.Table
}

// GenerateSelect renders sel.
func (d *dialect) GenerateSelect(sel *Select) *Query {
	argIndex := 1
	sql, args := d.buildSelect(sel, &argIndex)
	return &Query{SQL: sql, Args: args}
}

// GenerateCount renders a COUNT(*) over the rows sel would return.
func (d *dialect) GenerateCount(sel *Select) *Query {
	inner := *sel
	inner.OrderBy = nil
	if !inner.Distinct && len(inner.Columns) > 1 {
		inner.Columns = inner.Columns[:1]
	}
	argIndex := 1
	sql, args := d.buildSelect(&inner, &argIndex)
	return &Query{
		SQL:  fmt.Sprintf("SELECT COUNT(*) FROM (%s) %s", sql, d.quote("subquery")),
		Args: args,
	}
}

func (d *dialect) buildSelect(sel *Select, argIndex *int) (string, []interface{}) {
	var parts []string
	var args []interface{}

	// SELECT columns
	keyword := "SELECT"
	if sel.Distinct {
		keyword = "SELECT DISTINCT"
	}
	if len(sel.Columns) == 0 {
		parts = append(parts, fmt.Sprintf("%s %s.*", keyword, d.quote(sel.BaseName())))
	} else {
		cols := make([]string, len(sel.Columns))
		for i, col := range sel.Columns {
			cols[i] = d.column(col.Table, col.Name)
			if col.As != "" && col.As != col.Name {
				cols[i] += " AS " + d.quote(col.As)
			}
		}
		parts = append(parts, keyword+" "+strings.Join(cols, ", "))
	}

	// FROM table
	from := "FROM " + d.quote(sel.Table)
	if sel.Alias != "" && sel.Alias != sel.Table {
		from += " " + d.quote(sel.Alias)
	}
	parts = append(parts, from)

	// JOIN clauses
	for _, join := range sel.Joins {
		joinSQL, joinArgs := d.buildJoin(join, argIndex)
		parts = append(parts, joinSQL)
		args = append(args, joinArgs...)
	}

	// WHERE clause
	if sel.Where != nil && !sel.Where.IsEmpty() {
		whereSQL, whereArgs := d.buildWhereRecursive(sel.Where, argIndex)
		if whereSQL != "" {
			parts = append(parts, "WHERE "+whereSQL)
			args = append(args, whereArgs...)
		}
	}

	// ORDER BY
	if len(sel.OrderBy) > 0 {
		orderParts := make([]string, len(sel.OrderBy))
		for i, ob := range sel.OrderBy {
			direction := "ASC"
			if strings.EqualFold(ob.Direction, "DESC") {
				direction = "DESC"
			}
			orderParts[i] = fmt.Sprintf("%s %s", d.column(ob.Table, ob.Field), direction)
		}
		parts = append(parts, "ORDER BY "+strings.Join(orderParts, ", "))
	}

	// LIMIT
	hasOffset := sel.Offset != nil && *sel.Offset > 0
	if sel.Limit != nil {
		parts = append(parts, "LIMIT "+d.placeholder(*argIndex))
		args = append(args, *sel.Limit)
		(*argIndex)++
	} else if hasOffset && d.maxLimit != "" {
		parts = append(parts, "LIMIT "+d.maxLimit)
	}

	// OFFSET
	if hasOffset {
		parts = append(parts, "OFFSET "+d.placeholder(*argIndex))
		args = append(args, *sel.Offset)
		(*argIndex)++
	}

	return strings.Join(parts, " "), args
}
