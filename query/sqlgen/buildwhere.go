// Package sqlgen provides WHERE clause building logic.
package sqlgen

import (
	"fmt"
	"strings"
)

// buildWhereRecursive builds a WHERE clause with support for nested conditions
func (d *dialect) buildWhereRecursive(where *WhereClause, argIndex *int) (string, []interface{}) {
	if where == nil || where.IsEmpty() {
		return "", nil
	}

	var parts []string
	var args []interface{}

	// Process direct conditions
	for _, cond := range where.Conditions {
		condSQL, condArgs := d.buildCondition(cond, argIndex)
		if condSQL != "" {
			parts = append(parts, condSQL)
			args = append(args, condArgs...)
		}
	}

	// Process nested groups (recursive)
	for _, group := range where.Groups {
		groupSQL, groupArgs := d.buildWhereRecursive(group, argIndex)
		if groupSQL != "" {
			// Wrap in parentheses for precedence (NOT is already handled inside buildWhereRecursive)
			parts = append(parts, fmt.Sprintf("(%s)", groupSQL))
			args = append(args, groupArgs...)
		}
	}

	if len(parts) == 0 {
		return "", nil
	}

	// Join with operator (AND/OR)
	op := "AND"
	if strings.EqualFold(where.Operator, "OR") {
		op = "OR"
	}

	result := strings.Join(parts, " "+op+" ")

	// Apply NOT to the entire clause if needed
	if where.IsNot {
		result = "NOT (" + result + ")"
	}

	return result, args
}

// buildCondition builds a single condition
func (d *dialect) buildCondition(cond Condition, argIndex *int) (string, []interface{}) {
	var args []interface{}
	var sql string
	col := d.column(cond.Table, cond.Field)

	switch cond.Operator {
	case "=", "!=", ">", "<", ">=", "<=":
		sql = fmt.Sprintf("%s %s %s", col, cond.Operator, d.placeholder(*argIndex))
		args = append(args, cond.Value)
		(*argIndex)++

	case "IN", "NOT IN":
		if sub, ok := cond.Value.(*Select); ok {
			subSQL, subArgs := d.buildSelect(sub, argIndex)
			sql = fmt.Sprintf("%s %s (%s)", col, cond.Operator, subSQL)
			args = append(args, subArgs...)
			break
		}
		values, _ := cond.Value.([]interface{})
		if len(values) == 0 {
			// Nothing is IN an empty list; everything is NOT IN it.
			if cond.Operator == "IN" {
				sql = "1 = 0"
			} else {
				sql = "1 = 1"
			}
			break
		}
		placeholders := make([]string, len(values))
		for i := range values {
			placeholders[i] = d.placeholder(*argIndex)
			args = append(args, values[i])
			(*argIndex)++
		}
		sql = fmt.Sprintf("%s %s (%s)", col, cond.Operator, strings.Join(placeholders, ", "))

	case "LIKE", "NOT LIKE":
		sql = fmt.Sprintf("%s %s %s%s", col, cond.Operator, d.placeholder(*argIndex), d.likeEscape)
		args = append(args, cond.Value)
		(*argIndex)++

	case "ILIKE":
		sql = fmt.Sprintf("UPPER(%s) LIKE UPPER(%s)%s", col, d.placeholder(*argIndex), d.likeEscape)
		args = append(args, cond.Value)
		(*argIndex)++

	case "IS NULL":
		sql = fmt.Sprintf("%s IS NULL", col)

	case "IS NOT NULL":
		sql = fmt.Sprintf("%s IS NOT NULL", col)
	}

	return sql, args
}

// EscapeLike escapes LIKE wildcards so value matches literally.
func EscapeLike(value string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(value)
}
