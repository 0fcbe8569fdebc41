package sqlgen

import (
	"fmt"
	"strings"
)

// GenerateInsert renders an INSERT. When returning is set and the provider
// supports it, the named column is returned.
func (d *dialect) GenerateInsert(table string, columns []string, values []interface{}, returning string) *Query {
	var parts []string
	var args []interface{}
	argIndex := 1

	parts = append(parts, fmt.Sprintf("INSERT INTO %s", d.quote(table)))

	if len(columns) == 0 {
		if d.provider == "mysql" {
			parts = append(parts, "() VALUES ()")
		} else {
			parts = append(parts, "DEFAULT VALUES")
		}
	} else {
		quotedCols := make([]string, len(columns))
		placeholders := make([]string, len(values))
		for i, col := range columns {
			quotedCols[i] = d.quote(col)
		}
		for i := range values {
			placeholders[i] = d.placeholder(argIndex)
			args = append(args, values[i])
			argIndex++
		}
		parts = append(parts, fmt.Sprintf("(%s) VALUES (%s)", strings.Join(quotedCols, ", "), strings.Join(placeholders, ", ")))
	}

	if returning != "" && d.returning {
		parts = append(parts, "RETURNING "+d.quote(returning))
	}

	return &Query{
		SQL:  strings.Join(parts, " "),
		Args: args,
	}
}

// GenerateUpdate renders an UPDATE setting columns to values in order.
func (d *dialect) GenerateUpdate(table string, columns []string, values []interface{}, where *WhereClause) *Query {
	var parts []string
	var args []interface{}
	argIndex := 1

	parts = append(parts, fmt.Sprintf("UPDATE %s", d.quote(table)))

	setParts := make([]string, len(columns))
	for i, col := range columns {
		setParts[i] = fmt.Sprintf("%s = %s", d.quote(col), d.placeholder(argIndex))
		args = append(args, values[i])
		argIndex++
	}
	parts = append(parts, "SET "+strings.Join(setParts, ", "))

	if where != nil && !where.IsEmpty() {
		whereSQL, whereArgs := d.buildWhereRecursive(where, &argIndex)
		parts = append(parts, "WHERE "+whereSQL)
		args = append(args, whereArgs...)
	}

	return &Query{
		SQL:  strings.Join(parts, " "),
		Args: args,
	}
}

// GenerateDelete renders a DELETE. A missing WHERE deletes nothing.
func (d *dialect) GenerateDelete(table string, where *WhereClause) *Query {
	var parts []string
	var args []interface{}
	argIndex := 1

	parts = append(parts, fmt.Sprintf("DELETE FROM %s", d.quote(table)))

	if where != nil && !where.IsEmpty() {
		whereSQL, whereArgs := d.buildWhereRecursive(where, &argIndex)
		parts = append(parts, "WHERE "+whereSQL)
		args = append(args, whereArgs...)
	} else {
		// Safety: require WHERE clause for DELETE
		parts = append(parts, "WHERE 1=0")
	}

	return &Query{
		SQL:  strings.Join(parts, " "),
		Args: args,
	}
}
