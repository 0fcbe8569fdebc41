// Package sqlgen provides JOIN query generation for relations.
package sqlgen

import (
	"fmt"
	"strings"
)

// Join types as rendered in SQL.
const (
	InnerJoin = "INNER"
	LeftOuter = "LEFT OUTER"
)

// Join represents a JOIN clause
type Join struct {
	Type        string // InnerJoin or LeftOuter
	Table       string // Table to join
	Alias       string // Table alias
	LeftAlias   string // Alias the join hangs off
	LeftColumn  string
	RightColumn string
	// Extra conditions ANDed into the ON clause, e.g. a language filter on a
	// translation table. Empty Table means the join alias.
	Extra []Condition
}

// Name returns the alias the joined table is referred to by.
func (j Join) Name() string {
	if j.Alias != "" {
		return j.Alias
	}
	return j.Table
}

func (d *dialect) buildJoin(j Join, argIndex *int) (string, []interface{}) {
	joinType := strings.ToUpper(j.Type)
	if joinType == "" {
		joinType = InnerJoin
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s JOIN %s", joinType, d.quote(j.Table))
	if j.Alias != "" && j.Alias != j.Table {
		b.WriteString(" " + d.quote(j.Alias))
	}
	fmt.Fprintf(&b, " ON (%s = %s",
		d.column(j.LeftAlias, j.LeftColumn),
		d.column(j.Name(), j.RightColumn))

	var args []interface{}
	for _, cond := range j.Extra {
		if cond.Table == "" {
			cond.Table = j.Name()
		}
		condSQL, condArgs := d.buildCondition(cond, argIndex)
		b.WriteString(" AND " + condSQL)
		args = append(args, condArgs...)
	}
	b.WriteString(")")
	return b.String(), args
}
