// Package optimizer provides query optimization utilities.
package optimizer

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/satishbabariya/multilingual-go/internal/debug"
	"github.com/satishbabariya/multilingual-go/query/planner"
	"github.com/satishbabariya/multilingual-go/query/sqlgen"
)

// Optimizer provides query optimization functionality
type Optimizer struct {
	provider string
}

// NewOptimizer creates a new query optimizer
func NewOptimizer(provider string) *Optimizer {
	return &Optimizer{
		provider: provider,
	}
}

// OptimizeJoins returns the joins of p that are still referenced, together
// with every join a referenced one hangs off. Joins whose reference count
// dropped to zero (trimmed filter joins) are eliminated.
func (o *Optimizer) OptimizeJoins(p *planner.Plan) []sqlgen.Join {
	aliases := p.Aliases()
	keep := make(map[string]bool, len(aliases))
	for i := len(aliases) - 1; i > 0; i-- {
		a, ok := p.Lookup(aliases[i])
		if !ok {
			continue
		}
		if a.Refs > 0 || keep[a.Name] {
			keep[a.Name] = true
			keep[a.Conn.LHS] = true
		}
	}

	all := p.Joins()
	optimized := make([]sqlgen.Join, 0, len(all))
	for _, j := range all {
		if keep[j.Alias] {
			optimized = append(optimized, j)
		}
	}
	if dropped := len(all) - len(optimized); dropped > 0 {
		debug.Debug("optimizer: eliminated unused joins", "count", dropped)
	}
	return optimized
}

// QueryPlan represents an analyzed query execution plan
type QueryPlan struct {
	Query       string
	Lines       []string
	Suggestions []string
}

// AnalyzeQueryPlan runs the provider's EXPLAIN for q and flags full scans.
func (o *Optimizer) AnalyzeQueryPlan(ctx context.Context, db *sql.DB, gen sqlgen.Generator, q *sqlgen.Query) (*QueryPlan, error) {
	explain := gen.GenerateExplain(q)
	rows, err := db.QueryContext(ctx, explain.SQL, explain.Args...)
	if err != nil {
		return nil, fmt.Errorf("explain failed: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	plan := &QueryPlan{Query: q.SQL}
	for rows.Next() {
		values := make([]sql.NullString, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		parts := make([]string, 0, len(values))
		for _, v := range values {
			if v.Valid && v.String != "" {
				parts = append(parts, v.String)
			}
		}
		line := strings.Join(parts, " ")
		plan.Lines = append(plan.Lines, line)
		if isFullScan(line) {
			plan.Suggestions = append(plan.Suggestions, "full scan: "+line)
		}
	}
	return plan, rows.Err()
}

func isFullScan(line string) bool {
	upper := strings.ToUpper(line)
	switch {
	case strings.Contains(upper, "SEQ SCAN"):
		return true
	case strings.HasPrefix(upper, "SCAN ") || strings.Contains(upper, " SCAN TABLE") || strings.Contains(upper, " SCAN "):
		return !strings.Contains(upper, "USING")
	case strings.Contains(upper, " ALL "):
		return true
	}
	return false
}

// SuggestIndexes suggests indexes for the equality filters, join columns and
// ordering of sel. Join columns of translation tables are suggested as one
// composite index per table.
func (o *Optimizer) SuggestIndexes(sel *sqlgen.Select) []string {
	tables := map[string]string{sel.BaseName(): sel.Table}
	for _, j := range sel.Joins {
		tables[j.Name()] = j.Table
	}
	cols := map[string][]string{}
	add := func(alias, col string) {
		table, ok := tables[alias]
		if !ok || col == "" {
			return
		}
		for _, c := range cols[table] {
			if c == col {
				return
			}
		}
		cols[table] = append(cols[table], col)
	}

	for _, j := range sel.Joins {
		if len(j.Extra) > 0 {
			for _, e := range j.Extra {
				add(j.Name(), e.Field)
			}
		}
		add(j.Name(), j.RightColumn)
	}
	var walk func(w *sqlgen.WhereClause)
	walk = func(w *sqlgen.WhereClause) {
		if w == nil {
			return
		}
		for _, cond := range w.Conditions {
			if cond.Operator == "=" || cond.Operator == "IN" {
				add(cond.Table, cond.Field)
			}
		}
		for _, g := range w.Groups {
			walk(g)
		}
	}
	walk(sel.Where)
	for _, ob := range sel.OrderBy {
		add(ob.Table, ob.Field)
	}

	names := make([]string, 0, len(cols))
	for t := range cols {
		names = append(names, t)
	}
	sort.Strings(names)

	var suggestions []string
	for _, table := range names {
		c := cols[table]
		suggestions = append(suggestions, fmt.Sprintf("CREATE INDEX idx_%s_%s ON %s(%s)",
			table, strings.Join(c, "_"), table, strings.Join(c, ", ")))
	}
	return suggestions
}
