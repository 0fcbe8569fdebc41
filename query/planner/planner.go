// Package planner tracks the table aliases and joins of a query under
// construction: alias allocation, join reuse, reference counts and promotion
// of joins to LEFT OUTER.
package planner

import (
	"fmt"
	"sort"

	"github.com/satishbabariya/multilingual-go/internal/debug"
	"github.com/satishbabariya/multilingual-go/query/sqlgen"
)

// Connection identifies a join: LHS.LHSColumn = Table.Column, plus an optional
// extra equality on the joined table.
type Connection struct {
	LHS       string
	Table     string
	LHSColumn string
	Column    string
	Extra     *Extra
}

// Extra is an additional equality in a join's ON clause.
type Extra struct {
	Column string
	Value  interface{}
}

type identity struct {
	lhs, table, lhsColumn, column string
	extraColumn                   string
	extraValue                    string
}

func (c Connection) identity() identity {
	id := identity{lhs: c.LHS, table: c.Table, lhsColumn: c.LHSColumn, column: c.Column}
	if c.Extra != nil {
		id.extraColumn = c.Extra.Column
		id.extraValue = fmt.Sprint(c.Extra.Value)
	}
	return id
}

// JoinOptions control how Join reuses or creates aliases.
type JoinOptions struct {
	// AlwaysCreate forces a new alias unless an existing one is in Reuse.
	AlwaysCreate bool
	// Reuse lists aliases AlwaysCreate may still reuse.
	Reuse map[string]bool
	// Exclusions are aliases that must not be reused.
	Exclusions map[string]bool
	// Promote makes the join LEFT OUTER, also when an existing alias is reused.
	Promote bool
	// OuterIfFirst makes a newly created join LEFT OUTER.
	OuterIfFirst bool
	Nullable     bool
	// Alias names a newly created join instead of the generated name.
	Alias string
}

// Alias describes one alias of the plan.
type Alias struct {
	Name     string
	Table    string
	Conn     Connection
	Type     string
	Nullable bool
	Refs     int
	base     bool
}

// Plan is the alias and join state of one query.
type Plan struct {
	base    string
	aliases map[string]*Alias
	tables  map[string][]string
	joins   map[identity][]string
	order   []string
}

// New creates a plan whose base alias is table.
func New(table string) *Plan {
	p := &Plan{
		base:    table,
		aliases: make(map[string]*Alias),
		tables:  make(map[string][]string),
		joins:   make(map[identity][]string),
	}
	p.aliases[table] = &Alias{Name: table, Table: table, base: true, Refs: 1}
	p.tables[table] = []string{table}
	p.order = []string{table}
	return p
}

// Base returns the base alias.
func (p *Plan) Base() string { return p.base }

// Join returns an alias for conn, reusing an identical single-valued join
// when opts allow it and creating a new one otherwise. The alias's reference
// count is incremented either way.
func (p *Plan) Join(conn Connection, opts JoinOptions) string {
	exclusions := opts.Exclusions
	existing := p.joins[conn.identity()]

	if opts.AlwaysCreate && opts.Reuse != nil {
		merged := make(map[string]bool, len(exclusions)+len(existing))
		for a := range exclusions {
			merged[a] = true
		}
		for _, a := range existing {
			if !opts.Reuse[a] {
				merged[a] = true
			}
		}
		exclusions = merged
		opts.AlwaysCreate = false
	}

	if !opts.AlwaysCreate {
		for _, name := range existing {
			if exclusions[name] {
				continue
			}
			p.Ref(name)
			if opts.Promote {
				p.Promote(name, false)
			}
			debug.Debug("planner: reused join", "alias", name, "table", conn.Table)
			return name
		}
	}

	name := p.newAlias(conn.Table, opts.Alias)
	joinType := sqlgen.InnerJoin
	if opts.Promote || opts.OuterIfFirst {
		joinType = sqlgen.LeftOuter
	}
	p.aliases[name] = &Alias{
		Name:     name,
		Table:    conn.Table,
		Conn:     conn,
		Type:     joinType,
		Nullable: opts.Nullable,
		Refs:     1,
	}
	id := conn.identity()
	p.joins[id] = append(p.joins[id], name)
	p.order = append(p.order, name)
	debug.Debug("planner: created join", "alias", name, "table", conn.Table, "lhs", conn.LHS, "type", joinType)
	return name
}

func (p *Plan) newAlias(table, preferred string) string {
	var name string
	switch {
	case preferred != "" && p.aliases[preferred] == nil:
		name = preferred
	case len(p.tables[table]) == 0 && p.aliases[table] == nil:
		name = table
	default:
		for i := len(p.order) + 1; ; i++ {
			name = fmt.Sprintf("T%d", i)
			if p.aliases[name] == nil {
				break
			}
		}
	}
	p.tables[table] = append(p.tables[table], name)
	return name
}

// Ref increments an alias's reference count.
func (p *Plan) Ref(name string) {
	if a, ok := p.aliases[name]; ok {
		a.Refs++
	}
}

// Unref decrements an alias's reference count.
func (p *Plan) Unref(name string) {
	if a, ok := p.aliases[name]; ok && a.Refs > 0 {
		a.Refs--
	}
}

// RefCount returns an alias's reference count.
func (p *Plan) RefCount(name string) int {
	if a, ok := p.aliases[name]; ok {
		return a.Refs
	}
	return 0
}

// RefCounts snapshots every alias's reference count.
func (p *Plan) RefCounts() map[string]int {
	out := make(map[string]int, len(p.aliases))
	for name, a := range p.aliases {
		out[name] = a.Refs
	}
	return out
}

// Promote turns an INNER join into LEFT OUTER when it is nullable or when
// unconditional is set. It reports whether the join type changed.
func (p *Plan) Promote(name string, unconditional bool) bool {
	a, ok := p.aliases[name]
	if !ok || a.base || a.Type == sqlgen.LeftOuter {
		return false
	}
	if !a.Nullable && !unconditional {
		return false
	}
	a.Type = sqlgen.LeftOuter
	return true
}

// PromoteChain promotes aliases in order; once one is promoted the rest of the
// chain is promoted unconditionally.
func (p *Plan) PromoteChain(chain []string) {
	must := false
	for _, name := range chain {
		if p.Promote(name, must) {
			must = true
		} else if a, ok := p.aliases[name]; ok && a.Type == sqlgen.LeftOuter && !a.base {
			must = true
		}
	}
}

// PromoteUnused promotes aliases in used that were created or left untouched
// since before was taken, so one branch of a disjunction cannot filter out
// rows matched by another.
func (p *Plan) PromoteUnused(before map[string]int, used map[string]bool) {
	considered := map[string]bool{}
	for _, name := range p.order {
		if !used[name] {
			continue
		}
		initial, existed := before[name]
		if existed && p.aliases[name].Refs != initial {
			continue
		}
		a := p.aliases[name]
		must := considered[a.Conn.LHS]
		p.Promote(name, must)
		considered[name] = a.Type == sqlgen.LeftOuter
	}
}

// Lookup returns a copy of an alias's description.
func (p *Plan) Lookup(name string) (Alias, bool) {
	a, ok := p.aliases[name]
	if !ok {
		return Alias{}, false
	}
	return *a, true
}

// Aliases returns every alias in creation order, base first.
func (p *Plan) Aliases() []string {
	return append([]string(nil), p.order...)
}

// AliasesOf returns the aliases of table, sorted.
func (p *Plan) AliasesOf(table string) []string {
	out := append([]string(nil), p.tables[table]...)
	sort.Strings(out)
	return out
}

// Joins returns the joins in creation order as SQL joins, including ones
// whose reference count dropped to zero.
func (p *Plan) Joins() []sqlgen.Join {
	var out []sqlgen.Join
	for _, name := range p.order {
		a := p.aliases[name]
		if a.base {
			continue
		}
		j := sqlgen.Join{
			Type:        a.Type,
			Table:       a.Table,
			Alias:       a.Name,
			LeftAlias:   a.Conn.LHS,
			LeftColumn:  a.Conn.LHSColumn,
			RightColumn: a.Conn.Column,
		}
		if a.Conn.Extra != nil {
			j.Extra = []sqlgen.Condition{{Field: a.Conn.Extra.Column, Operator: "=", Value: a.Conn.Extra.Value}}
		}
		out = append(out, j)
	}
	return out
}

// Clone returns an independent copy of the plan.
func (p *Plan) Clone() *Plan {
	c := &Plan{
		base:    p.base,
		aliases: make(map[string]*Alias, len(p.aliases)),
		tables:  make(map[string][]string, len(p.tables)),
		joins:   make(map[identity][]string, len(p.joins)),
		order:   append([]string(nil), p.order...),
	}
	for k, v := range p.aliases {
		a := *v
		c.aliases[k] = &a
	}
	for k, v := range p.tables {
		c.tables[k] = append([]string(nil), v...)
	}
	for k, v := range p.joins {
		c.joins[k] = append([]string(nil), v...)
	}
	return c
}
