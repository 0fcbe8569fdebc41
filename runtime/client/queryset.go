package client

import (
	"context"
	"fmt"
	"iter"
	"sort"

	"github.com/satishbabariya/multilingual-go/query/ast"
	"github.com/satishbabariya/multilingual-go/query/compiler"
	"github.com/satishbabariya/multilingual-go/query/executor"
	"github.com/satishbabariya/multilingual-go/schema"
)

// QuerySet is a lazily evaluated, language-aware query over one model.
// Every method that narrows or reorders the set returns a new QuerySet and
// leaves the receiver unchanged. Errors in names or values are reported by
// the call that introduces them.
type QuerySet struct {
	client *Client
	query  *compiler.Query
}

func (qs *QuerySet) clone() *QuerySet {
	return &QuerySet{client: qs.client, query: qs.query.Clone()}
}

// Model returns the queried model.
func (qs *QuerySet) Model() *schema.Model { return qs.query.Model() }

// Query exposes the compiled query.
func (qs *QuerySet) Query() *compiler.Query { return qs.query }

// Language returns the language fixed with ForLanguage, 0 when none is.
func (qs *QuerySet) Language() int { return qs.query.Language() }

// ForLanguage returns a copy whose unqualified translated names, ordering
// and records use lang, given as an id or a code.
func (qs *QuerySet) ForLanguage(lang any) (*QuerySet, error) {
	c := qs.clone()
	if err := c.query.SetLanguage(lang); err != nil {
		return nil, err
	}
	return c, nil
}

// Filter returns a copy narrowed to rows matching every node. Conditions
// passed in one call over the same multi-valued relation match the same
// related row.
func (qs *QuerySet) Filter(nodes ...ast.Node) (*QuerySet, error) {
	c := qs.clone()
	if node := conjunction(nodes); node != nil {
		if err := c.query.AddFilter(node); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Exclude returns a copy without the rows matching every node.
func (qs *QuerySet) Exclude(nodes ...ast.Node) (*QuerySet, error) {
	c := qs.clone()
	if node := conjunction(nodes); node != nil {
		if err := c.query.AddExclude(node); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Where is Filter with a textual expression such as
// `category.name = "cat 1" or category.name_pl contains "2"`.
func (qs *QuerySet) Where(expr string) (*QuerySet, error) {
	node, err := ast.ParseFilter(expr)
	if err != nil {
		return nil, err
	}
	return qs.Filter(node)
}

func conjunction(nodes []ast.Node) ast.Node {
	switch len(nodes) {
	case 0:
		return nil
	case 1:
		return nodes[0]
	default:
		return ast.And(nodes...)
	}
}

// OrderBy returns a copy ordered by terms, replacing any earlier ordering.
// Translated names order by the value in the query set's language. Without
// terms the result is unordered, ignoring the model's default ordering.
func (qs *QuerySet) OrderBy(terms ...string) (*QuerySet, error) {
	c := qs.clone()
	c.query.ClearOrdering(len(terms) == 0)
	if err := c.query.AddOrdering(terms...); err != nil {
		return nil, err
	}
	return c, nil
}

// Slice returns a copy limited to rows [low, high) of the current set. A
// negative high leaves the end open.
func (qs *QuerySet) Slice(low, high int) *QuerySet {
	c := qs.clone()
	var hi *int
	if high >= 0 {
		hi = &high
	}
	c.query.SetLimits(&low, hi)
	return c
}

// Distinct returns a copy selecting distinct rows.
func (qs *QuerySet) Distinct() *QuerySet {
	c := qs.clone()
	c.query.SetDistinct(true)
	return c
}

// SQL renders the query for the client's dialect.
func (qs *QuerySet) SQL() (string, []any, error) {
	out, err := qs.client.compiler.Compile(qs.query)
	if err != nil {
		return "", nil, err
	}
	return out.SQL, out.Args, nil
}

func (qs *QuerySet) event(op string) *QueryEvent {
	event := &QueryEvent{Model: qs.Model().Name, Operation: op, Language: qs.query.Language()}
	compile := qs.client.compiler.Compile
	if op == "count" {
		compile = qs.client.compiler.CompileCount
	}
	if out, err := compile(qs.query); err == nil {
		event.Query, event.Args = out.SQL, out.Args
	}
	return event
}

// Iter runs the query and yields its records. Each call runs the query
// again. Records carry the query set's language.
func (qs *QuerySet) Iter(ctx context.Context) iter.Seq2[*Record, error] {
	return func(yield func(*Record, error) bool) {
		cols := qs.query.ResultColumns()
		err := qs.client.run(ctx, qs.event("findMany"), func() error {
			for row, err := range qs.client.exec.Rows(ctx, qs.query) {
				if err != nil {
					return err
				}
				if !yield(qs.record(cols, row), nil) {
					return nil
				}
			}
			return nil
		})
		if err != nil {
			yield(nil, err)
		}
	}
}

func (qs *QuerySet) record(cols []compiler.ResultColumn, row executor.Row) *Record {
	rec := newRecord(qs.Model(), qs.client.Languages())
	rec.load(cols, row)
	rec.language = qs.query.Language()
	return rec
}

// All runs the query and returns every record.
func (qs *QuerySet) All(ctx context.Context) ([]*Record, error) {
	var out []*Record
	for rec, err := range qs.Iter(ctx) {
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Get returns the single record matching nodes.
func (qs *QuerySet) Get(ctx context.Context, nodes ...ast.Node) (*Record, error) {
	c, err := qs.Filter(nodes...)
	if err != nil {
		return nil, err
	}
	c.query.ClearOrdering(true)
	two := 2
	c.query.SetLimits(nil, &two)

	recs, err := c.All(ctx)
	if err != nil {
		return nil, err
	}
	switch len(recs) {
	case 0:
		return nil, fmt.Errorf("%s: %w", qs.Model().Name, ErrNotFound)
	case 1:
		return recs[0], nil
	default:
		return nil, fmt.Errorf("%s: %w", qs.Model().Name, ErrMultipleObjects)
	}
}

// First returns the first record, or ErrNotFound.
func (qs *QuerySet) First(ctx context.Context) (*Record, error) {
	for rec, err := range qs.Slice(0, 1).Iter(ctx) {
		return rec, err
	}
	return nil, fmt.Errorf("%s: %w", qs.Model().Name, ErrNotFound)
}

// Count returns the number of matching rows.
func (qs *QuerySet) Count(ctx context.Context) (int64, error) {
	var n int64
	err := qs.client.run(ctx, qs.event("count"), func() error {
		var err error
		n, err = qs.client.exec.Count(ctx, qs.query)
		return err
	})
	return n, err
}

// Exists reports whether any row matches.
func (qs *QuerySet) Exists(ctx context.Context) (bool, error) {
	n, err := qs.Slice(0, 1).Count(ctx)
	return n > 0, err
}

// Create builds a record from values, saves it and returns it. Keys are
// field names, column names or translated names; unqualified translated
// names use the query set's language. Keys are applied in sorted order.
func (qs *QuerySet) Create(ctx context.Context, values map[string]any) (*Record, error) {
	rec := newRecord(qs.Model(), qs.client.Languages())
	rec.language = qs.query.Language()

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := rec.Set(k, values[k]); err != nil {
			return nil, err
		}
	}
	if err := qs.client.Save(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}
