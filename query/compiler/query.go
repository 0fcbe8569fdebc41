package compiler

import (
	"fmt"

	"github.com/satishbabariya/multilingual-go/languages"
	"github.com/satishbabariya/multilingual-go/query/optimizer"
	"github.com/satishbabariya/multilingual-go/query/planner"
	"github.com/satishbabariya/multilingual-go/query/sqlgen"
	"github.com/satishbabariya/multilingual-go/schema"
)

// ResultColumn describes one column of the rows a query returns.
type ResultColumn struct {
	Name  string
	Field *schema.Field
	// Model declares Field; for translated columns it owns the translation.
	Model *schema.Model
	// Translation is set for per-language values and translation row ids.
	Translation *schema.Translation
	LanguageID  int
	// RowID marks the translation row id column used to tell a missing
	// translation from an empty one.
	RowID bool
}

// Query is a translation-aware query over one model. It is not safe for
// concurrent mutation; Clone before deriving a new query.
type Query struct {
	registry   *schema.Registry
	langs      *languages.Registry
	classifier schema.AttributeClassifier
	model      *schema.Model
	plan       *planner.Plan
	where      *sqlgen.WhereClause

	columns   []sqlgen.Column
	results   []ResultColumn
	// selected holds the result column names of plain fields, preloads the
	// aliases of translated values ("name_en"). Only preloads are safe to
	// order by unqualified since plain names clash with joined tables.
	selected  map[string]bool
	preloads  map[string]bool
	ancestors map[*schema.Model]string

	ordering []sqlgen.OrderBy
	ordered  bool
	low      int
	high     *int
	distinct bool
	language int
}

// New creates a query over the named model selecting its own columns, the
// columns of its ancestors and every language of its translated fields.
func New(reg *schema.Registry, model string) (*Query, error) {
	m, err := reg.Model(model)
	if err != nil {
		return nil, err
	}
	return NewForModel(reg, m), nil
}

// NewForModel is New for an already resolved model.
func NewForModel(reg *schema.Registry, m *schema.Model) *Query {
	q := bare(reg, m)
	q.setupSelect()
	return q
}

func bare(reg *schema.Registry, m *schema.Model) *Query {
	return &Query{
		registry:   reg,
		langs:      reg.Languages(),
		classifier: reg,
		model:      m,
		plan:       planner.New(m.Table),
		where:      sqlgen.NewWhereClause(),
		selected:   map[string]bool{},
		preloads:   map[string]bool{},
		ancestors:  map[*schema.Model]string{},
	}
}

// translationAlias names the preloaded join of a translation table for one language.
func translationAlias(t *schema.Translation, suffix string) string {
	return t.Table + "_" + suffix
}

// TranslationRowAlias names the result column carrying a translation row's id.
func TranslationRowAlias(t *schema.Translation, lang languages.Language) string {
	return "_" + translationAlias(t, lang.Suffix())
}

func (q *Query) setupSelect() {
	base := q.plan.Base()
	q.ancestors[q.model] = base
	q.addModelColumns(q.model, base)
	q.joinParents(q.model, base)

	for _, t := range q.model.Translations() {
		owner := t.Owner()
		ownerAlias := q.ancestors[owner]
		for _, lang := range q.langs.All() {
			alias := q.plan.Join(translationConnection(ownerAlias, owner, lang.ID), planner.JoinOptions{
				OuterIfFirst: true,
				Nullable:     true,
				Alias:        translationAlias(t, lang.Suffix()),
			})
			for _, f := range t.Fields {
				name := f.Name + "_" + lang.Suffix()
				q.addColumn(sqlgen.Column{Table: alias, Name: f.Column, As: name},
					ResultColumn{Name: name, Field: f, Model: owner, Translation: t, LanguageID: lang.ID})
				q.preloads[name] = true
			}
			rowAlias := TranslationRowAlias(t, lang)
			q.addColumn(sqlgen.Column{Table: alias, Name: "id", As: rowAlias},
				ResultColumn{Name: rowAlias, Model: owner, Translation: t, LanguageID: lang.ID, RowID: true})
			q.preloads[rowAlias] = true
		}
	}
}

func (q *Query) joinParents(m *schema.Model, alias string) {
	for _, p := range m.ParentModels() {
		if _, done := q.ancestors[p]; done {
			continue
		}
		link := m.ParentLink(p)
		pa := q.plan.Join(planner.Connection{
			LHS: alias, Table: p.Table, LHSColumn: link.Column, Column: p.PK().Column,
		}, planner.JoinOptions{})
		q.ancestors[p] = pa
		q.addModelColumns(p, pa)
		q.joinParents(p, pa)
	}
}

func (q *Query) addModelColumns(m *schema.Model, alias string) {
	for _, f := range m.ConcreteFields() {
		if q.selected[f.Column] {
			continue
		}
		q.addColumn(sqlgen.Column{Table: alias, Name: f.Column, As: f.Column},
			ResultColumn{Name: f.Column, Field: f, Model: m})
		q.selected[f.Column] = true
	}
}

func (q *Query) addColumn(col sqlgen.Column, rc ResultColumn) {
	q.columns = append(q.columns, col)
	q.results = append(q.results, rc)
}

// Model returns the queried model.
func (q *Query) Model() *schema.Model { return q.model }

// Registry returns the schema registry.
func (q *Query) Registry() *schema.Registry { return q.registry }

// Plan exposes the join plan.
func (q *Query) Plan() *planner.Plan { return q.plan }

// Where returns the compiled WHERE clause.
func (q *Query) Where() *sqlgen.WhereClause { return q.where }

// ResultColumns describes the selected columns in order.
func (q *Query) ResultColumns() []ResultColumn { return q.results }

// AncestorAlias returns the alias an ancestor's table is joined under.
func (q *Query) AncestorAlias(m *schema.Model) (string, bool) {
	a, ok := q.ancestors[m]
	return a, ok
}

// SetClassifier replaces the translated attribute classifier.
func (q *Query) SetClassifier(c schema.AttributeClassifier) { q.classifier = c }

// SetLanguage fixes the language unqualified translated names resolve to.
// nil clears it so the registry default applies.
func (q *Query) SetLanguage(v any) error {
	if v == nil {
		q.language = 0
		return nil
	}
	lang, err := q.langs.Resolve(v)
	if err != nil {
		return err
	}
	q.language = lang.ID
	return nil
}

// Language returns the fixed language id, or 0 when none is set.
func (q *Query) Language() int { return q.language }

// ActiveLanguage returns the language unqualified translated names resolve to now.
func (q *Query) ActiveLanguage() int {
	if q.language != 0 {
		return q.language
	}
	return q.langs.DefaultID()
}

// SetDistinct toggles SELECT DISTINCT.
func (q *Query) SetDistinct(distinct bool) { q.distinct = distinct }

// SetLimits narrows the result window relative to the current one, like
// slicing twice.
func (q *Query) SetLimits(low, high *int) {
	if high != nil {
		h := q.low + *high
		if q.high != nil && *q.high < h {
			h = *q.high
		}
		q.high = &h
	}
	if low != nil {
		l := q.low + *low
		if q.high != nil && *q.high < l {
			l = *q.high
		}
		q.low = l
	}
}

// ClearLimits removes any slicing.
func (q *Query) ClearLimits() {
	q.low = 0
	q.high = nil
}

// Clone returns an independent copy.
func (q *Query) Clone() *Query {
	c := *q
	c.plan = q.plan.Clone()
	c.where = q.where.Clone()
	c.ordering = append([]sqlgen.OrderBy(nil), q.ordering...)
	if q.high != nil {
		h := *q.high
		c.high = &h
	}
	return &c
}

// Select builds the SELECT statement, applying the model's default ordering
// when no ordering was requested and dropping joins nothing references.
func (q *Query) Select() (*sqlgen.Select, error) {
	src := q
	if !q.ordered && len(q.model.Ordering) > 0 {
		src = q.Clone()
		if err := src.AddOrdering(q.model.Ordering...); err != nil {
			return nil, fmt.Errorf("%w: default ordering of %s: %v", ErrCompilationFailed, q.model.Name, err)
		}
	}

	sel := &sqlgen.Select{
		Table:    q.model.Table,
		Distinct: src.distinct,
		Columns:  append([]sqlgen.Column(nil), src.columns...),
		Joins:    optimizer.NewOptimizer("").OptimizeJoins(src.plan),
		Where:    src.where.Clone(),
		OrderBy:  append([]sqlgen.OrderBy(nil), src.ordering...),
	}
	if src.low > 0 {
		low := src.low
		sel.Offset = &low
	}
	if src.high != nil {
		limit := *src.high - src.low
		sel.Limit = &limit
	}
	return sel, nil
}

// Compile renders the query with gen.
func (q *Query) Compile(gen sqlgen.Generator) (*sqlgen.Query, error) {
	sel, err := q.Select()
	if err != nil {
		return nil, err
	}
	return gen.GenerateSelect(sel), nil
}

// CompileCount renders a COUNT over the query's rows.
func (q *Query) CompileCount(gen sqlgen.Generator) (*sqlgen.Query, error) {
	c := q.Clone()
	c.ordering = nil
	c.ordered = true
	sel, err := c.Select()
	if err != nil {
		return nil, err
	}
	return gen.GenerateCount(sel), nil
}
