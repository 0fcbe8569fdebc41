package compiler

import (
	"fmt"
	"sort"

	"github.com/satishbabariya/multilingual-go/internal/debug"
	"github.com/satishbabariya/multilingual-go/query/cache"
	"github.com/satishbabariya/multilingual-go/query/planner"
	"github.com/satishbabariya/multilingual-go/schema"
)

// JoinRequest is the input of SetupJoins.
type JoinRequest struct {
	Names []string
	// Model and Alias default to the query's model and base alias.
	Model *schema.Model
	Alias string
	// DupeMultis gives multi-valued hops a fresh alias unless it is in CanReuse.
	DupeMultis bool
	AllowMany  bool
	// AllowExplicitFK accepts a foreign key's column name ("category_id").
	AllowExplicitFK bool
	CanReuse        map[string]bool
}

// Resolution is the result of SetupJoins.
type Resolution struct {
	// Field is the last field traversed, Target the one whose column is compared.
	Field  *schema.Field
	Target *schema.Field
	Model  *schema.Model
	// Joins starts with the alias resolution began at.
	Joins []string
	// Last holds, per segment, the index into Joins where that segment started.
	Last []int
	// Translation is set when the path ends on a translated attribute.
	Translation *schema.TranslatedRef
	LanguageID  int
}

// Alias returns the alias the target column lives on.
func (r *Resolution) Alias() string { return r.Joins[len(r.Joins)-1] }

// hop is the cached join metadata of one relation segment.
type hop struct {
	table, lhsColumn, column    string
	table2, lhsColumn2, column2 string
	m2m                         bool
	model                       *schema.Model
	target                      *schema.Field
}

// relationHop resolves one relation segment, memoised in the join cache of
// the registry opts belongs to.
func relationHop(opts *schema.Model, name string, info schema.FieldInfo) hop {
	var hops cache.Cache[any]
	if reg := opts.Registry(); reg != nil {
		hops = reg.JoinCache()
	}
	key := opts.Name + "." + name
	if hops != nil {
		if h, ok := hops.Get(key); ok {
			return h.(hop)
		}
	}

	var h hop
	if info.Direct {
		f := info.Field
		target := f.Target()
		if f.Kind == schema.ManyToMany {
			src, dst := f.ThroughColumns()
			h = hop{
				table: f.ThroughTable(), lhsColumn: opts.PK().Column, column: src,
				table2: target.Table, lhsColumn2: dst, column2: target.PK().Column,
				m2m: true, model: target, target: target.PK(),
			}
		} else {
			tf := f.TargetField()
			h = hop{table: target.Table, lhsColumn: f.Column, column: tf.Column, model: target, target: tf}
		}
	} else {
		rel := info.Relation
		f := rel.Field
		if f.Kind == schema.ManyToMany {
			src, dst := f.ThroughColumns()
			h = hop{
				table: f.ThroughTable(), lhsColumn: opts.PK().Column, column: dst,
				table2: rel.Model.Table, lhsColumn2: src, column2: rel.Model.PK().Column,
				m2m: true, model: rel.Model, target: rel.Model.PK(),
			}
		} else {
			local := f.TargetField()
			h = hop{table: rel.Model.Table, lhsColumn: local.Column, column: f.Column, model: rel.Model, target: rel.Model.PK()}
		}
	}

	if hops != nil {
		hops.Set(key, h, 0)
	}
	return h
}

// translationConnection joins a model's translation table for one language.
func translationConnection(lhs string, owner *schema.Model, languageID int) planner.Connection {
	t := owner.Translation
	return planner.Connection{
		LHS:       lhs,
		Table:     t.Table,
		LHSColumn: owner.PK().Column,
		Column:    t.MasterColumn,
		Extra:     &planner.Extra{Column: t.LanguageColumn, Value: languageID},
	}
}

// SetupJoins resolves a path of names into joins, returning the terminal field
// and the alias its column is on. Translated attributes are recognised before
// ordinary fields and resolve to a per-language LEFT OUTER join of the
// translation table.
func (q *Query) SetupJoins(req JoinRequest) (*Resolution, error) {
	if len(req.Names) == 0 {
		return nil, fmt.Errorf("%w: empty path", ErrUnresolvablePath)
	}
	opts := req.Model
	if opts == nil {
		opts = q.model
	}
	alias := req.Alias
	if alias == "" {
		alias = q.plan.Base()
	}

	joins := []string{alias}
	last := []int{0}
	res := &Resolution{}
	exclusions := func() map[string]bool {
		set := make(map[string]bool, len(joins))
		for _, a := range joins {
			set[a] = true
		}
		return set
	}

	for pos := 0; pos < len(req.Names); pos++ {
		name := req.Names[pos]
		last = append(last, len(joins))
		if name == "pk" {
			name = opts.PK().Name
		}

		if ref, ok := q.classifier.ClassifyAttribute(opts, name); ok {
			for _, parent := range opts.BaseChain(ref.Owner) {
				link := opts.ParentLink(parent)
				alias = q.plan.Join(planner.Connection{
					LHS: alias, Table: parent.Table, LHSColumn: link.Column, Column: parent.PK().Column,
				}, planner.JoinOptions{Exclusions: exclusions()})
				joins = append(joins, alias)
				opts = parent
			}

			languageID := ref.LanguageID
			if languageID == 0 {
				languageID = q.ActiveLanguage()
			}
			lang, err := q.langs.ByID(languageID)
			if err != nil {
				return nil, err
			}
			alias = q.plan.Join(translationConnection(alias, ref.Owner, languageID), planner.JoinOptions{
				OuterIfFirst: true,
				Nullable:     true,
				Alias:        translationAlias(ref.Owner.Translation, lang.Suffix()),
			})
			joins = append(joins, alias)

			r := ref
			res.Translation = &r
			res.LanguageID = languageID
			res.Field, res.Target = ref.Field, ref.Field
			if pos != len(req.Names)-1 {
				return nil, &PathError{Name: req.Names[pos+1], Terminal: name}
			}
			break
		}

		info, err := opts.FieldByName(name)
		if err != nil && req.AllowExplicitFK {
			if f := fieldByColumn(opts, name); f != nil {
				info, err = opts.FieldByName(f.Name)
			}
		}
		if err != nil {
			return nil, q.fieldError(opts, name)
		}

		if !req.AllowMany && (info.M2M || !info.Direct) {
			for _, a := range joins[1:] {
				q.plan.Unref(a)
			}
			return nil, &MultiJoinError{Pos: pos + 1, Name: name}
		}

		if info.Model != nil {
			for _, parent := range opts.BaseChain(info.Model) {
				link := opts.ParentLink(parent)
				alias = q.plan.Join(planner.Connection{
					LHS: alias, Table: parent.Table, LHSColumn: link.Column, Column: parent.PK().Column,
				}, planner.JoinOptions{Exclusions: exclusions()})
				joins = append(joins, alias)
				opts = parent
			}
		}

		if info.Direct && !info.Field.IsRelation() {
			res.Field, res.Target = info.Field, info.Field
			if pos != len(req.Names)-1 {
				return nil, &PathError{Name: req.Names[pos+1], Terminal: name}
			}
			break
		}

		h := relationHop(opts, name, info)
		switch {
		case h.m2m:
			multi := planner.JoinOptions{AlwaysCreate: req.DupeMultis, Exclusions: exclusions(), Nullable: true, Reuse: req.CanReuse}
			through := q.plan.Join(planner.Connection{LHS: alias, Table: h.table, LHSColumn: h.lhsColumn, Column: h.column}, multi)
			multi.Exclusions = exclusions()
			alias = q.plan.Join(planner.Connection{LHS: through, Table: h.table2, LHSColumn: h.lhsColumn2, Column: h.column2}, multi)
			joins = append(joins, through, alias)
		case info.Direct:
			alias = q.plan.Join(planner.Connection{LHS: alias, Table: h.table, LHSColumn: h.lhsColumn, Column: h.column},
				planner.JoinOptions{Exclusions: exclusions(), Nullable: info.Field.Nullable})
			joins = append(joins, alias)
		default:
			alias = q.plan.Join(planner.Connection{LHS: alias, Table: h.table, LHSColumn: h.lhsColumn, Column: h.column},
				planner.JoinOptions{AlwaysCreate: req.DupeMultis, Exclusions: exclusions(), Nullable: true, Reuse: req.CanReuse})
			joins = append(joins, alias)
		}

		if info.Direct {
			res.Field = info.Field
		} else {
			res.Field = info.Relation.Field
		}
		res.Target = h.target
		opts = h.model
	}

	res.Model = opts
	res.Joins = joins
	res.Last = last
	debug.Debug("compiler: resolved path", "model", q.model.Name, "path", req.Names, "alias", res.Alias(), "column", res.Target.Column)
	return res, nil
}

func fieldByColumn(m *schema.Model, column string) *schema.Field {
	if f, ok := m.FieldByColumn(column); ok && f.IsRelation() {
		return f
	}
	for _, p := range m.Ancestors() {
		if f, ok := p.FieldByColumn(column); ok && f.IsRelation() {
			return f
		}
	}
	return nil
}

func (q *Query) fieldError(m *schema.Model, name string) error {
	set := map[string]bool{}
	for _, n := range m.AllFieldNames() {
		set[n] = true
	}
	for _, n := range m.TranslatedNames() {
		set[n] = true
	}
	choices := make([]string, 0, len(set))
	for n := range set {
		choices = append(choices, n)
	}
	sort.Strings(choices)
	return &FieldError{Name: name, Model: m.Name, Choices: choices}
}
