package compiler

import (
	"fmt"
	"strings"

	"github.com/satishbabariya/multilingual-go/query/ast"
	"github.com/satishbabariya/multilingual-go/query/sqlgen"
	"github.com/satishbabariya/multilingual-go/schema"
)

// AddOrdering appends ordering terms. A term is a field path with segments
// separated by "__" or ".", optionally prefixed with "-" for descending.
// Translated attributes order by the value in the active language, or in the
// language their suffix names.
func (q *Query) AddOrdering(terms ...string) error {
	for _, term := range terms {
		if term == "" {
			continue
		}
		if term == "?" {
			return fmt.Errorf("%w: random ordering is not supported", ErrInvalidOrdering)
		}
		clause := ast.ParseOrder(term)
		desc := clause.Direction == ast.SortDesc
		if clause.Field == "" {
			return fmt.Errorf("%w: %q", ErrInvalidOrdering, term)
		}

		if q.preloads[clause.Field] {
			q.ordering = append(q.ordering, orderBy("", clause.Field, desc))
			continue
		}
		path := splitOrderPath(clause.Field)
		if len(path) == 1 {
			if ref, ok := q.classifier.ClassifyAttribute(q.model, path[0]); ok {
				if alias, ok := q.translatedAlias(ref); ok {
					q.ordering = append(q.ordering, orderBy("", alias, desc))
					continue
				}
			}
		}
		if err := q.findOrdering(path, desc, q.model, q.plan.Base(), map[string]bool{}); err != nil {
			return err
		}
	}
	q.ordered = true
	return nil
}

// ClearOrdering removes every ordering term. When forceEmpty is set the
// model's default ordering is not applied either.
func (q *Query) ClearOrdering(forceEmpty bool) {
	q.ordering = nil
	q.ordered = forceEmpty
}

// Ordered reports whether ordering was set explicitly.
func (q *Query) Ordered() bool { return q.ordered }

// translatedAlias returns the select alias carrying ref's value.
func (q *Query) translatedAlias(ref schema.TranslatedRef) (string, bool) {
	id := ref.LanguageID
	if id == 0 {
		id = q.ActiveLanguage()
	}
	lang, err := q.langs.ByID(id)
	if err != nil {
		return "", false
	}
	alias := ref.Field.Name + "_" + lang.Suffix()
	return alias, q.preloads[alias]
}

func (q *Query) findOrdering(path []string, desc bool, m *schema.Model, alias string, seen map[string]bool) error {
	res, err := q.SetupJoins(JoinRequest{
		Names:           path,
		Model:           m,
		Alias:           alias,
		AllowMany:       true,
		AllowExplicitFK: true,
	})
	if err != nil {
		return err
	}
	q.plan.PromoteChain(res.Joins[1:])

	last := path[len(path)-1]
	f := res.Field
	if res.Translation == nil && f != nil && f.IsRelation() && last != f.Column && len(res.Model.Ordering) > 0 {
		key := q.joinTables(res.Joins)
		if seen[key] {
			return fmt.Errorf("%w: infinite loop ordering by %s", ErrInvalidOrdering, strings.Join(path, "__"))
		}
		seen[key] = true
		for _, item := range res.Model.Ordering {
			clause := ast.ParseOrder(item)
			if err := q.findOrdering(splitOrderPath(clause.Field), desc != (clause.Direction == ast.SortDesc), res.Model, res.Alias(), seen); err != nil {
				return err
			}
		}
		return nil
	}

	joins := res.Joins
	table, col := q.trim(res, &joins)
	q.ordering = append(q.ordering, orderBy(table, col, desc))
	return nil
}

// joinTables keys a join chain by the tables it visits.
func (q *Query) joinTables(joins []string) string {
	tables := make([]string, len(joins))
	for i, name := range joins {
		a, _ := q.plan.Lookup(name)
		tables[i] = a.Table
	}
	return strings.Join(tables, ",")
}

func splitOrderPath(name string) []string {
	if strings.Contains(name, "__") {
		return strings.Split(name, "__")
	}
	return ast.SplitPath(name)
}

func orderBy(table, field string, desc bool) sqlgen.OrderBy {
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	return sqlgen.OrderBy{Table: table, Field: field, Direction: dir}
}
