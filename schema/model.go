// Package schema describes models, their translated attributes and the
// relations the query compiler walks.
package schema

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNoSuchField is returned by lookups on names a model does not know.
var ErrNoSuchField = errors.New("no such field")

// Model is a registered model. Exported fields are the declaration; everything
// else is derived when the model is registered.
type Model struct {
	Name        string       `yaml:"name"`
	Table       string       `yaml:"table"`
	Fields      []*Field     `yaml:"fields"`
	Parents     []string     `yaml:"parents"`
	Ordering    []string     `yaml:"ordering"`
	Translation *Translation `yaml:"translation"`

	registry   *Registry
	pk         *Field
	byName     map[string]*Field
	byColumn   map[string]*Field
	parents    []*Model
	related    []*Relation
	translated map[string]TranslatedRef
	accessors  map[string]Accessor
}

// Translation is the side table holding per-language values of a model.
type Translation struct {
	Table          string   `yaml:"table"`
	MasterColumn   string   `yaml:"masterColumn"`
	LanguageColumn string   `yaml:"languageColumn"`
	Fields         []*Field `yaml:"fields"`
	// Fallback is returned instead of an error when a language has no row.
	Fallback any `yaml:"fallback"`

	owner  *Model
	byName map[string]*Field
}

// Owner returns the model the translation belongs to.
func (t *Translation) Owner() *Model { return t.owner }

// Field looks up a translated field by its unqualified name.
func (t *Translation) Field(name string) (*Field, bool) {
	f, ok := t.byName[name]
	return f, ok
}

// Relation is the reverse side of a relation field declared on another model.
type Relation struct {
	Name  string
	Model *Model
	Field *Field
}

// M2M reports whether the reverse side is multi-valued through an association table.
func (r *Relation) M2M() bool { return r.Field.Kind == ManyToMany }

// FieldInfo is the result of resolving a name on a model.
type FieldInfo struct {
	Field    *Field
	Relation *Relation
	// Model is the ancestor declaring the name, nil when it is local.
	Model  *Model
	Direct bool
	M2M    bool
}

// TranslatedRef describes a translated attribute name such as "name" or "name_pl".
type TranslatedRef struct {
	Name       string
	Field      *Field
	Owner      *Model
	LanguageID int
}

// Explicit reports whether the name carried a language suffix.
func (r TranslatedRef) Explicit() bool { return r.LanguageID != 0 }

// Registry returns the registry the model belongs to.
func (m *Model) Registry() *Registry { return m.registry }

// PK returns the primary key field.
func (m *Model) PK() *Field { return m.pk }

// Field looks up a local field by name.
func (m *Model) Field(name string) (*Field, bool) {
	f, ok := m.byName[name]
	return f, ok
}

// FieldByColumn looks up a local concrete field by column name.
func (m *Model) FieldByColumn(column string) (*Field, bool) {
	f, ok := m.byColumn[column]
	return f, ok
}

// ConcreteFields returns the local fields stored on the model's table.
func (m *Model) ConcreteFields() []*Field {
	out := make([]*Field, 0, len(m.Fields))
	for _, f := range m.Fields {
		if f.Concrete() {
			out = append(out, f)
		}
	}
	return out
}

// ParentModels returns the direct parents in declaration order.
func (m *Model) ParentModels() []*Model { return m.parents }

// Ancestors returns every ancestor, nearest first.
func (m *Model) Ancestors() []*Model {
	var out []*Model
	seen := map[*Model]bool{}
	queue := append([]*Model(nil), m.parents...)
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
		queue = append(queue, p.parents...)
	}
	return out
}

// BaseChain returns the models between m (exclusive) and ancestor (inclusive),
// or nil when ancestor is not an ancestor of m.
func (m *Model) BaseChain(ancestor *Model) []*Model {
	for _, p := range m.parents {
		if p == ancestor {
			return []*Model{p}
		}
		if chain := p.BaseChain(ancestor); chain != nil {
			return append([]*Model{p}, chain...)
		}
	}
	return nil
}

// ParentLink returns the field linking m to its direct parent.
func (m *Model) ParentLink(parent *Model) *Field {
	for _, f := range m.Fields {
		if f.ParentLink && f.target == parent {
			return f
		}
	}
	return nil
}

// Related returns the reverse relations pointing at m.
func (m *Model) Related() []*Relation { return m.related }

// FieldByName resolves a field or reverse relation name on m or its ancestors.
func (m *Model) FieldByName(name string) (FieldInfo, error) {
	if f, ok := m.byName[name]; ok {
		return FieldInfo{Field: f, Direct: true, M2M: f.Kind == ManyToMany}, nil
	}
	for _, rel := range m.related {
		if rel.Name == name {
			return FieldInfo{Relation: rel, M2M: rel.M2M()}, nil
		}
	}
	for _, p := range m.parents {
		info, err := p.FieldByName(name)
		if err != nil {
			continue
		}
		if info.Model == nil {
			info.Model = p
		}
		return info, nil
	}
	return FieldInfo{}, fmt.Errorf("%w: %s.%s", ErrNoSuchField, m.Name, name)
}

// AllFieldNames lists the names FieldByName accepts, sorted.
func (m *Model) AllFieldNames() []string {
	set := map[string]bool{}
	m.collectNames(set)
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (m *Model) collectNames(set map[string]bool) {
	for _, f := range m.Fields {
		set[f.Name] = true
	}
	for _, rel := range m.related {
		set[rel.Name] = true
	}
	for _, p := range m.parents {
		p.collectNames(set)
	}
}

// Translated classifies name against m's own translation schema.
func (m *Model) Translated(name string) (TranslatedRef, bool) {
	ref, ok := m.translated[name]
	return ref, ok
}

// TranslatedNames lists every translated attribute name of m and its ancestors, sorted.
func (m *Model) TranslatedNames() []string {
	set := map[string]bool{}
	for n := range m.translated {
		set[n] = true
	}
	for _, p := range m.Ancestors() {
		for n := range p.translated {
			set[n] = true
		}
	}
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Translations returns the translation schemas of m and its ancestors, own first.
func (m *Model) Translations() []*Translation {
	var out []*Translation
	if m.Translation != nil {
		out = append(out, m.Translation)
	}
	for _, p := range m.Ancestors() {
		if p.Translation != nil {
			out = append(out, p.Translation)
		}
	}
	return out
}

// Accessor returns the capability entry for a translated attribute name,
// searching ancestors when m does not declare it.
func (m *Model) Accessor(name string) (Accessor, bool) {
	if acc, ok := m.accessors[name]; ok {
		return acc, true
	}
	for _, p := range m.Ancestors() {
		if acc, ok := p.accessors[name]; ok {
			return acc, true
		}
	}
	return Accessor{}, false
}

func (m *Model) prepare() error {
	if m.Name == "" {
		return errors.New("model without name")
	}
	if m.Table == "" {
		m.Table = strings.ToLower(m.Name)
	}

	for _, parent := range m.Parents {
		linkName := strings.ToLower(parent) + "_ptr"
		if _, exists := m.fieldNamed(linkName); exists {
			continue
		}
		m.Fields = append([]*Field{{
			Name:       linkName,
			Kind:       OneToOne,
			To:         parent,
			ParentLink: true,
		}}, m.Fields...)
	}

	m.pk = nil
	for _, f := range m.Fields {
		if f.PrimaryKey {
			if m.pk != nil {
				return fmt.Errorf("model %s: more than one primary key", m.Name)
			}
			m.pk = f
		}
	}
	if m.pk == nil {
		for _, f := range m.Fields {
			if f.ParentLink {
				f.PrimaryKey = true
				m.pk = f
				break
			}
		}
	}
	if m.pk == nil {
		if _, taken := m.fieldNamed("id"); taken {
			return fmt.Errorf("model %s: field id must be the primary key", m.Name)
		}
		m.pk = &Field{Name: "id", Column: "id", Type: "int", PrimaryKey: true}
		m.Fields = append([]*Field{m.pk}, m.Fields...)
	}

	m.byName = make(map[string]*Field, len(m.Fields))
	m.byColumn = make(map[string]*Field, len(m.Fields))
	for _, f := range m.Fields {
		if f.Name == "" {
			return fmt.Errorf("model %s: field without name", m.Name)
		}
		if strings.Contains(f.Name, ".") {
			return fmt.Errorf("model %s: field name %q may not contain dots", m.Name, f.Name)
		}
		if _, dup := m.byName[f.Name]; dup {
			return fmt.Errorf("model %s: duplicate field %s", m.Name, f.Name)
		}
		if f.Column == "" {
			f.Column = f.Name
			if f.Kind == ForeignKey || f.Kind == OneToOne {
				f.Column = f.Name + "_id"
			}
		}
		if f.IsRelation() && f.To == "" {
			return fmt.Errorf("model %s: relation %s has no target", m.Name, f.Name)
		}
		f.model = m
		m.byName[f.Name] = f
		if f.Concrete() {
			m.byColumn[f.Column] = f
		}
	}

	if t := m.Translation; t != nil {
		if t.Table == "" {
			t.Table = m.Table + "_translation"
		}
		if t.MasterColumn == "" {
			t.MasterColumn = "master_id"
		}
		if t.LanguageColumn == "" {
			t.LanguageColumn = "language_id"
		}
		if len(t.Fields) == 0 {
			return fmt.Errorf("model %s: translation without fields", m.Name)
		}
		t.owner = m
		t.byName = make(map[string]*Field, len(t.Fields))
		for _, f := range t.Fields {
			if f.Kind != Scalar {
				return fmt.Errorf("model %s: translated field %s must be scalar", m.Name, f.Name)
			}
			if f.Column == "" {
				f.Column = f.Name
			}
			f.model = m
			t.byName[f.Name] = f
		}
	}
	return nil
}

func (m *Model) fieldNamed(name string) (*Field, bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}
