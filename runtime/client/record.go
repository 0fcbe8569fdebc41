package client

import (
	"fmt"
	"maps"

	"github.com/satishbabariya/multilingual-go/languages"
	"github.com/satishbabariya/multilingual-go/query/compiler"
	"github.com/satishbabariya/multilingual-go/query/executor"
	"github.com/satishbabariya/multilingual-go/schema"
)

// Record is one row of a model together with its translations. Plain
// values are keyed by column; translated values live in per-language rows.
//
// A Record reads and writes unqualified translated names in its active
// language: the language set with SetLanguage, or the registry default at
// the time of the call.
type Record struct {
	model        *schema.Model
	langs        *languages.Registry
	values       map[string]any
	translations map[*schema.Translation]map[int]*translationRow
	language     int
	saved        bool
}

type translationRow struct {
	id     any
	values map[string]any
	dirty  bool
}

func newRecord(m *schema.Model, langs *languages.Registry) *Record {
	return &Record{
		model:        m,
		langs:        langs,
		values:       map[string]any{},
		translations: map[*schema.Translation]map[int]*translationRow{},
	}
}

// load fills the record from a result row.
func (r *Record) load(cols []compiler.ResultColumn, row executor.Row) {
	for _, col := range cols {
		switch {
		case col.Translation == nil:
			r.values[col.Name] = row[col.Name]
		case col.RowID && row[col.Name] != nil:
			r.row(col.Translation, col.LanguageID).id = row[col.Name]
		}
	}
	for _, col := range cols {
		if col.Translation == nil || col.RowID {
			continue
		}
		if tr := r.translations[col.Translation][col.LanguageID]; tr != nil {
			tr.values[col.Field.Column] = row[col.Name]
		}
	}
	r.saved = true
}

func (r *Record) row(t *schema.Translation, lang int) *translationRow {
	rows := r.translations[t]
	if rows == nil {
		rows = map[int]*translationRow{}
		r.translations[t] = rows
	}
	tr := rows[lang]
	if tr == nil {
		tr = &translationRow{values: map[string]any{}}
		rows[lang] = tr
	}
	return tr
}

// Model returns the record's model.
func (r *Record) Model() *schema.Model { return r.model }

// PK returns the primary key value, nil before the record is saved.
func (r *Record) PK() any { return r.values[r.model.PK().Column] }

// Saved reports whether the record is stored in the database.
func (r *Record) Saved() bool { return r.saved }

// Values returns a copy of the plain column values.
func (r *Record) Values() map[string]any { return maps.Clone(r.values) }

// SetLanguage overrides the language unqualified translated names use on
// this record. nil removes the override.
func (r *Record) SetLanguage(lang any) error {
	if lang == nil {
		r.language = 0
		return nil
	}
	l, err := r.langs.Resolve(lang)
	if err != nil {
		return err
	}
	r.language = l.ID
	return nil
}

// Language returns the per-record language override, 0 when there is none.
func (r *Record) Language() int { return r.language }

// ActiveLanguage returns the language unqualified translated names use now.
func (r *Record) ActiveLanguage() languages.Language {
	if r.language != 0 {
		if l, err := r.langs.ByID(r.language); err == nil {
			return l
		}
	}
	return r.langs.Default()
}

// Get returns a field value or a translated attribute. Relation fields
// return the related primary key.
func (r *Record) Get(name string) (any, error) {
	if f, ok := r.plainField(name); ok {
		return r.values[f.Column], nil
	}
	if acc, ok := r.model.Accessor(name); ok {
		return acc.Get(r)
	}
	return nil, fmt.Errorf("%w: %s.%s", ErrUnknownAttribute, r.model.Name, name)
}

// Set assigns a field value or a translated attribute. Relation fields
// accept the related primary key or any value with a PK method.
func (r *Record) Set(name string, value any) error {
	if f, ok := r.plainField(name); ok {
		if pker, ok := value.(compiler.PKer); ok && f.IsRelation() {
			value = pker.PK()
		}
		r.values[f.Column] = value
		return nil
	}
	if acc, ok := r.model.Accessor(name); ok {
		return acc.Set(r, value)
	}
	return fmt.Errorf("%w: %s.%s", ErrUnknownAttribute, r.model.Name, name)
}

func (r *Record) plainField(name string) (*schema.Field, bool) {
	if info, err := r.model.FieldByName(name); err == nil && info.Direct && info.Field.Concrete() {
		return info.Field, true
	}
	for _, m := range append([]*schema.Model{r.model}, r.model.Ancestors()...) {
		if f, ok := m.FieldByColumn(name); ok {
			return f, true
		}
	}
	return nil, false
}

// Translation returns the value of a translated field in lang. A nil lang
// means the active language.
func (r *Record) Translation(field string, lang any) (any, error) {
	t, f, err := r.translatedField(field)
	if err != nil {
		return nil, err
	}
	l, err := r.resolve(lang)
	if err != nil {
		return nil, err
	}
	tr := r.translations[t][l.ID]
	if tr == nil {
		if t.Fallback != nil {
			return t.Fallback, nil
		}
		return nil, &TranslationNotAvailableError{Model: r.model.Name, Field: field, Language: l}
	}
	return tr.values[f.Column], nil
}

// SetTranslation assigns a translated field in lang. A nil lang means the
// active language.
func (r *Record) SetTranslation(field string, value any, lang any) error {
	t, f, err := r.translatedField(field)
	if err != nil {
		return err
	}
	l, err := r.resolve(lang)
	if err != nil {
		return err
	}
	tr := r.row(t, l.ID)
	tr.values[f.Column] = value
	tr.dirty = true
	return nil
}

// HasTranslation reports whether the record has a translation row for lang.
func (r *Record) HasTranslation(lang any) bool {
	l, err := r.resolve(lang)
	if err != nil {
		return false
	}
	for _, rows := range r.translations {
		if rows[l.ID] != nil {
			return true
		}
	}
	return false
}

func (r *Record) resolve(lang any) (languages.Language, error) {
	if lang == nil {
		return r.ActiveLanguage(), nil
	}
	return r.langs.Resolve(lang)
}

func (r *Record) translatedField(name string) (*schema.Translation, *schema.Field, error) {
	for _, t := range r.model.Translations() {
		if f, ok := t.Field(name); ok {
			return t, f, nil
		}
	}
	return nil, nil, fmt.Errorf("%w: %s has no translated field %s", ErrUnknownAttribute, r.model.Name, name)
}

// snapshot captures the state Save mutates so a failed save can be undone.
func (r *Record) snapshot() func() {
	values := maps.Clone(r.values)
	saved := r.saved
	type rowState struct {
		id    any
		dirty bool
	}
	rows := map[*translationRow]rowState{}
	for _, byLang := range r.translations {
		for _, tr := range byLang {
			rows[tr] = rowState{id: tr.id, dirty: tr.dirty}
		}
	}
	return func() {
		r.values = values
		r.saved = saved
		for tr, st := range rows {
			tr.id, tr.dirty = st.id, st.dirty
		}
	}
}
