// Package languages holds the ordered set of languages translations are stored in
// and the process-wide default language.
package languages

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

// ErrUnknownLanguage is returned when an id or code does not name a registered language.
var ErrUnknownLanguage = errors.New("unknown language")

// Language is a registered language. ID is the 1-based position in the registry.
type Language struct {
	ID   int
	Code string
	Name string
	Tag  language.Tag
}

// Suffix returns the identifier-safe form of the code used in attribute names
// ("zh-cn" becomes "zh_cn").
func (l Language) Suffix() string {
	return Suffix(l.Code)
}

// Definition describes a language before it is registered.
type Definition struct {
	Code string `mapstructure:"code" yaml:"code"`
	Name string `mapstructure:"name" yaml:"name"`
}

// Registry is the ordered language list plus the current default.
type Registry struct {
	mu        sync.RWMutex
	langs     []Language
	byCode    map[string]int
	defaultID int
	matcher   language.Matcher
}

// NewRegistry builds a registry from definitions. The first language is the default.
func NewRegistry(defs ...Definition) (*Registry, error) {
	if len(defs) == 0 {
		return nil, errors.New("languages: at least one language is required")
	}

	r := &Registry{
		langs:  make([]Language, 0, len(defs)),
		byCode: make(map[string]int, len(defs)),
	}
	tags := make([]language.Tag, 0, len(defs))

	for i, def := range defs {
		code := strings.ToLower(strings.TrimSpace(def.Code))
		if code == "" {
			return nil, fmt.Errorf("languages: empty code at position %d", i+1)
		}
		tag, err := language.Parse(code)
		if err != nil {
			return nil, fmt.Errorf("languages: invalid code %q: %w", def.Code, err)
		}
		if _, dup := r.byCode[code]; dup {
			return nil, fmt.Errorf("languages: duplicate code %q", code)
		}
		name := def.Name
		if name == "" {
			name = code
		}
		r.byCode[code] = len(r.langs)
		r.langs = append(r.langs, Language{ID: i + 1, Code: code, Name: name, Tag: tag})
		tags = append(tags, tag)
	}

	r.defaultID = 1
	r.matcher = language.NewMatcher(tags)
	return r, nil
}

// MustNewRegistry is like NewRegistry but panics on error.
func MustNewRegistry(defs ...Definition) *Registry {
	r, err := NewRegistry(defs...)
	if err != nil {
		panic(err)
	}
	return r
}

// All returns the registered languages in id order.
func (r *Registry) All() []Language {
	out := make([]Language, len(r.langs))
	copy(out, r.langs)
	return out
}

// IDs returns the registered language ids in order.
func (r *Registry) IDs() []int {
	ids := make([]int, len(r.langs))
	for i, l := range r.langs {
		ids[i] = l.ID
	}
	return ids
}

// Len returns the number of registered languages.
func (r *Registry) Len() int {
	return len(r.langs)
}

// ByID looks up a language by id.
func (r *Registry) ByID(id int) (Language, error) {
	if id < 1 || id > len(r.langs) {
		return Language{}, fmt.Errorf("%w: id %d", ErrUnknownLanguage, id)
	}
	return r.langs[id-1], nil
}

// ByCode looks up a language by code, ignoring case.
func (r *Registry) ByCode(code string) (Language, error) {
	idx, ok := r.byCode[strings.ToLower(strings.TrimSpace(code))]
	if !ok {
		return Language{}, fmt.Errorf("%w: code %q", ErrUnknownLanguage, code)
	}
	return r.langs[idx], nil
}

// Resolve accepts a language id, a code, a Language, or nil (the current default).
func (r *Registry) Resolve(v any) (Language, error) {
	switch x := v.(type) {
	case nil:
		return r.Default(), nil
	case Language:
		return r.ByID(x.ID)
	case *Language:
		if x == nil {
			return r.Default(), nil
		}
		return r.ByID(x.ID)
	case int:
		return r.ByID(x)
	case int8:
		return r.ByID(int(x))
	case int16:
		return r.ByID(int(x))
	case int32:
		return r.ByID(int(x))
	case int64:
		return r.ByID(int(x))
	case uint:
		return r.ByID(int(x))
	case string:
		return r.ByCode(x)
	default:
		return Language{}, fmt.Errorf("%w: %v (%T)", ErrUnknownLanguage, v, v)
	}
}

// Default returns the current default language.
func (r *Registry) Default() Language {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.langs[r.defaultID-1]
}

// DefaultID returns the id of the current default language.
func (r *Registry) DefaultID() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultID
}

// SetDefault changes the process-wide default. Unknown languages leave the
// default untouched.
func (r *Registry) SetDefault(v any) error {
	if v == nil {
		return fmt.Errorf("%w: nil", ErrUnknownLanguage)
	}
	lang, err := r.Resolve(v)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.defaultID = lang.ID
	r.mu.Unlock()
	return nil
}

// Code returns the code for id, or "" when id is not registered.
func (r *Registry) Code(id int) string {
	lang, err := r.ByID(id)
	if err != nil {
		return ""
	}
	return lang.Code
}

// Match picks the registered language closest to an Accept-Language style
// preference list. It falls back to the current default.
func (r *Registry) Match(preference string) Language {
	tags, _, err := language.ParseAcceptLanguage(preference)
	if err != nil || len(tags) == 0 {
		return r.Default()
	}
	_, idx, conf := r.matcher.Match(tags...)
	if conf == language.No {
		return r.Default()
	}
	return r.langs[idx]
}

// Suffix turns a language code into the suffix used for per-language names.
func Suffix(code string) string {
	return strings.ReplaceAll(strings.ToLower(code), "-", "_")
}

// FieldAlias returns the per-language name of a translated field, e.g. "name_pl".
func (r *Registry) FieldAlias(field string, id int) string {
	lang, err := r.ByID(id)
	if err != nil {
		return field
	}
	return field + "_" + lang.Suffix()
}
