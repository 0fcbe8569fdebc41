package schema

import (
	"fmt"
	"strings"
	"sync"

	"github.com/satishbabariya/multilingual-go/languages"
	"github.com/satishbabariya/multilingual-go/query/cache"
)

// AttributeClassifier decides whether a name on a model is a translated attribute.
// The query compiler consults it before ordinary field resolution.
type AttributeClassifier interface {
	ClassifyAttribute(m *Model, name string) (TranslatedRef, bool)
}

// Registry holds every registered model and the language registry their
// translated names are derived from.
type Registry struct {
	mu     sync.RWMutex
	langs  *languages.Registry
	models map[string]*Model
	order  []*Model
	hops   *cache.LRUCache[any]
}

// NewRegistry creates an empty model registry.
func NewRegistry(langs *languages.Registry) *Registry {
	return &Registry{
		langs:  langs,
		models: make(map[string]*Model),
		hops:   cache.NewLRUCache[any](4096, 0),
	}
}

// Languages returns the language registry.
func (r *Registry) Languages() *languages.Registry { return r.langs }

// JoinCache holds join metadata the query compiler derives from these models.
// It is emptied whenever Register relinks relations.
func (r *Registry) JoinCache() cache.Cache[any] { return r.hops }

// Register adds models. Models may reference each other within one call;
// nothing is registered when any model is invalid.
func (r *Registry) Register(models ...*Model) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	byName := make(map[string]*Model, len(r.models)+len(models))
	order := make([]*Model, 0, len(r.order)+len(models))
	for _, m := range r.order {
		byName[strings.ToLower(m.Name)] = m
		order = append(order, m)
	}

	for _, m := range models {
		if err := m.prepare(); err != nil {
			return err
		}
		key := strings.ToLower(m.Name)
		if _, dup := byName[key]; dup {
			return fmt.Errorf("model %s already registered", m.Name)
		}
		byName[key] = m
		order = append(order, m)
	}

	defer r.hops.Clear()
	if err := r.link(byName, order); err != nil {
		_ = r.link(r.models, r.order)
		return err
	}

	r.models = byName
	r.order = order
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(models ...*Model) {
	if err := r.Register(models...); err != nil {
		panic(err)
	}
}

// Model returns a registered model by name, ignoring case.
func (r *Registry) Model(name string) (*Model, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.models[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("model %s not found", name)
	}
	return m, nil
}

// Models returns the registered models in registration order.
func (r *Registry) Models() []*Model {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Model, len(r.order))
	copy(out, r.order)
	return out
}

// ClassifyAttribute implements AttributeClassifier using the translation
// schemas of m and its ancestors.
func (r *Registry) ClassifyAttribute(m *Model, name string) (TranslatedRef, bool) {
	if ref, ok := m.Translated(name); ok {
		return ref, true
	}
	for _, p := range m.Ancestors() {
		if ref, ok := p.Translated(name); ok {
			return ref, true
		}
	}
	return TranslatedRef{}, false
}

func (r *Registry) link(byName map[string]*Model, order []*Model) error {
	lookup := func(owner *Model, name string) (*Model, error) {
		if name == "self" {
			return owner, nil
		}
		m, ok := byName[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("model %s: model %s not found", owner.Name, name)
		}
		return m, nil
	}

	for _, m := range order {
		m.registry = r
		m.related = nil
		m.parents = m.parents[:0]
		for _, name := range m.Parents {
			p, err := lookup(m, name)
			if err != nil {
				return err
			}
			if p == m {
				return fmt.Errorf("model %s: cannot inherit from itself", m.Name)
			}
			m.parents = append(m.parents, p)
		}
		for _, f := range m.Fields {
			if !f.IsRelation() {
				continue
			}
			target, err := lookup(m, f.To)
			if err != nil {
				return err
			}
			f.target = target
		}
	}

	for _, m := range order {
		for _, f := range m.Fields {
			if !f.IsRelation() {
				continue
			}
			name := f.RelatedName
			if name == "" {
				name = strings.ToLower(m.Name)
			}
			f.target.related = append(f.target.related, &Relation{Name: name, Model: m, Field: f})
		}
	}

	for _, m := range order {
		if err := r.buildTranslated(m); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) buildTranslated(m *Model) error {
	m.translated = nil
	m.accessors = nil
	t := m.Translation
	if t == nil {
		return nil
	}

	m.translated = make(map[string]TranslatedRef)
	m.accessors = make(map[string]Accessor)
	add := func(ref TranslatedRef) error {
		if _, clash := m.byName[ref.Name]; clash {
			return fmt.Errorf("model %s: translated name %s clashes with a field", m.Name, ref.Name)
		}
		if _, clash := m.translated[ref.Name]; clash {
			return fmt.Errorf("model %s: translated name %s declared twice", m.Name, ref.Name)
		}
		m.translated[ref.Name] = ref
		m.accessors[ref.Name] = newAccessor(ref)
		return nil
	}

	for _, f := range t.Fields {
		if err := add(TranslatedRef{Name: f.Name, Field: f, Owner: m}); err != nil {
			return err
		}
		for _, lang := range r.langs.All() {
			ref := TranslatedRef{Name: f.Name + "_" + lang.Suffix(), Field: f, Owner: m, LanguageID: lang.ID}
			if err := add(ref); err != nil {
				return err
			}
		}
	}
	return nil
}
