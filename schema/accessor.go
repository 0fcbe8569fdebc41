package schema

// TranslationStore is implemented by objects holding per-language values.
// A nil language means the object's active language.
type TranslationStore interface {
	Translation(field string, lang any) (any, error)
	SetTranslation(field string, value any, lang any) error
}

// Accessor is one entry of a model's translated attribute table. Unqualified
// names read and write the active language, suffixed names a fixed one.
type Accessor struct {
	Name       string
	Field      *Field
	LanguageID int
	Get        func(s TranslationStore) (any, error)
	Set        func(s TranslationStore, value any) error
}

func newAccessor(ref TranslatedRef) Accessor {
	var lang any
	if ref.Explicit() {
		lang = ref.LanguageID
	}
	field := ref.Field.Name
	return Accessor{
		Name:       ref.Name,
		Field:      ref.Field,
		LanguageID: ref.LanguageID,
		Get: func(s TranslationStore) (any, error) {
			return s.Translation(field, lang)
		},
		Set: func(s TranslationStore, value any) error {
			return s.SetTranslation(field, value, lang)
		},
	}
}
