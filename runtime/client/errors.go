package client

import (
	"errors"
	"fmt"

	"github.com/satishbabariya/multilingual-go/languages"
)

var (
	// ErrTranslationNotAvailable is returned when a record has no translation
	// row for the requested language and its schema has no fallback.
	ErrTranslationNotAvailable = errors.New("translation not available")
	// ErrNotFound is returned by Get when nothing matches.
	ErrNotFound = errors.New("record not found")
	// ErrMultipleObjects is returned by Get when more than one row matches.
	ErrMultipleObjects = errors.New("multiple records returned")
	// ErrUnsupportedProvider is returned for unknown database providers.
	ErrUnsupportedProvider = errors.New("unsupported provider")
	// ErrUnknownAttribute is returned by Record.Get and Record.Set for names
	// that are neither fields nor translated attributes.
	ErrUnknownAttribute = errors.New("unknown attribute")
)

// TranslationNotAvailableError names the translation a record is missing.
type TranslationNotAvailableError struct {
	Model    string
	Field    string
	Language languages.Language
}

func (e *TranslationNotAvailableError) Error() string {
	return fmt.Sprintf("%s.%s: no %s translation", e.Model, e.Field, e.Language.Code)
}

func (e *TranslationNotAvailableError) Unwrap() error { return ErrTranslationNotAvailable }
