package client

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Decode copies a record into a struct. Each exported field is read with
// Record.Get under the name in its db tag, or its lower-cased Go name when
// untagged; a "-" tag skips the field. Translated attributes without a
// translation leave the field at its zero value.
func Decode[T any](rec *Record) (*T, error) {
	var result T
	val := reflect.ValueOf(&result).Elem()
	if val.Kind() != reflect.Struct {
		return nil, fmt.Errorf("decode %s: %T is not a struct", rec.model.Name, result)
	}
	typ := val.Type()

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		name := columnName(field)
		if name == "" {
			continue
		}
		v, err := rec.Get(name)
		if errors.Is(err, ErrTranslationNotAvailable) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("decode %s.%s: %w", rec.model.Name, field.Name, err)
		}
		if err := assign(val.Field(i), v); err != nil {
			return nil, fmt.Errorf("decode %s.%s: %w", rec.model.Name, field.Name, err)
		}
	}
	return &result, nil
}

// DecodeAll runs qs and decodes every record.
func DecodeAll[T any](ctx context.Context, qs *QuerySet) ([]T, error) {
	var results []T
	for rec, err := range qs.Iter(ctx) {
		if err != nil {
			return nil, err
		}
		v, err := Decode[T](rec)
		if err != nil {
			return nil, err
		}
		results = append(results, *v)
	}
	return results, nil
}

// columnName returns the record name a struct field maps to (db tag or field name).
func columnName(field reflect.StructField) string {
	dbTag := field.Tag.Get("db")
	if dbTag == "-" {
		return ""
	}
	if dbTag != "" {
		tagParts := strings.Split(dbTag, ",")
		if tagParts[0] != "" {
			return tagParts[0]
		}
	}
	return strings.ToLower(field.Name)
}

func assign(dst reflect.Value, v any) error {
	if v == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	src := reflect.ValueOf(v)
	if dst.Kind() == reflect.Pointer {
		ptr := reflect.New(dst.Type().Elem())
		if err := assign(ptr.Elem(), v); err != nil {
			return err
		}
		dst.Set(ptr)
		return nil
	}
	switch {
	case src.Type().AssignableTo(dst.Type()):
		dst.Set(src)
	case src.Type().ConvertibleTo(dst.Type()) && convertible(src.Kind(), dst.Kind()):
		dst.Set(src.Convert(dst.Type()))
	default:
		return fmt.Errorf("cannot assign %T to %s", v, dst.Type())
	}
	return nil
}

// convertible rejects the numeric to string conversions reflect allows.
func convertible(src, dst reflect.Kind) bool {
	if dst == reflect.String {
		return src == reflect.String || src == reflect.Slice
	}
	return true
}
