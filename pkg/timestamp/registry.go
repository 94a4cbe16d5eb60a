package timestamp

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// Registry resolves the marked fields of entity types. Results are cached per
// type, so tags are parsed once no matter how many entities pass through.
type Registry struct {
	cache sync.Map // reflect.Type -> cached
}

type cached struct {
	fields []Field
	err    error
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Fields returns the marked fields of the struct type behind t.
func (r *Registry) Fields(t reflect.Type) ([]Field, error) {
	t = indirectType(t)
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %v is not a struct", ErrUnsupportedType, t)
	}

	if v, ok := r.cache.Load(t); ok {
		c := v.(cached)
		return c.fields, c.err
	}

	fields, err := parseFields(t)
	v, _ := r.cache.LoadOrStore(t, cached{fields: fields, err: err})
	c := v.(cached)
	return c.fields, c.err
}

// FieldsOf is Fields for an entity value.
func (r *Registry) FieldsOf(entity any) ([]Field, error) {
	if entity == nil {
		return nil, fmt.Errorf("%w: nil entity", ErrUnsupportedType)
	}
	return r.Fields(reflect.TypeOf(entity))
}

// Register declares markers for model explicitly, keyed by Go field name.
// Tags on the same type are ignored once a type is registered.
func (r *Registry) Register(model any, markers map[string]Marker) error {
	t := indirectType(reflect.TypeOf(model))
	if t == nil || t.Kind() != reflect.Struct {
		return fmt.Errorf("%w: %v is not a struct", ErrUnsupportedType, t)
	}

	fields := make([]Field, 0, len(markers))
	for _, sf := range reflect.VisibleFields(t) {
		m, ok := markers[sf.Name]
		if !ok || sf.Anonymous {
			continue
		}
		f, err := NewField(sf, m)
		if err != nil {
			return fmt.Errorf("%s: %w", t, err)
		}
		fields = append(fields, f)
	}

	if len(fields) != len(markers) {
		for name := range markers {
			if _, ok := t.FieldByName(name); !ok {
				return fmt.Errorf("%s.%s: %w", t, name, ErrFieldNotFound)
			}
		}
	}

	r.cache.Store(t, cached{fields: fields})
	return nil
}

// Validate resolves every model and joins the configuration errors found.
func (r *Registry) Validate(models ...any) error {
	var errs []error
	for _, m := range models {
		if _, err := r.FieldsOf(m); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func parseFields(t reflect.Type) ([]Field, error) {
	var (
		fields []Field
		errs   []error
	)
	for _, sf := range reflect.VisibleFields(t) {
		tag, ok := sf.Tag.Lookup(TagName)
		if !ok || tag == "-" {
			continue
		}
		if !sf.IsExported() {
			errs = append(errs, fmt.Errorf("%s.%s: %w: unexported field", t, sf.Name, ErrUnsupportedType))
			continue
		}

		m, err := ParseMarker(tag)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s.%s: %w", t, sf.Name, err))
			continue
		}
		f, err := NewField(sf, m)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", t, err))
			continue
		}
		fields = append(fields, f)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return fields, nil
}

func indirectType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}
