package timestamp

import (
	"fmt"
	"reflect"
)

// FieldAccessor reads and writes entity fields by Go field name.
type FieldAccessor interface {
	Get(entity any, name string) (any, error)
	Set(entity any, name string, value any) error
	CanSet(entity any, name string) bool
}

// ReflectAccessor is a FieldAccessor for plain structs passed by pointer.
type ReflectAccessor struct{}

var _ FieldAccessor = ReflectAccessor{}

func (ReflectAccessor) Get(entity any, name string) (any, error) {
	fv, err := lookup(entity, name)
	if err != nil {
		return nil, err
	}
	if !fv.CanInterface() {
		return nil, fmt.Errorf("%s: %w: unexported field", name, ErrUnsupportedType)
	}
	return fv.Interface(), nil
}

func (ReflectAccessor) Set(entity any, name string, value any) error {
	fv, err := lookup(entity, name)
	if err != nil {
		return err
	}
	if !fv.CanSet() {
		return fmt.Errorf("%s: %w", name, ErrNotWritable)
	}

	if value == nil {
		fv.Set(reflect.Zero(fv.Type()))
		return nil
	}
	v := reflect.ValueOf(value)
	switch {
	case v.Type().AssignableTo(fv.Type()):
		fv.Set(v)
	case fv.Kind() == reflect.Interface && v.Type().Implements(fv.Type()):
		fv.Set(v)
	default:
		return fmt.Errorf("%s: %w: %T into %s", name, ErrUnsupportedValue, value, fv.Type())
	}
	return nil
}

func (ReflectAccessor) CanSet(entity any, name string) bool {
	fv, err := lookup(entity, name)
	return err == nil && fv.CanSet()
}

func lookup(entity any, name string) (reflect.Value, error) {
	rv := reflect.ValueOf(entity)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return reflect.Value{}, fmt.Errorf("%w: nil entity", ErrUnsupportedValue)
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return reflect.Value{}, fmt.Errorf("%w: nil entity", ErrUnsupportedValue)
	}
	if rv.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("%w: %s is not a struct", ErrUnsupportedType, rv.Type())
	}

	sf, ok := rv.Type().FieldByName(name)
	if !ok {
		return reflect.Value{}, fmt.Errorf("%s.%s: %w", rv.Type(), name, ErrFieldNotFound)
	}
	fv, err := rv.FieldByIndexErr(sf.Index)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("%s.%s: %w", rv.Type(), name, err)
	}
	return fv, nil
}
