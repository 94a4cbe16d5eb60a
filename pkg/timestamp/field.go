package timestamp

import (
	"database/sql"
	"fmt"
	"reflect"
	"time"
)

// Shape is the Go form a field stores its timestamp in.
type Shape int

const (
	ShapeTime Shape = iota + 1
	ShapeTimePointer
	ShapeNullTime
	ShapeInteger
	ShapeIntegerPointer
	ShapeNullInt64
	// ShapeAny is an interface typed field. DateTime values are written as
	// time.Time and epoch values as int64.
	ShapeAny
)

var (
	timeType      = reflect.TypeOf(time.Time{})
	nullTimeType  = reflect.TypeOf(sql.NullTime{})
	nullInt64Type = reflect.TypeOf(sql.NullInt64{})
)

func (s Shape) String() string {
	switch s {
	case ShapeTime:
		return "time.Time"
	case ShapeTimePointer:
		return "*time.Time"
	case ShapeNullTime:
		return "sql.NullTime"
	case ShapeInteger:
		return "integer"
	case ShapeIntegerPointer:
		return "*integer"
	case ShapeNullInt64:
		return "sql.NullInt64"
	case ShapeAny:
		return "interface"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// Field is a marked field of an entity type, resolved once per type.
type Field struct {
	// Name is the Go field name. Promoted fields of embedded structs use
	// their own name, the way gorm flattens embedded structs.
	Name   string
	Index  []int
	Type   reflect.Type
	Shape  Shape
	Marker Marker
}

func (f Field) String() string {
	return fmt.Sprintf("%s(%s, %s)", f.Name, f.Marker, f.Shape)
}

// NewField binds a marker to a struct field, checking that the declared type
// can hold the marker's representation.
func NewField(sf reflect.StructField, m Marker) (Field, error) {
	shape, err := shapeOf(sf.Type, m.Representation)
	if err != nil {
		return Field{}, fmt.Errorf("field %s: %w", sf.Name, err)
	}
	return Field{
		Name:   sf.Name,
		Index:  sf.Index,
		Type:   sf.Type,
		Shape:  shape,
		Marker: m,
	}, nil
}

func shapeOf(t reflect.Type, rep Representation) (Shape, error) {
	if t.Kind() == reflect.Interface {
		if t.NumMethod() != 0 {
			return 0, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
		}
		return ShapeAny, nil
	}

	switch rep {
	case DateTime:
		switch {
		case t == timeType:
			return ShapeTime, nil
		case t.Kind() == reflect.Ptr && t.Elem() == timeType:
			return ShapeTimePointer, nil
		case t == nullTimeType:
			return ShapeNullTime, nil
		}
	case Epoch:
		switch {
		case isInteger(t):
			return ShapeInteger, nil
		case t.Kind() == reflect.Ptr && isInteger(t.Elem()):
			return ShapeIntegerPointer, nil
		case t == nullInt64Type:
			return ShapeNullInt64, nil
		}
	}
	return 0, fmt.Errorf("%w: %s cannot hold a %s value", ErrUnsupportedType, t, rep)
}

func isInteger(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}
