package gormplugin

import (
	"fmt"
	"reflect"
	"slices"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/changhyeonkim/gorm-timestamp/pkg/timestamp"
)

// statementAccessor resolves timestamp fields through the statement's
// schema, so column permissions and Select/Omit decide writability.
type statementAccessor struct {
	stmt       *gorm.Statement
	update     bool
	selected   map[string]bool
	restricted bool
}

var _ timestamp.FieldAccessor = (*statementAccessor)(nil)

func newAccessor(stmt *gorm.Statement, update bool) *statementAccessor {
	// create: (requireCreate=true, requireUpdate=false), update: the reverse
	selected, restricted := stmt.SelectAndOmitColumns(!update, update)
	return &statementAccessor{
		stmt:       stmt,
		update:     update,
		selected:   selected,
		restricted: restricted,
	}
}

func (a *statementAccessor) Get(entity any, name string) (any, error) {
	field, rv, err := a.resolve(entity, name)
	if err != nil {
		return nil, err
	}
	v, _ := field.ValueOf(a.stmt.Context, rv)
	return v, nil
}

func (a *statementAccessor) CanSet(entity any, name string) bool {
	field, rv, err := a.resolve(entity, name)
	if err != nil || field.DBName == "" || !rv.CanAddr() {
		return false
	}
	if a.update && !field.Updatable || !a.update && !field.Creatable {
		return false
	}
	return a.allowed(field)
}

// Set writes the model field and, for updates, the statement's Dest so the
// column ends up in the SET clause.
func (a *statementAccessor) Set(entity any, name string, value any) error {
	field, rv, err := a.resolve(entity, name)
	if err != nil {
		return err
	}
	if err := field.Set(a.stmt.Context, rv, value); err != nil {
		return fmt.Errorf("set %s: %w", field.Name, err)
	}
	a.include(field)
	if !a.update {
		return nil
	}
	return a.setDest(field, rv, value)
}

// include adds the column to a Select list that does not name it, the way
// gorm keeps its own autoCreateTime/autoUpdateTime columns in the statement.
func (a *statementAccessor) include(field *schema.Field) {
	if !a.restricted {
		return
	}
	if _, ok := a.selected[field.DBName]; ok {
		return
	}
	a.stmt.Selects = append(slices.Clip(a.stmt.Selects), field.DBName)
	a.selected[field.DBName] = true
}

func (a *statementAccessor) setDest(field *schema.Field, model reflect.Value, value any) error {
	switch dest := a.stmt.Dest.(type) {
	case map[string]any:
		a.putMap(dest, field, value)
		return nil
	case []map[string]any:
		for _, m := range dest {
			a.putMap(m, field, value)
		}
		return nil
	}

	destValue := reflect.ValueOf(a.stmt.Dest)
	for destValue.Kind() == reflect.Ptr {
		destValue = destValue.Elem()
	}
	if destValue == model || destValue == a.stmt.ReflectValue {
		return nil
	}
	if destValue.Kind() != reflect.Struct || destValue.Type() != a.stmt.Schema.ModelType {
		return fmt.Errorf("%w: update destination %T", timestamp.ErrNotWritable, a.stmt.Dest)
	}
	if !destValue.CanAddr() {
		addressable := reflect.New(destValue.Type())
		addressable.Elem().Set(destValue)
		a.stmt.Dest = addressable.Interface()
		destValue = addressable.Elem()
	}
	if err := field.Set(a.stmt.Context, destValue, value); err != nil {
		return fmt.Errorf("set %s on destination: %w", field.Name, err)
	}
	return nil
}

// putMap replaces an existing key spelling rather than adding a second one.
func (a *statementAccessor) putMap(m map[string]any, field *schema.Field, value any) {
	if _, ok := m[field.Name]; ok {
		m[field.Name] = value
		return
	}
	m[field.DBName] = value
}

// allowed reports whether Select/Omit leave the column writable. As for
// gorm's auto time columns, only Omit excludes it; a Select list naming
// other columns does not.
func (a *statementAccessor) allowed(field *schema.Field) bool {
	v, ok := a.selected[field.DBName]
	return v || !ok
}

func (a *statementAccessor) resolve(entity any, name string) (*schema.Field, reflect.Value, error) {
	rv := reflect.ValueOf(entity)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, reflect.Value{}, fmt.Errorf("%w: nil %T", timestamp.ErrUnsupportedValue, entity)
		}
		rv = rv.Elem()
	}
	if a.stmt.Schema == nil || rv.Kind() != reflect.Struct {
		return nil, reflect.Value{}, fmt.Errorf("%w: %T", timestamp.ErrUnsupportedValue, entity)
	}

	field := a.stmt.Schema.LookUpField(name)
	if field == nil {
		return nil, reflect.Value{}, fmt.Errorf("%s.%s: %w", a.stmt.Schema.Name, name, timestamp.ErrFieldNotFound)
	}
	return field, rv, nil
}
