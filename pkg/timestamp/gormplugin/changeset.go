package gormplugin

import (
	"reflect"
	"slices"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/changhyeonkim/gorm-timestamp/pkg/timestamp"
)

// changesOf lists the fields an update statement assigns on model.
//
// Marked update fields are only listed when the caller set them: a map key,
// a non-zero value in a struct destination, or a column named in Select.
// Save without a Select list selects "*" and sends every column, so there a
// non-zero marked field is only the value loaded with the record.
func changesOf(stmt *gorm.Statement, model reflect.Value, marked []timestamp.Field) timestamp.ChangeSet {
	changes := timestamp.ChangeSet{}
	selected, restricted := stmt.SelectAndOmitColumns(false, true)
	allowed := func(f *schema.Field) bool {
		v, ok := selected[f.DBName]
		return (ok && v) || (!ok && !restricted)
	}

	isMarked := make(map[string]bool, len(marked))
	for _, f := range marked {
		if f.Marker.Role == timestamp.RoleUpdate {
			isMarked[f.Name] = true
		}
	}

	oldValue := func(f *schema.Field) any {
		if !model.IsValid() {
			return nil
		}
		v, _ := f.ValueOf(stmt.Context, model)
		return v
	}

	fromMap := func(m map[string]any) {
		for k, v := range m {
			f := stmt.Schema.LookUpField(k)
			if f == nil {
				changes[k] = timestamp.Change{New: v}
				continue
			}
			if allowed(f) {
				changes[f.Name] = timestamp.Change{Old: oldValue(f), New: v}
			}
		}
	}

	switch dest := stmt.Dest.(type) {
	case map[string]any:
		fromMap(dest)
		return changes
	case []map[string]any:
		for _, m := range dest {
			fromMap(m)
		}
		return changes
	}

	destValue := reflect.ValueOf(stmt.Dest)
	for destValue.Kind() == reflect.Ptr {
		destValue = destValue.Elem()
	}
	if destValue.Kind() != reflect.Struct || destValue.Type() != stmt.Schema.ModelType {
		return changes
	}
	whole := slices.Contains(stmt.Selects, "*")

	for _, f := range stmt.Schema.Fields {
		if f.DBName == "" || !f.Updatable || (whole && f.PrimaryKey) {
			continue
		}

		v, zero := f.ValueOf(stmt.Context, destValue)
		if isMarked[f.Name] {
			if named(stmt.Selects, f) || (!whole && !zero && allowed(f)) {
				changes[f.Name] = timestamp.Change{Old: oldValue(f), New: v}
			}
			continue
		}

		sel, ok := selected[f.DBName]
		if (ok && sel) || (!ok && !restricted && !zero) {
			changes[f.Name] = timestamp.Change{Old: oldValue(f), New: v}
		}
	}
	return changes
}

func named(selects []string, f *schema.Field) bool {
	for _, s := range selects {
		if s == f.Name || s == f.DBName {
			return true
		}
	}
	return false
}
