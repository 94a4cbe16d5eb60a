package timestamp

import (
	"database/sql"
	"reflect"
	"time"
)

// FieldState is what the policy knows about one field at one lifecycle moment.
type FieldState struct {
	// Current is the value the field holds, nil when unset or unreadable.
	Current any
	// Writable reports whether the field may be written at all.
	Writable bool
	// ManuallyChanged reports whether the pending update already changes the
	// field. Only consulted on update.
	ManuallyChanged bool
}

// Decision is the outcome of a policy evaluation.
type Decision int

const (
	DecisionWrite Decision = iota + 1
	DecisionPreset
	DecisionNotWritable
	DecisionManual
	DecisionSkipRole
)

func (d Decision) String() string {
	switch d {
	case DecisionWrite:
		return "write"
	case DecisionPreset:
		return "preset"
	case DecisionNotWritable:
		return "not_writable"
	case DecisionManual:
		return "manual"
	case DecisionSkipRole:
		return "skip_role"
	default:
		return "unknown"
	}
}

// OnCreate decides what to write into f when its entity is inserted. Both
// creation and update fields are stamped on insert.
func OnCreate(f Field, st FieldState, now time.Time) (any, Decision) {
	if !st.Writable {
		return nil, DecisionNotWritable
	}
	if Present(st.Current) {
		return nil, DecisionPreset
	}
	return NewValue(f, now), DecisionWrite
}

// OnUpdate decides what to write into f when its entity is updated. The
// caller must not call it for an update with an empty change set.
func OnUpdate(f Field, st FieldState, now time.Time) (any, Decision) {
	if f.Marker.Role != RoleUpdate {
		return nil, DecisionSkipRole
	}
	if st.ManuallyChanged {
		return nil, DecisionManual
	}
	if !st.Writable {
		return nil, DecisionNotWritable
	}
	return NewValue(f, now), DecisionWrite
}

// NewValue renders now in the representation and shape of f.
func NewValue(f Field, now time.Time) any {
	if f.Marker.Representation == Epoch {
		sec := now.Unix()
		switch f.Shape {
		case ShapeInteger:
			return reflect.ValueOf(sec).Convert(f.Type).Interface()
		case ShapeIntegerPointer:
			p := reflect.New(f.Type.Elem())
			p.Elem().Set(reflect.ValueOf(sec).Convert(f.Type.Elem()))
			return p.Interface()
		case ShapeNullInt64:
			return sql.NullInt64{Int64: sec, Valid: true}
		default:
			return sec
		}
	}

	switch f.Shape {
	case ShapeTimePointer:
		t := now
		return &t
	case ShapeNullTime:
		return sql.NullTime{Time: now, Valid: true}
	default:
		return now
	}
}

// Present reports whether v counts as an existing value. nil, nil pointers and
// invalid sql.Null values are absent, as are zero time.Time and integer values,
// which is how non-nullable Go fields say "unset". Anything else is kept as is.
func Present(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case time.Time:
		return !x.IsZero()
	case *time.Time:
		return x != nil
	case sql.NullTime:
		return x.Valid
	case sql.NullInt64:
		return x.Valid
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		return !rv.IsNil()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	}
	return true
}
