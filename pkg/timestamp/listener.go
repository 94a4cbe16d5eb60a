package timestamp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

// Listener applies the timestamp policy to whole entities. It is the part a
// host ORM calls from its pre-insert and pre-update hooks.
type Listener struct {
	registry *Registry
	accessor FieldAccessor
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Listener.
type Option func(*Listener)

// WithLogger sets the logger used for not-writable warnings and debug traces.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Listener) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithClock reads "now" from clock.
func WithClock(clock clockwork.Clock) Option {
	return func(l *Listener) {
		if clock != nil {
			l.now = clock.Now
		}
	}
}

// WithNowFunc reads "now" from fn.
func WithNowFunc(fn func() time.Time) Option {
	return func(l *Listener) {
		if fn != nil {
			l.now = fn
		}
	}
}

// WithRegistry shares a field registry between listeners.
func WithRegistry(r *Registry) Option {
	return func(l *Listener) {
		if r != nil {
			l.registry = r
		}
	}
}

// WithAccessor replaces the reflection based field accessor.
func WithAccessor(a FieldAccessor) Option {
	return func(l *Listener) {
		if a != nil {
			l.accessor = a
		}
	}
}

// NewListener returns a listener writing through a ReflectAccessor, reading the
// wall clock and discarding logs unless configured otherwise.
func NewListener(opts ...Option) *Listener {
	l := &Listener{
		registry: NewRegistry(),
		accessor: ReflectAccessor{},
		logger:   slog.New(slog.DiscardHandler),
		now:      clockwork.NewRealClock().Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Registry returns the field registry of the listener.
func (l *Listener) Registry() *Registry {
	return l.registry
}

// Now reads the listener's clock.
func (l *Listener) Now() time.Time {
	return l.now()
}

// Using returns a copy of l that goes through accessor.
func (l *Listener) Using(accessor FieldAccessor) *Listener {
	cp := *l
	cp.accessor = accessor
	return &cp
}

// BeforeInsert stamps every marked field of entity that has no value yet.
func (l *Listener) BeforeInsert(ctx context.Context, entity any) {
	l.BeforeInsertAt(ctx, entity, l.now())
}

// BeforeInsertAt is BeforeInsert with an instant captured by the caller.
func (l *Listener) BeforeInsertAt(ctx context.Context, entity any, now time.Time) {
	fields, ok := l.fields(ctx, entity)
	if !ok {
		return
	}

	for _, f := range fields {
		st := FieldState{Writable: l.accessor.CanSet(entity, f.Name)}
		if st.Writable {
			// An unreadable field has no prior value.
			if v, err := l.accessor.Get(entity, f.Name); err == nil {
				st.Current = v
			}
		}

		value, decision := OnCreate(f, st, now)
		l.apply(ctx, entity, f, value, decision)
	}
}

// BeforeUpdate stamps the update fields of entity that the pending change set
// does not already touch. An empty change set leaves the entity alone.
func (l *Listener) BeforeUpdate(ctx context.Context, entity any, changes ChangeSet) {
	if changes.Len() == 0 {
		return
	}
	l.BeforeUpdateAt(ctx, entity, changes, l.now())
}

// BeforeUpdateAt is BeforeUpdate with an instant captured by the caller.
func (l *Listener) BeforeUpdateAt(ctx context.Context, entity any, changes ChangeSet, now time.Time) {
	if changes.Len() == 0 {
		return
	}
	fields, ok := l.fields(ctx, entity)
	if !ok {
		return
	}

	for _, f := range fields {
		if f.Marker.Role != RoleUpdate {
			continue
		}

		st := FieldState{ManuallyChanged: changes.Has(f.Name)}
		if !st.ManuallyChanged {
			st.Writable = l.accessor.CanSet(entity, f.Name)
		}

		value, decision := OnUpdate(f, st, now)
		l.apply(ctx, entity, f, value, decision)
	}
}

func (l *Listener) fields(ctx context.Context, entity any) ([]Field, bool) {
	fields, err := l.registry.FieldsOf(entity)
	if err != nil {
		l.logger.ErrorContext(ctx, "timestamp markers could not be resolved",
			"entity", fmt.Sprintf("%T", entity),
			"error", err,
		)
		return nil, false
	}
	return fields, len(fields) > 0
}

func (l *Listener) apply(ctx context.Context, entity any, f Field, value any, decision Decision) {
	entityType := fmt.Sprintf("%T", entity)

	switch decision {
	case DecisionNotWritable:
		l.logger.WarnContext(ctx, "timestamp field is not writable",
			"entity", entityType,
			"field", f.Name,
			"role", f.Marker.Role.String(),
		)
		return
	case DecisionWrite:
	default:
		return
	}

	debug := l.logger.Enabled(ctx, slog.LevelDebug)
	if debug {
		l.logger.DebugContext(ctx, "setting timestamp",
			"entity", entityType,
			"field", f.Name,
			"role", f.Marker.Role.String(),
			"type", f.Marker.Representation.String(),
			"value", value,
		)
	}

	if err := l.accessor.Set(entity, f.Name, value); err != nil {
		l.logger.WarnContext(ctx, "timestamp could not be written",
			"entity", entityType,
			"field", f.Name,
			"error", err,
		)
		return
	}

	if debug {
		got, err := l.accessor.Get(entity, f.Name)
		l.logger.DebugContext(ctx, "timestamp written",
			"entity", entityType,
			"field", f.Name,
			"value", got,
			"success", err == nil && Present(got),
		)
	}
}
