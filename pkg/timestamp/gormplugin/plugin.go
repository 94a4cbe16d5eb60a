// Package gormplugin hooks the timestamp listener into gorm's create and
// update callback chains.
//
// Usage:
//
//	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
//	if err != nil {
//	    return err
//	}
//	if err := db.Use(gormplugin.New(gormplugin.WithLogger(logger))); err != nil {
//	    return err
//	}
package gormplugin

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"

	"github.com/changhyeonkim/gorm-timestamp/pkg/timestamp"
)

const (
	Name = "timestamp"

	createCallback = "timestamp:before_create"
	updateCallback = "timestamp:before_update"
)

var (
	ErrNotInitialized   = errors.New("gormplugin: plugin is not initialized")
	ErrAutoTimeConflict = errors.New("gormplugin: field is also managed by gorm autoUpdateTime")
)

// Plugin is a gorm.Plugin stamping fields tagged with `timestamp:"..."`.
type Plugin struct {
	db       *gorm.DB
	clock    clockwork.Clock
	logger   *slog.Logger
	registry *timestamp.Registry
	listener *timestamp.Listener
}

var _ gorm.Plugin = (*Plugin)(nil)

// Option configures a Plugin.
type Option func(*Plugin)

// WithLogger sets the logger for not-writable warnings and debug traces.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Plugin) {
		p.logger = logger
	}
}

// WithClock overrides gorm's NowFunc as the source of "now".
func WithClock(clock clockwork.Clock) Option {
	return func(p *Plugin) {
		p.clock = clock
	}
}

// WithRegistry shares a field registry, e.g. one with explicit registrations.
func WithRegistry(r *timestamp.Registry) Option {
	return func(p *Plugin) {
		if r != nil {
			p.registry = r
		}
	}
}

// New creates the plugin. Register it with db.Use.
func New(opts ...Option) *Plugin {
	p := &Plugin{registry: timestamp.NewRegistry()}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.New(slog.DiscardHandler)
	}
	p.listener = timestamp.NewListener(
		timestamp.WithLogger(p.logger),
		timestamp.WithRegistry(p.registry),
	)
	return p
}

func (p *Plugin) Name() string {
	return Name
}

// Initialize registers the callbacks. They run after the model's own
// BeforeCreate/BeforeUpdate hooks, right before the statement is built.
func (p *Plugin) Initialize(db *gorm.DB) error {
	p.db = db

	if err := db.Callback().Create().
		After("gorm:before_create").
		Before("gorm:create").
		Register(createCallback, p.beforeCreate); err != nil {
		return fmt.Errorf("register %s: %w", createCallback, err)
	}

	if err := db.Callback().Update().
		After("gorm:before_update").
		Before("gorm:update").
		Register(updateCallback, p.beforeUpdate); err != nil {
		return fmt.Errorf("register %s: %w", updateCallback, err)
	}
	return nil
}

// Registry returns the field registry used by the plugin.
func (p *Plugin) Registry() *timestamp.Registry {
	return p.registry
}

// Validate checks the markers of models against their gorm schema: every
// marked field must be a column, and update fields must not also be driven
// by gorm's autoUpdateTime.
func (p *Plugin) Validate(models ...any) error {
	if p.db == nil {
		return ErrNotInitialized
	}

	var errs []error
	for _, model := range models {
		fields, err := p.registry.FieldsOf(model)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		stmt := &gorm.Statement{DB: p.db}
		if err := stmt.Parse(model); err != nil {
			errs = append(errs, fmt.Errorf("parse %T: %w", model, err))
			continue
		}

		for _, f := range fields {
			sf := stmt.Schema.LookUpField(f.Name)
			switch {
			case sf == nil || sf.DBName == "":
				errs = append(errs, fmt.Errorf("%s.%s: %w: not a column", stmt.Schema.Name, f.Name, timestamp.ErrFieldNotFound))
			case f.Marker.Role == timestamp.RoleUpdate && sf.AutoUpdateTime > 0:
				errs = append(errs, fmt.Errorf("%s.%s: %w, add autoUpdateTime:false", stmt.Schema.Name, f.Name, ErrAutoTimeConflict))
			}
		}
	}
	return errors.Join(errs...)
}

func (p *Plugin) now(db *gorm.DB) time.Time {
	if p.clock != nil {
		return p.clock.Now()
	}
	return db.NowFunc()
}

func (p *Plugin) beforeCreate(db *gorm.DB) {
	stmt := db.Statement
	if db.Error != nil || stmt.Schema == nil {
		return
	}

	listener := p.listener.Using(newAccessor(stmt, false))
	now := p.now(db)

	switch rv := stmt.ReflectValue; rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			listener.BeforeInsertAt(stmt.Context, entityOf(rv.Index(i)), now)
		}
	case reflect.Struct:
		listener.BeforeInsertAt(stmt.Context, entityOf(rv), now)
	}
}

// beforeUpdate is skipped for UpdateColumn/UpdateColumns, which bypass hooks
// and gorm's own update time tracking as well.
func (p *Plugin) beforeUpdate(db *gorm.DB) {
	stmt := db.Statement
	if db.Error != nil || stmt.Schema == nil || stmt.SkipHooks {
		return
	}

	fields, err := p.registry.Fields(stmt.Schema.ModelType)
	if err != nil {
		p.logger.ErrorContext(stmt.Context, "timestamp markers could not be resolved",
			"model", stmt.Schema.Name,
			"error", err,
		)
		return
	}
	if len(fields) == 0 {
		return
	}

	listener := p.listener.Using(newAccessor(stmt, true))
	var now time.Time
	stamp := func(model reflect.Value) {
		changes := changesOf(stmt, model, fields)
		if changes.Len() == 0 {
			return
		}
		if now.IsZero() {
			now = p.now(db)
		}
		listener.BeforeUpdateAt(stmt.Context, entityOf(model), changes, now)
	}

	switch rv := stmt.ReflectValue; rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			stamp(reflect.Indirect(rv.Index(i)))
		}
	case reflect.Struct:
		stamp(rv)
	}
}

func entityOf(rv reflect.Value) any {
	switch {
	case rv.Kind() == reflect.Ptr:
		return rv.Interface()
	case rv.CanAddr():
		return rv.Addr().Interface()
	default:
		return rv.Interface()
	}
}
