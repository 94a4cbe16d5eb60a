package timestamp

import (
	"fmt"
	"strings"

	"gorm.io/gorm/schema"
)

// TagName is the struct tag holding a field marker.
//
// Examples:
//
//	CreateTime *time.Time `timestamp:"create"`
//	UpdatedAt  int64      `timestamp:"update;type:epoch"`
const TagName = "timestamp"

// Role tells which lifecycle moment owns a field.
type Role int

const (
	RoleCreate Role = iota + 1
	RoleUpdate
)

func (r Role) String() string {
	switch r {
	case RoleCreate:
		return "create"
	case RoleUpdate:
		return "update"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// Representation is the kind of value written to a field.
type Representation int

const (
	// DateTime writes a time.Time based value. It is the default.
	DateTime Representation = iota
	// Epoch writes integer seconds since the Unix epoch.
	Epoch
)

func (r Representation) String() string {
	switch r {
	case DateTime:
		return "datetime"
	case Epoch:
		return "epoch"
	default:
		return fmt.Sprintf("Representation(%d)", int(r))
	}
}

// Marker is the declarative configuration attached to one entity field.
type Marker struct {
	Role           Role
	Representation Representation
}

// CreateMarker returns a creation marker with the given representation.
func CreateMarker(rep Representation) Marker {
	return Marker{Role: RoleCreate, Representation: rep}
}

// UpdateMarker returns an update marker with the given representation.
func UpdateMarker(rep Representation) Marker {
	return Marker{Role: RoleUpdate, Representation: rep}
}

func (m Marker) String() string {
	return m.Role.String() + ";type:" + m.Representation.String()
}

// ParseMarker parses a tag value using gorm's tag syntax ("create;type:epoch").
func ParseMarker(tag string) (Marker, error) {
	settings := schema.ParseTagSetting(tag, ";")

	var m Marker
	for key, value := range settings {
		switch key {
		case "CREATE":
			if m.Role != 0 {
				return Marker{}, fmt.Errorf("%w: %q declares more than one role", ErrInvalidMarker, tag)
			}
			m.Role = RoleCreate
		case "UPDATE":
			if m.Role != 0 {
				return Marker{}, fmt.Errorf("%w: %q declares more than one role", ErrInvalidMarker, tag)
			}
			m.Role = RoleUpdate
		case "TYPE":
			switch strings.ToLower(strings.TrimSpace(value)) {
			case "datetime", "":
				m.Representation = DateTime
			case "epoch", "timestamp":
				m.Representation = Epoch
			default:
				return Marker{}, fmt.Errorf("%w: unknown type %q", ErrInvalidMarker, value)
			}
		default:
			return Marker{}, fmt.Errorf("%w: unknown setting %q", ErrInvalidMarker, key)
		}
	}

	if m.Role == 0 {
		return Marker{}, fmt.Errorf("%w: %q has no role", ErrInvalidMarker, tag)
	}
	return m, nil
}
