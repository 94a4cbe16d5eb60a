package timestamp

import "errors"

var (
	ErrInvalidMarker    = errors.New("timestamp: invalid marker")
	ErrUnsupportedType  = errors.New("timestamp: unsupported field type")
	ErrFieldNotFound    = errors.New("timestamp: field not found")
	ErrNotWritable      = errors.New("timestamp: field not writable")
	ErrUnsupportedValue = errors.New("timestamp: unsupported value")
)
