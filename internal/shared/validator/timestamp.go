package validator

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/changhyeonkim/gorm-timestamp/pkg/timestamp"
)

// ValidateTimestamp validates a "YYYY-MM-DD HH:MM:SS" timestamp string
func ValidateTimestamp(fl validator.FieldLevel) bool {
	_, err := timestamp.Parse(fl.Field().String(), nil)
	return err == nil
}

// ValidateNotBlank rejects strings made of whitespace only
func ValidateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
