package model

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrInvalidIdentifier is returned when a plant_id is not a well-formed
// store identifier.
var ErrInvalidIdentifier = errors.New("invalid plant_id format")

// FieldError describes one rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when an entity fails its field rules.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		return ValidID(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// ValidID reports whether s is a well-formed store identifier
// (24 hexadecimal characters).
func ValidID(s string) bool {
	return primitive.IsValidObjectID(s)
}

// Validate checks the plant's field rules.
func (p *Plant) Validate() error { return check(p) }

// Validate checks the log's field rules. A malformed plant_id yields
// ErrInvalidIdentifier.
func (l *GrowthLog) Validate() error { return check(l) }

// Validate checks the reading's field rules. A malformed plant_id yields
// ErrInvalidIdentifier.
func (r *SensorReading) Validate() error { return check(r) }

func check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	ve := &ValidationError{}
	for _, fe := range verrs {
		if fe.Tag() == "objectid" {
			return ErrInvalidIdentifier
		}
		ve.Fields = append(ve.Fields, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return ve
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q", fe.Tag())
	}
}
