package records

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/FACorreiaa/go-user-records/internal/types"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON name so clients can map errors onto form inputs.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// normalizeCreate trims every field, lowercases the email and defaults status.
func normalizeCreate(p types.CreateRecordParams) types.CreateRecordParams {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	p.Mobile = strings.TrimSpace(p.Mobile)
	p.Gender = strings.TrimSpace(p.Gender)
	p.Status = strings.TrimSpace(p.Status)
	p.Location = strings.TrimSpace(p.Location)
	if p.Status == "" {
		p.Status = string(types.RecordStatusActive)
	}
	return p
}

func normalizeUpdate(p types.UpdateRecordParams) types.UpdateRecordParams {
	trim := func(s *string) *string {
		if s == nil {
			return nil
		}
		v := strings.TrimSpace(*s)
		return &v
	}
	p.FirstName = trim(p.FirstName)
	p.LastName = trim(p.LastName)
	p.Email = trim(p.Email)
	if p.Email != nil {
		lower := strings.ToLower(*p.Email)
		p.Email = &lower
	}
	p.Mobile = trim(p.Mobile)
	p.Gender = trim(p.Gender)
	p.Status = trim(p.Status)
	p.Location = trim(p.Location)
	return p
}

// validateStruct runs the struct tags and converts failures into a
// *types.ValidationError keyed by JSON field name.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", types.ErrValidation, err)
	}
	vErr := &types.ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		vErr.Fields[fe.Field()] = fieldMessage(fe)
	}
	return vErr
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Param() == "1" {
			return "must not be empty"
		}
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
