package validation

import (
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"unicode/utf8"

	errors "github.com/Ilan9903/Juris-IA/internal"
)

type ValidatorFunc func(interface{}) *errors.ValidationError

type FieldValidator struct {
	FieldName  string
	Value      interface{}
	Validators []ValidatorFunc
}

type ValidationBuilder struct {
	fields []*FieldValidator
}

func NewValidator() *ValidationBuilder {
	return &ValidationBuilder{}
}

func (v *ValidationBuilder) Field(name string, value interface{}) *FieldValidator {
	fv := &FieldValidator{FieldName: name, Value: value}
	v.fields = append(v.fields, fv)
	return fv
}

func (fv *FieldValidator) fail(message string, code errors.ErrorCode) *errors.ValidationError {
	return &errors.ValidationError{Field: fv.FieldName, Message: message, Code: string(code)}
}

func (fv *FieldValidator) Required() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.ValidationError {
		switch v := value.(type) {
		case string:
			if strings.TrimSpace(v) == "" {
				return fv.fail(fmt.Sprintf("%s is required", fv.FieldName), errors.ErrCodeValidationFailed)
			}
		case *string:
			if v == nil || strings.TrimSpace(*v) == "" {
				return fv.fail(fmt.Sprintf("%s is required", fv.FieldName), errors.ErrCodeValidationFailed)
			}
		case nil:
			return fv.fail(fmt.Sprintf("%s is required", fv.FieldName), errors.ErrCodeValidationFailed)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) Email() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.ValidationError {
		v, ok := value.(string)
		if !ok || v == "" {
			return nil
		}
		addr, err := mail.ParseAddress(v)
		if err != nil || addr.Address != v || !strings.Contains(v[strings.LastIndex(v, "@"):], ".") {
			return fv.fail(fmt.Sprintf("%s must be a valid email address", fv.FieldName), errors.ErrCodeInvalidEmail)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MinLength(min int) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.ValidationError {
		if v, ok := value.(string); ok && utf8.RuneCountInString(v) < min {
			return fv.fail(fmt.Sprintf("%s should contain at least %d characters", fv.FieldName, min), errors.ErrCodeValidationFailed)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MaxLength(max int) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.ValidationError {
		if v, ok := value.(string); ok && utf8.RuneCountInString(v) > max {
			return fv.fail(fmt.Sprintf("%s must not exceed %d characters", fv.FieldName, max), errors.ErrCodeValidationFailed)
		}
		return nil
	})
	return fv
}

// MinInt checks an optional numeric string (typically a query parameter).
func (fv *FieldValidator) MinInt(min int) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.ValidationError {
		v, ok := value.(string)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < min {
			return fv.fail(fmt.Sprintf("%s must be an integer >= %d", fv.FieldName, min), errors.ErrCodeValidationFailed)
		}
		return nil
	})
	return fv
}

// Validate runs every field and reports all failures at once as a 422.
func (v *ValidationBuilder) Validate() *errors.AppError {
	var validationErrors []errors.ValidationError

	for _, field := range v.fields {
		for _, validator := range field.Validators {
			if err := validator(field.Value); err != nil {
				validationErrors = append(validationErrors, *err)
			}
		}
	}

	if len(validationErrors) > 0 {
		return errors.NewUnprocessableError(validationErrors)
	}

	return nil
}

// AsError converts a nil *AppError to a nil error interface.
func AsError(err *errors.AppError) error {
	if err == nil {
		return nil
	}
	return err
}
