package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"adminconsole/internal/platform/models"
)

var (
	objectIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)
	phonePattern    = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
	oneofParam      = regexp.MustCompile(`'[^']*'|\S+`)
)

// FieldError is one rejected field, addressed by its JSON path
// (e.g. "address.city", "featureAccess[0].feature").
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		if fe.Path == "" {
			msgs[i] = fe.Message
			continue
		}
		msgs[i] = fe.Path + ": " + fe.Message
	}
	return strings.Join(msgs, "; ")
}

// Sources converts the errors to the backend's errorSources shape.
func (e Errors) Sources() []models.ErrorSource {
	out := make([]models.ErrorSource, len(e))
	for i, fe := range e {
		out[i] = models.ErrorSource{Source: fe.Path, Message: fe.Message}
	}
	return out
}

// Normalizer is implemented by forms that clean their input (trim, lowercase)
// before validation. Normalize must be idempotent.
type Normalizer interface {
	Normalize()
}

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		return objectIDPattern.MatchString(fl.Field().String())
	})
	v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	v.RegisterStructValidation(validateListQuery, models.ListQuery{})

	return v
}

func validateListQuery(sl validator.StructLevel) {
	q := sl.Current().Interface().(models.ListQuery)
	if q.StartDate != nil && q.EndDate != nil && q.EndDate.Before(*q.StartDate) {
		sl.ReportError(q.EndDate, "endDate", "EndDate", "daterange", "")
	}
}

// Validate normalizes the candidate and checks its validate tags. It returns
// the normalized value, or the zero value and the field errors. Unexpected
// input (a non-struct) is reported as a single path-less error.
func Validate[T any](candidate T) (T, Errors) {
	if n, ok := any(&candidate).(Normalizer); ok {
		n.Normalize()
	}

	err := validate.Struct(candidate)
	if err == nil {
		return candidate, nil
	}

	var zero T
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return zero, Errors{{Message: err.Error()}}
	}

	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Path: fieldPath(fe), Message: message(fe)})
	}
	return zero, out
}

// Var validates a single value against a tag expression.
func Var(path string, value any, tag string) *FieldError {
	err := validate.Var(value, tag)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &FieldError{Path: path, Message: describe(path, verrs[0])}
	}
	return &FieldError{Path: path, Message: err.Error()}
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	return describe(fe.Field(), fe)
}

func describe(field string, fe validator.FieldError) string {
	param := fe.Param()
	kind := fe.Kind()
	isString := kind == reflect.String
	isList := kind == reflect.Slice || kind == reflect.Array || kind == reflect.Map

	switch fe.Tag() {
	case "required", "required_if", "required_without":
		return fmt.Sprintf("%s is required", field)
	case "min":
		switch {
		case isString:
			return fmt.Sprintf("%s must be at least %s characters", field, param)
		case isList:
			return fmt.Sprintf("%s must contain at least %s items", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		switch {
		case isString:
			return fmt.Sprintf("%s must be at most %s characters", field, param)
		case isList:
			return fmt.Sprintf("%s must contain at most %s items", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", field, param)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(oneofValues(param), ", "))
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "objectid":
		return fmt.Sprintf("%s must be a valid 24-character hex id", field)
	case "phone":
		return fmt.Sprintf("%s must be a valid phone number", field)
	case "credit_card":
		return fmt.Sprintf("%s must be a valid card number", field)
	case "url", "http_url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "alphanum":
		return fmt.Sprintf("%s must contain only letters and digits", field)
	case "iso4217":
		return fmt.Sprintf("%s must be a valid currency code", field)
	case "daterange":
		return fmt.Sprintf("%s must not be before startDate", field)
	case "unique":
		return fmt.Sprintf("%s must not contain duplicates", field)
	}
	return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
}

func oneofValues(param string) []string {
	vals := oneofParam.FindAllString(param, -1)
	for i, v := range vals {
		vals[i] = strings.Trim(v, "'")
	}
	return vals
}
