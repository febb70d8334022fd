package server

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/abhisek/mathdrill/internal/problemgen"
)

// ValidationErrorResponse describes one rejected field.
type ValidationErrorResponse struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

func newValidator(reg *problemgen.Registry) (*validator.Validate, error) {
	v := validator.New()

	err := v.RegisterValidation("difficulty", func(fl validator.FieldLevel) bool {
		_, ok := problemgen.ParseDifficulty(fl.Field().String())
		return ok
	})
	if err != nil {
		return nil, err
	}
	err = v.RegisterValidation("topic", func(fl validator.FieldLevel) bool {
		_, ok := reg.ParseTopic(fl.Field().String())
		return ok
	})
	if err != nil {
		return nil, err
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v, nil
}

// validationDetails flattens validator errors for a response body.
func validationDetails(err error) []ValidationErrorResponse {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []ValidationErrorResponse{{Message: err.Error()}}
	}
	out := make([]ValidationErrorResponse, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, ValidationErrorResponse{
			Field:   fe.Field(),
			Message: validationMessage(fe),
			Value:   stringValue(fe.Value()),
		})
	}
	return out
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "difficulty":
		return "must be easy, medium or hard"
	case "topic":
		return "is not a known topic"
	}
	return "is invalid"
}

func stringValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
