package dto

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"bugdash/internal/domain/models"
)

var bugValidator = newBugValidator()

func newBugValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidationError carries one human-readable message per offending field,
// first violation per field wins.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Fields[k])
	}
	return strings.Join(parts, "; ")
}

// ValidateBug applies the submission defaults (status "open", empty image
// list) and checks the draft field by field. A nil return means the draft is
// ready to persist.
func ValidateBug(req *CreateBugRequest) *ValidationError {
	req.ApplyDefaults()

	err := bugValidator.Struct(req)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return &ValidationError{Fields: map[string]string{"_": err.Error()}}
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = fieldMessage(fe)
	}
	return &ValidationError{Fields: fields}
}

// ValidateBugUpdate checks only the fields present on an edit draft.
func ValidateBugUpdate(req *UpdateBugRequest) *ValidationError {
	err := bugValidator.Struct(req)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return &ValidationError{Fields: map[string]string{"_": err.Error()}}
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = fieldMessage(fe)
	}
	return &ValidationError{Fields: fields}
}

// ApplyDefaults fills the fields the submission form may omit.
func (r *CreateBugRequest) ApplyDefaults() {
	if r.Status == "" {
		r.Status = string(models.StatusOpen)
	}
	if r.Images == nil {
		r.Images = []string{}
	}
}

var requiredMessages = map[string]string{
	"title":       "Title is required",
	"author":      "Author is required",
	"url":         "URL is required",
	"description": "Description is required",
	"category":    "Category is required",
	"status":      "Status is required",
	"id":          "ID is required",
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		if msg, ok := requiredMessages[fe.Field()]; ok {
			return msg
		}
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "url":
		return "Invalid URL format"
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
