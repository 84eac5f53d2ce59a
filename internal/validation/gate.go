package validation

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/go-playground/validator/v10"
)

const (
	tagTitle         = "task_title"
	tagDescription   = "task_description"
	tagStatus        = "task_status"
	tagEmail         = "account_email"
	tagPassword      = "account_password"
	tagPasswordBytes = "account_password_bytes"
	tagName          = "account_name"
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	predicates := map[string]func(string) bool{
		tagTitle:       ValidTitle,
		tagDescription: ValidDescription,
		tagStatus:      ValidStatus,
		tagEmail:       ValidEmail,
		tagPassword:    ValidPassword,
		tagName:        ValidName,
		tagPasswordBytes: func(s string) bool {
			return len(s) <= PasswordMaxBytes
		},
	}

	for tag, fn := range predicates {
		fn := fn
		err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return fn(fl.Field().String())
		})
		if err != nil {
			panic("validation: register " + tag + ": " + err.Error())
		}
	}

	return v
}

// checker accumulates failures across one payload so the caller gets every
// bad field at once, in field order.
type checker struct {
	errs Errors
}

func (c *checker) required(field string, present bool) bool {
	if present {
		return true
	}
	c.errs = append(c.errs, FieldError{
		Field:   field,
		Rule:    "required",
		Message: requiredMessage(field),
	})
	return false
}

func (c *checker) check(field, value string, tags ...string) bool {
	for _, tag := range tags {
		if err := validate.Var(value, tag); err != nil {
			c.errs = append(c.errs, describe(field, tag, value))
			return false
		}
	}
	return true
}

func (c *checker) err() error {
	if len(c.errs) == 0 {
		return nil
	}
	return c.errs
}

func requiredMessage(field string) string {
	switch field {
	case "title":
		return "Task title is required"
	case "description":
		return "Task description is required"
	case "status":
		return "Task status is required"
	case "email":
		return "Email is required"
	case "password", "currentPassword", "newPassword":
		return "Password is required"
	default:
		return field + " is required"
	}
}

func describe(field, tag, value string) FieldError {
	n := utf8.RuneCountInString(strings.TrimSpace(value))

	switch tag {
	case tagTitle:
		if n < TitleMinLen {
			return minError(field, TitleMinLen, "Task title must be at least 3 characters")
		}
		return maxError(field, TitleMaxLen, "Task title must not exceed 100 characters")
	case tagDescription:
		return maxError(field, DescriptionMaxLen, "Task description must not exceed 500 characters")
	case tagStatus:
		names := make([]string, len(task.Statuses))
		for i, s := range task.Statuses {
			names[i] = string(s)
		}
		return FieldError{
			Field:   field,
			Rule:    "oneof",
			Param:   strings.Join(names, " "),
			Message: "Status must be one of: " + strings.Join(names, ", "),
		}
	case tagEmail:
		return FieldError{Field: field, Rule: "email", Message: "Please provide a valid email address"}
	case tagPassword:
		return minError(field, PasswordMinLen, "Password must be at least 6 characters")
	case tagPasswordBytes:
		return maxError(field, PasswordMaxBytes, "Password must not exceed 72 bytes")
	case tagName:
		if n < NameMinLen {
			return minError(field, NameMinLen, "Name must be at least 2 characters")
		}
		return maxError(field, NameMaxLen, "Name must not exceed 50 characters")
	default:
		return FieldError{Field: field, Rule: tag, Message: "failed " + tag + " validation"}
	}
}

func minError(field string, min int, msg string) FieldError {
	return FieldError{Field: field, Rule: "min", Param: strconv.Itoa(min), Message: msg}
}

func maxError(field string, max int, msg string) FieldError {
	return FieldError{Field: field, Rule: "max", Param: strconv.Itoa(max), Message: msg}
}
