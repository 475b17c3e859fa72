package application

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/example/irfit-gateway/internal/calendar"
)

var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func inputValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return field.Name
			}
			return name
		})
		_ = v.RegisterValidation("notblank", validators.NotBlank)
		_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
			raw := fl.Field().String()
			if len(raw) != len("2006-01-02") {
				return false
			}
			_, ok := calendar.ParseDate(raw)
			return ok
		})
		_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
			return clockPattern.MatchString(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// validateInput runs the struct tags of input and converts failures into a
// ValidationError keyed by JSON field name.
func validateInput(input any) *ValidationError {
	vErr := &ValidationError{}

	err := inputValidator().Struct(input)
	if err == nil {
		return vErr
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		vErr.add("input", "некорректные данные")
		return vErr
	}
	for _, fe := range fieldErrs {
		vErr.add(fe.Field(), fieldMessage(fe))
	}
	return vErr
}

// validateTimeRange requires start before end when both are present. Zero
// padded HH:MM values order correctly as strings.
func validateTimeRange(start, end string) *ValidationError {
	vErr := &ValidationError{}
	if start == "" || end == "" {
		return vErr
	}
	if !clockPattern.MatchString(start) || !clockPattern.MatchString(end) {
		return vErr
	}
	if start >= end {
		vErr.add("end_time", "время окончания должно быть позже времени начала")
	}
	return vErr
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "обязательное поле"
	case "required_without":
		return "укажите телефон или email"
	case "isodate":
		return "дата должна быть в формате ГГГГ-ММ-ДД"
	case "hhmm":
		return "время должно быть в формате ЧЧ:ММ"
	case "email":
		return "некорректный email"
	case "url":
		return "некорректная ссылка"
	case "max":
		return fmt.Sprintf("не более %s символов", fe.Param())
	case "gte", "lte":
		return "значение вне допустимого диапазона"
	default:
		return "некорректное значение"
	}
}
