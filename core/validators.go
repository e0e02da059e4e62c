package core

import (
	"reflect"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/kymawa/ratiba/core/timeslot"
)

var (
	// custom validation tags & texts
	hhmmTag  = "hhmm"
	hhmmText = "must be a valid time in HH:MM format"

	dayOfWeekTag  = "dayofweek"
	dayOfWeekText = "must be a day of week between 0 (Sunday) and 6 (Saturday)"

	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "this field is required"
)

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = validate.RegisterValidation(hhmmTag, hhmmValidation)
	RegisterCustomTranslation(validate, translator, hhmmTag, hhmmText)

	_ = validate.RegisterValidation(dayOfWeekTag, dayOfWeekValidation)
	RegisterCustomTranslation(validate, translator, dayOfWeekTag, dayOfWeekText)

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
	RegisterCustomTranslation(validate, translator, requiredWithTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Custom Global Validators

// hhmmValidation only allows "HH:MM" wall clock times.
func hhmmValidation(fl validator.FieldLevel) bool {
	_, err := timeslot.Minutes(fl.Field().String())
	return err == nil
}

// dayOfWeekValidation allows 0 (Sunday) through 6 (Saturday).
func dayOfWeekValidation(fl validator.FieldLevel) bool {
	day := fl.Field().Int()
	return day >= 0 && day <= 6
}
