package schedule

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/kymawa/ratiba/core"
)

var (
	venueRequiredTag  = "venue_required"
	venueRequiredText = "venue is required for in-person lectures"
)

// RegisterValidators registers this package's custom validators.
func RegisterValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(newLectureStructValidation, NewLecture{})
	core.RegisterCustomTranslation(validate, translator, venueRequiredTag, venueRequiredText)
}

// newLectureStructValidation requires a venue (building + room) unless the
// lecture is online.
func newLectureStructValidation(sl validator.StructLevel) {
	nl := sl.Current().Interface().(NewLecture)
	if nl.IsOnline {
		return
	}
	if nl.Venue.Building == "" {
		sl.ReportError(nl.Venue.Building, "venue.building", "Building", venueRequiredTag, "")
	}
	if nl.Venue.Room == "" {
		sl.ReportError(nl.Venue.Room, "venue.room", "Room", venueRequiredTag, "")
	}
}
