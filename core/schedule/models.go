package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/kymawa/ratiba/core"
	"github.com/kymawa/ratiba/core/timeslot"
)

// Timetable statuses. The lifecycle is monotonic: draft -> published -> archived.
type TimetableStatus string

const (
	TimetableDraft     TimetableStatus = "draft"
	TimetablePublished TimetableStatus = "published"
	TimetableArchived  TimetableStatus = "archived"
)

// Conflict kinds reported by the scheduler.
type ConflictType string

const (
	ConflictTeacher ConflictType = "teacher"
	ConflictVenue   ConflictType = "venue"
)

type (
	// Venue is a physical resource. Lectures reference it by value
	// (building + room), not by id, so conflict checks match on the pair.
	Venue struct {
		ID        string    `json:"id"`
		Building  string    `json:"building"`
		Room      string    `json:"room"`
		Capacity  int       `json:"capacity"`
		Type      string    `json:"type"`
		IsActive  bool      `json:"is_active"`
		CreatedAt time.Time `json:"created_at"` // UTC
		UpdatedAt time.Time `json:"updated_at"` // UTC
	}

	// Timetable scopes a set of Lectures to one (semester, course) pair.
	Timetable struct {
		ID            string          `json:"id"`
		Name          string          `json:"name"`
		SemesterID    string          `json:"semester_id"`
		CourseID      string          `json:"course_id"`
		Status        TimetableStatus `json:"status"`
		EffectiveFrom time.Time       `json:"effective_from"`
		EffectiveTo   time.Time       `json:"effective_to"`
		CreatedAt     time.Time       `json:"created_at"` // UTC
		UpdatedAt     time.Time       `json:"updated_at"` // UTC
	}

	// LectureVenue is the by-value venue reference carried by a Lecture.
	LectureVenue struct {
		Building string `json:"building"`
		Room     string `json:"room"`
	}

	// Lecture is a recurring weekly slot within a Timetable.
	Lecture struct {
		ID          string       `json:"id"`
		TimetableID string       `json:"timetable_id"`
		UnitID      string       `json:"unit_id"`
		UnitCode    string       `json:"unit_code"`
		TeacherID   string       `json:"teacher_id"`
		DayOfWeek   int          `json:"day_of_week"` // 0 = Sunday .. 6 = Saturday
		StartTime   string       `json:"start_time"`  // HH:MM
		EndTime     string       `json:"end_time"`    // HH:MM, after StartTime
		Venue       LectureVenue `json:"venue"`
		IsOnline    bool         `json:"is_online"`
		LectureType string       `json:"lecture_type"`
		IsRecurring bool         `json:"is_recurring"`
		Frequency   string       `json:"frequency"`
		CreatedAt   time.Time    `json:"created_at"` // UTC
		UpdatedAt   time.Time    `json:"updated_at"` // UTC
	}

	ConflictDetail struct {
		Type    ConflictType `json:"type"`
		Message string       `json:"message"`
	}

	// ConflictReport is the verdict for a single proposed placement.
	// Detection stops at the first overlapping lecture per conflict kind.
	ConflictReport struct {
		HasConflicts bool             `json:"has_conflicts"`
		Conflicts    []ConflictType   `json:"conflicts"`
		Details      []ConflictDetail `json:"details"`
	}
)

func (r *ConflictReport) add(typ ConflictType, msg string) {
	r.HasConflicts = true
	r.Conflicts = append(r.Conflicts, typ)
	r.Details = append(r.Details, ConflictDetail{Type: typ, Message: msg})
}

// SharesVenueWith reports whether both lectures occupy the same physical
// room. Online lectures never share a venue.
func (l *Lecture) SharesVenueWith(other Lecture) bool {
	if l.IsOnline || other.IsOnline {
		return false
	}
	if l.Venue.Building == "" || l.Venue.Room == "" {
		return false
	}
	return l.Venue.Building == other.Venue.Building && l.Venue.Room == other.Venue.Room
}

// NewLecture contains information needed to place a new Lecture, or to
// pre-check it for conflicts. ExcludeLectureID is set when re-checking an
// existing lecture being rescheduled.
type NewLecture struct {
	TimetableID      string       `json:"timetable_id" validate:"required"`
	UnitID           string       `json:"unit_id" validate:"required"`
	UnitCode         string       `json:"unit_code"`
	TeacherID        string       `json:"teacher_id" validate:"required"`
	DayOfWeek        *int         `json:"day_of_week" validate:"required,dayofweek"`
	StartTime        string       `json:"start_time" validate:"required,hhmm"`
	EndTime          string       `json:"end_time" validate:"required,hhmm"`
	Venue            LectureVenue `json:"venue"`
	IsOnline         bool         `json:"is_online"`
	LectureType      string       `json:"lecture_type"`
	IsRecurring      bool         `json:"is_recurring"`
	Frequency        string       `json:"frequency"`
	ExcludeLectureID string       `json:"exclude_lecture_id,omitempty"`
}

var errEndBeforeStart = errors.New("end time must be after start time")

func (nl *NewLecture) Validate(validate *validator.Validate) error {
	nl.TimetableID = core.CleanString(nl.TimetableID)
	nl.UnitID = core.CleanString(nl.UnitID)
	nl.TeacherID = core.CleanString(nl.TeacherID)
	nl.Venue.Building = core.CleanString(nl.Venue.Building)
	nl.Venue.Room = core.CleanString(nl.Venue.Room)

	if err := validate.Struct(nl); err != nil {
		return err
	}

	start, _ := timeslot.Minutes(nl.StartTime)
	end, _ := timeslot.Minutes(nl.EndTime)
	if end <= start {
		return core.NewValidationError(
			errEndBeforeStart,
			core.FieldError{Field: "end_time", Error: errEndBeforeStart.Error()},
		)
	}
	return nil
}

// interval returns the lecture's minute offsets. Inputs are validated on the
// way in; stored rows are assumed well formed.
func (nl *NewLecture) interval() (start, end int) {
	start, _ = timeslot.Minutes(nl.StartTime)
	end, _ = timeslot.Minutes(nl.EndTime)
	return start, end
}

func (l *Lecture) interval() (start, end int) {
	start, _ = timeslot.Minutes(l.StartTime)
	end, _ = timeslot.Minutes(l.EndTime)
	return start, end
}

func (l *Lecture) describe() string {
	return fmt.Sprintf("unit %s on %s %s", l.unitLabel(), timeslot.DayName(l.DayOfWeek), timeslot.Range(l.StartTime, l.EndTime))
}

func (l *Lecture) unitLabel() string {
	if l.UnitCode != "" {
		return l.UnitCode
	}
	return l.UnitID
}
