package registration

import (
	"time"
)

// Registration statuses.
type RegistrationStatus string

const (
	StatusActive    RegistrationStatus = "active"
	StatusDropped   RegistrationStatus = "dropped"
	StatusCompleted RegistrationStatus = "completed"
)

// PassingGrade is the minimum grade for a completed registration to count
// toward prerequisite satisfaction.
const PassingGrade = 50.0

type (
	Course struct {
		ID   string `json:"id"`
		Code string `json:"code"`
		Name string `json:"name"`
	}

	// Semester owns the registration window and the per-student unit cap.
	Semester struct {
		ID                    string    `json:"id"`
		Name                  string    `json:"name"`
		StartDate             time.Time `json:"start_date"`
		EndDate               time.Time `json:"end_date"`
		RegistrationStartDate time.Time `json:"registration_start_date"` // within [StartDate, EndDate]
		RegistrationEndDate   time.Time `json:"registration_end_date"`
		MaxUnitsPerStudent    int       `json:"max_units_per_student"`
		CourseIDs             []string  `json:"course_ids"`
		UnitIDs               []string  `json:"unit_ids"`
	}

	// Unit belongs to one Course and optionally declares prerequisites
	// and a seat capacity.
	Unit struct {
		ID              string   `json:"id"`
		Code            string   `json:"code"`
		Name            string   `json:"name"`
		CourseID        string   `json:"course_id"`
		Capacity        *int     `json:"capacity,omitempty"`
		PrerequisiteIDs []string `json:"prerequisite_ids,omitempty"`
	}

	// UnitRegistration joins (student, unit, semester). At most one
	// non-dropped row may exist per triple.
	UnitRegistration struct {
		ID           string             `json:"id"`
		StudentID    string             `json:"student_id"`
		UnitID       string             `json:"unit_id"`
		SemesterID   string             `json:"semester_id"`
		Status       RegistrationStatus `json:"status"`
		Grade        *float64           `json:"grade,omitempty"`
		RegisteredAt time.Time          `json:"registered_at"` // UTC
	}
)

// RegistrationOpen reports whether `now` falls within the semester's
// registration window (inclusive on both ends).
func (s *Semester) RegistrationOpen(now time.Time) bool {
	return !now.Before(s.RegistrationStartDate) && !now.After(s.RegistrationEndDate)
}

// Passed reports whether this registration satisfies a prerequisite.
func (r *UnitRegistration) Passed() bool {
	return r.Status == StatusCompleted && r.Grade != nil && *r.Grade >= PassingGrade
}
