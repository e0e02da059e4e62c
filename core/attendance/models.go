package attendance

import "time"

// Instance statuses. Transitions only move forward out of scheduled.
type InstanceStatus string

const (
	InstanceScheduled InstanceStatus = "scheduled"
	InstanceCompleted InstanceStatus = "completed"
	InstanceCancelled InstanceStatus = "cancelled"
	InstancePostponed InstanceStatus = "postponed"
)

// Attendance statuses for a single student on a single instance.
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
	StatusExcused Status = "excused"
)

var allStatuses = []Status{StatusPresent, StatusAbsent, StatusLate, StatusExcused}

// KnownStatus reports whether s is a valid attendance status.
func KnownStatus(s Status) bool {
	for _, known := range allStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type (
	// Record is one student's attendance on one instance.
	Record struct {
		StudentID   string    `json:"student_id"`
		Status      Status    `json:"status"`
		CheckedInAt time.Time `json:"checked_in_at"` // UTC
	}

	// LectureInstance is one dated occurrence of a Lecture. At most one
	// instance exists per (lecture, date).
	LectureInstance struct {
		ID         string         `json:"id"`
		LectureID  string         `json:"lecture_id"`
		Date       time.Time      `json:"date"` // calendar date, midnight UTC
		Status     InstanceStatus `json:"status"`
		Attendance []Record       `json:"attendance"`
		CreatedAt  time.Time      `json:"created_at"` // UTC
		UpdatedAt  time.Time      `json:"updated_at"` // UTC
	}
)

// Counted reports whether the record counts as attended (present or late).
func (r *Record) Counted() bool {
	return r.Status == StatusPresent || r.Status == StatusLate
}
