// Package testutil provides shared fixtures for service and API tests.
package testutil

import (
	"io"
	"log"
	"testing"
	"time"

	"github.com/kymawa/ratiba/core"
	"github.com/kymawa/ratiba/core/attendance"
	"github.com/kymawa/ratiba/core/registration"
	"github.com/kymawa/ratiba/core/schedule"
	"github.com/kymawa/ratiba/core/user"
	logsvc "github.com/kymawa/ratiba/services/logger"
)

// NewLogger returns a quiet logger for tests.
func NewLogger() core.Logger {
	return logsvc.NewStdLogger(log.New(io.Discard, "", 0))
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email string,
	roles []string,
	courseID string,
) user.User {
	t.Helper()
	now := time.Now().UTC()
	usr, err := repo.CreateUser(user.User{
		Name:      name,
		Email:     email,
		Roles:     roles,
		CourseID:  courseID,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateVenue(t *testing.T, repo schedule.VenueRepository, building, room string, capacity int, typ string) schedule.Venue {
	t.Helper()
	now := time.Now().UTC()
	v, err := repo.CreateVenue(schedule.Venue{
		Building:  building,
		Room:      room,
		Capacity:  capacity,
		Type:      typ,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateVenue() failed: %v", err)
	}
	return v
}

func CreateTimetable(t *testing.T, repo schedule.TimetableRepository, semesterID, courseID string, status schedule.TimetableStatus) schedule.Timetable {
	t.Helper()
	now := time.Now().UTC()
	tt, err := repo.CreateTimetable(schedule.Timetable{
		Name:       "timetable",
		SemesterID: semesterID,
		CourseID:   courseID,
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		t.Fatalf("CreateTimetable() failed: %v", err)
	}
	return tt
}

func CreateLecture(
	t *testing.T,
	repo schedule.LectureRepository,
	timetableID, unitID, teacherID string,
	day int,
	start, end string,
	venue schedule.LectureVenue,
) schedule.Lecture {
	t.Helper()
	now := time.Now().UTC()
	lec, err := repo.CreateLecture(schedule.Lecture{
		TimetableID: timetableID,
		UnitID:      unitID,
		TeacherID:   teacherID,
		DayOfWeek:   day,
		StartTime:   start,
		EndTime:     end,
		Venue:       venue,
		IsRecurring: true,
		Frequency:   "weekly",
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("CreateLecture() failed: %v", err)
	}
	return lec
}

func CreateCourse(t *testing.T, repo registration.CourseRepository, code, name string) registration.Course {
	t.Helper()
	c, err := repo.CreateCourse(registration.Course{Code: code, Name: name})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return c
}

func CreateSemester(
	t *testing.T,
	repo registration.SemesterRepository,
	name string,
	regStart, regEnd time.Time,
	maxUnits int,
) registration.Semester {
	t.Helper()
	sem, err := repo.CreateSemester(registration.Semester{
		Name:                  name,
		StartDate:             regStart,
		EndDate:               regEnd.AddDate(0, 3, 0),
		RegistrationStartDate: regStart,
		RegistrationEndDate:   regEnd,
		MaxUnitsPerStudent:    maxUnits,
	})
	if err != nil {
		t.Fatalf("CreateSemester() failed: %v", err)
	}
	return sem
}

func CreateUnit(
	t *testing.T,
	repo registration.UnitRepository,
	code, courseID string,
	capacity *int,
	prereqIDs ...string,
) registration.Unit {
	t.Helper()
	u, err := repo.CreateUnit(registration.Unit{
		Code:            code,
		Name:            code,
		CourseID:        courseID,
		Capacity:        capacity,
		PrerequisiteIDs: prereqIDs,
	})
	if err != nil {
		t.Fatalf("CreateUnit() failed: %v", err)
	}
	return u
}

func CreateRegistration(
	t *testing.T,
	repo registration.RegistrationRepository,
	studentID, unitID, semesterID string,
	status registration.RegistrationStatus,
	grade *float64,
) registration.UnitRegistration {
	t.Helper()
	reg, err := repo.CreateRegistration(registration.UnitRegistration{
		StudentID:    studentID,
		UnitID:       unitID,
		SemesterID:   semesterID,
		Status:       status,
		Grade:        grade,
		RegisteredAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateRegistration() failed: %v", err)
	}
	return reg
}

func CreateInstance(
	t *testing.T,
	repo attendance.Repository,
	lectureID string,
	date time.Time,
	status attendance.InstanceStatus,
	records ...attendance.Record,
) attendance.LectureInstance {
	t.Helper()
	now := time.Now().UTC()
	inst, err := repo.CreateInstance(attendance.LectureInstance{
		LectureID: lectureID,
		Date:      date,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateInstance() failed: %v", err)
	}
	if len(records) > 0 {
		inst.Attendance = records
		if inst, err = repo.UpdateInstance(inst); err != nil {
			t.Fatalf("CreateInstance() failed updating records: %v", err)
		}
	}
	return inst
}

// Float returns a pointer to f. Handy for optional grades.
func Float(f float64) *float64 { return &f }

// Int returns a pointer to n. Handy for optional capacities.
func Int(n int) *int { return &n }
