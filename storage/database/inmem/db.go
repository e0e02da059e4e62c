// Package inmemdb is a map-backed store used for local development and
// tests. Repositories mint uuid ids and guard their tables with RW mutexes.
package inmemdb

import (
	"sync"

	"github.com/google/uuid"

	"github.com/kymawa/ratiba/core/attendance"
	"github.com/kymawa/ratiba/core/registration"
	"github.com/kymawa/ratiba/core/schedule"
	"github.com/kymawa/ratiba/core/user"
)

type (
	DB struct {
		users         *userTable
		venues        *venueTable
		timetables    *timetableTable
		lectures      *lectureTable
		instances     *instanceTable
		courses       *courseTable
		semesters     *semesterTable
		units         *unitTable
		registrations *registrationTable
	}

	userTable struct {
		table map[string]*user.User
		mutex sync.RWMutex
	}
	venueTable struct {
		table map[string]*schedule.Venue
		mutex sync.RWMutex
	}
	timetableTable struct {
		table map[string]*schedule.Timetable
		mutex sync.RWMutex
	}
	lectureTable struct {
		table map[string]*schedule.Lecture
		mutex sync.RWMutex
	}
	instanceTable struct {
		table map[string]*attendance.LectureInstance
		mutex sync.RWMutex
	}
	courseTable struct {
		table map[string]*registration.Course
		mutex sync.RWMutex
	}
	semesterTable struct {
		table map[string]*registration.Semester
		mutex sync.RWMutex
	}
	unitTable struct {
		table map[string]*registration.Unit
		mutex sync.RWMutex
	}
	registrationTable struct {
		table map[string]*registration.UnitRegistration
		mutex sync.RWMutex
	}
)

func Open() *DB {
	return &DB{
		users:         &userTable{table: make(map[string]*user.User)},
		venues:        &venueTable{table: make(map[string]*schedule.Venue)},
		timetables:    &timetableTable{table: make(map[string]*schedule.Timetable)},
		lectures:      &lectureTable{table: make(map[string]*schedule.Lecture)},
		instances:     &instanceTable{table: make(map[string]*attendance.LectureInstance)},
		courses:       &courseTable{table: make(map[string]*registration.Course)},
		semesters:     &semesterTable{table: make(map[string]*registration.Semester)},
		units:         &unitTable{table: make(map[string]*registration.Unit)},
		registrations: &registrationTable{table: make(map[string]*registration.UnitRegistration)},
	}
}

func newID() string {
	return uuid.New().String()
}
