package main

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/kymawa/ratiba/core/registration"
	"github.com/kymawa/ratiba/core/schedule"
	"github.com/kymawa/ratiba/core/user"
	sqlxrepos "github.com/kymawa/ratiba/storage/database/sqlx"
)

// seed loads a small demo dataset: one course, an open semester, a few units
// with a prerequisite chain, two venues, a teacher, two students and a draft
// timetable with lectures.
func (cli *commandLine) seed(db *sql.DB) error {
	xdb := sqlx.NewDb(db, cli.conf.Database.Engine)

	courses := sqlxrepos.NewCourseRepository(xdb)
	semesters := sqlxrepos.NewSemesterRepository(xdb)
	units := sqlxrepos.NewUnitRepository(xdb)
	venues := sqlxrepos.NewVenueRepository(xdb)
	timetables := sqlxrepos.NewTimetableRepository(xdb)
	lectures := sqlxrepos.NewLectureRepository(xdb)
	users := sqlxrepos.NewUserRepository(xdb)

	now := time.Now().UTC()

	cs, err := courses.CreateCourse(registration.Course{Code: "CS", Name: "Computer Science"})
	if err != nil {
		return err
	}

	intro, err := units.CreateUnit(registration.Unit{Code: "CS101", Name: "Intro to Programming", CourseID: cs.ID})
	if err != nil {
		return err
	}
	capacity := 30
	algos, err := units.CreateUnit(registration.Unit{
		Code:            "CS201",
		Name:            "Algorithms",
		CourseID:        cs.ID,
		Capacity:        &capacity,
		PrerequisiteIDs: []string{intro.ID},
	})
	if err != nil {
		return err
	}
	db101, err := units.CreateUnit(registration.Unit{Code: "CS110", Name: "Databases", CourseID: cs.ID})
	if err != nil {
		return err
	}

	sem, err := semesters.CreateSemester(registration.Semester{
		Name:                  "Semester 1",
		StartDate:             now.AddDate(0, 0, -7),
		EndDate:               now.AddDate(0, 4, 0),
		RegistrationStartDate: now.AddDate(0, 0, -7),
		RegistrationEndDate:   now.AddDate(0, 1, 0),
		MaxUnitsPerStudent:    8,
		CourseIDs:             []string{cs.ID},
		UnitIDs:               []string{intro.ID, algos.ID, db101.ID},
	})
	if err != nil {
		return err
	}

	for _, v := range []schedule.Venue{
		{Building: "Science Block", Room: "SB-101", Capacity: 60, Type: "lecture_hall", IsActive: true, CreatedAt: now, UpdatedAt: now},
		{Building: "Science Block", Room: "SB-202", Capacity: 40, Type: "lab", IsActive: true, CreatedAt: now, UpdatedAt: now},
	} {
		if _, err = venues.CreateVenue(v); err != nil {
			return err
		}
	}

	teacher, err := users.CreateUser(user.User{
		Name: "Grace Hopper", Email: "grace@ratiba.local", Roles: []string{user.RoleTeacher},
		IsActive: true, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		return err
	}
	for _, u := range []user.User{
		{Name: "Ada Student", Email: "ada@ratiba.local", Roles: []string{user.RoleStudent}, CourseID: cs.ID, IsActive: true, CreatedAt: now, UpdatedAt: now},
		{Name: "Alan Student", Email: "alan@ratiba.local", Roles: []string{user.RoleStudent}, CourseID: cs.ID, IsActive: true, CreatedAt: now, UpdatedAt: now},
	} {
		if _, err = users.CreateUser(u); err != nil {
			return err
		}
	}

	tt, err := timetables.CreateTimetable(schedule.Timetable{
		Name:       "CS - Semester 1",
		SemesterID: sem.ID,
		CourseID:   cs.ID,
		Status:     schedule.TimetableDraft,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return err
	}

	for _, lec := range []schedule.Lecture{
		{
			TimetableID: tt.ID, UnitID: intro.ID, UnitCode: intro.Code, TeacherID: teacher.ID,
			DayOfWeek: 1, StartTime: "09:00", EndTime: "11:00",
			Venue: schedule.LectureVenue{Building: "Science Block", Room: "SB-101"},
			LectureType: "lecture", IsRecurring: true, Frequency: "weekly", CreatedAt: now, UpdatedAt: now,
		},
		{
			TimetableID: tt.ID, UnitID: algos.ID, UnitCode: algos.Code, TeacherID: teacher.ID,
			DayOfWeek: 3, StartTime: "14:00", EndTime: "16:00",
			Venue: schedule.LectureVenue{Building: "Science Block", Room: "SB-202"},
			LectureType: "lab", IsRecurring: true, Frequency: "weekly", CreatedAt: now, UpdatedAt: now,
		},
	} {
		if _, err = lectures.CreateLecture(lec); err != nil {
			return err
		}
	}

	fmt.Printf("seeded course %s, semester %s, timetable %s\n", cs.Code, sem.Name, tt.Name)
	return nil
}
