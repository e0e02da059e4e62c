package inmemdb

import (
	"sort"

	"github.com/kymawa/ratiba/core/registration"
)

// Courses

type courseRepository struct {
	db *courseTable
}

func NewCourseRepository(db *DB) registration.CourseRepository {
	return &courseRepository{db: db.courses}
}

func (repo *courseRepository) CreateCourse(c registration.Course) (registration.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	c.ID = newID()
	repo.db.table[c.ID] = &c
	return c, nil
}

func (repo *courseRepository) GetCourseByID(id string) (registration.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if c, ok := repo.db.table[id]; ok {
		return *c, nil
	}
	return registration.Course{}, registration.ErrCourseNotFound
}

// Semesters

type semesterRepository struct {
	db *semesterTable
}

func NewSemesterRepository(db *DB) registration.SemesterRepository {
	return &semesterRepository{db: db.semesters}
}

func (repo *semesterRepository) CreateSemester(s registration.Semester) (registration.Semester, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	s.ID = newID()
	repo.db.table[s.ID] = &s
	return s, nil
}

func (repo *semesterRepository) GetSemesterByID(id string) (registration.Semester, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if s, ok := repo.db.table[id]; ok {
		return *s, nil
	}
	return registration.Semester{}, registration.ErrSemesterNotFound
}

// Units

type unitRepository struct {
	db *unitTable
}

func NewUnitRepository(db *DB) registration.UnitRepository {
	return &unitRepository{db: db.units}
}

func (repo *unitRepository) CreateUnit(u registration.Unit) (registration.Unit, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	u.ID = newID()
	repo.db.table[u.ID] = &u
	return u, nil
}

func (repo *unitRepository) GetUnitByID(id string) (registration.Unit, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if u, ok := repo.db.table[id]; ok {
		return *u, nil
	}
	return registration.Unit{}, registration.ErrUnitNotFound
}

func (repo *unitRepository) GetUnitsByID(ids ...string) ([]registration.Unit, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	units := make([]registration.Unit, 0, len(ids))
	for _, id := range ids {
		if u, ok := repo.db.table[id]; ok {
			units = append(units, *u)
		}
	}
	return units, nil
}

// Registrations

type registrationRepository struct {
	db *registrationTable
}

func NewRegistrationRepository(db *DB) registration.RegistrationRepository {
	return &registrationRepository{db: db.registrations}
}

func (repo *registrationRepository) CreateRegistration(reg registration.UnitRegistration) (registration.UnitRegistration, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	reg.ID = newID()
	repo.db.table[reg.ID] = &reg
	return reg, nil
}

func (repo *registrationRepository) GetRegistrationByID(id string) (registration.UnitRegistration, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if reg, ok := repo.db.table[id]; ok {
		return *reg, nil
	}
	return registration.UnitRegistration{}, registration.ErrRegistrationNotFound
}

func (repo *registrationRepository) FilterRegistrations(filter registration.RegistrationFilter) ([]registration.UnitRegistration, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	matches := make([]registration.UnitRegistration, 0)
	for _, reg := range repo.db.table {
		if filter.StudentID != "" && reg.StudentID != filter.StudentID {
			continue
		}
		if filter.UnitID != "" && reg.UnitID != filter.UnitID {
			continue
		}
		if filter.SemesterID != "" && reg.SemesterID != filter.SemesterID {
			continue
		}
		if filter.Status != "" && reg.Status != filter.Status {
			continue
		}
		matches = append(matches, *reg)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].RegisteredAt.Before(matches[j].RegisteredAt) })
	return matches, nil
}

func (repo *registrationRepository) UpdateRegistration(reg registration.UnitRegistration) (registration.UnitRegistration, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[reg.ID]; !ok {
		return registration.UnitRegistration{}, registration.ErrRegistrationNotFound
	}
	repo.db.table[reg.ID] = &reg
	return reg, nil
}
