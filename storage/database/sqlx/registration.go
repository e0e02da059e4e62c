package sqlxrepos

import (
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/volatiletech/null/v8"

	"github.com/kymawa/ratiba/core/registration"
)

// Courses

type courseRepository struct {
	db *sqlx.DB
}

func NewCourseRepository(db *sqlx.DB) registration.CourseRepository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) CreateCourse(c registration.Course) (registration.Course, error) {
	err := repo.db.QueryRow(
		`INSERT INTO courses (code, name) VALUES ($1, $2) RETURNING id`,
		c.Code, c.Name,
	).Scan(&c.ID)
	if err != nil {
		return registration.Course{}, err
	}
	return c, nil
}

func (repo *courseRepository) GetCourseByID(id string) (registration.Course, error) {
	var c registration.Course
	err := repo.db.Get(&c, `SELECT id, code, name FROM courses WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return registration.Course{}, registration.ErrCourseNotFound
	}
	if err != nil {
		return registration.Course{}, err
	}
	return c, nil
}

// Semesters

type semesterRow struct {
	ID                    string         `db:"id"`
	Name                  string         `db:"name"`
	StartDate             time.Time      `db:"start_date"`
	EndDate               time.Time      `db:"end_date"`
	RegistrationStartDate time.Time      `db:"registration_start_date"`
	RegistrationEndDate   time.Time      `db:"registration_end_date"`
	MaxUnitsPerStudent    int            `db:"max_units_per_student"`
	CourseIDs             pq.StringArray `db:"course_ids"`
	UnitIDs               pq.StringArray `db:"unit_ids"`
}

func (r semesterRow) toSemester() registration.Semester {
	return registration.Semester{
		ID:                    r.ID,
		Name:                  r.Name,
		StartDate:             r.StartDate,
		EndDate:               r.EndDate,
		RegistrationStartDate: r.RegistrationStartDate,
		RegistrationEndDate:   r.RegistrationEndDate,
		MaxUnitsPerStudent:    r.MaxUnitsPerStudent,
		CourseIDs:             r.CourseIDs,
		UnitIDs:               r.UnitIDs,
	}
}

type semesterRepository struct {
	db *sqlx.DB
}

func NewSemesterRepository(db *sqlx.DB) registration.SemesterRepository {
	return &semesterRepository{db: db}
}

func (repo *semesterRepository) CreateSemester(s registration.Semester) (registration.Semester, error) {
	query := `
		INSERT INTO semesters (
			name, start_date, end_date, registration_start_date, registration_end_date,
			max_units_per_student, course_ids, unit_ids
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	err := repo.db.QueryRow(
		query,
		s.Name, s.StartDate, s.EndDate, s.RegistrationStartDate, s.RegistrationEndDate,
		s.MaxUnitsPerStudent, pq.StringArray(s.CourseIDs), pq.StringArray(s.UnitIDs),
	).Scan(&s.ID)
	if err != nil {
		return registration.Semester{}, err
	}
	return s, nil
}

func (repo *semesterRepository) GetSemesterByID(id string) (registration.Semester, error) {
	var row semesterRow
	err := repo.db.Get(&row, `SELECT * FROM semesters WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return registration.Semester{}, registration.ErrSemesterNotFound
	}
	if err != nil {
		return registration.Semester{}, err
	}
	return row.toSemester(), nil
}

// Units

type unitRow struct {
	ID              string         `db:"id"`
	Code            string         `db:"code"`
	Name            string         `db:"name"`
	CourseID        string         `db:"course_id"`
	Capacity        null.Int       `db:"capacity"`
	PrerequisiteIDs pq.StringArray `db:"prerequisite_ids"`
}

func (r unitRow) toUnit() registration.Unit {
	u := registration.Unit{
		ID:              r.ID,
		Code:            r.Code,
		Name:            r.Name,
		CourseID:        r.CourseID,
		PrerequisiteIDs: r.PrerequisiteIDs,
	}
	if r.Capacity.Valid {
		capacity := r.Capacity.Int
		u.Capacity = &capacity
	}
	return u
}

type unitRepository struct {
	db *sqlx.DB
}

func NewUnitRepository(db *sqlx.DB) registration.UnitRepository {
	return &unitRepository{db: db}
}

func (repo *unitRepository) CreateUnit(u registration.Unit) (registration.Unit, error) {
	capacity := null.IntFromPtr(u.Capacity)
	query := `
		INSERT INTO units (code, name, course_id, capacity, prerequisite_ids)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err := repo.db.QueryRow(
		query,
		u.Code, u.Name, u.CourseID, capacity, pq.StringArray(u.PrerequisiteIDs),
	).Scan(&u.ID)
	if err != nil {
		return registration.Unit{}, err
	}
	return u, nil
}

func (repo *unitRepository) GetUnitByID(id string) (registration.Unit, error) {
	var row unitRow
	err := repo.db.Get(&row, `SELECT * FROM units WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return registration.Unit{}, registration.ErrUnitNotFound
	}
	if err != nil {
		return registration.Unit{}, err
	}
	return row.toUnit(), nil
}

func (repo *unitRepository) GetUnitsByID(ids ...string) ([]registration.Unit, error) {
	if len(ids) == 0 {
		return []registration.Unit{}, nil
	}
	query, args, err := sqlx.In(`SELECT * FROM units WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var rows []unitRow
	if err := repo.db.Select(&rows, repo.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	units := make([]registration.Unit, 0, len(rows))
	for _, row := range rows {
		units = append(units, row.toUnit())
	}
	return units, nil
}

// Registrations

type registrationRow struct {
	ID           string        `db:"id"`
	StudentID    string        `db:"student_id"`
	UnitID       string        `db:"unit_id"`
	SemesterID   string        `db:"semester_id"`
	Status       string        `db:"status"`
	Grade        null.Float64  `db:"grade"`
	RegisteredAt time.Time     `db:"registered_at"`
}

func (r registrationRow) toRegistration() registration.UnitRegistration {
	reg := registration.UnitRegistration{
		ID:           r.ID,
		StudentID:    r.StudentID,
		UnitID:       r.UnitID,
		SemesterID:   r.SemesterID,
		Status:       registration.RegistrationStatus(r.Status),
		RegisteredAt: r.RegisteredAt,
	}
	if r.Grade.Valid {
		grade := r.Grade.Float64
		reg.Grade = &grade
	}
	return reg
}

type registrationRepository struct {
	db *sqlx.DB
}

func NewRegistrationRepository(db *sqlx.DB) registration.RegistrationRepository {
	return &registrationRepository{db: db}
}

func (repo *registrationRepository) CreateRegistration(reg registration.UnitRegistration) (registration.UnitRegistration, error) {
	query := `
		INSERT INTO unit_registrations (student_id, unit_id, semester_id, status, grade, registered_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := repo.db.QueryRow(
		query,
		reg.StudentID, reg.UnitID, reg.SemesterID, string(reg.Status),
		null.Float64FromPtr(reg.Grade), reg.RegisteredAt,
	).Scan(&reg.ID)
	if err != nil {
		return registration.UnitRegistration{}, err
	}
	return reg, nil
}

func (repo *registrationRepository) GetRegistrationByID(id string) (registration.UnitRegistration, error) {
	var row registrationRow
	err := repo.db.Get(&row, `SELECT * FROM unit_registrations WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return registration.UnitRegistration{}, registration.ErrRegistrationNotFound
	}
	if err != nil {
		return registration.UnitRegistration{}, err
	}
	return row.toRegistration(), nil
}

func (repo *registrationRepository) FilterRegistrations(filter registration.RegistrationFilter) ([]registration.UnitRegistration, error) {
	conds := make([]string, 0, 4)
	args := make([]interface{}, 0, 4)

	if filter.StudentID != "" {
		conds = append(conds, "student_id = ?")
		args = append(args, filter.StudentID)
	}
	if filter.UnitID != "" {
		conds = append(conds, "unit_id = ?")
		args = append(args, filter.UnitID)
	}
	if filter.SemesterID != "" {
		conds = append(conds, "semester_id = ?")
		args = append(args, filter.SemesterID)
	}
	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(filter.Status))
	}

	query := `SELECT * FROM unit_registrations`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY registered_at"

	var rows []registrationRow
	if err := repo.db.Select(&rows, repo.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	regs := make([]registration.UnitRegistration, 0, len(rows))
	for _, row := range rows {
		regs = append(regs, row.toRegistration())
	}
	return regs, nil
}

func (repo *registrationRepository) UpdateRegistration(reg registration.UnitRegistration) (registration.UnitRegistration, error) {
	query := `
		UPDATE unit_registrations SET
			student_id = $2, unit_id = $3, semester_id = $4, status = $5, grade = $6
		WHERE id = $1`
	res, err := repo.db.Exec(
		query,
		reg.ID, reg.StudentID, reg.UnitID, reg.SemesterID, string(reg.Status),
		null.Float64FromPtr(reg.Grade),
	)
	if err != nil {
		return registration.UnitRegistration{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return registration.UnitRegistration{}, registration.ErrRegistrationNotFound
	}
	return reg, nil
}
