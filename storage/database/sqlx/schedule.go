package sqlxrepos

import (
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/kymawa/ratiba/core/schedule"
)

// Lectures

type lectureRow struct {
	ID          string    `db:"id"`
	TimetableID string    `db:"timetable_id"`
	UnitID      string    `db:"unit_id"`
	UnitCode    string    `db:"unit_code"`
	TeacherID   string    `db:"teacher_id"`
	DayOfWeek   int       `db:"day_of_week"`
	StartTime   string    `db:"start_time"`
	EndTime     string    `db:"end_time"`
	Building    string    `db:"building"`
	Room        string    `db:"room"`
	IsOnline    bool      `db:"is_online"`
	LectureType string    `db:"lecture_type"`
	IsRecurring bool      `db:"is_recurring"`
	Frequency   string    `db:"frequency"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r lectureRow) toLecture() schedule.Lecture {
	return schedule.Lecture{
		ID:          r.ID,
		TimetableID: r.TimetableID,
		UnitID:      r.UnitID,
		UnitCode:    r.UnitCode,
		TeacherID:   r.TeacherID,
		DayOfWeek:   r.DayOfWeek,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		Venue:       schedule.LectureVenue{Building: r.Building, Room: r.Room},
		IsOnline:    r.IsOnline,
		LectureType: r.LectureType,
		IsRecurring: r.IsRecurring,
		Frequency:   r.Frequency,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type lectureRepository struct {
	db *sqlx.DB
}

func NewLectureRepository(db *sqlx.DB) schedule.LectureRepository {
	return &lectureRepository{db: db}
}

func (repo *lectureRepository) CreateLecture(lec schedule.Lecture) (schedule.Lecture, error) {
	query := `
		INSERT INTO lectures (
			timetable_id, unit_id, unit_code, teacher_id, day_of_week, start_time, end_time,
			building, room, is_online, lecture_type, is_recurring, frequency, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id`
	err := repo.db.QueryRow(
		query,
		lec.TimetableID, lec.UnitID, lec.UnitCode, lec.TeacherID, lec.DayOfWeek, lec.StartTime, lec.EndTime,
		lec.Venue.Building, lec.Venue.Room, lec.IsOnline, lec.LectureType, lec.IsRecurring, lec.Frequency,
		lec.CreatedAt, lec.UpdatedAt,
	).Scan(&lec.ID)
	if err != nil {
		return schedule.Lecture{}, err
	}
	return lec, nil
}

func (repo *lectureRepository) GetLectureByID(id string) (schedule.Lecture, error) {
	var row lectureRow
	err := repo.db.Get(&row, `SELECT * FROM lectures WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return schedule.Lecture{}, schedule.ErrLectureNotFound
	}
	if err != nil {
		return schedule.Lecture{}, err
	}
	return row.toLecture(), nil
}

func (repo *lectureRepository) FilterLectures(filter schedule.LectureFilter) ([]schedule.Lecture, error) {
	conds := make([]string, 0, 6)
	args := make([]interface{}, 0, 6)

	if filter.TimetableID != "" {
		conds = append(conds, "timetable_id = ?")
		args = append(args, filter.TimetableID)
	}
	if len(filter.TimetableIDs) > 0 {
		conds = append(conds, "timetable_id IN (?)")
		args = append(args, filter.TimetableIDs)
	}
	if filter.UnitID != "" {
		conds = append(conds, "unit_id = ?")
		args = append(args, filter.UnitID)
	}
	if filter.TeacherID != "" {
		conds = append(conds, "teacher_id = ?")
		args = append(args, filter.TeacherID)
	}
	if filter.DayOfWeek != nil {
		conds = append(conds, "day_of_week = ?")
		args = append(args, *filter.DayOfWeek)
	}
	if filter.Building != "" {
		conds = append(conds, "building = ?")
		args = append(args, filter.Building)
	}
	if filter.Room != "" {
		conds = append(conds, "room = ?")
		args = append(args, filter.Room)
	}

	query := `SELECT * FROM lectures`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at"

	query, inArgs, err := sqlx.In(query, args...)
	if err != nil {
		return nil, err
	}

	var rows []lectureRow
	if err := repo.db.Select(&rows, repo.db.Rebind(query), inArgs...); err != nil {
		return nil, err
	}
	lectures := make([]schedule.Lecture, 0, len(rows))
	for _, row := range rows {
		lectures = append(lectures, row.toLecture())
	}
	return lectures, nil
}

func (repo *lectureRepository) UpdateLecture(lec schedule.Lecture) (schedule.Lecture, error) {
	query := `
		UPDATE lectures SET
			timetable_id = $2, unit_id = $3, unit_code = $4, teacher_id = $5, day_of_week = $6,
			start_time = $7, end_time = $8, building = $9, room = $10, is_online = $11,
			lecture_type = $12, is_recurring = $13, frequency = $14, updated_at = $15
		WHERE id = $1`
	res, err := repo.db.Exec(
		query,
		lec.ID, lec.TimetableID, lec.UnitID, lec.UnitCode, lec.TeacherID, lec.DayOfWeek,
		lec.StartTime, lec.EndTime, lec.Venue.Building, lec.Venue.Room, lec.IsOnline,
		lec.LectureType, lec.IsRecurring, lec.Frequency, time.Now().UTC(),
	)
	if err != nil {
		return schedule.Lecture{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return schedule.Lecture{}, schedule.ErrLectureNotFound
	}
	return lec, nil
}

func (repo *lectureRepository) DeleteLecturesByID(ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM lectures WHERE id IN (?)`, ids)
	if err != nil {
		return err
	}
	_, err = repo.db.Exec(repo.db.Rebind(query), args...)
	return err
}

// Timetables

type timetableRow struct {
	ID            string       `db:"id"`
	Name          string       `db:"name"`
	SemesterID    string       `db:"semester_id"`
	CourseID      string       `db:"course_id"`
	Status        string       `db:"status"`
	EffectiveFrom sql.NullTime `db:"effective_from"`
	EffectiveTo   sql.NullTime `db:"effective_to"`
	CreatedAt     time.Time    `db:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at"`
}

func (r timetableRow) toTimetable() schedule.Timetable {
	return schedule.Timetable{
		ID:            r.ID,
		Name:          r.Name,
		SemesterID:    r.SemesterID,
		CourseID:      r.CourseID,
		Status:        schedule.TimetableStatus(r.Status),
		EffectiveFrom: r.EffectiveFrom.Time,
		EffectiveTo:   r.EffectiveTo.Time,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

type timetableRepository struct {
	db *sqlx.DB
}

func NewTimetableRepository(db *sqlx.DB) schedule.TimetableRepository {
	return &timetableRepository{db: db}
}

func (repo *timetableRepository) CreateTimetable(tt schedule.Timetable) (schedule.Timetable, error) {
	if tt.Status == "" {
		tt.Status = schedule.TimetableDraft
	}
	query := `
		INSERT INTO timetables (name, semester_id, course_id, status, effective_from, effective_to, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	err := repo.db.QueryRow(
		query,
		tt.Name, tt.SemesterID, tt.CourseID, string(tt.Status),
		nullTime(tt.EffectiveFrom), nullTime(tt.EffectiveTo), tt.CreatedAt, tt.UpdatedAt,
	).Scan(&tt.ID)
	if err != nil {
		return schedule.Timetable{}, err
	}
	return tt, nil
}

func (repo *timetableRepository) GetTimetableByID(id string) (schedule.Timetable, error) {
	var row timetableRow
	err := repo.db.Get(&row, `SELECT * FROM timetables WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return schedule.Timetable{}, schedule.ErrTimetableNotFound
	}
	if err != nil {
		return schedule.Timetable{}, err
	}
	return row.toTimetable(), nil
}

func (repo *timetableRepository) FilterTimetables(filter schedule.TimetableFilter) ([]schedule.Timetable, error) {
	conds := make([]string, 0, 3)
	args := make([]interface{}, 0, 3)

	if filter.SemesterID != "" {
		conds = append(conds, "semester_id = ?")
		args = append(args, filter.SemesterID)
	}
	if filter.CourseID != "" {
		conds = append(conds, "course_id = ?")
		args = append(args, filter.CourseID)
	}
	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(filter.Status))
	}

	query := `SELECT * FROM timetables`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at"

	var rows []timetableRow
	if err := repo.db.Select(&rows, repo.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	timetables := make([]schedule.Timetable, 0, len(rows))
	for _, row := range rows {
		timetables = append(timetables, row.toTimetable())
	}
	return timetables, nil
}

func (repo *timetableRepository) UpdateTimetable(tt schedule.Timetable) (schedule.Timetable, error) {
	query := `
		UPDATE timetables SET
			name = $2, semester_id = $3, course_id = $4, status = $5,
			effective_from = $6, effective_to = $7, updated_at = $8
		WHERE id = $1`
	res, err := repo.db.Exec(
		query,
		tt.ID, tt.Name, tt.SemesterID, tt.CourseID, string(tt.Status),
		nullTime(tt.EffectiveFrom), nullTime(tt.EffectiveTo), time.Now().UTC(),
	)
	if err != nil {
		return schedule.Timetable{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return schedule.Timetable{}, schedule.ErrTimetableNotFound
	}
	return tt, nil
}

// Venues

type venueRow struct {
	ID        string    `db:"id"`
	Building  string    `db:"building"`
	Room      string    `db:"room"`
	Capacity  int       `db:"capacity"`
	Type      string    `db:"type"`
	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r venueRow) toVenue() schedule.Venue {
	return schedule.Venue{
		ID:        r.ID,
		Building:  r.Building,
		Room:      r.Room,
		Capacity:  r.Capacity,
		Type:      r.Type,
		IsActive:  r.IsActive,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type venueRepository struct {
	db *sqlx.DB
}

func NewVenueRepository(db *sqlx.DB) schedule.VenueRepository {
	return &venueRepository{db: db}
}

func (repo *venueRepository) CreateVenue(v schedule.Venue) (schedule.Venue, error) {
	query := `
		INSERT INTO venues (building, room, capacity, type, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := repo.db.QueryRow(
		query,
		v.Building, v.Room, v.Capacity, v.Type, v.IsActive, v.CreatedAt, v.UpdatedAt,
	).Scan(&v.ID)
	if err != nil {
		return schedule.Venue{}, err
	}
	return v, nil
}

func (repo *venueRepository) GetVenueByID(id string) (schedule.Venue, error) {
	var row venueRow
	err := repo.db.Get(&row, `SELECT * FROM venues WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return schedule.Venue{}, schedule.ErrVenueNotFound
	}
	if err != nil {
		return schedule.Venue{}, err
	}
	return row.toVenue(), nil
}

func (repo *venueRepository) QueryActiveVenues() ([]schedule.Venue, error) {
	var rows []venueRow
	if err := repo.db.Select(&rows, `SELECT * FROM venues WHERE is_active ORDER BY building, room`); err != nil {
		return nil, err
	}
	venues := make([]schedule.Venue, 0, len(rows))
	for _, row := range rows {
		venues = append(venues, row.toVenue())
	}
	return venues, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
