package sqlxrepos

import (
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/kymawa/ratiba/core/attendance"
)

type instanceRow struct {
	ID        string    `db:"id"`
	LectureID string    `db:"lecture_id"`
	Date      time.Time `db:"date"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r instanceRow) toInstance() attendance.LectureInstance {
	return attendance.LectureInstance{
		ID:        r.ID,
		LectureID: r.LectureID,
		Date:      r.Date.UTC(),
		Status:    attendance.InstanceStatus(r.Status),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type recordRow struct {
	InstanceID  string    `db:"instance_id"`
	StudentID   string    `db:"student_id"`
	Status      string    `db:"status"`
	CheckedInAt time.Time `db:"checked_in_at"`
}

type instanceRepository struct {
	db *sqlx.DB
}

func NewInstanceRepository(db *sqlx.DB) attendance.Repository {
	return &instanceRepository{db: db}
}

func (repo *instanceRepository) CreateInstance(inst attendance.LectureInstance) (attendance.LectureInstance, error) {
	query := `
		INSERT INTO lecture_instances (lecture_id, date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err := repo.db.QueryRow(
		query,
		inst.LectureID, inst.Date, string(inst.Status), inst.CreatedAt, inst.UpdatedAt,
	).Scan(&inst.ID)
	if err != nil {
		return attendance.LectureInstance{}, err
	}
	return inst, nil
}

func (repo *instanceRepository) GetInstanceByID(id string) (attendance.LectureInstance, error) {
	var row instanceRow
	err := repo.db.Get(&row, `SELECT * FROM lecture_instances WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return attendance.LectureInstance{}, attendance.ErrInstanceNotFound
	}
	if err != nil {
		return attendance.LectureInstance{}, err
	}
	inst := row.toInstance()
	if err := repo.loadAttendance(&inst); err != nil {
		return attendance.LectureInstance{}, err
	}
	return inst, nil
}

func (repo *instanceRepository) GetInstanceByLectureAndDate(lectureID string, date time.Time) (attendance.LectureInstance, error) {
	var row instanceRow
	err := repo.db.Get(
		&row,
		`SELECT * FROM lecture_instances WHERE lecture_id = $1 AND date = $2`,
		lectureID, date,
	)
	if err == sql.ErrNoRows {
		return attendance.LectureInstance{}, attendance.ErrInstanceNotFound
	}
	if err != nil {
		return attendance.LectureInstance{}, err
	}
	inst := row.toInstance()
	if err := repo.loadAttendance(&inst); err != nil {
		return attendance.LectureInstance{}, err
	}
	return inst, nil
}

func (repo *instanceRepository) FilterInstances(filter attendance.InstanceFilter) ([]attendance.LectureInstance, error) {
	conds := make([]string, 0, 4)
	args := make([]interface{}, 0, 4)

	if filter.LectureID != "" {
		conds = append(conds, "lecture_id = ?")
		args = append(args, filter.LectureID)
	}
	if len(filter.LectureIDs) > 0 {
		conds = append(conds, "lecture_id IN (?)")
		args = append(args, filter.LectureIDs)
	}
	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(filter.Status))
	}
	if !filter.DateBefore.IsZero() {
		conds = append(conds, "date < ?")
		args = append(args, filter.DateBefore)
	}

	query := `SELECT * FROM lecture_instances`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY date"

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, err
	}
	var rows []instanceRow
	if err := repo.db.Select(&rows, repo.db.Rebind(query), args...); err != nil {
		return nil, err
	}

	instances := make([]attendance.LectureInstance, 0, len(rows))
	for _, row := range rows {
		inst := row.toInstance()
		if err := repo.loadAttendance(&inst); err != nil {
			return nil, err
		}
		instances = append(instances, inst)
	}
	return instances, nil
}

func (repo *instanceRepository) UpdateInstance(inst attendance.LectureInstance) (attendance.LectureInstance, error) {
	tx, err := repo.db.Begin()
	if err != nil {
		return attendance.LectureInstance{}, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(
		`UPDATE lecture_instances SET status = $2, updated_at = $3 WHERE id = $1`,
		inst.ID, string(inst.Status), inst.UpdatedAt,
	)
	if err != nil {
		return attendance.LectureInstance{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return attendance.LectureInstance{}, attendance.ErrInstanceNotFound
	}

	for _, rec := range inst.Attendance {
		_, err = tx.Exec(
			`INSERT INTO attendance_records (instance_id, student_id, status, checked_in_at)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (instance_id, student_id)
			 DO UPDATE SET status = EXCLUDED.status, checked_in_at = EXCLUDED.checked_in_at`,
			inst.ID, rec.StudentID, string(rec.Status), rec.CheckedInAt,
		)
		if err != nil {
			return attendance.LectureInstance{}, err
		}
	}

	if err = tx.Commit(); err != nil {
		return attendance.LectureInstance{}, err
	}
	return inst, nil
}

func (repo *instanceRepository) loadAttendance(inst *attendance.LectureInstance) error {
	var rows []recordRow
	err := repo.db.Select(
		&rows,
		`SELECT * FROM attendance_records WHERE instance_id = $1 ORDER BY checked_in_at`,
		inst.ID,
	)
	if err != nil {
		return err
	}
	for _, row := range rows {
		inst.Attendance = append(inst.Attendance, attendance.Record{
			StudentID:   row.StudentID,
			Status:      attendance.Status(row.Status),
			CheckedInAt: row.CheckedInAt,
		})
	}
	return nil
}
