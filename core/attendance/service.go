package attendance

import (
	"errors"
	"fmt"
	"time"

	"github.com/kymawa/ratiba/core"
	"github.com/kymawa/ratiba/core/schedule"
)

var (
	// errors
	ErrInstanceNotFound = errors.New("lecture instance not found")
)

var nowFunc = time.Now // mockable

type (
	InstanceFilter struct {
		LectureID  string
		LectureIDs []string
		Status     InstanceStatus
		DateBefore time.Time
	}

	// Repository persists LectureInstances and their attendance records.
	Repository interface {
		CreateInstance(inst LectureInstance) (LectureInstance, error)
		GetInstanceByID(id string) (LectureInstance, error)
		GetInstanceByLectureAndDate(lectureID string, date time.Time) (LectureInstance, error)
		// FilterInstances applies AND operation on available InstanceFilter
		// fields; zero values are ignored.
		FilterInstances(filter InstanceFilter) ([]LectureInstance, error)
		UpdateInstance(inst LectureInstance) (LectureInstance, error)
	}

	Service struct {
		repo     Repository
		lectures schedule.LectureRepository
		log      core.Logger
	}
)

func NewService(log core.Logger, repo Repository, lectures schedule.LectureRepository) *Service {
	return &Service{repo: repo, lectures: lectures, log: log}
}

// Day truncates t to its calendar date (midnight UTC), the granularity at
// which instance uniqueness is enforced.
func Day(t time.Time) time.Time {
	return time.Date(t.UTC().Year(), t.UTC().Month(), t.UTC().Day(), 0, 0, 0, 0, time.UTC)
}

// EnsureInstance returns the instance for (lecture, date), creating it lazily
// on first access.
func (svc *Service) EnsureInstance(lectureID string, date time.Time) (LectureInstance, error) {
	if _, err := svc.lectures.GetLectureByID(lectureID); err != nil {
		return LectureInstance{}, err
	}

	day := Day(date)
	inst, err := svc.repo.GetInstanceByLectureAndDate(lectureID, day)
	if err == nil {
		return inst, nil
	}
	if err != ErrInstanceNotFound {
		return LectureInstance{}, err
	}

	now := nowFunc().UTC()
	return svc.repo.CreateInstance(LectureInstance{
		LectureID: lectureID,
		Date:      day,
		Status:    InstanceScheduled,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// SetStatus transitions an instance out of scheduled. Transitions never move
// backward: completed, cancelled and postponed are final.
func (svc *Service) SetStatus(id string, status InstanceStatus) (LectureInstance, error) {
	switch status {
	case InstanceCompleted, InstanceCancelled, InstancePostponed:
	default:
		return LectureInstance{}, core.NewValidationError(
			fmt.Errorf("invalid instance status %q", status),
			core.FieldError{Field: "status", Error: "must be one of completed, cancelled, postponed"},
		)
	}

	inst, err := svc.repo.GetInstanceByID(id)
	if err != nil {
		return LectureInstance{}, err
	}
	if inst.Status != InstanceScheduled {
		return LectureInstance{}, core.NewStateError(fmt.Sprintf(
			"instance is already %s and cannot move to %s", inst.Status, status))
	}

	inst.Status = status
	inst.UpdatedAt = nowFunc().UTC()
	return svc.repo.UpdateInstance(inst)
}

// CheckIn records (or corrects) a student's attendance on an instance.
func (svc *Service) CheckIn(instanceID, studentID string, status Status) (LectureInstance, error) {
	if !KnownStatus(status) {
		return LectureInstance{}, core.NewValidationError(
			fmt.Errorf("invalid attendance status %q", status),
			core.FieldError{Field: "status", Error: "must be one of present, absent, late, excused"},
		)
	}
	if studentID == "" {
		return LectureInstance{}, core.NewValidationError(
			errors.New("student id is required"),
			core.FieldError{Field: "student_id", Error: "this field is required"},
		)
	}

	inst, err := svc.repo.GetInstanceByID(instanceID)
	if err != nil {
		return LectureInstance{}, err
	}

	rec := Record{StudentID: studentID, Status: status, CheckedInAt: nowFunc().UTC()}
	replaced := false
	for i, existing := range inst.Attendance {
		if existing.StudentID == studentID {
			inst.Attendance[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		inst.Attendance = append(inst.Attendance, rec)
	}

	inst.UpdatedAt = nowFunc().UTC()
	return svc.repo.UpdateInstance(inst)
}
