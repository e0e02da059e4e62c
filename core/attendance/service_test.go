package attendance_test

import (
	"testing"
	"time"

	"github.com/kymawa/ratiba/core"
	"github.com/kymawa/ratiba/core/attendance"
	"github.com/kymawa/ratiba/core/schedule"
	inmemdb "github.com/kymawa/ratiba/storage/database/inmem"
	testutil "github.com/kymawa/ratiba/tests"
)

type env struct {
	svc       *attendance.Service
	instances attendance.Repository
	lectures  schedule.LectureRepository
}

func setup(t *testing.T) (*env, schedule.Lecture) {
	t.Helper()
	db := inmemdb.Open()
	e := &env{
		instances: inmemdb.NewInstanceRepository(db),
		lectures:  inmemdb.NewLectureRepository(db),
	}
	e.svc = attendance.NewService(testutil.NewLogger(), e.instances, e.lectures)

	lec := testutil.CreateLecture(t, e.lectures, "tt-1", "unit-1", "teacher-1", 1, "09:00", "11:00",
		schedule.LectureVenue{Building: "Main", Room: "101"})
	return e, lec
}

func TestService_EnsureInstance(t *testing.T) {
	e, lec := setup(t)

	when := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC) // not midnight on purpose
	inst, err := e.svc.EnsureInstance(lec.ID, when)
	if err != nil {
		t.Fatalf("EnsureInstance() failed: %v", err)
	}
	wantDay := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	if !inst.Date.Equal(wantDay) {
		t.Errorf("Date = %v; want truncated to %v", inst.Date, wantDay)
	}
	if inst.Status != attendance.InstanceScheduled {
		t.Errorf("Status = %s; want scheduled", inst.Status)
	}

	// same calendar day resolves to the same instance
	again, err := e.svc.EnsureInstance(lec.ID, when.Add(3*time.Hour))
	if err != nil {
		t.Fatalf("EnsureInstance() failed: %v", err)
	}
	if again.ID != inst.ID {
		t.Errorf("second EnsureInstance() created a new instance: %s != %s", again.ID, inst.ID)
	}

	// another day is another instance
	other, err := e.svc.EnsureInstance(lec.ID, when.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("EnsureInstance() failed: %v", err)
	}
	if other.ID == inst.ID {
		t.Error("EnsureInstance() reused the instance across days")
	}

	if _, err = e.svc.EnsureInstance("nope", when); err != schedule.ErrLectureNotFound {
		t.Errorf("EnsureInstance() error = %v; want ErrLectureNotFound", err)
	}
}

func TestService_SetStatus(t *testing.T) {
	e, lec := setup(t)
	inst, err := e.svc.EnsureInstance(lec.ID, time.Now())
	if err != nil {
		t.Fatalf("EnsureInstance() failed: %v", err)
	}

	updated, err := e.svc.SetStatus(inst.ID, attendance.InstanceCompleted)
	if err != nil {
		t.Fatalf("SetStatus() failed: %v", err)
	}
	if updated.Status != attendance.InstanceCompleted {
		t.Errorf("Status = %s; want completed", updated.Status)
	}

	// transitions never move backward
	if _, err = e.svc.SetStatus(inst.ID, attendance.InstanceCancelled); !core.IsStateError(err) {
		t.Errorf("SetStatus() error = %v; want StateError", err)
	}

	// scheduled is not a target status
	if _, err = e.svc.SetStatus(inst.ID, attendance.InstanceScheduled); !core.IsValidationError(err) {
		t.Errorf("SetStatus() error = %v; want ValidationError", err)
	}

	if _, err = e.svc.SetStatus("nope", attendance.InstanceCancelled); err != attendance.ErrInstanceNotFound {
		t.Errorf("SetStatus() error = %v; want ErrInstanceNotFound", err)
	}
}

func TestService_CheckIn(t *testing.T) {
	e, lec := setup(t)
	inst, err := e.svc.EnsureInstance(lec.ID, time.Now())
	if err != nil {
		t.Fatalf("EnsureInstance() failed: %v", err)
	}

	updated, err := e.svc.CheckIn(inst.ID, "std-1", attendance.StatusPresent)
	if err != nil {
		t.Fatalf("CheckIn() failed: %v", err)
	}
	if len(updated.Attendance) != 1 || updated.Attendance[0].Status != attendance.StatusPresent {
		t.Fatalf("Attendance = %+v; want one present record", updated.Attendance)
	}

	// re-checking in corrects the record instead of duplicating it
	updated, err = e.svc.CheckIn(inst.ID, "std-1", attendance.StatusLate)
	if err != nil {
		t.Fatalf("CheckIn() failed: %v", err)
	}
	if len(updated.Attendance) != 1 || updated.Attendance[0].Status != attendance.StatusLate {
		t.Errorf("Attendance = %+v; want the record replaced with late", updated.Attendance)
	}

	// a second student appends
	updated, err = e.svc.CheckIn(inst.ID, "std-2", attendance.StatusAbsent)
	if err != nil {
		t.Fatalf("CheckIn() failed: %v", err)
	}
	if len(updated.Attendance) != 2 {
		t.Errorf("Attendance count = %d; want 2", len(updated.Attendance))
	}

	if _, err = e.svc.CheckIn(inst.ID, "std-1", attendance.Status("dancing")); !core.IsValidationError(err) {
		t.Errorf("CheckIn() error = %v; want ValidationError for unknown status", err)
	}
	if _, err = e.svc.CheckIn(inst.ID, "", attendance.StatusPresent); !core.IsValidationError(err) {
		t.Errorf("CheckIn() error = %v; want ValidationError for missing student", err)
	}
	if _, err = e.svc.CheckIn("nope", "std-1", attendance.StatusPresent); err != attendance.ErrInstanceNotFound {
		t.Errorf("CheckIn() error = %v; want ErrInstanceNotFound", err)
	}
}
