package tests

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kymawa/ratiba/core/attendance"
	"github.com/kymawa/ratiba/core/schedule"
	testutil "github.com/kymawa/ratiba/tests"
)

func TestAttendanceAPI(t *testing.T) {
	server := setup(t)
	lec := testutil.CreateLecture(t, lecRepo, "tt-1", "unit-1", "teacher-1", 1, "09:00", "11:00",
		schedule.LectureVenue{Building: "Main", Room: "101"})

	when := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	body := marshallObj(t, map[string]interface{}{"date": when})
	req, rec := newRequest(http.MethodPost, "/v1/lectures/"+lec.ID+"/instances", body)
	server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var inst attendance.LectureInstance
	decodeBody(t, rec, &inst)
	assert.Equal(t, attendance.InstanceScheduled, inst.Status)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), inst.Date)

	// same day resolves to the same instance
	req, rec = newRequest(http.MethodPost, "/v1/lectures/"+lec.ID+"/instances", body)
	server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var again attendance.LectureInstance
	decodeBody(t, rec, &again)
	assert.Equal(t, inst.ID, again.ID)

	// check a student in, then correct the record
	checkIn := marshallObj(t, map[string]string{"student_id": "std-1", "status": "present"})
	req, rec = newRequest(http.MethodPost, "/v1/instances/"+inst.ID+"/check-in", checkIn)
	server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	checkIn = marshallObj(t, map[string]string{"student_id": "std-1", "status": "late"})
	req, rec = newRequest(http.MethodPost, "/v1/instances/"+inst.ID+"/check-in", checkIn)
	server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated attendance.LectureInstance
	decodeBody(t, rec, &updated)
	require.Len(t, updated.Attendance, 1)
	assert.Equal(t, attendance.StatusLate, updated.Attendance[0].Status)

	// complete the instance; moving backward afterwards is refused
	status := marshallObj(t, map[string]string{"status": "completed"})
	req, rec = newRequest(http.MethodPut, "/v1/instances/"+inst.ID+"/status", status)
	server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	status = marshallObj(t, map[string]string{"status": "cancelled"})
	req, rec = newRequest(http.MethodPut, "/v1/instances/"+inst.ID+"/status", status)
	server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

	req, rec = newRequest(http.MethodPost, "/v1/lectures/nope/instances", body)
	server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
}
