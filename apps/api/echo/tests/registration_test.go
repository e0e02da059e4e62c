package tests

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kymawa/ratiba/core/registration"
	"github.com/kymawa/ratiba/core/user"
	testutil "github.com/kymawa/ratiba/tests"
)

func TestRegistrationAPI_validate(t *testing.T) {
	server := setup(t)
	course := testutil.CreateCourse(t, crsRepo, "CS", "Computer Science")
	std := testutil.CreateUser(t, usrRepo, "Ada", "ada@test.cd", []string{user.RoleStudent}, course.ID)

	body := marshallObj(t, map[string]string{
		"student_id":  std.ID,
		"unit_id":     "unit-1",
		"semester_id": "nope",
	})
	req, rec := newRequest(http.MethodPost, "/v1/registrations/validate", body)
	server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res registration.Result
	decodeBody(t, rec, &res)
	assert.False(t, res.IsValid)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, registration.CodeSemesterNotFound, res.Errors[0].Code)
}

func TestRegistrationAPI_registerAndDrop(t *testing.T) {
	server := setup(t)
	now := time.Now().UTC()
	course := testutil.CreateCourse(t, crsRepo, "CS", "Computer Science")
	sem := testutil.CreateSemester(t, semRepo, "Semester 1", now.AddDate(0, 0, -7), now.AddDate(0, 0, 7), 8)
	unit := testutil.CreateUnit(t, unitRepo, "CS101", course.ID, nil)
	std := testutil.CreateUser(t, usrRepo, "Ada", "ada@test.cd", []string{user.RoleStudent}, course.ID)

	body := marshallObj(t, map[string]string{
		"student_id":  std.ID,
		"unit_id":     unit.ID,
		"semester_id": sem.ID,
	})
	req, rec := newRequest(http.MethodPost, "/v1/registrations", body)
	server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		Registration registration.UnitRegistration `json:"registration"`
		Result       registration.Result           `json:"result"`
	}
	decodeBody(t, rec, &created)
	assert.NotEmpty(t, created.Registration.ID)
	assert.Equal(t, registration.StatusActive, created.Registration.Status)
	assert.True(t, created.Result.IsValid)

	// registering twice fails the rule chain, nothing is persisted
	req, rec = newRequest(http.MethodPost, "/v1/registrations", body)
	server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	var res registration.Result
	decodeBody(t, rec, &res)
	assert.False(t, res.IsValid)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, registration.CodeAlreadyRegistered, res.Errors[0].Code)

	// dropping frees the seat
	req, rec = newRequest(http.MethodDelete, "/v1/registrations/"+created.Registration.ID)
	server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var dropped registration.UnitRegistration
	decodeBody(t, rec, &dropped)
	assert.Equal(t, registration.StatusDropped, dropped.Status)

	req, rec = newRequest(http.MethodDelete, "/v1/registrations/nope")
	server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
}

func TestRegistrationAPI_dropCompleted(t *testing.T) {
	server := setup(t)
	reg := testutil.CreateRegistration(t, regRepo, "std-1", "unit-1", "sem-1",
		registration.StatusCompleted, testutil.Float(80))

	req, rec := newRequest(http.MethodDelete, "/v1/registrations/"+reg.ID)
	server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
}
