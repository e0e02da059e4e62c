package registration_test

import (
	"strings"
	"testing"
	"time"

	"github.com/kymawa/ratiba/core"
	"github.com/kymawa/ratiba/core/registration"
	"github.com/kymawa/ratiba/core/user"
	inmemdb "github.com/kymawa/ratiba/storage/database/inmem"
	testutil "github.com/kymawa/ratiba/tests"
)

type env struct {
	eng       *registration.Engine
	courses   registration.CourseRepository
	semesters registration.SemesterRepository
	units     registration.UnitRepository
	regs      registration.RegistrationRepository
	users     user.Repository
}

func setup(t *testing.T) *env {
	t.Helper()
	db := inmemdb.Open()
	e := &env{
		courses:   inmemdb.NewCourseRepository(db),
		semesters: inmemdb.NewSemesterRepository(db),
		units:     inmemdb.NewUnitRepository(db),
		regs:      inmemdb.NewRegistrationRepository(db),
		users:     inmemdb.NewUserRepository(db),
	}
	e.eng = registration.NewEngine(testutil.NewLogger(), e.semesters, e.units, e.regs, e.users, nil)
	return e
}

func hasCode(res registration.Result, code registration.Code) bool {
	for _, re := range res.Errors {
		if re.Code == code {
			return true
		}
	}
	return false
}

// openSemester is open for registration right now.
func openSemester(t *testing.T, e *env, maxUnits int) registration.Semester {
	now := time.Now()
	return testutil.CreateSemester(t, e.semesters, "Semester 1", now.AddDate(0, 0, -7), now.AddDate(0, 0, 7), maxUnits)
}

func closedSemester(t *testing.T, e *env, maxUnits int) registration.Semester {
	now := time.Now()
	return testutil.CreateSemester(t, e.semesters, "Semester 0", now.AddDate(0, -2, 0), now.AddDate(0, -1, 0), maxUnits)
}

func TestEngine_Validate_ok(t *testing.T) {
	e := setup(t)
	course := testutil.CreateCourse(t, e.courses, "CS", "Computer Science")
	sem := openSemester(t, e, 8)
	unit := testutil.CreateUnit(t, e.units, "CS101", course.ID, nil)
	std := testutil.CreateUser(t, e.users, "Ada", "ada@test.cd", []string{user.RoleStudent}, course.ID)

	res, err := e.eng.Validate(std.ID, unit.ID, sem.ID)
	if err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	if !res.IsValid || len(res.Errors) != 0 {
		t.Errorf("Validate() = %+v; want valid with no errors", res)
	}
}

func TestEngine_Validate_missingEntitiesCutTheChain(t *testing.T) {
	e := setup(t)
	course := testutil.CreateCourse(t, e.courses, "CS", "Computer Science")
	sem := openSemester(t, e, 8)
	unit := testutil.CreateUnit(t, e.units, "CS101", course.ID, nil)
	std := testutil.CreateUser(t, e.users, "Ada", "ada@test.cd", []string{user.RoleStudent}, course.ID)

	res, err := e.eng.Validate(std.ID, unit.ID, "nope")
	if err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	if len(res.Errors) != 1 || res.Errors[0].Code != registration.CodeSemesterNotFound {
		t.Errorf("Errors = %+v; want single SEMESTER_NOT_FOUND", res.Errors)
	}

	res, err = e.eng.Validate("nope", unit.ID, sem.ID)
	if err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	if len(res.Errors) != 1 || res.Errors[0].Code != registration.CodeUserNotFound {
		t.Errorf("Errors = %+v; want single USER_NOT_FOUND", res.Errors)
	}
}

func TestEngine_Validate_collectsAllViolations(t *testing.T) {
	e := setup(t)
	course := testutil.CreateCourse(t, e.courses, "CS", "Computer Science")
	sem := closedSemester(t, e, 1)
	unit := testutil.CreateUnit(t, e.units, "CS101", course.ID, nil)
	other := testutil.CreateUnit(t, e.units, "CS102", course.ID, nil)
	std := testutil.CreateUser(t, e.users, "Ada", "ada@test.cd", []string{user.RoleStudent}, course.ID)
	testutil.CreateRegistration(t, e.regs, std.ID, other.ID, sem.ID, registration.StatusActive, nil)

	res, err := e.eng.Validate(std.ID, unit.ID, sem.ID)
	if err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	if res.IsValid {
		t.Error("Validate() = valid; want invalid")
	}
	if !hasCode(res, registration.CodeRegistrationClosed) {
		t.Errorf("Errors = %+v; want REGISTRATION_CLOSED", res.Errors)
	}
	if !hasCode(res, registration.CodeMaxUnitsExceeded) {
		t.Errorf("Errors = %+v; want MAX_UNITS_EXCEEDED", res.Errors)
	}
}

func TestEngine_Validate_unknownUnitKeepsEarlierViolations(t *testing.T) {
	e := setup(t)
	course := testutil.CreateCourse(t, e.courses, "CS", "Computer Science")
	sem := closedSemester(t, e, 8)
	std := testutil.CreateUser(t, e.users, "Ada", "ada@test.cd", []string{user.RoleStudent}, course.ID)

	res, err := e.eng.Validate(std.ID, "nope", sem.ID)
	if err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	if !hasCode(res, registration.CodeRegistrationClosed) || !hasCode(res, registration.CodeUnitNotFound) {
		t.Errorf("Errors = %+v; want REGISTRATION_CLOSED and UNIT_NOT_FOUND", res.Errors)
	}
}

func TestEngine_Validate_capacity(t *testing.T) {
	e := setup(t)
	course := testutil.CreateCourse(t, e.courses, "CS", "Computer Science")
	sem := openSemester(t, e, 8)
	unit := testutil.CreateUnit(t, e.units, "CS201", course.ID, testutil.Int(1))
	taken := testutil.CreateUser(t, e.users, "Alan", "alan@test.cd", []string{user.RoleStudent}, course.ID)
	testutil.CreateRegistration(t, e.regs, taken.ID, unit.ID, sem.ID, registration.StatusActive, nil)
	std := testutil.CreateUser(t, e.users, "Ada", "ada@test.cd", []string{user.RoleStudent}, course.ID)

	res, err := e.eng.Validate(std.ID, unit.ID, sem.ID)
	if err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	if !hasCode(res, registration.CodeUnitFull) {
		t.Fatalf("Errors = %+v; want UNIT_FULL", res.Errors)
	}
	for _, re := range res.Errors {
		if re.Code == registration.CodeUnitFull && !strings.Contains(re.Message, "(1/1)") {
			t.Errorf("Message = %q; want enrolment counts (1/1)", re.Message)
		}
	}
}

func TestEngine_Validate_prerequisites(t *testing.T) {
	e := setup(t)
	course := testutil.CreateCourse(t, e.courses, "CS", "Computer Science")
	sem := openSemester(t, e, 8)
	intro := testutil.CreateUnit(t, e.units, "CS101", course.ID, nil)
	algos := testutil.CreateUnit(t, e.units, "CS201", course.ID, nil, intro.ID)
	std := testutil.CreateUser(t, e.users, "Ada", "ada@test.cd", []string{user.RoleStudent}, course.ID)

	// not taken at all
	res, err := e.eng.Validate(std.ID, algos.ID, sem.ID)
	if err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	if !hasCode(res, registration.CodeMissingPrereqs) {
		t.Fatalf("Errors = %+v; want MISSING_PREREQUISITES", res.Errors)
	}
	for _, re := range res.Errors {
		if re.Code == registration.CodeMissingPrereqs && !strings.Contains(re.Message, "CS101") {
			t.Errorf("Message = %q; want the unit code CS101", re.Message)
		}
	}

	// completed below the passing grade still counts as missing
	failed := testutil.CreateRegistration(t, e.regs, std.ID, intro.ID, sem.ID, registration.StatusCompleted, testutil.Float(40))
	res, err = e.eng.Validate(std.ID, algos.ID, sem.ID)
	if err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	if !hasCode(res, registration.CodeMissingPrereqs) {
		t.Errorf("Errors = %+v; want MISSING_PREREQUISITES for a failing grade", res.Errors)
	}

	// passing grade satisfies the prerequisite
	failed.Grade = testutil.Float(75)
	if _, err = e.regs.UpdateRegistration(failed); err != nil {
		t.Fatalf("UpdateRegistration() failed: %v", err)
	}
	res, err = e.eng.Validate(std.ID, algos.ID, sem.ID)
	if err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	if hasCode(res, registration.CodeMissingPrereqs) {
		t.Errorf("Errors = %+v; prerequisite should be satisfied", res.Errors)
	}
}

func TestEngine_Validate_duplicate(t *testing.T) {
	e := setup(t)
	course := testutil.CreateCourse(t, e.courses, "CS", "Computer Science")
	sem := openSemester(t, e, 8)
	unit := testutil.CreateUnit(t, e.units, "CS101", course.ID, nil)
	std := testutil.CreateUser(t, e.users, "Ada", "ada@test.cd", []string{user.RoleStudent}, course.ID)

	reg := testutil.CreateRegistration(t, e.regs, std.ID, unit.ID, sem.ID, registration.StatusActive, nil)
	res, err := e.eng.Validate(std.ID, unit.ID, sem.ID)
	if err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	if !hasCode(res, registration.CodeAlreadyRegistered) {
		t.Errorf("Errors = %+v; want ALREADY_REGISTERED", res.Errors)
	}

	// a dropped registration does not block re-registering
	reg.Status = registration.StatusDropped
	if _, err = e.regs.UpdateRegistration(reg); err != nil {
		t.Fatalf("UpdateRegistration() failed: %v", err)
	}
	res, err = e.eng.Validate(std.ID, unit.ID, sem.ID)
	if err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	if hasCode(res, registration.CodeAlreadyRegistered) {
		t.Errorf("Errors = %+v; dropped registration should not count", res.Errors)
	}
}

func TestEngine_Validate_courseMembership(t *testing.T) {
	e := setup(t)
	cs := testutil.CreateCourse(t, e.courses, "CS", "Computer Science")
	math := testutil.CreateCourse(t, e.courses, "MATH", "Mathematics")
	sem := openSemester(t, e, 8)
	unit := testutil.CreateUnit(t, e.units, "MATH101", math.ID, nil)
	std := testutil.CreateUser(t, e.users, "Ada", "ada@test.cd", []string{user.RoleStudent}, cs.ID)

	res, err := e.eng.Validate(std.ID, unit.ID, sem.ID)
	if err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	if !hasCode(res, registration.CodeNotEnrolledInCourse) {
		t.Errorf("Errors = %+v; want NOT_ENROLLED_IN_COURSE", res.Errors)
	}
}

func TestEngine_Register(t *testing.T) {
	e := setup(t)
	course := testutil.CreateCourse(t, e.courses, "CS", "Computer Science")
	sem := openSemester(t, e, 8)
	unit := testutil.CreateUnit(t, e.units, "CS101", course.ID, nil)
	std := testutil.CreateUser(t, e.users, "Ada", "ada@test.cd", []string{user.RoleStudent}, course.ID)

	reg, res, err := e.eng.Register(std.ID, unit.ID, sem.ID)
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	if !res.IsValid {
		t.Fatalf("Register() result = %+v; want valid", res)
	}
	if reg.ID == "" || reg.Status != registration.StatusActive {
		t.Errorf("Register() = %+v; want a persisted active registration", reg)
	}

	// second attempt is refused without persisting
	_, res, err = e.eng.Register(std.ID, unit.ID, sem.ID)
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	if res.IsValid {
		t.Error("Register() second attempt = valid; want ALREADY_REGISTERED")
	}
	regs, err := e.regs.FilterRegistrations(registration.RegistrationFilter{StudentID: std.ID})
	if err != nil {
		t.Fatalf("FilterRegistrations() failed: %v", err)
	}
	if len(regs) != 1 {
		t.Errorf("stored registrations = %d; want 1", len(regs))
	}
}

func TestEngine_Drop(t *testing.T) {
	e := setup(t)
	course := testutil.CreateCourse(t, e.courses, "CS", "Computer Science")
	sem := openSemester(t, e, 8)
	unit := testutil.CreateUnit(t, e.units, "CS101", course.ID, nil)
	std := testutil.CreateUser(t, e.users, "Ada", "ada@test.cd", []string{user.RoleStudent}, course.ID)

	active := testutil.CreateRegistration(t, e.regs, std.ID, unit.ID, sem.ID, registration.StatusActive, nil)
	dropped, err := e.eng.Drop(active.ID)
	if err != nil {
		t.Fatalf("Drop() failed: %v", err)
	}
	if dropped.Status != registration.StatusDropped {
		t.Errorf("Status = %s; want dropped", dropped.Status)
	}

	completed := testutil.CreateRegistration(t, e.regs, std.ID, unit.ID, sem.ID, registration.StatusCompleted, testutil.Float(80))
	if _, err = e.eng.Drop(completed.ID); !core.IsStateError(err) {
		t.Errorf("Drop() error = %v; want StateError", err)
	}

	if _, err = e.eng.Drop("nope"); err != registration.ErrRegistrationNotFound {
		t.Errorf("Drop() error = %v; want ErrRegistrationNotFound", err)
	}
}

func TestExplain(t *testing.T) {
	if registration.Explain(registration.CodeUnitFull) == "" {
		t.Error("Explain() returned empty text for a known code")
	}
	if registration.Explain(registration.Code("NOPE")) != "" {
		t.Error("Explain() returned text for an unknown code")
	}
}
