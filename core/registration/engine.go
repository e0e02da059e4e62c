package registration

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/kymawa/ratiba/core"
	"github.com/kymawa/ratiba/core/user"
)

var (
	// errors
	ErrCourseNotFound       = errors.New("course not found")
	ErrSemesterNotFound     = errors.New("semester not found")
	ErrUnitNotFound         = errors.New("unit not found")
	ErrRegistrationNotFound = errors.New("registration not found")
)

var nowFunc = time.Now // mockable

type (
	CourseRepository interface {
		CreateCourse(c Course) (Course, error)
		GetCourseByID(id string) (Course, error)
	}

	SemesterRepository interface {
		CreateSemester(s Semester) (Semester, error)
		GetSemesterByID(id string) (Semester, error)
	}

	UnitRepository interface {
		CreateUnit(u Unit) (Unit, error)
		GetUnitByID(id string) (Unit, error)
		GetUnitsByID(ids ...string) ([]Unit, error)
	}

	RegistrationFilter struct {
		StudentID  string
		UnitID     string
		SemesterID string
		Status     RegistrationStatus
	}

	RegistrationRepository interface {
		CreateRegistration(reg UnitRegistration) (UnitRegistration, error)
		GetRegistrationByID(id string) (UnitRegistration, error)
		// FilterRegistrations applies AND operation on available
		// RegistrationFilter fields; zero values are ignored.
		FilterRegistrations(filter RegistrationFilter) ([]UnitRegistration, error)
		UpdateRegistration(reg UnitRegistration) (UnitRegistration, error)
	}

	RuleError struct {
		Code    Code   `json:"code"`
		Message string `json:"message"`
	}

	// Result carries every violation found, not just the first.
	Result struct {
		IsValid bool        `json:"is_valid"`
		Errors  []RuleError `json:"errors"`
	}

	// Engine evaluates a student's registration request against the full
	// business rule chain.
	//
	// Counts (capacity, max units) are read before the write with no
	// transactional guarantee; concurrent registrations can both pass.
	Engine struct {
		semesters SemesterRepository
		units     UnitRepository
		regs      RegistrationRepository
		users     user.Repository
		mailSvc   core.EmailService
		log       core.Logger
	}
)

func (r *Result) add(code Code, msg string) {
	r.Errors = append(r.Errors, RuleError{Code: code, Message: msg})
}

func (r *Result) seal() Result {
	r.IsValid = len(r.Errors) == 0
	return *r
}

func NewEngine(
	log core.Logger,
	semesters SemesterRepository,
	units UnitRepository,
	regs RegistrationRepository,
	users user.Repository,
	mailSvc core.EmailService,
) *Engine {
	return &Engine{
		semesters: semesters,
		units:     units,
		regs:      regs,
		users:     users,
		mailSvc:   mailSvc,
		log:       log,
	}
}

// Validate runs the full rule chain for (student, unit, semester) and
// collects every violation. Only a missing referenced entity cuts the chain
// short; all other rules keep evaluating so the caller can report everything
// at once.
func (eng *Engine) Validate(studentID, unitID, semesterID string) (Result, error) {
	var res Result

	sem, err := eng.semesters.GetSemesterByID(semesterID)
	if err != nil {
		if err == ErrSemesterNotFound {
			res.add(CodeSemesterNotFound, fmt.Sprintf("semester %s not found", semesterID))
			return res.seal(), nil
		}
		return Result{}, err
	}

	// entity existence is checked before anything dereferences the record
	std, err := eng.users.GetUserByID(studentID)
	if err != nil {
		if err == user.ErrNotFound {
			res.add(CodeUserNotFound, fmt.Sprintf("student %s not found", studentID))
			return res.seal(), nil
		}
		return Result{}, err
	}

	now := nowFunc()
	if !sem.RegistrationOpen(now) {
		res.add(CodeRegistrationClosed, fmt.Sprintf(
			"registration for %s is closed (window: %s to %s)",
			sem.Name,
			sem.RegistrationStartDate.Format("2006-01-02"),
			sem.RegistrationEndDate.Format("2006-01-02"),
		))
	}

	active, err := eng.regs.FilterRegistrations(RegistrationFilter{
		StudentID:  studentID,
		SemesterID: semesterID,
		Status:     StatusActive,
	})
	if err != nil {
		return Result{}, err
	}
	if len(active) >= sem.MaxUnitsPerStudent {
		res.add(CodeMaxUnitsExceeded, fmt.Sprintf(
			"maximum of %d units per student reached for %s", sem.MaxUnitsPerStudent, sem.Name))
	}

	unit, err := eng.units.GetUnitByID(unitID)
	if err != nil {
		if err == ErrUnitNotFound {
			res.add(CodeUnitNotFound, fmt.Sprintf("unit %s not found", unitID))
			return res.seal(), nil
		}
		return Result{}, err
	}

	if unit.Capacity != nil {
		enrolled, err := eng.regs.FilterRegistrations(RegistrationFilter{
			UnitID:     unitID,
			SemesterID: semesterID,
			Status:     StatusActive,
		})
		if err != nil {
			return Result{}, err
		}
		if len(enrolled) >= *unit.Capacity {
			res.add(CodeUnitFull, fmt.Sprintf(
				"unit %s is full (%d/%d)", unit.Code, len(enrolled), *unit.Capacity))
		}
	}

	if len(unit.PrerequisiteIDs) > 0 {
		missing, err := eng.missingPrerequisites(studentID, unit)
		if err != nil {
			return Result{}, err
		}
		if len(missing) > 0 {
			res.add(CodeMissingPrereqs, "missing prerequisites: "+strings.Join(missing, ", "))
		}
	}

	existing, err := eng.regs.FilterRegistrations(RegistrationFilter{
		StudentID:  studentID,
		UnitID:     unitID,
		SemesterID: semesterID,
	})
	if err != nil {
		return Result{}, err
	}
	for _, reg := range existing {
		if reg.Status != StatusDropped {
			res.add(CodeAlreadyRegistered, fmt.Sprintf(
				"already registered for unit %s in %s", unit.Code, sem.Name))
			break
		}
	}

	if std.CourseID != unit.CourseID {
		res.add(CodeNotEnrolledInCourse, fmt.Sprintf(
			"unit %s belongs to a course the student is not enrolled in", unit.Code))
	}

	return res.seal(), nil
}

// missingPrerequisites returns the codes of prerequisite units the student
// has not completed with a passing grade, in the unit's declared order.
func (eng *Engine) missingPrerequisites(studentID string, unit Unit) ([]string, error) {
	completed, err := eng.regs.FilterRegistrations(RegistrationFilter{
		StudentID: studentID,
		Status:    StatusCompleted,
	})
	if err != nil {
		return nil, err
	}

	passed := make(map[string]bool, len(completed))
	for _, reg := range completed {
		if reg.Passed() {
			passed[reg.UnitID] = true
		}
	}

	missingIDs := make([]string, 0, len(unit.PrerequisiteIDs))
	for _, id := range unit.PrerequisiteIDs {
		if !passed[id] {
			missingIDs = append(missingIDs, id)
		}
	}
	if len(missingIDs) == 0 {
		return nil, nil
	}

	prereqs, err := eng.units.GetUnitsByID(missingIDs...)
	if err != nil {
		return nil, err
	}
	codes := make(map[string]string, len(prereqs))
	for _, p := range prereqs {
		codes[p.ID] = p.Code
	}

	missing := make([]string, 0, len(missingIDs))
	for _, id := range missingIDs {
		if code, ok := codes[id]; ok {
			missing = append(missing, code)
		} else {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// Register validates the request and, when valid, persists an active
// registration and emails the student a confirmation. Rule violations come
// back in the Result, not as an error.
func (eng *Engine) Register(studentID, unitID, semesterID string) (UnitRegistration, Result, error) {
	res, err := eng.Validate(studentID, unitID, semesterID)
	if err != nil {
		return UnitRegistration{}, Result{}, err
	}
	if !res.IsValid {
		return UnitRegistration{}, res, nil
	}

	reg, err := eng.regs.CreateRegistration(UnitRegistration{
		StudentID:    studentID,
		UnitID:       unitID,
		SemesterID:   semesterID,
		Status:       StatusActive,
		RegisteredAt: nowFunc().UTC(),
	})
	if err != nil {
		return UnitRegistration{}, Result{}, err
	}

	eng.sendConfirmationMail(reg)
	return reg, res, nil
}

func (eng *Engine) sendConfirmationMail(reg UnitRegistration) {
	if eng.mailSvc == nil {
		return
	}
	std, err := eng.users.GetUserByID(reg.StudentID)
	if err != nil || std.Email == "" {
		return
	}
	unit, err := eng.units.GetUnitByID(reg.UnitID)
	if err != nil {
		return
	}
	eng.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: std.Name, Address: std.Email}},
		Subject: "Registration confirmed: " + unit.Code,
		Body: fmt.Sprintf(
			"Hi %s,\n\nYour registration for %s - %s has been confirmed.\n", std.Name, unit.Code, unit.Name),
	})
}

// Drop moves an active registration to dropped. Completed registrations are
// part of the academic record and cannot be dropped.
func (eng *Engine) Drop(id string) (UnitRegistration, error) {
	reg, err := eng.regs.GetRegistrationByID(id)
	if err != nil {
		return UnitRegistration{}, err
	}
	if reg.Status == StatusCompleted {
		return UnitRegistration{}, core.NewStateError("cannot drop a completed registration")
	}
	reg.Status = StatusDropped
	return eng.regs.UpdateRegistration(reg)
}
