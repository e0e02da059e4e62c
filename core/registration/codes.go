package registration

// Code is a machine-checkable registration rule violation.
type Code string

const (
	CodeSemesterNotFound    Code = "SEMESTER_NOT_FOUND"
	CodeUserNotFound        Code = "USER_NOT_FOUND"
	CodeRegistrationClosed  Code = "REGISTRATION_CLOSED"
	CodeMaxUnitsExceeded    Code = "MAX_UNITS_EXCEEDED"
	CodeUnitNotFound        Code = "UNIT_NOT_FOUND"
	CodeUnitFull            Code = "UNIT_FULL"
	CodeMissingPrereqs      Code = "MISSING_PREREQUISITES"
	CodeAlreadyRegistered   Code = "ALREADY_REGISTERED"
	CodeNotEnrolledInCourse Code = "NOT_ENROLLED_IN_COURSE"
)

// explanations maps codes to the longer user-facing text shown by UIs.
// Kept separate from the rule chain on purpose.
var explanations = map[Code]string{
	CodeSemesterNotFound:    "The semester you are trying to register for does not exist.",
	CodeUserNotFound:        "We could not find your student record. Contact the registrar's office.",
	CodeRegistrationClosed:  "Registration for this semester is closed. Units can only be added during the registration window.",
	CodeMaxUnitsExceeded:    "You have reached the maximum number of units allowed for this semester.",
	CodeUnitNotFound:        "The unit you are trying to register for does not exist.",
	CodeUnitFull:            "This unit has reached its seat capacity. Try again later in case a seat frees up.",
	CodeMissingPrereqs:      "You have not completed the prerequisites for this unit. A prerequisite counts once completed with a grade of 50 or above.",
	CodeAlreadyRegistered:   "You are already registered for this unit in this semester.",
	CodeNotEnrolledInCourse: "This unit belongs to a course you are not enrolled in.",
}

// Explain returns the user-facing explanation for a violation code, or the
// empty string for unknown codes.
func Explain(code Code) string {
	return explanations[code]
}
