package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/kymawa/ratiba/core"
	"github.com/kymawa/ratiba/core/timeslot"
)

var (
	// errors
	ErrLectureNotFound   = errors.New("lecture not found")
	ErrTimetableNotFound = errors.New("timetable not found")
	ErrVenueNotFound     = errors.New("venue not found")
)

// ConflictError is returned when a write is refused because the placement
// collides with existing bookings. The full report is carried along so the
// caller can surface every detail at once.
type ConflictError struct {
	Report ConflictReport
}

func (e *ConflictError) Error() string {
	msgs := make([]string, 0, len(e.Report.Details))
	for _, d := range e.Report.Details {
		msgs = append(msgs, d.Message)
	}
	return strings.Join(msgs, "; ")
}

func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

type (
	LectureFilter struct {
		TimetableID  string
		TimetableIDs []string
		UnitID       string
		TeacherID    string
		DayOfWeek    *int
		Building     string
		Room         string
	}

	// LectureRepository persists Lectures.
	LectureRepository interface {
		CreateLecture(lec Lecture) (Lecture, error)
		GetLectureByID(id string) (Lecture, error)
		// FilterLectures applies AND operation on available LectureFilter fields;
		// zero values are ignored.
		FilterLectures(filter LectureFilter) ([]Lecture, error)
		UpdateLecture(lec Lecture) (Lecture, error)
		DeleteLecturesByID(ids ...string) error
	}

	TimetableFilter struct {
		SemesterID string
		CourseID   string
		Status     TimetableStatus
	}

	TimetableRepository interface {
		CreateTimetable(tt Timetable) (Timetable, error)
		GetTimetableByID(id string) (Timetable, error)
		FilterTimetables(filter TimetableFilter) ([]Timetable, error)
		UpdateTimetable(tt Timetable) (Timetable, error)
	}

	VenueRepository interface {
		CreateVenue(v Venue) (Venue, error)
		GetVenueByID(id string) (Venue, error)
		QueryActiveVenues() ([]Venue, error)
	}

	// Service validates proposed lecture placements against existing bookings
	// and manages the timetable lifecycle.
	//
	// Conflict validation and persistence are two separate store round trips;
	// two concurrent placements can both pass the check and both be saved.
	Service struct {
		lectures   LectureRepository
		timetables TimetableRepository
		venues     VenueRepository
		validate   *validator.Validate
		log        core.Logger
	}
)

func NewService(
	log core.Logger,
	lectures LectureRepository,
	timetables TimetableRepository,
	venues VenueRepository,
	validate *validator.Validate,
) *Service {
	return &Service{
		lectures:   lectures,
		timetables: timetables,
		venues:     venues,
		validate:   validate,
		log:        log,
	}
}

// CheckConflict produces a conflict verdict for a single proposed placement
// without persisting anything. Per conflict kind, detection stops at the
// first overlapping lecture.
func (svc *Service) CheckConflict(nl NewLecture) (ConflictReport, error) {
	if err := nl.Validate(svc.validate); err != nil {
		return ConflictReport{}, err
	}

	var report ConflictReport
	day := *nl.DayOfWeek
	start, end := nl.interval()

	// teacher double-booking
	booked, err := svc.lectures.FilterLectures(LectureFilter{
		TimetableID: nl.TimetableID,
		TeacherID:   nl.TeacherID,
		DayOfWeek:   &day,
	})
	if err != nil {
		return ConflictReport{}, err
	}
	for _, lec := range booked {
		if lec.ID == nl.ExcludeLectureID {
			continue
		}
		ls, le := lec.interval()
		if timeslot.Overlaps(start, end, ls, le) {
			report.add(ConflictTeacher, "teacher is already booked for "+lec.describe())
			break
		}
	}

	// venue double-booking; online lectures ignore physical constraints
	if !nl.IsOnline {
		occupied, err := svc.lectures.FilterLectures(LectureFilter{
			TimetableID: nl.TimetableID,
			DayOfWeek:   &day,
			Building:    nl.Venue.Building,
			Room:        nl.Venue.Room,
		})
		if err != nil {
			return ConflictReport{}, err
		}
		for _, lec := range occupied {
			if lec.ID == nl.ExcludeLectureID || lec.IsOnline {
				continue
			}
			ls, le := lec.interval()
			if timeslot.Overlaps(start, end, ls, le) {
				report.add(ConflictVenue, fmt.Sprintf(
					"venue %s %s is occupied by %s", nl.Venue.Building, nl.Venue.Room, lec.describe()))
				break
			}
		}
	}

	return report, nil
}

// Create places a new lecture after conflict validation.
func (svc *Service) Create(nl NewLecture) (Lecture, error) {
	if _, err := svc.timetables.GetTimetableByID(nl.TimetableID); err != nil {
		return Lecture{}, err
	}

	report, err := svc.CheckConflict(nl)
	if err != nil {
		return Lecture{}, err
	}
	if report.HasConflicts {
		return Lecture{}, &ConflictError{Report: report}
	}
	return svc.lectures.CreateLecture(newLecture(nl))
}

// Update reschedules an existing lecture, excluding it from its own
// conflict checks.
func (svc *Service) Update(id string, nl NewLecture) (Lecture, error) {
	orig, err := svc.lectures.GetLectureByID(id)
	if err != nil {
		return Lecture{}, err
	}

	nl.ExcludeLectureID = id
	report, err := svc.CheckConflict(nl)
	if err != nil {
		return Lecture{}, err
	}
	if report.HasConflicts {
		return Lecture{}, &ConflictError{Report: report}
	}

	lec := newLecture(nl)
	lec.ID = orig.ID
	lec.CreatedAt = orig.CreatedAt
	return svc.lectures.UpdateLecture(lec)
}

type (
	BulkItemError struct {
		Index   int        `json:"index"`
		Error   string     `json:"error"`
		Lecture NewLecture `json:"lecture"`
	}

	BulkResult struct {
		Created   []Lecture       `json:"created"`
		Errors    []BulkItemError `json:"errors"`
		Succeeded int             `json:"succeeded"`
		Failed    int             `json:"failed"`
	}
)

// BulkCreate places lectures in presentation order. Each item is checked
// against the store and against the items already accepted in this batch;
// a failure rejects that item only, the rest of the batch keeps going.
// Accepted items are not rolled back when a later item fails.
func (svc *Service) BulkCreate(items []NewLecture) (BulkResult, error) {
	res := BulkResult{}
	accepted := make([]Lecture, 0, len(items))

	for i, nl := range items {
		report, err := svc.CheckConflict(nl)
		if err != nil {
			var vErr validator.ValidationErrors
			if errors.As(err, &vErr) || isValidationError(err) {
				res.Errors = append(res.Errors, BulkItemError{Index: i, Error: err.Error(), Lecture: nl})
				continue
			}
			return BulkResult{}, err
		}

		candidate := newLecture(nl)
		if !report.HasConflicts {
			if prev, ok := batchConflict(candidate, accepted); ok {
				report.add(conflictKind(candidate, prev), "conflicts with batch item for "+prev.describe())
			}
		}
		if report.HasConflicts {
			res.Errors = append(res.Errors, BulkItemError{Index: i, Error: (&ConflictError{Report: report}).Error(), Lecture: nl})
			continue
		}

		created, err := svc.lectures.CreateLecture(candidate)
		if err != nil {
			return BulkResult{}, err
		}
		accepted = append(accepted, created)
		res.Created = append(res.Created, created)
	}

	res.Succeeded = len(res.Created)
	res.Failed = len(res.Errors)
	return res, nil
}

// batchConflict finds the first already-accepted lecture colliding with the
// candidate: same day AND (same teacher OR same physical room) AND overlap.
func batchConflict(candidate Lecture, accepted []Lecture) (Lecture, bool) {
	start, end := candidate.interval()
	for _, prev := range accepted {
		if prev.DayOfWeek != candidate.DayOfWeek {
			continue
		}
		if prev.TeacherID != candidate.TeacherID && !candidate.SharesVenueWith(prev) {
			continue
		}
		ps, pe := prev.interval()
		if timeslot.Overlaps(start, end, ps, pe) {
			return prev, true
		}
	}
	return Lecture{}, false
}

func conflictKind(candidate, prev Lecture) ConflictType {
	if candidate.TeacherID == prev.TeacherID {
		return ConflictTeacher
	}
	return ConflictVenue
}

// PublishTimetable moves a draft timetable to published. Any other published
// timetable for the same (semester, course) is archived, so at most one
// timetable is active per course per semester.
func (svc *Service) PublishTimetable(id string) (Timetable, error) {
	tt, err := svc.timetables.GetTimetableByID(id)
	if err != nil {
		return Timetable{}, err
	}
	if tt.Status == TimetableArchived {
		return Timetable{}, core.NewStateError("cannot publish an archived timetable")
	}

	lectures, err := svc.lectures.FilterLectures(LectureFilter{TimetableID: id})
	if err != nil {
		return Timetable{}, err
	}
	if len(lectures) == 0 {
		return Timetable{}, core.NewStateError("cannot publish a timetable with no lectures")
	}

	published, err := svc.timetables.FilterTimetables(TimetableFilter{
		SemesterID: tt.SemesterID,
		CourseID:   tt.CourseID,
		Status:     TimetablePublished,
	})
	if err != nil {
		return Timetable{}, err
	}
	for _, other := range published {
		if other.ID == tt.ID {
			continue
		}
		other.Status = TimetableArchived
		other.UpdatedAt = time.Now().UTC()
		if _, err := svc.timetables.UpdateTimetable(other); err != nil {
			return Timetable{}, err
		}
		svc.log.Info(fmt.Sprintf("timetable %s archived in favour of %s", other.ID, tt.ID))
	}

	tt.Status = TimetablePublished
	tt.UpdatedAt = time.Now().UTC()
	return svc.timetables.UpdateTimetable(tt)
}

type (
	VenueQuery struct {
		DayOfWeek   *int   `json:"day_of_week" query:"day_of_week" validate:"required,dayofweek"`
		StartTime   string `json:"start_time" query:"start_time" validate:"required,hhmm"`
		EndTime     string `json:"end_time" query:"end_time" validate:"required,hhmm"`
		TimetableID string `json:"timetable_id" query:"timetable_id" validate:"required"`
		MinCapacity int    `json:"min_capacity" query:"min_capacity"`
		Type        string `json:"type" query:"type"`
	}

	OccupiedVenue struct {
		Venue     Venue  `json:"venue"`
		UnitID    string `json:"unit_id"`
		UnitCode  string `json:"unit_code,omitempty"`
		TeacherID string `json:"teacher_id"`
	}

	VenueAvailability struct {
		Available []Venue         `json:"available"`
		Occupied  []OccupiedVenue `json:"occupied"`
	}
)

func (q *VenueQuery) Validate(validate *validator.Validate) error {
	q.TimetableID = core.CleanString(q.TimetableID)
	return validate.Struct(q)
}

// VenueAvailability partitions all active venues into available vs occupied
// for the given window, using the same overlap test as placement checks.
func (svc *Service) VenueAvailability(q VenueQuery) (VenueAvailability, error) {
	if err := q.Validate(svc.validate); err != nil {
		return VenueAvailability{}, err
	}

	venues, err := svc.venues.QueryActiveVenues()
	if err != nil {
		return VenueAvailability{}, err
	}

	day := *q.DayOfWeek
	booked, err := svc.lectures.FilterLectures(LectureFilter{TimetableID: q.TimetableID, DayOfWeek: &day})
	if err != nil {
		return VenueAvailability{}, err
	}

	start, _ := timeslot.Minutes(q.StartTime)
	end, _ := timeslot.Minutes(q.EndTime)

	res := VenueAvailability{Available: []Venue{}, Occupied: []OccupiedVenue{}}
	for _, v := range venues {
		if q.MinCapacity > 0 && v.Capacity < q.MinCapacity {
			continue
		}
		if q.Type != "" && v.Type != q.Type {
			continue
		}

		occupant, occupied := occupyingLecture(v, booked, start, end)
		if occupied {
			res.Occupied = append(res.Occupied, OccupiedVenue{
				Venue:     v,
				UnitID:    occupant.UnitID,
				UnitCode:  occupant.UnitCode,
				TeacherID: occupant.TeacherID,
			})
		} else {
			res.Available = append(res.Available, v)
		}
	}
	return res, nil
}

func occupyingLecture(v Venue, booked []Lecture, start, end int) (Lecture, bool) {
	for _, lec := range booked {
		if lec.IsOnline || lec.Venue.Building != v.Building || lec.Venue.Room != v.Room {
			continue
		}
		ls, le := lec.interval()
		if timeslot.Overlaps(start, end, ls, le) {
			return lec, true
		}
	}
	return Lecture{}, false
}

func newLecture(nl NewLecture) Lecture {
	now := time.Now().UTC()
	venue := nl.Venue
	if nl.IsOnline {
		venue = LectureVenue{}
	}
	return Lecture{
		TimetableID: nl.TimetableID,
		UnitID:      nl.UnitID,
		UnitCode:    nl.UnitCode,
		TeacherID:   nl.TeacherID,
		DayOfWeek:   *nl.DayOfWeek,
		StartTime:   nl.StartTime,
		EndTime:     nl.EndTime,
		Venue:       venue,
		IsOnline:    nl.IsOnline,
		LectureType: nl.LectureType,
		IsRecurring: nl.IsRecurring,
		Frequency:   nl.Frequency,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func isValidationError(err error) bool {
	var ve *core.ValidationError
	return errors.As(err, &ve)
}
