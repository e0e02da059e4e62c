// Package report derives read-side views (attendance percentages, weekly
// schedules) from scheduling and registration data. Nothing here writes.
package report

import (
	"sort"
	"time"

	"github.com/kymawa/ratiba/core"
	"github.com/kymawa/ratiba/core/attendance"
	"github.com/kymawa/ratiba/core/registration"
	"github.com/kymawa/ratiba/core/schedule"
	"github.com/kymawa/ratiba/core/timeslot"
	"github.com/kymawa/ratiba/core/user"
)

var nowFunc = time.Now // mockable

type (
	UnitAttendance struct {
		UnitID     string  `json:"unit_id"`
		UnitCode   string  `json:"unit_code"`
		Attended   int     `json:"attended"`
		Total      int     `json:"total"`
		Percentage float64 `json:"percentage"`
	}

	AttendanceSummary struct {
		Overall float64          `json:"overall"`
		Units   []UnitAttendance `json:"units"`
	}

	// ScheduleEntry is one lecture in a user's weekly schedule. Conflict is
	// set when the entry overlaps another of the user's own lectures, even
	// across timetables.
	ScheduleEntry struct {
		Lecture  schedule.Lecture `json:"lecture"`
		Conflict bool             `json:"conflict"`
	}

	// WeekSchedule buckets a user's lectures per day of week (0 = Sunday).
	WeekSchedule [7][]ScheduleEntry

	Service struct {
		lectures   schedule.LectureRepository
		timetables schedule.TimetableRepository
		instances  attendance.Repository
		regs       registration.RegistrationRepository
		units      registration.UnitRepository
		users      user.Repository
		log        core.Logger
	}
)

func NewService(
	log core.Logger,
	lectures schedule.LectureRepository,
	timetables schedule.TimetableRepository,
	instances attendance.Repository,
	regs registration.RegistrationRepository,
	units registration.UnitRepository,
	users user.Repository,
) *Service {
	return &Service{
		lectures:   lectures,
		timetables: timetables,
		instances:  instances,
		regs:       regs,
		units:      units,
		users:      users,
		log:        log,
	}
}

// UnitAttendance computes a student's attendance for one unit: attended
// (present or late) over past instances. A unit with no history yet scores
// 100, not 0.
func (svc *Service) UnitAttendance(studentID, unitID string) (UnitAttendance, error) {
	unit, err := svc.units.GetUnitByID(unitID)
	if err != nil {
		return UnitAttendance{}, err
	}

	attended, total, err := svc.countUnit(studentID, unitID)
	if err != nil {
		return UnitAttendance{}, err
	}

	return UnitAttendance{
		UnitID:     unitID,
		UnitCode:   unit.Code,
		Attended:   attended,
		Total:      total,
		Percentage: percentage(attended, total),
	}, nil
}

// Attendance aggregates a student's attendance across all units they are
// registered for in the semester.
func (svc *Service) Attendance(studentID, semesterID string) (AttendanceSummary, error) {
	if _, err := svc.users.GetUserByID(studentID); err != nil {
		return AttendanceSummary{}, err
	}

	regs, err := svc.regs.FilterRegistrations(registration.RegistrationFilter{
		StudentID:  studentID,
		SemesterID: semesterID,
		Status:     registration.StatusActive,
	})
	if err != nil {
		return AttendanceSummary{}, err
	}

	summary := AttendanceSummary{Units: make([]UnitAttendance, 0, len(regs))}
	var attended, total int
	for _, reg := range regs {
		ua, err := svc.UnitAttendance(studentID, reg.UnitID)
		if err != nil {
			return AttendanceSummary{}, err
		}
		summary.Units = append(summary.Units, ua)
		attended += ua.Attended
		total += ua.Total
	}
	summary.Overall = percentage(attended, total)
	return summary, nil
}

func (svc *Service) countUnit(studentID, unitID string) (attended, total int, err error) {
	lectures, err := svc.lectures.FilterLectures(schedule.LectureFilter{UnitID: unitID})
	if err != nil {
		return 0, 0, err
	}
	if len(lectures) == 0 {
		return 0, 0, nil
	}

	ids := make([]string, 0, len(lectures))
	for _, lec := range lectures {
		ids = append(ids, lec.ID)
	}

	past, err := svc.instances.FilterInstances(attendance.InstanceFilter{
		LectureIDs: ids,
		DateBefore: nowFunc().UTC(),
	})
	if err != nil {
		return 0, 0, err
	}

	for _, inst := range past {
		total++
		for _, rec := range inst.Attendance {
			if rec.StudentID == studentID && rec.Counted() {
				attended++
				break
			}
		}
	}
	return attended, total, nil
}

// WeeklySchedule groups the user's lectures into 7 day buckets, drawn from
// published timetables for the semester. Teachers see the lectures they
// teach; students see the lectures of units they are registered for.
// Overlapping entries are flagged pairwise with the same interval test used
// for placement checks.
func (svc *Service) WeeklySchedule(userID, semesterID string) (WeekSchedule, error) {
	var week WeekSchedule

	usr, err := svc.users.GetUserByID(userID)
	if err != nil {
		return week, err
	}

	published, err := svc.timetables.FilterTimetables(schedule.TimetableFilter{
		SemesterID: semesterID,
		Status:     schedule.TimetablePublished,
	})
	if err != nil {
		return week, err
	}
	if len(published) == 0 {
		return week, nil
	}
	ttIDs := make([]string, 0, len(published))
	for _, tt := range published {
		ttIDs = append(ttIDs, tt.ID)
	}

	var lectures []schedule.Lecture
	if usr.IsTeacher() {
		lectures, err = svc.lectures.FilterLectures(schedule.LectureFilter{
			TimetableIDs: ttIDs,
			TeacherID:    userID,
		})
		if err != nil {
			return week, err
		}
	} else {
		regs, err := svc.regs.FilterRegistrations(registration.RegistrationFilter{
			StudentID:  userID,
			SemesterID: semesterID,
			Status:     registration.StatusActive,
		})
		if err != nil {
			return week, err
		}
		registered := make(map[string]bool, len(regs))
		for _, reg := range regs {
			registered[reg.UnitID] = true
		}

		all, err := svc.lectures.FilterLectures(schedule.LectureFilter{TimetableIDs: ttIDs})
		if err != nil {
			return week, err
		}
		for _, lec := range all {
			if registered[lec.UnitID] {
				lectures = append(lectures, lec)
			}
		}
	}

	conflicted := flagConflicts(lectures)
	for i, lec := range lectures {
		day := lec.DayOfWeek
		if day < 0 || day > 6 {
			continue
		}
		week[day] = append(week[day], ScheduleEntry{Lecture: lec, Conflict: conflicted[i]})
	}
	for day := range week {
		sortByStart(week[day])
	}
	return week, nil
}

// flagConflicts marks every lecture that overlaps another in the same set,
// regardless of timetable.
func flagConflicts(lectures []schedule.Lecture) []bool {
	flags := make([]bool, len(lectures))
	for i := 0; i < len(lectures); i++ {
		is, ie := minutesOf(lectures[i])
		for j := i + 1; j < len(lectures); j++ {
			if lectures[i].DayOfWeek != lectures[j].DayOfWeek {
				continue
			}
			js, je := minutesOf(lectures[j])
			if timeslot.Overlaps(is, ie, js, je) {
				flags[i] = true
				flags[j] = true
			}
		}
	}
	return flags
}

func minutesOf(lec schedule.Lecture) (int, int) {
	start, _ := timeslot.Minutes(lec.StartTime)
	end, _ := timeslot.Minutes(lec.EndTime)
	return start, end
}

func sortByStart(entries []ScheduleEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		is, _ := timeslot.Minutes(entries[i].Lecture.StartTime)
		js, _ := timeslot.Minutes(entries[j].Lecture.StartTime)
		return is < js
	})
}

func percentage(attended, total int) float64 {
	if total == 0 {
		return 100
	}
	return float64(attended) / float64(total) * 100
}
