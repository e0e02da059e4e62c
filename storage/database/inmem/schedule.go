package inmemdb

import (
	"sort"

	"github.com/kymawa/ratiba/core/schedule"
)

// Lectures

type lectureRepository struct {
	db *lectureTable
}

func NewLectureRepository(db *DB) schedule.LectureRepository {
	return &lectureRepository{db: db.lectures}
}

func (repo *lectureRepository) CreateLecture(lec schedule.Lecture) (schedule.Lecture, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	lec.ID = newID()
	repo.db.table[lec.ID] = &lec
	return lec, nil
}

func (repo *lectureRepository) GetLectureByID(id string) (schedule.Lecture, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if lec, ok := repo.db.table[id]; ok {
		return *lec, nil
	}
	return schedule.Lecture{}, schedule.ErrLectureNotFound
}

func (repo *lectureRepository) FilterLectures(filter schedule.LectureFilter) ([]schedule.Lecture, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	matches := make([]schedule.Lecture, 0)
	for _, lec := range repo.db.table {
		if filter.TimetableID != "" && lec.TimetableID != filter.TimetableID {
			continue
		}
		if len(filter.TimetableIDs) > 0 && !containsString(filter.TimetableIDs, lec.TimetableID) {
			continue
		}
		if filter.UnitID != "" && lec.UnitID != filter.UnitID {
			continue
		}
		if filter.TeacherID != "" && lec.TeacherID != filter.TeacherID {
			continue
		}
		if filter.DayOfWeek != nil && lec.DayOfWeek != *filter.DayOfWeek {
			continue
		}
		if filter.Building != "" && lec.Venue.Building != filter.Building {
			continue
		}
		if filter.Room != "" && lec.Venue.Room != filter.Room {
			continue
		}
		matches = append(matches, *lec)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].CreatedAt.Before(matches[j].CreatedAt) })
	return matches, nil
}

func (repo *lectureRepository) UpdateLecture(lec schedule.Lecture) (schedule.Lecture, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[lec.ID]; !ok {
		return schedule.Lecture{}, schedule.ErrLectureNotFound
	}
	repo.db.table[lec.ID] = &lec
	return lec, nil
}

func (repo *lectureRepository) DeleteLecturesByID(ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}

// Timetables

type timetableRepository struct {
	db *timetableTable
}

func NewTimetableRepository(db *DB) schedule.TimetableRepository {
	return &timetableRepository{db: db.timetables}
}

func (repo *timetableRepository) CreateTimetable(tt schedule.Timetable) (schedule.Timetable, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	tt.ID = newID()
	if tt.Status == "" {
		tt.Status = schedule.TimetableDraft
	}
	repo.db.table[tt.ID] = &tt
	return tt, nil
}

func (repo *timetableRepository) GetTimetableByID(id string) (schedule.Timetable, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if tt, ok := repo.db.table[id]; ok {
		return *tt, nil
	}
	return schedule.Timetable{}, schedule.ErrTimetableNotFound
}

func (repo *timetableRepository) FilterTimetables(filter schedule.TimetableFilter) ([]schedule.Timetable, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	matches := make([]schedule.Timetable, 0)
	for _, tt := range repo.db.table {
		if filter.SemesterID != "" && tt.SemesterID != filter.SemesterID {
			continue
		}
		if filter.CourseID != "" && tt.CourseID != filter.CourseID {
			continue
		}
		if filter.Status != "" && tt.Status != filter.Status {
			continue
		}
		matches = append(matches, *tt)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].CreatedAt.Before(matches[j].CreatedAt) })
	return matches, nil
}

func (repo *timetableRepository) UpdateTimetable(tt schedule.Timetable) (schedule.Timetable, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[tt.ID]; !ok {
		return schedule.Timetable{}, schedule.ErrTimetableNotFound
	}
	repo.db.table[tt.ID] = &tt
	return tt, nil
}

// Venues

type venueRepository struct {
	db *venueTable
}

func NewVenueRepository(db *DB) schedule.VenueRepository {
	return &venueRepository{db: db.venues}
}

func (repo *venueRepository) CreateVenue(v schedule.Venue) (schedule.Venue, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	v.ID = newID()
	repo.db.table[v.ID] = &v
	return v, nil
}

func (repo *venueRepository) GetVenueByID(id string) (schedule.Venue, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if v, ok := repo.db.table[id]; ok {
		return *v, nil
	}
	return schedule.Venue{}, schedule.ErrVenueNotFound
}

func (repo *venueRepository) QueryActiveVenues() ([]schedule.Venue, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	matches := make([]schedule.Venue, 0, len(repo.db.table))
	for _, v := range repo.db.table {
		if v.IsActive {
			matches = append(matches, *v)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Building != matches[j].Building {
			return matches[i].Building < matches[j].Building
		}
		return matches[i].Room < matches[j].Room
	})
	return matches, nil
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
