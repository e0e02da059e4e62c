package inmemdb

import (
	"sort"
	"time"

	"github.com/kymawa/ratiba/core/attendance"
)

type instanceRepository struct {
	db *instanceTable
}

func NewInstanceRepository(db *DB) attendance.Repository {
	return &instanceRepository{db: db.instances}
}

func (repo *instanceRepository) CreateInstance(inst attendance.LectureInstance) (attendance.LectureInstance, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	inst.ID = newID()
	repo.db.table[inst.ID] = &inst
	return inst, nil
}

func (repo *instanceRepository) GetInstanceByID(id string) (attendance.LectureInstance, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if inst, ok := repo.db.table[id]; ok {
		return *inst, nil
	}
	return attendance.LectureInstance{}, attendance.ErrInstanceNotFound
}

func (repo *instanceRepository) GetInstanceByLectureAndDate(lectureID string, date time.Time) (attendance.LectureInstance, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, inst := range repo.db.table {
		if inst.LectureID == lectureID && inst.Date.Equal(date) {
			return *inst, nil
		}
	}
	return attendance.LectureInstance{}, attendance.ErrInstanceNotFound
}

func (repo *instanceRepository) FilterInstances(filter attendance.InstanceFilter) ([]attendance.LectureInstance, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	matches := make([]attendance.LectureInstance, 0)
	for _, inst := range repo.db.table {
		if filter.LectureID != "" && inst.LectureID != filter.LectureID {
			continue
		}
		if len(filter.LectureIDs) > 0 && !containsString(filter.LectureIDs, inst.LectureID) {
			continue
		}
		if filter.Status != "" && inst.Status != filter.Status {
			continue
		}
		if !filter.DateBefore.IsZero() && !inst.Date.Before(filter.DateBefore) {
			continue
		}
		matches = append(matches, *inst)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Date.Before(matches[j].Date) })
	return matches, nil
}

func (repo *instanceRepository) UpdateInstance(inst attendance.LectureInstance) (attendance.LectureInstance, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[inst.ID]; !ok {
		return attendance.LectureInstance{}, attendance.ErrInstanceNotFound
	}
	repo.db.table[inst.ID] = &inst
	return inst, nil
}
