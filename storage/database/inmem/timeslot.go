package inmemdb

import (
	"context"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/timetable"
)

type timeSlotRepository struct {
	db *DB
}

var _ timetable.Repository = (*timeSlotRepository)(nil) // interface compliance check

func NewTimeSlotRepository(db *DB) *timeSlotRepository {
	return &timeSlotRepository{db: db}
}

// checkReferences returns core.ErrReference if the slot's section or teacher does not exist.
func (repo *timeSlotRepository) checkReferences(ts timetable.TimeSlot) error {
	if _, ok := repo.db.sections[ts.SectionID]; !ok {
		return core.ErrReference
	}
	if ts.TeacherID != "" {
		if _, ok := repo.db.members[ts.TeacherID]; !ok {
			return core.ErrReference
		}
	}
	return nil
}

func (repo *timeSlotRepository) CreateTimeSlot(_ context.Context, ts timetable.TimeSlot, _ ...core.DBExecutor) (timetable.TimeSlot, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if err := repo.checkReferences(ts); err != nil {
		return timetable.TimeSlot{}, err
	}
	if ts.Type == "" {
		ts.Type = timetable.TypeLesson
	}
	ts.ID = newID()
	repo.db.timeSlots[ts.ID] = ts
	return ts, nil
}

func dayNumber(day timetable.WeekDay) int {
	n, err := timetable.MapDayToTimetableNumber(day)
	if err != nil {
		return 8 // unknown days last
	}
	return n
}

func (repo *timeSlotRepository) QueryTimeSlots(_ context.Context, filter *timetable.QueryFilter, ordering []core.DBOrdering, _ ...core.DBExecutor) ([]timetable.TimeSlot, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	slots := make([]timetable.TimeSlot, 0)
	for _, ts := range repo.db.timeSlots {
		if filter != nil {
			if filter.SectionID != "" && ts.SectionID != filter.SectionID {
				continue
			}
			if filter.DayOfWeek != "" && ts.DayOfWeek != filter.DayOfWeek {
				continue
			}
			if filter.TeacherID != "" && ts.TeacherID != filter.TeacherID {
				continue
			}
			if filter.Type != "" && ts.Type != filter.Type {
				continue
			}
		}
		slots = append(slots, ts)
	}

	sortBy(len(slots), func(i, j int) { slots[i], slots[j] = slots[j], slots[i] }, ordering,
		map[string]lessFunc{
			"start_time": func(i, j int) bool { return slots[i].StartTime < slots[j].StartTime },
			"end_time":   func(i, j int) bool { return slots[i].EndTime < slots[j].EndTime },
			"subject":    func(i, j int) bool { return slots[i].Subject < slots[j].Subject },
			"type":       func(i, j int) bool { return slots[i].Type < slots[j].Type },
			"created_at": func(i, j int) bool { return slots[i].CreatedAt.Before(slots[j].CreatedAt) },
			"updated_at": func(i, j int) bool { return slots[i].UpdatedAt.Before(slots[j].UpdatedAt) },
		},
		// Monday first, then by time
		func(i, j int) bool {
			di, dj := dayNumber(slots[i].DayOfWeek), dayNumber(slots[j].DayOfWeek)
			if di != dj {
				return di < dj
			}
			if slots[i].StartTime != slots[j].StartTime {
				return slots[i].StartTime < slots[j].StartTime
			}
			return slots[i].EndTime < slots[j].EndTime
		},
	)
	return slots, nil
}

func (repo *timeSlotRepository) GetTimeSlot(_ context.Context, id string, _ ...core.DBExecutor) (timetable.TimeSlot, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if ts, ok := repo.db.timeSlots[id]; ok {
		return ts, nil
	}
	return timetable.TimeSlot{}, timetable.ErrNotFound
}

func (repo *timeSlotRepository) UpdateTimeSlot(_ context.Context, ts timetable.TimeSlot, _ ...core.DBExecutor) (timetable.TimeSlot, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	orig, ok := repo.db.timeSlots[ts.ID]
	if !ok {
		return timetable.TimeSlot{}, timetable.ErrNotFound
	}
	if err := repo.checkReferences(ts); err != nil {
		return timetable.TimeSlot{}, err
	}
	ts.SectionID = orig.SectionID
	ts.CreatedAt = orig.CreatedAt
	repo.db.timeSlots[ts.ID] = ts
	return ts, nil
}

func (repo *timeSlotRepository) DeleteTimeSlotsByID(_ context.Context, ids []string, _ ...core.DBExecutor) (int, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.timeSlots[id]; ok {
			delete(repo.db.timeSlots, id)
			cnt++
		}
	}
	return cnt, nil
}

// LockSection only checks that the section exists: DB.WithinTx already serializes the transactions.
func (repo *timeSlotRepository) LockSection(_ context.Context, sectionID string, _ ...core.DBExecutor) error {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if _, ok := repo.db.sections[sectionID]; !ok {
		return timetable.ErrSectionNotFound
	}
	return nil
}

// InsertRawTimeSlot stores ts as is, bypassing the references check.
// Used to load legacy records, eg. with malformed times.
func (repo *timeSlotRepository) InsertRawTimeSlot(ts timetable.TimeSlot) timetable.TimeSlot {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if ts.ID == "" {
		ts.ID = newID()
	}
	repo.db.timeSlots[ts.ID] = ts
	return ts
}
