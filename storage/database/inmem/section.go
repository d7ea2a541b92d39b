package inmemdb

import (
	"context"
	"strings"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/section"
)

type sectionRepository struct {
	db *DB
}

var _ section.Repository = (*sectionRepository)(nil) // interface compliance check

func NewSectionRepository(db *DB) *sectionRepository {
	return &sectionRepository{db: db}
}

func (repo *sectionRepository) taken(name, academicYear string, excludedIDs ...string) bool {
outer:
	for _, sec := range repo.db.sections {
		for _, id := range excludedIDs {
			if sec.ID == id {
				continue outer
			}
		}
		if strings.EqualFold(sec.Name, name) && sec.AcademicYear == academicYear {
			return true
		}
	}
	return false
}

func (repo *sectionRepository) CheckSectionUniqueness(_ context.Context, name, academicYear string, excludedSections []section.Section, _ ...core.DBExecutor) error {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	ids := make([]string, 0, len(excludedSections))
	for _, sec := range excludedSections {
		ids = append(ids, sec.ID)
	}
	if repo.taken(name, academicYear, ids...) {
		return section.ErrSectionExists
	}
	return nil
}

func (repo *sectionRepository) CreateSection(_ context.Context, sec section.Section, _ ...core.DBExecutor) (section.Section, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if repo.taken(sec.Name, sec.AcademicYear) {
		return section.Section{}, core.ErrConflict
	}
	sec.ID = newID()
	repo.db.sections[sec.ID] = sec
	return sec, nil
}

func (repo *sectionRepository) QuerySections(_ context.Context, filter *section.QueryFilter, ordering []core.DBOrdering, _ ...core.DBExecutor) ([]section.Section, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	sections := make([]section.Section, 0, len(repo.db.sections))
	for _, sec := range repo.db.sections {
		if filter != nil {
			if filter.Search != "" {
				search := strings.ToLower(filter.Search)
				if !(strings.Contains(strings.ToLower(sec.Name), search) || strings.Contains(strings.ToLower(sec.ClassName), search)) {
					continue
				}
			}
			if filter.AcademicYear != "" && sec.AcademicYear != filter.AcademicYear {
				continue
			}
		}
		sections = append(sections, sec)
	}

	sortBy(len(sections), func(i, j int) { sections[i], sections[j] = sections[j], sections[i] }, ordering,
		map[string]lessFunc{
			"name":          func(i, j int) bool { return sections[i].Name < sections[j].Name },
			"academic_year": func(i, j int) bool { return sections[i].AcademicYear < sections[j].AcademicYear },
			"created_at":    func(i, j int) bool { return sections[i].CreatedAt.Before(sections[j].CreatedAt) },
			"updated_at":    func(i, j int) bool { return sections[i].UpdatedAt.Before(sections[j].UpdatedAt) },
		},
		func(i, j int) bool { return sections[i].CreatedAt.After(sections[j].CreatedAt) },
	)
	return sections, nil
}

func (repo *sectionRepository) GetSection(_ context.Context, id string, _ ...core.DBExecutor) (section.Section, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if sec, ok := repo.db.sections[id]; ok {
		return sec, nil
	}
	return section.Section{}, section.ErrNotFound
}

func (repo *sectionRepository) UpdateSection(_ context.Context, sec section.Section, _ ...core.DBExecutor) (section.Section, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	orig, ok := repo.db.sections[sec.ID]
	if !ok {
		return section.Section{}, section.ErrNotFound
	}
	if repo.taken(sec.Name, sec.AcademicYear, sec.ID) {
		return section.Section{}, core.ErrConflict
	}
	sec.CreatedAt = orig.CreatedAt
	repo.db.sections[sec.ID] = sec
	return sec, nil
}

// DeleteSectionsByID deletes the sections & their time slots.
func (repo *sectionRepository) DeleteSectionsByID(_ context.Context, ids []string, _ ...core.DBExecutor) (int, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.sections[id]; !ok {
			continue
		}
		delete(repo.db.sections, id)
		cnt++
		for slotID, slot := range repo.db.timeSlots {
			if slot.SectionID == id {
				delete(repo.db.timeSlots, slotID)
			}
		}
	}
	return cnt, nil
}
