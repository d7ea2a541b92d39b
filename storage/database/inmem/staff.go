package inmemdb

import (
	"context"
	"strings"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/staff"
)

type staffRepository struct {
	db *DB
}

var _ staff.Repository = (*staffRepository)(nil) // interface compliance check

func NewStaffRepository(db *DB) *staffRepository {
	return &staffRepository{db: db}
}

func (repo *staffRepository) emailTaken(email string, excludedID string) bool {
	for _, m := range repo.db.members {
		if m.Email == email && m.ID != excludedID {
			return true
		}
	}
	return false
}

func (repo *staffRepository) CheckEmailUniqueness(_ context.Context, email string, _ ...core.DBExecutor) error {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if repo.emailTaken(email, "") {
		return staff.ErrEmailExists
	}
	return nil
}

func (repo *staffRepository) CreateMember(_ context.Context, m staff.Member, _ ...core.DBExecutor) (staff.Member, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if repo.emailTaken(m.Email, "") {
		return staff.Member{}, core.ErrConflict
	}
	m.ID = newID()
	repo.db.members[m.ID] = m
	return m, nil
}

func hasRolePrefix(m staff.Member, prefixes []string) bool {
	for _, prefix := range prefixes {
		if m.RoleStartsWith(prefix) {
			return true
		}
	}
	return false
}

func teaches(m staff.Member, subject string) bool {
	for _, subj := range m.Subjects {
		if strings.EqualFold(subj, subject) {
			return true
		}
	}
	return false
}

func (repo *staffRepository) QueryMembers(_ context.Context, filter *staff.QueryFilter, ordering []core.DBOrdering, _ ...core.DBExecutor) ([]staff.Member, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	members := make([]staff.Member, 0, len(repo.db.members))
	for _, m := range repo.db.members {
		if filter != nil {
			if filter.Search != "" {
				search := strings.ToLower(filter.Search)
				if !(strings.Contains(strings.ToLower(m.Name), search) || strings.Contains(strings.ToLower(m.Email), search)) {
					continue
				}
			}
			if len(filter.Roles) > 0 && !hasRolePrefix(m, filter.Roles) {
				continue
			}
			if filter.Subject != "" && !teaches(m, filter.Subject) {
				continue
			}
			if filter.IsActive != nil && m.IsActive != *filter.IsActive {
				continue
			}
		}
		members = append(members, m)
	}

	sortBy(len(members), func(i, j int) { members[i], members[j] = members[j], members[i] }, ordering,
		map[string]lessFunc{
			"name":       func(i, j int) bool { return members[i].Name < members[j].Name },
			"email":      func(i, j int) bool { return members[i].Email < members[j].Email },
			"created_at": func(i, j int) bool { return members[i].CreatedAt.Before(members[j].CreatedAt) },
			"updated_at": func(i, j int) bool { return members[i].UpdatedAt.Before(members[j].UpdatedAt) },
			"last_login": func(i, j int) bool { return members[i].LastLogin.Before(members[j].LastLogin) },
		},
		func(i, j int) bool { return members[i].CreatedAt.After(members[j].CreatedAt) },
	)
	return members, nil
}

func (repo *staffRepository) GetMember(_ context.Context, filter staff.GetFilter, _ ...core.DBExecutor) (staff.Member, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	switch {
	case filter.ID != "":
		if m, ok := repo.db.members[filter.ID]; ok {
			return m, nil
		}
	case filter.Email != "":
		for _, m := range repo.db.members {
			if m.Email == filter.Email {
				return m, nil
			}
		}
	}
	return staff.Member{}, staff.ErrNotFound
}

func (repo *staffRepository) UpdateMember(_ context.Context, m staff.Member, _ ...core.DBExecutor) (staff.Member, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.members[m.ID]; !ok {
		return staff.Member{}, staff.ErrNotFound
	}
	if repo.emailTaken(m.Email, m.ID) {
		return staff.Member{}, core.ErrConflict
	}
	repo.db.members[m.ID] = m
	return m, nil
}

// DeleteMembersByID deletes the members & unassigns their time slots.
func (repo *staffRepository) DeleteMembersByID(_ context.Context, ids []string, _ ...core.DBExecutor) (int, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.members[id]; !ok {
			continue
		}
		delete(repo.db.members, id)
		cnt++
		for slotID, slot := range repo.db.timeSlots {
			if slot.TeacherID == id {
				slot.TeacherID = ""
				repo.db.timeSlots[slotID] = slot
			}
		}
	}
	return cnt, nil
}
