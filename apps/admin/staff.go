package main

import (
	"context"
	"time"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/staff"
)

// addStaff creates a staff member, or reactivates an existing one with a new password.
func (cli *commandLine) addStaff(name, email, pwd string, isAdmin bool) error {
	ctx := context.Background()
	now := time.Now().UTC()
	email = core.CleanString(email, true /* lower */)

	m, err := cli.staffRepo.GetMember(ctx, staff.GetFilter{Email: email})
	exists := err == nil
	if err != nil {
		if !core.IsNotFound(err) {
			return err
		}
		m = staff.Member{
			Email:     email,
			Subjects:  []string{},
			Roles:     []string{staff.RoleTeacher},
			CreatedAt: now,
		}
	}
	m.Name = core.CleanString(name)
	if isAdmin {
		m.Roles = staff.AllRoles
	}
	m.IsActive = true
	m.UpdatedAt = now
	if err := m.SetPassword(pwd); err != nil {
		return err
	}

	if exists {
		_, err = cli.staffRepo.UpdateMember(ctx, m)
	} else {
		_, err = cli.staffRepo.CreateMember(ctx, m)
	}
	return err
}

func (cli *commandLine) resetPassword(email, pwd string) error {
	ctx := context.Background()
	m, err := cli.staffRepo.GetMember(ctx, staff.GetFilter{Email: core.CleanString(email, true /* lower */)})
	if err != nil {
		return err
	}
	if err := m.SetPassword(pwd); err != nil {
		return err
	}
	m.UpdatedAt = time.Now().UTC()
	_, err = cli.staffRepo.UpdateMember(ctx, m)
	return err
}
