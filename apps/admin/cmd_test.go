package main

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/staff"
	"github.com/trezcool/ratiba/core/timetable"
	emailsvc "github.com/trezcool/ratiba/services/email"
	inmemdb "github.com/trezcool/ratiba/storage/database/inmem"
	testutil "github.com/trezcool/ratiba/tests"
)

type testCLI struct {
	*commandLine
	db  *inmemdb.DB
	out *bytes.Buffer
}

func setup(t *testing.T) *testCLI {
	conf := testutil.NewConfig()
	logger := testutil.NewLogger(conf)
	db := inmemdb.NewDB()
	staffRepo := inmemdb.NewStaffRepository(db)
	out := new(bytes.Buffer)

	return &testCLI{
		commandLine: &commandLine{
			staffRepo: staffRepo,
			slotSvc: timetable.NewService(
				inmemdb.NewTimeSlotRepository(db),
				inmemdb.NewSectionRepository(db),
				staffRepo,
				db,
				emailsvc.NewConsoleServiceMock(conf, logger),
				logger,
			),
			out: out,
		},
		db:  db,
		out: out,
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func checkErr(t *testing.T, tt cliTest, err error) {
	if err == nil {
		if tt.wantErr != nil || tt.wantErrStr != "" {
			t.Errorf("cli.run() error = nil, wantErr %v%s", tt.wantErr, tt.wantErrStr)
		}
		return
	}
	switch {
	case tt.wantErr != nil:
		if err != tt.wantErr {
			t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
		}
	case tt.wantErrStr != "":
		if err.Error() != tt.wantErrStr {
			t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
		}
	default:
		t.Errorf("cli.run() unexpected error = %v", err)
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	gooseRunFunc = func(db *sqlx.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "create", args: []string{"migrate", "create", "room", "sql"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(args))
		})
	}
}

func Test_commandLine_addStaff(t *testing.T) {
	cli := setup(t)
	existing := testutil.CreateMember(t, cli.staffRepo, "Amani", "amani@school.test", "Old-pa55word", []string{staff.RoleTeacher}, false)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"addstaff"}, wantErr: errHelp},
		{name: "no name", args: []string{"addstaff", "-email", "zawadi@school.test"}, extra: extra{pwd: "x"}, wantErr: errHelp},
		{name: "no password", args: []string{"addstaff", "-email", "zawadi@school.test", "-name", "Zawadi"}, wantErr: errHelp},
		{name: "new admin", args: []string{"addstaff", "-email", " Zawadi@school.test", "-name", "Zawadi", "-admin"}, extra: extra{pwd: "N3w-pa55word"}},
		{name: "existing", args: []string{"addstaff", "-email", "amani@school.test", "-name", "Amani J."}, extra: extra{pwd: "N3w-pa55word"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(args))
		})
	}

	ctx := context.Background()
	admin, err := cli.staffRepo.GetMember(ctx, staff.GetFilter{Email: "zawadi@school.test"})
	if assert.NoError(t, err) {
		assert.True(t, admin.IsAdmin())
		assert.True(t, admin.IsActive)
		assert.NoError(t, admin.CheckPassword("N3w-pa55word"))
	}

	amani, err := cli.staffRepo.GetMember(ctx, staff.GetFilter{ID: existing.ID})
	if assert.NoError(t, err) {
		assert.Equal(t, "Amani J.", amani.Name)
		assert.True(t, amani.IsActive)
		assert.Equal(t, []string{staff.RoleTeacher}, amani.Roles)
		assert.NoError(t, amani.CheckPassword("N3w-pa55word"))
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)
	m := testutil.CreateMember(t, cli.staffRepo, "Amani", "amani@school.test", "Old-pa55word", []string{staff.RoleTeacher}, true)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "lol"}, wantErr: errHelp},
		{name: "not found", args: []string{"resetpassword", "-email", "lol"}, extra: extra{pwd: "lol"}, wantErr: staff.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "-email", "AMANI@school.test"}, extra: extra{pwd: "N3w-pa55word"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(args))
		})
	}

	refreshed, err := cli.staffRepo.GetMember(context.Background(), staff.GetFilter{ID: m.ID})
	if assert.NoError(t, err) {
		assert.NoError(t, refreshed.CheckPassword("N3w-pa55word"))
	}
}

func Test_commandLine_auditSlots(t *testing.T) {
	cli := setup(t)
	sec := testutil.CreateSection(t, inmemdb.NewSectionRepository(cli.db), "Grade 5 A", "", "2024-2025")
	clean := testutil.CreateSection(t, inmemdb.NewSectionRepository(cli.db), "Grade 5 B", "", "2024-2025")
	bad := inmemdb.NewTimeSlotRepository(cli.db).InsertRawTimeSlot(timetable.TimeSlot{
		SectionID: sec.ID, DayOfWeek: timetable.Monday, StartTime: "9h", EndTime: "10:00", Subject: "Maths",
	})

	tests := []cliTest{
		{name: "no section", args: []string{"auditslots"}, wantErr: errHelp},
		{name: "unknown section", args: []string{"auditslots", "-section", "lol"}, wantErrStr: "section not found"},
		{name: "clean", args: []string{"auditslots", "-section", clean.ID}, extra: "no malformed time slots"},
		{name: "malformed", args: []string{"auditslots", "-section", strings.ToUpper(sec.ID)}, extra: bad.ID},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			cli.out.Reset()
			checkErr(t, tt, cli.run(args))
			if want, ok := tt.extra.(string); ok {
				assert.Contains(t, cli.out.String(), want)
			}
		})
	}
	assert.True(t, core.IsNotFound(cli.run([]string{"admin", "auditslots", "-section", "lol"})))
}
