package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/trezcool/ratiba/core/staff"
	"github.com/trezcool/ratiba/core/timetable"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db        *sqlx.DB
	staffRepo staff.Repository
	slotSvc   timetable.ServiceInterface
	out       io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose command (up, down, status, ...)")
	fmt.Fprintln(cli.out, "  addstaff -email EMAIL -name NAME [-admin] - add a staff member, or reset their password")
	fmt.Fprintln(cli.out, "  resetpassword -email EMAIL - reset a staff member's password")
	fmt.Fprintln(cli.out, "  auditslots -section ID - list a section's time slots with malformed days or times")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addStaffCmd := flag.NewFlagSet("addstaff", flag.ContinueOnError)
	addStaffEmail := addStaffCmd.String("email", "", "The staff member's email. The password will be prompted next.")
	addStaffName := addStaffCmd.String("name", "", "The staff member's full name.")
	addStaffAdmin := addStaffCmd.Bool("admin", false, "Give all the admin roles.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "The staff member's email. The password will be prompted next.")

	auditSlotsCmd := flag.NewFlagSet("auditslots", flag.ContinueOnError)
	auditSlotsSection := auditSlotsCmd.String("section", "", "The section's ID.")

	for _, fs := range []*flag.FlagSet{addStaffCmd, resetPasswordCmd, auditSlotsCmd} {
		fs.SetOutput(cli.out)
	}

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "addstaff":
		if err := addStaffCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addStaffEmail == "" || *addStaffName == "" {
			addStaffCmd.Usage()
			return errHelp
		}
		pwd, err := cli.readPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addStaffCmd.Usage()
			return errHelp
		}
		return cli.addStaff(*addStaffName, *addStaffEmail, pwd, *addStaffAdmin)
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordEmail == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.readPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordEmail, pwd)
	case "auditslots":
		if err := auditSlotsCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *auditSlotsSection == "" {
			auditSlotsCmd.Usage()
			return errHelp
		}
		return cli.auditSlots(*auditSlotsSection)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) readPassword() (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}
