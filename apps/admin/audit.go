package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/trezcool/ratiba/core"
)

// auditSlots prints the section's time slots that the conflict checker ignores.
func (cli *commandLine) auditSlots(sectionID string) error {
	slots, err := cli.slotSvc.Audit(context.Background(), core.CleanID(sectionID))
	if err != nil {
		return err
	}
	if len(slots) == 0 {
		fmt.Fprintln(cli.out, "no malformed time slots")
		return nil
	}

	w := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDAY\tSTART\tEND\tSUBJECT")
	for _, ts := range slots {
		fmt.Fprintf(w, "%s\t%s\t%q\t%q\t%s\n", ts.ID, ts.DayOfWeek, ts.StartTime, ts.EndTime, ts.Subject)
	}
	return w.Flush()
}
