package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/carlosrabelo/portkeeper/application/services"
	"github.com/carlosrabelo/portkeeper/infrastructure/report"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printAudit(w io.Writer, result *services.BatchResult, reportPath string) {
	records := result.Records()
	if len(records) > 0 {
		tw := newTable(w)
		fmt.Fprintln(tw, "SWITCH\tINTERFACE\tVLAN\tTEMPLATE\tSTATUS")
		fmt.Fprintln(tw, "------\t---------\t----\t--------\t------")
		for _, rec := range records {
			status := green("compliant")
			if !rec.Compliant {
				status = red("non-compliant")
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", rec.SwitchID, rec.InterfaceID,
				rec.VlanID.Or(report.AbsentValue), rec.TemplateName.Or(report.AbsentValue), status)
		}
		tw.Flush()
		fmt.Fprintln(w)
	}

	printFailures(w, result)

	s := result.Summary()
	fmt.Fprintf(w, "%s %d switches (%d failed), %d interfaces: %s, %s\n",
		bold("Audit:"), s.Switches, s.FailedSwitches, s.Interfaces,
		green(fmt.Sprintf("%d compliant", s.Compliant)),
		red(fmt.Sprintf("%d non-compliant", s.NonCompliant)))
	if reportPath != "" {
		fmt.Fprintf(w, "Report: %s\n", reportPath)
	}
}

func printReconfigure(w io.Writer, result *services.BatchResult) {
	for _, sw := range result.Switches {
		for _, plan := range sw.Plans {
			fmt.Fprintf(w, "%s %s\n", bold(sw.Switch), plan.Interface)
			for _, cmd := range plan.Commands {
				fmt.Fprintf(w, "  %s\n", cmd)
			}
		}
	}
	printFailures(w, result)

	s := result.Summary()
	if result.Mode.IsSandbox() {
		fmt.Fprintf(w, "%s %d plans simulated, nothing sent (use --write to apply)\n", yellow("SANDBOX:"), s.Plans)
		return
	}
	fmt.Fprintf(w, "%s %d of %d plans applied\n", bold("Modify:"), s.Applied, s.Plans)
	for _, sw := range result.Switches {
		if sw.Saved {
			fmt.Fprintf(w, "%s configuration saved on %s\n", green("OK"), sw.Switch)
		}
	}
}

func printFailures(w io.Writer, result *services.BatchResult) {
	errs := result.Errors()
	if len(errs) == 0 {
		return
	}
	fmt.Fprintln(w, red("Failures:"))
	for _, err := range errs {
		fmt.Fprintf(w, "  %s %s\n", red("✗"), err.Error())
	}
	fmt.Fprintln(w)
}

func printRuns(w io.Writer, runs []report.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "RUN\tSTARTED\tWORKFLOW\tMODE\tSWITCHES\tFAILED\tINTERFACES\tCOMPLIANT\tNON-COMPLIANT\tSTATUS")
	for _, run := range runs {
		// Escape codes widen a cell, so only the last column is colored.
		status := green("ok")
		if run.Failed > 0 {
			status = red("degraded")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\t%s\n",
			run.ID, run.StartedAt.Format("2006-01-02 15:04:05"), run.Workflow, run.Mode,
			run.Switches, run.Failed, run.Interfaces, run.Compliant, run.NonCompliant, status)
	}
	tw.Flush()
}

func printRunRecords(w io.Writer, records []report.RunRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No records for this run")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "SWITCH\tINTERFACE\tVLAN\tTEMPLATE\tSTATUS")
	for _, rec := range records {
		status := green("compliant")
		if !rec.Compliant {
			status = red("non-compliant")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", rec.Switch, rec.Interface, rec.VLAN, rec.Template, status)
	}
	tw.Flush()
}
