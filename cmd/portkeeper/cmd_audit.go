package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/carlosrabelo/portkeeper/application/services"
	"github.com/carlosrabelo/portkeeper/infrastructure/config"
	"github.com/carlosrabelo/portkeeper/infrastructure/mailer"
	"github.com/carlosrabelo/portkeeper/infrastructure/report"
	"github.com/carlosrabelo/portkeeper/infrastructure/resolver"
	"github.com/carlosrabelo/portkeeper/infrastructure/transport"
)

type auditOptions struct {
	switchNames    []string
	switchesFile   string
	interfacesFile string
	workers        int
	timeout        time.Duration
	reportDir      string
	noMail         bool
}

func newAuditCmd(a *app) *cobra.Command {
	opts := &auditOptions{}
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Check access ports against the baseline profile",
		Long: `Audit reads the running configuration of every access port and checks it
against the baseline profile. Without --interfaces, ports are discovered from
VLANs whose name matches the switch's interface_pattern.

One CSV row is written per audited port. Switches that cannot be reached are
skipped and logged.

Examples:
  portkeeper audit
  portkeeper audit --switches switches.txt --workers 4
  portkeeper audit -s sw-2f.example.net --interfaces ports.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAudit(cmd, opts)
		},
	}
	cmd.Flags().StringSliceVarP(&opts.switchNames, "switch", "s", nil, "Switch to audit (repeatable)")
	cmd.Flags().StringVar(&opts.switchesFile, "switches", "", "File listing switches, one per line")
	cmd.Flags().StringVarP(&opts.interfacesFile, "interfaces", "i", "", "File listing interfaces, one per line (disables discovery)")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Concurrent switch sessions (default from config)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Per-switch timeout (default from config)")
	cmd.Flags().StringVar(&opts.reportDir, "report", "", "Directory for the CSV report (default from config)")
	cmd.Flags().BoolVar(&opts.noMail, "no-mail", false, "Do not mail the report even when mail is configured")
	return cmd
}

func (a *app) runAudit(cmd *cobra.Command, opts *auditOptions) error {
	ctx := cmd.Context()

	names := append([]string{}, opts.switchNames...)
	if opts.switchesFile != "" {
		listed, err := config.ReadList(opts.switchesFile)
		if err != nil {
			return err
		}
		names = append(names, listed...)
	}
	if len(names) == 0 && len(a.cfg.Switches) == 0 {
		return fmt.Errorf("no switches to audit: add switches to the configuration or use --switches")
	}
	if err := a.cfg.ResolveCredentials(a.getenv, a.prompter()); err != nil {
		return err
	}
	switches := a.cfg.Select(names)

	var interfaces []string
	if opts.interfacesFile != "" {
		list, err := config.ReadList(opts.interfacesFile)
		if err != nil {
			return err
		}
		interfaces = list
	}

	run := services.RunConfig{
		Mode:       a.mode(),
		Interfaces: interfaces,
		Profile:    a.cfg.Profile(),
		Workers:    a.cfg.Workers,
		Timeout:    a.cfg.Timeout,
	}
	if opts.workers > 0 {
		run.Workers = min(opts.workers, config.MaxWorkers)
	}
	if opts.timeout > 0 {
		run.Timeout = opts.timeout
	}

	dir := opts.reportDir
	if dir == "" {
		dir = a.cfg.Report.Dir
	}
	sink, err := report.NewCSVFile(dir, time.Now(), a.log)
	if err != nil {
		return err
	}

	opener := transport.NewOpener()
	defer opener.Close()
	orch := services.NewOrchestrator(opener, resolver.NewDNS(), sink, a.log)
	a.log.WithField("workers", run.Workers).Infof("auditing %d switches", len(switches))
	result := orch.Audit(ctx, switches, run)

	if err := sink.Close(); err != nil {
		return fmt.Errorf("failed to write report %s: %w", sink.Path(), err)
	}
	printAudit(a.out, result, sink.Path())

	a.recordHistory(cmd, result, sink.Path())

	if a.cfg.Mail.Enabled() && !opts.noMail {
		if err := mailer.New(a.cfg.Mail).SendFile(ctx, sink.Path()); err != nil {
			a.log.Warnf("report not mailed: %v", err)
		} else {
			a.log.Infof("report mailed to %v", a.cfg.Mail.To)
		}
	}
	return nil
}

// recordHistory stores the run when a history database is configured.
// Failures only warn.
func (a *app) recordHistory(cmd *cobra.Command, result *services.BatchResult, reportPath string) {
	if a.cfg.History.Path == "" {
		return
	}
	h, err := report.OpenHistory(a.cfg.History.Path)
	if err != nil {
		a.log.Warnf("run history unavailable: %v", err)
		return
	}
	defer h.Close()

	summary := result.Summary()
	run := report.NewRun(string(result.Workflow), result.Mode, result.StartedAt, result.FinishedAt,
		summary.Switches, summary.FailedSwitches, result.Records())
	run.ReportPath = reportPath
	if err := h.Save(cmd.Context(), run); err != nil {
		a.log.Warnf("failed to store run history: %v", err)
		return
	}
	a.log.Debugf("run %s stored in %s", run.ID, a.cfg.History.Path)
}
