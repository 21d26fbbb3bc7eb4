package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/carlosrabelo/portkeeper/domain/entities"
	"github.com/carlosrabelo/portkeeper/domain/ports"
	domain "github.com/carlosrabelo/portkeeper/domain/services"
	"github.com/carlosrabelo/portkeeper/platform"
)

// RunConfig is decided once per run and applied to every switch.
type RunConfig struct {
	Mode entities.RunMode
	// Template lines are pushed verbatim after the interface selector.
	Template []string
	// Interfaces overrides discovery when non-empty.
	Interfaces []string
	Increment  int
	Profile    entities.BaselineProfile
	Workers    int
	Timeout    time.Duration
}

// DriverResolver picks the platform driver for an open session.
type DriverResolver func(ctx context.Context, sw entities.SwitchConfig, repo ports.SwitchRepository) (platform.SwitchDriver, error)

// Orchestrator drives the audit and reconfiguration workflows across
// switches, isolating every failure to its own switch or interface.
type Orchestrator struct {
	opener    ports.SessionOpener
	resolver  ports.Resolver
	sink      ports.ReportSink
	drivers   DriverResolver
	extractor *domain.Extractor
	log       logrus.FieldLogger
}

// NewOrchestrator wires the collaborators. resolver and sink may be nil.
func NewOrchestrator(opener ports.SessionOpener, resolver ports.Resolver, sink ports.ReportSink, log logrus.FieldLogger) *Orchestrator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Orchestrator{
		opener:    opener,
		resolver:  resolver,
		sink:      sink,
		drivers:   platform.Resolve,
		extractor: domain.NewExtractor(domain.SubstringMatcher{}),
		log:       log,
	}
}

// WithDriverResolver replaces platform lookup.
func (o *Orchestrator) WithDriverResolver(fn DriverResolver) *Orchestrator {
	o.drivers = fn
	return o
}

// Audit checks every interface of every switch against run.Profile and
// hands the records to the report sink in input order.
func (o *Orchestrator) Audit(ctx context.Context, switches []entities.SwitchConfig, run RunConfig) *BatchResult {
	checker := domain.NewChecker(run.Profile)
	result := o.batch(ctx, WorkflowAudit, switches, run, func(ctx context.Context, s *session, res *SwitchResult) *entities.TargetError {
		return o.auditSwitch(ctx, s, checker, res)
	})
	if o.sink != nil {
		for _, rec := range result.Records() {
			if err := o.sink.Record(rec); err != nil {
				o.log.WithField("switch", rec.SwitchID).Warnf("failed to record %s: %v", rec.InterfaceID, err)
			}
		}
	}
	return result
}

// Reconfigure rebuilds the listed interfaces of every switch from
// run.Template, keeping description, access VLAN and port-security maximum.
// In simulate mode plans are only logged.
func (o *Orchestrator) Reconfigure(ctx context.Context, switches []entities.SwitchConfig, run RunConfig) *BatchResult {
	return o.batch(ctx, WorkflowReconfigure, switches, run, func(ctx context.Context, s *session, res *SwitchResult) *entities.TargetError {
		return o.reconfigureSwitch(ctx, s, run, res)
	})
}

// session carries what a per-switch step needs.
type session struct {
	sw         entities.SwitchConfig
	repo       ports.SwitchRepository
	driver     platform.SwitchDriver
	interfaces []string
	mode       entities.RunMode
	log        logrus.FieldLogger
}

type switchStep func(ctx context.Context, s *session, res *SwitchResult) *entities.TargetError

func (o *Orchestrator) batch(ctx context.Context, workflow Workflow, switches []entities.SwitchConfig, run RunConfig, step switchStep) *BatchResult {
	result := &BatchResult{
		Workflow:  workflow,
		Mode:      run.Mode,
		StartedAt: time.Now(),
		Switches:  make([]SwitchResult, len(switches)),
	}

	workers := run.Workers
	if workers < 1 {
		workers = 1
	}
	var g errgroup.Group
	g.SetLimit(workers)
	for i, sw := range switches {
		g.Go(func() error {
			result.Switches[i] = o.runSwitch(ctx, workflow, sw, run, step)
			return nil
		})
	}
	_ = g.Wait()

	result.FinishedAt = time.Now()
	return result
}

func (o *Orchestrator) runSwitch(parent context.Context, workflow Workflow, sw entities.SwitchConfig, run RunConfig, step switchStep) SwitchResult {
	started := time.Now()
	res := SwitchResult{Switch: sw.Target}
	log := o.log.WithFields(logrus.Fields{
		"switch":   sw.Target,
		"workflow": string(workflow),
		"mode":     run.Mode.String(),
	})

	ctx := parent
	if run.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, run.Timeout)
		defer cancel()
	}

	if terr := o.prepareAndRun(ctx, sw, run, log, step, &res); terr != nil {
		res.Err = terr
		res.Records = nil
		o.report(terr)
	}
	res.Duration = time.Since(started)
	return res
}

func (o *Orchestrator) prepareAndRun(ctx context.Context, sw entities.SwitchConfig, run RunConfig, log logrus.FieldLogger, step switchStep, res *SwitchResult) *entities.TargetError {
	if o.resolver != nil && !o.resolver.Resolves(ctx, sw.Target) {
		return entities.NewTargetError(sw.Target, "", entities.StageResolve, fmt.Errorf("%w: hostname does not resolve", entities.ErrUnreachable))
	}

	repo, err := o.opener.Open(ctx, sw)
	if err != nil {
		return entities.NewTargetError(sw.Target, "", entities.StageConnect, classify(ctx, err, entities.ErrSession))
	}
	defer repo.Disconnect()
	log.Debug("session open")

	driver, err := o.drivers(ctx, sw, repo)
	if err != nil {
		return entities.NewTargetError(sw.Target, "", entities.StageDetect, classify(ctx, err, entities.ErrCommand))
	}
	res.Platform = driver.Name()

	interfaces := run.Interfaces
	if len(interfaces) == 0 {
		pattern, err := platform.CompilePattern(sw.InterfacePattern)
		if err != nil {
			return entities.NewTargetError(sw.Target, "", entities.StageDiscover, err)
		}
		interfaces, err = driver.DiscoverAccessInterfaces(ctx, repo, sw, pattern)
		if err != nil {
			return entities.NewTargetError(sw.Target, "", entities.StageDiscover, classify(ctx, err, entities.ErrCommand))
		}
		log.Infof("discovered %d interfaces", len(interfaces))
	}

	s := &session{sw: sw, repo: repo, driver: driver, interfaces: interfaces, mode: run.Mode, log: log}
	return step(ctx, s, res)
}

func (o *Orchestrator) auditSwitch(ctx context.Context, s *session, checker *domain.Checker, res *SwitchResult) *entities.TargetError {
	for _, iface := range s.interfaces {
		lines, terr := o.readInterface(ctx, s, iface, res)
		if terr != nil {
			return terr
		}
		if lines == nil {
			continue
		}
		record := checker.CheckRecord(s.sw.Target, iface, lines)
		if !record.Compliant {
			s.log.WithField("interface", iface).Debugf("non-compliant: missing %v, forbidden %v", record.Missing, record.Violations)
		}
		res.Records = append(res.Records, record)
	}
	return nil
}

func (o *Orchestrator) reconfigureSwitch(ctx context.Context, s *session, run RunConfig, res *SwitchResult) *entities.TargetError {
	synth := domain.NewSynthesizer(s.driver)

	for _, iface := range s.interfaces {
		lines, terr := o.readInterface(ctx, s, iface, res)
		if terr != nil {
			return terr
		}
		if lines == nil {
			continue
		}
		attrs := o.extractor.Extract(lines)
		plan := synth.Synthesize(iface, run.Template, attrs, run.Increment)
		res.Plans = append(res.Plans, plan)

		ilog := s.log.WithField("interface", iface)
		if s.mode.IsSandbox() {
			ilog.Infof("SANDBOX: Simulating reconfiguration of %s", iface)
			for _, cmd := range plan.Commands {
				ilog.Infof("SANDBOX:   %s", cmd)
			}
			continue
		}

		if terr := o.apply(ctx, s, plan); terr != nil {
			if isSessionFatal(ctx, terr.Err) {
				return terr
			}
			res.InterfaceErrors = append(res.InterfaceErrors, terr)
			o.report(terr)
			continue
		}
		res.Applied++
		ilog.Infof("reconfigured %s", iface)
	}

	if s.mode.IsSandbox() {
		if len(res.Plans) > 0 {
			s.log.Info("changes simulated (sandbox mode, use --write to apply)")
		}
		return nil
	}
	if res.Applied == 0 {
		s.log.Info("no changes applied")
		return nil
	}
	if err := o.save(ctx, s); err != nil {
		return entities.NewTargetError(s.sw.Target, "", entities.StageSave, classify(ctx, err, entities.ErrCommand))
	}
	res.Saved = true
	return nil
}

// readInterface returns nil lines when only this interface failed; the
// failure is recorded on res. A non-nil TargetError aborts the switch.
func (o *Orchestrator) readInterface(ctx context.Context, s *session, iface string, res *SwitchResult) (entities.ConfigLineSet, *entities.TargetError) {
	lines, err := s.driver.ReadInterfaceConfig(ctx, s.repo, s.sw, iface)
	if err == nil {
		return lines, nil
	}
	terr := entities.NewTargetError(s.sw.Target, iface, entities.StageRead, classify(ctx, err, entities.ErrCommand))
	if isSessionFatal(ctx, terr.Err) {
		return nil, terr
	}
	res.InterfaceErrors = append(res.InterfaceErrors, terr)
	o.report(terr)
	return nil, nil
}

// apply pushes plan inside configuration mode. Configuration mode is left
// even when a command is rejected.
func (o *Orchestrator) apply(ctx context.Context, s *session, plan entities.ReconfigurationPlan) *entities.TargetError {
	var failure error
	commands := append(append([]string{}, s.driver.EnterConfigCommands()...), plan.Commands...)
	for _, cmd := range commands {
		out, err := s.repo.ExecuteCommand(ctx, cmd)
		if err != nil {
			return entities.NewTargetError(s.sw.Target, plan.Interface, entities.StageApply, classify(ctx, err, entities.ErrSession))
		}
		if s.driver.CommandRejected(out) {
			failure = fmt.Errorf("%w: %q rejected: %s", entities.ErrCommand, cmd, strings.TrimSpace(out))
			break
		}
	}
	for _, cmd := range s.driver.ExitConfigCommands() {
		if _, err := s.repo.ExecuteCommand(ctx, cmd); err != nil {
			return entities.NewTargetError(s.sw.Target, plan.Interface, entities.StageApply, classify(ctx, err, entities.ErrSession))
		}
	}
	if failure != nil {
		return entities.NewTargetError(s.sw.Target, plan.Interface, entities.StageApply, failure)
	}
	return nil
}

// save tries each save command until one succeeds.
func (o *Orchestrator) save(ctx context.Context, s *session) error {
	var lastErr error
	for _, cmd := range s.driver.SaveCommands() {
		s.log.Debugf("saving configuration using '%s'", cmd)
		out, err := s.repo.ExecuteCommand(ctx, cmd)
		if err != nil {
			lastErr = err
			if isSessionFatal(ctx, err) {
				return err
			}
			continue
		}
		if s.driver.CommandRejected(out) {
			lastErr = fmt.Errorf("%w: %q rejected: %s", entities.ErrCommand, cmd, strings.TrimSpace(out))
			continue
		}
		s.log.Infof("configuration saved using '%s'", cmd)
		return nil
	}
	if lastErr == nil {
		lastErr = errors.New("no save command for platform")
	}
	return lastErr
}

// report writes exactly one log entry for a failure.
func (o *Orchestrator) report(terr *entities.TargetError) {
	if o.sink != nil {
		o.sink.Log(terr.Error())
		return
	}
	o.log.Error(terr.Error())
}

// classify makes sure err carries one of the failure sentinels.
func classify(ctx context.Context, err error, fallback error) error {
	if ctx.Err() != nil && !errors.Is(err, entities.ErrTimeout) {
		return fmt.Errorf("%w: %v", entities.ErrTimeout, err)
	}
	for _, sentinel := range []error{entities.ErrUnreachable, entities.ErrSession, entities.ErrCommand, entities.ErrTimeout} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", fallback, err)
}

// isSessionFatal reports whether the session can no longer be trusted.
func isSessionFatal(ctx context.Context, err error) bool {
	return ctx.Err() != nil ||
		errors.Is(err, entities.ErrSession) ||
		errors.Is(err, entities.ErrTimeout) ||
		errors.Is(err, entities.ErrUnreachable)
}
