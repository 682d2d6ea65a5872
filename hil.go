// Package hil is the service shell of the hardware-in-the-loop test
// orchestrator: it wires configuration, resource preflight, peripheral
// lifecycle, group execution and reporting into a runnable service.
package hil

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/micro-hil/go-hil/exitcodes"
	"github.com/micro-hil/go-hil/peripherals"
	"github.com/micro-hil/go-hil/registry"
	"github.com/micro-hil/go-hil/reporting"
	"github.com/micro-hil/go-hil/results"
	"github.com/micro-hil/go-hil/runner"
)

// Service runs discovered test groups against configured peripherals,
// once or at a fixed interval.
type Service struct {
	ctx     context.Context
	config  *Config
	version string
	result  *runner.RunResult

	running atomic.Bool
	done    chan struct{}
	wg      sync.WaitGroup

	shutdownCallback func(error) // Callback to signal application shutdown
}

// New creates the service. The configuration must carry a loader and a
// logger; both are wired by NewConfig.
func New(ctx context.Context, config *Config, version string, shutdownCallback func(error)) (*Service, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}
	if config.Loader == nil {
		return nil, errors.New("group loader is required")
	}

	config.Log.Debug("Creating HIL service",
		"peripheralConfig", config.PeripheralConfig,
		"runInterval", config.RunInterval,
		"runOnce", config.RunOnce,
		"strictDiscovery", config.StrictDiscovery)

	return &Service{
		ctx:              ctx,
		config:           config,
		version:          version,
		done:             make(chan struct{}),
		shutdownCallback: shutdownCallback,
	}, nil
}

// Start runs the tests immediately, then either shuts down (run-once
// mode) or keeps re-running them at the configured interval.
func (s *Service) Start(ctx context.Context) error {
	// Panics anywhere below are runtime errors, not test failures.
	defer func() {
		if r := recover(); r != nil {
			s.config.Log.Error("Runtime error occurred", "error", r)
			os.Exit(exitcodes.RuntimeErr)
		}
	}()

	s.ctx = ctx
	s.done = make(chan struct{})
	s.running.Store(true)

	if s.config.RunOnce {
		s.config.Log.Info("Starting hil-runner in run-once mode")
	} else {
		s.config.Log.Info("Starting hil-runner in continuous mode", "interval", s.config.RunInterval)
	}

	if err := s.runTests(); err != nil {
		s.config.Log.Error("Runtime error running tests", "error", err)
		return NewRuntimeError(err)
	}

	if s.config.RunOnce {
		s.config.Log.Info("Tests completed, exiting (run-once mode)")

		if s.result != nil && s.result.Summary.Failed > 0 {
			s.config.Log.Warn("Run-once test run completed with failures, returning exit code 1")
			return NewTestFailureError(s.result.String())
		}

		go func() {
			s.shutdownCallback(nil)
		}()
		return nil
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.config.Log.Debug("Starting periodic test runner goroutine", "interval", s.config.RunInterval)

		for {
			select {
			case <-time.After(s.config.RunInterval):
				if !s.running.Load() {
					s.config.Log.Debug("Service stopped, exiting periodic test runner")
					return
				}
				s.config.Log.Info("Running periodic tests")
				if err := s.runTests(); err != nil {
					s.config.Log.Error("Error running periodic tests", "error", err)
				}

			case <-s.done:
				s.config.Log.Debug("Done signal received, stopping periodic test runner")
				return

			case <-ctx.Done():
				s.config.Log.Debug("Context canceled, stopping periodic test runner")
				s.running.Store(false)
				return
			}
		}
	}()
	s.config.Log.Debug("hil-runner started successfully")
	return nil
}

// runTests performs one complete run: configuration load, resource
// preflight, discovery, peripheral initialization, group execution,
// release, and reporting. A registry lives exactly as long as one
// configuration load.
func (s *Service) runTests() error {
	cfg := s.config
	log := cfg.Log

	pcfg, err := peripherals.LoadConfig(cfg.PeripheralConfig)
	if err != nil {
		return err
	}
	devices := pcfg.Devices()

	reg := registry.New(log, cfg.Probe)
	manager := peripherals.NewManager(log, reg, devices)

	// Preflight validates the entire declared configuration before any
	// peripheral initializes: on conflict nothing has touched hardware.
	if err := manager.Preflight(); err != nil {
		return fmt.Errorf("resource preflight failed: %w", err)
	}
	for _, claim := range reg.AllClaims() {
		log.Debug("Live resource claim", "kind", claim.Kind, "identifier", claim.Identifier, "owner", claim.Owner)
	}

	groups, warnings := cfg.Loader.Load()
	for _, w := range warnings {
		log.Warn("Test module excluded from run", "module", w.Module, "error", w.Err)
	}
	if cfg.StrictDiscovery && len(warnings) > 0 {
		return fmt.Errorf("strict discovery: %d test module(s) failed to load", len(warnings))
	}

	if err := manager.InitializeAll(); err != nil {
		return fmt.Errorf("peripheral initialization failed: %w", err)
	}

	sink := results.NewSink()
	orch, err := runner.NewOrchestrator(runner.Config{
		Groups:  groups,
		Handles: manager.Handles(),
		Sink:    sink,
		Log:     log,
	})
	if err != nil {
		manager.ReleaseAll()
		return err
	}

	result, err := orch.Run(s.ctx)

	// Release is owned here, not by tests: handles stay valid through
	// every group's teardown and are released only once the
	// orchestrator has completed all groups.
	manager.ReleaseAll()
	if err != nil {
		return err
	}
	s.result = result

	s.report(result, sink)
	return nil
}

// report renders the console table and the per-run summary file.
func (s *Service) report(result *runner.RunResult, sink *results.Sink) {
	snapshot := sink.Snapshot()

	table := reporting.NewTableReporter(os.Stdout)
	table.Render(fmt.Sprintf("HIL Test Results (%s)", result.Duration.Round(time.Millisecond)), snapshot)
	fmt.Println(result.String())

	textSink := reporting.NewTextSummarySink(s.config.LogDir)
	for _, r := range snapshot {
		if err := textSink.Consume(r, result.RunID); err != nil {
			s.config.Log.Error("Failed to consume result", "error", err)
		}
	}
	if err := textSink.Complete(result.RunID); err != nil {
		s.config.Log.Error("Failed to write run summary", "error", err)
	}
}

// Stop stops the service.
func (s *Service) Stop(ctx context.Context) error {
	s.config.Log.Info("Stopping hil-runner")

	if !s.running.Load() {
		s.config.Log.Debug("Service already stopped, nothing to do")
		return nil
	}

	s.running.Store(false)
	s.config.Log.Debug("Sending done signal to goroutines")
	close(s.done)

	s.config.Log.Info("hil-runner stopped successfully")
	return nil
}

// Stopped returns true if the service is stopped.
func (s *Service) Stopped() bool {
	return !s.running.Load()
}

// Result returns the most recent run result, or nil before the first
// run completes.
func (s *Service) Result() *runner.RunResult {
	return s.result
}

// WaitForShutdown blocks until all goroutines have terminated.
// This is useful in tests to ensure complete cleanup before moving to the next test.
func (s *Service) WaitForShutdown(ctx context.Context) error {
	s.config.Log.Debug("Waiting for all goroutines to terminate")

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.config.Log.Debug("All goroutines terminated successfully")
		return nil
	case <-ctx.Done():
		s.config.Log.Warn("Timed out waiting for goroutines to terminate", "error", ctx.Err())
		return ctx.Err()
	}
}
