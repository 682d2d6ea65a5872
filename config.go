package hil

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/micro-hil/go-hil/discovery"
	"github.com/micro-hil/go-hil/flags"
	"github.com/micro-hil/go-hil/registry"
)

// Config holds the application configuration
type Config struct {
	PeripheralConfig string        // Path to the peripheral declaration file
	LogDir           string        // Directory to store run artifacts
	RunInterval      time.Duration // Interval between test runs
	RunOnce          bool          // Exit after one test run
	StrictDiscovery  bool          // Abort when a test module failed to load

	Loader discovery.Loader     // Source of test group descriptors
	Probe  registry.KernelProbe // Kernel-held resource detection
	Log    log.Logger
}

// NewConfig creates a new Config from cli context. The loader defaults
// to the process-wide registrar that test packages register into.
func NewConfig(ctx *cli.Context, logger log.Logger) (*Config, error) {
	if err := flags.CheckRequired(ctx); err != nil {
		return nil, fmt.Errorf("missing required flags: %w", err)
	}

	peripheralConfig := ctx.String(flags.PeripheralConfig.Name)
	if peripheralConfig == "" {
		return nil, errors.New("peripheral configuration file is required")
	}
	absPeripheralConfig, err := filepath.Abs(peripheralConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for peripheral config '%s': %w", peripheralConfig, err)
	}

	logDir, err := filepath.Abs(ctx.String(flags.LogDir.Name))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for log directory: %w", err)
	}

	runInterval := ctx.Duration(flags.RunInterval.Name)
	runOnce := runInterval == 0

	return &Config{
		PeripheralConfig: absPeripheralConfig,
		LogDir:           logDir,
		RunInterval:      runInterval,
		RunOnce:          runOnce,
		StrictDiscovery:  ctx.Bool(flags.StrictDiscovery.Name),
		Loader:           discovery.Default,
		Probe:            registry.SysfsProbe{},
		Log:              logger,
	}, nil
}
