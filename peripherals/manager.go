// Package peripherals manages the declared peripheral and protocol
// drivers: preflight claim registration, initialization, release, and
// the handle set handed to executing tests.
package peripherals

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/log"

	"github.com/micro-hil/go-hil/metrics"
	"github.com/micro-hil/go-hil/registry"
	"github.com/micro-hil/go-hil/types"
)

// Device categories. Protocols sit on top of a transport (e.g. Modbus
// RTU over a serial port); peripherals map directly onto hardware.
const (
	CategoryPeripherals = "peripherals"
	CategoryProtocols   = "protocols"
)

// Device is one declared peripheral or protocol driver.
type Device interface {
	types.Handle

	// Category returns CategoryPeripherals or CategoryProtocols.
	Category() string

	// RequiredClaims lists the exclusive resources the device needs.
	// Claims are registered during preflight, before any device
	// initializes.
	RequiredClaims() []types.ResourceClaim

	Initialize() error
	Release() error
}

// Manager owns the declared devices for one configuration load. The
// expected sequence is Preflight, InitializeAll, the test run, then
// ReleaseAll; handles are valid from the end of InitializeAll until
// ReleaseAll.
type Manager struct {
	log         log.Logger
	registry    *registry.Registry
	devices     []Device
	initialized []Device
}

// NewManager creates a manager over the declared devices.
func NewManager(logger log.Logger, reg *registry.Registry, devices []Device) *Manager {
	if logger == nil {
		logger = log.New()
		logger.Error("No logger provided, using default")
	}
	return &Manager{
		log:      logger,
		registry: reg,
		devices:  devices,
	}
}

// Preflight registers every device's resource claims against the
// registry before any device is initialized. Interleaving registration
// with instantiation risks partially-initialized hardware on abort, so
// the whole declared configuration is validated first; on any conflict
// nothing initializes and the aggregate error lists every conflict.
func (m *Manager) Preflight() error {
	var claims []types.ResourceClaim
	for _, dev := range m.devices {
		claims = append(claims, dev.RequiredClaims()...)
	}
	m.log.Debug("Preflighting resource claims", "devices", len(m.devices), "claims", len(claims))

	if err := m.registry.Preflight(claims); err != nil {
		var pf *registry.PreflightError
		if errors.As(err, &pf) {
			for _, c := range pf.Conflicts {
				metrics.RecordConflict(string(c.Kind))
			}
		}
		return err
	}
	return nil
}

// InitializeAll initializes every declared device in declaration order.
// It must only be called after Preflight succeeded. On failure the
// devices initialized so far are released and the error is returned;
// the run does not start.
func (m *Manager) InitializeAll() error {
	for _, dev := range m.devices {
		m.log.Info("Initializing device", "category", dev.Category(), "device", dev.Name())
		if err := dev.Initialize(); err != nil {
			m.log.Error("Device initialization failed", "device", dev.Name(), "err", err)
			m.ReleaseAll()
			return fmt.Errorf("initializing %s: %w", dev.Name(), err)
		}
		m.initialized = append(m.initialized, dev)
	}
	m.log.Info("All devices initialized", "count", len(m.initialized))
	return nil
}

// ReleaseAll releases every device that was actually initialized, in
// initialization order, best effort. Release errors are logged, never
// propagated; the release guarantee outranks error reporting here.
func (m *Manager) ReleaseAll() {
	for _, dev := range m.initialized {
		m.log.Info("Releasing device", "device", dev.Name())
		if err := dev.Release(); err != nil {
			m.log.Error("Device release failed", "device", dev.Name(), "err", err)
			metrics.RecordErrorDetails("device release failed", err)
		}
	}
	m.initialized = m.initialized[:0]
}

// Handles returns the handle set for the run, keyed by driver name.
func (m *Manager) Handles() types.HandleSet {
	handles := make(types.HandleSet, len(m.devices))
	for _, dev := range m.devices {
		handles[dev.Name()] = dev
	}
	return handles
}

// Device finds a declared device by category and name.
func (m *Manager) Device(category, name string) (Device, error) {
	for _, dev := range m.devices {
		if dev.Category() == category && dev.Name() == name {
			return dev, nil
		}
	}
	return nil, fmt.Errorf("device %q not found in category %q", name, category)
}
