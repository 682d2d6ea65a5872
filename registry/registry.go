// Package registry tracks exclusive hardware-resource claims and detects
// conflicts before any peripheral is activated.
package registry

import (
	"errors"
	"os"
	"sync"

	"github.com/ethereum/go-ethereum/log"

	"github.com/micro-hil/go-hil/types"
)

// OneWireIdentifier is the fixed claim identifier for the single-wire
// bus. The w1-gpio overlay owns GPIO 4 no matter what parameters a
// configuration declares for the bus.
const OneWireIdentifier = "4"

// KernelOwner is the synthetic owner recorded when a probe reports that
// a bus is already held by a kernel driver before any configuration
// entry claimed it.
const KernelOwner = "kernel-driver"

// KernelProbe reports resources that the kernel already holds.
type KernelProbe interface {
	// OneWireActive reports whether the single-wire bus driver is
	// loaded and bound at the kernel level.
	OneWireActive() bool
}

// SysfsProbe detects kernel-held resources by inspecting sysfs.
type SysfsProbe struct{}

func (SysfsProbe) OneWireActive() bool {
	_, err := os.Stat("/sys/bus/w1/devices")
	return err == nil
}

type claimKey struct {
	kind       types.ResourceKind
	identifier string
}

// Registry is an append-only collection of resource claims built while
// peripherals are declared. It is created once per configuration load
// and is the single writer during preflight; once the run begins it is
// only read.
type Registry struct {
	log log.Logger

	mu     sync.RWMutex
	claims []types.ResourceClaim
	owners map[claimKey]string
}

// New creates an empty registry. If a probe is supplied and reports the
// single-wire bus active at kernel level, a claim owned by
// "kernel-driver" is seeded before any configuration-derived claim is
// processed, so a declared single-wire peripheral is rejected as a
// conflict even though no configured owner holds the pin.
func New(logger log.Logger, probe KernelProbe) *Registry {
	if logger == nil {
		logger = log.New()
		logger.Error("No logger provided, using default")
	}
	r := &Registry{
		log:    logger,
		owners: make(map[claimKey]string),
	}
	if probe != nil && probe.OneWireActive() {
		seed := types.ResourceClaim{
			Kind:       types.ResourcePin,
			Identifier: OneWireIdentifier,
			Owner:      KernelOwner,
		}
		r.claims = append(r.claims, seed)
		r.owners[claimKey{seed.Kind, seed.Identifier}] = seed.Owner
		logger.Info("Seeded kernel-held claim", "kind", seed.Kind, "identifier", seed.Identifier)
	}
	return r
}

// Register records a claim. It fails with a *ConflictError when another
// owner already holds the same (kind, identifier). Re-registering an
// identical (kind, identifier, owner) tuple is a no-op, so declarative
// re-validation stays idempotent.
func (r *Registry) Register(claim types.ResourceClaim) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.register(claim)
}

func (r *Registry) register(claim types.ResourceClaim) error {
	key := claimKey{claim.Kind, claim.Identifier}
	if holder, ok := r.owners[key]; ok {
		if holder == claim.Owner {
			return nil
		}
		return &ConflictError{
			Kind:       claim.Kind,
			Identifier: claim.Identifier,
			Owner:      claim.Owner,
			Holder:     holder,
		}
	}
	r.owners[key] = claim.Owner
	r.claims = append(r.claims, claim)
	r.log.Debug("Resource claimed", "kind", claim.Kind, "identifier", claim.Identifier, "owner", claim.Owner)
	return nil
}

// Preflight validates an entire declared configuration before any
// peripheral is initialized. Every claim in the batch is checked and on
// any conflict the whole batch is rejected: no claim from it is kept and
// the returned *PreflightError lists every conflict found, not just the
// first.
func (r *Registry) Preflight(claims []types.ResourceClaim) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	savedClaims := len(r.claims)
	savedOwners := make(map[claimKey]string, len(r.owners))
	for k, v := range r.owners {
		savedOwners[k] = v
	}

	var conflicts []*ConflictError
	for _, claim := range claims {
		if err := r.register(claim); err != nil {
			var conflict *ConflictError
			if errors.As(err, &conflict) {
				conflicts = append(conflicts, conflict)
			}
		}
	}

	if len(conflicts) > 0 {
		r.claims = r.claims[:savedClaims]
		r.owners = savedOwners
		r.log.Error("Preflight rejected configuration", "conflicts", len(conflicts))
		return &PreflightError{Conflicts: conflicts}
	}
	return nil
}

// AllClaims returns every live claim in registration order, for
// diagnostics and reporting.
func (r *Registry) AllClaims() []types.ResourceClaim {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.ResourceClaim, len(r.claims))
	copy(out, r.claims)
	return out
}
