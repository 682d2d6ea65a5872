package registry

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/micro-hil/go-hil/types"
)

type fakeProbe struct {
	active bool
}

func (p fakeProbe) OneWireActive() bool { return p.active }

func pinClaim(pin, owner string) types.ResourceClaim {
	return types.ResourceClaim{Kind: types.ResourcePin, Identifier: pin, Owner: owner}
}

func TestRegister_ConflictNamesBothOwners(t *testing.T) {
	r := New(log.New(), nil)

	require.NoError(t, r.Register(pinClaim("17", "A")))

	err := r.Register(pinClaim("17", "B"))
	require.Error(t, err)

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, types.ResourcePin, conflict.Kind)
	assert.Equal(t, "17", conflict.Identifier)
	assert.Equal(t, "B", conflict.Owner)
	assert.Equal(t, "A", conflict.Holder)
	assert.Contains(t, err.Error(), "A")
	assert.Contains(t, err.Error(), "B")
	assert.Contains(t, err.Error(), "17")
}

func TestRegister_IdenticalClaimIsIdempotent(t *testing.T) {
	r := New(log.New(), nil)

	require.NoError(t, r.Register(pinClaim("17", "A")))
	require.NoError(t, r.Register(pinClaim("17", "A")))

	assert.Len(t, r.AllClaims(), 1)
}

func TestRegister_SameIdentifierDifferentKind(t *testing.T) {
	r := New(log.New(), nil)

	// A pin "4" and a bus device "4" are different resources.
	require.NoError(t, r.Register(pinClaim("4", "A")))
	require.NoError(t, r.Register(types.ResourceClaim{
		Kind: types.ResourceBusDevice, Identifier: "4", Owner: "B",
	}))
}

func TestPreflight_ListsEveryConflictAndKeepsNothing(t *testing.T) {
	r := New(log.New(), nil)
	require.NoError(t, r.Register(pinClaim("17", "gpio")))

	err := r.Preflight([]types.ResourceClaim{
		pinClaim("17", "pwm"), // conflicts with gpio
		{Kind: types.ResourceSerialPort, Identifier: "/dev/ttyUSB0", Owner: "uart"},
		{Kind: types.ResourceSerialPort, Identifier: "/dev/ttyUSB0", Owner: "modbus"}, // conflicts with uart
	})
	require.Error(t, err)

	var pf *PreflightError
	require.ErrorAs(t, err, &pf)
	require.Len(t, pf.Conflicts, 2)
	assert.Equal(t, "pwm", pf.Conflicts[0].Owner)
	assert.Equal(t, "gpio", pf.Conflicts[0].Holder)
	assert.Equal(t, "modbus", pf.Conflicts[1].Owner)
	assert.Equal(t, "uart", pf.Conflicts[1].Holder)

	// The rejected batch left no claims behind, including the
	// non-conflicting uart claim.
	claims := r.AllClaims()
	require.Len(t, claims, 1)
	assert.Equal(t, "gpio", claims[0].Owner)
}

func TestPreflight_AcceptsCleanBatch(t *testing.T) {
	r := New(log.New(), nil)

	err := r.Preflight([]types.ResourceClaim{
		pinClaim("17", "gpio"),
		pinClaim("18", "pwm"),
		{Kind: types.ResourceSerialPort, Identifier: "/dev/ttyAMA0", Owner: "uart"},
	})
	require.NoError(t, err)

	claims := r.AllClaims()
	require.Len(t, claims, 3)
	// Registration order is preserved for diagnostics.
	assert.Equal(t, "gpio", claims[0].Owner)
	assert.Equal(t, "pwm", claims[1].Owner)
	assert.Equal(t, "uart", claims[2].Owner)
}

func TestKernelProbe_SeedsOneWireClaim(t *testing.T) {
	r := New(log.New(), fakeProbe{active: true})

	claims := r.AllClaims()
	require.Len(t, claims, 1)
	assert.Equal(t, KernelOwner, claims[0].Owner)
	assert.Equal(t, OneWireIdentifier, claims[0].Identifier)

	// A configured single-wire peripheral is rejected even though no
	// configuration-level owner holds the pin.
	err := r.Preflight([]types.ResourceClaim{pinClaim(OneWireIdentifier, "onewire")})
	require.Error(t, err)

	var pf *PreflightError
	require.ErrorAs(t, err, &pf)
	require.Len(t, pf.Conflicts, 1)
	assert.Equal(t, KernelOwner, pf.Conflicts[0].Holder)
}

func TestKernelProbe_InactiveSeedsNothing(t *testing.T) {
	r := New(log.New(), fakeProbe{active: false})
	assert.Empty(t, r.AllClaims())

	require.NoError(t, r.Register(pinClaim(OneWireIdentifier, "onewire")))
}

func TestPreflightError_UnwrapsConflicts(t *testing.T) {
	pf := &PreflightError{Conflicts: []*ConflictError{
		{Kind: types.ResourcePin, Identifier: "17", Owner: "B", Holder: "A"},
	}}
	var conflict *ConflictError
	assert.True(t, errors.As(pf, &conflict))
}
