package discovery

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/micro-hil/go-hil/types"
)

func TestRegistrar_LoadSortsLexically(t *testing.T) {
	r := NewRegistrar()
	require.NoError(t, r.Register(types.TestGroup{Name: "uart_tests"}))
	require.NoError(t, r.Register(types.TestGroup{Name: "gpio_tests"}))
	require.NoError(t, r.Register(types.TestGroup{Name: "modbus_tests"}))

	groups, warnings := r.Load()
	require.Len(t, groups, 3)
	assert.Empty(t, warnings)
	assert.Equal(t, "gpio_tests", groups[0].Name)
	assert.Equal(t, "modbus_tests", groups[1].Name)
	assert.Equal(t, "uart_tests", groups[2].Name)
}

func TestRegistrar_RejectsDuplicates(t *testing.T) {
	r := NewRegistrar()
	require.NoError(t, r.Register(types.TestGroup{Name: "gpio_tests"}))

	err := r.Register(types.TestGroup{Name: "gpio_tests"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")

	groups, _ := r.Load()
	assert.Len(t, groups, 1)
}

func TestRegistrar_RejectsEmptyName(t *testing.T) {
	r := NewRegistrar()
	require.Error(t, r.Register(types.TestGroup{}))
}

func TestRegistrar_WarningsAreNonFatal(t *testing.T) {
	r := NewRegistrar()
	require.NoError(t, r.Register(types.TestGroup{Name: "gpio_tests"}))
	r.RegisterError("broken_module", errors.New("bad descriptor"))

	groups, warnings := r.Load()
	assert.Len(t, groups, 1, "a load failure excludes only the failed module")
	require.Len(t, warnings, 1)
	assert.Equal(t, "broken_module", warnings[0].Module)
	assert.Contains(t, warnings[0].String(), "broken_module")
	assert.Contains(t, warnings[0].String(), "bad descriptor")
}

func TestRegistrar_LoadReturnsCopies(t *testing.T) {
	r := NewRegistrar()
	r.RegisterError("m1", errors.New("boom"))

	_, w1 := r.Load()
	r.RegisterError("m2", errors.New("boom again"))
	_, w2 := r.Load()

	assert.Len(t, w1, 1)
	assert.Len(t, w2, 2)
}
