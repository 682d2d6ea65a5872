package peripherals

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/micro-hil/go-hil/registry"
	"github.com/micro-hil/go-hil/types"
)

// Dummy drivers stand in for the real hardware layer. They claim the
// same resources a real driver would, so conflict detection behaves
// identically, but reads return zero values and writes always succeed.

// PinState is a GPIO level.
type PinState int

const (
	Low  PinState = 0
	High PinState = 1
)

// GPIOPin is one declared GPIO line.
type GPIOPin struct {
	Pin     int
	Mode    string // "in" or "out"
	Initial PinState
}

// DummyGPIO simulates a bank of GPIO lines.
type DummyGPIO struct {
	Pins []GPIOPin

	mu     sync.Mutex
	levels map[int]PinState
}

func (d *DummyGPIO) Name() string     { return "gpio" }
func (d *DummyGPIO) Category() string { return CategoryPeripherals }

func (d *DummyGPIO) RequiredClaims() []types.ResourceClaim {
	claims := make([]types.ResourceClaim, 0, len(d.Pins))
	for _, p := range d.Pins {
		claims = append(claims, types.ResourceClaim{
			Kind:       types.ResourcePin,
			Identifier: strconv.Itoa(p.Pin),
			Owner:      d.Name(),
		})
	}
	return claims
}

func (d *DummyGPIO) Initialize() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.levels = make(map[int]PinState, len(d.Pins))
	for _, p := range d.Pins {
		d.levels[p.Pin] = p.Initial
	}
	return nil
}

func (d *DummyGPIO) Release() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.levels = nil
	return nil
}

// Write sets the level of a declared output pin.
func (d *DummyGPIO) Write(pin int, state PinState) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.levels == nil {
		return fmt.Errorf("gpio not initialized")
	}
	if _, ok := d.levels[pin]; !ok {
		return fmt.Errorf("pin %d not declared", pin)
	}
	d.levels[pin] = state
	return nil
}

// Read returns the level of a declared pin.
func (d *DummyGPIO) Read(pin int) (PinState, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.levels == nil {
		return Low, fmt.Errorf("gpio not initialized")
	}
	state, ok := d.levels[pin]
	if !ok {
		return Low, fmt.Errorf("pin %d not declared", pin)
	}
	return state, nil
}

// DummyPWM simulates a software PWM channel on one pin.
type DummyPWM struct {
	Pin       int
	Frequency int

	running bool
	duty    float64
}

func (d *DummyPWM) Name() string     { return "pwm" }
func (d *DummyPWM) Category() string { return CategoryPeripherals }

func (d *DummyPWM) RequiredClaims() []types.ResourceClaim {
	return []types.ResourceClaim{{
		Kind:       types.ResourcePin,
		Identifier: strconv.Itoa(d.Pin),
		Owner:      d.Name(),
	}}
}

func (d *DummyPWM) Initialize() error { return nil }
func (d *DummyPWM) Release() error {
	d.running = false
	return nil
}

func (d *DummyPWM) Start(dutyCycle float64) error {
	if dutyCycle < 0 || dutyCycle > 100 {
		return fmt.Errorf("duty cycle %v out of range [0,100]", dutyCycle)
	}
	d.running = true
	d.duty = dutyCycle
	return nil
}

func (d *DummyPWM) Stop()              { d.running = false }
func (d *DummyPWM) DutyCycle() float64 { return d.duty }

// DummyUART simulates a serial port.
type DummyUART struct {
	Port     string
	BaudRate int
	Parity   string
	StopBits int

	open bool
}

func (d *DummyUART) Name() string     { return "uart" }
func (d *DummyUART) Category() string { return CategoryPeripherals }

func (d *DummyUART) RequiredClaims() []types.ResourceClaim {
	return []types.ResourceClaim{{
		Kind:       types.ResourceSerialPort,
		Identifier: d.Port,
		Owner:      d.Name(),
	}}
}

func (d *DummyUART) Initialize() error {
	d.open = true
	return nil
}

func (d *DummyUART) Release() error {
	d.open = false
	return nil
}

func (d *DummyUART) Write(p []byte) (int, error) {
	if !d.open {
		return 0, fmt.Errorf("uart %s not open", d.Port)
	}
	return len(p), nil
}

func (d *DummyUART) Read(p []byte) (int, error) {
	if !d.open {
		return 0, fmt.Errorf("uart %s not open", d.Port)
	}
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

// DummyI2C simulates an I2C bus master.
type DummyI2C struct {
	Bus       int
	Frequency int
}

func (d *DummyI2C) Name() string     { return "i2c" }
func (d *DummyI2C) Category() string { return CategoryPeripherals }

func (d *DummyI2C) RequiredClaims() []types.ResourceClaim {
	return []types.ResourceClaim{{
		Kind:       types.ResourceBusDevice,
		Identifier: fmt.Sprintf("i2c-%d", d.Bus),
		Owner:      d.Name(),
	}}
}

func (d *DummyI2C) Initialize() error { return nil }
func (d *DummyI2C) Release() error    { return nil }

func (d *DummyI2C) ReadBlock(addr, reg byte, length int) ([]byte, error) {
	return make([]byte, length), nil
}

func (d *DummyI2C) WriteBlock(addr, reg byte, data []byte) error { return nil }

// DummySPI simulates an SPI device node.
type DummySPI struct {
	Bus      int
	Device   int
	MaxSpeed int
	Mode     int
}

func (d *DummySPI) Name() string     { return "spi" }
func (d *DummySPI) Category() string { return CategoryPeripherals }

func (d *DummySPI) RequiredClaims() []types.ResourceClaim {
	return []types.ResourceClaim{{
		Kind:       types.ResourceBusDevice,
		Identifier: fmt.Sprintf("spi%d.%d", d.Bus, d.Device),
		Owner:      d.Name(),
	}}
}

func (d *DummySPI) Initialize() error { return nil }
func (d *DummySPI) Release() error    { return nil }

// Transfer clocks data out and returns the same number of bytes back.
func (d *DummySPI) Transfer(data []byte) ([]byte, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// DummyOneWire simulates the single-wire bus. The claim identifier is
// the fixed w1-gpio pin regardless of declared parameters.
type DummyOneWire struct{}

func (d *DummyOneWire) Name() string     { return "onewire" }
func (d *DummyOneWire) Category() string { return CategoryPeripherals }

func (d *DummyOneWire) RequiredClaims() []types.ResourceClaim {
	return []types.ResourceClaim{{
		Kind:       types.ResourcePin,
		Identifier: registry.OneWireIdentifier,
		Owner:      d.Name(),
	}}
}

func (d *DummyOneWire) Initialize() error { return nil }
func (d *DummyOneWire) Release() error    { return nil }

// ListDevices returns the discovered slave IDs; the dummy bus is empty.
func (d *DummyOneWire) ListDevices() ([]string, error) { return nil, nil }

// DummyModbus simulates a Modbus RTU client over a serial port.
type DummyModbus struct {
	Port     string
	BaudRate int
	Parity   string
	StopBits int
	TimeoutS int

	connected bool
}

func (d *DummyModbus) Name() string     { return "modbus" }
func (d *DummyModbus) Category() string { return CategoryProtocols }

func (d *DummyModbus) RequiredClaims() []types.ResourceClaim {
	return []types.ResourceClaim{{
		Kind:       types.ResourceSerialPort,
		Identifier: d.Port,
		Owner:      d.Name(),
	}}
}

func (d *DummyModbus) Initialize() error {
	d.connected = true
	return nil
}

func (d *DummyModbus) Release() error {
	d.connected = false
	return nil
}

func (d *DummyModbus) ReadHoldingRegisters(slave byte, address, count uint16) ([]uint16, error) {
	if !d.connected {
		return nil, fmt.Errorf("modbus client not connected")
	}
	return make([]uint16, count), nil
}

func (d *DummyModbus) WriteSingleRegister(slave byte, address, value uint16) error {
	if !d.connected {
		return fmt.Errorf("modbus client not connected")
	}
	return nil
}

func (d *DummyModbus) ReadCoils(slave byte, address, count uint16) ([]bool, error) {
	if !d.connected {
		return nil, fmt.Errorf("modbus client not connected")
	}
	return make([]bool, count), nil
}

func (d *DummyModbus) WriteSingleCoil(slave byte, address uint16, value bool) error {
	if !d.connected {
		return fmt.Errorf("modbus client not connected")
	}
	return nil
}
