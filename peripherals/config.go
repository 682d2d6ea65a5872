package peripherals

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the declared peripheral and protocol configuration. The
// schema mirrors the peripherals_config.yaml layout: top-level
// "peripherals" and "protocols" maps with one entry per driver kind.
type Config struct {
	Peripherals PeripheralsConfig `yaml:"peripherals"`
	Protocols   ProtocolsConfig   `yaml:"protocols"`
}

type PeripheralsConfig struct {
	GPIO    []GPIOConfig   `yaml:"gpio,omitempty"`
	PWM     *PWMConfig     `yaml:"pwm,omitempty"`
	UART    *UARTConfig    `yaml:"uart,omitempty"`
	I2C     *I2CConfig     `yaml:"i2c,omitempty"`
	SPI     *SPIConfig     `yaml:"spi,omitempty"`
	OneWire *OneWireConfig `yaml:"onewire,omitempty"`
}

type ProtocolsConfig struct {
	Modbus *ModbusConfig `yaml:"modbus,omitempty"`
}

type GPIOConfig struct {
	Pin     *int   `yaml:"pin"`
	Mode    string `yaml:"mode"`
	Initial string `yaml:"initial,omitempty"`
}

type PWMConfig struct {
	Pin       *int `yaml:"pin"`
	Frequency int  `yaml:"frequency,omitempty"`
}

type UARTConfig struct {
	Port     string `yaml:"port,omitempty"`
	BaudRate int    `yaml:"baudrate,omitempty"`
	Parity   string `yaml:"parity,omitempty"`
	StopBits int    `yaml:"stopbits,omitempty"`
}

type I2CConfig struct {
	Bus       int `yaml:"bus,omitempty"`
	Frequency int `yaml:"frequency,omitempty"`
}

type SPIConfig struct {
	Bus      int `yaml:"bus,omitempty"`
	Device   int `yaml:"device,omitempty"`
	MaxSpeed int `yaml:"max_speed_hz,omitempty"`
	Mode     int `yaml:"mode,omitempty"`
}

type OneWireConfig struct {
	// The single-wire bus has no tunable parameters; its pin is fixed
	// by the w1-gpio overlay. Declaring the entry claims the bus.
	Enabled bool `yaml:"enabled"`
}

type ModbusConfig struct {
	Port     string `yaml:"port,omitempty"`
	BaudRate int    `yaml:"baudrate,omitempty"`
	Parity   string `yaml:"parity,omitempty"`
	StopBits int    `yaml:"stopbits,omitempty"`
	Timeout  int    `yaml:"timeout,omitempty"`
}

// LoadConfig reads and validates a peripheral configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read peripheral config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse peripheral config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	for i, g := range c.Peripherals.GPIO {
		if g.Pin == nil {
			return fmt.Errorf("gpio[%d]: 'pin' is required", i)
		}
		switch strings.ToLower(g.Mode) {
		case "in", "out":
		default:
			return fmt.Errorf("gpio[%d]: invalid mode %q (want 'in' or 'out')", i, g.Mode)
		}
		switch strings.ToLower(g.Initial) {
		case "", "low", "high":
		default:
			return fmt.Errorf("gpio[%d]: invalid initial value %q (want 'low' or 'high')", i, g.Initial)
		}
	}
	if p := c.Peripherals.PWM; p != nil && p.Pin == nil {
		return fmt.Errorf("pwm: 'pin' is required")
	}
	if u := c.Peripherals.UART; u != nil {
		if err := validateParity("uart", u.Parity); err != nil {
			return err
		}
	}
	if m := c.Protocols.Modbus; m != nil {
		if err := validateParity("modbus", m.Parity); err != nil {
			return err
		}
	}
	return nil
}

func validateParity(entry, parity string) error {
	switch strings.ToUpper(parity) {
	case "", "N", "E", "O":
		return nil
	default:
		return fmt.Errorf("%s: invalid parity %q (want 'N', 'E' or 'O')", entry, parity)
	}
}

// Devices builds the dummy driver set from the validated configuration,
// applying the same defaults the original loader used. Real hardware
// drivers are out of scope; every driver here simulates its device while
// claiming the same resources a real one would.
func (c *Config) Devices() []Device {
	var devices []Device

	if m := c.Protocols.Modbus; m != nil {
		devices = append(devices, &DummyModbus{
			Port:     defaultString(m.Port, "/dev/ttyUSB0"),
			BaudRate: defaultInt(m.BaudRate, 9600),
			Parity:   defaultString(strings.ToUpper(m.Parity), "N"),
			StopBits: defaultInt(m.StopBits, 1),
			TimeoutS: defaultInt(m.Timeout, 1),
		})
	}
	if u := c.Peripherals.UART; u != nil {
		devices = append(devices, &DummyUART{
			Port:     defaultString(u.Port, "/dev/ttyUSB0"),
			BaudRate: defaultInt(u.BaudRate, 9600),
			Parity:   defaultString(strings.ToUpper(u.Parity), "N"),
			StopBits: defaultInt(u.StopBits, 1),
		})
	}
	if len(c.Peripherals.GPIO) > 0 {
		pins := make([]GPIOPin, 0, len(c.Peripherals.GPIO))
		for _, g := range c.Peripherals.GPIO {
			initial := Low
			if strings.EqualFold(g.Initial, "high") {
				initial = High
			}
			pins = append(pins, GPIOPin{
				Pin:     *g.Pin,
				Mode:    strings.ToLower(g.Mode),
				Initial: initial,
			})
		}
		devices = append(devices, &DummyGPIO{Pins: pins})
	}
	if p := c.Peripherals.PWM; p != nil {
		devices = append(devices, &DummyPWM{
			Pin:       *p.Pin,
			Frequency: defaultInt(p.Frequency, 1000),
		})
	}
	if i := c.Peripherals.I2C; i != nil {
		devices = append(devices, &DummyI2C{
			Bus:       defaultInt(i.Bus, 1),
			Frequency: defaultInt(i.Frequency, 100000),
		})
	}
	if s := c.Peripherals.SPI; s != nil {
		devices = append(devices, &DummySPI{
			Bus:      s.Bus,
			Device:   s.Device,
			MaxSpeed: defaultInt(s.MaxSpeed, 50000),
			Mode:     s.Mode,
		})
	}
	if o := c.Peripherals.OneWire; o != nil && o.Enabled {
		devices = append(devices, &DummyOneWire{})
	}
	return devices
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func defaultInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
