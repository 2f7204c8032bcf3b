// Package config loads the controller configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/enclosure-controller/internal/display"
	"github.com/sweeney/enclosure-controller/internal/gpio"
	"github.com/sweeney/enclosure-controller/internal/heater"
	"github.com/sweeney/enclosure-controller/internal/i2c"
	"github.com/sweeney/enclosure-controller/internal/logic"
	"github.com/sweeney/enclosure-controller/internal/mqtt"
)

// Display drivers.
const (
	DisplayLCD    = "lcd"
	DisplaySerial = "serial"
	DisplayLog    = "log"
)

// DefaultPath is where the daemon looks for its config file.
const DefaultPath = "/etc/enclosure-controller.yaml"

// Config is the full daemon configuration.
type Config struct {
	Tick         time.Duration `yaml:"tick"`
	InputPoll    time.Duration `yaml:"input_poll"`
	Debounce     time.Duration `yaml:"debounce"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
	IdleRotate   time.Duration `yaml:"idle_rotate"`
	ViewDuration time.Duration `yaml:"view_duration"`
	Heartbeat    time.Duration `yaml:"heartbeat"`
	LogLevel     string        `yaml:"log_level"`
	GPIO         gpio.Pins     `yaml:"gpio"`
	Heaters      Heaters       `yaml:"heaters"`
	Sensors      Sensors       `yaml:"sensors"`
	Display      Display       `yaml:"display"`
	SettingsFile string        `yaml:"settings_file"`
	Thermal      Thermal       `yaml:"thermal"`
	MQTT         MQTT          `yaml:"mqtt"`
	HTTP         string        `yaml:"http"`
}

// Heaters selects the PWM chip and channel per zone.
type Heaters struct {
	Chip      string `yaml:"chip"`
	Channels  []int  `yaml:"channels"`
	Frequency int    `yaml:"frequency"`
}

// Sensors maps each logical channel to an i2c-dev bus. An empty entry
// leaves the channel without a sensor.
type Sensors struct {
	Buses []string `yaml:"buses"`
}

// Display selects the panel renderer.
type Display struct {
	Driver  string `yaml:"driver"`
	Bus     string `yaml:"bus"`
	Address uint8  `yaml:"address"`
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
	Port    string `yaml:"port"`
	Baud    int    `yaml:"baud"`
}

// Thermal holds the control-loop parameters.
type Thermal struct {
	OverheatF        float64       `yaml:"overheat_f"`
	Kp               float64       `yaml:"kp"`
	Ki               float64       `yaml:"ki"`
	Kd               float64       `yaml:"kd"`
	DefaultSetpointF float64       `yaml:"default_setpoint_f"`
	// DefaultTimer is the boot timer length. Zero leaves both heaters idle
	// until a timer is armed from the panel.
	DefaultTimer     time.Duration `yaml:"default_timer"`
	AutoShutoff      time.Duration `yaml:"auto_shutoff"`
}

// MQTT configures telemetry.
type MQTT struct {
	Broker       string `yaml:"broker"`
	ClientPrefix string `yaml:"client_prefix"`
	BufferSize   int    `yaml:"buffer_size"`
}

// Default returns the stock configuration.
func Default() Config {
	var c Config
	c.ensureDefaults()
	return c
}

// Load reads path. A missing file yields Default; missing keys are filled
// with their defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML and validates the result.
func Parse(data []byte) (Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	c.ensureDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) ensureDefaults() {
	setDuration(&c.Tick, 500*time.Millisecond)
	setDuration(&c.InputPoll, 2*time.Millisecond)
	setDuration(&c.Debounce, 30*time.Millisecond)
	setDuration(&c.IdleTimeout, 5*time.Minute)
	setDuration(&c.IdleRotate, 5*time.Second)
	setDuration(&c.ViewDuration, time.Second)
	setDuration(&c.Heartbeat, 15*time.Minute)
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	if c.GPIO == (gpio.Pins{}) {
		c.GPIO = gpio.DefaultPins
	}
	if c.GPIO.Chip == "" {
		c.GPIO.Chip = gpio.DefaultPins.Chip
	}

	if c.Heaters.Chip == "" {
		c.Heaters.Chip = "/sys/class/pwm/pwmchip0"
	}
	if len(c.Heaters.Channels) == 0 {
		c.Heaters.Channels = []int{0, 1}
	}
	if c.Heaters.Frequency == 0 {
		c.Heaters.Frequency = heater.DefaultFrequency
	}

	if len(c.Sensors.Buses) == 0 {
		c.Sensors.Buses = []string{"/dev/i2c-3", "/dev/i2c-4", "/dev/i2c-5", "/dev/i2c-6"}
	}

	if c.Display.Driver == "" {
		c.Display.Driver = DisplayLCD
	}
	if c.Display.Bus == "" {
		c.Display.Bus = i2c.DefaultPath
	}
	if c.Display.Address == 0 {
		c.Display.Address = display.DefaultLCDAddress
	}
	if c.Display.Width == 0 {
		c.Display.Width = 20
	}
	if c.Display.Height == 0 {
		c.Display.Height = 4
	}
	if c.Display.Port == "" {
		c.Display.Port = "/dev/ttyS0"
	}
	if c.Display.Baud == 0 {
		c.Display.Baud = display.DefaultBaudRate
	}

	if c.SettingsFile == "" {
		c.SettingsFile = "/var/lib/enclosure-controller/settings.bin"
	}

	if c.Thermal.OverheatF == 0 {
		c.Thermal.OverheatF = logic.DefaultOverheatF
	}
	if c.Thermal.Kp == 0 && c.Thermal.Ki == 0 && c.Thermal.Kd == 0 {
		c.Thermal.Kp = logic.DefaultGains.Kp
		c.Thermal.Ki = logic.DefaultGains.Ki
		c.Thermal.Kd = logic.DefaultGains.Kd
	}
	if c.Thermal.DefaultSetpointF == 0 {
		c.Thermal.DefaultSetpointF = logic.DefaultSetpointF
	}
	setDuration(&c.Thermal.AutoShutoff, logic.DefaultAutoShutoff)

	if c.MQTT.Broker == "" {
		c.MQTT.Broker = "tcp://localhost:1883"
	}
	if c.MQTT.ClientPrefix == "" {
		c.MQTT.ClientPrefix = mqtt.DefaultClientPrefix
	}
	if c.MQTT.BufferSize == 0 {
		c.MQTT.BufferSize = mqtt.DefaultBufferSize
	}

	if c.HTTP == "" {
		c.HTTP = ":80"
	}
}

func setDuration(d *time.Duration, def time.Duration) {
	if *d == 0 {
		*d = def
	}
}

// Validate reports configuration errors the control loop cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Tick <= 0 || c.InputPoll <= 0 {
		errs = append(errs, errors.New("tick and input_poll must be positive"))
	}
	if len(c.Heaters.Channels) != logic.NumZones {
		errs = append(errs, fmt.Errorf("heaters.channels: want %d entries, got %d", logic.NumZones, len(c.Heaters.Channels)))
	}
	if len(c.Sensors.Buses) != logic.NumChannels {
		errs = append(errs, fmt.Errorf("sensors.buses: want %d entries, got %d", logic.NumChannels, len(c.Sensors.Buses)))
	}
	seen := make(map[string]bool)
	for _, b := range c.Sensors.Buses {
		if b != "" && seen[b] {
			errs = append(errs, fmt.Errorf("sensors.buses: %s listed twice", b))
		}
		seen[b] = true
	}
	switch c.Display.Driver {
	case DisplayLCD, DisplaySerial, DisplayLog:
	default:
		errs = append(errs, fmt.Errorf("display.driver: unknown driver %q", c.Display.Driver))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ControllerConfig returns the thermal parameters for logic.NewController.
func (c Config) ControllerConfig() logic.ControllerConfig {
	return logic.ControllerConfig{
		OverheatF:       c.Thermal.OverheatF,
		Gains:           logic.Gains{Kp: c.Thermal.Kp, Ki: c.Thermal.Ki, Kd: c.Thermal.Kd},
		DefaultSetpoint: c.Thermal.DefaultSetpointF,
		DefaultTimer:    c.Thermal.DefaultTimer,
		AutoShutoff:     c.Thermal.AutoShutoff,
	}
}

// ParseLevel maps a log_level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("log_level: unknown level %q", s)
}
