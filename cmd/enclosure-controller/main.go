// Command enclosure-controller regulates two heated print enclosures, watches
// two filament dry boxes and publishes state changes to MQTT.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/sweeney/enclosure-controller/internal/alert"
	"github.com/sweeney/enclosure-controller/internal/appliance"
	"github.com/sweeney/enclosure-controller/internal/config"
	"github.com/sweeney/enclosure-controller/internal/display"
	"github.com/sweeney/enclosure-controller/internal/gpio"
	"github.com/sweeney/enclosure-controller/internal/heater"
	"github.com/sweeney/enclosure-controller/internal/i2c"
	"github.com/sweeney/enclosure-controller/internal/logic"
	"github.com/sweeney/enclosure-controller/internal/menu"
	"github.com/sweeney/enclosure-controller/internal/mqtt"
	"github.com/sweeney/enclosure-controller/internal/sensor"
	"github.com/sweeney/enclosure-controller/internal/settings"
	"github.com/sweeney/enclosure-controller/internal/status"
	"github.com/sweeney/enclosure-controller/internal/web"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "Path to the YAML config file")
	broker := flag.String("broker", "", "MQTT broker address (overrides config)")
	httpAddr := flag.String("http", "", `HTTP status address (overrides config, "off" disables)`)
	printState := flag.Bool("print-state", false, "Print current sensor readings and exit")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
	if *broker != "" {
		cfg.MQTT.Broker = *broker
	}
	switch *httpAddr {
	case "":
	case "off":
		cfg.HTTP = ""
	default:
		cfg.HTTP = *httpAddr
	}

	level, _ := config.ParseLevel(cfg.LogLevel)
	log := slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: level, TimeFormat: time.TimeOnly}))
	slog.SetDefault(log)

	if err := run(cfg, *printState, log); err != nil {
		log.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, printState bool, log *slog.Logger) error {
	sensors, err := openSensors(cfg.Sensors.Buses)
	if err != nil {
		return err
	}
	defer sensors.Close()

	if printState {
		printReadings(os.Stdout, sensors)
		return nil
	}

	pins, err := gpio.NewRealReader(cfg.GPIO)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer pins.Close()

	buzzer, err := gpio.NewRealBuzzer(cfg.GPIO)
	if err != nil {
		return fmt.Errorf("init buzzer: %w", err)
	}
	defer buzzer.Close()

	heaters, err := heater.OpenSysfsPWM(cfg.Heaters.Chip, cfg.Heaters.Channels, cfg.Heaters.Frequency)
	if err != nil {
		return fmt.Errorf("init heaters: %w", err)
	}
	defer heaters.Close()

	disp, err := openDisplay(cfg.Display, log)
	if err != nil {
		return err
	}
	defer disp.Close()

	store, err := settings.OpenFileStore(cfg.SettingsFile)
	if err != nil {
		return fmt.Errorf("init settings: %w", err)
	}
	st, err := settings.Load(store)
	if err != nil {
		log.Warn("settings unreadable, using defaults", "path", cfg.SettingsFile, "error", err)
	}

	sequencer := alert.NewSequencer(buzzer, disp, nil, log.With("component", "alert"))

	app := appliance.New(appliance.Deps{
		Pins:       pins,
		Sensors:    sensors,
		Heaters:    heaters,
		Alerts:     sequencer,
		Display:    disp,
		Store:      store,
		Settings:   st,
		Controller: cfg.ControllerConfig(),
		Menu: menu.Options{
			IdleTimeout:  cfg.IdleTimeout,
			IdleRotate:   cfg.IdleRotate,
			ViewDuration: cfg.ViewDuration,
		},
		Debounce: cfg.Debounce,
		Log:      log,
	}, time.Now())
	defer app.Shutdown()

	publisher := mqtt.NewRealPublisher(mqtt.Options{
		Broker:       cfg.MQTT.Broker,
		ClientPrefix: cfg.MQTT.ClientPrefix,
		BufferSize:   cfg.MQTT.BufferSize,
	}, log.With("component", "mqtt"))
	defer publisher.Close()

	// Tracker exists before STARTUP so the event carries a snapshot.
	tracker := status.NewTracker(time.Now(), status.Config{
		TickMs:        cfg.Tick.Milliseconds(),
		InputPollMs:   cfg.InputPoll.Milliseconds(),
		DebounceMs:    cfg.Debounce.Milliseconds(),
		HeartbeatMs:   cfg.Heartbeat.Milliseconds(),
		IdleTimeoutMs: cfg.IdleTimeout.Milliseconds(),
		OverheatF:     cfg.Thermal.OverheatF,
		Broker:        cfg.MQTT.Broker,
		HTTPPort:      cfg.HTTP,
		Display:       cfg.Display.Driver,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}
	tracker.Update(app.Status(time.Now()))

	snap := tracker.Snapshot()
	startup := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startup); err != nil {
		log.Warn("publish startup event", "error", err)
	}

	if cfg.HTTP != "" {
		srv := web.New(cfg.HTTP, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("http server", "error", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Info("http status server listening", "addr", cfg.HTTP)
	}

	log.Info("started",
		"tick", cfg.Tick, "input_poll", cfg.InputPoll, "broker", cfg.MQTT.Broker,
		"display", cfg.Display.Driver, "heartbeat", cfg.Heartbeat)

	inputTicker := time.NewTicker(cfg.InputPoll)
	defer inputTicker.Stop()
	ticker := time.NewTicker(cfg.Tick)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(app, publisher, publisher, tracker, cfg.Heartbeat, time.Now, inputTicker.C, ticker.C, sigCh, log)
}

func runLoop(app *appliance.Appliance, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, heartbeat time.Duration, now func() time.Time, input, tick <-chan time.Time, sig <-chan os.Signal, log *slog.Logger) error {
	inputDown := false

	for {
		select {
		case s := <-sig:
			log.Info("shutting down", "signal", s)
			app.Shutdown()

			reason := signalName(s)
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    reason,
				Retained:  true,
			}
			if tracker != nil {
				tracker.Update(app.Status(event.Timestamp))
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				event.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "SHUTDOWN", reason)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Warn("publish shutdown event", "error", err)
			}
			return nil

		case <-input:
			if err := app.Poll(now()); err != nil {
				if !inputDown {
					log.Error("input poll failed", "error", err)
					inputDown = true
				}
				continue
			}
			if inputDown {
				log.Info("input poll recovered")
				inputDown = false
			}

		case <-tick:
			t := now()
			events := app.Tick(t)
			for _, event := range events {
				if err := publisher.Publish(event); err != nil {
					// The loop keeps regulating without a broker.
					log.Warn("publish event", "event", event.Type, "error", err)
				}
			}

			if hb := app.CheckHeartbeat(t, heartbeat); hb != nil {
				c := hb.Counts
				log.Info("heartbeat", "uptime", hb.Uptime,
					"overheat", c.Overheat, "timer_done", c.TimerDone, "auto_shutoff", c.AutoShutoff,
					"humidity_high", c.HumidityHigh, "shut_all_off", c.ShutAllOff)

				hbEvent := mqtt.SystemEvent{
					Timestamp: hb.Timestamp,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					if net := readNetworkInfo(); net != nil {
						tracker.SetNetwork(net)
					}
					tracker.Update(app.Status(t))
					if mqttStatus != nil {
						tracker.SetMQTTConnected(mqttStatus.IsConnected())
					}
					hbEvent.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Warn("publish heartbeat", "error", err)
				}
			}

			if tracker != nil {
				tracker.Update(app.Status(t))
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
			}
		}
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}

// openSensors opens one i2c-dev bus per configured channel.
func openSensors(paths []string) (*sensor.SHTC3, error) {
	var buses [logic.NumChannels]sensor.Bus
	for i, path := range paths {
		if i >= logic.NumChannels || path == "" {
			continue
		}
		bus, err := i2c.Open(path)
		if err != nil {
			for _, b := range buses[:i] {
				if b != nil {
					b.Close()
				}
			}
			return nil, fmt.Errorf("init sensor %s: %w", logic.Channel(i), err)
		}
		buses[i] = bus
	}
	return sensor.NewSHTC3(buses), nil
}

func printReadings(w io.Writer, sensors sensor.Reader) {
	for ch := logic.Channel(0); ch < logic.NumChannels; ch++ {
		r, err := sensors.Read(ch)
		if err != nil {
			fmt.Fprintf(w, "%s: error: %v\n", ch, err)
			continue
		}
		fmt.Fprintf(w, "%s: %.1f°F %.0f%%\n", ch, r.TemperatureF, r.Humidity)
	}
}

// lcdPanel owns the bus behind an LCD.
type lcdPanel struct {
	*display.LCD
	bus *i2c.Bus
}

func (p lcdPanel) Close() error {
	return errors.Join(p.LCD.Close(), p.bus.Close())
}

func openDisplay(c config.Display, log *slog.Logger) (display.Renderer, error) {
	switch c.Driver {
	case config.DisplaySerial:
		s, err := display.OpenSerial(c.Port, c.Baud)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DisplayLog:
		return display.NewLog(log.With("component", "display")), nil
	}
	bus, err := i2c.Open(c.Bus)
	if err != nil {
		return nil, fmt.Errorf("init display: %w", err)
	}
	lcd, err := display.NewLCD(bus, c.Address, c.Width, c.Height)
	if err != nil {
		bus.Close()
		return nil, err
	}
	return lcdPanel{LCD: lcd, bus: bus}, nil
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}
