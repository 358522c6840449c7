// Command stove-sensor watches kitchen light and temperature telemetry, drives
// an RGB LED and buzzer, and sends an SMS alert when the stove is left on in
// a dark room.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sweeney/stove-sensor/internal/alert"
	"github.com/sweeney/stove-sensor/internal/config"
	"github.com/sweeney/stove-sensor/internal/gpio"
	"github.com/sweeney/stove-sensor/internal/logic"
	"github.com/sweeney/stove-sensor/internal/monitor"
	"github.com/sweeney/stove-sensor/internal/mqtt"
	"github.com/sweeney/stove-sensor/internal/status"
	"github.com/sweeney/stove-sensor/internal/telemetry"
	"github.com/sweeney/stove-sensor/internal/web"
)

// printStateAttempts bounds how many lines --print-state reads looking for a
// complete reading.
const printStateAttempts = 10

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("fatal: load config: %v", err)
	}

	printState, err := parseFlags(os.Args[1:], cfg)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatalf("fatal: %v", err)
	}

	if err := run(cfg, printState); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// parseFlags overrides cfg with any flags given in args. Flag defaults are
// the values already loaded from the environment.
func parseFlags(args []string, cfg *config.Config) (bool, error) {
	fs := flag.NewFlagSet("stove-sensor", flag.ContinueOnError)

	fs.StringVar(&cfg.Serial.Port, "serial", cfg.Serial.Port, "Serial device for the sensor board")
	fs.IntVar(&cfg.Serial.Baud, "baud", cfg.Serial.Baud, "Serial baud rate")
	fs.DurationVar(&cfg.Serial.ReadTimeout, "read-timeout", cfg.Serial.ReadTimeout, "Serial read timeout")
	fs.DurationVar(&cfg.Serial.Settle, "settle", cfg.Serial.Settle, "Delay after opening the port while the board resets")
	fs.IntVar(&cfg.Thresholds.DarkLight, "dark-threshold", cfg.Thresholds.DarkLight, "Light level below which the room is dark")
	fs.Float64Var(&cfg.Thresholds.WarnF, "warn-f", cfg.Thresholds.WarnF, "Warning temperature (°F)")
	fs.Float64Var(&cfg.Thresholds.DangerF, "danger-f", cfg.Thresholds.DangerF, "Danger temperature (°F)")
	fs.DurationVar(&cfg.Alert.Cooldown, "cooldown", cfg.Alert.Cooldown, "Minimum time between alert attempts")
	fs.DurationVar(&cfg.Alert.Timeout, "alert-timeout", cfg.Alert.Timeout, "Timeout for a single alert attempt")
	fs.IntVar(&cfg.GPIO.Pins.Red, "pin-red", cfg.GPIO.Pins.Red, "BCM pin for the red LED")
	fs.IntVar(&cfg.GPIO.Pins.Green, "pin-green", cfg.GPIO.Pins.Green, "BCM pin for the green LED")
	fs.IntVar(&cfg.GPIO.Pins.Blue, "pin-blue", cfg.GPIO.Pins.Blue, "BCM pin for the blue LED")
	fs.IntVar(&cfg.GPIO.Pins.Buzzer, "pin-buzzer", cfg.GPIO.Pins.Buzzer, "BCM pin for the buzzer")
	fs.IntVar(&cfg.GPIO.ToneHz, "tone-hz", cfg.GPIO.ToneHz, "Buzzer tone frequency (0 for an active buzzer)")
	fs.DurationVar(&cfg.Poll, "poll", cfg.Poll, "Loop interval")
	fs.DurationVar(&cfg.Heartbeat, "heartbeat", cfg.Heartbeat, "Heartbeat interval (0 to disable)")
	fs.StringVar(&cfg.Broker, "broker", cfg.Broker, "MQTT broker address (empty to disable)")
	fs.StringVar(&cfg.HTTPAddr, "http", cfg.HTTPAddr, "HTTP status address (empty to disable)")
	fs.Func("sms-to", "Comma-separated email-to-SMS recipients", func(v string) error {
		cfg.SMTP.Recipients = splitList(v)
		return nil
	})
	printState := fs.Bool("print-state", false, "Print the current classification and exit")

	if err := fs.Parse(args); err != nil {
		return false, err
	}
	if err := cfg.Validate(); err != nil {
		return false, fmt.Errorf("invalid config: %w", err)
	}
	return *printState, nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func run(cfg *config.Config, printState bool) error {
	// Print state mode needs only the sensor board
	if printState {
		src, err := telemetry.NewSerialSource(cfg.Serial.Port, cfg.Serial.Baud, cfg.Serial.ReadTimeout, cfg.Serial.Settle)
		if err != nil {
			return fmt.Errorf("open serial: %w", err)
		}
		defer src.Close()

		line, err := readState(src, cfg.Thresholds, printStateAttempts)
		if err != nil {
			return err
		}
		fmt.Println(line)
		return nil
	}

	// Initialize GPIO
	actuator, err := gpio.NewRealActuator(cfg.GPIO.Pins, cfg.GPIO.ToneHz)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer actuator.Close()

	// Initialize MQTT. Interfaces stay nil when disabled.
	var (
		publisher  mqtt.Publisher
		mqttStatus mqtt.ConnectionStatus
	)
	if cfg.Broker != "" {
		p, err := mqtt.NewRealPublisher(cfg.Broker)
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		defer p.Close()
		publisher, mqttStatus = p, p
	} else {
		log.Printf("mqtt disabled (no broker configured)")
	}

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		PollMs:      cfg.Poll.Milliseconds(),
		CooldownMs:  cfg.Alert.Cooldown.Milliseconds(),
		HeartbeatMs: cfg.Heartbeat.Milliseconds(),
		Thresholds:  cfg.Thresholds,
		SerialPort:  cfg.Serial.Port,
		Broker:      cfg.Broker,
		HTTPAddr:    cfg.HTTPAddr,
		SMSEnabled:  cfg.SMTP.Enabled(),
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	// Alert delivery
	sender, err := buildSender(cfg.SMTP, publisher)
	if err != nil {
		return fmt.Errorf("init alerts: %w", err)
	}
	var dispatcher monitor.Dispatcher
	if sender != nil {
		d := alert.NewDispatcher(sender, cfg.Alert.Timeout, func(r alert.Result) {
			tracker.RecordAlertResult(r.Err)
		})
		defer d.Close()
		dispatcher = d
	} else {
		log.Printf("no alert senders configured; alerts will only be logged")
	}

	// Open the sensor board last: from here on the monitor owns closing it.
	src, err := telemetry.NewSerialSource(cfg.Serial.Port, cfg.Serial.Baud, cfg.Serial.ReadTimeout, cfg.Serial.Settle)
	if err != nil {
		return fmt.Errorf("open serial: %w", err)
	}

	// Publish startup event with full status snapshot
	if publisher != nil {
		if mqttStatus != nil {
			tracker.SetMQTTConnected(mqttStatus.IsConnected())
		}
		snap := tracker.Snapshot()
		startupEvent := mqtt.SystemEvent{
			Timestamp:  snap.Now,
			Event:      "STARTUP",
			Retained:   true,
			RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
		}
		if err := publisher.PublishSystem(startupEvent); err != nil {
			log.Printf("failed to publish startup event: %v", err)
		} else {
			log.Printf("published startup event")
		}
	}

	// Start HTTP status server
	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTPAddr)
	}

	log.Printf("started: serial=%s poll=%v cooldown=%v heartbeat=%v broker=%q sms=%v thresholds=%d/%.1fF/%.1fF",
		cfg.Serial.Port, cfg.Poll, cfg.Alert.Cooldown, cfg.Heartbeat, cfg.Broker, cfg.SMTP.Enabled(),
		cfg.Thresholds.DarkLight, cfg.Thresholds.WarnF, cfg.Thresholds.DangerF)

	ticker := time.NewTicker(cfg.Poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	m := monitor.New(monitor.Deps{
		Source:     src,
		Actuator:   actuator,
		Alerts:     dispatcher,
		Publisher:  publisher,
		MQTTStatus: mqttStatus,
		Tracker:    tracker,
		Network:    readNetworkInfo,
	}, monitor.Config{
		Thresholds: cfg.Thresholds,
		Cooldown:   cfg.Alert.Cooldown,
		Heartbeat:  cfg.Heartbeat,
	})
	return m.Run(ticker.C, sigCh)
}

// buildSender combines the configured alert channels. Returns nil if none
// are configured.
func buildSender(smtpCfg config.SMTPConfig, publisher mqtt.Publisher) (alert.Sender, error) {
	var senders alert.Multi
	if smtpCfg.Enabled() {
		s, err := alert.NewSMTPSender(smtpCfg)
		if err != nil {
			return nil, err
		}
		senders = append(senders, s)
		log.Printf("sms alerts enabled: %d recipient(s) via %s:%d", len(smtpCfg.Recipients), smtpCfg.Host, smtpCfg.Port)
	}
	if publisher != nil {
		senders = append(senders, mqtt.AlertSender{Publisher: publisher})
	}
	if len(senders) == 0 {
		return nil, nil
	}
	return senders, nil
}

// readState reads lines until one is complete and describes its
// classification.
func readState(src telemetry.Source, th logic.Thresholds, attempts int) (string, error) {
	for i := 0; i < attempts; i++ {
		line, err := src.ReadLine()
		if err != nil {
			return "", fmt.Errorf("read telemetry: %w", err)
		}
		reading, ok := logic.Derive(logic.ParseLine(line), th)
		if !ok {
			continue
		}
		sev := logic.Classify(reading)
		cmd := logic.CommandFor(sev)
		return fmt.Sprintf("%s: temp=%.1fF (%.1fC) light=%d (%s) led=%s buzzer=%s",
			sev, reading.TempF, reading.TempC, reading.Light, lightLabel(reading.Dark),
			cmd.Color, onOff(cmd.Tone)), nil
	}
	return "", fmt.Errorf("no complete reading after %d lines", attempts)
}

func lightLabel(dark bool) string {
	if dark {
		return "dark"
	}
	return "lit"
}

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
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
