// Package config loads daemon settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/sweeney/stove-sensor/internal/gpio"
	"github.com/sweeney/stove-sensor/internal/logic"
)

type Config struct {
	Serial     SerialConfig
	Thresholds logic.Thresholds
	Alert      AlertConfig
	GPIO       GPIOConfig
	SMTP       SMTPConfig

	Poll      time.Duration
	Heartbeat time.Duration
	Broker    string
	HTTPAddr  string
}

type SerialConfig struct {
	Port        string
	Baud        int
	ReadTimeout time.Duration
	Settle      time.Duration
}

type AlertConfig struct {
	Cooldown time.Duration
	Timeout  time.Duration
}

type GPIOConfig struct {
	Pins   gpio.Pins
	ToneHz int
}

type SMTPConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	Recipients []string
}

// Enabled reports whether enough is configured to attempt delivery.
func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.From != "" && len(s.Recipients) > 0
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	config := &Config{
		Serial: SerialConfig{
			Port:        getEnv("SERIAL_PORT", "/dev/ttyACM0"),
			Baud:        getEnvAsInt("SERIAL_BAUD", 9600),
			ReadTimeout: getEnvAsDuration("SERIAL_READ_TIMEOUT", time.Second),
			Settle:      getEnvAsDuration("SERIAL_SETTLE", 2*time.Second),
		},
		Thresholds: logic.Thresholds{
			DarkLight: getEnvAsInt("DARK_THRESHOLD", logic.DefaultThresholds.DarkLight),
			WarnF:     getEnvAsFloat("WARN_THRESHOLD_F", logic.DefaultThresholds.WarnF),
			DangerF:   getEnvAsFloat("DANGER_THRESHOLD_F", logic.DefaultThresholds.DangerF),
		},
		Alert: AlertConfig{
			Cooldown: getEnvAsDuration("ALERT_COOLDOWN", logic.DefaultCooldown),
			Timeout:  getEnvAsDuration("ALERT_TIMEOUT", 30*time.Second),
		},
		GPIO: GPIOConfig{
			Pins: gpio.Pins{
				Red:    getEnvAsInt("PIN_RED", gpio.DefaultPinRed),
				Green:  getEnvAsInt("PIN_GREEN", gpio.DefaultPinGreen),
				Blue:   getEnvAsInt("PIN_BLUE", gpio.DefaultPinBlue),
				Buzzer: getEnvAsInt("PIN_BUZZER", gpio.DefaultPinBuzzer),
			},
			ToneHz: getEnvAsInt("BUZZER_FREQ_HZ", gpio.DefaultToneHz),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Username:   getEnv("SMTP_USERNAME", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			From:       getEnv("SMTP_FROM", ""),
			Recipients: getEnvAsList("SMS_RECIPIENTS"),
		},
		Poll:      getEnvAsDuration("POLL_INTERVAL", 100*time.Millisecond),
		Heartbeat: getEnvAsDuration("HEARTBEAT_INTERVAL", 15*time.Minute),
		Broker:    getEnv("MQTT_BROKER", ""),
		HTTPAddr:  getEnv("HTTP_ADDR", ":8080"),
	}

	return config, nil
}

// Validate checks values the monitor relies on.
func (c *Config) Validate() error {
	var errs []error
	if c.Thresholds.DangerF <= c.Thresholds.WarnF {
		errs = append(errs, fmt.Errorf("danger threshold %.1fF must exceed warning threshold %.1fF",
			c.Thresholds.DangerF, c.Thresholds.WarnF))
	}
	if c.Poll <= 0 {
		errs = append(errs, fmt.Errorf("poll interval must be positive, got %v", c.Poll))
	}
	if c.Alert.Cooldown <= 0 {
		errs = append(errs, fmt.Errorf("alert cooldown must be positive, got %v", c.Alert.Cooldown))
	} else if c.Alert.Cooldown < c.Alert.Timeout {
		errs = append(errs, fmt.Errorf("alert cooldown %v must not be shorter than alert timeout %v",
			c.Alert.Cooldown, c.Alert.Timeout))
	}
	if c.Serial.ReadTimeout <= 0 {
		errs = append(errs, fmt.Errorf("serial read timeout must be positive, got %v", c.Serial.ReadTimeout))
	}
	if c.Heartbeat < 0 {
		errs = append(errs, fmt.Errorf("heartbeat must not be negative, got %v", c.Heartbeat))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	var out []string
	for _, s := range strings.Split(getEnv(key, ""), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
