// Package config
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type Config struct {
	Address        string        `validate:"required"`
	Port           int           `validate:"min=1,max=65535"`
	PollInterval   time.Duration `validate:"gt=0"`
	WebRoot        string        `validate:"required"`
	ServeStatic    bool
	Locale         string `validate:"required"`
	AllowedOrigins []string
	LogLevel       string `validate:"oneof=debug info warn warning error"`
	LogFormat      string `validate:"oneof=text json"`

	HardwareBackend  string `validate:"oneof=sysfs demo"`
	SysRoot          string `validate:"required"`
	SystemSensors    bool
	RequirePrivilege bool

	WsPushInterval  time.Duration `validate:"gt=0"`
	PublishInterval time.Duration `validate:"gt=0"`
	InstanceID      uuid.UUID

	RedisAddress  string
	RedisUsername string
	RedisPassword string
	RedisDB       int    `validate:"min=0"`
	RedisStream   string `validate:"required_with=RedisAddress"`
	RedisMaxLen   int64  `validate:"min=0"`

	MQTTBroker   string
	MQTTClientID string
	MQTTUsername string
	MQTTPassword string
	MQTTTopic    string `validate:"required_with=MQTTBroker"`
}

func Load() *Config {
	_ = godotenv.Load()

	// Logs
	logLevel := strings.ToLower(getEnv("LOG_LEVEL", "info"))
	logFormat := strings.ToLower(getEnv("LOG_FORMAT", "text"))

	// HTTP listener, all interfaces
	port := getEnvInt("PORT", 8085)
	addr := getEnv("HTTP_ADDR", fmt.Sprintf(":%d", port))

	// CORS, open to any origin unless narrowed
	origins := splitCSV(getEnv("ALLOWED_ORIGINS", "*"))

	// Instance ID
	instanceID := uuid.New()
	if raw := os.Getenv("INSTANCE_ID"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			instanceID = id
		}
	}

	hostname, _ := os.Hostname()

	return &Config{
		LogLevel:  logLevel,
		LogFormat: logFormat,

		Address:        addr,
		Port:           port,
		PollInterval:   getEnvDuration("POLL_INTERVAL", 200*time.Millisecond),
		WebRoot:        getEnv("WEB_ROOT", "web"),
		ServeStatic:    getEnvBool("SERVE_STATIC", true),
		Locale:         getEnv("LOCALE", "en"),
		AllowedOrigins: origins,

		HardwareBackend:  strings.ToLower(getEnv("HARDWARE_BACKEND", "sysfs")),
		SysRoot:          getEnv("SYS_ROOT", "/sys"),
		SystemSensors:    getEnvBool("SYSTEM_SENSORS", true),
		RequirePrivilege: getEnvBool("REQUIRE_PRIVILEGE", false),

		WsPushInterval:  getEnvDuration("WS_PUSH_INTERVAL", time.Second),
		PublishInterval: getEnvDuration("PUBLISH_INTERVAL", 5*time.Second),
		InstanceID:      instanceID,

		RedisAddress:  getEnv("REDIS_ADDRESS", ""),
		RedisUsername: getEnv("REDIS_USERNAME", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisStream:   getEnv("REDIS_STREAM", "hwmonitor:snapshots"),
		RedisMaxLen:   int64(getEnvInt("REDIS_MAXLEN", 1000)),

		MQTTBroker:   getEnv("MQTT_BROKER", ""),
		MQTTClientID: getEnv("MQTT_CLIENT_ID", "hwmonitor-"+hostname),
		MQTTUsername: getEnv("MQTT_USERNAME", ""),
		MQTTPassword: getEnv("MQTT_PASSWORD", ""),
		MQTTTopic:    getEnv("MQTT_TOPIC", "hwmonitor/"+hostname),
	}
}

var validate = validator.New()

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	errs := make([]error, 0, len(validationErrors))
	for _, fe := range validationErrors {
		switch fe.Tag() {
		case "required", "required_with":
			errs = append(errs, fmt.Errorf("config: %s is required", fe.Field()))
		case "oneof":
			errs = append(errs, fmt.Errorf("config: %s must be one of [%s], got %q", fe.Field(), fe.Param(), fe.Value()))
		default:
			errs = append(errs, fmt.Errorf("config: %s is invalid (%s=%s)", fe.Field(), fe.Tag(), fe.Param()))
		}
	}

	return errors.Join(errs...)
}

func (c *Config) RedisEnabled() bool {
	return c.RedisAddress != ""
}

func (c *Config) MQTTEnabled() bool {
	return c.MQTTBroker != ""
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func getEnvBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func splitCSV(s string) []string {
	var out []string
	for p := range strings.SplitSeq(s, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
