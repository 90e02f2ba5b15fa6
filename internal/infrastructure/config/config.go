package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override, e.g. DNC_LOOKUP_TIMEOUT=5s
const EnvPrefix = "DNC_"

// DefaultPath is read when no explicit config file is given
const DefaultPath = "configs/config.yaml"

type Config struct {
	Version     string `koanf:"version"`
	Environment string `koanf:"environment" validate:"required,oneof=development staging production test"`
	LogLevel    string `koanf:"log_level" validate:"required,oneof=debug info warn error"`

	Server    ServerConfig    `koanf:"server"`
	Lookup    LookupConfig    `koanf:"lookup"`
	Check     CheckConfig     `koanf:"check"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	WebSocket WebSocketConfig `koanf:"websocket"`
}

type ServerConfig struct {
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"min=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"min=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	MaxUploadBytes  int64         `koanf:"max_upload_bytes" validate:"gt=0"`
}

// LookupConfig configures the external DNC sources
type LookupConfig struct {
	// Timeout bounds a single lookup; 0 disables the bound
	Timeout    time.Duration `koanf:"timeout" validate:"min=0"`
	QueryParam string        `koanf:"query_param" validate:"required"`
	TCPAURL    string        `koanf:"tcpa_url" validate:"required,url"`
	PersonURL  string        `koanf:"person_url" validate:"required,url"`
	PremiumURL string        `koanf:"premium_url" validate:"required,url"`
}

// CheckConfig paces the sequential driver
type CheckConfig struct {
	SkipDelay  time.Duration `koanf:"skip_delay" validate:"min=0"`
	CheckDelay time.Duration `koanf:"check_delay" validate:"min=0"`
}

type TelemetryConfig struct {
	Enabled       bool          `koanf:"enabled"`
	ServiceName   string        `koanf:"service_name" validate:"required"`
	OTLPEndpoint  string        `koanf:"otlp_endpoint" validate:"required_if=Enabled true"`
	Insecure      bool          `koanf:"insecure"`
	SamplingRate  float64       `koanf:"sampling_rate" validate:"min=0,max=1"`
	ExportTimeout time.Duration `koanf:"export_timeout" validate:"gt=0"`
	BatchTimeout  time.Duration `koanf:"batch_timeout" validate:"gt=0"`
}

type WebSocketConfig struct {
	ClientBufferSize int           `koanf:"client_buffer_size" validate:"gt=0"`
	BroadcastBuffer  int           `koanf:"broadcast_buffer" validate:"gt=0"`
	PingInterval     time.Duration `koanf:"ping_interval" validate:"gt=0"`
	PongTimeout      time.Duration `koanf:"pong_timeout" validate:"gtfield=PingInterval"`
	WriteTimeout     time.Duration `koanf:"write_timeout" validate:"gt=0"`
}

// sections are the env var segments that map to nested keys
var sections = []string{"server", "lookup", "check", "telemetry", "websocket"}

// Defaults returns the built-in configuration
func Defaults() *Config {
	return &Config{
		Version:     "dev",
		Environment: "development",
		LogLevel:    "info",
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			MaxUploadBytes:  10 << 20,
		},
		Lookup: LookupConfig{
			Timeout:    15 * time.Second,
			QueryParam: "x",
			TCPAURL:    "https://tcpa.api.uspeoplesearch.net/tcpa/v1",
			PersonURL:  "https://person.api.uspeoplesearch.net/person/v3",
			PremiumURL: "https://premium_lookup-1-h4761841.deta.app/person",
		},
		Check: CheckConfig{
			SkipDelay:  10 * time.Millisecond,
			CheckDelay: 100 * time.Millisecond,
		},
		Telemetry: TelemetryConfig{
			Enabled:       false,
			ServiceName:   "dnc-scrubber",
			OTLPEndpoint:  "localhost:4317",
			Insecure:      true,
			SamplingRate:  1.0,
			ExportTimeout: 30 * time.Second,
			BatchTimeout:  5 * time.Second,
		},
		WebSocket: WebSocketConfig{
			ClientBufferSize: 256,
			BroadcastBuffer:  1024,
			PingInterval:     54 * time.Second,
			PongTimeout:      60 * time.Second,
			WriteTimeout:     10 * time.Second,
		},
	}
}

// Load reads defaults, then the YAML file at path, then DNC_* environment variables.
// An empty path falls back to DefaultPath, which may be absent.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		// only an explicitly requested file must exist
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// envKey maps DNC_LOOKUP_TIMEOUT to lookup.timeout and DNC_LOG_LEVEL to log_level
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	for _, section := range sections {
		if strings.HasPrefix(key, section+"_") {
			return section + "." + strings.TrimPrefix(key, section+"_")
		}
	}
	return key
}
