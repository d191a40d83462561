package mqttsn

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the static, caller-supplied configuration for a Session: the
// gateway address, connection defaults, and the predefined-topic table.
// Predefined topics are taken as externally configured and are immutable
// for the session's life.
type Config struct {
	GatewayHost string `yaml:"gateway_host" validate:"required"`
	GatewayPort int    `yaml:"gateway_port" validate:"required,min=1,max=65535"`

	ClientID     string        `yaml:"client_id" validate:"required,max=1024"`
	KeepAlive    time.Duration `yaml:"keep_alive" validate:"min=0"`
	RequestTimeout time.Duration `yaml:"request_timeout" validate:"min=0"`
	MaxRetries   int           `yaml:"max_retries" validate:"min=0"`
	CleanSession bool          `yaml:"clean_session"`

	WillTopic   string `yaml:"will_topic"`
	WillMessage string `yaml:"will_message"`
	WillQoS     int8   `yaml:"will_qos" validate:"min=-1,max=1"`
	WillRetain  bool   `yaml:"will_retain"`

	// Predefined maps topic name to its pre-agreed gateway-side id.
	Predefined map[string]uint16 `yaml:"predefined_topics"`
}

var validate = validator.New()

// DefaultConfig returns the default connection parameters: 60s keep-alive,
// 60s request timeout, 3 retries, clean-session left to the caller since it
// has no universal default.
func DefaultConfig() Config {
	return Config{
		KeepAlive:      60 * time.Second,
		RequestTimeout: 60 * time.Second,
		MaxRetries:     3,
	}
}

// LoadConfig reads a YAML document at path into a Config seeded with
// DefaultConfig, then validates it.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if err := validate.Struct(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
