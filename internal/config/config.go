package config

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	ierr "pajak-engine/internal/errors"
)

type Configuration struct {
	Server   ServerConfig   `validate:"required"`
	Logging  LoggingConfig  `validate:"required"`
	Metrics  MetricsConfig  `validate:"required"`
	Treaty   TreatyConfig   `validate:"required"`
	Receipts ReceiptsConfig `validate:"required"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address" validate:"required"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxRequestBytes int           `mapstructure:"max_request_bytes" validate:"gte=0"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

type MetricsConfig struct {
	Namespace string `mapstructure:"namespace" validate:"required"`
}

// TreatyConfig points at the optional PPh 26 treaty rate registry. An empty
// RegistryURL disables remote lookups.
type TreatyConfig struct {
	RegistryURL string        `mapstructure:"registry_url" validate:"omitempty,url"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"gte=0"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl" validate:"gte=0"`
}

type ReceiptsConfig struct {
	TemplateVersion string `mapstructure:"template_version" validate:"required"`
	DefaultLocale   string `mapstructure:"default_locale" validate:"required,oneof=id en"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.max_request_bytes", 4<<20)
	v.SetDefault("logging.level", "info")
	v.SetDefault("metrics.namespace", "pajak")
	v.SetDefault("treaty.registry_url", "")
	v.SetDefault("treaty.timeout", 2*time.Second)
	v.SetDefault("treaty.cache_ttl", 30*time.Minute)
	v.SetDefault("receipts.template_version", "v1")
	v.SetDefault("receipts.default_locale", "id")
}

// NewConfig reads .env (if present), then config.yaml, then PAJAK_* environment
// variables, in increasing priority.
func NewConfig() (*Configuration, error) {
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/pajak")

	v.SetEnvPrefix("PAJAK")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if !ierr.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, ierr.Wrap(err, ierr.ErrSystem, "config.NewConfig", "config file unreadable")
		}
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, ierr.Wrap(err, ierr.ErrSystem, "config.NewConfig", "config does not decode")
	}

	if err := config.Validate(); err != nil {
		return nil, ierr.Wrap(err, ierr.ErrValidation, "config.NewConfig", "invalid configuration")
	}

	return &config, nil
}

func (c Configuration) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// GetDefaultConfig returns the configuration used when nothing is set.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Server: ServerConfig{
			Address:         ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			MaxRequestBytes: 4 << 20,
		},
		Logging: LoggingConfig{Level: "info"},
		Metrics: MetricsConfig{Namespace: "pajak"},
		Treaty: TreatyConfig{
			Timeout:  2 * time.Second,
			CacheTTL: 30 * time.Minute,
		},
		Receipts: ReceiptsConfig{TemplateVersion: "v1", DefaultLocale: "id"},
	}
}
