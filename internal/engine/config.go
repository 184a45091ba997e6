package engine

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	"github.com/helios-quant/helios-trading/pkg/errors"
	"github.com/helios-quant/helios-trading/pkg/utils"
)

// Config controls the live engine.
type Config struct {
	// InitialCapital funds the paper portfolio.
	InitialCapital float64 `yaml:"initial_capital" json:"initial_capital" validate:"gt=0"`
	// PollInterval is the market data polling cadence.
	PollInterval time.Duration `yaml:"poll_interval" json:"poll_interval"`
	// MonitorInterval is the cadence of portfolio snapshots and health checks.
	MonitorInterval time.Duration `yaml:"monitor_interval" json:"monitor_interval"`
	// QueueCapacity bounds the signal queue.
	QueueCapacity int `yaml:"queue_capacity" json:"queue_capacity" validate:"gte=0"`
	// CommissionRate is the fixed fee rate charged per fill.
	CommissionRate float64 `yaml:"commission_rate" json:"commission_rate" validate:"gte=0"`
	// ConfidenceFloor and RiskCeiling feed the risk gate's quality check.
	ConfidenceFloor float64 `yaml:"confidence_floor" json:"confidence_floor" validate:"gte=0,lte=1"`
	RiskCeiling     float64 `yaml:"risk_ceiling" json:"risk_ceiling" validate:"gte=0,lte=1"`
	// StatusAddr is the listen address of the HTTP status endpoint,
	// empty to disable it.
	StatusAddr string `yaml:"status_addr" json:"status_addr"`
}

// DefaultConfig returns the engine defaults: 30s polling, bounded queue,
// 0.1% commission.
func DefaultConfig() Config {
	return Config{
		InitialCapital:  100000,
		PollInterval:    30 * time.Second,
		MonitorInterval: time.Minute,
		QueueCapacity:   DefaultQueueCapacity,
		CommissionRate:  0.001,
	}
}

// LoadConfig reads a YAML config file, filling unset fields with defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config file %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to parse config file %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate checks the config and normalizes zero intervals to defaults.
func (c *Config) Validate() error {
	if c.PollInterval <= 0 {
		c.PollInterval = 30 * time.Second
	}
	if c.MonitorInterval <= 0 {
		c.MonitorInterval = time.Minute
	}
	if c.QueueCapacity <= 0 {
		c.QueueCapacity = DefaultQueueCapacity
	}

	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid engine config", err)
	}

	return nil
}

// GetConfigSchema returns the JSON schema of the engine config.
func GetConfigSchema() (string, error) {
	return utils.SchemaFor(&Config{})
}
