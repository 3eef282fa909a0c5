package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// SchedulerConfig controls the background jobs: how often they run, how far
// ahead the expiry scan looks, and how many rows a job touches per pass.
type SchedulerConfig struct {
	RunInterval      time.Duration `mapstructure:"runInterval"`
	ExpiryWindowDays int           `mapstructure:"expiryWindowDays"`
	BatchSize        int           `mapstructure:"batchSize"`
}

func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		RunInterval:      time.Hour,
		ExpiryWindowDays: 5,
		BatchSize:        200,
	}
}

// SchedulerConfigHolder serves the current scheduler config and hot-reloads it
// when the backing file changes.
type SchedulerConfigHolder struct {
	current atomic.Value // holds SchedulerConfig
}

func NewSchedulerConfigHolder() (*SchedulerConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("scheduler")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/seatwise/config") // Volume-mounted config
	v.AddConfigPath("/etc/seatwise")            // System config
	v.AddConfigPath(".")                        // Current directory (dev mode)

	v.SetEnvPrefix("SEATWISE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultSchedulerConfig()
		v.SetDefault("scheduler.runInterval", defaults.RunInterval)
		v.SetDefault("scheduler.expiryWindowDays", defaults.ExpiryWindowDays)
		v.SetDefault("scheduler.batchSize", defaults.BatchSize)
	}

	var cfg SchedulerConfig
	if err := v.UnmarshalKey("scheduler", &cfg); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	if err := validateSchedulerConfig(cfg); err != nil {
		return nil, err
	}

	holder := &SchedulerConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated SchedulerConfig
		if err := v.UnmarshalKey("scheduler", &updated); err != nil {
			log.Printf("[scheduler-config] reload failed: %v", err)
			return
		}
		updated = updated.withDefaults()
		if err := validateSchedulerConfig(updated); err != nil {
			log.Printf("[scheduler-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[scheduler-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// StaticSchedulerConfigHolder wraps a fixed config with no file watching.
func StaticSchedulerConfigHolder(cfg SchedulerConfig) *SchedulerConfigHolder {
	holder := &SchedulerConfigHolder{}
	holder.current.Store(cfg.withDefaults())
	return holder
}

func (h *SchedulerConfigHolder) Get() SchedulerConfig {
	return h.current.Load().(SchedulerConfig)
}

func (c SchedulerConfig) withDefaults() SchedulerConfig {
	defaults := DefaultSchedulerConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.ExpiryWindowDays <= 0 {
		c.ExpiryWindowDays = defaults.ExpiryWindowDays
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaults.BatchSize
	}
	return c
}

func validateSchedulerConfig(cfg SchedulerConfig) error {
	if cfg.RunInterval < time.Minute {
		return errors.New("scheduler.runInterval must be at least one minute")
	}
	if cfg.ExpiryWindowDays > 60 {
		return errors.New("scheduler.expiryWindowDays must be at most 60")
	}
	return nil
}
