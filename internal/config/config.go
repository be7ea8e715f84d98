package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"concentration/internal/domain"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variables that override file settings,
// e.g. CONCENTRATION_MISMATCH_DELAY_MS.
const EnvPrefix = "CONCENTRATION"

// GameConfig holds tunables for rounds and the match loop.
type GameConfig struct {
	CatalogPath string `mapstructure:"catalog_path" validate:"required"`
	AssetRoot   string `mapstructure:"asset_root"`

	DefaultCategory  string `mapstructure:"default_category" validate:"required"`
	DefaultGroupSize int    `mapstructure:"default_group_size" validate:"gte=2"`
	DefaultGroups    int    `mapstructure:"default_groups" validate:"gte=1"`
	// Levels lists the group counts offered to players.
	Levels    []int `mapstructure:"levels" validate:"required,min=1,dive,gte=1"`
	MaxGroups int   `mapstructure:"max_groups" validate:"gtefield=DefaultGroups"`

	MismatchDelayMs      int `mapstructure:"mismatch_delay_ms" validate:"gt=0"`
	VideoDelayMultiplier int `mapstructure:"video_delay_multiplier" validate:"gte=1"`
	WinDelayMs           int `mapstructure:"win_delay_ms" validate:"gte=0"`

	// TickRate is the Nakama match loop frequency in ticks per second. It
	// must divide 1000 so every tick is a whole number of milliseconds.
	TickRate int `mapstructure:"tick_rate" validate:"gte=1,lte=60,ms_divisor"`

	AutoPlayEnabled       bool `mapstructure:"autoplay_enabled"`
	AutoPlayMinDelayTicks int  `mapstructure:"autoplay_min_delay_ticks" validate:"gte=0"`
	AutoPlayMaxDelayTicks int  `mapstructure:"autoplay_max_delay_ticks" validate:"gtefield=AutoPlayMinDelayTicks"`
}

// Timing converts the configured delays for the round state machine.
func (c *GameConfig) Timing() domain.Timing {
	return domain.Timing{
		MismatchDelay:   time.Duration(c.MismatchDelayMs) * time.Millisecond,
		VideoMultiplier: c.VideoDelayMultiplier,
		WinDelay:        time.Duration(c.WinDelayMs) * time.Millisecond,
	}
}

// TickDuration is the virtual time that passes per match loop tick.
func (c *GameConfig) TickDuration() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

// DefaultRound returns the round configuration new sessions start with.
func (c *GameConfig) DefaultRound() domain.RoundConfig {
	return domain.RoundConfig{
		GroupSize:  c.DefaultGroupSize,
		GroupCount: c.DefaultGroups,
		Category:   c.DefaultCategory,
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("ms_divisor", func(fl validator.FieldLevel) bool {
		n := fl.Field().Int()
		return n > 0 && 1000%n == 0
	})
	return v
}

func newViper() *viper.Viper {
	v := viper.New()
	d := builtin()
	v.SetDefault("catalog_path", d.CatalogPath)
	v.SetDefault("asset_root", d.AssetRoot)
	v.SetDefault("default_category", d.DefaultCategory)
	v.SetDefault("default_group_size", d.DefaultGroupSize)
	v.SetDefault("default_groups", d.DefaultGroups)
	v.SetDefault("levels", d.Levels)
	v.SetDefault("max_groups", d.MaxGroups)
	v.SetDefault("mismatch_delay_ms", d.MismatchDelayMs)
	v.SetDefault("video_delay_multiplier", d.VideoDelayMultiplier)
	v.SetDefault("win_delay_ms", d.WinDelayMs)
	v.SetDefault("tick_rate", d.TickRate)
	v.SetDefault("autoplay_enabled", d.AutoPlayEnabled)
	v.SetDefault("autoplay_min_delay_ticks", d.AutoPlayMinDelayTicks)
	v.SetDefault("autoplay_max_delay_ticks", d.AutoPlayMaxDelayTicks)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the JSON config at path, applies environment overrides and
// validates the result. An empty path uses defaults and environment only.
func Load(path string) (*GameConfig, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read game config: %w", err)
		}
	}

	var c GameConfig
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	if err := validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("invalid game config: %w", err)
	}
	return &c, nil
}

// builtin returns the settings used when no config file is loaded.
func builtin() *GameConfig {
	return &GameConfig{
		CatalogPath:           "data/catalog.json",
		AssetRoot:             "assets",
		DefaultCategory:       "animals",
		DefaultGroupSize:      2,
		DefaultGroups:         2,
		Levels:                []int{2, 4, 6, 8, 10, 12},
		MaxGroups:             38,
		MismatchDelayMs:       1000,
		VideoDelayMultiplier:  4,
		WinDelayMs:            1500,
		TickRate:              10,
		AutoPlayMinDelayTicks: 5,
		AutoPlayMaxDelayTicks: 15,
	}
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the process-wide game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		cfg, loadErr = Load(path)
	})
	return loadErr
}

// GetGameConfig returns the global game configuration, or the built-in
// defaults when none was loaded.
func GetGameConfig() *GameConfig {
	if cfg == nil {
		return builtin()
	}
	return cfg
}
