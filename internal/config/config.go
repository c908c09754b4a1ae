// Package config loads latrones settings from a JSON file with environment
// overrides.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hailam/latrones/internal/board"
	"github.com/hailam/latrones/internal/engine"
)

// Config mirrors the settings file.
type Config struct {
	DebugMode bool `json:"debug_mode"`

	DefaultBoardSizeX      int  `json:"default_board_size_x"`
	DefaultBoardSizeY      int  `json:"default_board_size_y"`
	DefaultUserIsWhite     bool `json:"default_user_is_white"`
	DefaultPlayAgainstBot  bool `json:"default_play_against_bot"`
	DefaultGameTimeSeconds int  `json:"default_game_time_seconds"`

	PointsPerKingCapture  int     `json:"minimax_points_per_king_capture"`
	PointsPerPieceCapture int     `json:"minimax_points_per_piece_capture"`
	PointsPerMoveOption   int     `json:"minimax_points_per_move_option"`
	MaxDepth              int     `json:"minimax_max_depth"`
	MaxDepthCapture       int     `json:"minimax_max_depth_capture"`
	TimeoutSec            float64 `json:"minimax_timeout_sec"`

	ListenAddr string `json:"listen_addr"`
	DataDir    string `json:"data_dir"` // empty = platform default
	TTSizeMB   int    `json:"tt_size_mb"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		DefaultBoardSizeX:      8,
		DefaultBoardSizeY:      8,
		DefaultUserIsWhite:     true,
		DefaultPlayAgainstBot:  true,
		DefaultGameTimeSeconds: 600,

		PointsPerKingCapture:  1000,
		PointsPerPieceCapture: 100,
		PointsPerMoveOption:   1,
		MaxDepth:              3,
		MaxDepthCapture:       5,
		TimeoutSec:            3,

		ListenAddr: ":8080",
		TTSizeMB:   16,
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides settings from LATRONES_* environment variables.
// Unparsable values are reported and leave the setting unchanged.
func (c *Config) ApplyEnv() error {
	var errs []error

	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	setBool := func(key string, dst *bool) {
		if v := os.Getenv(key); v != "" {
			switch strings.ToLower(strings.TrimSpace(v)) {
			case "1", "true", "t", "yes", "y", "on":
				*dst = true
			case "0", "false", "f", "no", "n", "off":
				*dst = false
			default:
				errs = append(errs, fmt.Errorf("%s: invalid boolean %q", key, v))
			}
		}
	}
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setBool("LATRONES_DEBUG", &c.DebugMode)
	setInt("LATRONES_BOARD_WIDTH", &c.DefaultBoardSizeX)
	setInt("LATRONES_BOARD_HEIGHT", &c.DefaultBoardSizeY)
	setBool("LATRONES_USER_IS_WHITE", &c.DefaultUserIsWhite)
	setBool("LATRONES_PLAY_AGAINST_BOT", &c.DefaultPlayAgainstBot)
	setInt("LATRONES_GAME_TIME_SECONDS", &c.DefaultGameTimeSeconds)
	setInt("LATRONES_MAX_DEPTH", &c.MaxDepth)
	setInt("LATRONES_MAX_DEPTH_CAPTURE", &c.MaxDepthCapture)
	setString("LATRONES_ADDR", &c.ListenAddr)
	setString("LATRONES_DATA_DIR", &c.DataDir)
	setInt("LATRONES_TT_MB", &c.TTSizeMB)

	if v := os.Getenv("LATRONES_TIMEOUT_SEC"); v != "" {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("LATRONES_TIMEOUT_SEC: %w", err))
		} else {
			c.TimeoutSec = f
		}
	}

	return errors.Join(errs...)
}

// Validate checks the settings for consistency.
func (c Config) Validate() error {
	if _, err := board.NewGeometry(c.DefaultBoardSizeX, c.DefaultBoardSizeY); err != nil {
		return fmt.Errorf("default board size: %w", err)
	}
	if c.DefaultGameTimeSeconds < 0 {
		return fmt.Errorf("default_game_time_seconds %d: must not be negative", c.DefaultGameTimeSeconds)
	}
	if c.TimeoutSec <= 0 {
		return fmt.Errorf("minimax_timeout_sec %v: must be positive", c.TimeoutSec)
	}
	if err := c.SearchConfig().Validate(); err != nil {
		return fmt.Errorf("minimax settings: %w", err)
	}
	return nil
}

// SearchConfig converts the minimax settings for the engine.
func (c Config) SearchConfig() engine.SearchConfig {
	return engine.SearchConfig{
		MaxDepth:        c.MaxDepth,
		MaxCaptureDepth: c.MaxDepthCapture,
		Timeout:         time.Duration(c.TimeoutSec * float64(time.Second)),
		PointsKing:      c.PointsPerKingCapture,
		PointsMan:       c.PointsPerPieceCapture,
		PointsMobility:  c.PointsPerMoveOption,
	}
}

// DefaultUserColor returns the color the user plays by default.
func (c Config) DefaultUserColor() board.Color {
	if c.DefaultUserIsWhite {
		return board.Light
	}
	return board.Dark
}

// Store holds the live configuration for concurrent readers.
type Store struct {
	mu     sync.RWMutex
	config Config
}

// NewStore creates a store holding cfg.
func NewStore(cfg Config) *Store {
	return &Store{config: cfg}
}

// Get returns a copy of the current configuration.
func (s *Store) Get() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// Update validates and installs a new configuration.
func (s *Store) Update(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.config = cfg
	s.mu.Unlock()
	return nil
}
