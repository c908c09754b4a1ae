package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// SearchConfig parameterizes the bot.
type SearchConfig struct {
	MaxDepth        int           // D: plies searched when no capture sequence is running
	MaxCaptureDepth int           // Dc: hard limit while a capture sequence is running
	Timeout         time.Duration // no new root work is started past this (0 = no limit)

	PointsKing     int // material value of a king
	PointsMan      int // material value of a man
	PointsMobility int // value of each reachable square at the root
}

// DefaultSearchConfig returns the medium preset.
func DefaultSearchConfig() SearchConfig {
	return DifficultySettings[Medium]
}

// Validate reports whether the configuration can drive a search.
func (c SearchConfig) Validate() error {
	if c.MaxDepth < 1 {
		return fmt.Errorf("max depth %d: must be at least 1", c.MaxDepth)
	}
	if c.MaxCaptureDepth < c.MaxDepth {
		return fmt.Errorf("max capture depth %d: must not be below max depth %d", c.MaxCaptureDepth, c.MaxDepth)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout %s: must not be negative", c.Timeout)
	}
	return nil
}

// fingerprint identifies the parameters that change search results.
// The timeout is left out: only searches that ran to completion are reused.
func (c SearchConfig) fingerprint() uint64 {
	return xxhash.Sum64String(fmt.Sprintf("d=%d dc=%d k=%d m=%d mob=%d",
		c.MaxDepth, c.MaxCaptureDepth, c.PointsKing, c.PointsMan, c.PointsMobility))
}

// Difficulty represents the bot strength.
type Difficulty int

const (
	Easy   Difficulty = iota // 2 ply, 1s
	Medium                   // 3 ply, 3s
	Hard                     // 4 ply, 5s
)

// DifficultySettings maps difficulty to search settings.
var DifficultySettings = map[Difficulty]SearchConfig{
	Easy:   {MaxDepth: 2, MaxCaptureDepth: 3, Timeout: time.Second, PointsKing: 1000, PointsMan: 100, PointsMobility: 1},
	Medium: {MaxDepth: 3, MaxCaptureDepth: 5, Timeout: 3 * time.Second, PointsKing: 1000, PointsMan: 100, PointsMobility: 1},
	Hard:   {MaxDepth: 4, MaxCaptureDepth: 6, Timeout: 5 * time.Second, PointsKing: 1000, PointsMan: 100, PointsMobility: 1},
}

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	}
	return fmt.Sprintf("difficulty(%d)", int(d))
}

// ParseDifficulty parses "easy", "medium" or "hard".
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return Easy, nil
	case "medium", "":
		return Medium, nil
	case "hard":
		return Hard, nil
	}
	return Medium, fmt.Errorf("unknown difficulty %q", s)
}
