// Package config loads the engine and session settings: defaults, then an
// optional JSON file, then GOMOKU_* environment overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/luxquant/gomoku/internal/board"
	"github.com/luxquant/gomoku/internal/search"
)

// Board sizes outside this range either cannot hold a five with room for
// the evaluation window or make the padded grids needlessly large.
const (
	MinBoardSize = 5
	MaxBoardSize = 30
)

const (
	ModeAIvsAI       = "ai-ai"
	ModeHumanVsAI    = "human-ai"
	ModeHumanVsHuman = "human-human"

	FirstHuman = "human"
	FirstAI    = "ai"
)

type Config struct {
	Mode               string `json:"mode"`
	First              string `json:"first"`
	BoardSize          int    `json:"board_size"`
	AiDepth            int    `json:"ai_depth"`
	AiThreatPlies      int    `json:"ai_threat_ply_threshold"`
	AiMaxCandidates    int    `json:"ai_max_candidates"`
	AiNeighborRadius   int    `json:"ai_neighbor_radius"`
	Seed               uint64 `json:"seed"`
	CacheCapacity      int    `json:"cache_capacity"`
	DisableCache       bool   `json:"disable_cache"`
	MoveDelayMs        int    `json:"move_delay_ms"`
	LogLevel           string `json:"log_level"`
	SpectateAddr       string `json:"spectate_addr"`
	SpectateHeartbeatS int    `json:"spectate_heartbeat_sec"`
}

func DefaultConfig() Config {
	return Config{
		Mode:               ModeHumanVsAI,
		First:              FirstHuman,
		BoardSize:          15,
		AiDepth:            3,
		AiThreatPlies:      search.DefaultThreatPlyThreshold,
		AiMaxCandidates:    20,
		AiNeighborRadius:   2,
		Seed:               1,
		CacheCapacity:      0, // cache.DefaultCapacity
		MoveDelayMs:        0,
		LogLevel:           "info",
		SpectateAddr:       "",
		SpectateHeartbeatS: 25,
	}
}

// Load returns the defaults overlaid with the JSON file at path (skipped when
// path is empty) and then with the environment. It does not validate: callers
// apply their own overrides first and then call Validate once.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, errors.Wrap(err, "read config")
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrapf(err, "decode config %s", path)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.BoardSize = getenvInt("GOMOKU_SIZE", c.BoardSize)
	c.AiDepth = getenvInt("GOMOKU_DEPTH", c.AiDepth)
	c.Seed = getenvUint64("GOMOKU_SEED", c.Seed)
	c.AiMaxCandidates = getenvInt("GOMOKU_MAX_CANDIDATES", c.AiMaxCandidates)
	c.CacheCapacity = getenvInt("GOMOKU_CACHE_CAPACITY", c.CacheCapacity)
	c.LogLevel = getenv("GOMOKU_LOG_LEVEL", c.LogLevel)
	c.SpectateAddr = getenv("GOMOKU_SPECTATE_ADDR", c.SpectateAddr)
}

func (c Config) Validate() error {
	if c.BoardSize < MinBoardSize || c.BoardSize > MaxBoardSize {
		return errors.Errorf("board_size %d out of range [%d, %d]", c.BoardSize, MinBoardSize, MaxBoardSize)
	}
	if c.AiDepth < 1 {
		return errors.Errorf("ai_depth must be at least 1, got %d", c.AiDepth)
	}
	if c.AiThreatPlies < 1 {
		return errors.Errorf("ai_threat_ply_threshold must be at least 1, got %d", c.AiThreatPlies)
	}
	if c.AiMaxCandidates < 0 || c.AiNeighborRadius < 0 || c.CacheCapacity < 0 {
		return errors.New("ai_max_candidates, ai_neighbor_radius and cache_capacity must not be negative")
	}
	switch c.Mode {
	case ModeAIvsAI, ModeHumanVsAI, ModeHumanVsHuman:
	default:
		return errors.Errorf("unknown mode %q", c.Mode)
	}
	if c.First != FirstHuman && c.First != FirstAI {
		return errors.Errorf("first must be %q or %q, got %q", FirstHuman, FirstAI, c.First)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrapf(err, "log_level %q", c.LogLevel)
	}
	return nil
}

// Level is the parsed log level; invalid values fall back to info.
func (c Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// BoardOptions projects the settings every board of a session is built with.
// patterns may be nil to let the board compile the default table.
func (c Config) BoardOptions(patterns *board.PatternTable) board.Options {
	return board.Options{
		Seed:           c.Seed,
		Patterns:       patterns,
		CacheCapacity:  c.CacheCapacity,
		DisableCache:   c.DisableCache,
		MaxCandidates:  c.AiMaxCandidates,
		NeighborRadius: c.AiNeighborRadius,
	}
}

func (c Config) EngineConfig(logger zerolog.Logger) search.Config {
	return search.Config{
		Depth:              c.AiDepth,
		ThreatPlyThreshold: c.AiThreatPlies,
		CacheCapacity:      c.CacheCapacity,
		DisableCache:       c.DisableCache,
		Logger:             logger,
	}
}

// Store guards a Config shared between the game loop and the spectator
// server.
type Store struct {
	mu     sync.RWMutex
	config Config
}

func NewStore(cfg Config) *Store {
	return &Store{config: cfg}
}

func (s *Store) Get() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// Update replaces the stored config if cfg is valid.
func (s *Store) Update(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.config = cfg
	s.mu.Unlock()
	return nil
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var parsed int
	if _, err := fmt.Sscanf(value, "%d", &parsed); err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}

func getenvUint64(key string, fallback uint64) uint64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var parsed uint64
	if _, err := fmt.Sscanf(value, "%d", &parsed); err != nil {
		return fallback
	}
	return parsed
}
