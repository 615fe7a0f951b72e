// Package config loads YAML-overlaid configuration for the StarLore server
// and client binaries, following the same Default*/Load* pattern used
// throughout the corpus this project grew out of: start from hardcoded
// defaults, overlay whatever the YAML file at the given path sets, and
// tolerate a missing file entirely.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Server holds every tunable the simulation and connection manager need
// (spec.md §6.3), plus the ambient IO/logging knobs the teacher's configs
// always carry alongside the domain ones.
type Server struct {
	// Network
	BindAddress  string `yaml:"bind_address"`
	InputBuffer  int    `yaml:"input_buffer"`  // bytes, INPUT_BUFFER
	OverflowBuffer int  `yaml:"overflow_buffer"` // bytes, OVERFLOW_BUFFER

	// Simulation
	TickRate               int     `yaml:"tick_rate"`                 // SERVER_TICK_RATE, Hz
	MaxPlayerCount         int     `yaml:"max_player_count"`          // MAX_PLAYER_COUNT
	Velocity               float32 `yaml:"velocity"`                  // PLAYER_VELOCITY, px/s
	DamageValue            int32   `yaml:"damage_value"`               // PLAYER_DAMAGE_VALUE
	StartHealth            int32   `yaml:"start_health"`               // PLAYER_START_HEALTH
	AttackCooldown         float64 `yaml:"attack_cooldown"`           // seconds
	AttackDuration         float64 `yaml:"attack_duration"`           // seconds
	RollCooldown           float64 `yaml:"roll_cooldown"`             // seconds
	RollDuration           float64 `yaml:"roll_duration"`             // seconds
	RollDistance           float32 `yaml:"roll_distance"`             // px
	RespawnCooldown        float64 `yaml:"respawn_cooldown"`          // seconds
	InputRingBufferCap     int     `yaml:"input_ring_buffer_capacity"` // C7 queue bound
	ProcessedInputPerTick  int     `yaml:"processed_input_limit_per_update"`

	// World
	WorldSeed   uint32  `yaml:"world_seed"`
	OctaveCount int32   `yaml:"octave_count"`
	Bias        float32 `yaml:"bias"`
	ChunkLength int     `yaml:"chunk_length"`

	// Chat
	HistoryBatch        int `yaml:"history_batch"`
	MessageLogCapacity  int `yaml:"message_log_capacity"`

	// Timeouts / per-connection write serialization
	WriteTimeout time.Duration `yaml:"write_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`

	// Logging
	LogLevel string `yaml:"log_level"` // debug, info, warn, error (default: info)
}

// SpawnPosition is the fixed point every player starts at and returns to on
// respawn (spec.md's PLAYER_SPAWN_POSITION).
var SpawnPosition = [2]float32{0, 0}

// DefaultServer returns the Server config populated with spec.md §6.3's
// values.
func DefaultServer() Server {
	return Server{
		BindAddress:    "0.0.0.0",
		InputBuffer:    4096,
		OverflowBuffer: 256,

		TickRate:              64,
		MaxPlayerCount:        5,
		Velocity:              300,
		DamageValue:           10,
		StartHealth:           200,
		AttackCooldown:        1.0,
		AttackDuration:        0.3,
		RollCooldown:          1.0,
		RollDuration:          0.4,
		RollDistance:          250,
		RespawnCooldown:       5.0,
		InputRingBufferCap:    256,
		ProcessedInputPerTick: 256,

		WorldSeed:   1,
		OctaveCount: 4,
		Bias:        2.0,
		ChunkLength: 16,

		HistoryBatch:       10,
		MessageLogCapacity: 1000,

		WriteTimeout: 5 * time.Second,
		ReadTimeout:  120 * time.Second,

		LogLevel: "info",
	}
}

// LoadServer loads server config from a YAML file, overlaying it onto
// DefaultServer(). A missing file is not an error — the defaults stand.
func LoadServer(path string) (Server, error) {
	cfg := DefaultServer()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
