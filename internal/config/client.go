package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Client holds the client-side counterparts of Server's simulation
// constants (the prediction/interpolation code must agree with the server
// bit-for-bit) plus connection and cache settings.
type Client struct {
	ServerHost string `yaml:"server_host"`
	ServerPort int    `yaml:"server_port"`

	TickRate int     `yaml:"tick_rate"` // CLIENT_TICK_RATE
	Velocity float32 `yaml:"velocity"`

	AttackDuration float64 `yaml:"attack_duration"`
	RollDuration   float64 `yaml:"roll_duration"`
	RollDistance   float32 `yaml:"roll_distance"`

	ChunkCacheMax int `yaml:"chunk_cache_max"` // CACHE_MAX
	ChunkLength   int `yaml:"chunk_length"`

	EventBusCapacity int `yaml:"event_bus_capacity"`

	LogLevel string `yaml:"log_level"`
}

// DefaultClient returns the Client config populated with spec.md §6.3's
// values.
func DefaultClient() Client {
	return Client{
		ServerHost: "127.0.0.1",
		ServerPort: 7777,

		TickRate: 64,
		Velocity: 300,

		AttackDuration: 0.3,
		RollDuration:   0.4,
		RollDistance:   250,

		ChunkCacheMax: 64,
		ChunkLength:   16,

		EventBusCapacity: 256,

		LogLevel: "info",
	}
}

// LoadClient loads client config from a YAML file, overlaying it onto
// DefaultClient(). A missing file is not an error — the defaults stand.
func LoadClient(path string) (Client, error) {
	cfg := DefaultClient()

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
