package server

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/pixil98/go-errors"
)

// Config 服务配置。命令行参数优先于配置文件
type Config struct {
	Addr       string        `json:"addr"`
	Log        LogConfig     `json:"log"`
	TickRate   int           `json:"tick_rate"`
	DefaultMap string        `json:"default_map"`
	Room       RoomConfig    `json:"room"`
	Storage    StorageConfig `json:"storage"`
}

// RoomConfig 每个房间的初始参数，时长使用 time.ParseDuration 格式
type RoomConfig struct {
	MoveInterval       string `json:"move_interval"`
	ChatInterval       string `json:"chat_interval"`
	MaxCommandsPerTick int    `json:"max_commands_per_tick"`
	MaxClients         int    `json:"max_clients"`
}

// StorageConfig 档案存储：memory 或 bolt
type StorageConfig struct {
	Driver string `json:"driver"`
	Path   string `json:"path"`
}

func DefaultConfig() Config {
	return Config{
		Addr:       ":8080",
		Log:        LogConfig{File: "app.log", Level: "debug", Format: "console"},
		TickRate:   TicksPerSecond,
		DefaultMap: DefaultMapName,
		Room: RoomConfig{
			MoveInterval:       "60ms",
			ChatInterval:       "1s",
			MaxCommandsPerTick: 16,
			MaxClients:         20,
		},
		Storage: StorageConfig{Driver: "memory"},
	}
}

// LoadConfig 在默认值之上叠加配置文件；path 为空时只使用默认值
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("unmarshalling config: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	if c.Addr == "" {
		el.Add(fmt.Errorf("addr is required"))
	}
	if c.TickRate < 1 || c.TickRate > 120 {
		el.Add(fmt.Errorf("tick_rate must be between 1 and 120"))
	}
	if _, ok := DefaultMaps.Lookup(c.DefaultMap); !ok {
		el.Add(fmt.Errorf("default_map %q is not a known map", c.DefaultMap))
	}
	switch c.Log.Format {
	case "", "console", "json":
	default:
		el.Add(fmt.Errorf("log format must be console or json"))
	}

	el.Add(c.Room.Validate())
	el.Add(c.Storage.Validate())

	return el.Err()
}

func (c *RoomConfig) Validate() error {
	el := errors.NewErrorList()

	if _, err := time.ParseDuration(c.MoveInterval); err != nil {
		el.Add(fmt.Errorf("parsing move_interval: %w", err))
	}
	if _, err := time.ParseDuration(c.ChatInterval); err != nil {
		el.Add(fmt.Errorf("parsing chat_interval: %w", err))
	}
	if c.MaxCommandsPerTick < 1 {
		el.Add(fmt.Errorf("max_commands_per_tick must be positive"))
	}
	if c.MaxClients < 1 {
		el.Add(fmt.Errorf("max_clients must be positive"))
	}

	return el.Err()
}

// Tuning 转换为房间参数，调用前需先 Validate
func (c *RoomConfig) Tuning() RoomTuning {
	move, _ := time.ParseDuration(c.MoveInterval)
	chat, _ := time.ParseDuration(c.ChatInterval)
	return RoomTuning{
		MoveInterval:       move,
		ChatInterval:       chat,
		MaxCommandsPerTick: c.MaxCommandsPerTick,
		MaxClients:         c.MaxClients,
	}
}

func (c *StorageConfig) Validate() error {
	el := errors.NewErrorList()

	switch c.Driver {
	case "memory":
	case "bolt":
		if c.Path == "" {
			el.Add(fmt.Errorf("storage path is required for bolt driver"))
		}
	default:
		el.Add(fmt.Errorf("unknown storage driver %q", c.Driver))
	}

	return el.Err()
}

// Open 按配置打开档案存储
func (c *StorageConfig) Open() (ProfileStore, error) {
	switch c.Driver {
	case "bolt":
		return OpenBoltProfileStore(c.Path)
	case "memory":
		return NewMemoryProfileStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", c.Driver)
	}
}
