package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	testutil.AssertEqual(t, "addr", cfg.Addr, ":8080")
	testutil.AssertEqual(t, "tick rate", cfg.TickRate, TicksPerSecond)
	testutil.AssertEqual(t, "default map", cfg.DefaultMap, DefaultMapName)
	testutil.AssertEqual(t, "tuning", cfg.Room.Tuning(), DefaultRoomTuning())
}

func TestLoadConfig_OverlaysFile(t *testing.T) {
	path := writeConfig(t, `{
		"addr": ":9000",
		"default_map": "forest",
		"room": {"chat_interval": "500ms", "max_clients": 4},
		"storage": {"driver": "bolt", "path": "/tmp/profiles.db"}
	}`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	testutil.AssertEqual(t, "addr", cfg.Addr, ":9000")
	testutil.AssertEqual(t, "default map", cfg.DefaultMap, "forest")
	testutil.AssertEqual(t, "chat interval", cfg.Room.Tuning().ChatInterval, 500*time.Millisecond)
	testutil.AssertEqual(t, "move interval kept", cfg.Room.Tuning().MoveInterval, 60*time.Millisecond)
	testutil.AssertEqual(t, "max clients", cfg.Room.MaxClients, 4)
	testutil.AssertEqual(t, "driver", cfg.Storage.Driver, "bolt")
	testutil.AssertEqual(t, "log level kept", cfg.Log.Level, "debug")
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := map[string]struct {
		body   string
		expErr string
	}{
		"bad json":       {body: `{"addr":`, expErr: "unmarshalling config"},
		"empty addr":     {body: `{"addr": ""}`, expErr: "addr is required"},
		"tick rate":      {body: `{"tick_rate": 500}`, expErr: "tick_rate must be between 1 and 120"},
		"unknown map":    {body: `{"default_map": "moon"}`, expErr: "is not a known map"},
		"log format":     {body: `{"log": {"format": "xml"}}`, expErr: "log format must be console or json"},
		"move interval":  {body: `{"room": {"move_interval": "fast"}}`, expErr: "parsing move_interval"},
		"chat interval":  {body: `{"room": {"chat_interval": "1 second"}}`, expErr: "parsing chat_interval"},
		"max commands":   {body: `{"room": {"max_commands_per_tick": 0}}`, expErr: "max_commands_per_tick must be positive"},
		"max clients":    {body: `{"room": {"max_clients": -1}}`, expErr: "max_clients must be positive"},
		"bolt no path":   {body: `{"storage": {"driver": "bolt"}}`, expErr: "storage path is required"},
		"unknown driver": {body: `{"storage": {"driver": "redis"}}`, expErr: `unknown storage driver "redis"`},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			testutil.AssertErrorContains(t, err, tt.expErr)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	testutil.AssertErrorContains(t, err, "reading config")
}

func TestConfigValidate_CollectsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Addr = ""
	cfg.Room.MaxClients = 0
	cfg.Storage.Driver = "bolt"

	err := cfg.Validate()

	testutil.AssertErrorContains(t, err, "addr is required")
	testutil.AssertErrorContains(t, err, "max_clients must be positive")
	testutil.AssertErrorContains(t, err, "storage path is required")
}
