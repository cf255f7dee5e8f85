package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"smartmeter/pkg/loadmanager"
	"smartmeter/pkg/pathing"
)

// Load reads the TOML config from the given path, or from the default
// location when path is empty. A missing file is created with defaults
// first, so a fresh install always has a file to edit.
func Load(path string) (*Config, error) {
	if path == "" {
		path = filepath.Join(pathing.GetConfigDir(), "smartmeter.toml")
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := Default()
		cfgFile, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		defer cfgFile.Close()
		if err := toml.NewEncoder(cfgFile).Encode(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Device:   "/dev/ttyUSB0",
			Baudrate: 115200,
			Bytesize: 8,
			Parity:   "N",
			Stopbits: 1,
		},
		Queue: QueueConfig{
			Capacity: 1024,
		},
		Logging: LoggingConfig{
			Level:       "info",
			LogToStdout: true,
		},
		Database: DatabaseConfig{
			Enabled: true,
		},
		CSV: CSVConfig{
			Prefix:        "smartmeter",
			WriteHeader:   true,
			MaxLines:      100,
			MaxAgeSeconds: 300,
		},
		API: APIConfig{
			Enabled:       true,
			ListenAddress: "0.0.0.0",
			ListenPort:    9039,
		},
		Loads: []loadmanager.LoadConfig{
			{
				Name:           "car_charger",
				MaxPower:       230 * 6,
				SwitchOnPower:  1400,
				SwitchOffPower: -200,
				HoldSeconds:    300,
				Strategy:       loadmanager.StrategyDwell,
			},
		},
	}
}
