package config

import (
	"smartmeter/pkg/loadmanager"
)

type Config struct {
	Serial   SerialConfig             `toml:"serial"`
	Queue    QueueConfig              `toml:"queue"`
	Logging  LoggingConfig            `toml:"logging"`
	Database DatabaseConfig           `toml:"database"`
	CSV      CSVConfig                `toml:"csv"`
	API      APIConfig                `toml:"api"`
	Loads    []loadmanager.LoadConfig `toml:"load"`
}

type SerialConfig struct {
	Device   string `toml:"device"`
	Baudrate uint   `toml:"baudrate"`
	Bytesize uint   `toml:"bytesize"`
	// N, E or O
	Parity   string `toml:"parity"`
	Stopbits uint   `toml:"stopbits"`
}

type QueueConfig struct {
	Capacity int `toml:"capacity"`
}

type LoggingConfig struct {
	Level       string `toml:"level"`
	LogToStdout bool   `toml:"log_to_stdout"`
	Logfile     string `toml:"logfile"`
}

type DatabaseConfig struct {
	Enabled bool `toml:"enabled"`
	// Path overrides the default location under the data dir.
	Path string `toml:"path"`
}

type CSVConfig struct {
	Enabled       bool   `toml:"enabled"`
	Path          string `toml:"path"`
	Prefix        string `toml:"prefix"`
	WriteHeader   bool   `toml:"write_header"`
	MaxLines      int    `toml:"max_lines"`
	MaxAgeSeconds int    `toml:"max_age_seconds"`
}

type APIConfig struct {
	Enabled       bool   `toml:"enabled"`
	ListenAddress string `toml:"listen_address"`
	ListenPort    int    `toml:"listen_port"`
}
