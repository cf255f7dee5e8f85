package pathing

import (
	"log"
	"os"
	"path/filepath"
)

// Ensure directories exist on startup
func init() {
	dirs := []string{
		GetDataDir(),
	}

	for _, dir := range dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			err := os.MkdirAll(dir, 0755)
			if err != nil {
				log.Fatal(err)
			}
		}
	}
}

func GetMeterDbPath() string {
	return filepath.Join(GetDataDir(), "smartmeter.db")
}

func GetDataDir() string {
	return "/var/lib/smartmeter"
}

func GetConfigDir() string {
	return "/etc/smartmeter"
}
