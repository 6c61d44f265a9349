package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// ServerEnv holds the settings of the HTTP service, sourced from the
// environment with an optional .env file.
type ServerEnv struct {
	// Addr is the listen address, from DIFFEVO_ADDR.
	Addr string

	// DataDir is the root directory for study records, from DIFFEVO_DATA_DIR.
	DataDir string
}

// LoadServerEnv reads server settings from the environment. A .env file in
// the working directory is loaded first when present; real environment
// variables take precedence over it.
func LoadServerEnv() ServerEnv {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Debug("No .env file loaded", "error", err)
	}

	env := ServerEnv{
		Addr:    ":8080",
		DataDir: "./data",
	}
	if v := os.Getenv("DIFFEVO_ADDR"); v != "" {
		env.Addr = v
	}
	if v := os.Getenv("DIFFEVO_DATA_DIR"); v != "" {
		env.DataDir = v
	}
	return env
}
