// Package config loads CLI configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds everything the CLIs need to talk to a Stacks network.
type Config struct {
	APIURL      string
	WSURL       string
	Network     string // mainnet or testnet
	PostgresDSN string // empty means in-memory metadata cache
	LogLevel    string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		APIURL:      getEnv("STACKS_API_URL", "https://stacks-node-api.mainnet.stacks.co"),
		WSURL:       getEnv("STACKS_WS_URL", "wss://stacks-node-api.mainnet.stacks.co"),
		Network:     getEnv("NETWORK", "mainnet"),
		PostgresDSN: os.Getenv("POSTGRES_DSN"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
