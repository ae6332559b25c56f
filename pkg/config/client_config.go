package config

import (
	"os"
	"strconv"
)

type ClientConfig struct {
	MaxDialRetries int
	BindingsFile   string
	LogLevel       string
}

func LoadForClient() (*ClientConfig, error) {
	maxDialRetriesStr, maxDialRetriesExists := os.LookupEnv("MAX_DIAL_RETRIES")
	if !maxDialRetriesExists {
		maxDialRetriesStr = "0"
	}
	maxDialRetries, err := strconv.Atoi(
		maxDialRetriesStr,
	)
	if err != nil {
		return nil, err
	}

	bindingsFile, bindingsFileExists := os.LookupEnv("BINDINGS_FILE")
	if !bindingsFileExists {
		bindingsFile = "bindings.toml"
	}

	logLevel, logLevelExists := os.LookupEnv("LOG_LEVEL")
	if !logLevelExists {
		logLevel = "info"
	}

	return &ClientConfig{
		MaxDialRetries: maxDialRetries,
		BindingsFile:   bindingsFile,
		LogLevel:       logLevel,
	}, nil
}
