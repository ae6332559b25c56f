package config

import (
	"os"
	"strconv"
)

type Config struct {
	ChannelIdleTimeExpiry int
	LogLevel              string
}

func Load() (*Config, error) {
	expiryStr, expiryExists := os.LookupEnv("CHANNEL_IDLE_TIME_EXPIRY")
	if !expiryExists {
		expiryStr = "30"
	}
	channelIdleTimeExpiry, err := strconv.Atoi(
		expiryStr,
	)
	if err != nil {
		return nil, err
	}

	logLevel, logLevelExists := os.LookupEnv("LOG_LEVEL")
	if !logLevelExists {
		logLevel = "info"
	}

	return &Config{
		ChannelIdleTimeExpiry: channelIdleTimeExpiry,
		LogLevel:              logLevel,
	}, nil
}
