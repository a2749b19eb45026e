package utils

import (
	"os"
	"strconv"
	"time"
)

// Getenv returns the value of the environment variable, or the fallback when
// it is unset or empty.
func Getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// GetenvBool reads a boolean flag. Unparseable values fall back rather than
// silently enabling anything.
func GetenvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// GetenvSeconds reads a duration given as a whole number of seconds. Zero,
// negative and unparseable values fall back.
func GetenvSeconds(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	secs, err := strconv.Atoi(value)
	if err != nil || secs <= 0 {
		return fallback
	}
	return time.Duration(secs) * time.Second
}
