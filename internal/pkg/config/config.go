// Package config provides runtime configuration behind a small interface.
//
// The production implementation is backed by Viper with hot reload; tests use
// the map-backed Static implementation.
package config

import (
	"io"
	"time"
)

// Config defines the getters the application needs. Implementations return
// the zero value when a key is absent or not convertible.
type Config interface {
	io.Closer

	// GetString retrieves the value for key as a string.
	GetString(key string) string
	// GetInt retrieves the value for key as an int.
	GetInt(key string) int
	// GetInt32 retrieves the value for key as an int32.
	GetInt32(key string) int32
	// GetBool retrieves the value for key as a bool.
	GetBool(key string) bool
	// GetFloat64 retrieves the value for key as a float64.
	GetFloat64(key string) float64
	// GetSecond retrieves the value for key as a duration in seconds.
	GetSecond(key string) time.Duration
	// GetMinute retrieves the value for key as a duration in minutes.
	GetMinute(key string) time.Duration
	// GetHour retrieves the value for key as a duration in hours.
	GetHour(key string) time.Duration
	// GetArray retrieves the value for key split on commas.
	GetArray(key string) []string
}
