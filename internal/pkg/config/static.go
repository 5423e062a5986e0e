package config

import (
	"strconv"
	"strings"
	"time"
)

// Static is a map-backed Config for tests and fixed wiring. Values are
// stored as strings and converted on read, mirroring the Viper behavior of
// returning zero values for absent keys.
type Static map[string]string

// GetString returns the value for key as a string.
func (s Static) GetString(key string) string {
	return s[key]
}

// GetInt returns the value for key as an int.
func (s Static) GetInt(key string) int {
	n, _ := strconv.Atoi(s[key])
	return n
}

// GetInt32 returns the value for key as an int32.
func (s Static) GetInt32(key string) int32 {
	n, _ := strconv.ParseInt(s[key], 10, 32)
	return int32(n)
}

// GetBool returns the value for key as a bool.
func (s Static) GetBool(key string) bool {
	b, _ := strconv.ParseBool(s[key])
	return b
}

// GetFloat64 returns the value for key as a float64.
func (s Static) GetFloat64(key string) float64 {
	f, _ := strconv.ParseFloat(s[key], 64)
	return f
}

// GetSecond returns the value for key as seconds.
func (s Static) GetSecond(key string) time.Duration {
	return time.Duration(s.GetInt(key)) * time.Second
}

// GetMinute returns the value for key as minutes.
func (s Static) GetMinute(key string) time.Duration {
	return time.Duration(s.GetInt(key)) * time.Minute
}

// GetHour returns the value for key as hours.
func (s Static) GetHour(key string) time.Duration {
	return time.Duration(s.GetInt(key)) * time.Hour
}

// GetArray returns the value for key split by commas.
func (s Static) GetArray(key string) []string {
	raw := s[key]
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

// Close implements io.Closer for interface completeness.
func (s Static) Close() error {
	return nil
}
