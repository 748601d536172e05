package config

import (
	"sync"
	"time"
)

type Config struct {
	SNMPPort           uint16
	SNMPVersion        string
	SNMPTimeout        time.Duration
	SNMPRetries        int
	SNMPMaxRepetitions uint32
	// Community is the fallback community when no credential profile is given
	Community string
}

var (
	config *Config
	once   sync.Once
)

func NewConfig(c *Config) {
	once.Do(func() {
		if c != nil {
			config = c
		} else {
			config = &Config{
				SNMPPort:           161,
				SNMPVersion:        "2c",
				SNMPTimeout:        5 * time.Second,
				SNMPRetries:        1,
				SNMPMaxRepetitions: 10,
				Community:          "public",
			}
		}
	})
}

func GetConfig() *Config {
	if config != nil {
		return config
	}

	NewConfig(nil)
	return config
}
