package config

import (
	"fmt"
	"net"
	"strconv"
)

type Config struct {
	Bind        string
	Port        int
	BaseURL     string
	OpenAIKey   string
	OpenAIModel string
	Verbose     bool
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}
	return nil
}

func (c *Config) Addr() string {
	return net.JoinHostPort(c.Bind, strconv.Itoa(c.Port))
}

// ResolvedBaseURL is the externally visible URL used in join links; defaults
// to the listen address when not set explicitly.
func (c *Config) ResolvedBaseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return "http://" + c.Addr()
}
