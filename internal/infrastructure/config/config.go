// Package config loads server configuration from the environment, with an
// optional YAML file supplying non-secret defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPort matches the port the container exposes.
const DefaultPort = 3000

// FileName is the optional config file consulted in the working directory.
const FileName = "x-search-mcp.yaml"

// Config holds everything the server needs at startup. Secrets come from
// the environment only; the YAML file may set the rest.
type Config struct {
	Port      int    `yaml:"port"`
	PublicURL string `yaml:"public_url"`
	BirdBin   string `yaml:"bird_bin"`
	XAIModel  string `yaml:"xai_model"`

	AuthToken         string `yaml:"-"`
	XAIAPIKey         string `yaml:"-"`
	OAuthClientID     string `yaml:"-"`
	OAuthClientSecret string `yaml:"-"`
}

// Load reads FileName from dir when present, then applies environment
// overrides. Missing file is not an error.
func Load(dir string) (*Config, error) {
	cfg := &Config{
		Port:    DefaultPort,
		BirdBin: "bird",
	}

	data, err := os.ReadFile(dir + "/" + FileName)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", FileName, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Port = port
	}
	if v := os.Getenv("PUBLIC_URL"); v != "" {
		c.PublicURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("BIRD_BIN"); v != "" {
		c.BirdBin = v
	}
	if v := os.Getenv("XAI_MODEL"); v != "" {
		c.XAIModel = v
	}

	c.AuthToken = os.Getenv("MCP_AUTH_TOKEN")
	c.XAIAPIKey = os.Getenv("XAI_API_KEY")
	c.OAuthClientID = os.Getenv("OAUTH_CLIENT_ID")
	c.OAuthClientSecret = os.Getenv("OAUTH_CLIENT_SECRET")
	return nil
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	return nil
}

// Addr returns the listen address for the configured port.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// OAuthEnabled reports whether the OAuth authorization server should be
// mounted. It needs a registered client and a public URL to advertise.
func (c *Config) OAuthEnabled() bool {
	return c.OAuthClientID != "" && c.OAuthClientSecret != "" && c.PublicURL != ""
}

// AuthConfigured reports whether any way of authorizing /mcp exists.
func (c *Config) AuthConfigured() bool {
	return c.AuthToken != "" || c.OAuthEnabled()
}
