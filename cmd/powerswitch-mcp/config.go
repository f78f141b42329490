package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pdu-tools/powerswitch-mcp/pkg/powerswitch"
	"gopkg.in/yaml.v3"
)

const defaultAddr = ":5000"

// config is the optional YAML configuration file. Everything in it can also
// be supplied through the environment; the environment wins on conflict. The
// device password is never read from the file.
type config struct {
	// Addr is the HTTP bind address, e.g. ":5000" or "0.0.0.0:8000".
	Addr string `yaml:"addr"`
	// AutoPing controls whether the watchdog tools are served. Defaults to
	// true when unset.
	AutoPing *bool `yaml:"autoping"`

	Device struct {
		Host     string `yaml:"host"`
		Username string `yaml:"username"`
		UseHTTPS bool   `yaml:"use_https"`
	} `yaml:"device"`
}

// loadConfig reads path, or returns a zero config when path is empty.
func loadConfig(path string) (config, error) {
	var cfg config
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// deviceClient builds the device client from the environment, falling back
// to file values for everything except the password. The returned host is
// for logging.
func (c config) deviceClient() (*powerswitch.Client, string, error) {
	host := firstNonEmpty(os.Getenv(powerswitch.EnvHost), c.Device.Host)
	password := os.Getenv(powerswitch.EnvPassword)
	if host == "" || password == "" {
		return nil, "", fmt.Errorf("%s and %s environment variables must be set",
			powerswitch.EnvHost, powerswitch.EnvPassword)
	}

	useHTTPS := c.Device.UseHTTPS
	if v := os.Getenv(powerswitch.EnvUseHTTPS); v != "" {
		useHTTPS = strings.EqualFold(v, "true")
	}

	client, err := powerswitch.New(powerswitch.Config{
		Host:     host,
		Username: firstNonEmpty(os.Getenv(powerswitch.EnvUsername), c.Device.Username),
		Password: password,
		UseHTTPS: useHTTPS,
	})
	if err != nil {
		return nil, "", err
	}
	return client, host, nil
}

// httpAddr resolves the HTTP bind address: explicit flag, then the PORT
// environment variable, then the config file, then the default.
func (c config) httpAddr(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if port := os.Getenv("PORT"); port != "" {
		return ":" + port
	}
	return firstNonEmpty(c.Addr, defaultAddr)
}

func (c config) autoPingEnabled() bool {
	return c.AutoPing == nil || *c.AutoPing
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
