package config

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config is the root of the ironcloak.toml configuration file. Every
// section has defaults, so a missing file or a file with only some keys
// set is valid.
type Config struct {
	Proxy   Proxy   `toml:"proxy"`
	Tor     Tor     `toml:"tor"`
	Logging Logging `toml:"logging"`
}

// Proxy configures the local SOCKS5 listener.
type Proxy struct {
	ListenAddr string `toml:"listen_addr"`
	ListenPort uint16 `toml:"listen_port"`

	// DNSRejectIP rejects CONNECT requests whose destination is an IP
	// literal, forcing clients to send hostnames so name resolution
	// happens inside the Tor network instead of leaking locally.
	DNSRejectIP bool `toml:"dns_reject_ip"`
}

// Tor configures the embedded Tor client. Cache and state live under
// DataDir.
type Tor struct {
	DataDir string `toml:"data_dir"`
}

// Logging configures level, output directory, and message language.
type Logging struct {
	Level  string `toml:"level"`
	LogDir string `toml:"log_dir"`

	// Language selects the translation catalog: "en", "fr", or "es".
	// Empty means English.
	Language string `toml:"language"`
}

func Default() Config {
	return Config{
		Proxy: Proxy{
			ListenAddr:  "127.0.0.1",
			ListenPort:  9150,
			DNSRejectIP: true,
		},
		Tor: Tor{
			DataDir: "./data/tor",
		},
		Logging: Logging{
			Level:  "info",
			LogDir: "./logs",
		},
	}
}

// Load reads the TOML config at path. A missing file is not an error:
// defaults are returned and the caller may warn. Keys absent from the
// file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config back out as TOML. Used by a presentation layer
// to persist staged changes (pending port, language) for the next start.
func (c Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("serialize config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// ListenAddress returns the proxy bind address as host:port.
func (c Config) ListenAddress() string {
	return net.JoinHostPort(c.Proxy.ListenAddr, strconv.Itoa(int(c.Proxy.ListenPort)))
}
