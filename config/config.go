// Package config defines the application configuration structures.
//
// Separated from cmd so db, ssh, ai and tool can depend on config
// without importing Cobra.
package config

import "strconv"

// Config holds the database connection settings.
type Config struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password,omitempty"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`

	SSH SSHConfig `yaml:"ssh,omitempty"`
}

// SSHConfig holds SSH tunnel settings.
type SSHConfig struct {
	Enabled       bool   `yaml:"enabled,omitempty"`
	Host          string `yaml:"host,omitempty"`
	Port          int    `yaml:"port,omitempty"`
	User          string `yaml:"user,omitempty"`
	KeyPath       string `yaml:"key_path,omitempty"`
	KeyPassphrase string `yaml:"key_passphrase,omitempty"`
	// KnownHosts is an OpenSSH known_hosts file; empty skips host key checks.
	KnownHosts string `yaml:"known_hosts,omitempty"`
}

// DefaultConfig returns the connection used when nothing else is configured.
func DefaultConfig() Config {
	return Config{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "postgres",
		Database: "dvdrental",
		SSLMode:  "disable",
		SSH: SSHConfig{
			Port: 22,
		},
	}
}

// DSN builds a pgx-compatible connection string.
// When an SSH tunnel is active, the caller overrides Host/Port
// with the local tunnel endpoint.
func (c Config) DSN() string {
	return "host=" + c.Host +
		" port=" + strconv.Itoa(c.Port) +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Database +
		" sslmode=" + c.SSLMode
}
