// Package config handles service configuration loading and validation.
package config

import "fmt"

// Config is the full service configuration, loaded from a YAML file with
// environment overrides for secrets.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	NocoDB   NocoDBConfig   `mapstructure:"nocodb" yaml:"nocodb"`
	Grafana  GrafanaConfig  `mapstructure:"grafana" yaml:"grafana"`
	Auth     AuthConfig     `mapstructure:"auth" yaml:"auth"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// DatabaseConfig configures the local Postgres store.
type DatabaseConfig struct {
	URL            string `mapstructure:"url" yaml:"url"`
	MigrationsPath string `mapstructure:"migrations_path" yaml:"migrations_path"`
}

// NocoDBConfig configures the table-service client.
type NocoDBConfig struct {
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	Token   string `mapstructure:"token" yaml:"token,omitempty"`
}

// GrafanaConfig configures the dashboard-service client.
type GrafanaConfig struct {
	BaseURL       string `mapstructure:"base_url" yaml:"base_url"`
	Token         string `mapstructure:"token" yaml:"token,omitempty"`
	DatasourceUID string `mapstructure:"datasource_uid" yaml:"datasource_uid"`
}

// AuthConfig configures the identity middleware. An empty secret disables
// token validation and trusts identity headers (development only).
type AuthConfig struct {
	Secret string `mapstructure:"secret" yaml:"secret,omitempty"`
}

// Validate checks that all required settings are present.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("database.url is required")
	}
	if c.NocoDB.BaseURL == "" {
		return fmt.Errorf("nocodb.base_url is required")
	}
	if c.Grafana.BaseURL == "" {
		return fmt.Errorf("grafana.base_url is required")
	}
	if c.Grafana.DatasourceUID == "" {
		return fmt.Errorf("grafana.datasource_uid is required")
	}
	return nil
}
