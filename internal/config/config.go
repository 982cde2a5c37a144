package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

type ConnectionConfig struct {
	Server                 string         `yaml:"server"`
	Database               string         `yaml:"database"`
	AuthMethod             string         `yaml:"auth_method,omitempty"`
	Username               string         `yaml:"username,omitempty"`
	AppName                string         `yaml:"app_name,omitempty"`
	Encrypt                string         `yaml:"encrypt,omitempty"`
	TrustServerCertificate bool           `yaml:"trust_server_certificate,omitempty"`
	ConnectTimeout         string         `yaml:"connect_timeout,omitempty"`
	AzureTenantID          string         `yaml:"azure_tenant_id,omitempty"`
	AzureClientID          string         `yaml:"azure_client_id,omitempty"`
	CloudSQLInstance       string         `yaml:"cloudsql_instance,omitempty"`
	Kerberos               KerberosConfig `yaml:"kerberos,omitempty"`
}

type KerberosConfig struct {
	ConfigFile    string `yaml:"config_file,omitempty"`
	KeytabFile    string `yaml:"keytab_file,omitempty"`
	CredCacheFile string `yaml:"credcache_file,omitempty"`
	Realm         string `yaml:"realm,omitempty"`
}

type LoadConfig struct {
	Schema          string `yaml:"schema,omitempty"`
	ColumnType      string `yaml:"column_type,omitempty"`
	FieldTerminator string `yaml:"field_terminator,omitempty"`
	RowTerminator   string `yaml:"row_terminator,omitempty"`
	FirstRow        int    `yaml:"first_row,omitempty"`
	ServerDirectory string `yaml:"server_directory,omitempty"`
}

type ProjectConfig struct {
	Connection ConnectionConfig `yaml:"connection"`
	Source     string           `yaml:"source,omitempty"`
	Table      string           `yaml:"table,omitempty"`
	Load       LoadConfig       `yaml:"load"`
	Timeout    string           `yaml:"timeout,omitempty"`
}

const ConfigFileName = "csvstage.yaml"

// Load reads csvstage.yaml from dir.
func Load(dir string) (*ProjectConfig, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads a config file from an explicit path.
func LoadFile(configPath string) (*ProjectConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", filepath.Base(configPath), err)
	}
	return &cfg, nil
}

// ParseDuration parses an optional duration value; empty yields zero.
func ParseDuration(field, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", field, value, err)
	}
	return d, nil
}
