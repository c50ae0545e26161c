package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/vvka-141/sprocc/pkg/sprocc"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

type ConnectionConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Username       string `yaml:"username"`
	Database       string `yaml:"database"`
	TLSMode        string `yaml:"tls_mode,omitempty"`
	AuthMethod     string `yaml:"auth_method,omitempty"`
	AzureTenantID  string `yaml:"azure_tenant_id,omitempty"`
	AzureClientID  string `yaml:"azure_client_id,omitempty"`
	AWSRegion      string `yaml:"aws_region,omitempty"`
	GoogleInstance string `yaml:"google_instance,omitempty"`
}

type ProjectConfig struct {
	Connection   ConnectionConfig       `yaml:"connection"`
	Session      sprocc.SessionSettings `yaml:"session"`
	Placeholders map[string]string      `yaml:"placeholders"`
	Extension    string                 `yaml:"extension"`
	StoreFile    string                 `yaml:"store_file"`
	Timeout      string                 `yaml:"timeout"`
}

const ConfigFileName = "sprocc.yaml"

// DefaultExtension is the source file suffix used when the config leaves
// extension empty.
const DefaultExtension = ".sql"

// DefaultStoreFile is the build record file written next to the sources.
const DefaultStoreFile = "sprocc.lock.yaml"

func Load(sourcePath string) (*ProjectConfig, error) {
	configPath := filepath.Join(sourcePath, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns the configuration used when no sprocc.yaml exists.
func Default() *ProjectConfig {
	cfg := &ProjectConfig{}
	cfg.applyDefaults()
	return cfg
}

func (c *ProjectConfig) applyDefaults() {
	if c.Extension == "" {
		c.Extension = DefaultExtension
	}
	if c.StoreFile == "" {
		c.StoreFile = DefaultStoreFile
	}
	if c.Placeholders == nil {
		c.Placeholders = make(map[string]string)
	}
}
