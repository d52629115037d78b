// Package config loads the deployment configuration file, by default
// ~/.cld-config.yml, or ./config.yml when present in the working directory.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DockerUser string   `yaml:"DOCKER_USER"`
	SSHKeys    []string `yaml:"SSH_KEYS"`
	URLs       []string `yaml:"URLS"`

	DigitalOcean DigitalOceanConfig `yaml:"DIGITAL_OCEAN"`
	OpenStack    OpenStackConfig    `yaml:"OPENSTACK"`
	AWS          AWSConfig          `yaml:"AWS"`
}

type DigitalOceanConfig struct {
	Region string `yaml:"region"`
	Size   string `yaml:"size"`
	Image  string `yaml:"image"`
}

type OpenStackConfig struct {
	AuthURL    string `yaml:"auth_url"`
	ComputeURL string `yaml:"compute_url"`
	Username   string `yaml:"username"`
	Project    string `yaml:"project"`
	Domain     string `yaml:"domain"`
	Network    string `yaml:"network"`
	Location   string `yaml:"location"`
}

type AWSConfig struct {
	Region string `yaml:"region"`
}

// Load reads the configuration from path, falling back to ./config.yml when
// it exists. A missing file is a fatal configuration error for every command
// that talks to a provider or a node.
func Load(path string) (*Config, error) {
	if _, err := os.Stat("config.yml"); err == nil {
		path = "config.yml"
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read configuration file %s", path)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, errors.Wrapf(err, "cannot parse configuration file %s", path)
	}

	if cfg.OpenStack.Domain == "" {
		cfg.OpenStack.Domain = "Default"
	}
	return cfg, nil
}
