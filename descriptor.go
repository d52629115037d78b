package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Descriptor is the deployment description of one service, read from
// deployment/<service>.yml plus deployment/<service>-secrets.yml. Ports map
// container port to host port; env names the environment variables to
// forward from the caller's environment; secrets are merged into the
// service environment as-is.
type Descriptor struct {
	Image      string            `yaml:"image"`
	Dockerfile string            `yaml:"dockerfile"`
	Ports      map[string]string `yaml:"ports"`
	Env        []string          `yaml:"env"`
	Volumes    []string          `yaml:"volumes"`
	Secrets    map[string]string `yaml:"secrets"`
}

func loadDescriptor(service string) (*Descriptor, error) {
	raw, err := os.ReadFile(fmt.Sprintf("deployment/%s.yml", service))
	if err != nil {
		return nil, errors.Wrapf(err, "no deployment description for %s", service)
	}
	descriptor := &Descriptor{}
	if err := yaml.Unmarshal(raw, descriptor); err != nil {
		return nil, errors.Wrapf(err, "cannot parse deployment description for %s", service)
	}

	secretsFile := fmt.Sprintf("deployment/%s-secrets.yml", service)
	if raw, err := os.ReadFile(secretsFile); err == nil {
		if err := yaml.Unmarshal(raw, descriptor); err != nil {
			return nil, errors.Wrapf(err, "cannot parse %s", secretsFile)
		}
	}
	return descriptor, nil
}

// ResolveEnv collects the service environment: each declared variable is
// taken from the local environment (missing ones are a configuration
// error), then the secrets are layered on top.
func (d *Descriptor) ResolveEnv() (map[string]string, error) {
	env := map[string]string{}
	for _, name := range d.Env {
		value, ok := os.LookupEnv(name)
		if !ok {
			return nil, errors.Errorf("environment variable %q is not defined", name)
		}
		env[name] = value
	}
	for name, value := range d.Secrets {
		env[name] = value
	}
	return env, nil
}

// TaggedImage returns the image reference for a colour, defaulting to the
// latest tag.
func (d *Descriptor) TaggedImage(colour string) string {
	if colour == "" {
		return d.Image + ":latest"
	}
	return d.Image + ":" + colour
}
