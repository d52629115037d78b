package main

import (
	"github.com/NeuroPSI-Neuroinformatics/cloud-deploy/config"
	"github.com/NeuroPSI-Neuroinformatics/cloud-deploy/deploy"
	"github.com/NeuroPSI-Neuroinformatics/cloud-deploy/log"
	"github.com/NeuroPSI-Neuroinformatics/cloud-deploy/params"
	"github.com/NeuroPSI-Neuroinformatics/cloud-deploy/provider"
	"github.com/NeuroPSI-Neuroinformatics/cloud-deploy/remote"
)

// newFleet builds the provider registry and SSH executor for the current
// configuration. Every command constructs its own fleet; there are no
// global clients.
func newFleet() (*deploy.Fleet, *config.Config, error) {
	p := params.Get()
	cfg, err := config.Load(p.ConfigFile)
	if err != nil {
		return nil, nil, err
	}

	token, err := provider.DigitalOceanToken()
	if err != nil {
		return nil, nil, err
	}
	providers := []provider.Provider{
		provider.NewDigitalOcean(token, cfg.DigitalOcean, cfg.SSHKeys),
	}
	if cfg.OpenStack.AuthURL != "" {
		providers = append(providers, provider.NewOpenStack(cfg.OpenStack, nil))
	}
	if cfg.AWS.Region != "" {
		aws, err := provider.NewAWS(cfg.AWS)
		if err != nil {
			log.Warning(err)
		} else {
			providers = append(providers, aws)
		}
	}

	fleet := &deploy.Fleet{
		Providers:  provider.NewRegistry(providers...),
		Exec:       remote.NewExecutor(p.SSHKeyDir),
		CacheFile:  p.CacheFile,
		DockerUser: cfg.DockerUser,
		DockerPassword: func() (string, error) {
			return provider.DockerPassword(cfg.DockerUser)
		},
		URLs: cfg.URLs,
	}
	return fleet, cfg, nil
}

// serviceName appends the colour (environment) suffix when one is given,
// e.g. "nmpi" + "blue" -> "nmpi-blue".
func serviceName(name, colour string) string {
	if colour == "" {
		return name
	}
	return name + "-" + colour
}
