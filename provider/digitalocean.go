package provider

import (
	"context"
	"time"

	"github.com/NeuroPSI-Neuroinformatics/cloud-deploy/config"
	"github.com/NeuroPSI-Neuroinformatics/cloud-deploy/log"

	"github.com/digitalocean/godo"
	"github.com/pkg/errors"
)

const (
	defaultRegion = "ams2"
	defaultSize   = "s-1vcpu-1gb"
	defaultImage  = "docker"

	createPollInterval = 10 * time.Second
)

type DigitalOcean struct {
	client  *godo.Client
	cfg     config.DigitalOceanConfig
	sshKeys []string
}

func NewDigitalOcean(token string, cfg config.DigitalOceanConfig, sshKeys []string) *DigitalOcean {
	if cfg.Region == "" {
		cfg.Region = defaultRegion
	}
	return &DigitalOcean{
		client:  godo.NewFromToken(token),
		cfg:     cfg,
		sshKeys: sshKeys,
	}
}

func (p *DigitalOcean) Name() string {
	return "Digital Ocean"
}

func (p *DigitalOcean) List() ([]Instance, error) {
	droplets, _, err := p.client.Droplets.List(context.Background(), &godo.ListOptions{PerPage: 200})
	if err != nil {
		return nil, errors.Wrap(err, "cannot list droplets")
	}

	instances := make([]Instance, 0, len(droplets))
	for i := range droplets {
		instances = append(instances, &droplet{client: p.client, d: droplets[i]})
	}
	return instances, nil
}

// Create provisions a new droplet and blocks until it is active. imageSlug
// is the Digital Ocean image ("type" in the CLI, to avoid confusion with
// docker images), sizeSlug the droplet size.
func (p *DigitalOcean) Create(name, imageSlug, sizeSlug string) (Instance, error) {
	if imageSlug == "" {
		imageSlug = p.cfg.Image
	}
	if imageSlug == "" {
		imageSlug = defaultImage
	}
	if sizeSlug == "" {
		sizeSlug = p.cfg.Size
	}
	if sizeSlug == "" {
		sizeSlug = defaultSize
	}

	keys := make([]godo.DropletCreateSSHKey, 0, len(p.sshKeys))
	for _, fingerprint := range p.sshKeys {
		keys = append(keys, godo.DropletCreateSSHKey{Fingerprint: fingerprint})
	}

	req := &godo.DropletCreateRequest{
		Name:    name,
		Region:  p.cfg.Region,
		Size:    sizeSlug,
		Image:   godo.DropletCreateImage{Slug: imageSlug},
		SSHKeys: keys,
	}
	created, _, err := p.client.Droplets.Create(context.Background(), req)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot create droplet %s", name)
	}

	log.Infof("Waiting for droplet %s to become active", name)
	for {
		d, _, err := p.client.Droplets.Get(context.Background(), created.ID)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot query droplet %s", name)
		}
		if d.Status == "active" {
			return &droplet{client: p.client, d: *d}, nil
		}
		time.Sleep(createPollInterval)
	}
}

type droplet struct {
	client *godo.Client
	d      godo.Droplet
}

func (n *droplet) Name() string {
	return n.d.Name
}

func (n *droplet) IPAddress() string {
	addr, err := n.d.PublicIPv4()
	if err != nil {
		return ""
	}
	return addr
}

func (n *droplet) Status() string {
	return n.d.Status
}

func (n *droplet) MemoryMB() int {
	return n.d.Memory
}

func (n *droplet) Location() string {
	if n.d.Region == nil {
		return ""
	}
	return n.d.Region.Name
}

func (n *droplet) Type() string {
	if n.d.Image == nil {
		return ""
	}
	if n.d.Image.Name != "" {
		return n.d.Image.Name
	}
	return n.d.Image.Slug
}

func (n *droplet) CreatedAt() string {
	return n.d.Created
}

func (n *droplet) Provider() string {
	return "Digital Ocean"
}

func (n *droplet) RemoteUsername() string {
	return "root"
}

func (n *droplet) UseSudo() bool {
	return false
}

func (n *droplet) Shutdown() error {
	_, _, err := n.client.DropletActions.Shutdown(context.Background(), n.d.ID)
	return errors.Wrapf(err, "cannot shut down droplet %s", n.d.Name)
}

func (n *droplet) Destroy() error {
	_, err := n.client.Droplets.Delete(context.Background(), n.d.ID)
	return errors.Wrapf(err, "cannot destroy droplet %s", n.d.Name)
}
