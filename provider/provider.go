// Package provider gives a uniform view of the cloud accounts that can host
// nodes: DigitalOcean droplets, OpenStack (Nova) VMs and EC2 instances.
package provider

// Instance is one compute instance as reported by a provider. Instances are
// an in-memory view of the provider's records; they are never persisted.
type Instance interface {
	Name() string
	IPAddress() string
	Status() string
	MemoryMB() int
	Location() string
	Type() string
	CreatedAt() string
	Provider() string

	// How to log in over SSH, and whether docker needs sudo there.
	RemoteUsername() string
	UseSudo() bool

	Shutdown() error
	Destroy() error
}

// Provider lists the instances visible to one set of credentials.
type Provider interface {
	Name() string
	List() ([]Instance, error)
}

// Registry bundles the configured providers. It is constructed once at the
// top level and passed down; there is no global client state.
type Registry struct {
	providers []Provider
}

func NewRegistry(providers ...Provider) *Registry {
	return &Registry{providers: providers}
}

// List queries every provider in order and concatenates the results. The
// query is live and repeatable; nothing is cached at this layer.
func (r *Registry) List() ([]Instance, error) {
	var all []Instance
	for _, p := range r.providers {
		instances, err := p.List()
		if err != nil {
			return nil, err
		}
		all = append(all, instances...)
	}
	return all, nil
}
