// Package deploy implements the node and service lifecycle model: nodes are
// compute instances reachable over SSH, services are docker containers
// running on them, and a local cache file remembers the services last seen
// on each node.
package deploy

import (
	"strings"

	"github.com/NeuroPSI-Neuroinformatics/cloud-deploy/provider"

	"github.com/pkg/errors"
)

var (
	ErrNodeNotFound    = errors.New("no such node")
	ErrServiceNotFound = errors.New("no such service")
)

// Executor runs a single shell command on a remote host.
type Executor interface {
	Execute(host, user, cmd string) (string, error)
}

// Fleet ties together the provider registry, the SSH executor and the local
// configuration. It is constructed once per command and passed down.
type Fleet struct {
	Providers      *provider.Registry
	Exec           Executor
	CacheFile      string
	DockerUser     string
	DockerPassword func() (string, error)
	URLs           []string
}

// Nodes queries every configured provider, sequentially. The result is not
// cached; each call is a fresh round trip.
func (f *Fleet) Nodes() ([]*Node, error) {
	instances, err := f.Providers.List()
	if err != nil {
		return nil, err
	}
	nodes := make([]*Node, 0, len(instances))
	for _, inst := range instances {
		nodes = append(nodes, &Node{Instance: inst, fleet: f})
	}
	return nodes, nil
}

// Node finds a node by exact name.
func (f *Fleet) Node(name string) (*Node, error) {
	nodes, err := f.Nodes()
	if err != nil {
		return nil, err
	}
	for _, node := range nodes {
		if node.Name() == name {
			return node, nil
		}
	}
	return nil, errors.Wrap(ErrNodeNotFound, name)
}

// Services lists the services on every node, one node at a time. Nodes run
// on Docker Cloud are skipped; their services cannot be listed this way.
func (f *Fleet) Services(showAll, update bool) ([]*Service, error) {
	nodes, err := f.Nodes()
	if err != nil {
		return nil, err
	}
	var services []*Service
	for _, node := range nodes {
		if strings.Contains(node.Name(), "dockerapp.io") {
			continue
		}
		nodeServices, err := node.Services(showAll, update)
		if err != nil {
			return nil, err
		}
		services = append(services, nodeServices...)
	}
	return services, nil
}

// FindService returns the first service with the given name on any node.
func (f *Fleet) FindService(name string, update bool) (*Service, error) {
	services, err := f.Services(false, update)
	if err != nil {
		return nil, err
	}
	for _, service := range services {
		if service.Name == name {
			return service, nil
		}
	}
	return nil, errors.Wrap(ErrServiceNotFound, name)
}
