package deploy

import (
	"net"
	"sync"

	"github.com/NeuroPSI-Neuroinformatics/cloud-deploy/log"
)

// The reverse lookup table maps resolved IP address back to the configured
// URL served from it. It is built once per process and never invalidated.
var (
	reverseLookupOnce sync.Once
	reverseLookup     map[string]string

	lookupHost = net.LookupHost
)

// URL resolves the node's IP address to the configured URL served from it,
// or "" when no configured URL resolves there.
func (s *Service) URL() string {
	reverseLookupOnce.Do(func() {
		reverseLookup = buildReverseLookup(s.node.fleet.URLs)
	})
	return reverseLookup[s.node.IPAddress()]
}

func buildReverseLookup(urls []string) map[string]string {
	table := make(map[string]string, len(urls))
	for _, url := range urls {
		addrs, err := lookupHost(url)
		if err != nil {
			log.Debugf("cannot resolve %s: %v", url, err)
			continue
		}
		for _, addr := range addrs {
			table[addr] = url
		}
	}
	return table
}
