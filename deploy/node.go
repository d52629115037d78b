package deploy

import (
	"fmt"
	"strings"

	"github.com/NeuroPSI-Neuroinformatics/cloud-deploy/log"
	"github.com/NeuroPSI-Neuroinformatics/cloud-deploy/provider"
	"github.com/NeuroPSI-Neuroinformatics/cloud-deploy/remote"

	"github.com/docker/distribution/reference"
	"github.com/opencontainers/go-digest"
	"github.com/pkg/errors"
)

// Node is one compute instance viewed as a docker host.
type Node struct {
	Instance provider.Instance

	fleet *Fleet
}

func (n *Node) Name() string {
	return n.Instance.Name()
}

func (n *Node) IPAddress() string {
	return n.Instance.IPAddress()
}

// AsRow renders the node for tabular display.
func (n *Node) AsRow() []string {
	return []string{
		n.Instance.Name(),
		n.Instance.IPAddress(),
		n.Instance.Status(),
		n.Instance.CreatedAt(),
		formatMemory(n.Instance.MemoryMB()),
		n.Instance.Location(),
		n.Instance.Type(),
		n.Instance.Provider(),
	}
}

// docker runs a docker subcommand on the node, with sudo when the instance
// needs it, and returns the captured output.
func (n *Node) docker(args ...string) (string, error) {
	cmd := shellCommand(append([]string{"docker"}, args...)...)
	if n.Instance.UseSudo() {
		cmd = "sudo " + cmd
	}
	return n.fleet.Exec.Execute(n.Instance.IPAddress(), n.Instance.RemoteUsername(), cmd)
}

// Run executes an arbitrary command on the node and returns the captured
// output. Arguments are quoted before they reach the remote shell.
func (n *Node) Run(args ...string) (string, error) {
	return n.fleet.Exec.Execute(n.Instance.IPAddress(), n.Instance.RemoteUsername(), shellCommand(args...))
}

// RunIn is Run with a working directory on the node.
func (n *Node) RunIn(dir string, args ...string) (string, error) {
	cmd := "cd " + quoteArg(dir) + " && " + shellCommand(args...)
	return n.fleet.Exec.Execute(n.Instance.IPAddress(), n.Instance.RemoteUsername(), cmd)
}

// Images returns the raw `docker images` listing.
func (n *Node) Images() (string, error) {
	return n.docker("images")
}

// Pull logs in to the registry and pulls the image onto this node. Success
// is recognized from the pull output; anything else surfaces the raw remote
// output as the error.
func (n *Node) Pull(image string) error {
	if _, err := reference.ParseNormalizedNamed(image); err != nil {
		return errors.Wrapf(err, "invalid image reference %q", image)
	}

	log.Infof("Pulling %s on %s", image, n.Name())
	password, err := n.fleet.DockerPassword()
	if err != nil {
		return err
	}
	if _, err := n.docker("login", "--username="+n.fleet.DockerUser, "--password="+password); err != nil {
		return err
	}
	log.Infof("Logged into hub.docker.com")

	out, err := n.docker("pull", image)
	if err != nil {
		return err
	}
	if !strings.Contains(out, "Downloaded newer image") && !strings.Contains(out, "Image is up to date") {
		return errors.Errorf("pull of %s did not succeed: %s", image, out)
	}
	if dgst := pullDigest(out); dgst != "" {
		log.Debugf("Pulled %s (%s)", image, dgst)
	}
	return nil
}

// pullDigest extracts the image digest from `docker pull` output, when the
// daemon reports one.
func pullDigest(out string) digest.Digest {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "Digest: ") {
			continue
		}
		dgst, err := digest.Parse(strings.TrimPrefix(line, "Digest: "))
		if err != nil {
			log.Warningf("unparseable digest in pull output: %v", err)
			return ""
		}
		return dgst
	}
	return ""
}

// GetService inspects a single container and returns it as a Service.
func (n *Node) GetService(id string) (*Service, error) {
	out, err := n.docker("inspect", id)
	if err != nil {
		return nil, err
	}
	return ServiceFromInspection([]byte(out), n)
}

// Services returns the services on this node. With update set, or when the
// cache has no entry for this node, the node is queried live and the cache
// entry replaced; otherwise the cached records are returned verbatim,
// however stale. A node that cannot be reached during a live query counts
// as running no services.
func (n *Node) Services(showAll, update bool) ([]*Service, error) {
	if !update && hasCacheEntry(n.fleet.CacheFile, n.Name()) {
		records, err := loadCachedServices(n.fleet.CacheFile, n.Name())
		if err != nil {
			return nil, err
		}
		services := make([]*Service, 0, len(records))
		for _, record := range records {
			services = append(services, serviceFromRecord(record, n))
		}
		return services, nil
	}

	args := []string{"ps", "-q"}
	if showAll {
		args = append(args, "-a")
	}
	out, err := n.docker(args...)
	if err != nil {
		var connErr *remote.ConnectionError
		if !errors.As(err, &connErr) {
			return nil, err
		}
		log.Warning(err)
		out = ""
	}

	var services []*Service
	for _, id := range strings.Fields(out) {
		service, err := n.GetService(id)
		if err != nil {
			return nil, err
		}
		services = append(services, service)
	}

	records := make([]ServiceRecord, 0, len(services))
	for _, service := range services {
		records = append(records, service.Record())
	}
	if err := saveCachedServices(n.fleet.CacheFile, n.Name(), records); err != nil {
		return nil, err
	}
	return services, nil
}

// TerminateService removes the container, running or not. The output is
// returned but not parsed.
func (n *Node) TerminateService(id string) (string, error) {
	return n.docker("rm", "-f", id)
}

// RenameService gives the container a new name, freeing the old one.
func (n *Node) RenameService(oldName, newName string) error {
	_, err := n.docker("rename", oldName, newName)
	return err
}

func formatMemory(mb int) string {
	if mb == 0 {
		return ""
	}
	return fmt.Sprintf("%d MB", mb)
}
