package deploy

import (
	"encoding/json"
	"os"
	"sort"
	"strings"

	"github.com/NeuroPSI-Neuroinformatics/cloud-deploy/log"

	"github.com/docker/docker/api/types"
	"github.com/pkg/errors"
)

// Service is one container and its runtime metadata. It comes either from a
// live `docker inspect` (authoritative) or from the cache (stale). The ID is
// empty until the service has been launched or observed live.
type Service struct {
	Name   string
	Image  string
	Status string
	ID     string

	// Ports maps container port (e.g. "443/tcp") to host port; an empty
	// host port means the port is exposed but not bound.
	Ports map[string]string
	// Env values may themselves contain "=".
	Env map[string]string
	// Volumes are host paths bind-mounted to the same path in the
	// container.
	Volumes []string

	node *Node
}

// NewService describes a service that has not been launched yet.
func NewService(name, image string, node *Node, ports, env map[string]string, volumes []string) *Service {
	log.Debugf("Instantiated service %q from %q", name, image)
	return &Service{
		Name:    name,
		Image:   image,
		Ports:   ports,
		Env:     env,
		Volumes: volumes,
		node:    node,
	}
}

func (s *Service) Node() *Node {
	return s.node
}

// ServiceFromInspection builds a Service from a `docker inspect` payload, a
// single-element JSON list.
func ServiceFromInspection(payload []byte, node *Node) (*Service, error) {
	var inspected []types.ContainerJSON
	if err := json.Unmarshal(payload, &inspected); err != nil {
		return nil, errors.Wrapf(err, "unexpected inspect payload: %s", payload)
	}
	if len(inspected) != 1 {
		return nil, errors.Errorf("expected one inspect record, got %d: %s", len(inspected), payload)
	}
	data := inspected[0]

	ports := map[string]string{}
	if data.NetworkSettings != nil {
		for port, bindings := range data.NetworkSettings.Ports {
			// a null or empty binding list means the port is not
			// published on the host
			if len(bindings) == 0 {
				continue
			}
			ports[string(port)] = bindings[0].HostPort
		}
	}

	env := map[string]string{}
	if data.Config != nil {
		for _, item := range data.Config.Env {
			parts := strings.SplitN(item, "=", 2)
			if len(parts) == 2 {
				env[parts[0]] = parts[1]
			} else {
				env[parts[0]] = ""
			}
		}
	}

	var volumes []string
	if data.HostConfig != nil {
		for _, bind := range data.HostConfig.Binds {
			parts := strings.Split(bind, ":")
			if len(parts) > 1 && parts[0] != parts[1] {
				log.Warningf("Non-symmetric path names for volume %s", bind)
			}
			volumes = append(volumes, parts[0])
		}
	}

	image := ""
	if data.Config != nil {
		image = data.Config.Image
	}
	service := NewService(strings.TrimPrefix(data.Name, "/"), image, node, ports, env, volumes)
	service.ID = data.ID
	if data.State != nil {
		service.Status = data.State.Status
	}
	return service, nil
}

// Record flattens the service into its persisted form.
func (s *Service) Record() ServiceRecord {
	return ServiceRecord{
		Name:    s.Name,
		Image:   s.Image,
		Status:  s.Status,
		ID:      s.ID,
		Ports:   s.Ports,
		Env:     s.Env,
		Volumes: s.Volumes,
	}
}

func serviceFromRecord(record ServiceRecord, node *Node) *Service {
	return &Service{
		Name:    record.Name,
		Image:   record.Image,
		Status:  record.Status,
		ID:      record.ID,
		Ports:   record.Ports,
		Env:     record.Env,
		Volumes: record.Volumes,
		node:    node,
	}
}

// Launch pulls the image and starts a new container for the service, then
// refreshes the status from the node.
func (s *Service) Launch() error {
	if err := s.node.Pull(s.Image); err != nil {
		return err
	}

	args := []string{"run", "-d", "--name=" + s.Name}
	for _, port := range sortedKeys(s.Ports) {
		host := s.Ports[port]
		if host == "" {
			args = append(args, "-p", strings.SplitN(port, "/", 2)[0])
		} else {
			args = append(args, "-p", host+":"+strings.SplitN(port, "/", 2)[0])
		}
	}
	for _, name := range sortedKeys(s.Env) {
		args = append(args, "-e", name+"="+s.Env[name])
	}
	for _, dir := range s.Volumes {
		args = append(args, "-v", dir+":"+dir)
	}
	args = append(args, s.Image)

	out, err := s.node.docker(args...)
	if err != nil {
		return err
	}
	s.ID = strings.TrimSpace(out)
	return s.UpdateStatus()
}

// Redeploy replaces the running container with a fresh instance of the
// image, keeping the canonical name. When the new launch fails, the old
// container is renamed back and restarted before the launch failure is
// surfaced. The container holding the "-old" name is removed in either
// case.
func (s *Service) Redeploy() error {
	if err := s.node.Pull(s.Image); err != nil {
		return err
	}
	if err := s.Stop(); err != nil {
		return err
	}

	oldName := s.Name + "-old"
	if err := s.node.RenameService(s.Name, oldName); err != nil {
		return err
	}
	oldID := s.ID
	defer s.node.TerminateService(oldName)

	if err := s.Launch(); err != nil {
		if renameErr := s.node.RenameService(oldName, s.Name); renameErr != nil {
			log.Error(renameErr)
		}
		s.ID = oldID
		if startErr := s.Start(); startErr != nil {
			log.Error(startErr)
		}
		return err
	}
	return nil
}

func (s *Service) Start() error {
	if _, err := s.node.docker("start", s.ID); err != nil {
		return err
	}
	return s.UpdateStatus()
}

func (s *Service) Stop() error {
	if _, err := s.node.docker("stop", s.ID); err != nil {
		return err
	}
	return s.UpdateStatus()
}

// Terminate removes the backing container. The in-memory service remains
// until the caller drops it.
func (s *Service) Terminate() (string, error) {
	return s.node.TerminateService(s.ID)
}

// Logs fetches the container log. With a filename the text is written there
// (replacing any previous content) and the filename returned; otherwise the
// text itself is returned.
func (s *Service) Logs(filename string) (string, error) {
	out, err := s.node.docker("logs", s.ID)
	if err != nil {
		return "", err
	}
	if filename != "" {
		if err := os.WriteFile(filename, []byte(out), 0644); err != nil {
			return "", errors.Wrapf(err, "cannot write log to %s", filename)
		}
		return filename, nil
	}
	return out, nil
}

// UpdateStatus refreshes the status from a live inspection.
func (s *Service) UpdateStatus() error {
	inspected, err := s.node.GetService(s.ID)
	if err != nil {
		return err
	}
	s.Status = inspected.Status
	return nil
}

// AsRow renders the service for tabular display.
func (s *Service) AsRow() []string {
	ports := make([]string, 0, len(s.Ports))
	for _, port := range sortedKeys(s.Ports) {
		ports = append(ports, port+":"+s.Ports[port])
	}
	return []string{
		s.Name,
		s.Image,
		s.Status,
		s.URL(),
		s.node.IPAddress(),
		s.node.Name(),
		strings.Join(ports, ", "),
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
