package provider

import (
	"fmt"
	"net/url"

	"github.com/NeuroPSI-Neuroinformatics/cloud-deploy/config"
	"github.com/NeuroPSI-Neuroinformatics/cloud-deploy/log"
	"github.com/NeuroPSI-Neuroinformatics/cloud-deploy/requests"

	"github.com/pkg/errors"
)

// OpenStack talks to the identity (keystone v3) and compute (nova) APIs
// directly. Authentication happens lazily, once per process.
type OpenStack struct {
	cfg      config.OpenStackConfig
	client   *requests.RestClient
	password func() (string, error)

	authenticated bool
	flavors       map[string]novaFlavor
}

func NewOpenStack(cfg config.OpenStackConfig, password func() (string, error)) *OpenStack {
	if password == nil {
		password = OpenStackPassword
	}
	return &OpenStack{
		cfg:      cfg,
		client:   requests.NewRestClient(),
		password: password,
		flavors:  make(map[string]novaFlavor),
	}
}

func (p *OpenStack) Name() string {
	return fmt.Sprintf("ICEI %s", p.cfg.Project)
}

// List returns the project's servers. An unreachable identity service is
// reported and degraded to an empty list; a rejected authentication is not.
func (p *OpenStack) List() ([]Instance, error) {
	if err := p.authenticate(); err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			log.Warning(err)
			return nil, nil
		}
		return nil, err
	}

	var body struct {
		Servers []novaServer `json:"servers"`
	}
	if err := p.client.GetJSON(p.cfg.ComputeURL+"/servers/detail", &body); err != nil {
		return nil, errors.Wrap(err, "cannot list servers")
	}

	instances := make([]Instance, 0, len(body.Servers))
	for i := range body.Servers {
		instances = append(instances, &novaInstance{provider: p, s: body.Servers[i]})
	}
	return instances, nil
}

func (p *OpenStack) authenticate() error {
	if p.authenticated {
		return nil
	}

	pwd, err := p.password()
	if err != nil {
		return errors.Wrap(err, "no OpenStack password available")
	}

	payload := map[string]interface{}{
		"auth": map[string]interface{}{
			"identity": map[string]interface{}{
				"methods": []string{"password"},
				"password": map[string]interface{}{
					"user": map[string]interface{}{
						"name":     p.cfg.Username,
						"domain":   map[string]string{"name": p.cfg.Domain},
						"password": pwd,
					},
				},
			},
			"scope": map[string]interface{}{
				"project": map[string]interface{}{
					"name":   p.cfg.Project,
					"domain": map[string]string{"name": p.cfg.Domain},
				},
			},
		},
	}

	res, err := p.client.PostJSON(p.cfg.AuthURL+"/auth/tokens", payload, nil)
	if err != nil {
		var apiErr *requests.ApiError
		if errors.As(err, &apiErr) {
			return errors.Errorf("couldn't authenticate as %s: status %d", p.cfg.Username, apiErr.StatusCode)
		}
		return err
	}

	token := res.Header.Get("X-Subject-Token")
	if token == "" {
		return errors.New("identity service returned no token")
	}
	p.client.SetAuthToken(token)
	p.authenticated = true
	return nil
}

func (p *OpenStack) flavor(id string) (novaFlavor, error) {
	if f, ok := p.flavors[id]; ok {
		return f, nil
	}
	var body struct {
		Flavor novaFlavor `json:"flavor"`
	}
	if err := p.client.GetJSON(p.cfg.ComputeURL+"/flavors/"+id, &body); err != nil {
		return novaFlavor{}, errors.Wrapf(err, "cannot look up flavor %s", id)
	}
	p.flavors[id] = body.Flavor
	return body.Flavor, nil
}

type novaFlavor struct {
	Name string `json:"name"`
	RAM  int    `json:"ram"`
}

type novaAddress struct {
	Addr string `json:"addr"`
	Type string `json:"OS-EXT-IPS:type"`
}

type novaServer struct {
	ID        string                   `json:"id"`
	Name      string                   `json:"name"`
	Status    string                   `json:"status"`
	Created   string                   `json:"created"`
	Addresses map[string][]novaAddress `json:"addresses"`
	Flavor    struct {
		ID string `json:"id"`
	} `json:"flavor"`
}

type novaInstance struct {
	provider *OpenStack
	s        novaServer
}

func (n *novaInstance) Name() string {
	return n.s.Name
}

// IPAddress returns the floating address on the configured network.
func (n *novaInstance) IPAddress() string {
	for _, addr := range n.s.Addresses[n.provider.cfg.Network] {
		if addr.Type == "floating" {
			return addr.Addr
		}
	}
	return ""
}

func (n *novaInstance) Status() string {
	return n.s.Status
}

func (n *novaInstance) MemoryMB() int {
	f, err := n.provider.flavor(n.s.Flavor.ID)
	if err != nil {
		log.Warning(err)
		return 0
	}
	return f.RAM
}

func (n *novaInstance) Location() string {
	if n.provider.cfg.Location == "" {
		return "CSCS"
	}
	return n.provider.cfg.Location
}

func (n *novaInstance) Type() string {
	f, err := n.provider.flavor(n.s.Flavor.ID)
	if err != nil {
		log.Warning(err)
		return ""
	}
	return f.Name
}

func (n *novaInstance) CreatedAt() string {
	return n.s.Created
}

func (n *novaInstance) Provider() string {
	return n.provider.Name()
}

func (n *novaInstance) RemoteUsername() string {
	return "ubuntu"
}

func (n *novaInstance) UseSudo() bool {
	return true
}

func (n *novaInstance) Shutdown() error {
	_, err := n.provider.client.PostJSON(
		n.provider.cfg.ComputeURL+"/servers/"+n.s.ID+"/action",
		map[string]interface{}{"os-stop": nil}, nil)
	return errors.Wrapf(err, "cannot stop server %s", n.s.Name)
}

func (n *novaInstance) Destroy() error {
	err := n.provider.client.Delete(n.provider.cfg.ComputeURL + "/servers/" + n.s.ID)
	return errors.Wrapf(err, "cannot delete server %s", n.s.Name)
}
