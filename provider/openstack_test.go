package provider

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/NeuroPSI-Neuroinformatics/cloud-deploy/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const serversPayload = `{
  "servers": [
    {
      "id": "srv-1",
      "name": "nmpi",
      "status": "ACTIVE",
      "created": "2017-03-01T10:00:00Z",
      "addresses": {
        "int-net1": [
          {"addr": "10.0.0.5", "OS-EXT-IPS:type": "fixed"},
          {"addr": "148.187.96.10", "OS-EXT-IPS:type": "floating"}
        ]
      },
      "flavor": {"id": "f-2"}
    }
  ]
}`

const flavorPayload = `{"flavor": {"name": "m1.small", "ram": 2048}}`

func newFakeOpenStack(t *testing.T) (*OpenStack, *httptest.Server) {
	mux := http.NewServeMux()
	mux.HandleFunc("/identity/auth/tokens", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		w.Header().Set("X-Subject-Token", "tok-123")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"token": {}}`))
	})
	mux.HandleFunc("/compute/servers/detail", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tok-123", r.Header.Get("X-Auth-Token"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(serversPayload))
	})
	mux.HandleFunc("/compute/flavors/f-2", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(flavorPayload))
	})
	srv := httptest.NewServer(mux)

	cfg := config.OpenStackConfig{
		AuthURL:    srv.URL + "/identity",
		ComputeURL: srv.URL + "/compute",
		Username:   "adavison",
		Project:    "icei",
		Domain:     "Default",
		Network:    "int-net1",
	}
	return NewOpenStack(cfg, func() (string, error) { return "hunter2", nil }), srv
}

func TestOpenStackList(t *testing.T) {
	p, srv := newFakeOpenStack(t)
	defer srv.Close()

	instances, err := p.List()
	require.NoError(t, err)
	require.Len(t, instances, 1)

	inst := instances[0]
	assert.Equal(t, "nmpi", inst.Name())
	assert.Equal(t, "148.187.96.10", inst.IPAddress())
	assert.Equal(t, "ACTIVE", inst.Status())
	assert.Equal(t, 2048, inst.MemoryMB())
	assert.Equal(t, "m1.small", inst.Type())
	assert.Equal(t, "CSCS", inst.Location())
	assert.Equal(t, "ubuntu", inst.RemoteUsername())
	assert.True(t, inst.UseSudo())
}

func TestOpenStackListUnreachable(t *testing.T) {
	// a server that is already gone: connection refused
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	cfg := config.OpenStackConfig{
		AuthURL:    srv.URL + "/identity",
		ComputeURL: srv.URL + "/compute",
		Username:   "adavison",
		Project:    "icei",
		Domain:     "Default",
	}
	p := NewOpenStack(cfg, func() (string, error) { return "hunter2", nil })

	// Unreachable identity service degrades to an empty node list.
	instances, err := p.List()
	require.NoError(t, err)
	assert.Empty(t, instances)
}

func TestRegistryList(t *testing.T) {
	p, srv := newFakeOpenStack(t)
	defer srv.Close()

	reg := NewRegistry(p)
	instances, err := reg.List()
	require.NoError(t, err)
	assert.Len(t, instances, 1)
}
