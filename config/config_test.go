package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
DOCKER_USER: neuro
SSH_KEYS: [ "aa:bb:cc" ]
URLS:
  - www.example.org
  - db.example.org
DIGITAL_OCEAN:
  region: ams2
  size: s-1vcpu-1gb
  image: docker
OPENSTACK:
  auth_url: https://pollux.cscs.ch:13000/v3
  compute_url: https://pollux.cscs.ch:13774/v2.1
  username: adavison
  project: icei
  network: int-net1
FUTURE_SETTING: ignored
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cld-config.yml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "neuro", cfg.DockerUser)
	assert.Equal(t, []string{"aa:bb:cc"}, cfg.SSHKeys)
	assert.Equal(t, []string{"www.example.org", "db.example.org"}, cfg.URLs)
	assert.Equal(t, "ams2", cfg.DigitalOcean.Region)
	assert.Equal(t, "int-net1", cfg.OpenStack.Network)
	assert.Equal(t, "Default", cfg.OpenStack.Domain)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
}
