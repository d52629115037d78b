package params

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	p := Get()
	assert.Equal(t, DefaultDockerEndpoint, p.DockerEndpoint)
	assert.Equal(t, DefaultLogLevel, p.LogLevel)
}

func TestParseExpandsUser(t *testing.T) {
	require.NoError(t, Parse([]string{"-cache-file", "~/custom-cache"}))

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "custom-cache"), Get().CacheFile)
}

func TestExpandUser(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".ssh"), ExpandUser("~/.ssh"))
	assert.Equal(t, "/etc/cld.yml", ExpandUser("/etc/cld.yml"))
	assert.Equal(t, "relative.yml", ExpandUser("relative.yml"))
}
