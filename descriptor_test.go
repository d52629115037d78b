package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDescriptor(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "deployment"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "deployment", name), []byte(content), 0644))
}

func TestLoadDescriptor(t *testing.T) {
	dir := t.TempDir()
	writeDescriptor(t, dir, "nmpi.yml", `
image: neuro/nmpi
dockerfile: deployment/Dockerfile
ports:
    "443": "443"
env:
    - SENTRY_DSN
volumes:
    - /data
`)
	writeDescriptor(t, dir, "nmpi-secrets.yml", `
secrets:
    NMPI_DATABASE_PASSWORD: sekrit
`)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	descriptor, err := loadDescriptor("nmpi")
	require.NoError(t, err)

	assert.Equal(t, "neuro/nmpi", descriptor.Image)
	assert.Equal(t, "deployment/Dockerfile", descriptor.Dockerfile)
	assert.Equal(t, map[string]string{"443": "443"}, descriptor.Ports)
	assert.Equal(t, []string{"SENTRY_DSN"}, descriptor.Env)
	assert.Equal(t, []string{"/data"}, descriptor.Volumes)
	assert.Equal(t, map[string]string{"NMPI_DATABASE_PASSWORD": "sekrit"}, descriptor.Secrets)
}

func TestLoadDescriptorMissing(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer os.Chdir(wd)

	_, err = loadDescriptor("nope")
	assert.Error(t, err)
}

func TestResolveEnv(t *testing.T) {
	t.Setenv("SENTRY_DSN", "https://sentry.example.org/1")

	descriptor := &Descriptor{
		Env:     []string{"SENTRY_DSN"},
		Secrets: map[string]string{"NMPI_DATABASE_PASSWORD": "sekrit"},
	}
	env, err := descriptor.ResolveEnv()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"SENTRY_DSN":             "https://sentry.example.org/1",
		"NMPI_DATABASE_PASSWORD": "sekrit",
	}, env)
}

func TestResolveEnvMissingVariable(t *testing.T) {
	descriptor := &Descriptor{Env: []string{"CLOUD_DEPLOY_TEST_UNSET_VARIABLE"}}
	_, err := descriptor.ResolveEnv()
	assert.Error(t, err)
}

func TestTaggedImage(t *testing.T) {
	descriptor := &Descriptor{Image: "neuro/nmpi"}
	assert.Equal(t, "neuro/nmpi:latest", descriptor.TaggedImage(""))
	assert.Equal(t, "neuro/nmpi:blue", descriptor.TaggedImage("blue"))
}

func TestServiceName(t *testing.T) {
	assert.Equal(t, "nmpi", serviceName("nmpi", ""))
	assert.Equal(t, "nmpi-blue", serviceName("nmpi", "blue"))
}
