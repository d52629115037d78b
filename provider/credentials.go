package provider

import (
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

// Secrets come from the environment when set, otherwise from the OS
// password store: the keychain on macOS, pass(1) elsewhere.

func DigitalOceanToken() (string, error) {
	if token := os.Getenv("DIGITALOCEAN_TOKEN"); token != "" {
		return token, nil
	}
	if runtime.GOOS == "darwin" {
		return lookupSecret("security", "find-generic-password", "-s", "DigitalOcean API Token", "-w")
	}
	return lookupSecret("pass", "show", "tokens/digitalocean")
}

func DockerPassword(username string) (string, error) {
	if pwd := os.Getenv("DOCKER_PASSWORD"); pwd != "" {
		return pwd, nil
	}
	if runtime.GOOS == "darwin" {
		return lookupSecret("security", "find-internet-password", "-s", "id.docker.com", "-a", username, "-w")
	}
	return lookupSecret("pass", "show", "web/hub.docker.com/"+username)
}

func OpenStackPassword() (string, error) {
	if pwd := os.Getenv("OS_PASSWORD"); pwd != "" {
		return pwd, nil
	}
	return lookupSecret("pass", "show", "cscs")
}

func lookupSecret(name string, args ...string) (string, error) {
	out, err := exec.Command(name, args...).Output()
	if err != nil {
		return "", errors.Wrapf(err, "cannot retrieve secret via %s", name)
	}
	return strings.TrimSpace(string(out)), nil
}
