package params

import (
	"os"
	"path/filepath"

	"github.com/blang/semver"
	"github.com/namsral/flag"
)

const (
	Version = "0.2.0"

	DefaultConfigFile     = "~/.cld-config.yml"
	DefaultCacheFile      = "~/.clouddeploycache"
	DefaultSSHKeyDir      = "~/.ssh"
	DefaultDockerEndpoint = "unix:///var/run/docker.sock"
	DefaultLogLevel       = "info"
)

var (
	params = &Params{}
)

type Params struct {
	ConfigFile     string
	CacheFile      string
	SSHKeyDir      string
	DockerEndpoint string
	LogLevel       string
	Version        semver.Version

	flagSet *flag.FlagSet
}

func init() {
	params.Version = semver.MustParse(Version)

	// CLOUD_DEPLOY_CONFIG_FILE etc. override the defaults, command line
	// flags override both.
	fs := flag.NewFlagSetWithEnvPrefix(os.Args[0], "CLOUD_DEPLOY", flag.ExitOnError)
	fs.StringVar(&params.ConfigFile, "config-file", DefaultConfigFile, "deployment configuration file")
	fs.StringVar(&params.CacheFile, "cache-file", DefaultCacheFile, "local service cache file")
	fs.StringVar(&params.SSHKeyDir, "ssh-key-dir", DefaultSSHKeyDir, "directory searched for ssh private keys")
	fs.StringVar(&params.DockerEndpoint, "docker-endpoint", DefaultDockerEndpoint, "local docker endpoint (used by the build command)")
	fs.StringVar(&params.LogLevel, "log-level", DefaultLogLevel, "log level")
	params.flagSet = fs
}

func Get() *Params {
	return params
}

func Parse(args []string) error {
	if err := params.flagSet.Parse(args); err != nil {
		return err
	}
	params.ConfigFile = ExpandUser(params.ConfigFile)
	params.CacheFile = ExpandUser(params.CacheFile)
	params.SSHKeyDir = ExpandUser(params.SSHKeyDir)
	return nil
}

// ExpandUser replaces a leading "~" with the current user's home directory.
func ExpandUser(path string) string {
	if path == "~" || len(path) > 1 && path[0] == '~' && path[1] == '/' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
