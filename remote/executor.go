// Package remote executes single shell commands on a node over SSH. One
// command per session; the connection is torn down when the command returns.
package remote

import (
	"bytes"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/NeuroPSI-Neuroinformatics/cloud-deploy/log"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh"
)

// Conventional private key filenames, probed in order.
var keyCandidates = []string{"id_dsa", "id_rsa"}

var ErrNoPrivateKey = errors.New("no usable private key found")

// ConnectionError reports a failure to reach the node at all, as opposed to
// a command that ran and failed. Service listing degrades to an empty result
// on this error; every other caller propagates it.
type ConnectionError struct {
	Host string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("cannot connect to %s: %v", e.Host, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// CommandError reports a remote command that ran but exited with an error.
type CommandError struct {
	Cmd    string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("remote command %q failed: %v: %s", e.Cmd, e.Err, e.Stderr)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

type Executor struct {
	KeyDir string
	Port   int
}

func NewExecutor(keyDir string) *Executor {
	return &Executor{KeyDir: keyDir, Port: 22}
}

// Execute runs cmd as user on host and returns the captured standard output.
func (e *Executor) Execute(host, user, cmd string) (string, error) {
	signer, err := e.signer()
	if err != nil {
		return "", err
	}

	sshConfig := &ssh.ClientConfig{
		User: user,
		Auth: []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: func(hostname string, remote net.Addr, key ssh.PublicKey) error {
			log.Warningf("no known host key for %s, continuing anyway", hostname)
			return nil
		},
	}

	port := e.Port
	if port == 0 {
		port = 22
	}
	client, err := ssh.Dial("tcp", net.JoinHostPort(host, fmt.Sprintf("%d", port)), sshConfig)
	if err != nil {
		return "", &ConnectionError{Host: host, Err: err}
	}
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return "", &ConnectionError{Host: host, Err: err}
	}
	defer session.Close()

	var stderr bytes.Buffer
	session.Stderr = &stderr

	log.Debugf("[%s@%s] %s", user, host, cmd)
	out, err := session.Output(cmd)
	if err != nil {
		if strings.Contains(stderr.String(), "docker: command not found") {
			log.Warningf("docker is not installed on %s", host)
			return string(out), nil
		}
		return "", &CommandError{Cmd: cmd, Stderr: stderr.String(), Err: err}
	}
	return string(out), nil
}

func (e *Executor) signer() (ssh.Signer, error) {
	path, err := findKeyFile(e.KeyDir)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read private key %s", path)
	}
	signer, err := ssh.ParsePrivateKey(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot parse private key %s", path)
	}
	return signer, nil
}

// findKeyFile returns the first conventional private key present in dir.
func findKeyFile(dir string) (string, error) {
	for _, name := range keyCandidates {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", errors.Wrapf(ErrNoPrivateKey, "looked for %s in %s", strings.Join(keyCandidates, ", "), dir)
}
