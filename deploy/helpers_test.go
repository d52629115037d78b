package deploy

import (
	"path/filepath"
	"testing"

	"github.com/NeuroPSI-Neuroinformatics/cloud-deploy/provider"
)

// fakeExec scripts the remote side: exact command strings map to canned
// output or errors, and every executed command is recorded in order.
type fakeExec struct {
	responses map[string]string
	errs      map[string]error
	commands  []string
}

func newFakeExec() *fakeExec {
	return &fakeExec{
		responses: map[string]string{},
		errs:      map[string]error{},
	}
}

func (f *fakeExec) Execute(host, user, cmd string) (string, error) {
	f.commands = append(f.commands, cmd)
	if err, ok := f.errs[cmd]; ok {
		return "", err
	}
	return f.responses[cmd], nil
}

type fakeInstance struct {
	name string
	ip   string
	sudo bool
}

func (f *fakeInstance) Name() string           { return f.name }
func (f *fakeInstance) IPAddress() string      { return f.ip }
func (f *fakeInstance) Status() string         { return "active" }
func (f *fakeInstance) MemoryMB() int          { return 1024 }
func (f *fakeInstance) Location() string       { return "ams2" }
func (f *fakeInstance) Type() string           { return "docker" }
func (f *fakeInstance) CreatedAt() string      { return "2017-03-01T10:00:00Z" }
func (f *fakeInstance) Provider() string       { return "fake" }
func (f *fakeInstance) RemoteUsername() string { return "root" }
func (f *fakeInstance) UseSudo() bool          { return f.sudo }
func (f *fakeInstance) Shutdown() error        { return nil }
func (f *fakeInstance) Destroy() error         { return nil }

type fakeProvider struct {
	instances []provider.Instance
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) List() ([]provider.Instance, error) { return f.instances, nil }

func newTestFleet(t *testing.T, exec Executor, instances ...provider.Instance) *Fleet {
	t.Helper()
	return &Fleet{
		Providers:      provider.NewRegistry(&fakeProvider{instances: instances}),
		Exec:           exec,
		CacheFile:      filepath.Join(t.TempDir(), "cache.json"),
		DockerUser:     "neuro",
		DockerPassword: func() (string, error) { return "hunter2", nil },
	}
}

func newTestNode(t *testing.T, exec Executor) *Node {
	t.Helper()
	inst := &fakeInstance{name: "web-server", ip: "192.0.2.10"}
	return &Node{Instance: inst, fleet: newTestFleet(t, exec, inst)}
}
