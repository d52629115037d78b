// Package builder builds docker images for a service, either against the
// local daemon or on a remote node.
package builder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/NeuroPSI-Neuroinformatics/cloud-deploy/deploy"
	"github.com/NeuroPSI-Neuroinformatics/cloud-deploy/log"

	docker "github.com/fsouza/go-dockerclient"
	git "github.com/go-git/go-git/v5"
	"github.com/pkg/errors"
)

type Builder struct {
	client *docker.Client
	auth   docker.AuthConfiguration
}

func New(endpoint, username, password string) (*Builder, error) {
	client, err := docker.NewClient(endpoint)
	if err != nil {
		return nil, errors.Wrap(err, "cannot connect to local docker daemon")
	}
	return &Builder{
		client: client,
		auth:   docker.AuthConfiguration{Username: username, Password: password},
	}, nil
}

// GitTag returns the short hash of HEAD in the repository containing dir,
// with a "z" suffix when the work tree is dirty.
func GitTag(dir string) (string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", errors.Wrap(err, "not inside a git repository")
	}
	head, err := repo.Head()
	if err != nil {
		return "", errors.Wrap(err, "cannot resolve HEAD")
	}
	tag := head.Hash().String()[:7]

	worktree, err := repo.Worktree()
	if err != nil {
		return "", err
	}
	status, err := worktree.Status()
	if err != nil {
		return "", err
	}
	if !status.IsClean() {
		tag += "z"
	}
	return tag, nil
}

type buildInfo struct {
	Git    string `json:"git"`
	Colour string `json:"colour"`
	Date   string `json:"date"`
}

// WriteBuildInfo records the version being built in build_info.json, so the
// running service can report what it was built from.
func WriteBuildInfo(dir, gitTag, colour string) error {
	raw, err := json.Marshal(buildInfo{
		Git:    gitTag,
		Colour: colour,
		Date:   time.Now().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "build_info.json"), raw, 0644)
}

// Build builds the image from the given dockerfile with dir as context.
func (b *Builder) Build(dir, dockerfile, image string) error {
	log.Infof("Building image %s", image)
	var output bytes.Buffer
	err := b.client.BuildImage(docker.BuildImageOptions{
		Name:         image,
		Dockerfile:   dockerfile,
		ContextDir:   dir,
		OutputStream: &output,
	})
	log.Debugf("%s", output.String())
	if err != nil {
		return errors.Wrapf(err, "build of %s failed", image)
	}
	return nil
}

func (b *Builder) Tag(image, tag string) error {
	err := b.client.TagImage(image, docker.TagImageOptions{Repo: image, Tag: tag, Force: true})
	return errors.Wrapf(err, "cannot tag %s as %s:%s", image, image, tag)
}

func (b *Builder) Push(image, tag string) error {
	log.Infof("Pushing image %s:%s", image, tag)
	var output bytes.Buffer
	err := b.client.PushImage(docker.PushImageOptions{
		Name:         image,
		Tag:          tag,
		OutputStream: &output,
	}, b.auth)
	log.Debugf("%s", output.String())
	if err != nil {
		return errors.Wrapf(err, "push of %s:%s failed", image, tag)
	}
	log.Infof("Pushed image %s:%s", image, tag)
	return nil
}

// RemoteBuild copies the project at dir to the node and builds the image
// there instead of locally.
func RemoteBuild(node *deploy.Node, dir, dockerfile, image string) error {
	project := filepath.Base(dir)

	// stale upload from an aborted build, if any
	if _, err := node.Run("rm", "-R", "temp_dir"); err != nil {
		log.Debugf("no stale temp_dir to remove: %v", err)
	}

	target := fmt.Sprintf("%s@%s:temp_dir", node.Instance.RemoteUsername(), node.IPAddress())
	log.Infof("Copying %s to %s", dir, target)
	scp := exec.Command("scp", "-r", "-p", dir, target)
	if out, err := scp.CombinedOutput(); err != nil {
		return errors.Wrapf(err, "scp to %s failed: %s", node.Name(), out)
	}

	if _, err := node.Run("mv", project, project+"_backup"); err != nil {
		log.Debugf("no previous %s to back up: %v", project, err)
	}
	if _, err := node.Run("mv", "temp_dir", project); err != nil {
		return err
	}

	log.Infof("Building image %s on %s", image, node.Name())
	_, err := node.RunIn(project, "docker", "build", "-t", image, "-f", dockerfile, ".")
	return err
}
