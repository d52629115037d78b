package main

import (
	"fmt"
	"os"

	"github.com/NeuroPSI-Neuroinformatics/cloud-deploy/builder"
	"github.com/NeuroPSI-Neuroinformatics/cloud-deploy/log"
	"github.com/NeuroPSI-Neuroinformatics/cloud-deploy/params"
	"github.com/NeuroPSI-Neuroinformatics/cloud-deploy/provider"

	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

func handlerBuild(c *cli.Context) error {
	if c.NArg() < 1 {
		return errors.New("usage: build SERVICE")
	}
	service := c.Args()[0]
	colour := c.String("colour")

	descriptor, err := loadDescriptor(service)
	if err != nil {
		return err
	}
	dockerfile := descriptor.Dockerfile
	if dockerfile == "" {
		dockerfile = "Dockerfile"
	}

	dir, err := os.Getwd()
	if err != nil {
		return err
	}
	gitTag, err := builder.GitTag(dir)
	if err != nil {
		return err
	}
	if err := builder.WriteBuildInfo(dir, gitTag, colour); err != nil {
		return err
	}

	colourTag := "latest"
	if colour != "" {
		colourTag = colour
	}

	if remote := c.String("remote"); remote != "" {
		return buildRemote(c, remote, dir, dockerfile, descriptor.Image, colourTag, gitTag)
	}
	return buildLocal(descriptor.Image, dir, dockerfile, colourTag, gitTag)
}

func buildLocal(image, dir, dockerfile, colourTag, gitTag string) error {
	_, cfg, err := newFleet()
	if err != nil {
		return err
	}
	password, err := provider.DockerPassword(cfg.DockerUser)
	if err != nil {
		return err
	}

	b, err := builder.New(params.Get().DockerEndpoint, cfg.DockerUser, password)
	if err != nil {
		return err
	}
	if err := b.Build(dir, dockerfile, image); err != nil {
		return err
	}
	for _, tag := range []string{colourTag, gitTag} {
		if err := b.Tag(image, tag); err != nil {
			return err
		}
	}
	if err := b.Push(image, colourTag); err != nil {
		return err
	}
	fmt.Printf("Built and pushed %s:%s (git %s)\n", image, colourTag, gitTag)
	return nil
}

func buildRemote(c *cli.Context, nodeName, dir, dockerfile, image, colourTag, gitTag string) error {
	fleet, _, err := newFleet()
	if err != nil {
		return err
	}
	node, err := fleet.Node(nodeName)
	if err != nil {
		return err
	}

	if err := builder.RemoteBuild(node, dir, dockerfile, image); err != nil {
		return err
	}
	for _, tag := range []string{colourTag, gitTag} {
		if _, err := node.Run("docker", "tag", image, image+":"+tag); err != nil {
			return err
		}
	}
	log.Infof("Built %s:%s on %s (git %s)", image, colourTag, node.Name(), gitTag)
	return nil
}
