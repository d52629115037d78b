package main

import (
	"fmt"
	"os"

	"github.com/NeuroPSI-Neuroinformatics/cloud-deploy/deploy"
	"github.com/NeuroPSI-Neuroinformatics/cloud-deploy/log"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

func handlerServices(c *cli.Context) error {
	fleet, _, err := newFleet()
	if err != nil {
		return err
	}

	services, err := fleet.Services(false, !c.Bool("fast"))
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Name", "Image", "Status", "URL", "IP", "Node", "Ports"})
	table.SetBorder(false)
	for _, service := range services {
		table.Append(service.AsRow())
	}
	table.Render()
	return nil
}

func handlerLaunch(c *cli.Context) error {
	if c.NArg() < 2 {
		return errors.New("usage: launch NODE SERVICE")
	}
	nodeName, service := c.Args()[0], c.Args()[1]

	fleet, _, err := newFleet()
	if err != nil {
		return err
	}
	descriptor, err := loadDescriptor(service)
	if err != nil {
		return err
	}
	env, err := descriptor.ResolveEnv()
	if err != nil {
		return err
	}

	node, err := fleet.Node(nodeName)
	if err != nil {
		return err
	}

	colour := c.String("colour")
	svc := deploy.NewService(serviceName(service, colour), descriptor.TaggedImage(colour),
		node, descriptor.Ports, env, descriptor.Volumes)
	if err := svc.Launch(); err != nil {
		return err
	}
	fmt.Printf("Launched %s on %s (%s)\n", svc.Name, node.Name(), svc.Status)
	return nil
}

func handlerRedeploy(c *cli.Context) error {
	if c.NArg() < 1 {
		return errors.New("usage: redeploy SERVICE")
	}
	name := serviceName(c.Args()[0], c.String("colour"))

	fleet, _, err := newFleet()
	if err != nil {
		return err
	}
	service, err := fleet.FindService(name, true)
	if err != nil {
		return err
	}
	log.Infof("Redeploying %s", name)
	return service.Redeploy()
}

func handlerLog(c *cli.Context) error {
	if c.NArg() < 1 {
		return errors.New("usage: log SERVICE")
	}
	name := serviceName(c.Args()[0], c.String("colour"))

	fleet, _, err := newFleet()
	if err != nil {
		return err
	}
	service, err := fleet.FindService(name, true)
	if err != nil {
		return err
	}

	out, err := service.Logs(c.String("filename"))
	if err != nil {
		return err
	}
	if c.String("filename") != "" {
		fmt.Printf("Saved log to %s\n", out)
	} else {
		fmt.Print(out)
	}
	return nil
}

func handlerTerminate(c *cli.Context) error {
	if c.NArg() < 1 {
		return errors.New("usage: terminate SERVICE")
	}
	name := serviceName(c.Args()[0], c.String("colour"))

	fleet, _, err := newFleet()
	if err != nil {
		return err
	}
	service, err := fleet.FindService(name, true)
	if err != nil {
		return err
	}
	out, err := service.Terminate()
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}
