package main

import (
	"fmt"
	"os"

	"github.com/NeuroPSI-Neuroinformatics/cloud-deploy/provider"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

func handlerNodeList(c *cli.Context) error {
	fleet, _, err := newFleet()
	if err != nil {
		return err
	}
	nodes, err := fleet.Nodes()
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Name", "IP Address", "Status", "Created", "Size", "Location", "Type", "Provider"})
	table.SetBorder(false)
	for _, node := range nodes {
		table.Append(node.AsRow())
	}
	table.Render()
	return nil
}

func handlerNodeCreate(c *cli.Context) error {
	if c.NArg() < 1 {
		return errors.New("usage: node create NAME")
	}
	name := c.Args()[0]

	_, cfg, err := newFleet()
	if err != nil {
		return err
	}
	token, err := provider.DigitalOceanToken()
	if err != nil {
		return err
	}

	do := provider.NewDigitalOcean(token, cfg.DigitalOcean, cfg.SSHKeys)
	instance, err := do.Create(name, c.String("type"), c.String("size"))
	if err != nil {
		return err
	}
	fmt.Printf("Created %s at %s\n", instance.Name(), instance.IPAddress())
	return nil
}

func handlerNodeShutdown(c *cli.Context) error {
	if c.NArg() < 1 {
		return errors.New("usage: node shutdown NAME")
	}

	fleet, _, err := newFleet()
	if err != nil {
		return err
	}
	node, err := fleet.Node(c.Args()[0])
	if err != nil {
		return err
	}
	return node.Instance.Shutdown()
}

func handlerNodeDestroy(c *cli.Context) error {
	if c.NArg() < 1 {
		return errors.New("usage: node destroy NAME")
	}

	fleet, _, err := newFleet()
	if err != nil {
		return err
	}
	node, err := fleet.Node(c.Args()[0])
	if err != nil {
		return err
	}

	// TODO: refuse when services are still running on the node
	return node.Instance.Destroy()
}
