package main

import (
	"os"

	"github.com/NeuroPSI-Neuroinformatics/cloud-deploy/log"
	"github.com/NeuroPSI-Neuroinformatics/cloud-deploy/params"

	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()

	app.Name = "cloud-deploy"
	app.Usage = "Deploy services (provided by docker containers) to cloud compute nodes."
	app.Version = params.Version
	app.Flags = []cli.Flag{
		cli.BoolFlag{Name: "debug"},
	}
	app.Before = func(c *cli.Context) error {
		if err := params.Parse(nil); err != nil {
			return err
		}
		level := params.Get().LogLevel
		if c.Bool("debug") {
			level = "debug"
		}
		return log.SetLevel(level)
	}

	app.Commands = []cli.Command{
		{
			Name:   "services",
			Usage:  "display a list of services",
			Action: handlerServices,
			Flags: []cli.Flag{
				cli.BoolFlag{Name: "fast, f", Usage: "use cached information (faster but may not be up-to-date)"},
			},
		},
		{
			Name:      "launch",
			Usage:     "launch a new service",
			ArgsUsage: "NODE SERVICE",
			Action:    handlerLaunch,
			Flags: []cli.Flag{
				cli.StringFlag{Name: "colour"},
			},
		},
		{
			Name:      "redeploy",
			Usage:     "redeploy a running service with the latest image",
			ArgsUsage: "SERVICE",
			Action:    handlerRedeploy,
			Flags: []cli.Flag{
				cli.StringFlag{Name: "colour"},
			},
		},
		{
			Name:      "log",
			Usage:     "display the log for a given service",
			ArgsUsage: "SERVICE",
			Action:    handlerLog,
			Flags: []cli.Flag{
				cli.StringFlag{Name: "colour"},
				cli.StringFlag{Name: "filename"},
			},
		},
		{
			Name:      "terminate",
			Usage:     "terminate a given service",
			ArgsUsage: "SERVICE",
			Action:    handlerTerminate,
			Flags: []cli.Flag{
				cli.StringFlag{Name: "colour"},
			},
		},
		{
			Name:      "build",
			Usage:     "build a docker image and push it to the registry",
			ArgsUsage: "SERVICE",
			Action:    handlerBuild,
			Flags: []cli.Flag{
				cli.StringFlag{Name: "colour"},
				cli.StringFlag{Name: "remote", Usage: "build on the named node instead of locally"},
			},
		},
		{
			Name:  "node",
			Usage: "manage server nodes",
			Subcommands: []cli.Command{
				{
					Name:   "list",
					Usage:  "display a list of server nodes",
					Action: handlerNodeList,
				},
				{
					Name:      "create",
					Usage:     "create a new server node",
					ArgsUsage: "NAME",
					Action:    handlerNodeCreate,
					Flags: []cli.Flag{
						cli.StringFlag{Name: "type", Value: "docker", Usage: "Digital Ocean image"},
						cli.StringFlag{Name: "size", Value: "s-1vcpu-1gb"},
					},
				},
				{
					Name:      "shutdown",
					Usage:     "shut down a server node",
					ArgsUsage: "NAME",
					Action:    handlerNodeShutdown,
				},
				{
					Name:      "destroy",
					Usage:     "destroy a server node",
					ArgsUsage: "NAME",
					Action:    handlerNodeDestroy,
				},
			},
		},
		{
			Name:  "database",
			Usage: "manage database services",
			Subcommands: []cli.Command{
				{
					Name:      "dump",
					Usage:     "dump the database behind a service to a local file",
					ArgsUsage: "SERVICE",
					Action:    handlerDatabaseDump,
					Flags: []cli.Flag{
						cli.StringFlag{Name: "dbname", Value: "nmpi"},
						cli.StringFlag{Name: "username", Value: "nmpi_dbadmin"},
					},
				},
				{
					Name:      "restore",
					Usage:     "restore a database dump into a service",
					ArgsUsage: "SERVICE FILENAME",
					Action:    handlerDatabaseRestore,
					Flags: []cli.Flag{
						cli.StringFlag{Name: "dbname", Value: "nmpi"},
					},
				},
			},
		},
	}

	app.Run(os.Args)
}
