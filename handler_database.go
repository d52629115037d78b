package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/NeuroPSI-Neuroinformatics/cloud-deploy/deploy"
	"github.com/NeuroPSI-Neuroinformatics/cloud-deploy/log"

	"github.com/pkg/errors"
	"github.com/urfave/cli"
	"golang.org/x/crypto/ssh/terminal"
)

// databaseAddress finds the host and published port of the postgres service.
func databaseAddress(service *deploy.Service) (string, string, error) {
	host := service.Node().IPAddress()
	for _, key := range []string{"5432/tcp", "5432"} {
		if port, ok := service.Ports[key]; ok && port != "" {
			return host, port, nil
		}
	}
	return "", "", errors.Errorf("service %s does not publish a postgres port", service.Name)
}

func handlerDatabaseDump(c *cli.Context) error {
	if c.NArg() < 1 {
		return errors.New("usage: database dump SERVICE")
	}
	name := c.Args()[0]
	dbname := c.String("dbname")
	username := c.String("username")

	fleet, _, err := newFleet()
	if err != nil {
		return err
	}
	service, err := fleet.FindService(name, true)
	if err != nil {
		return err
	}
	host, port, err := databaseAddress(service)
	if err != nil {
		return err
	}

	descriptor, err := loadDescriptor(name)
	if err != nil {
		return err
	}
	password, ok := descriptor.Secrets[strings.ToUpper(dbname)+"_DATABASE_PASSWORD"]
	if !ok {
		return errors.Errorf("no database password for %s in the deployment secrets", dbname)
	}

	filename := fmt.Sprintf("%s_%s.sql", dbname, time.Now().Format("20060102_150405"))
	log.Infof("Dumping database %s from %s:%s to %s", dbname, host, port, filename)

	outfile, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer outfile.Close()

	dump := exec.Command("pg_dump", "--clean", "--create", "--insert",
		"-h", host, "-p", port, "-U", username, dbname)
	dump.Env = append(os.Environ(), "PGPASSWORD="+password)
	dump.Stdout = outfile
	dump.Stderr = os.Stderr
	if err := dump.Run(); err != nil {
		return errors.Wrapf(err, "pg_dump of %s failed", dbname)
	}
	fmt.Printf("Saved dump to %s\n", filename)
	return nil
}

func handlerDatabaseRestore(c *cli.Context) error {
	if c.NArg() < 2 {
		return errors.New("usage: database restore SERVICE FILENAME")
	}
	name, filename := c.Args()[0], c.Args()[1]
	dbname := c.String("dbname")

	fleet, _, err := newFleet()
	if err != nil {
		return err
	}
	service, err := fleet.FindService(name, true)
	if err != nil {
		return err
	}
	host, port, err := databaseAddress(service)
	if err != nil {
		return err
	}

	fmt.Print("Postgres superuser password: ")
	password, err := terminal.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return errors.Wrap(err, "cannot read password")
	}

	infile, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer infile.Close()

	log.Infof("Restoring %s into database %s at %s:%s", filename, dbname, host, port)
	restore := exec.Command("psql", "-h", host, "-p", port, "-U", "postgres", dbname)
	restore.Env = append(os.Environ(), "PGPASSWORD="+string(password))
	restore.Stdin = infile
	restore.Stdout = os.Stdout
	restore.Stderr = os.Stderr
	if err := restore.Run(); err != nil {
		return errors.Wrapf(err, "restore of %s failed", dbname)
	}
	return nil
}
