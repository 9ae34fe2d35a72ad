package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

const VERSION = "v1.0.0"

var App = &cli.App{
	Name:    "darwin-test",
	Usage:   "run declarative test suites against darwin filters",
	Version: VERSION,
	Commands: []*cli.Command{
		{
			Name:  "run",
			Usage: "run every test described in the suite file",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "config",
					Usage:    "test suite file path",
					Required: true,
				},
				&cli.BoolFlag{
					Name:  "debug",
					Usage: "log every test phase",
				},
				&cli.BoolFlag{
					Name:  "time",
					Usage: "report call timings per filter",
				},
			},
			Action: run,
		},
	},
}

func main() {
	if err := App.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}
