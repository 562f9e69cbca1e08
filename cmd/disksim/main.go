package main

import (
	"fmt"
	"log"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"ldisksim/internal/ldisk"
	"ldisksim/internal/shell"
)

var (
	Version   = "development"
	BuildTime = "unknown"
)

func runShell(c *cli.Context) error {
	scriptPath := c.String("script")
	if scriptPath == "" {
		sh := shell.New(os.Stdout)
		return errors.Wrap(sh.Run(os.Stdin), "run shell")
	}

	f, err := os.Open(scriptPath)
	if err != nil {
		return errors.Wrap(err, "open script")
	}
	defer f.Close()

	sh := shell.New(os.Stdout)
	return errors.Wrap(sh.Run(f), "run script")
}

func checkImage(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("check requires exactly one image path")
	}
	d := ldisk.New()
	if err := d.Load(c.Args().First()); err != nil {
		return errors.Wrap(err, "load image")
	}
	fmt.Printf("allocated blocks: %v\n", d.AllocatedBlocks())

	problems := d.CheckInvariants()
	if len(problems) == 0 {
		fmt.Println("ok")
		return nil
	}
	for _, p := range problems {
		fmt.Println(p)
	}
	return errors.Errorf("%d invariant violation(s)", len(problems))
}

func main() {
	app := &cli.App{
		Name:    "disksim",
		Usage:   "logical filesystem simulator over an in-memory block device",
		Version: fmt.Sprintf("%s.%s", Version, BuildTime),
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Usage: "enable debug logging"},
			&cli.StringFlag{Name: "script", Usage: "replay commands from a file instead of stdin"},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") {
				logrus.SetLevel(logrus.DebugLevel)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run the interactive command shell",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "script", Usage: "replay commands from a file instead of stdin"},
				},
				Action: runShell,
			},
			{
				Name:      "check",
				Usage:     "validate a saved disk image's bitmap/descriptor invariants",
				ArgsUsage: "IMAGE",
				Action:    checkImage,
			},
		},
		Action: runShell,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
