/*------------------------------------------------------------------------------
* main.go : command-line driver for the RTK post-processing engine
*
*          Copyright (C) 2007-2020 by T.TAKASU, All rights reserved.
*-----------------------------------------------------------------------------*/

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

var Log = logrus.StandardLogger()

func main() {
	app := &cli.App{
		Name:  "rtkpost",
		Usage: "single-frequency RTK post-processing driver",
		Commands: []*cli.Command{
			runCommand(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		Log.Fatal(err)
	}
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "process one or more rover/base baselines",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Required: true, Usage: "processing options yaml"},
			&cli.StringFlag{Name: "pairs", Required: true, Usage: "baseline list yaml"},
		},
		Action: func(c *cli.Context) error {
			runID := uuid.New().String()
			log := Log.WithField("run_id", runID)

			pairs, err := loadPairs(c.String("pairs"))
			if err != nil {
				return err
			}
			cfg := RunConfig{ConfigPath: c.String("config"), Pairs: pairs}

			log.Infof("starting run with %d baseline(s)", len(pairs))
			summary, err := Run(context.Background(), cfg)
			if err != nil {
				return err
			}

			failed := 0
			for _, r := range summary.Results {
				if r.Err != nil {
					failed++
					log.WithField("pair", r.Name).Errorf("failed: %v", r.Err)
					continue
				}
				log.WithField("pair", r.Name).Infof("%d epochs written", r.Epochs)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d baselines failed", failed, len(pairs))
			}
			return nil
		},
	}
}

func loadPairs(path string) ([]PairSpec, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pairs: read %s: %w", path, err)
	}
	var spec struct {
		Pairs []PairSpec `yaml:"pairs"`
	}
	if err := yaml.Unmarshal(buf, &spec); err != nil {
		return nil, fmt.Errorf("pairs: parse %s: %w", path, err)
	}
	return spec.Pairs, nil
}
