package main

import (
	"context"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/code_drill/drill/internal/environment"
)

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.WarnLevel)

	cmd := &cli.Command{
		Name:  "drillctl",
		Usage: "operator tools for the code-drill judging service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "languages-file",
				Usage:   "TOML language table replacing the built-in one",
				Sources: cli.EnvVars(environment.KeyLanguagesFile),
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log judging runs",
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			if c.Bool("verbose") {
				log.SetLevel(log.DebugLevel)
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:   "languages",
				Usage:  "print the language table",
				Action: languagesAction(os.Stdout),
			},
			{
				Name:      "verify",
				Usage:     "run every reference solution of a problem file against the judge",
				ArgsUsage: "problem.toml",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "judge",
						Usage:    "Judge0 base url",
						Sources:  cli.EnvVars(environment.KeyJudgeURL),
						Required: true,
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "polling budget per judging run",
						Value: 30 * time.Second,
					},
					&cli.DurationFlag{
						Name:  "poll-interval",
						Value: time.Second,
					},
				},
				Action: verifyAction(os.Stdout),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
