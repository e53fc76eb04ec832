package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/code_drill/drill/internal/judge"
)

// problemFile is the on-disk form of a problem checked by verify.
type problemFile struct {
	Title     string `toml:"title"`
	Testcases []struct {
		Input  string `toml:"input"`
		Output string `toml:"output"`
	} `toml:"testcases"`
	Solutions []struct {
		Language string `toml:"language"`
		Code     string `toml:"code"`
	} `toml:"solutions"`
}

func readProblemFile(path string) ([]judge.ReferenceSolution, []judge.TestCase, string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, "", err
	}
	var pf problemFile
	if err = toml.Unmarshal(raw, &pf); err != nil {
		return nil, nil, "", fmt.Errorf("cannot parse %s, %w", path, err)
	}
	if len(pf.Testcases) == 0 {
		return nil, nil, "", fmt.Errorf("%s has no [[testcases]]", path)
	}
	if len(pf.Solutions) == 0 {
		return nil, nil, "", fmt.Errorf("%s has no [[solutions]]", path)
	}

	cases := make([]judge.TestCase, len(pf.Testcases))
	for i, tc := range pf.Testcases {
		cases[i] = judge.TestCase{Input: tc.Input, ExpectedOutput: tc.Output}
	}
	solutions := make([]judge.ReferenceSolution, len(pf.Solutions))
	for i, s := range pf.Solutions {
		solutions[i] = judge.ReferenceSolution{Language: s.Language, Code: s.Code}
	}
	title := pf.Title
	if title == "" {
		title = path
	}
	return solutions, cases, title, nil
}

func loadLanguages(c *cli.Command) (*judge.Languages, error) {
	if path := c.String("languages-file"); path != "" {
		return judge.LoadLanguages(path)
	}
	return judge.DefaultLanguages(), nil
}

func languagesAction(out io.Writer) cli.ActionFunc {
	return func(_ context.Context, c *cli.Command) error {
		languages, err := loadLanguages(c)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tID\tALIASES")
		for _, spec := range languages.Specs() {
			fmt.Fprintf(tw, "%s\t%d\t%v\n", spec.Name, spec.ID, spec.Aliases)
		}
		return tw.Flush()
	}
}

func verifyAction(out io.Writer) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() != 1 {
			return cli.Exit("verify expects exactly one problem file", 2)
		}
		solutions, cases, title, err := readProblemFile(c.Args().First())
		if err != nil {
			return cli.Exit(err.Error(), 2)
		}
		languages, err := loadLanguages(c)
		if err != nil {
			return cli.Exit(err.Error(), 2)
		}

		client, err := judge.NewClient(judge.ClientConfig{
			BaseURL:      c.String("judge"),
			PollInterval: c.Duration("poll-interval"),
			PollTimeout:  c.Duration("timeout"),
			HTTPTimeout:  10 * time.Second,
		})
		if err != nil {
			return cli.Exit(err.Error(), 2)
		}
		j := judge.NewJudge(client, languages, nil, nil)

		start := time.Now()
		err = j.VerifyReferenceSolutions(ctx, solutions, cases)
		elapsed := time.Since(start).Round(time.Millisecond)

		var failure *judge.ReferenceFailure
		switch {
		case err == nil:
			fmt.Fprintf(out, "%s %s: %d solution(s) x %d testcase(s) in %v\n",
				color.GreenString("PASS"), title, len(solutions), len(cases), elapsed)
			return nil
		case errors.As(err, &failure):
			reason := ""
			if failure.Verdict.FailedReason != nil {
				reason = " (" + *failure.Verdict.FailedReason + ")"
			}
			fmt.Fprintf(out, "%s %s: %s%s\n", color.RedString("FAIL"), title, failure.Error(), reason)
		default:
			fmt.Fprintf(out, "%s %s: %v\n", color.RedString("ERROR"), title, err)
		}
		return cli.Exit("", 1)
	}
}
