package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/code_drill/drill/internal/judge"
)

func TestMain(m *testing.M) {
	logrus.SetFormatter(&logrus.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
	})
	logrus.SetLevel(logrus.DebugLevel)
	color.NoColor = true
	os.Exit(m.Run())
}

const problemTOML = `
title = "echo"

[[testcases]]
input = "1"
output = "1"

[[testcases]]
input = "2"
output = "2"

[[solutions]]
language = "python"
code = "print(input())"

[[solutions]]
language = "JAVA"
code = "wrong"
`

func writeProblem(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "problem.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// echoJudge accepts everything except sources equal to "wrong".
func echoJudge(t *testing.T) string {
	t.Helper()
	var mu sync.Mutex
	subs := map[string]judge.SubmissionRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		if r.Method == http.MethodPost {
			var body struct {
				Submissions []judge.SubmissionRequest `json:"submissions"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			tokens := make([]map[string]string, len(body.Submissions))
			for i, s := range body.Submissions {
				token := strconv.Itoa(len(subs))
				subs[token] = s
				tokens[i] = map[string]string{"token": token}
			}
			json.NewEncoder(w).Encode(tokens)
			return
		}
		var results []map[string]any
		for _, token := range strings.Split(r.URL.Query().Get("tokens"), ",") {
			s := subs[token]
			status := judge.StatusAccepted
			if s.SourceCode == "wrong" {
				status = judge.StatusWrongAnswer
			}
			results = append(results, map[string]any{
				"token":  token,
				"status": map[string]any{"id": status, "description": "done"},
				"stdout": s.ExpectedOutput,
			})
		}
		json.NewEncoder(w).Encode(map[string]any{"submissions": results})
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestReadProblemFile(t *testing.T) {
	solutions, cases, title, err := readProblemFile(writeProblem(t, problemTOML))
	if err != nil {
		t.Fatal(err)
	}
	if title != "echo" || len(solutions) != 2 || len(cases) != 2 {
		t.Fatalf("got %q, %d solutions, %d cases", title, len(solutions), len(cases))
	}
	if solutions[1].Language != "JAVA" || cases[1].ExpectedOutput != "2" {
		t.Errorf("unexpected contents %+v %+v", solutions, cases)
	}

	if _, _, _, err = readProblemFile(writeProblem(t, "title = \"x\"\n")); err == nil {
		t.Error("expected an error for a file without testcases")
	}
}

func runVerify(t *testing.T, judgeURL, path string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := &cli.Command{
		Name:  "drillctl",
		Flags: []cli.Flag{&cli.StringFlag{Name: "languages-file"}},
		Commands: []*cli.Command{{
			Name: "verify",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "judge"},
				&cli.DurationFlag{Name: "timeout", Value: time.Second},
				&cli.DurationFlag{Name: "poll-interval", Value: time.Millisecond},
			},
			Action: verifyAction(&out),
		}},
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}
	err := cmd.Run(context.Background(), []string{"drillctl", "verify", "--judge", judgeURL, path})
	return out.String(), err
}

func TestVerify(t *testing.T) {
	url := echoJudge(t)

	out, err := runVerify(t, url, writeProblem(t, problemTOML))
	if err == nil {
		t.Fatal("expected a failing exit for the wrong JAVA solution")
	}
	if !strings.Contains(out, "FAIL echo: Testcase 1 failed for language JAVA") {
		t.Errorf("unexpected output %q", out)
	}

	passing := strings.Replace(problemTOML, `code = "wrong"`, `code = "class Main {}"`, 1)
	out, err = runVerify(t, url, writeProblem(t, passing))
	if err != nil {
		t.Fatalf("expected success, got %v (%s)", err, out)
	}
	if !strings.HasPrefix(out, "PASS echo: 2 solution(s) x 2 testcase(s)") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestLanguages(t *testing.T) {
	var out bytes.Buffer
	cmd := &cli.Command{
		Name:     "drillctl",
		Flags:    []cli.Flag{&cli.StringFlag{Name: "languages-file"}},
		Commands: []*cli.Command{{Name: "languages", Action: languagesAction(&out)}},
	}
	if err := cmd.Run(context.Background(), []string{"drillctl", "languages"}); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"PYTHON", "71", "JAVA"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output is missing %q:\n%s", want, out.String())
		}
	}
}
