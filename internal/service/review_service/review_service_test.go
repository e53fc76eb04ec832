package review_service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/code_drill/drill/internal/drill_errors"
	"github.com/code_drill/drill/internal/service"
)

func TestMain(m *testing.M) {
	logrus.SetFormatter(&logrus.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
	})
	logrus.SetLevel(logrus.DebugLevel)
	service.InitializeServices("test-secret")
	os.Exit(m.Run())
}

func newReviewer(t *testing.T, handler http.HandlerFunc) *ReviewService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	r := &ReviewService{APIKey: "k", Model: "gemini-test", BaseURL: srv.URL}
	r.Start()
	return r
}

func TestReview(t *testing.T) {
	var prompt string
	r := newReviewer(t, func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/models/gemini-test:generateContent" || req.URL.Query().Get("key") != "k" {
			t.Errorf("unexpected request %s", req.URL)
		}
		var body geminiRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		prompt = body.Contents[0].Parts[0].Text
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"  **Code Rating**\n90/100  "}]}}]}`))
	})

	res, err := r.Review(context.Background(), ReviewRequest{
		Code:               "print(1)",
		Language:           "Python",
		ProblemTitle:       "One",
		ProblemDescription: "print one",
		TestCases:          []TestCase{{Input: "", Output: "1"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Response != "**Code Rating**\n90/100" {
		t.Errorf("unexpected response %q", res.Response)
	}
	if !res.Metadata.HasTestCases || !res.Metadata.HasProblemContext || res.Metadata.AnalysisType != "comprehensive" {
		t.Errorf("unexpected metadata %+v", res.Metadata)
	}
	for _, want := range []string{"**Problem Title:** One", "Test Case 1:", "```python\nprint(1)\n```"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt is missing %q", want)
		}
	}
}

func TestReviewErrors(t *testing.T) {
	unconfigured := &ReviewService{}
	unconfigured.Start()
	if _, err := unconfigured.Review(context.Background(), ReviewRequest{Code: "x", Language: "Go"}); !errors.Is(err, drill_errors.ErrInternal) {
		t.Errorf("unconfigured: expected ErrInternal, got %v", err)
	}
	if unconfigured.Health().GeminiConfigured {
		t.Error("health should report an unconfigured key")
	}

	r := newReviewer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"API key not valid"}}`))
	})
	if _, err := r.Review(context.Background(), ReviewRequest{Language: "Go"}); !errors.Is(err, drill_errors.ErrInvalidRequest) {
		t.Errorf("missing code: expected ErrInvalidRequest, got %v", err)
	}
	_, err := r.Review(context.Background(), ReviewRequest{Code: "x", Language: "Go"})
	if !errors.Is(err, drill_errors.ErrInvalidRequest) || !strings.Contains(err.Error(), "API key not valid") {
		t.Errorf("upstream error: got %v", err)
	}
}

func TestReviewEmptyCandidates(t *testing.T) {
	r := newReviewer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	})
	res, err := r.Review(context.Background(), ReviewRequest{Code: "x", Language: "Go"})
	if err != nil || res.Response != noResponseText {
		t.Errorf("got (%q, %v)", res.Response, err)
	}
}

func TestLanguages(t *testing.T) {
	r := &ReviewService{}
	list := r.Languages()
	if list.Count != len(list.Languages) || list.Count != 14 {
		t.Fatalf("unexpected language list %+v", list)
	}
	list.Languages[0] = "changed"
	if r.Languages().Languages[0] != "javascript" {
		t.Error("callers must not be able to change the language list")
	}
}
