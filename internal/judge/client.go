package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/code_drill/drill/internal/drill_errors"
)

const (
	DefaultPollInterval = time.Second
	DefaultPollTimeout  = 30 * time.Second
	DefaultHTTPTimeout  = 10 * time.Second

	batchPath        = "/submissions/batch"
	resultFields     = "token,status,time,memory,stdout,stderr,compile_output,message"
	maxResponseBytes = 8 << 20
	maxErrorBodyLog  = 1 << 10
)

var errPollBudgetExceeded = errors.New("poll budget exceeded")

type ClientConfig struct {
	BaseURL      string
	PollInterval time.Duration
	PollTimeout  time.Duration
	HTTPTimeout  time.Duration
	// optional, overrides HTTPTimeout
	HTTPClient *http.Client
}

// Client is a Judge0 batch client. It holds no per-run state and is safe
// for concurrent use by many judging runs.
type Client struct {
	baseURL      *url.URL
	httpClient   *http.Client
	pollInterval time.Duration
	pollTimeout  time.Duration
	logger       *logrus.Entry
}

func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w, judge base url is empty", drill_errors.ErrInvalidRequest)
	}
	parsed, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("%w, cannot parse judge base url %s, %w", drill_errors.ErrInvalidRequest, cfg.BaseURL, err)
	}

	c := &Client{
		baseURL:      parsed,
		httpClient:   cfg.HTTPClient,
		pollInterval: cfg.PollInterval,
		pollTimeout:  cfg.PollTimeout,
		logger: logrus.WithFields(logrus.Fields{
			"from": "judge-client",
		}),
	}
	if c.pollInterval <= 0 {
		c.pollInterval = DefaultPollInterval
	}
	if c.pollTimeout <= 0 {
		c.pollTimeout = DefaultPollTimeout
	}
	if c.httpClient == nil {
		timeout := cfg.HTTPTimeout
		if timeout <= 0 {
			timeout = DefaultHTTPTimeout
		}
		c.httpClient = &http.Client{Timeout: timeout}
	}
	return c, nil
}

// SubmitBatch sends every request to the judge in a single call. The
// returned tokens have the same length and order as requests. Any failure
// aborts the whole batch.
func (c *Client) SubmitBatch(ctx context.Context, requests []SubmissionRequest) ([]Token, error) {
	if len(requests) == 0 {
		return nil, fmt.Errorf("%w, cannot submit an empty batch", drill_errors.ErrInvalidRequest)
	}

	body, err := json.Marshal(struct {
		Submissions []SubmissionRequest `json:"submissions"`
	}{Submissions: requests})
	if err != nil {
		return nil, fmt.Errorf("%w, cannot marshal batch of %d submissions, %w", drill_errors.ErrInternal, len(requests), err)
	}

	endpoint := c.endpoint(url.Values{"base64_encoded": {"false"}})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w, failed to create http request with ctx: %w", drill_errors.ErrInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")

	var created []struct {
		Token Token `json:"token"`
	}
	if err = c.do(req, &created); err != nil {
		return nil, err
	}

	if len(created) != len(requests) {
		err = fmt.Errorf(
			"%w, submitted %d test cases but judge returned %d tokens",
			drill_errors.ErrJudgeUnavailable, len(requests), len(created),
		)
		c.logger.Error(err)
		return nil, err
	}
	tokens := make([]Token, len(created))
	for i, res := range created {
		if res.Token == "" {
			err = fmt.Errorf(
				"%w, judge rejected test case %d of the batch",
				drill_errors.ErrJudgeUnavailable, i,
			)
			c.logger.Error(err)
			return nil, err
		}
		tokens[i] = res.Token
	}

	c.logger.Debugf("submitted batch of %d test cases", len(tokens))
	return tokens, nil
}

// PollBatchResults queries the judge until no submission is queued or
// processing. Results keep the order of tokens. It fails with
// ErrJudgeTimeout once the poll budget is spent and with ErrRunAbandoned
// when ctx is cancelled by the caller.
func (c *Client) PollBatchResults(ctx context.Context, tokens []Token) ([]JudgeResult, error) {
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w, no tokens to poll", drill_errors.ErrInvalidRequest)
	}

	pollCtx, cancel := context.WithTimeoutCause(ctx, c.pollTimeout, errPollBudgetExceeded)
	defer cancel()

	for round := 1; ; round++ {
		results, err := c.fetchBatch(pollCtx, tokens)
		if err != nil {
			if pollCtx.Err() != nil {
				return nil, c.pollStopped(pollCtx, round)
			}
			return nil, err
		}

		pending := 0
		for _, res := range results {
			if res.Status.Pending() {
				pending++
			}
		}
		if pending == 0 {
			c.logger.Debugf("all %d submissions finished after %d poll rounds", len(results), round)
			return results, nil
		}
		c.logger.Debugf("poll round %d: %d of %d submissions pending", round, pending, len(results))

		wait := time.NewTimer(c.pollInterval)
		select {
		case <-pollCtx.Done():
			wait.Stop()
			return nil, c.pollStopped(pollCtx, round)
		case <-wait.C:
		}
	}
}

func (c *Client) pollStopped(pollCtx context.Context, round int) error {
	if errors.Is(context.Cause(pollCtx), errPollBudgetExceeded) {
		err := fmt.Errorf(
			"%w, submissions still pending after %v (%d poll rounds)",
			drill_errors.ErrJudgeTimeout, c.pollTimeout, round,
		)
		c.logger.Error(err)
		return err
	}
	err := fmt.Errorf("%w, stopped polling after %d rounds, %w", drill_errors.ErrRunAbandoned, round, pollCtx.Err())
	c.logger.Warn(err)
	return err
}

func (c *Client) fetchBatch(ctx context.Context, tokens []Token) ([]JudgeResult, error) {
	joined := make([]string, len(tokens))
	for i, t := range tokens {
		joined[i] = string(t)
	}
	endpoint := c.endpoint(url.Values{
		"tokens":         {strings.Join(joined, ",")},
		"base64_encoded": {"false"},
		"fields":         {resultFields},
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w, failed to create http request with ctx: %w", drill_errors.ErrInternal, err)
	}

	var batch struct {
		Submissions []*JudgeResult `json:"submissions"`
	}
	if err = c.do(req, &batch); err != nil {
		return nil, err
	}

	return orderResults(tokens, batch.Submissions)
}

// orderResults lines results up with tokens. The judge answers in token
// order, but when it echoes tokens they are used to make sure.
func orderResults(tokens []Token, submissions []*JudgeResult) ([]JudgeResult, error) {
	if len(submissions) != len(tokens) {
		return nil, fmt.Errorf(
			"%w, polled %d tokens but judge returned %d results",
			drill_errors.ErrJudgeUnavailable, len(tokens), len(submissions),
		)
	}

	echoed := true
	for i, sub := range submissions {
		if sub == nil {
			return nil, fmt.Errorf("%w, judge has no submission for token %s", drill_errors.ErrJudgeUnavailable, tokens[i])
		}
		if sub.Token == "" {
			echoed = false
		}
	}

	results := make([]JudgeResult, len(tokens))
	if !echoed {
		for i, sub := range submissions {
			results[i] = *sub
		}
		return results, nil
	}

	byToken := make(map[Token]*JudgeResult, len(submissions))
	for _, sub := range submissions {
		byToken[sub.Token] = sub
	}
	for i, token := range tokens {
		sub, ok := byToken[token]
		if !ok {
			return nil, fmt.Errorf("%w, judge did not return a result for token %s", drill_errors.ErrJudgeUnavailable, token)
		}
		results[i] = *sub
	}
	return results, nil
}

func (c *Client) do(req *http.Request, out any) error {
	res, err := c.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf(
			"%w, no response from %s %s",
			drill_errors.WrapIPCError(err), req.Method, req.URL.Path,
		)
		c.logger.Error(err)
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBodyLog))
		err = fmt.Errorf(
			"%w, %s %s responded with %d: %s",
			drill_errors.ErrJudgeUnavailable, req.Method, req.URL.Path, res.StatusCode, strings.TrimSpace(string(snippet)),
		)
		c.logger.Error(err)
		return err
	}

	if err = json.NewDecoder(io.LimitReader(res.Body, maxResponseBytes)).Decode(out); err != nil {
		err = fmt.Errorf(
			"%w, cannot decode response of %s %s to %T, %w",
			drill_errors.ErrJudgeUnavailable, req.Method, req.URL.Path, out, err,
		)
		c.logger.Error(err)
		return err
	}
	return nil
}

func (c *Client) endpoint(query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + batchPath
	u.RawQuery = query.Encode()
	return u.String()
}
