package review_service

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
	"github.com/code_drill/drill/internal/service"
)

func (r *ReviewService) Start() {
	r.logger = logrus.WithFields(logrus.Fields{
		"from": "review service",
	})
	if r.BaseURL == "" {
		r.BaseURL = DefaultGeminiBaseURL
	}
	if r.HTTPClient == nil {
		r.HTTPClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	if r.APIKey == "" {
		r.logger.Warn("gemini api key is not configured, code review is disabled")
	}
}

func (r *ReviewService) Configured() bool {
	return r.APIKey != ""
}

func (r *ReviewService) Health() Health {
	return Health{
		Status:           "healthy",
		GeminiConfigured: r.Configured(),
		Timestamp:        time.Now().UTC(),
	}
}

// Languages lists the languages the reviewer is prompted with.
func (r *ReviewService) Languages() LanguageList {
	languages := make([]string, len(reviewLanguages))
	copy(languages, reviewLanguages)
	return LanguageList{Languages: languages, Count: len(languages)}
}

// Review asks the model for a structured review of the submitted code.
func (r *ReviewService) Review(ctx context.Context, req ReviewRequest) (ReviewResponse, error) {
	if !r.Configured() {
		return ReviewResponse{}, fmt.Errorf("%w, gemini api key is not configured", drill_errors.ErrInternal)
	}
	if strings.TrimSpace(req.Code) == "" || strings.TrimSpace(req.Language) == "" {
		return ReviewResponse{}, fmt.Errorf("%w, code and language are required", drill_errors.ErrInvalidRequest)
	}
	if err := service.ValidateInput(req); err != nil {
		return ReviewResponse{}, err
	}

	r.logger.WithFields(logrus.Fields{
		"code_length":    len(req.Code),
		"language":       req.Language,
		"problem_title":  req.ProblemTitle,
		"has_test_cases": len(req.TestCases) > 0,
	}).Debug("review requested")

	problemContext := buildProblemContext(req)
	text, err := r.generate(ctx, buildPrompt(req, problemContext))
	if err != nil {
		return ReviewResponse{}, err
	}

	return ReviewResponse{
		Response: text,
		Metadata: ReviewMetadata{
			HasTestCases:      len(req.TestCases) > 0,
			HasProblemContext: req.ProblemTitle != "" && req.ProblemDescription != "",
			Language:          req.Language,
			AnalysisType:      "comprehensive",
		},
	}, nil
}

func (r *ReviewService) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     0.3,
			TopK:            40,
			TopP:            0.95,
			MaxOutputTokens: 4096,
		},
		SafetySettings: []geminiSafetySetting{
			{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
			{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w, cannot marshal review request, %w", drill_errors.ErrInternal, err)
	}

	endpoint := fmt.Sprintf(
		"%s/models/%s:generateContent?key=%s",
		strings.TrimRight(r.BaseURL, "/"),
		url.PathEscape(r.Model),
		url.QueryEscape(r.APIKey),
	)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w, cannot build review request, %w", drill_errors.ErrInternal, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.HTTPClient.Do(httpReq)
	if err != nil {
		// the key is part of the url, never log it
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		r.logger.Errorf("gemini request failed, %v", err)
		return "", fmt.Errorf("%w, something went wrong while calling gemini", drill_errors.ErrInternal)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w, cannot read gemini response, %w", drill_errors.ErrHttpResponse, err)
	}
	var decoded geminiResponse
	if err = json.Unmarshal(raw, &decoded); err != nil {
		r.logger.Errorf("undecodable gemini response (status %d), %v", resp.StatusCode, err)
		return "", fmt.Errorf("%w, undecodable gemini response", drill_errors.ErrInternal)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := "gemini api request failed"
		if decoded.Error != nil && decoded.Error.Message != "" {
			msg = decoded.Error.Message
		}
		r.logger.Errorf("gemini responded with status %d, %s", resp.StatusCode, msg)
		return "", fmt.Errorf("%w, %s", drill_errors.ErrInvalidRequest, msg)
	}

	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 ||
		decoded.Candidates[0].Content.Parts[0].Text == "" {
		return noResponseText, nil
	}
	return strings.TrimSpace(decoded.Candidates[0].Content.Parts[0].Text), nil
}
