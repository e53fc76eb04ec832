package review_service

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultHTTPTimeout   = 60 * time.Second
	noResponseText       = "No response generated"
)

type ReviewService struct {
	APIKey string
	Model  string
	// BaseURL defaults to DefaultGeminiBaseURL
	BaseURL    string
	HTTPClient *http.Client

	logger *logrus.Entry
}

type Example struct {
	Input       string `json:"input"`
	Output      string `json:"output"`
	Explanation string `json:"explanation,omitempty"`
}

type TestCase struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

type ReviewRequest struct {
	Code               string     `json:"code" validate:"required"`
	Language           string     `json:"language" validate:"required"`
	Description        string     `json:"description"`
	Prompt             string     `json:"prompt"`
	ProblemTitle       string     `json:"problemTitle"`
	ProblemDescription string     `json:"problemDescription"`
	ProblemConstraints string     `json:"problemConstraints"`
	ProblemExamples    []Example  `json:"problemExamples"`
	TestCases          []TestCase `json:"testCases"`
}

type ReviewMetadata struct {
	HasTestCases      bool   `json:"hasTestCases"`
	HasProblemContext bool   `json:"hasProblemContext"`
	Language          string `json:"language"`
	AnalysisType      string `json:"analysisType"`
}

type ReviewResponse struct {
	Response string         `json:"response"`
	Metadata ReviewMetadata `json:"metadata"`
}

var reviewLanguages = []string{
	"javascript", "typescript", "python", "java", "cpp", "c++", "c",
	"csharp", "php", "ruby", "go", "rust", "swift", "kotlin",
}

type LanguageList struct {
	Languages []string `json:"languages"`
	Count     int      `json:"count"`
}

type Health struct {
	Status           string    `json:"status"`
	GeminiConfigured bool      `json:"geminiConfigured"`
	Timestamp        time.Time `json:"timestamp"`
}

// wire types of the generateContent endpoint
type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiSafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
	SafetySettings   []geminiSafetySetting  `json:"safetySettings"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}
