package api

import (
	"github.com/code_drill/drill/internal/judge"
	"github.com/code_drill/drill/internal/service/auth_service"
	"github.com/code_drill/drill/internal/service/playlist_service"
	"github.com/code_drill/drill/internal/service/problem_service"
	"github.com/code_drill/drill/internal/service/review_service"
	"github.com/code_drill/drill/internal/service/submission_service"
)

type Api struct {
	AuthServiceConfig       *auth_service.AuthService
	ProblemServiceConfig    *problem_service.ProblemService
	SubmissionServiceConfig *submission_service.SubmissionService
	PlaylistServiceConfig   *playlist_service.PlaylistService
	ReviewServiceConfig     *review_service.ReviewService
	Runs                    *judge.RunRegistry
	// marks the session cookie Secure
	CookieSecure bool
}

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
