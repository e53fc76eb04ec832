package main

import (
	"github.com/go-chi/chi/v5"

	"github.com/code_drill/drill/middleware"
)

func NewV1Router() *chi.Mux {
	v1 := chi.NewRouter()

	v1.Get("/healthz", apiConfig.HandlerReadiness)

	// auth layer
	v1.Route("/auth", func(r chi.Router) {
		r.Post("/register", apiConfig.HandlerRegister)
		r.Post("/login", apiConfig.HandlerLogin)
		r.Post("/logout", middleware.JWTMiddleware(apiConfig.HandlerLogout))
		r.Get("/check", middleware.JWTMiddleware(apiConfig.HandlerCheck))
	})

	// problems layer
	v1.Route("/problems", func(r chi.Router) {
		r.Post("/create-problem", middleware.JWTMiddleware(apiConfig.HandlerCreateProblem))
		r.Get("/get-all-problems", middleware.JWTMiddleware(apiConfig.HandlerGetAllProblems))
		r.Get("/get-problem/{id}", middleware.JWTMiddleware(apiConfig.HandlerGetProblemById))
		r.Put("/update-problem/{id}", middleware.JWTMiddleware(apiConfig.HandlerUpdateProblem))
		r.Delete("/delete-problem/{id}", middleware.JWTMiddleware(apiConfig.HandlerDeleteProblem))
		r.Get("/get-solved-problems", middleware.JWTMiddleware(apiConfig.HandlerGetSolvedProblems))
	})

	// judging
	v1.Route("/execute-code", func(r chi.Router) {
		r.Post("/", middleware.JWTMiddleware(apiConfig.HandlerExecuteCode))
		r.Post("/run", middleware.JWTMiddleware(apiConfig.HandlerRunCode))
	})

	v1.Route("/submission", func(r chi.Router) {
		r.Get("/get-all-submissions", middleware.JWTMiddleware(apiConfig.HandlerGetAllSubmissions))
		r.Get("/get-submission/{problemId}", middleware.JWTMiddleware(apiConfig.HandlerGetSubmissionsForProblem))
		r.Get("/get-submissions-count/{problemId}", middleware.JWTMiddleware(apiConfig.HandlerGetSubmissionsCount))
		r.Get("/get-user-stats", middleware.JWTMiddleware(apiConfig.HandlerGetUserStats))
	})

	v1.Route("/playlist", func(r chi.Router) {
		r.Get("/", middleware.JWTMiddleware(apiConfig.HandlerGetPlaylists))
		r.Post("/create-playlist", middleware.JWTMiddleware(apiConfig.HandlerCreatePlaylist))
		r.Get("/{playlistId}", middleware.JWTMiddleware(apiConfig.HandlerGetPlaylist))
		r.Post("/{playlistId}/add-problem", middleware.JWTMiddleware(apiConfig.HandlerAddProblemsToPlaylist))
		r.Delete("/{playlistId}/remove-problem", middleware.JWTMiddleware(apiConfig.HandlerRemoveProblemsFromPlaylist))
		r.Delete("/{playlistId}", middleware.JWTMiddleware(apiConfig.HandlerDeletePlaylist))
	})

	// ai review
	v1.Route("/ai", func(r chi.Router) {
		r.Post("/generate", apiConfig.HandlerGenerateReview)
		r.Get("/health", apiConfig.HandlerReviewHealth)
		r.Get("/languages", apiConfig.HandlerReviewLanguages)
	})

	return v1
}
