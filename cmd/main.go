package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klauspost/compress/gzhttp"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/code_drill/drill/internal/api"
	"github.com/code_drill/drill/internal/database"
	"github.com/code_drill/drill/internal/email"
	"github.com/code_drill/drill/internal/environment"
	"github.com/code_drill/drill/internal/judge"
	"github.com/code_drill/drill/internal/service"
	"github.com/code_drill/drill/internal/service/auth_service"
	"github.com/code_drill/drill/internal/service/playlist_service"
	"github.com/code_drill/drill/internal/service/problem_service"
	"github.com/code_drill/drill/internal/service/review_service"
	"github.com/code_drill/drill/internal/service/submission_service"
	"github.com/code_drill/drill/internal/service/user_service"
)

const (
	shutdownTimeout = 15 * time.Second
	mailWorkers     = 1
)

var (
	apiConfig *api.Api
)

func initDatabase(ctx context.Context, cfg environment.EnvConfig) *database.Store {
	if cfg.RunMigrations {
		log.Info("running database migrations")
		if err := database.Migrate(ctx, cfg.DBURL); err != nil {
			panic(err)
		}
	}

	// create a connection pool to the database
	pool, err := pgxpool.New(ctx, cfg.DBURL)
	if err != nil {
		panic(err)
	}
	return database.NewStore(pool)
}

func initJudge(ctx context.Context, cfg environment.EnvConfig) (*judge.Judge, *judge.RunRegistry) {
	languages := judge.DefaultLanguages()
	if cfg.Judge.LanguagesFile != "" {
		var err error
		if languages, err = judge.LoadLanguages(cfg.Judge.LanguagesFile); err != nil {
			panic(err)
		}
		log.Infof("loaded language table from %s", cfg.Judge.LanguagesFile)
	}

	client, err := judge.NewClient(judge.ClientConfig{
		BaseURL:      cfg.Judge.BaseURL,
		PollInterval: cfg.Judge.PollInterval,
		PollTimeout:  cfg.Judge.PollTimeout,
		HTTPTimeout:  cfg.Judge.HTTPTimeout,
	})
	if err != nil {
		panic(err)
	}

	var alerter judge.Alerter
	if cfg.Mail.Enabled() {
		es := &email.EmailService{Config: cfg.Mail}
		es.Start(ctx, mailWorkers)
		alerter = es
	} else {
		log.Warn("alert mails are not configured, judge outages are only logged")
	}

	runs := judge.NewRunRegistry()
	return judge.NewJudge(client, languages, runs, alerter), runs
}

func initApi(ctx context.Context, cfg environment.EnvConfig) *api.Api {
	log.Info("initializing api config")
	db := initDatabase(ctx, cfg)
	j, runs := initJudge(ctx, cfg)

	us := &user_service.UserService{DB: db}
	if err := us.InitializeUserService(); err != nil {
		panic(err)
	}
	log.Info("user service created")

	ps := &problem_service.ProblemService{
		DB:                db,
		Judge:             j,
		UserServiceConfig: us,
	}
	log.Info("problem service created")

	ss := &submission_service.SubmissionService{
		DB:             db,
		Judge:          j,
		ProblemService: ps,
	}
	ss.Start()

	rs := &review_service.ReviewService{
		APIKey: cfg.GeminiAPIKey,
		Model:  cfg.GeminiModel,
	}
	rs.Start()

	return &api.Api{
		AuthServiceConfig:       &auth_service.AuthService{UserConfig: us},
		ProblemServiceConfig:    ps,
		SubmissionServiceConfig: ss,
		PlaylistServiceConfig:   &playlist_service.PlaylistService{DB: db},
		ReviewServiceConfig:     rs,
		Runs:                    runs,
		CookieSecure:            cfg.CookieSecure,
	}
}

func setCors(router *chi.Mux, origins []string) {
	router.Use(
		cors.Handler(
			cors.Options{
				AllowedOrigins:   origins,
				AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
				AllowedHeaders:   []string{"*"},
				AllowCredentials: true,
				ExposedHeaders:   []string{"Link"},
				MaxAge:           300,
			},
		),
	)
	log.Info("cors options has been set")
}

func main() {
	cfg, err := environment.ReadEnvConfig()
	if err != nil {
		log.Fatalf("cannot read configuration, %v", err)
	}
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	service.InitializeServices(cfg.JWTSecret)
	apiConfig = initApi(ctx, cfg)

	// initialize a new router
	router := chi.NewRouter()
	setCors(router, cfg.CorsOrigins)

	// mount v1 router
	router.Mount("/api/v1", NewV1Router())
	log.Info("v1 router has been mounted")

	srv := &http.Server{
		Handler:           gzhttp.GzipHandler(router),
		Addr:              cfg.Address(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("server stopped with error, %v", err)
	}
	log.Info("server stopped")
}
