package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/terra-clan/careerprep/internal/cache"
	"github.com/terra-clan/careerprep/internal/career"
	"github.com/terra-clan/careerprep/internal/catalog"
	"github.com/terra-clan/careerprep/internal/config"
	"github.com/terra-clan/careerprep/internal/interview"
	"github.com/terra-clan/careerprep/internal/resume"
	"github.com/terra-clan/careerprep/internal/storage"
)

// MaxUploadSize limits request bodies, resume uploads included
const MaxUploadSize = 10 << 20

// requestTimeout bounds a request. Interview turns make one LLM call each,
// so this stays above the provider timeout.
const requestTimeout = 90 * time.Second

// Dependencies are the services the API serves
type Dependencies struct {
	Catalog     *catalog.Loader
	Career      *career.Service
	Resume      *resume.Analyzer
	Interviewer *interview.Interviewer
	Interviews  interview.Manager
	Repo        storage.Repository
	Cache       cache.Cache
}

// Server represents the HTTP API server
type Server struct {
	config      config.ServerConfig
	router      *chi.Mux
	catalog     *catalog.Loader
	career      *career.Service
	analyzer    *resume.Analyzer
	interviewer *interview.Interviewer
	interviews  interview.Manager
	repo        storage.Repository
	cache       cache.Cache
}

// NewServer creates a new API server
func NewServer(cfg config.ServerConfig, deps Dependencies) *Server {
	s := &Server{
		config:      cfg,
		catalog:     deps.Catalog,
		career:      deps.Career,
		analyzer:    deps.Resume,
		interviewer: deps.Interviewer,
		interviews:  deps.Interviews,
		repo:        deps.Repo,
		cache:       deps.Cache,
	}
	if s.cache == nil {
		s.cache = cache.Noop{}
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter configures all routes and middleware
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(limitBody(MaxUploadSize))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/questions", s.handleListQuestions)
			r.Get("/careers", s.handleListCareers)
			r.Get("/careers/{id}", s.handleGetCareer)
		})

		r.Post("/assessment", s.handleAssessment)
		r.Post("/chat", s.handleChat)
		r.Post("/resume/analyze", s.handleAnalyzeResume)
		r.Post("/interview/turn", s.handleInterviewTurn)

		r.Route("/interviews", func(r chi.Router) {
			r.Get("/", s.handleListInterviews)
			r.Post("/", s.handleStartInterview)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetInterview)
				r.Post("/answers", s.handleSubmitAnswer)
				r.Post("/retry", s.handleRetryTurn)
				r.Get("/result", s.handleGetResult)
				r.Post("/result", s.handleSaveResult)
			})
		})
	})

	s.router = r
}
