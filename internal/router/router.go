package router

import (
	"net/http"

	"github.com/BerylCAtieno/resume-analyzer-api/internal/handlers"
	"github.com/BerylCAtieno/resume-analyzer-api/internal/middleware"
	"github.com/BerylCAtieno/resume-analyzer-api/internal/services"
	"github.com/BerylCAtieno/resume-analyzer-api/internal/utils"

	"github.com/gorilla/mux"
)

type Options struct {
	AllowedOrigins []string
	MaxFileSize    int64
	ReadyChecks    map[string]handlers.Checker
}

func NewRouter(resumeService services.ResumeService, opts Options, logger *utils.Logger) http.Handler {
	r := mux.NewRouter()

	// Middlewares
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))

	resumeHandler := handlers.NewResumeHandler(resumeService, opts.MaxFileSize, logger)
	healthHandler := handlers.NewHealthHandler(opts.ReadyChecks, logger)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", healthHandler.Health).Methods(http.MethodGet)
	api.HandleFunc("/ready", healthHandler.Ready).Methods(http.MethodGet)

	api.HandleFunc("/analyze-resume", resumeHandler.AnalyzeResume).Methods(http.MethodPost)
	api.HandleFunc("/analysis-status/{identity}", resumeHandler.GetAnalysisStatus).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondError(w, logger, utils.NewNotFoundError("Route not found"))
	})

	// CORS wraps the router so preflight requests are answered before
	// route matching rejects the OPTIONS method.
	return middleware.CORS(opts.AllowedOrigins)(r)
}
