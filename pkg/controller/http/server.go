package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/riskregister/pkg/usecase"
	"github.com/secmon-lab/riskregister/pkg/utils/logging"
)

const defaultVersion = "dev"

type Server struct {
	router  *chi.Mux
	uc      *usecase.UseCases
	version string
}

type Options func(*Server)

// WithVersion sets the version reported by the root endpoint
func WithVersion(version string) Options {
	return func(s *Server) {
		s.version = version
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:  r,
		uc:      uc,
		version: defaultVersion,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", rootHandler(s.version))
	r.Get("/health", healthHandler())

	r.Route("/api/v1", func(r chi.Router) {
		// Public auth endpoints
		r.Post("/auth/register", authRegisterHandler(uc.Auth))
		r.Post("/auth/login", authLoginHandler(uc.Auth))

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware(uc.Auth))

			r.Get("/auth/me", authMeHandler(uc.Auth))

			r.Route("/risks", func(r chi.Router) {
				r.Get("/", listRisksHandler(uc.Risk))
				r.Post("/", createRiskHandler(uc.Risk))
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", getRiskHandler(uc.Risk))
					r.Put("/", updateRiskHandler(uc.Risk))
					r.Delete("/", deleteRiskHandler(uc.Risk))
					r.Patch("/status", updateRiskStatusHandler(uc.Risk))

					r.Get("/mitigations", listMitigationsHandler(uc.Mitigation))
					r.Post("/mitigations", createMitigationHandler(uc.Mitigation))

					r.Get("/controls", listControlsHandler(uc.Framework))
					r.Post("/controls", linkControlHandler(uc.Framework))
				})
			})

			r.Route("/mitigations/{id}", func(r chi.Router) {
				r.Get("/", getMitigationHandler(uc.Mitigation))
				r.Put("/", updateMitigationHandler(uc.Mitigation))
				r.Delete("/", deleteMitigationHandler(uc.Mitigation))
			})

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", listCategoriesHandler(uc.Category))
				r.Post("/", createCategoryHandler(uc.Category))
				r.Get("/{id}", getCategoryHandler(uc.Category))
				r.Put("/{id}", updateCategoryHandler(uc.Category))
				r.Delete("/{id}", deleteCategoryHandler(uc.Category))
			})

			r.Get("/frameworks", listFrameworksHandler(uc.Framework))
			r.Post("/frameworks", createFrameworkHandler(uc.Framework))
			r.Delete("/controls/{id}", unlinkControlHandler(uc.Framework))

			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/summary", dashboardSummaryHandler(uc.Dashboard))
				r.Get("/upcoming-reviews", upcomingReviewsHandler(uc.Dashboard))
				r.Get("/overdue-reviews", overdueReviewsHandler(uc.Dashboard))
				r.Get("/calendar", calendarHandler(uc.Dashboard))
			})
			r.Get("/analytics", analyticsHandler(uc.Dashboard))

			r.Get("/audit/{entity_type}/{entity_id}", auditHandler(uc.Audit))

			r.Post("/ai/summarize", summarizeHandler(uc.Assist))
			r.Post("/ai/draft-mitigation", draftMitigationHandler(uc.Assist))

			r.Route("/board", func(r chi.Router) {
				r.Get("/", boardHandler(uc.Board))
				r.Post("/drag/start", dragStartHandler(uc.Board))
				r.Post("/drag/end", dragEndHandler(uc.Board))
			})
		})
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		logger := logging.Default().With("request_id", middleware.GetReqID(r.Context()))
		ctx := logging.With(r.Context(), logger)

		defer func() {
			logger.Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r.WithContext(ctx))
	})
}

func rootHandler(version string) http.HandlerFunc {
	type response struct {
		Message string `json:"message"`
		Version string `json:"version"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(r.Context(), w, http.StatusOK, response{Message: "Risk Register API", Version: version})
	}
}

func healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
