package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	gorillaws "github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/andriandrian/lifeline-admin/internal/auth"
	"github.com/andriandrian/lifeline-admin/internal/config"
	"github.com/andriandrian/lifeline-admin/internal/database"
	"github.com/andriandrian/lifeline-admin/internal/metrics"
	"github.com/andriandrian/lifeline-admin/internal/storage"
	"github.com/andriandrian/lifeline-admin/internal/websocket"
)

type Server struct {
	config   *config.Config
	store    *database.Store
	auth     *auth.Manager
	storage  *storage.LocalStorage
	wsHub    *websocket.Hub
	upgrader *gorillaws.Upgrader
	log      logrus.FieldLogger
	metrics  *metrics.Metrics
}

func NewServer(
	cfg *config.Config,
	store *database.Store,
	authManager *auth.Manager,
	storage *storage.LocalStorage,
	wsHub *websocket.Hub,
	log logrus.FieldLogger,
	m *metrics.Metrics,
) *Server {
	return &Server{
		config:   cfg,
		store:    store,
		auth:     authManager,
		storage:  storage,
		wsHub:    wsHub,
		upgrader: websocket.NewUpgrader(cfg.Server.AllowedOrigins),
		log:      log,
		metrics:  m,
	}
}

func (s *Server) cookieOptions() auth.CookieOptions {
	return auth.CookieOptions{Domain: s.config.Cookie.Domain, Secure: s.config.Cookie.Secure}
}

// Routes builds the full HTTP surface except /metrics, which main mounts on its registry.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Refresh-Token"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.Get("/health", s.HealthCheckHandler)
	r.Get("/ws", s.ServeWsHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/login", s.LoginHandler)
		r.Get("/refreshToken", s.RefreshTokenHandler)
		r.Post("/logout", s.LogoutHandler)

		r.Group(func(r chi.Router) {
			r.Use(s.AuthMiddleware)
			r.Get("/me", s.GetCurrentUserHandler)
			r.Get("/events", s.GetEventsHandler)
			r.Get("/images/{key}", s.GetImageHandler)

			mountResource(r, s, database.Users, nil)
			mountResource(r, s, database.Hospitals, nil)
			mountResource(r, s, database.DonationRequests, func(r chi.Router) {
				r.Patch("/updateStatus/{id}", s.UpdateDonationRequestStatusHandler)
			})
			mountResource(r, s, database.Donations, func(r chi.Router) {
				r.Patch("/updateStatus/{id}", s.UpdateDonationStatusHandler)
			})
			mountResource(r, s, database.News, nil, withImage())
			mountResource(r, s, database.Events, nil, withImage())
			mountResource(r, s, database.Rewards, nil)
			mountResource(r, s, database.FAQs, nil)
		})
	})

	return r
}

type healthResponse struct {
	Status    string `json:"status" example:"ok"`
	Database  string `json:"database" example:"ok"`
	Websocket int    `json:"websocket_clients" example:"2"`
}

// @Summary      Health check
// @Description  Reports whether the server can reach its database.
// @Tags         health
// @Produce      json
// @Success      200  {object}  healthResponse
// @Failure      503  {object}  healthResponse
// @Router       /health [get]
func (s *Server) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Database: "ok", Websocket: s.wsHub.Connected()}
	code := http.StatusOK
	if err := s.store.Ping(r.Context()); err != nil {
		s.log.WithError(err).Error("health check: database unreachable")
		resp.Status, resp.Database = "degraded", "unreachable"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}
