package handler

import (
	"net/http"

	_ "cookie-auth-server/docs"
	"cookie-auth-server/internal/transport"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type RouterOptions struct {
	AllowedOrigins []string
	CSRFHeader     string
}

// NewRouter : PostProcess и Resolve выполняются для каждого запроса,
// RequireIdentity и RequireCSRF подключаются только там, где нужны
func NewRouter(auth *AuthenticationHandler, users *UserHandler, pipeline *transport.Pipeline, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", opts.CSRFHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Use(pipeline.PostProcess)
	r.Use(pipeline.Resolve)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	setupAuthRoutes(r, auth, pipeline)
	setupUserRoutes(r, users, pipeline)

	return r
}

func setupAuthRoutes(r chi.Router, h *AuthenticationHandler, pipeline *transport.Pipeline) {
	r.Post("/login/", h.Login)
	r.Post("/token/refresh/", h.RefreshToken)
	r.With(pipeline.RequireCSRF).Post("/logout/", h.Logout)
}

func setupUserRoutes(r chi.Router, h *UserHandler, pipeline *transport.Pipeline) {
	r.Post("/register/", h.RegisterUser)

	r.Group(func(r chi.Router) {
		r.Use(pipeline.RequireIdentity)
		r.Get("/me/", h.GetMe)
		r.With(pipeline.RequireCSRF).Patch("/me/", h.UpdateMe)
	})
}
