package http

import (
	"context"
	"net/http"
	"time"

	_ "github.com/DRSN-tech/onlinestore/docs" // Импорт сгенерированных файлов
	"github.com/DRSN-tech/onlinestore/internal/cfg"
	"github.com/DRSN-tech/onlinestore/internal/usecase"
	"github.com/DRSN-tech/onlinestore/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

const healthTimeout = 2 * time.Second

// HealthCheck проверяет одну зависимость сервиса.
type HealthCheck func(ctx context.Context) error

type Router struct {
	router *chi.Mux
	logger logger.Logger
	cfg    *cfg.HTTPConfig
	auth   *cfg.AuthCfg
}

func NewRouter(router *chi.Mux, logger logger.Logger, httpCfg *cfg.HTTPConfig, authCfg *cfg.AuthCfg) *Router {
	return &Router{router: router, logger: logger, cfg: httpCfg, auth: authCfg}
}

func (r *Router) Init(prUC usecase.ProductUC, cartUC usecase.CartUC, authUC usecase.AuthUC, checks map[string]HealthCheck) {
	r.router.Use(middleware.RequestID)
	r.router.Use(middleware.RealIP)
	r.router.Use(requestLogger(r.logger))
	r.router.Use(middleware.Recoverer)
	r.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   r.cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(r.cfg.SwaggerURL), // ссылка на JSON
	))
	r.router.Get("/health", healthHandler(checks))

	authn := NewAuthenticator(authUC, r.logger)

	r.router.Route("/api/v1", func(v1 chi.Router) {
		registerAuthRoutes(v1, NewAuthHandler(authUC, r.logger), authn)
		registerProductRoutes(v1, NewProductHandler(prUC, r.logger), authn, r.auth.AdminOnlyProductWrites)
		registerCartRoutes(v1, NewCartHandler(cartUC, r.logger), authn)
	})
}

func registerAuthRoutes(router chi.Router, h *AuthHandler, authn *Authenticator) {
	router.Route("/auth", func(ar chi.Router) {
		ar.Post("/register", h.register)
		ar.Post("/login", h.login)
		ar.Post("/google", h.googleLogin)
		ar.With(authn.RequireUser).Get("/me", h.me)
	})
}

func registerProductRoutes(router chi.Router, h *ProductHandler, authn *Authenticator, adminOnly bool) {
	router.Route("/products", func(pr chi.Router) {
		pr.Get("/", h.listProducts)
		pr.Get("/categories", h.getCategories)
		pr.Get("/{id}", h.getProduct)

		pr.Group(func(user chi.Router) {
			user.Use(authn.RequireUser)
			user.Post("/{id}/rate", h.rateProduct)

			user.Group(func(writer chi.Router) {
				if adminOnly {
					writer.Use(RequireAdmin)
				}
				writer.Post("/", h.createProduct)
				writer.Post("/images", h.uploadImages)
				writer.Put("/{id}", h.updateProduct)
				writer.Delete("/{id}", h.deleteProduct)
			})
		})
	})
}

func registerCartRoutes(router chi.Router, h *CartHandler, authn *Authenticator) {
	router.Route("/cart", func(cr chi.Router) {
		cr.Use(authn.RequireUser)
		cr.Get("/", h.getCart)
		cr.Delete("/", h.deleteCart)
		cr.Post("/add", h.addItem)
		cr.Put("/update/{productId}", h.updateQuantity)
		cr.Delete("/remove/{productId}", h.removeItem)
		cr.Delete("/clear", h.clearCart)
		cr.Get("/{cartId}", h.getCartByID)
	})
}

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// healthHandler
//
//	@Summary	Проверка состояния сервиса
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	HealthResponse
//	@Failure	503	{object}	HealthResponse
//	@Router		/health [get]
func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		res := HealthResponse{Status: "ok", Checks: make(map[string]string, len(checks))}
		status := http.StatusOK
		for name, check := range checks {
			if err := check(ctx); err != nil {
				res.Checks[name] = err.Error()
				res.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			res.Checks[name] = "ok"
		}

		WriteSuccess(w, status, res)
	}
}
