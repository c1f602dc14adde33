package routes

import (
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utulok/shelter-backend/api/controllers"
	webhookcontrollers "github.com/utulok/shelter-backend/api/controllers/webhooks"
	"github.com/utulok/shelter-backend/api/middleware"
	"github.com/utulok/shelter-backend/internal/admin"
	"github.com/utulok/shelter-backend/internal/attachments"
	"github.com/utulok/shelter-backend/internal/auth"
	"github.com/utulok/shelter-backend/internal/dogs"
	"github.com/utulok/shelter-backend/internal/payments"
	"github.com/utulok/shelter-backend/internal/shelters"
	stripewebhook "github.com/utulok/shelter-backend/internal/webhooks/stripe"
	pkgAuth "github.com/utulok/shelter-backend/pkg/auth"
	"github.com/utulok/shelter-backend/pkg/config"
	"github.com/utulok/shelter-backend/pkg/enums"
	"github.com/utulok/shelter-backend/pkg/logger"
	"github.com/utulok/shelter-backend/pkg/metrics"
	"github.com/utulok/shelter-backend/pkg/redis"
	"github.com/utulok/shelter-backend/pkg/stripe"
)

// Deps bundles everything the router mounts.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	Redis          *redis.Client
	DBPinger       controllers.Pinger
	Tokens         *pkgAuth.TokenIssuer
	AuthService    *auth.Service
	ShelterService *shelters.Service
	DogService     *dogs.Service
	AttachService  *attachments.Service
	PaymentService *payments.Service
	AdminService   *admin.Service
	StripeClient   *stripe.Client
	WebhookService *stripewebhook.Service
	WebhookGuard   *stripewebhook.IdempotencyGuard
	WebhookMetrics *metrics.WebhookMetrics
	MetricsHandler http.Handler
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.Frontend.BaseURL),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": deps.DBPinger,
			"redis":    deps.Redis,
		}))
	})

	metricsHandler := deps.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	// Uploaded images are served straight off disk.
	uploadsDir := http.Dir(filepath.Clean(cfg.Uploads.Dir))
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(uploadsDir)))

	r.Route("/payments", func(r chi.Router) {
		r.Post("/webhook", webhookcontrollers.StripeWebhook(
			deps.WebhookService, deps.StripeClient, deps.WebhookGuard, deps.WebhookMetrics, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(deps.Tokens, logg))
			r.Post("/create-subscription-session", controllers.CreateSubscriptionSession(deps.PaymentService, logg))
			r.Post("/create-donation-session", controllers.CreateDonationSession(deps.PaymentService, logg))
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).Post("/register", controllers.Register(deps.AuthService, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.Login(deps.AuthService, logg))
			r.Post("/refresh", controllers.Refresh(deps.AuthService, logg))
			r.Post("/logout", controllers.Logout(deps.AuthService, logg))
			r.With(middleware.Auth(deps.Tokens, logg)).Get("/me", controllers.Me(deps.AuthService, logg))
		})

		r.Route("/shelters", func(r chi.Router) {
			r.Get("/", controllers.ListShelters(deps.ShelterService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(deps.Tokens, logg))
				r.Post("/", controllers.CreateShelter(deps.ShelterService, logg))
				r.Get("/me", controllers.GetOwnShelter(deps.ShelterService, logg))
				r.Put("/me", controllers.UpdateOwnShelter(deps.ShelterService, logg))
				r.Get("/me/dashboard", controllers.ShelterDashboard(deps.ShelterService, logg))
			})

			r.Get("/{shelterID}", controllers.GetShelter(deps.ShelterService, logg))
		})

		r.Route("/dogs", func(r chi.Router) {
			r.Get("/", controllers.ListDogs(deps.DogService, logg))

			maxUpload := int64(cfg.Uploads.MaxUploadMB) << 20
			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(deps.Tokens, logg))
				r.Use(middleware.RequireRole(logg, string(enums.UserRoleShelter)))
				r.Get("/mine", controllers.ListOwnDogs(deps.DogService, logg))
				r.Post("/", controllers.CreateDog(deps.DogService, logg))
				r.Put("/{dogID}", controllers.UpdateDog(deps.DogService, logg))
				r.Delete("/{dogID}", controllers.DeleteDog(deps.DogService, logg))
				r.Route("/{dogID}/attachments", func(r chi.Router) {
					r.Post("/", controllers.UploadAttachment(deps.AttachService, maxUpload, logg))
					r.Get("/", controllers.ListAttachments(deps.AttachService, logg))
					r.Delete("/{attachmentID}", controllers.DeleteAttachment(deps.AttachService, logg))
				})
			})

			r.Get("/{dogID}", controllers.GetDog(deps.DogService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(deps.Tokens, logg))
		r.Use(middleware.RequireRole(logg, string(enums.UserRolePlatformAdmin)))
		r.Get("/users", controllers.AdminListUsers(deps.AdminService, logg))
		r.Get("/shelters", controllers.AdminListShelters(deps.AdminService, logg))
		r.Put("/shelters/{shelterID}/active", controllers.AdminSetShelterActive(deps.AdminService, logg))
		r.Get("/payments", controllers.AdminListPayments(deps.AdminService, logg))
	})

	return r
}
