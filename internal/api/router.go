package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"crypto-graves/internal/api/handler"
	"crypto-graves/internal/metrics"
)

// Handlers groups the HTTP handlers mounted by NewRouter.
type Handlers struct {
	System   *handler.SystemHandler
	User     *handler.UserHandler
	Position *handler.PositionHandler
	Loss     *handler.LossHandler
	Mint     *handler.MintHandler
}

// RouterOptions configures the router.
type RouterOptions struct {
	APIPrefix          string
	CORSAllowedOrigins []string
}

// NewRouter sets up and returns a new HTTP router.
func NewRouter(h Handlers, opts RouterOptions, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(handler.DefaultTimeout))
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/", h.System.Root)
	r.Get("/health", h.System.Health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route(opts.APIPrefix, func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/wallet-auth", h.User.WalletAuth)
			r.Get("/me", h.User.GetUserByWallet)
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/", h.User.RegisterUser)
			r.Get("/", h.User.GetUserByWallet)
			r.Get("/{userID}", h.User.GetUser)
			r.Patch("/{userID}", h.User.UpdateProfile)
		})

		r.Route("/wallet-info", func(r chi.Router) {
			r.Post("/", h.Position.SubmitPosition)
			r.Get("/", h.Position.ListPositions)
			r.Get("/{walletAddress}/{ticker}", h.Position.GetPosition)
		})

		r.Route("/wallets/{walletAddress}", func(r chi.Router) {
			r.Get("/summary", h.Position.GetWalletSummary)
			r.Get("/mints", h.Mint.ListMints)
		})
		r.Get("/leaderboard", h.Position.GetLeaderboard)

		r.Route("/losses", func(r chi.Router) {
			r.Post("/", h.Loss.CreateLoss)
			r.Get("/", h.Loss.ListLosses)
			r.Post("/upload-transaction", h.Loss.UploadTransaction)
			r.Get("/{lossID}", h.Loss.GetLoss)
			r.Patch("/{lossID}", h.Loss.UpdateLoss)
			r.Post("/{lossID}/verify", h.Loss.VerifyLoss)
			r.Post("/{lossID}/reject", h.Loss.RejectLoss)
		})

		r.Post("/mint", h.Mint.Mint)
	})

	logger.Debug("Router initialized", "api_prefix", opts.APIPrefix)
	return r
}
