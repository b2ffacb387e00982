package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mugshot/internal/http/handlers"
	"mugshot/internal/middleware"
)

// NewRouter builds the full HTTP surface. Everything under /v1 except auth
// and public profile lookups requires a bearer token.
func NewRouter(app *handlers.App) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS([]string{"http://localhost:3000"}),
	)

	r.Get("/v1/healthz", app.Health)
	r.Handle("/metrics", promhttp.Handler())

	if app.Config.StoragePath != "" {
		fileServer := stdhttp.FileServer(stdhttp.Dir(app.Config.StoragePath))
		r.Handle("/static/*", stdhttp.StripPrefix("/static/", fileServer))
	}

	rateLimit := middleware.RateLimit(app.Redis, app.Config.RateLimitPerMin, time.Minute, app.Logger)

	r.Route("/v1/auth", func(r chi.Router) {
		r.Use(rateLimit)
		r.Post("/signup", app.Signup)
		r.Post("/signin", app.Signin)
		r.Post("/confirm", app.ConfirmEmail)
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.AuthJWT(app.Config.JWTSecret), rateLimit)

		r.Post("/auth/resend-confirmation", app.ResendConfirmation)

		r.Route("/me", func(r chi.Router) {
			r.Get("/", app.Me)
			r.Patch("/", app.UpdateProfile)
			r.Delete("/", app.DeleteAccount)
			r.Post("/avatar", app.UploadAvatar)
			r.Get("/credits", app.CreditBalance)
			r.Get("/preferences", app.GetPreferences)
			r.Put("/preferences", app.PutPreferences)
		})

		r.Route("/projects", func(r chi.Router) {
			r.Post("/", app.CreateProject)
			r.Get("/{project_id}", app.GetProject)
			r.Patch("/{project_id}", app.UpdateProject)
			r.Post("/{project_id}/queue", app.QueueGeneration)
			r.Get("/{project_id}/jobs", app.ListProjectJobs)
		})

		r.Route("/jobs", func(r chi.Router) {
			r.Get("/{job_id}", app.JobStatus)
			r.Get("/{job_id}/renders", app.ListRenders)
			r.Get("/{job_id}/download", app.DownloadRenders)
		})

		r.Route("/renders", func(r chi.Router) {
			r.Post("/{render_id}/view", app.ViewRender)
			r.Post("/{render_id}/like", app.LikeRender)
			r.Delete("/{render_id}/like", app.UnlikeRender)
		})

		r.Get("/models", app.ListModels)

		r.Route("/assets", func(r chi.Router) {
			r.Post("/", app.UploadAsset)
			r.Get("/", app.ListAssets)
			r.Get("/{asset_id}/download", app.DownloadAsset)
		})

		r.Route("/billing", func(r chi.Router) {
			r.Get("/plans", app.ListPlans)
			r.Get("/subscription", app.GetSubscription)
			r.Get("/history", app.BillingHistory)
		})

		r.Route("/referrals", func(r chi.Router) {
			r.Get("/code", app.MyReferralCode)
			r.Get("/rewards", app.ListReferralRewards)
		})

		r.Route("/support", func(r chi.Router) {
			r.Post("/tickets", app.CreateSupportTicket)
			r.Get("/tickets", app.ListSupportTickets)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/{username}", app.PublicProfile)
			r.Post("/{username}/follow", app.Follow)
			r.Delete("/{username}/follow", app.Unfollow)
		})
	})

	return r
}
