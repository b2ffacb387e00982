package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"mugshot/internal/credits"
	"mugshot/internal/domain"
	"mugshot/internal/infra"
	"mugshot/internal/infra/geoip"
	"mugshot/internal/middleware"
	"mugshot/internal/storage"
)

// App carries the dependencies shared by all HTTP handlers.
type App struct {
	Users       domain.UserRepository
	Jobs        domain.JobRepository
	Projects    domain.ProjectRepository
	Prompts     domain.PromptRepository
	Renders     domain.RenderRepository
	Assets      domain.AssetRepository
	Audit       domain.AuditRepository
	Billing     domain.BillingRepository
	Referrals   domain.ReferralRepository
	Support     domain.SupportRepository
	Preferences domain.PreferencesRepository
	Social      domain.SocialRepository

	Ledger *credits.Ledger
	Blob   storage.BlobStore
	Redis  *redis.Client
	GeoIP  geoip.CountryResolver
	Config *infra.Config
	Logger zerolog.Logger
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]any{
		"error": map[string]string{"code": errCode, "message": message},
	})
}

// domainError maps domain sentinel errors to HTTP responses. Unknown errors
// are logged and reported as 500 without leaking detail.
func (a *App) domainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, domain.ErrUnauthorized):
		a.error(w, http.StatusUnauthorized, "unauthorized", "authentication required")
	case errors.Is(err, domain.ErrForbidden):
		a.error(w, http.StatusForbidden, "forbidden", "not allowed")
	case errors.Is(err, domain.ErrConflict):
		a.error(w, http.StatusConflict, "conflict", "resource already exists")
	case errors.Is(err, domain.ErrInsufficientCredits):
		a.error(w, http.StatusPaymentRequired, "insufficient_credits", "not enough credits")
	default:
		a.Logger.Error().Err(err).Msg("request failed")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}
