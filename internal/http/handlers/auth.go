package handlers

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"mugshot/internal/domain"
	"mugshot/internal/middleware"
	"mugshot/internal/storage"
)

const (
	tokenTTL        = 24 * time.Hour
	confirmTokenTTL = 24 * time.Hour
)

type signupRequest struct {
	Email        string `json:"email"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	FullName     string `json:"full_name"`
	ReferralCode string `json:"referral_code"`
}

type authResponse struct {
	Token string  `json:"token"`
	User  userDTO `json:"user"`
}

type userDTO struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Username   string `json:"username"`
	FullName   string `json:"full_name"`
	Bio        string `json:"bio"`
	AvatarURL  string `json:"avatar_url,omitempty"`
	Credits    int    `json:"credits"`
	Plan       string `json:"plan"`
	IsVerified bool   `json:"is_verified"`
	Country    string `json:"country,omitempty"`
}

func (a *App) userDTO(u *domain.User) userDTO {
	dto := userDTO{
		ID:         u.ID,
		Email:      u.Email,
		Username:   u.Username,
		FullName:   u.FullName,
		Bio:        u.Bio,
		Credits:    u.Credits,
		Plan:       u.Plan,
		IsVerified: u.IsVerified,
		Country:    u.Country,
	}
	if u.AvatarPath != "" {
		dto.AvatarURL = a.Blob.PublicURL(storage.BucketAvatars, u.AvatarPath)
	}
	return dto
}

func (a *App) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		a.error(w, http.StatusBadRequest, "bad_request", "valid email required")
		return
	}
	if len(req.Username) < 3 {
		a.error(w, http.StatusBadRequest, "bad_request", "username must be at least 3 characters")
		return
	}
	if len(req.Password) < 8 {
		a.error(w, http.StatusBadRequest, "bad_request", "password must be at least 8 characters")
		return
	}

	if _, err := a.Users.GetByEmail(r.Context(), req.Email); err == nil {
		a.error(w, http.StatusConflict, "conflict", "email already registered")
		return
	}
	if _, err := a.Users.GetByUsername(r.Context(), req.Username); err == nil {
		a.error(w, http.StatusConflict, "conflict", "username already taken")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		a.domainError(w, err)
		return
	}

	user := &domain.User{
		Email:        req.Email,
		Username:     req.Username,
		FullName:     req.FullName,
		PasswordHash: string(hash),
		Plan:         "free",
		Country:      a.countryForRequest(r),
	}
	if err := a.Users.Create(r.Context(), user); err != nil {
		a.domainError(w, err)
		return
	}

	if err := a.Ledger.Grant(r.Context(), user.ID, a.Config.SignupGrantCredits, domain.AuditActionSignupGrant, nil); err != nil {
		a.Logger.Error().Err(err).Str("user_id", user.ID).Msg("signup grant failed")
	} else {
		user.Credits += a.Config.SignupGrantCredits
	}

	if code := strings.TrimSpace(req.ReferralCode); code != "" {
		a.applyReferral(r.Context(), user, code)
	}

	a.sendConfirmation(r.Context(), user)

	token, err := a.signToken(user)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusCreated, authResponse{Token: token, User: a.userDTO(user)})
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *App) Signin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	user, err := a.Users.GetByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		a.error(w, http.StatusUnauthorized, "unauthorized", "invalid credentials")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		a.error(w, http.StatusUnauthorized, "unauthorized", "invalid credentials")
		return
	}

	token, err := a.signToken(user)
	if err != nil {
		a.domainError(w, err)
		return
	}

	if err := a.Audit.Append(r.Context(), &domain.AuditEntry{
		UserID: user.ID,
		Action: domain.AuditActionSignin,
		Meta:   domain.AuditMeta(map[string]any{"country": a.countryForRequest(r)}),
	}); err != nil {
		a.Logger.Warn().Err(err).Msg("signin audit failed")
	}

	a.json(w, http.StatusOK, authResponse{Token: token, User: a.userDTO(user)})
}

type confirmRequest struct {
	Token string `json:"token"`
}

// ConfirmEmail redeems a confirmation token previously issued at signup.
func (a *App) ConfirmEmail(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "token required")
		return
	}
	key := "confirm:" + req.Token
	userID, err := a.Redis.Get(r.Context(), key).Result()
	if err != nil || userID == "" {
		a.error(w, http.StatusBadRequest, "invalid_token", "token invalid or expired")
		return
	}
	if err := a.Users.SetVerified(r.Context(), userID); err != nil {
		a.domainError(w, err)
		return
	}
	a.Redis.Del(r.Context(), key)
	a.json(w, http.StatusOK, map[string]string{"status": "confirmed"})
}

// ResendConfirmation issues a fresh confirmation token for the signed-in user.
func (a *App) ResendConfirmation(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	user, err := a.Users.GetByID(r.Context(), userID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	if user.IsVerified {
		a.error(w, http.StatusConflict, "conflict", "email already confirmed")
		return
	}
	a.sendConfirmation(r.Context(), user)
	a.json(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

func (a *App) signToken(user *domain.User) (string, error) {
	return middleware.SignJWT(a.Config.JWTSecret, middleware.TokenClaims{
		Sub:      user.ID,
		Plan:     user.Plan,
		Exp:      time.Now().Add(tokenTTL).Unix(),
		Issuer:   "mugshot",
		Audience: "mugshot-clients",
	})
}

// sendConfirmation stores a single-use token in Redis. Actual mail delivery
// is left to an external notifier watching the log stream.
func (a *App) sendConfirmation(ctx context.Context, user *domain.User) {
	token := uuid.NewString()
	if err := a.Redis.Set(ctx, "confirm:"+token, user.ID, confirmTokenTTL).Err(); err != nil {
		a.Logger.Warn().Err(err).Str("user_id", user.ID).Msg("store confirmation token failed")
		return
	}
	a.Logger.Info().Str("user_id", user.ID).Str("email", user.Email).Str("token", token).
		Msg("confirmation token issued")
}

// applyReferral credits both sides of a referral. Failures only log; signup
// must not fail because a code turned out to be bad.
func (a *App) applyReferral(ctx context.Context, user *domain.User, codeValue string) {
	code, err := a.Referrals.GetCode(ctx, codeValue)
	if err != nil {
		a.Logger.Info().Str("code", codeValue).Msg("referral code not found")
		return
	}
	if code.UserID == user.ID || code.Exhausted() {
		return
	}
	reward := code.RewardCredits
	if reward <= 0 {
		reward = domain.DefaultReferralReward
	}
	err = a.Referrals.CreateReward(ctx, &domain.ReferralReward{
		Code:          code.Code,
		ReferrerID:    code.UserID,
		ReferredID:    user.ID,
		CreditsEarned: reward,
	})
	if err != nil {
		a.Logger.Warn().Err(err).Str("code", code.Code).Msg("create referral reward failed")
		return
	}
	if err := a.Referrals.IncrementUses(ctx, code.Code); err != nil {
		a.Logger.Warn().Err(err).Str("code", code.Code).Msg("increment referral uses failed")
	}
	meta := map[string]any{"code": code.Code}
	if err := a.Ledger.Grant(ctx, code.UserID, reward, domain.AuditActionReferralReward, meta); err != nil {
		a.Logger.Error().Err(err).Str("user_id", code.UserID).Msg("referrer reward grant failed")
	}
	if err := a.Ledger.Grant(ctx, user.ID, reward, domain.AuditActionReferralReward, meta); err != nil {
		a.Logger.Error().Err(err).Str("user_id", user.ID).Msg("referred reward grant failed")
	} else {
		user.Credits += reward
	}
}

func (a *App) countryForRequest(r *http.Request) string {
	if a.GeoIP == nil {
		return ""
	}
	country, err := a.GeoIP.CountryCode(clientIP(r))
	if err != nil {
		return ""
	}
	return country
}

func clientIP(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		parts := strings.Split(xf, ",")
		if ip := strings.TrimSpace(parts[0]); net.ParseIP(ip) != nil {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}
