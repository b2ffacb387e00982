package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSignAndVerifyJWT(t *testing.T) {
	secret := "test-secret"
	claims := TokenClaims{
		Sub:      "user-123",
		Plan:     "free",
		Exp:      time.Now().Add(time.Hour).Unix(),
		Issuer:   "tester",
		Audience: "clients",
	}
	token, err := SignJWT(secret, claims)
	if err != nil {
		t.Fatalf("SignJWT() unexpected error: %v", err)
	}
	parsed, err := VerifyJWT(secret, token)
	if err != nil {
		t.Fatalf("VerifyJWT() unexpected error: %v", err)
	}
	if parsed.Sub != claims.Sub || parsed.Plan != claims.Plan {
		t.Fatalf("VerifyJWT() returned %+v, want %+v", parsed, claims)
	}
}

func TestVerifyJWTInvalidSignature(t *testing.T) {
	claims := TokenClaims{
		Sub: "user-123",
		Exp: time.Now().Add(time.Hour).Unix(),
	}
	token, err := SignJWT("secret-a", claims)
	if err != nil {
		t.Fatalf("SignJWT() error: %v", err)
	}
	if _, err := VerifyJWT("secret-b", token); err == nil {
		t.Fatal("VerifyJWT() expected invalid signature error")
	}
}

func TestVerifyJWTExpired(t *testing.T) {
	claims := TokenClaims{
		Sub: "user-123",
		Exp: time.Now().Add(-time.Minute).Unix(),
	}
	token, err := SignJWT("secret", claims)
	if err != nil {
		t.Fatalf("SignJWT() error: %v", err)
	}
	if _, err := VerifyJWT("secret", token); err == nil {
		t.Fatal("VerifyJWT() expected expiry error")
	}
}

func TestAuthJWTMiddleware(t *testing.T) {
	secret := "mw-secret"
	token, err := SignJWT(secret, TokenClaims{Sub: "user-9", Exp: time.Now().Add(time.Hour).Unix()})
	if err != nil {
		t.Fatalf("SignJWT() error: %v", err)
	}

	var gotUser string
	handler := AuthJWT(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotUser != "user-9" {
		t.Fatalf("user id from context = %q, want user-9", gotUser)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing header status = %d, want 401", rec.Code)
	}
}
