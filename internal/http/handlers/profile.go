package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"mugshot/internal/storage"
)

const maxAvatarBytes = 5 << 20

func (a *App) Me(w http.ResponseWriter, r *http.Request) {
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
	a.json(w, http.StatusOK, a.userDTO(user))
}

type updateProfileRequest struct {
	FullName *string `json:"full_name"`
	Bio      *string `json:"bio"`
	Country  *string `json:"country"`
}

func (a *App) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	user, err := a.Users.GetByID(r.Context(), userID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	if req.FullName != nil {
		user.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Bio != nil {
		user.Bio = strings.TrimSpace(*req.Bio)
	}
	if req.Country != nil {
		user.Country = strings.ToUpper(strings.TrimSpace(*req.Country))
	}
	if err := a.Users.UpdateProfile(r.Context(), user); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, a.userDTO(user))
}

// UploadAvatar accepts a multipart "file" part and replaces the avatar.
func (a *App) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart payload")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "file required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxAvatarBytes+1))
	if err != nil {
		a.domainError(w, err)
		return
	}
	if len(data) > maxAvatarBytes {
		a.error(w, http.StatusRequestEntityTooLarge, "too_large", "avatar exceeds 5MB")
		return
	}
	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		a.error(w, http.StatusBadRequest, "bad_request", "avatar must be an image")
		return
	}

	user, err := a.Users.GetByID(r.Context(), userID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	key := fmt.Sprintf("%s.png", userID)
	if _, err := a.Blob.Upload(r.Context(), storage.BucketAvatars, key, data, contentType); err != nil {
		a.domainError(w, err)
		return
	}
	user.AvatarPath = key
	if err := a.Users.UpdateProfile(r.Context(), user); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, a.userDTO(user))
}

func (a *App) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	if err := a.Users.Delete(r.Context(), userID); err != nil {
		a.domainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreditBalance returns the live balance plus recent ledger entries.
func (a *App) CreditBalance(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	balance, err := a.Users.Credits(r.Context(), userID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	entries, err := a.Audit.ListByUser(r.Context(), userID, 50)
	if err != nil {
		a.domainError(w, err)
		return
	}
	history := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		history = append(history, map[string]any{
			"action":     e.Action,
			"delta":      e.DeltaCredits,
			"meta":       e.Meta,
			"created_at": e.CreatedAt,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"credits": balance, "history": history})
}
