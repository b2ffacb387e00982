package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"mugshot/internal/storage"
)

func (a *App) PublicProfile(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "username required")
		return
	}
	profile, err := a.Social.PublicProfile(r.Context(), username)
	if err != nil {
		a.domainError(w, err)
		return
	}
	avatarURL := ""
	if profile.AvatarPath != "" {
		avatarURL = a.Blob.PublicURL(storage.BucketAvatars, profile.AvatarPath)
	}
	following := false
	if viewerID := a.currentUserID(r); viewerID != "" && viewerID != profile.ID {
		following, _ = a.Social.IsFollowing(r.Context(), viewerID, profile.ID)
	}
	a.json(w, http.StatusOK, map[string]any{
		"id":               profile.ID,
		"username":         profile.Username,
		"full_name":        profile.FullName,
		"avatar_url":       avatarURL,
		"bio":              profile.Bio,
		"is_verified":      profile.IsVerified,
		"followers_count":  profile.FollowersCount,
		"following_count":  profile.FollowingCount,
		"thumbnails_count": profile.ThumbnailsCount,
		"is_following":     following,
	})
}

func (a *App) Follow(w http.ResponseWriter, r *http.Request) {
	a.followAction(w, r, true)
}

func (a *App) Unfollow(w http.ResponseWriter, r *http.Request) {
	a.followAction(w, r, false)
}

func (a *App) followAction(w http.ResponseWriter, r *http.Request, follow bool) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	username := chi.URLParam(r, "username")
	target, err := a.Users.GetByUsername(r.Context(), username)
	if err != nil {
		a.domainError(w, err)
		return
	}
	if target.ID == userID {
		a.error(w, http.StatusBadRequest, "bad_request", "cannot follow yourself")
		return
	}
	if follow {
		err = a.Social.Follow(r.Context(), userID, target.ID)
	} else {
		err = a.Social.Unfollow(r.Context(), userID, target.ID)
	}
	if err != nil {
		a.domainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
