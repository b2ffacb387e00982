package handlers

import (
	"encoding/json"
	"net/http"

	"mugshot/internal/modelreg"
)

func (a *App) GetPreferences(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	prefs, err := a.Preferences.Get(r.Context(), userID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, prefs)
}

func (a *App) PutPreferences(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	// Start from the stored values so a partial payload only touches the
	// keys it names.
	prefs, err := a.Preferences.Get(r.Context(), userID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	if err := json.NewDecoder(r.Body).Decode(prefs); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	prefs.DefaultAIModel = string(modelreg.Parse(prefs.DefaultAIModel))
	if prefs.GenerationVariants < 1 || prefs.GenerationVariants > 8 {
		prefs.GenerationVariants = 4
	}
	if err := a.Preferences.Put(r.Context(), userID, prefs); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, prefs)
}
