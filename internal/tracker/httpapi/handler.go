// Package httpapi exposes the tracker over HTTP: a generic command endpoint
// plus conventional REST routes for each domain.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	tracker "github.com/valkaylee/wildlifetracker/internal/tracker"
	"github.com/valkaylee/wildlifetracker/internal/tracker/auth"
	"github.com/valkaylee/wildlifetracker/internal/tracker/command"
	"github.com/valkaylee/wildlifetracker/internal/tracker/domain/report"
	"github.com/valkaylee/wildlifetracker/internal/tracker/domain/sighting"
	"github.com/valkaylee/wildlifetracker/internal/tracker/domain/user"
	"github.com/valkaylee/wildlifetracker/internal/tracker/services/users"
	"github.com/valkaylee/wildlifetracker/internal/tracker/storage"
)

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app    *tracker.Application
	tokens *auth.Issuer
}

// NewHandler returns a mux exposing the command endpoint and the REST API.
func NewHandler(application *tracker.Application, tokens *auth.Issuer) http.Handler {
	h := &handler{app: application, tokens: tokens}
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.health)
	mux.HandleFunc("/commands", h.commands)
	mux.HandleFunc("/auth/register", h.register)
	mux.HandleFunc("/auth/login", h.login)
	mux.HandleFunc("/users/", h.userResources)
	mux.HandleFunc("/sightings", h.sightings)
	mux.HandleFunc("/sightings/", h.sightingResources)
	mux.HandleFunc("/notifications", h.notifications)
	mux.HandleFunc("/notifications/", h.notificationResources)
	mux.HandleFunc("/leaderboard", h.leaderboard)
	mux.HandleFunc("/leaderboard/", h.leaderboardResources)
	mux.HandleFunc("/profiles/", h.profileResources)
	mux.HandleFunc("/species", h.species)
	mux.HandleFunc("/species/", h.speciesResources)
	mux.HandleFunc("/reports", h.reports)
	mux.HandleFunc("/reports/", h.reportResources)
	return mux
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// commands accepts one envelope and always answers 200 with the uniform
// result shape; failures live inside the body, not the status code.
func (h *handler) commands(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var env command.Envelope
	if err := decodeJSON(r.Body, &env); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	writeJSON(w, http.StatusOK, h.app.Router.Execute(r.Context(), env))
}

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var payload struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	view, err := h.app.Users.Register(r.Context(), payload.Username, payload.Password)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	token, err := h.tokens.Issue(view.ID, view.Username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"token": token, "user": view})
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var payload struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	view, err := h.app.Users.Login(r.Context(), payload.Username, payload.Password)
	if errors.Is(err, users.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	token, err := h.tokens.Issue(view.ID, view.Username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": token, "user": view})
}

func (h *handler) userResources(w http.ResponseWriter, r *http.Request) {
	id, rest, err := resourceID(r.URL.Path, "/users/")
	if err != nil || rest != "" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	u, found, err := h.app.Users.Find(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, fmt.Errorf("user %d not found", id))
		return
	}
	writeJSON(w, http.StatusOK, u.AsView())
}

func (h *handler) sightings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var payload sightingPayload
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		created, err := h.app.Sightings.Create(r.Context(), payload.toSighting())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)

	case http.MethodGet:
		list, err := h.app.Sightings.List(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, list)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) sightingResources(w http.ResponseWriter, r *http.Request) {
	id, rest, err := resourceID(r.URL.Path, "/sightings/")
	if err != nil || rest != "" {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		sg, err := h.app.Sightings.Get(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sg)

	case http.MethodPut:
		var payload sightingPayload
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		saved, err := h.app.Sightings.Update(r.Context(), id, payload.toSighting())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, saved)

	case http.MethodDelete:
		if err := h.app.Sightings.Delete(r.Context(), id); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) notifications(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var payload struct {
			UserID  int64  `json:"userId"`
			Message string `json:"message"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		created, err := h.app.Notifications.Notify(r.Context(), payload.UserID, payload.Message)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)

	case http.MethodGet:
		userID, err := strconv.ParseInt(r.URL.Query().Get("userId"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("userId query parameter is required"))
			return
		}
		list, err := h.app.Notifications.ForUser(r.Context(), userID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, list)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) notificationResources(w http.ResponseWriter, r *http.Request) {
	id, rest, err := resourceID(r.URL.Path, "/notifications/")
	if err != nil || rest != "read" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if err := h.app.Notifications.MarkRead(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) leaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	entries, err := h.app.Leaderboard.Leaderboard(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *handler) leaderboardResources(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/leaderboard/")
	switch {
	case rest == "top":
		n, err := strconv.Atoi(r.URL.Query().Get("n"))
		if err != nil || n < 1 || n > 100 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("n must be between 1 and 100"))
			return
		}
		entries, err := h.app.Leaderboard.TopN(r.Context(), n)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, entries)

	case strings.HasPrefix(rest, "users/"):
		userID, err := strconv.ParseInt(strings.TrimPrefix(rest, "users/"), 10, 64)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		entry, found, err := h.app.Leaderboard.UserRank(r.Context(), userID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		if !found {
			writeError(w, http.StatusNotFound, fmt.Errorf("user %d has no rank", userID))
			return
		}
		writeJSON(w, http.StatusOK, entry)

	default:
		http.NotFound(w, r)
	}
}

func (h *handler) profileResources(w http.ResponseWriter, r *http.Request) {
	id, rest, err := resourceID(r.URL.Path, "/profiles/")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	switch {
	case rest == "" && r.Method == http.MethodGet:
		u, found, err := h.app.Users.Find(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		if !found {
			writeError(w, http.StatusNotFound, fmt.Errorf("user %d not found", id))
			return
		}
		h.writeProfile(w, r, u.AsView())

	case rest == "" && r.Method == http.MethodPut:
		var payload users.ProfileUpdate
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		view, err := h.app.Users.UpdateProfile(r.Context(), id, payload)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		h.writeProfile(w, r, view)

	case rest == "picture" && r.Method == http.MethodPost:
		h.uploadProfilePicture(w, r, id)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) writeProfile(w http.ResponseWriter, r *http.Request, view user.View) {
	profile := command.ProfileView{View: view}
	entry, found, err := h.app.Leaderboard.UserRank(r.Context(), view.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if found {
		rank := entry.Rank
		profile.Rank = &rank
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *handler) uploadProfilePicture(w http.ResponseWriter, r *http.Request, id int64) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("file field is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, 10<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	url, err := h.app.Users.SaveProfilePicture(r.Context(), id,
		data, header.Header.Get("Content-Type"), filepath.Ext(header.Filename))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"profilePictureUrl": url})
}

func (h *handler) species(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var payload struct {
			Name     string `json:"name"`
			Category string `json:"category"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		created, err := h.app.Species.Create(r.Context(), payload.Name, payload.Category)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)

	case http.MethodGet:
		q := r.URL.Query()
		var (
			list any
			err  error
		)
		switch {
		case q.Get("name") != "":
			list, err = h.app.Species.SearchByName(r.Context(), q.Get("name"))
		case q.Get("category") != "":
			list, err = h.app.Species.SearchByCategory(r.Context(), q.Get("category"))
		default:
			list, err = h.app.Species.List(r.Context())
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, list)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) speciesResources(w http.ResponseWriter, r *http.Request) {
	id, rest, err := resourceID(r.URL.Path, "/species/")
	if err != nil || rest != "" {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		sp, err := h.app.Species.Get(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sp)

	case http.MethodPut:
		var payload struct {
			Name     string `json:"name"`
			Category string `json:"category"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		saved, err := h.app.Species.Update(r.Context(), id, payload.Name, payload.Category)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, saved)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) reports(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var payload struct {
			SightingID int64  `json:"sightingId"`
			UserID     int64  `json:"userId"`
			Reason     string `json:"reason"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		filed, err := h.app.Reports.File(r.Context(), payload.SightingID, payload.UserID, payload.Reason)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, filed)

	case http.MethodGet:
		q := r.URL.Query()
		var (
			list any
			err  error
		)
		switch {
		case q.Get("sightingId") != "":
			var sightingID int64
			sightingID, err = strconv.ParseInt(q.Get("sightingId"), 10, 64)
			if err == nil {
				list, err = h.app.Reports.BySighting(r.Context(), sightingID)
			}
		case q.Get("userId") != "":
			var userID int64
			userID, err = strconv.ParseInt(q.Get("userId"), 10, 64)
			if err == nil {
				list, err = h.app.Reports.ByUser(r.Context(), userID)
			}
		default:
			list, err = h.app.Reports.List(r.Context())
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, list)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) reportResources(w http.ResponseWriter, r *http.Request) {
	id, rest, err := resourceID(r.URL.Path, "/reports/")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	switch {
	case rest == "" && r.Method == http.MethodGet:
		rep, err := h.app.Reports.Get(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rep)

	case rest == "status" && r.Method == http.MethodPut:
		var payload struct {
			Status string `json:"status"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		saved, err := h.app.Reports.SetStatus(r.Context(), id, report.Status(payload.Status))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, saved)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

type sightingPayload struct {
	Species     string `json:"species"`
	Location    string `json:"location"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	PixelX      *int   `json:"pixelX"`
	PixelY      *int   `json:"pixelY"`
	UserID      *int64 `json:"userId"`
}

func (p sightingPayload) toSighting() sighting.Sighting {
	return sighting.Sighting{
		Species:     p.Species,
		Location:    p.Location,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		PixelX:      p.PixelX,
		PixelY:      p.PixelY,
		UserID:      p.UserID,
	}
}

// resourceID splits "/prefix/{id}" and "/prefix/{id}/{rest}" paths.
func resourceID(path, prefix string) (int64, string, error) {
	trimmed := strings.TrimPrefix(path, prefix)
	idPart, rest, _ := strings.Cut(trimmed, "/")
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("invalid id %q", idPart)
	}
	return id, rest, nil
}

func writeDomainError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeError(w, http.StatusBadRequest, err)
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
