package handler

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"mergington-be/internal/middleware"
	"mergington-be/internal/service"
	"mergington-be/pkg/errors"
	"mergington-be/pkg/logger"
)

// ActivityHandler serves the activity directory and registration endpoints
type ActivityHandler struct {
	directory    service.DirectoryService
	registration service.RegistrationService
	logger       *logger.Logger
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(services *service.Services, logger *logger.Logger) *ActivityHandler {
	return &ActivityHandler{
		directory:    services.Directory,
		registration: services.Registration,
		logger:       logger,
	}
}

// Routes mounts the activity endpoints
func (h *ActivityHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{activityName}", h.Get)
	r.Post("/{activityName}/signup", h.SignUp)
	r.Delete("/{activityName}/unregister", h.Unregister)
}

// List handles GET /activities
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	directory, err := h.directory.ListActivities(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, directory)
}

// Get handles GET /activities/{activityName}
func (h *ActivityHandler) Get(w http.ResponseWriter, r *http.Request) {
	details, err := h.directory.GetActivity(r.Context(), activityName(r))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, details)
}

// SignUp handles POST /activities/{activityName}/signup?email=
func (h *ActivityHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	email, ok := emailParam(r)
	if !ok {
		h.respondError(w, r, errors.NewValidationError("email query parameter is required"))
		return
	}

	confirmation, err := h.registration.SignUp(r.Context(), activityName(r), email)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, confirmation)
}

// Unregister handles DELETE /activities/{activityName}/unregister?email=
func (h *ActivityHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	email, ok := emailParam(r)
	if !ok {
		h.respondError(w, r, errors.NewValidationError("email query parameter is required"))
		return
	}

	confirmation, err := h.registration.Unregister(r.Context(), activityName(r), email)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, confirmation)
}

// activityName returns the decoded path segment. chi routes on RawPath when
// it is set, and then hands back the escaped segment.
func activityName(r *http.Request) string {
	param := chi.URLParam(r, "activityName")
	if r.URL.RawPath == "" {
		return param
	}
	if name, err := url.PathUnescape(param); err == nil {
		return name
	}
	return param
}

func emailParam(r *http.Request) (string, bool) {
	values, ok := r.URL.Query()["email"]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

func (h *ActivityHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.WithError(err).Error("Failed to encode response")
	}
}

func (h *ActivityHandler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := errors.FromDomain(err)
	if !appErr.IsClientError() {
		h.logger.WithFields(map[string]interface{}{
			"request_id": middleware.GetRequestID(r.Context()),
			"path":       r.URL.Path,
			"type":       appErr.Type,
		}).WithError(err).Error("Request failed")
	}
	errors.WriteJSON(w, appErr)
}
