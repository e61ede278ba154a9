package directoryhandler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"corvid/internal/domain/directory"
	"corvid/internal/transport/http/api"
	"corvid/internal/transport/http/middleware"
	"corvid/internal/transport/http/shared"
)

type Handler struct {
	Store *directory.Store
}

func NewHandler(store *directory.Store) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/employees", h.handleListEmployees)
	r.Get("/directory", h.handleDirectory)
	r.Get("/profile", h.handleGetProfile)
	r.Post("/update-profile", h.handleUpdateProfile)
	r.Get("/user-role", h.handleUserRole)
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	names, err := h.Store.ListNames(r.Context())
	if err != nil {
		log.Printf("list employees failed: %v", err)
		api.Fail(w, http.StatusInternalServerError, "employees_failed", "failed to list employees", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, names, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDirectory(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListAll(r.Context())
	if err != nil {
		log.Printf("directory failed: %v", err)
		api.Fail(w, http.StatusInternalServerError, "directory_failed", "failed to list directory", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, employees, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	email := requestEmail(r)
	if email == "" {
		api.Fail(w, http.StatusBadRequest, "email_required", "email is required", middleware.GetRequestID(r.Context()))
		return
	}

	profile, err := h.Store.GetProfile(r.Context(), email)
	if errors.Is(err, directory.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		log.Printf("get profile failed: %v", err)
		api.Fail(w, http.StatusInternalServerError, "profile_failed", "failed to load profile", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, profile, middleware.GetRequestID(r.Context()))
}

type updateProfilePayload struct {
	Email  string `json:"email"`
	Title  string `json:"title"`
	Office string `json:"office"`
	Bio    string `json:"bio"`
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var payload updateProfilePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.Email == "" {
		if identity, ok := middleware.GetIdentity(r.Context()); ok {
			payload.Email = identity.Email
		}
	}

	v := shared.NewValidator()
	v.Required("email", payload.Email, "email is required to update a profile")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	profile, err := h.Store.UpdateProfile(r.Context(), payload.Email, payload.Title, payload.Office, payload.Bio)
	if errors.Is(err, directory.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		log.Printf("update profile failed: %v", err)
		api.Fail(w, http.StatusInternalServerError, "profile_update_failed", "failed to update profile", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, profile, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUserRole(w http.ResponseWriter, r *http.Request) {
	email := requestEmail(r)
	if email == "" {
		api.Fail(w, http.StatusBadRequest, "email_required", "email is required", middleware.GetRequestID(r.Context()))
		return
	}

	role, err := h.Store.RoleByEmail(r.Context(), email)
	if errors.Is(err, directory.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "user not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		log.Printf("user role failed: %v", err)
		api.Fail(w, http.StatusInternalServerError, "role_failed", "failed to look up role", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"role": role}, middleware.GetRequestID(r.Context()))
}

// requestEmail prefers the explicit query parameter, falling back to the
// identity token when one was presented.
func requestEmail(r *http.Request) string {
	if email := r.URL.Query().Get("email"); email != "" {
		return email
	}
	if identity, ok := middleware.GetIdentity(r.Context()); ok {
		return identity.Email
	}
	return ""
}
