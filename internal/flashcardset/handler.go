package flashcardset

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"funquizz/internal/auth"
	"funquizz/internal/respond"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req struct {
		Name           string     `json:"name"`
		Description    string     `json:"description"`
		AccessType     AccessType `json:"accessType"`
		AccessPassword string     `json:"accessPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Message(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	set, err := h.service.Create(r.Context(), userID, CreateInput{
		Name:           req.Name,
		Description:    req.Description,
		AccessType:     req.AccessType,
		AccessPassword: req.AccessPassword,
	})
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, set)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	sets, err := h.service.ListByOwner(r.Context(), userID)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, sets)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := mux.Vars(r)["id"]

	set, err := h.service.Get(r.Context(), id, userID)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, set)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := mux.Vars(r)["id"]

	var req struct {
		Name           *string     `json:"name"`
		Description    *string     `json:"description"`
		AccessType     *AccessType `json:"accessType"`
		AccessPassword *string     `json:"accessPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Message(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	set, err := h.service.Update(r.Context(), id, userID, UpdateInput{
		Name:           req.Name,
		Description:    req.Description,
		AccessType:     req.AccessType,
		AccessPassword: req.AccessPassword,
	})
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, set)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := mux.Vars(r)["id"]

	if err := h.service.Delete(r.Context(), id, userID); err != nil {
		respond.Error(w, err)
		return
	}

	respond.Message(w, http.StatusOK, "Flashcard set deleted successfully")
}

func (h *Handler) Unlock(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := mux.Vars(r)["id"]

	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Message(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.Unlock(r.Context(), id, userID, req.Password); err != nil {
		respond.Error(w, err)
		return
	}

	respond.Message(w, http.StatusOK, "Flashcard set unlocked successfully")
}

// SetupRoutes mounts the set endpoints. requireAuth and optionalAuth come
// from the auth handler.
func SetupRoutes(r *mux.Router, h *Handler, requireAuth, optionalAuth func(http.HandlerFunc) http.HandlerFunc) {
	r.HandleFunc("/sets", requireAuth(h.Create)).Methods("POST")
	r.HandleFunc("/sets", requireAuth(h.List)).Methods("GET")
	r.HandleFunc("/sets/{id}", optionalAuth(h.Get)).Methods("GET")
	r.HandleFunc("/sets/{id}", requireAuth(h.Update)).Methods("PATCH")
	r.HandleFunc("/sets/{id}", requireAuth(h.Delete)).Methods("DELETE")
	r.HandleFunc("/sets/{id}/unlock", requireAuth(h.Unlock)).Methods("POST")
}
