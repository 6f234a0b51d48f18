package flashcard

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

func (h *Handler) CreateInSet(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	setID := mux.Vars(r)["id"]

	var req struct {
		Question   string     `json:"question"`
		Answer     string     `json:"answer"`
		Category   string     `json:"category"`
		Difficulty Difficulty `json:"difficulty"`
		ImageURL   string     `json:"imageUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Message(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	card, err := h.service.Create(r.Context(), setID, userID, CreateInput{
		Question:   req.Question,
		Answer:     req.Answer,
		Category:   req.Category,
		Difficulty: req.Difficulty,
		ImageURL:   req.ImageURL,
	})
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, card)
}

func (h *Handler) ListInSet(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	setID := mux.Vars(r)["id"]

	cards, err := h.service.ListBySet(r.Context(), setID, userID)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, cards)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	filter := ListFilter{
		Category:   r.URL.Query().Get("category"),
		Difficulty: Difficulty(r.URL.Query().Get("difficulty")),
	}

	cards, err := h.service.List(r.Context(), userID, filter)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, cards)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := mux.Vars(r)["id"]

	card, err := h.service.Get(r.Context(), id, userID)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, card)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := mux.Vars(r)["id"]

	var req struct {
		Question   *string     `json:"question"`
		Answer     *string     `json:"answer"`
		Category   *string     `json:"category"`
		Difficulty *Difficulty `json:"difficulty"`
		ImageURL   *string     `json:"imageUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Message(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	card, err := h.service.Update(r.Context(), id, userID, UpdateInput{
		Question:   req.Question,
		Answer:     req.Answer,
		Category:   req.Category,
		Difficulty: req.Difficulty,
		ImageURL:   req.ImageURL,
	})
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, card)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := mux.Vars(r)["id"]

	if err := h.service.Delete(r.Context(), id, userID); err != nil {
		respond.Error(w, err)
		return
	}

	respond.Message(w, http.StatusOK, "Flashcard deleted successfully")
}

func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := mux.Vars(r)["id"]

	card, err := h.service.Review(r.Context(), id, userID)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, card)
}

// SetupRoutes mounts both the set-nested and standalone flashcard routes.
func SetupRoutes(r *mux.Router, h *Handler, requireAuth, optionalAuth func(http.HandlerFunc) http.HandlerFunc) {
	r.HandleFunc("/sets/{id}/flashcards", requireAuth(h.CreateInSet)).Methods("POST")
	r.HandleFunc("/sets/{id}/flashcards", optionalAuth(h.ListInSet)).Methods("GET")
	r.HandleFunc("/flashcards", requireAuth(h.List)).Methods("GET")
	r.HandleFunc("/flashcards/{id}", requireAuth(h.Get)).Methods("GET")
	r.HandleFunc("/flashcards/{id}", requireAuth(h.Update)).Methods("PATCH")
	r.HandleFunc("/flashcards/{id}", requireAuth(h.Delete)).Methods("DELETE")
	r.HandleFunc("/flashcards/{id}/review", requireAuth(h.Review)).Methods("POST")
}
