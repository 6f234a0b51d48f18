package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"funquizz/internal/auth"
	"funquizz/internal/flashcard"
	"funquizz/internal/flashcardset"
	"funquizz/internal/respond"
)

type Server struct {
	router *mux.Router
}

// NewServer assembles the router from the feature handlers. Dependencies
// are constructed once at startup and injected here.
func NewServer(
	authHandler *auth.Handler,
	setHandler *flashcardset.Handler,
	cardHandler *flashcard.Handler,
	rateLimitRPS int,
) *Server {
	router := mux.NewRouter()
	router.Use(Logger)
	router.Use(RateLimit(rateLimitRPS))

	router.HandleFunc("/health", healthCheck).Methods("GET")

	auth.SetupRoutes(router, authHandler)
	flashcardset.SetupRoutes(router, setHandler, authHandler.Middleware, authHandler.OptionalMiddleware)
	flashcard.SetupRoutes(router, cardHandler, authHandler.Middleware, authHandler.OptionalMiddleware)

	return &Server{router: router}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Run(addr string) error {
	return http.ListenAndServe(addr, s.router)
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
