package auth

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"funquizz/internal/respond"
	"funquizz/internal/token"
	"funquizz/internal/user"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type authResponse struct {
	User  *user.User  `json:"user"`
	Token *token.Pair `json:"token"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Message(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Username == "" || req.Password == "" {
		respond.Message(w, http.StatusBadRequest, "email, username and password are required")
		return
	}

	newUser, pair, err := h.service.Register(r.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, authResponse{User: newUser, Token: pair})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Identifier string `json:"identifier"`
		Password   string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Message(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Identifier == "" || req.Password == "" {
		respond.Message(w, http.StatusBadRequest, "identifier and password are required")
		return
	}

	u, pair, err := h.service.Login(r.Context(), req.Identifier, req.Password)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, authResponse{User: u, Token: pair})
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Message(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.ForgotPassword(r.Context(), req.Email); err != nil {
		respond.Error(w, err)
		return
	}

	respond.Message(w, http.StatusOK, "Password reset code sent to your email")
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		OTP         string `json:"otp"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Message(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.ResetPassword(r.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		respond.Error(w, err)
		return
	}

	respond.Message(w, http.StatusOK, "Password reset successfully")
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Message(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		respond.Error(w, err)
		return
	}

	respond.Message(w, http.StatusOK, "Password changed successfully")
}

func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Message(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.VerifyEmail(r.Context(), req.Email, req.OTP); err != nil {
		respond.Error(w, err)
		return
	}

	respond.Message(w, http.StatusOK, "Email verified successfully")
}

func (h *Handler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Message(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.ResendVerification(r.Context(), req.Email); err != nil {
		respond.Error(w, err)
		return
	}

	respond.Message(w, http.StatusOK, "Verification code sent to your email")
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Message(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	pair, err := h.service.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, pair)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	if err := h.service.Logout(r.Context(), userID); err != nil {
		respond.Error(w, err)
		return
	}

	respond.Message(w, http.StatusOK, "Logged out successfully")
}

// SetupRoutes mounts the auth endpoints on r.
func SetupRoutes(r *mux.Router, h *Handler) {
	r.HandleFunc("/auth/register", h.Register).Methods("POST")
	r.HandleFunc("/auth/login", h.Login).Methods("POST")
	r.HandleFunc("/auth/forgot-password", h.ForgotPassword).Methods("POST")
	r.HandleFunc("/auth/reset-password", h.ResetPassword).Methods("POST")
	r.HandleFunc("/auth/change-password", h.Middleware(h.ChangePassword)).Methods("POST")
	r.HandleFunc("/auth/verify-email", h.VerifyEmail).Methods("POST")
	r.HandleFunc("/auth/resend-verification", h.ResendVerification).Methods("POST")
	r.HandleFunc("/auth/refresh-token", h.RefreshToken).Methods("POST")
	r.HandleFunc("/auth/logout", h.Middleware(h.Logout)).Methods("POST")
}
