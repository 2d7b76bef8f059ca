package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"knackhook/screening/internal/auth"
	"knackhook/screening/internal/middleware"
	"knackhook/screening/internal/models"
	"knackhook/screening/internal/utils"
)

// AuthHandler manages registration and the single session.
type AuthHandler struct {
	sessions *auth.Manager
	flows    *ScreeningHandler
	logger   *zap.Logger
}

func NewAuthHandler(sessions *auth.Manager, flows *ScreeningHandler, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{sessions: sessions, flows: flows, logger: logger}
}

func (h *AuthHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.RegisterRequest](r)

	user := models.User{
		ID:       uuid.New().String(),
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}
	if err := h.sessions.Register(r.Context(), user); err != nil {
		h.logger.Error("failed to register user", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "register_failed",
			Message: "Failed to register user",
		})
		return
	}

	utils.JSON(w, http.StatusCreated, map[string]string{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
}

func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.LoginRequest](r)

	user, err := h.sessions.CheckUserExists(r.Context(), req.Identifier)
	if err != nil {
		utils.JSON(w, http.StatusUnauthorized, models.ErrorResponse{
			Code:    "user_not_found",
			Message: "User not found. Please register first.",
		})
		return
	}
	if !auth.VerifyPassword(user, req.Password) {
		utils.JSON(w, http.StatusUnauthorized, models.ErrorResponse{
			Code:    "invalid_password",
			Message: "Invalid password",
		})
		return
	}

	if err := h.sessions.Login(r.Context(), *user); err != nil {
		h.logger.Error("failed to persist session", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "login_failed",
			Message: "Failed to log in",
		})
		return
	}
	h.flows.Reset()

	// a user with a saved record lands directly on the result screen
	hasEvaluation := h.sessions.GetUserEvaluation(r.Context()) != nil
	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"user": map[string]string{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
		"hasEvaluation": hasEvaluation,
	})
}

func (h *AuthHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	h.flows.Reset()
	h.sessions.Logout(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) MeHandler(w http.ResponseWriter, r *http.Request) {
	user := h.sessions.CurrentUser()
	if user == nil {
		utils.JSON(w, http.StatusUnauthorized, models.ErrorResponse{
			Code:    "no_session",
			Message: "No active session",
		})
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
}
