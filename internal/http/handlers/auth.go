package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskhub-dev/taskhub/internal/domain/user"
	"github.com/taskhub-dev/taskhub/internal/http/middlewares"
	"github.com/taskhub-dev/taskhub/internal/security"
)

type UserStore interface {
	CreateUser(ctx context.Context, name, email, passwordHash string) (user.User, error)
	GetUserByEmail(ctx context.Context, email string) (user.User, error)
	GetUserByID(ctx context.Context, id int) (user.User, error)
}

// SessionIssuer is the mutating side of the session registry; the read side
// lives in the auth middleware.
type SessionIssuer interface {
	Issue(userID int) (string, error)
	Revoke(token string) bool
}

type AuthHandler struct {
	users    UserStore
	sessions SessionIssuer
}

func NewAuthHandler(users UserStore, sessions SessionIssuer) *AuthHandler {
	return &AuthHandler{
		users:    users,
		sessions: sessions,
	}
}

// Register creates the account and logs it straight in.
func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	u, err := h.users.CreateUser(ctx.Request.Context(), req.Name, req.Email, hash)

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondConflict(ctx, "email_taken", "Email is already registered.")
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	token, err := h.sessions.Issue(u.ID)

	if err != nil {
		RespondInternal(ctx, "Could not create session")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"user":  u.Public(),
		"token": token,
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	foundUser, err := h.users.GetUserByEmail(ctx.Request.Context(), req.Email)

	if err != nil {
		// burn a hash comparison so an unknown email costs the same as a
		// wrong password, and answer identically
		security.BurnCompare(req.Password)
		RespondInvalidCredentials(ctx)
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		RespondInvalidCredentials(ctx)
		return
	}

	token, err := h.sessions.Issue(foundUser.ID)

	if err != nil {
		RespondInternal(ctx, "Could not create session")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user":  foundUser.Public(),
		"token": token,
	})
}

func (h *AuthHandler) Me(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Missing identity context")
		return
	}

	u, err := h.users.GetUserByID(ctx.Request.Context(), userID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not load user")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": u.Public()})
}

// Logout is deliberately not behind the auth gate: presenting no token is a
// 400, presenting a token the registry does not know (already revoked,
// malformed) is a 400 too. Revoke's boolean tells the two apart from a live
// logout.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	raw := middlewares.ExtractToken(ctx)

	if raw == "" {
		RespondBadRequest(ctx, "No token provided", nil)
		return
	}

	if !h.sessions.Revoke(raw) {
		RespondBadRequest(ctx, "Invalid token", nil)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Session closed"})
}
