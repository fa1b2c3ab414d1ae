package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/roster/internal/models"
	"github.com/monocle-dev/roster/internal/serializer"
	"github.com/monocle-dev/roster/internal/store"
	"github.com/monocle-dev/roster/internal/types"
	"github.com/monocle-dev/roster/internal/utils"
)

type LoginUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) setSessionCookie(ctx *gin.Context, token string) {
	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     types.SessionCookie,
		Value:    token,
		Path:     "/",
		Domain:   h.Cookie.Domain,
		MaxAge:   int(h.Issuer.TTL().Seconds()),
		Secure:   h.Cookie.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSessionCookie(ctx *gin.Context) {
	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     types.SessionCookie,
		Value:    "",
		Path:     "/",
		Domain:   h.Cookie.Domain,
		MaxAge:   -1,
		Secure:   h.Cookie.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// startSession issues a token for user and sets the session cookie.
func (h *Handler) startSession(ctx *gin.Context, user *models.User) (string, error) {
	token, err := h.Issuer.GenerateJWT(user.ID)

	if err != nil {
		return "", err
	}

	h.setSessionCookie(ctx, token)
	return token, nil
}

func (h *Handler) userPayload(ctx *gin.Context, user *models.User) (map[string]any, error) {
	return serializer.Serialize(h.Store.Conn(ctx.Request.Context()), user, models.UserRules...)
}

func (h *Handler) Register(ctx *gin.Context) {
	var body store.UserInput

	if !h.readJSON(ctx, &body, "surname", "name", "email", "password") {
		return
	}

	user, err := h.Store.CreateUser(ctx.Request.Context(), utils.CurrentUser(ctx), body)

	if err != nil {
		h.respondError(ctx, err)
		return
	}

	token, err := h.startSession(ctx, user)

	if err != nil {
		h.respondError(ctx, err)
		return
	}

	payload, err := h.userPayload(ctx, user)

	if err != nil {
		h.respondError(ctx, err)
		return
	}

	h.Log.Info("user registered", "user_id", user.ID)
	ctx.JSON(http.StatusCreated, gin.H{"user": payload, "token": token})
}

func (h *Handler) Login(ctx *gin.Context) {
	var body LoginUserRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": validationMessage(err)})
		return
	}

	user, err := h.Store.Authenticate(ctx.Request.Context(), body.Email, body.Password)

	if err != nil {
		h.respondError(ctx, err)
		return
	}

	token, err := h.startSession(ctx, user)

	if err != nil {
		h.respondError(ctx, err)
		return
	}

	payload, err := h.userPayload(ctx, user)

	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": payload, "token": token})
}

func (h *Handler) Logout(ctx *gin.Context) {
	h.clearSessionCookie(ctx)
	ctx.JSON(http.StatusOK, gin.H{"success": "OK"})
}

func (h *Handler) Me(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	payload, err := h.userPayload(ctx, currentUser)

	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": payload})
}
