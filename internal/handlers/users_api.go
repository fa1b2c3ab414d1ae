package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/roster/internal/models"
	"github.com/monocle-dev/roster/internal/serializer"
	"github.com/monocle-dev/roster/internal/store"
	"github.com/monocle-dev/roster/internal/utils"
)

func (h *Handler) ListUsers(ctx *gin.Context) {
	users, err := h.Store.ListUsers(ctx.Request.Context())

	if err != nil {
		h.respondError(ctx, err)
		return
	}

	payload, err := serializer.SerializeAll(h.Store.Conn(ctx.Request.Context()), ptrs(users), models.UserRules...)

	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"users": payload})
}

func (h *Handler) GetUser(ctx *gin.Context) {
	id, err := utils.GetID(ctx)

	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	user, err := h.Store.GetUser(ctx.Request.Context(), id)

	if err != nil {
		h.respondError(ctx, err)
		return
	}

	payload, err := serializer.Serialize(h.Store.Conn(ctx.Request.Context()), user, models.UserRules...)

	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": payload})
}

func (h *Handler) CreateUser(ctx *gin.Context) {
	var body store.UserInput

	if !h.readJSON(ctx, &body, "surname", "name", "email", "password") {
		return
	}

	user, err := h.Store.CreateUser(ctx.Request.Context(), utils.CurrentUser(ctx), body)

	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"success": "OK", "id": user.ID})
}

func (h *Handler) UpdateUser(ctx *gin.Context) {
	id, err := utils.GetID(ctx)

	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	var body store.UserInput

	if !h.readJSON(ctx, &body) {
		return
	}

	if _, err := h.Store.UpdateUser(ctx.Request.Context(), utils.CurrentUser(ctx), id, body); err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": "OK"})
}

func (h *Handler) DeleteUser(ctx *gin.Context) {
	id, err := utils.GetID(ctx)

	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	if err := h.Store.DeleteUser(ctx.Request.Context(), utils.CurrentUser(ctx), id); err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": "OK"})
}
