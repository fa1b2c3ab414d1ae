package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/roster/internal/models"
	"github.com/monocle-dev/roster/internal/serializer"
	"github.com/monocle-dev/roster/internal/store"
	"github.com/monocle-dev/roster/internal/utils"
)

func (h *Handler) ListDepartments(ctx *gin.Context) {
	departments, err := h.Store.ListDepartments(ctx.Request.Context())

	if err != nil {
		h.respondError(ctx, err)
		return
	}

	payload, err := serializer.SerializeAll(h.Store.Conn(ctx.Request.Context()), ptrs(departments), models.DepartmentRules...)

	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"departments": payload})
}

func (h *Handler) GetDepartment(ctx *gin.Context) {
	id, err := utils.GetID(ctx)

	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	department, err := h.Store.GetDepartment(ctx.Request.Context(), id)

	if err != nil {
		h.respondError(ctx, err)
		return
	}

	payload, err := serializer.Serialize(h.Store.Conn(ctx.Request.Context()), department, models.DepartmentRules...)

	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"department": payload})
}

func (h *Handler) CreateDepartment(ctx *gin.Context) {
	var body store.DepartmentInput

	if !h.readJSON(ctx, &body, "title", "chief", "email") {
		return
	}

	department, err := h.Store.CreateDepartment(ctx.Request.Context(), utils.CurrentUser(ctx), body)

	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"success": "OK", "id": department.ID})
}

func (h *Handler) UpdateDepartment(ctx *gin.Context) {
	id, err := utils.GetID(ctx)

	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	var body store.DepartmentInput

	if !h.readJSON(ctx, &body) {
		return
	}

	if _, err := h.Store.UpdateDepartment(ctx.Request.Context(), utils.CurrentUser(ctx), id, body); err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": "OK"})
}

func (h *Handler) DeleteDepartment(ctx *gin.Context) {
	id, err := utils.GetID(ctx)

	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	if err := h.Store.DeleteDepartment(ctx.Request.Context(), utils.CurrentUser(ctx), id); err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": "OK"})
}
