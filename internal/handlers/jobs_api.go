package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/roster/internal/models"
	"github.com/monocle-dev/roster/internal/serializer"
	"github.com/monocle-dev/roster/internal/store"
	"github.com/monocle-dev/roster/internal/utils"
)

func (h *Handler) ListJobs(ctx *gin.Context) {
	jobs, err := h.Store.ListJobs(ctx.Request.Context())

	if err != nil {
		h.respondError(ctx, err)
		return
	}

	payload, err := serializer.SerializeAll(h.Store.Conn(ctx.Request.Context()), ptrs(jobs), models.JobRules...)

	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"jobs": payload})
}

func (h *Handler) GetJob(ctx *gin.Context) {
	id, err := utils.GetID(ctx)

	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	job, err := h.Store.GetJob(ctx.Request.Context(), id)

	if err != nil {
		h.respondError(ctx, err)
		return
	}

	payload, err := serializer.Serialize(h.Store.Conn(ctx.Request.Context()), job, models.JobRules...)

	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"job": payload})
}

func (h *Handler) CreateJob(ctx *gin.Context) {
	var body store.JobInput

	if !h.readJSON(ctx, &body, "team_leader", "job", "work_size") {
		return
	}

	job, err := h.Store.CreateJob(ctx.Request.Context(), utils.CurrentUser(ctx), body)

	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"success": "OK", "id": job.ID})
}

func (h *Handler) UpdateJob(ctx *gin.Context) {
	id, err := utils.GetID(ctx)

	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	var body store.JobInput

	if !h.readJSON(ctx, &body) {
		return
	}

	if _, err := h.Store.UpdateJob(ctx.Request.Context(), utils.CurrentUser(ctx), id, body); err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": "OK"})
}

func (h *Handler) DeleteJob(ctx *gin.Context) {
	id, err := utils.GetID(ctx)

	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	if err := h.Store.DeleteJob(ctx.Request.Context(), utils.CurrentUser(ctx), id); err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": "OK"})
}
