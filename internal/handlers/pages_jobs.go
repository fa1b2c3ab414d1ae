package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/roster/internal/models"
	"github.com/monocle-dev/roster/internal/store"
	"github.com/monocle-dev/roster/internal/utils"
)

type JobForm struct {
	Job           string `form:"job" binding:"required"`
	TeamLeader    string `form:"team_leader" binding:"required"`
	WorkSize      string `form:"work_size" binding:"required"`
	Collaborators string `form:"collaborators"`
	StartDate     string `form:"start_date"`
	EndDate       string `form:"end_date"`
	IsFinished    bool   `form:"is_finished"`
}

func jobForm(job *models.Job) JobForm {
	form := JobForm{
		Job:           job.Job,
		TeamLeader:    uintString(job.TeamLeaderID),
		WorkSize:      strconv.Itoa(job.WorkSize),
		Collaborators: job.CollaboratorIDs().String(),
		StartDate:     formDate(job.StartDate),
		EndDate:       formDate(job.EndDate),
		IsFinished:    job.IsFinished,
	}
	return form
}

// input converts the form. On the edit form a blank date clears it; on the
// create form it falls back to the default.
func (f JobForm) input(editing bool) (store.JobInput, error) {
	var in store.JobInput
	var err error

	in.Job = store.Some(f.Job)
	in.IsFinished = store.Some(f.IsFinished)

	if in.TeamLeader, err = parseUintField("team_leader", f.TeamLeader); err != nil {
		return in, err
	}
	if in.WorkSize, err = parseIntField("work_size", f.WorkSize); err != nil {
		return in, err
	}
	if in.Collaborators, err = parseIDsField("collaborators", f.Collaborators); err != nil {
		return in, err
	}
	if in.StartDate, err = parseDateField("start_date", f.StartDate, editing); err != nil {
		return in, err
	}
	if in.EndDate, err = parseDateField("end_date", f.EndDate, editing); err != nil {
		return in, err
	}

	return in, nil
}

func (h *Handler) JobsPage(ctx *gin.Context) {
	jobs, err := h.Store.ListJobs(ctx.Request.Context())

	if err != nil {
		h.pageError(ctx, err)
		return
	}

	h.render(ctx, http.StatusOK, "jobs.html", gin.H{"Title": "Works log", "Jobs": ptrs(jobs)})
}

func (h *Handler) jobFormPage(ctx *gin.Context, status int, action, submit string, form JobForm, formErr string) {
	users, err := h.userChoices(ctx)

	if err != nil {
		h.pageError(ctx, err)
		return
	}

	h.render(ctx, status, "job_form.html", gin.H{
		"Title":  submit + " job",
		"Action": action,
		"Submit": submit,
		"Form":   form,
		"Users":  ptrs(users),
		"Error":  formErr,
	})
}

func (h *Handler) NewJobPage(ctx *gin.Context) {
	form := JobForm{TeamLeader: uintString(utils.CurrentUser(ctx).ID)}
	h.jobFormPage(ctx, http.StatusOK, "/jobs/new", "Add", form, "")
}

func (h *Handler) CreateJobPage(ctx *gin.Context) {
	var form JobForm

	if err := ctx.ShouldBind(&form); err != nil {
		h.jobFormPage(ctx, http.StatusBadRequest, "/jobs/new", "Add", form, validationMessage(err))
		return
	}

	in, err := form.input(false)

	if err == nil {
		_, err = h.Store.CreateJob(ctx.Request.Context(), utils.CurrentUser(ctx), in)
	}

	if err != nil {
		if isFormError(err) {
			h.jobFormPage(ctx, formStatus(err), "/jobs/new", "Add", form, err.Error())
			return
		}
		h.pageError(ctx, err)
		return
	}

	ctx.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) EditJobPage(ctx *gin.Context) {
	id, ok := h.pageID(ctx)

	if !ok {
		return
	}

	job, err := h.Store.JobForEdit(ctx.Request.Context(), utils.CurrentUser(ctx), id)

	if err != nil {
		h.pageError(ctx, err)
		return
	}

	h.jobFormPage(ctx, http.StatusOK, ctx.Request.URL.Path, "Save", jobForm(job), "")
}

func (h *Handler) UpdateJobPage(ctx *gin.Context) {
	id, ok := h.pageID(ctx)

	if !ok {
		return
	}

	var form JobForm

	if err := ctx.ShouldBind(&form); err != nil {
		h.jobFormPage(ctx, http.StatusBadRequest, ctx.Request.URL.Path, "Save", form, validationMessage(err))
		return
	}

	in, err := form.input(true)

	if err == nil {
		_, err = h.Store.UpdateJob(ctx.Request.Context(), utils.CurrentUser(ctx), id, in)
	}

	if err != nil {
		if isFormError(err) {
			h.jobFormPage(ctx, formStatus(err), ctx.Request.URL.Path, "Save", form, err.Error())
			return
		}
		h.pageError(ctx, err)
		return
	}

	ctx.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) DeleteJobPage(ctx *gin.Context) {
	id, ok := h.pageID(ctx)

	if !ok {
		return
	}

	if err := h.Store.DeleteJob(ctx.Request.Context(), utils.CurrentUser(ctx), id); err != nil {
		h.pageError(ctx, err)
		return
	}

	ctx.Redirect(http.StatusSeeOther, "/")
}
