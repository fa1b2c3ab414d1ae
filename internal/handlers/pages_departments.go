package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/roster/internal/models"
	"github.com/monocle-dev/roster/internal/store"
	"github.com/monocle-dev/roster/internal/utils"
)

type DepartmentForm struct {
	Title   string `form:"title" binding:"required"`
	Chief   string `form:"chief" binding:"required"`
	Members string `form:"members"`
	Email   string `form:"email" binding:"required,email"`
}

func departmentForm(department *models.Department) DepartmentForm {
	return DepartmentForm{
		Title:   department.Title,
		Chief:   uintString(department.ChiefID),
		Members: department.MemberIDs().String(),
		Email:   department.Email,
	}
}

func (f DepartmentForm) input() (store.DepartmentInput, error) {
	var in store.DepartmentInput
	var err error

	title := strings.TrimSpace(f.Title)
	email := strings.TrimSpace(f.Email)
	in.Title = store.Some(title)
	in.Email = store.Some(email)

	if in.Chief, err = parseUintField("chief", f.Chief); err != nil {
		return in, err
	}
	if in.Members, err = parseIDsField("members", f.Members); err != nil {
		return in, err
	}

	return in, nil
}

func (h *Handler) DepartmentsPage(ctx *gin.Context) {
	departments, err := h.Store.ListDepartments(ctx.Request.Context())

	if err != nil {
		h.pageError(ctx, err)
		return
	}

	h.render(ctx, http.StatusOK, "departments.html", gin.H{"Title": "List of Departments", "Departments": ptrs(departments)})
}

func (h *Handler) departmentFormPage(ctx *gin.Context, status int, action, submit string, form DepartmentForm, formErr string) {
	users, err := h.userChoices(ctx)

	if err != nil {
		h.pageError(ctx, err)
		return
	}

	h.render(ctx, status, "department_form.html", gin.H{
		"Title":  submit + " department",
		"Action": action,
		"Submit": submit,
		"Form":   form,
		"Users":  ptrs(users),
		"Error":  formErr,
	})
}

func (h *Handler) NewDepartmentPage(ctx *gin.Context) {
	form := DepartmentForm{Chief: uintString(utils.CurrentUser(ctx).ID)}
	h.departmentFormPage(ctx, http.StatusOK, "/departments/new", "Add", form, "")
}

func (h *Handler) CreateDepartmentPage(ctx *gin.Context) {
	var form DepartmentForm

	if err := ctx.ShouldBind(&form); err != nil {
		h.departmentFormPage(ctx, http.StatusBadRequest, "/departments/new", "Add", form, validationMessage(err))
		return
	}

	in, err := form.input()

	if err == nil {
		_, err = h.Store.CreateDepartment(ctx.Request.Context(), utils.CurrentUser(ctx), in)
	}

	if err != nil {
		if isFormError(err) {
			h.departmentFormPage(ctx, formStatus(err), "/departments/new", "Add", form, err.Error())
			return
		}
		h.pageError(ctx, err)
		return
	}

	ctx.Redirect(http.StatusSeeOther, "/departments")
}

func (h *Handler) EditDepartmentPage(ctx *gin.Context) {
	id, ok := h.pageID(ctx)

	if !ok {
		return
	}

	department, err := h.Store.DepartmentForEdit(ctx.Request.Context(), utils.CurrentUser(ctx), id)

	if err != nil {
		h.pageError(ctx, err)
		return
	}

	h.departmentFormPage(ctx, http.StatusOK, ctx.Request.URL.Path, "Save", departmentForm(department), "")
}

func (h *Handler) UpdateDepartmentPage(ctx *gin.Context) {
	id, ok := h.pageID(ctx)

	if !ok {
		return
	}

	var form DepartmentForm

	if err := ctx.ShouldBind(&form); err != nil {
		h.departmentFormPage(ctx, http.StatusBadRequest, ctx.Request.URL.Path, "Save", form, validationMessage(err))
		return
	}

	in, err := form.input()

	if err == nil {
		_, err = h.Store.UpdateDepartment(ctx.Request.Context(), utils.CurrentUser(ctx), id, in)
	}

	if err != nil {
		if isFormError(err) {
			h.departmentFormPage(ctx, formStatus(err), ctx.Request.URL.Path, "Save", form, err.Error())
			return
		}
		h.pageError(ctx, err)
		return
	}

	ctx.Redirect(http.StatusSeeOther, "/departments")
}

func (h *Handler) DeleteDepartmentPage(ctx *gin.Context) {
	id, ok := h.pageID(ctx)

	if !ok {
		return
	}

	if err := h.Store.DeleteDepartment(ctx.Request.Context(), utils.CurrentUser(ctx), id); err != nil {
		h.pageError(ctx, err)
		return
	}

	ctx.Redirect(http.StatusSeeOther, "/departments")
}
