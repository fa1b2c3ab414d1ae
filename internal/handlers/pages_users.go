package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/roster/internal/authz"
	"github.com/monocle-dev/roster/internal/models"
	"github.com/monocle-dev/roster/internal/store"
	"github.com/monocle-dev/roster/internal/utils"
)

type UserForm struct {
	Surname       string `form:"surname" binding:"required"`
	Name          string `form:"name" binding:"required"`
	Age           string `form:"age"`
	Position      string `form:"position"`
	Speciality    string `form:"speciality"`
	Address       string `form:"address"`
	Email         string `form:"email" binding:"required,email"`
	Password      string `form:"password"`
	PasswordAgain string `form:"password_again" binding:"eqfield=Password"`
	Role          string `form:"role" binding:"omitempty,oneof=member admin"`
}

func userForm(user *models.User) UserForm {
	form := UserForm{
		Surname:    user.Surname,
		Name:       user.Name,
		Position:   user.Position,
		Speciality: user.Speciality,
		Address:    user.Address,
		Email:      user.Email,
		Role:       user.Role,
	}
	if user.Age != nil {
		form.Age = strconv.Itoa(*user.Age)
	}
	return form
}

// input converts the form. An empty password keeps the current one, and the
// role is only passed on when the actor may assign it.
func (f UserForm) input(canAssignRole bool) (store.UserInput, error) {
	var in store.UserInput
	var err error

	surname := strings.TrimSpace(f.Surname)
	name := strings.TrimSpace(f.Name)
	email := strings.TrimSpace(f.Email)
	in.Surname, in.Name, in.Email = store.Some(surname), store.Some(name), store.Some(email)
	in.Position, in.Speciality, in.Address = store.Some(f.Position), store.Some(f.Speciality), store.Some(f.Address)

	if in.Age, err = parseIntField("age", f.Age); err != nil {
		return in, err
	}
	if f.Password != "" {
		if len(f.Password) < 8 {
			return in, fieldError("password must be at least 8 characters")
		}
		in.Password = store.Some(f.Password)
	}
	if canAssignRole && f.Role != "" {
		in.Role = store.Some(f.Role)
	}

	return in, nil
}

func (h *Handler) UsersPage(ctx *gin.Context) {
	users, err := h.Store.ListUsers(ctx.Request.Context())

	if err != nil {
		h.pageError(ctx, err)
		return
	}

	h.render(ctx, http.StatusOK, "users.html", gin.H{"Title": "Users", "Users": ptrs(users)})
}

func (h *Handler) userFormPage(ctx *gin.Context, status int, data gin.H) {
	data["CanAssignRole"] = authz.CanAssignRole(utils.CurrentUser(ctx))
	h.render(ctx, status, "user_form.html", data)
}

func (h *Handler) RegisterPage(ctx *gin.Context) {
	h.userFormPage(ctx, http.StatusOK, gin.H{
		"Title":    "Register",
		"Action":   "/register",
		"Submit":   "Register",
		"Register": true,
		"Form":     UserForm{Role: models.RoleMember},
	})
}

func (h *Handler) RegisterSubmit(ctx *gin.Context) {
	var form UserForm
	data := gin.H{"Title": "Register", "Action": "/register", "Submit": "Register", "Register": true}

	fail := func(status int, message string) {
		form.Password, form.PasswordAgain = "", ""
		data["Form"], data["Error"] = form, message
		h.userFormPage(ctx, status, data)
	}

	if err := ctx.ShouldBind(&form); err != nil {
		fail(http.StatusBadRequest, validationMessage(err))
		return
	}
	if form.Password == "" {
		fail(http.StatusBadRequest, "password is required")
		return
	}

	actor := utils.CurrentUser(ctx)
	in, err := form.input(authz.CanAssignRole(actor))

	var user *models.User
	if err == nil {
		user, err = h.Store.CreateUser(ctx.Request.Context(), actor, in)
	}

	if err != nil {
		if isFormError(err) {
			fail(formStatus(err), err.Error())
			return
		}
		h.pageError(ctx, err)
		return
	}

	h.Log.Info("user registered", "user_id", user.ID)

	// An administrator adding someone keeps their own session.
	if actor != nil {
		ctx.Redirect(http.StatusSeeOther, "/users")
		return
	}

	if _, err := h.startSession(ctx, user); err != nil {
		h.pageError(ctx, err)
		return
	}

	ctx.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) EditUserPage(ctx *gin.Context) {
	id, ok := h.pageID(ctx)

	if !ok {
		return
	}

	user, err := h.Store.UserForEdit(ctx.Request.Context(), utils.CurrentUser(ctx), id)

	if err != nil {
		h.pageError(ctx, err)
		return
	}

	h.userFormPage(ctx, http.StatusOK, gin.H{
		"Title":  "Edit user",
		"Action": ctx.Request.URL.Path,
		"Submit": "Save",
		"Form":   userForm(user),
	})
}

func (h *Handler) UpdateUserPage(ctx *gin.Context) {
	id, ok := h.pageID(ctx)

	if !ok {
		return
	}

	var form UserForm
	data := gin.H{"Title": "Edit user", "Action": ctx.Request.URL.Path, "Submit": "Save"}

	fail := func(status int, message string) {
		form.Password, form.PasswordAgain = "", ""
		data["Form"], data["Error"] = form, message
		h.userFormPage(ctx, status, data)
	}

	if err := ctx.ShouldBind(&form); err != nil {
		fail(http.StatusBadRequest, validationMessage(err))
		return
	}

	actor := utils.CurrentUser(ctx)
	in, err := form.input(authz.CanAssignRole(actor))

	if err == nil {
		_, err = h.Store.UpdateUser(ctx.Request.Context(), actor, id, in)
	}

	if err != nil {
		if isFormError(err) {
			fail(formStatus(err), err.Error())
			return
		}
		h.pageError(ctx, err)
		return
	}

	ctx.Redirect(http.StatusSeeOther, "/users")
}

func (h *Handler) DeleteUserPage(ctx *gin.Context) {
	id, ok := h.pageID(ctx)

	if !ok {
		return
	}

	actor := utils.CurrentUser(ctx)

	if err := h.Store.DeleteUser(ctx.Request.Context(), actor, id); err != nil {
		h.pageError(ctx, err)
		return
	}

	if actor.ID == id {
		h.clearSessionCookie(ctx)
		ctx.Redirect(http.StatusSeeOther, "/")
		return
	}

	ctx.Redirect(http.StatusSeeOther, "/users")
}
