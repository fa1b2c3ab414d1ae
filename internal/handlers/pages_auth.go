package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/roster/internal/store"
)

type LoginForm struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required"`
	Next     string `form:"next"`
}

// safeNext only allows redirects back into this site.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

func (h *Handler) IndexPage(ctx *gin.Context) {
	h.message(ctx, http.StatusOK, "Mission Colonization of Mars", "And apple trees will bloom on Mars!")
}

func (h *Handler) LoginPage(ctx *gin.Context) {
	h.render(ctx, http.StatusOK, "login.html", gin.H{
		"Title": "Log in",
		"Next":  safeNext(ctx.Query("next")),
		"Email": "",
	})
}

func (h *Handler) LoginSubmit(ctx *gin.Context) {
	var form LoginForm
	bindErr := ctx.ShouldBind(&form)

	data := gin.H{"Title": "Log in", "Next": safeNext(form.Next), "Email": form.Email}

	if bindErr != nil {
		data["Error"] = validationMessage(bindErr)
		h.render(ctx, http.StatusBadRequest, "login.html", data)
		return
	}

	user, err := h.Store.Authenticate(ctx.Request.Context(), form.Email, form.Password)

	if err != nil {
		if errors.Is(err, store.ErrBadCredentials) {
			data["Error"] = err.Error()
			h.render(ctx, http.StatusUnauthorized, "login.html", data)
			return
		}
		h.pageError(ctx, err)
		return
	}

	if _, err := h.startSession(ctx, user); err != nil {
		h.pageError(ctx, err)
		return
	}

	ctx.Redirect(http.StatusSeeOther, safeNext(form.Next))
}

func (h *Handler) LogoutPage(ctx *gin.Context) {
	h.clearSessionCookie(ctx)
	ctx.Redirect(http.StatusSeeOther, "/")
}
