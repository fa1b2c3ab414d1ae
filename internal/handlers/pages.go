package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/roster/internal/models"
	"github.com/monocle-dev/roster/internal/store"
	"github.com/monocle-dev/roster/internal/utils"
)

func (h *Handler) render(ctx *gin.Context, status int, name string, data gin.H) {
	data["User"] = utils.CurrentUser(ctx)
	ctx.HTML(status, name, data)
}

func (h *Handler) message(ctx *gin.Context, status int, title, message string) {
	h.render(ctx, status, "message.html", gin.H{"Title": title, "Message": message})
}

func (h *Handler) NotFoundPage(ctx *gin.Context) {
	h.message(ctx, http.StatusNotFound, "Not found", "There is nothing here.")
}

// pageError renders store errors that are not form validation problems.
func (h *Handler) pageError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		h.NotFoundPage(ctx)
	case errors.Is(err, store.ErrUnauthenticated):
		ctx.Redirect(http.StatusSeeOther, "/login?next="+url.QueryEscape(ctx.Request.URL.RequestURI()))
	case errors.Is(err, store.ErrReferenced), errors.Is(err, store.ErrConflict), errors.Is(err, store.ErrInvalid):
		h.message(ctx, http.StatusConflict, "Not possible", err.Error())
	default:
		h.Log.Error("page failed", "method", ctx.Request.Method, "path", ctx.Request.URL.Path, "error", err)
		_ = ctx.Error(err)
		h.message(ctx, http.StatusInternalServerError, "Something went wrong", "Please try again later.")
	}
}

// formStatus picks the status for a form that is shown again with an error.
func formStatus(err error) int {
	if errors.Is(err, store.ErrConflict) {
		return http.StatusConflict
	}
	return http.StatusBadRequest
}

// isFormError reports whether err should be shown next to the form instead of
// replacing the page.
func isFormError(err error) bool {
	return errors.Is(err, store.ErrInvalid) || errors.Is(err, store.ErrConflict)
}

func (h *Handler) pageID(ctx *gin.Context) (uint, bool) {
	id, err := utils.GetID(ctx)

	if err != nil {
		h.NotFoundPage(ctx)
		return 0, false
	}

	return id, true
}

func (h *Handler) userChoices(ctx *gin.Context) ([]models.User, error) {
	return h.Store.ListUsers(ctx.Request.Context())
}

func parseUintField(name, value string) (store.Optional[uint], error) {
	value = strings.TrimSpace(value)

	if value == "" {
		return store.Null[uint](), nil
	}

	n, err := strconv.ParseUint(value, 10, 32)

	if err != nil || n == 0 {
		return store.Optional[uint]{}, invalidField(name)
	}

	return store.Some(uint(n)), nil
}

// parseIntField reads a non-negative number. A blank field is null.
func parseIntField(name, value string) (store.Optional[int], error) {
	value = strings.TrimSpace(value)

	if value == "" {
		return store.Null[int](), nil
	}

	n, err := strconv.Atoi(value)

	if err != nil || n < 0 {
		return store.Optional[int]{}, invalidField(name)
	}

	return store.Some(n), nil
}

// parseDateField reads a date input. A blank field clears the date when
// clear is set and is left out otherwise.
func parseDateField(name, value string, clear bool) (store.Optional[store.DateTime], error) {
	if strings.TrimSpace(value) == "" {
		if clear {
			return store.Null[store.DateTime](), nil
		}
		return store.Optional[store.DateTime]{}, nil
	}

	d, err := store.ParseDateTime(value)

	if err != nil {
		return store.Optional[store.DateTime]{}, invalidField(name)
	}

	return store.Some(d), nil
}

func parseIDsField(name, value string) (store.Optional[models.IDList], error) {
	ids, err := models.ParseIDList(value)

	if err != nil {
		return store.Optional[models.IDList]{}, invalidField(name)
	}

	return store.Some(ids), nil
}

type fieldError string

func (e fieldError) Error() string { return string(e) }
func (e fieldError) Is(target error) bool { return target == store.ErrInvalid }

func invalidField(name string) error {
	return fieldError(name + " is invalid")
}

func formDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Local().Format("2006-01-02T15:04")
}

func uintString(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
