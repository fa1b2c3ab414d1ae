package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/monocle-dev/roster/internal/auth"
	"github.com/monocle-dev/roster/internal/models"
	"github.com/monocle-dev/roster/internal/store"
)

type CookieConfig struct {
	Domain string
	Secure bool
}

// Handler serves both the JSON API and the HTML pages.
type Handler struct {
	Store  *store.Store
	Issuer *auth.Issuer
	Log    *slog.Logger
	Cookie CookieConfig
}

func New(s *store.Store, issuer *auth.Issuer, log *slog.Logger, cookie CookieConfig) *Handler {
	return &Handler{Store: s, Issuer: issuer, Log: log, Cookie: cookie}
}

func init() {
	// Report json/form names in validation messages instead of Go field names.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(fieldName)
		v.RegisterCustomTypeFunc(optionalValue,
			store.Optional[uint]{},
			store.Optional[int]{},
			store.Optional[bool]{},
			store.Optional[string]{},
			store.Optional[store.DateTime]{},
			store.Optional[models.IDList]{},
		)
	}
}

// optionalValue lets validation tags on store.Optional fields check the
// wrapped value. Absent and null fields validate as empty.
func optionalValue(field reflect.Value) any {
	if o, ok := field.Interface().(interface{ ValidationValue() any }); ok {
		return o.ValidationValue()
	}

	return nil
}

func fieldName(field reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name, _, _ := strings.Cut(field.Tag.Get(tag), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return field.Name
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Bad request"
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", fe.Field()))
		case "email":
			parts = append(parts, fmt.Sprintf("%s must be a valid email address", fe.Field()))
		case "eqfield":
			parts = append(parts, fmt.Sprintf("%s does not match", fe.Field()))
		case "min", "max":
			parts = append(parts, fmt.Sprintf("%s must be %s %s", fe.Field(), map[string]string{"min": "at least", "max": "at most"}[fe.Tag()], fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return strings.Join(parts, "; ")
}

// readJSON decodes a JSON object body into dest after checking that every
// required key is present. It writes the error response itself and reports
// whether the handler may continue.
func (h *Handler) readJSON(ctx *gin.Context, dest any, required ...string) bool {
	raw, err := ctx.GetRawData()

	if err != nil || len(bytes.TrimSpace(raw)) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Empty request"})
		return false
	}

	var fields map[string]json.RawMessage

	if err := json.Unmarshal(raw, &fields); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Bad request"})
		return false
	}

	if len(fields) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Empty request"})
		return false
	}

	for _, key := range required {
		if _, ok := fields[key]; !ok {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Bad request"})
			return false
		}
	}

	if err := binding.JSON.BindBody(raw, dest); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": validationMessage(err)})
		} else {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Bad request", "details": err.Error()})
		}
		return false
	}

	return true
}

// respondError maps store errors onto the JSON error payloads.
func (h *Handler) respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, store.ErrUnauthenticated):
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.Is(err, store.ErrConflict), errors.Is(err, store.ErrReferenced):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrInvalid), errors.Is(err, store.ErrBadCredentials):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.Log.Error("request failed", "method", ctx.Request.Method, "path", ctx.Request.URL.Path, "error", err)
		_ = ctx.Error(err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func ptrs[T any](list []T) []*T {
	out := make([]*T, len(list))
	for i := range list {
		out[i] = &list[i]
	}
	return out
}
