package router

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/roster/db"
	"github.com/monocle-dev/roster/internal/auth"
	"github.com/monocle-dev/roster/internal/handlers"
	"github.com/monocle-dev/roster/internal/store"
	"github.com/monocle-dev/roster/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	conn, err := db.Open(db.Config{Path: filepath.Join(t.TempDir(), "roster.sqlite"), Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(conn) })

	issuer, err := auth.NewIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	h := handlers.New(store.New(conn), issuer, logger, handlers.CookieConfig{})
	r, err := NewRouter(h, []string{"http://localhost:3000"}, logger)
	require.NoError(t, err)

	return r
}

func call(r *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func submit(r *gin.Engine, path string, form url.Values, session *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if session != nil {
		req.AddCookie(session)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func page(r *gin.Engine, path string, session *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if session != nil {
		req.AddCookie(session)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

// register creates a user through the API and returns its id and token.
func register(t *testing.T, r *gin.Engine, email string) (uint, string) {
	t.Helper()

	body := fmt.Sprintf(`{"surname":"Scott","name":"Ridley","email":%q,"password":"wonderful-mars"}`, email)
	w := call(r, http.MethodPost, "/api/auth/register", body, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	payload := decode(t, w)
	user := payload["user"].(map[string]any)
	return uint(user["id"].(float64)), payload["token"].(string)
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == types.SessionCookie && c.Value != "" {
			return c
		}
	}
	t.Fatalf("no session cookie in response")
	return nil
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t)

	w := call(r, http.MethodGet, "/api/health", "", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}

func TestJobLifecycle(t *testing.T) {
	r := newTestRouter(t)
	leader, token := register(t, r, "scott@mars.org")
	second, _ := register(t, r, "weer@mars.org")
	third, _ := register(t, r, "sanders@mars.org")

	body := fmt.Sprintf(`{"team_leader":%d,"job":"deployment of residential modules 1 and 2","work_size":15,"collaborators":"%d, %d"}`, leader, second, third)
	w := call(r, http.MethodPost, "/api/jobs", body, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	created := decode(t, w)
	assert.Equal(t, "OK", created["success"])
	id := uint(created["id"].(float64))

	w = call(r, http.MethodGet, fmt.Sprintf("/api/jobs/%d", id), "", "")
	require.Equal(t, http.StatusOK, w.Code)

	job := decode(t, w)["job"].(map[string]any)
	assert.Equal(t, "deployment of residential modules 1 and 2", job["job"])
	assert.Equal(t, []any{float64(second), float64(third)}, job["collaborators"])

	user := job["user"].(map[string]any)
	assert.Equal(t, "scott@mars.org", user["email"])
	assert.NotContains(t, user, "jobs")
	assert.NotContains(t, user, "departments")
	assert.NotContains(t, user, "hashed_password")

	w = call(r, http.MethodPut, fmt.Sprintf("/api/jobs/%d", id), `{"work_size":20}`, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = call(r, http.MethodGet, fmt.Sprintf("/api/jobs/%d", id), "", "")
	job = decode(t, w)["job"].(map[string]any)
	assert.Equal(t, float64(20), job["work_size"])
	assert.Equal(t, "deployment of residential modules 1 and 2", job["job"])

	w = call(r, http.MethodDelete, fmt.Sprintf("/api/jobs/%d", id), "", token)
	require.Equal(t, http.StatusOK, w.Code)

	w = call(r, http.MethodGet, fmt.Sprintf("/api/jobs/%d", id), "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not found", decode(t, w)["error"])
}

func TestJobListIsPublic(t *testing.T) {
	r := newTestRouter(t)
	leader, token := register(t, r, "scott@mars.org")

	w := call(r, http.MethodPost, "/api/jobs", fmt.Sprintf(`{"team_leader":%d,"job":"exploration","work_size":3}`, leader), token)
	require.Equal(t, http.StatusCreated, w.Code)

	w = call(r, http.MethodGet, "/api/jobs", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["jobs"], 1)
}

func TestJobMutationsRequireSession(t *testing.T) {
	r := newTestRouter(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/jobs"},
		{http.MethodPut, "/api/jobs/1"},
		{http.MethodDelete, "/api/jobs/1"},
		{http.MethodPost, "/api/departments"},
	} {
		w := call(r, tc.method, tc.path, `{"job":"x"}`, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, tc.path)
		assert.Equal(t, "Unauthorized", decode(t, w)["error"])
	}

	w := call(r, http.MethodPost, "/api/jobs", `{"job":"x"}`, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateJobRejectsEmptyAndIncompleteBodies(t *testing.T) {
	r := newTestRouter(t)
	_, token := register(t, r, "scott@mars.org")

	tests := []struct {
		name string
		body string
		want string
	}{
		{"no body", "", "Empty request"},
		{"empty object", "{}", "Empty request"},
		{"missing keys", `{"job":"exploration"}`, "Bad request"},
		{"not an object", `[1, 2]`, "Bad request"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := call(r, http.MethodPost, "/api/jobs", tc.body, token)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tc.want, decode(t, w)["error"])
		})
	}

	w := call(r, http.MethodPut, "/api/jobs/1", "", token)
	assert.Equal(t, "Empty request", decode(t, w)["error"])
}

func TestCreateJobRejectsTakenID(t *testing.T) {
	r := newTestRouter(t)
	leader, token := register(t, r, "scott@mars.org")
	body := fmt.Sprintf(`{"id":5,"team_leader":%d,"job":"exploration","work_size":3}`, leader)

	w := call(r, http.MethodPost, "/api/jobs", body, token)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, float64(5), decode(t, w)["id"])

	w = call(r, http.MethodPost, "/api/jobs", body, token)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Id already exists", decode(t, w)["error"])
}

func TestJobOwnership(t *testing.T) {
	r := newTestRouter(t)
	_, adminToken := register(t, r, "admin@mars.org")
	owner, ownerToken := register(t, r, "scott@mars.org")
	_, strangerToken := register(t, r, "weer@mars.org")

	w := call(r, http.MethodPost, "/api/jobs", fmt.Sprintf(`{"team_leader":%d,"job":"exploration","work_size":3}`, owner), ownerToken)
	require.Equal(t, http.StatusCreated, w.Code)
	path := fmt.Sprintf("/api/jobs/%d", uint(decode(t, w)["id"].(float64)))

	w = call(r, http.MethodPut, path, `{"job":"hijacked"}`, strangerToken)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = call(r, http.MethodDelete, path, "", strangerToken)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = call(r, http.MethodPut, path, `{"job":"reviewed"}`, adminToken)
	assert.Equal(t, http.StatusOK, w.Code)

	w = call(r, http.MethodGet, path, "", "")
	assert.Equal(t, "reviewed", decode(t, w)["job"].(map[string]any)["job"])
}

func TestInvalidIDIsNotFound(t *testing.T) {
	r := newTestRouter(t)

	for _, path := range []string{"/api/jobs/abc", "/api/jobs/0", "/api/users/-1", "/api/departments/x"} {
		w := call(r, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
}

func TestUserPayload(t *testing.T) {
	r := newTestRouter(t)
	id, token := register(t, r, "scott@mars.org")

	w := call(r, http.MethodPost, "/api/jobs", fmt.Sprintf(`{"team_leader":%d,"job":"exploration","work_size":3}`, id), token)
	require.Equal(t, http.StatusCreated, w.Code)

	w = call(r, http.MethodGet, fmt.Sprintf("/api/users/%d", id), "", "")
	require.Equal(t, http.StatusOK, w.Code)

	user := decode(t, w)["user"].(map[string]any)
	assert.NotContains(t, user, "hashed_password")
	assert.Equal(t, "admin", user["role"])

	jobs := user["jobs"].([]any)
	require.Len(t, jobs, 1)
	assert.Equal(t, "exploration", jobs[0].(map[string]any)["job"])
	assert.NotContains(t, jobs[0], "user")

	w = call(r, http.MethodGet, "/api/auth/me", "", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "scott@mars.org", decode(t, w)["user"].(map[string]any)["email"])
}

func TestCreateUserRequiresFields(t *testing.T) {
	r := newTestRouter(t)

	w := call(r, http.MethodPost, "/api/users", `{"surname":"Scott","name":"Ridley","email":"scott@mars.org"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Bad request", decode(t, w)["error"])

	w = call(r, http.MethodPost, "/api/users", `{"surname":"Scott","name":"Ridley","email":"scott@mars.org","password":"wonderful-mars"}`, "")
	assert.Equal(t, http.StatusCreated, w.Code)

	w = call(r, http.MethodPost, "/api/users", `{"surname":"Scott","name":"Ridley","email":"scott@mars.org","password":"wonderful-mars"}`, "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLeaderCannotBeDeleted(t *testing.T) {
	r := newTestRouter(t)
	id, token := register(t, r, "scott@mars.org")

	w := call(r, http.MethodPost, "/api/jobs", fmt.Sprintf(`{"team_leader":%d,"job":"exploration","work_size":3}`, id), token)
	require.Equal(t, http.StatusCreated, w.Code)

	w = call(r, http.MethodDelete, fmt.Sprintf("/api/users/%d", id), "", token)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDepartmentAPI(t *testing.T) {
	r := newTestRouter(t)
	chief, token := register(t, r, "scott@mars.org")
	member, _ := register(t, r, "weer@mars.org")

	body := fmt.Sprintf(`{"title":"Geological exploration","chief":%d,"members":[%d],"email":"geo@mars.org"}`, chief, member)
	w := call(r, http.MethodPost, "/api/departments", body, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	path := fmt.Sprintf("/api/departments/%d", uint(decode(t, w)["id"].(float64)))

	w = call(r, http.MethodGet, path, "", "")
	require.Equal(t, http.StatusOK, w.Code)

	department := decode(t, w)["department"].(map[string]any)
	assert.Equal(t, []any{float64(member)}, department["members"])
	assert.Equal(t, "scott@mars.org", department["user"].(map[string]any)["email"])
}

func TestPagesRedirectAnonymousToLogin(t *testing.T) {
	r := newTestRouter(t)

	w := page(r, "/jobs/new", nil)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login?next=%2Fjobs%2Fnew", w.Header().Get("Location"))
}

func TestPublicPages(t *testing.T) {
	r := newTestRouter(t)

	w := page(r, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Works log")

	w = page(r, "/index", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "apple trees")

	w = page(r, "/no/such/page", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLoginPage(t *testing.T) {
	r := newTestRouter(t)
	register(t, r, "scott@mars.org")

	w := submit(r, "/login", url.Values{"email": {"scott@mars.org"}, "password": {"wrong-password"}}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid email or password")

	w = submit(r, "/login", url.Values{
		"email":    {"scott@mars.org"},
		"password": {"wonderful-mars"},
		"next":     {"/departments"},
	}, nil)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/departments", w.Header().Get("Location"))
	sessionCookie(t, w)

	w = submit(r, "/login", url.Values{
		"email":    {"scott@mars.org"},
		"password": {"wonderful-mars"},
		"next":     {"//evil.example"},
	}, nil)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestJobPages(t *testing.T) {
	r := newTestRouter(t)

	w := submit(r, "/register", url.Values{
		"surname":        {"Scott"},
		"name":           {"Ridley"},
		"email":          {"scott@mars.org"},
		"password":       {"wonderful-mars"},
		"password_again": {"wonderful-mars"},
	}, nil)
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	owner := sessionCookie(t, w)

	w = page(r, "/jobs/new", owner)
	require.Equal(t, http.StatusOK, w.Code)

	w = submit(r, "/jobs/new", url.Values{"job": {"exploration"}, "team_leader": {"1"}, "work_size": {"abc"}}, owner)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "work_size is invalid")

	w = submit(r, "/jobs/new", url.Values{
		"job":         {"exploration of mineral resources"},
		"team_leader": {"1"},
		"work_size":   {"15"},
		"start_date":  {"2026-03-14T09:30"},
	}, owner)
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	assert.Equal(t, "/", w.Header().Get("Location"))

	w = page(r, "/", nil)
	assert.Contains(t, w.Body.String(), "exploration of mineral resources")

	w = page(r, "/jobs/1/edit", owner)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "2026-03-14T09:30")

	w = submit(r, "/register", url.Values{
		"surname":        {"Weer"},
		"name":           {"Andy"},
		"email":          {"weer@mars.org"},
		"password":       {"wonderful-mars"},
		"password_again": {"wonderful-mars"},
	}, nil)
	require.Equal(t, http.StatusSeeOther, w.Code)
	stranger := sessionCookie(t, w)

	w = page(r, "/jobs/1/edit", stranger)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = submit(r, "/jobs/1/delete", url.Values{}, stranger)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = submit(r, "/jobs/1/delete", url.Values{}, owner)
	assert.Equal(t, http.StatusSeeOther, w.Code)

	w = page(r, "/", nil)
	assert.NotContains(t, w.Body.String(), "exploration of mineral resources")
}

func TestRegisterPageRejectsMismatchedPasswords(t *testing.T) {
	r := newTestRouter(t)

	w := submit(r, "/register", url.Values{
		"surname":        {"Scott"},
		"name":           {"Ridley"},
		"email":          {"scott@mars.org"},
		"password":       {"wonderful-mars"},
		"password_again": {"other-password"},
	}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "password_again does not match")
}

func TestUpdateJobNullFields(t *testing.T) {
	r := newTestRouter(t)
	leader, token := register(t, r, "scott@mars.org")

	body := fmt.Sprintf(`{"team_leader":%d,"job":"exploration","work_size":3,"end_date":"2026-05-01"}`, leader)
	w := call(r, http.MethodPost, "/api/jobs", body, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	path := fmt.Sprintf("/api/jobs/%d", uint(decode(t, w)["id"].(float64)))

	w = call(r, http.MethodGet, path, "", "")
	assert.NotNil(t, decode(t, w)["job"].(map[string]any)["end_date"])

	w = call(r, http.MethodPut, path, `{"end_date":null}`, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = call(r, http.MethodGet, path, "", "")
	job := decode(t, w)["job"].(map[string]any)
	assert.Nil(t, job["end_date"])
	assert.NotNil(t, job["start_date"])

	for _, body := range []string{`{"job":null}`, `{"team_leader":null}`, `{"work_size":null}`} {
		w = call(r, http.MethodPut, path, body, token)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Equal(t, "Bad request", decode(t, w)["error"])
	}

	w = call(r, http.MethodGet, path, "", "")
	assert.Equal(t, "exploration", decode(t, w)["job"].(map[string]any)["job"])
}

func TestOptionalFieldsAreValidated(t *testing.T) {
	r := newTestRouter(t)
	leader, token := register(t, r, "scott@mars.org")

	w := call(r, http.MethodPost, "/api/jobs", fmt.Sprintf(`{"team_leader":%d,"job":"exploration","work_size":-1}`, leader), token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "work_size must be at least 0", decode(t, w)["error"])

	w = call(r, http.MethodPut, fmt.Sprintf("/api/users/%d", leader), `{"email":"not-an-email"}`, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "email must be a valid email address", decode(t, w)["error"])
}
