package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmonco/mpute/internal/middleware"
	"github.com/mmonco/mpute/internal/repositories"
	"github.com/mmonco/mpute/internal/services"
	"github.com/mmonco/mpute/internal/testutil"
	"github.com/mmonco/mpute/pkg/config"
)

// stubVerifier records calls and returns a configured verdict
type stubVerifier struct {
	err   error
	calls int
}

func (v *stubVerifier) Verify(ctx context.Context, command string) error {
	v.calls++
	return v.err
}

type testServer struct {
	router      *gin.Engine
	projectRepo *repositories.ProjectRepository
}

func newTestServer(t *testing.T, verifier services.CommandVerifier) *testServer {
	t.Helper()
	require.NoError(t, config.Load())
	gin.SetMode(gin.TestMode)

	projectRepo := repositories.NewProjectRepository(testutil.NewDB(t))
	projectService := services.NewProjectService(projectRepo, verifier)
	projectHandler := NewProjectHandler(projectService)

	router := gin.New()
	router.Use(middleware.SessionMiddleware())

	// Test-only login route so tests can obtain a signed session cookie
	// through the public middleware API
	router.GET("/test-login/:user", func(c *gin.Context) {
		require.NoError(t, middleware.SetSession(c, c.Param("user"), "testuser"))
		c.Status(http.StatusNoContent)
	})

	projects := router.Group("/projects")
	projects.Use(middleware.AuthRequired())
	{
		projects.POST("", projectHandler.MutateProject)
		projects.GET("/all", projectHandler.ListAllProjects)
		projects.GET("/mine", projectHandler.ListMyProjects)
	}

	return &testServer{router: router, projectRepo: projectRepo}
}

func (s *testServer) login(t *testing.T, userID string) *http.Cookie {
	t.Helper()
	req, _ := http.NewRequest("GET", "/test-login/"+userID, nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == "session" {
			return cookie
		}
	}
	t.Fatal("no session cookie issued")
	return nil
}

func (s *testServer) mutate(cookie *http.Cookie, form url.Values) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("POST", "/projects", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) get(cookie *http.Cookie, path string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func newProjectForm() url.Values {
	return url.Values{
		"intent":      {"new"},
		"name":        {"Protein Folding"},
		"description": {"Fold proteins at home"},
		"command":     {"docker run fold:latest"},
	}
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestMutateProjectUnauthenticated(t *testing.T) {
	verifier := &stubVerifier{}
	server := newTestServer(t, verifier)

	w := server.mutate(nil, newProjectForm())

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.Zero(t, verifier.calls, "unauthenticated requests never reach the verifier")
}

func TestMutateProjectCreate(t *testing.T) {
	server := newTestServer(t, &stubVerifier{})
	cookie := server.login(t, "user-1")

	w := server.mutate(cookie, newProjectForm())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeBody(t, w)["ok"])

	projects, err := server.projectRepo.GetByCreator("user-1")
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "Protein Folding", projects[0].Name)
	assert.True(t, projects[0].Active)
	assert.False(t, projects[0].Verified)
}

func TestMutateProjectCreateMissingCommand(t *testing.T) {
	verifier := &stubVerifier{}
	server := newTestServer(t, verifier)
	cookie := server.login(t, "user-1")

	form := newProjectForm()
	form.Del("command")
	w := server.mutate(cookie, form)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	errs := decodeBody(t, w)["errors"].(map[string]interface{})
	assert.Contains(t, errs, "command")

	// Validation failure performs no verifier or store calls
	assert.Zero(t, verifier.calls)
	projects, err := server.projectRepo.GetByCreator("user-1")
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestMutateProjectCreateVerifierRejects(t *testing.T) {
	verifier := &stubVerifier{err: &services.VerificationError{Reason: "image not found"}}
	server := newTestServer(t, verifier)
	cookie := server.login(t, "user-1")

	w := server.mutate(cookie, newProjectForm())

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	errs := decodeBody(t, w)["errors"].(map[string]interface{})
	assert.Equal(t, "image not found", errs["command"])

	projects, err := server.projectRepo.GetByCreator("user-1")
	require.NoError(t, err)
	assert.Empty(t, projects, "rejected commands never reach the store")
}

func TestMutateProjectUnknownIntent(t *testing.T) {
	server := newTestServer(t, &stubVerifier{})
	cookie := server.login(t, "user-1")

	w := server.mutate(cookie, url.Values{"intent": {"replace"}})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	errs := decodeBody(t, w)["errors"].(map[string]interface{})
	assert.Contains(t, errs, "intent")
}

func TestMutateProjectEdit(t *testing.T) {
	server := newTestServer(t, &stubVerifier{})
	cookie := server.login(t, "user-1")

	require.Equal(t, http.StatusOK, server.mutate(cookie, newProjectForm()).Code)
	projects, err := server.projectRepo.GetByCreator("user-1")
	require.NoError(t, err)
	require.Len(t, projects, 1)

	w := server.mutate(cookie, url.Values{
		"intent":      {"edit"},
		"projectId":   {projects[0].ID.String()},
		"name":        {"Renamed"},
		"description": {"Updated"},
		"command":     {"docker run fold:latest"},
	})

	assert.Equal(t, http.StatusOK, w.Code)

	stored, err := server.projectRepo.GetByID(projects[0].ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Renamed", stored.Name)
	assert.Equal(t, "Updated", stored.Description)
}

func TestMutateProjectDeleteIdempotent(t *testing.T) {
	server := newTestServer(t, &stubVerifier{})
	cookie := server.login(t, "user-1")

	require.Equal(t, http.StatusOK, server.mutate(cookie, newProjectForm()).Code)
	projects, err := server.projectRepo.GetByCreator("user-1")
	require.NoError(t, err)

	form := url.Values{
		"intent":    {"delete"},
		"projectId": {projects[0].ID.String()},
	}

	assert.Equal(t, http.StatusOK, server.mutate(cookie, form).Code)
	assert.Equal(t, http.StatusOK, server.mutate(cookie, form).Code)

	stored, err := server.projectRepo.GetByID(projects[0].ID.String())
	require.NoError(t, err)
	assert.False(t, stored.Active)
}

func TestMutateDeleteForeignProject(t *testing.T) {
	server := newTestServer(t, &stubVerifier{})
	owner := server.login(t, "user-1")
	intruder := server.login(t, "user-2")

	require.Equal(t, http.StatusOK, server.mutate(owner, newProjectForm()).Code)
	projects, err := server.projectRepo.GetByCreator("user-1")
	require.NoError(t, err)

	w := server.mutate(intruder, url.Values{
		"intent":    {"delete"},
		"projectId": {projects[0].ID.String()},
	})

	assert.Equal(t, http.StatusNotFound, w.Code)

	stored, err := server.projectRepo.GetByID(projects[0].ID.String())
	require.NoError(t, err)
	assert.True(t, stored.Active, "foreign delete must not deactivate the project")
}

func TestListMyProjectsRoundTrip(t *testing.T) {
	server := newTestServer(t, &stubVerifier{})
	cookie := server.login(t, "user-1")

	form := url.Values{
		"intent":      {"new"},
		"name":        {"N"},
		"description": {"D"},
		"command":     {"C"},
	}
	require.Equal(t, http.StatusOK, server.mutate(cookie, form).Code)

	w := server.get(cookie, "/projects/mine")
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	projects := body["projects"].([]interface{})
	require.Len(t, projects, 1)
	project := projects[0].(map[string]interface{})
	assert.Equal(t, "N", project["name"])
	assert.Equal(t, "D", project["description"])
	assert.Equal(t, "C", project["command"])
	assert.Equal(t, true, project["active"])

	sel := body["selection"].(map[string]interface{})
	assert.Equal(t, "idle", sel["state"])
}

func TestListMyProjectsSelectionFromQuery(t *testing.T) {
	server := newTestServer(t, &stubVerifier{})
	cookie := server.login(t, "user-1")

	require.Equal(t, http.StatusOK, server.mutate(cookie, newProjectForm()).Code)
	projects, err := server.projectRepo.GetByCreator("user-1")
	require.NoError(t, err)
	id := projects[0].ID.String()

	w := server.get(cookie, "/projects/mine?edit="+id)
	require.Equal(t, http.StatusOK, w.Code)
	sel := decodeBody(t, w)["selection"].(map[string]interface{})
	assert.Equal(t, "composing_edit", sel["state"])
	assert.Equal(t, id, sel["target"])
	assert.Equal(t, "Protein Folding", sel["name"])

	w = server.get(cookie, "/projects/mine?delete="+id)
	sel = decodeBody(t, w)["selection"].(map[string]interface{})
	assert.Equal(t, "confirming_delete", sel["state"])

	// Inactive rows offer no affordances: after deletion the same query
	// parameter collapses to idle
	require.Equal(t, http.StatusOK, server.mutate(cookie, url.Values{
		"intent":    {"delete"},
		"projectId": {id},
	}).Code)

	w = server.get(cookie, "/projects/mine?edit="+id)
	sel = decodeBody(t, w)["selection"].(map[string]interface{})
	assert.Equal(t, "idle", sel["state"])
}

func TestListAllProjectsExcludesDeleted(t *testing.T) {
	server := newTestServer(t, &stubVerifier{})
	cookie := server.login(t, "user-1")

	require.Equal(t, http.StatusOK, server.mutate(cookie, newProjectForm()).Code)
	other := newProjectForm()
	other.Set("name", "Climate Model")
	require.Equal(t, http.StatusOK, server.mutate(cookie, other).Code)

	projects, err := server.projectRepo.GetByCreator("user-1")
	require.NoError(t, err)
	require.Len(t, projects, 2)
	require.Equal(t, http.StatusOK, server.mutate(cookie, url.Values{
		"intent":    {"delete"},
		"projectId": {projects[0].ID.String()},
	}).Code)

	w := server.get(cookie, "/projects/all")
	require.Equal(t, http.StatusOK, w.Code)
	listed := decodeBody(t, w)["projects"].([]interface{})
	assert.Len(t, listed, 1)
}
