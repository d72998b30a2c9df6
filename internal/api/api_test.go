package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/beidekit/internal/projectservice"
	"github.com/starford/beidekit/internal/testutil"
)

// testEnv sets up a temp workspace, SQLite DB, service, and router for testing.
// An empty authToken means disabled mode; otherwise token mode.
func testEnv(t *testing.T, authToken string) (*projectservice.Service, http.Handler) {
	t.Helper()
	svc, router, _ := testEnvWithWorkspace(t, authToken != "", authToken, nil)
	return svc, router
}

func testEnvWithWorkspace(t *testing.T, authEnabled bool, authToken string, sseHandler http.Handler) (*projectservice.Service, http.Handler, string) {
	t.Helper()
	svc, root, _ := testutil.TestService(t)
	return svc, NewRouter(svc, authEnabled, authToken, sseHandler), root
}

func uploadRequest(t *testing.T, filename, dest string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = part.Write(content)
	if dest != "" {
		_ = mw.WriteField("path", dest)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/projects", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func upload(t *testing.T, router http.Handler, filename, dest string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, filename, dest, content))
	return w
}

func TestUploadAndGetProject(t *testing.T) {
	_, router, root := testEnvWithWorkspace(t, false, "", nil)

	w := upload(t, router, "MyApp.proj", "apps/MyApp.proj", testutil.SampleProject("MyApp"))
	if w.Code != http.StatusCreated {
		t.Fatalf("upload status = %d, body = %s", w.Code, w.Body.String())
	}
	if _, err := os.Stat(filepath.Join(root, "apps", "MyApp.proj")); err != nil {
		t.Fatalf("project not on disk: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/projects/apps/MyApp.proj", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var detail ProjectDetail
	_ = json.Unmarshal(w.Body.Bytes(), &detail)
	if detail.Path != "apps/MyApp.proj" {
		t.Errorf("path = %q", detail.Path)
	}
	if detail.TargetName != "MyApp" {
		t.Errorf("target name = %q, want MyApp", detail.TargetName)
	}
	if len(detail.Files) != 4 {
		t.Errorf("files = %d, want 4", len(detail.Files))
	}
}

func TestGetProject_EncodedSlash(t *testing.T) {
	_, router, root := testEnvWithWorkspace(t, false, "", nil)
	testutil.WriteProject(t, root, "apps/Enc.proj", "Enc")

	req := httptest.NewRequest(http.MethodGet, "/projects/apps%2FEnc.proj", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get encoded = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestUploadDefaultsToFilename(t *testing.T) {
	_, router, root := testEnvWithWorkspace(t, false, "", nil)

	w := upload(t, router, "Tool.proj", "", testutil.SampleProject("Tool"))
	if w.Code != http.StatusCreated {
		t.Fatalf("upload = %d, body = %s", w.Code, w.Body.String())
	}
	if _, err := os.Stat(filepath.Join(root, "Tool.proj")); err != nil {
		t.Errorf("expected Tool.proj in workspace root: %v", err)
	}
}

func TestUploadDuplicate(t *testing.T) {
	_, router := testEnv(t, "")

	data := testutil.SampleProject("Dup")
	if w := upload(t, router, "dup.proj", "", data); w.Code != http.StatusCreated {
		t.Fatalf("first upload = %d", w.Code)
	}
	if w := upload(t, router, "dup.proj", "", data); w.Code != http.StatusConflict {
		t.Errorf("duplicate upload = %d, want 409", w.Code)
	}
}

func TestUploadInvalidProject(t *testing.T) {
	_, router, root := testEnvWithWorkspace(t, false, "", nil)

	data := testutil.SampleProject("Cut")
	w := upload(t, router, "cut.proj", "", data[:len(data)-2])
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("truncated upload = %d, want 422", w.Code)
	}
	var body errResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Code != codeInvalidProject || body.Error == "" {
		t.Errorf("error body = %+v", body)
	}
	if _, err := os.Stat(filepath.Join(root, "cut.proj")); !os.IsNotExist(err) {
		t.Error("invalid project must not be written")
	}
}

func TestUploadTraversalRejected(t *testing.T) {
	_, router := testEnv(t, "")

	w := upload(t, router, "x.proj", "../escape.proj", testutil.SampleProject("X"))
	if w.Code != http.StatusBadRequest {
		t.Errorf("traversal upload = %d, want 400, body = %s", w.Code, w.Body.String())
	}
}

func TestUploadMissingFileField(t *testing.T) {
	_, router := testEnv(t, "")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("wrong", "data")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/projects", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing field = %d, want 400", w.Code)
	}
}

func TestListProjects(t *testing.T) {
	_, router := testEnv(t, "")

	for _, name := range []string{"a.proj", "b.proj"} {
		upload(t, router, name, "", testutil.SampleProject(name))
	}

	req := httptest.NewRequest(http.MethodGet, "/projects?limit=10", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d", w.Code)
	}
	var resp ProjectListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Projects) != 2 || resp.Total != 2 {
		t.Errorf("projects = %d total = %d, want 2", len(resp.Projects), resp.Total)
	}

	req = httptest.NewRequest(http.MethodGet, "/projects?type=kernel-driver", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	resp = ProjectListResponse{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if w.Code != http.StatusOK || resp.Total != 0 || resp.Projects == nil {
		t.Errorf("filtered list = %d %+v", w.Code, resp)
	}
}

func TestListProjects_BadFilter(t *testing.T) {
	_, router := testEnv(t, "")

	for _, q := range []string{"?type=plugin", "?sort=size"} {
		req := httptest.NewRequest(http.MethodGet, "/projects"+q, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("list %s = %d, want 400", q, w.Code)
		}
	}
}

func TestSearchEndpoint(t *testing.T) {
	_, router := testEnv(t, "")
	upload(t, router, "find.proj", "", testutil.SampleProject("Uniquetoken"))

	req := httptest.NewRequest(http.MethodGet, "/search?q=Uniquetoken", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("search = %d, body = %s", w.Code, w.Body.String())
	}
	var resp SearchResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Results) != 1 || resp.Results[0].TargetName != "Uniquetoken" {
		t.Errorf("search results = %+v, want 1", resp.Results)
	}
}

func TestUsagesEndpoint(t *testing.T) {
	_, router := testEnv(t, "")
	upload(t, router, "a.proj", "", testutil.SampleProject("A"))
	upload(t, router, "b.proj", "", testutil.SampleProject("B"))

	req := httptest.NewRequest(http.MethodGet, "/usages?file=src/App.h", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("usages = %d", w.Code)
	}
	var resp UsagesResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Projects) != 2 {
		t.Errorf("usages = %v, want 2 projects", resp.Projects)
	}

	req = httptest.NewRequest(http.MethodGet, "/usages", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("usages no file = %d, want 400", w.Code)
	}
}

func TestFilesEndpoint(t *testing.T) {
	_, router := testEnv(t, "")
	upload(t, router, "a.proj", "", testutil.SampleProject("A"))

	req := httptest.NewRequest(http.MethodGet, "/files?project=a.proj", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("files = %d, body = %s", w.Code, w.Body.String())
	}
	var resp ProjectFilesResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Files) != 4 || resp.Files[0].Path != "src/App.cpp" || resp.Files[3].Group != "Resources" {
		t.Errorf("files = %+v", resp.Files)
	}

	req = httptest.NewRequest(http.MethodGet, "/files?project=missing.proj", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("files for missing project = %d, want 404", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/files", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("files without project = %d, want 400", w.Code)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := uploadRequest(t, "auth.proj", "", testutil.SampleProject("Auth"))
	req.Header.Set("Authorization", "Bearer secret123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Errorf("authed upload = %d, want 201", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/projects", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/projects", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/projects", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

func TestGetProject_NotFound(t *testing.T) {
	_, router := testEnv(t, "")

	for _, p := range []string{"/projects/nope.proj", "/projects/readme.txt"} {
		req := httptest.NewRequest(http.MethodGet, p, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusNotFound {
			t.Errorf("GET %s = %d, want 404", p, w.Code)
		}
	}
}

func TestGetProject_Unparseable(t *testing.T) {
	_, router, root := testEnvWithWorkspace(t, false, "", nil)
	_ = os.WriteFile(filepath.Join(root, "junk.proj"), []byte{0, 0, 0}, 0o644)

	req := httptest.NewRequest(http.MethodGet, "/projects/junk.proj", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("junk project = %d, want 422", w.Code)
	}
}

func TestSearchMissingQuery(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/search", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("search no query = %d, want 400", w.Code)
	}
}

// SSE endpoint auth tests.

func TestSSEEvents_AuthProtected(t *testing.T) {
	_, router := testEnvWithSSE(t, true, "secret")

	// No token → 401.
	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_AuthDisabled(t *testing.T) {
	_, router := testEnvWithSSE(t, false, "")

	// Disabled mode → should not 401. SSE handler will write 200 and block,
	// so we cancel the context after a short time.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE should not require auth when disabled")
	}
}

func TestSSEEvents_ValidToken(t *testing.T) {
	_, router := testEnvWithSSE(t, true, "tok")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE with valid token should not 401")
	}
}

// testEnvWithSSE creates a router with a dummy SSE handler to test auth on /events.
func testEnvWithSSE(t *testing.T, authEnabled bool, token string) (*projectservice.Service, http.Handler) {
	t.Helper()

	// Minimal SSE handler stub: writes headers and blocks until context done.
	sseHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-r.Context().Done()
	})

	svc, router, _ := testEnvWithWorkspace(t, authEnabled, token, sseHandler)
	return svc, router
}
