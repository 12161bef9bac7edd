package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const projectJSON = `{"id":"p1","title":"Devfolio","slug":"devfolio","shortDescription":null,"description":null,"githubUrl":null,"createdAt":"2026-01-02T03:04:05Z","visibility":"PRIVATE","badges":["go"]}`

// fakeServer records PATCH bodies and serves a single project.
type fakeServer struct {
	mu      sync.Mutex
	patches []map[string]any
	creates []map[string]any
}

func (f *fakeServer) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/projects":
			_, _ = io.WriteString(w, `{"success":true,"data":[{"id":"p1","title":"Devfolio","slug":"devfolio","visibility":"PRIVATE","badges":["go","sql"]}]}`)
		case r.Method == http.MethodGet && r.URL.Path == "/api/projects/p1":
			_, _ = io.WriteString(w, `{"success":true,"data":`+projectJSON+`}`)
		case r.Method == http.MethodPatch && r.URL.Path == "/api/projects/p1":
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			f.mu.Lock()
			f.patches = append(f.patches, body)
			f.mu.Unlock()
			_, _ = io.WriteString(w, `{"success":true}`)
		case r.Method == http.MethodPost && r.URL.Path == "/api/projects":
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			if body["title"] == "x" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = io.WriteString(w, `{"success":false,"code":"VALIDATION_ERROR","message":"validation failed","fields":{"title":["too short"]}}`)
				return
			}
			f.mu.Lock()
			f.creates = append(f.creates, body)
			f.mu.Unlock()
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `{"success":true,"data":{"id":"p2"}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"success":false,"code":"PROJECT_NOT_FOUND","message":"project not found"}`)
		}
	}
}

func execute(t *testing.T, srvURL string, args ...string) (string, error) {
	t.Helper()
	root := &cobra.Command{Use: "devfolioctl", SilenceUsage: true, SilenceErrors: true}
	BindGlobalFlags(root)
	root.AddCommand(NewProjectsCmd())

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--url", srvURL}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestProjectsList(t *testing.T) {
	f := &fakeServer{}
	srv := httptest.NewServer(f.handler(t))
	defer srv.Close()

	out, err := execute(t, srv.URL, "projects", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "devfolio")
	assert.Contains(t, out, "go, sql")
}

func TestProjectsGet_NotFound(t *testing.T) {
	f := &fakeServer{}
	srv := httptest.NewServer(f.handler(t))
	defer srv.Close()

	_, err := execute(t, srv.URL, "projects", "get", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PROJECT_NOT_FOUND")
}

func TestProjectsEdit(t *testing.T) {
	f := &fakeServer{}
	srv := httptest.NewServer(f.handler(t))
	defer srv.Close()

	out, err := execute(t, srv.URL, "projects", "edit", "p1", "--title", "Renamed", "--badge", "go", "--badge", "rust")
	require.NoError(t, err)
	assert.Contains(t, out, "saved p1")

	require.Len(t, f.patches, 1)
	patch := f.patches[0]
	assert.Equal(t, "Renamed", patch["title"])
	assert.Equal(t, []any{"go", "rust"}, patch["badges"])
	assert.NotContains(t, patch, "id")
	assert.NotContains(t, patch, "createdAt")
}

func TestProjectsEdit_NoChanges(t *testing.T) {
	f := &fakeServer{}
	srv := httptest.NewServer(f.handler(t))
	defer srv.Close()

	out, err := execute(t, srv.URL, "projects", "edit", "p1", "--title", "Devfolio")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing to save")
	assert.Empty(t, f.patches)
}

func TestProjectsEdit_InvalidIsNotSent(t *testing.T) {
	f := &fakeServer{}
	srv := httptest.NewServer(f.handler(t))
	defer srv.Close()

	_, err := execute(t, srv.URL, "projects", "edit", "p1", "--github", "ftp://example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "githubUrl")
	assert.Empty(t, f.patches)
}

func TestProjectsCreate_FieldErrors(t *testing.T) {
	f := &fakeServer{}
	srv := httptest.NewServer(f.handler(t))
	defer srv.Close()

	_, err := execute(t, srv.URL, "projects", "create", "--title", "x")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "validation failed"))
	assert.Contains(t, err.Error(), "title: too short")
}

func TestProjectsCreate_SanitizesSlug(t *testing.T) {
	f := &fakeServer{}
	srv := httptest.NewServer(f.handler(t))
	defer srv.Close()

	out, err := execute(t, srv.URL, "projects", "create", "--title", "Hello", "--slug", "My_Slug 2!")
	require.NoError(t, err)
	assert.Contains(t, out, "created p2")

	require.Len(t, f.creates, 1)
	assert.Equal(t, "myslug2", f.creates[0]["slug"])
}

func TestProjectsEdit_SanitizesSlug(t *testing.T) {
	f := &fakeServer{}
	srv := httptest.NewServer(f.handler(t))
	defer srv.Close()

	_, err := execute(t, srv.URL, "projects", "edit", "p1", "--slug", "New Slug")
	require.NoError(t, err)

	require.Len(t, f.patches, 1)
	assert.Equal(t, "newslug", f.patches[0]["slug"])
}

func TestPrintEvent(t *testing.T) {
	var out bytes.Buffer
	printEvent(&out, zap.NewNop(), "project.created",
		[]byte(`{"type":"project.created","projectId":"7f1c7a4e-3f0b-4c1e-9b7e-1d2a3b4c5d6e","slug":"devfolio","visibility":"PUBLIC","occurredAt":"2026-01-02T03:04:05Z"}`))
	assert.Contains(t, out.String(), "7f1c7a4e-3f0b-4c1e-9b7e-1d2a3b4c5d6e")
	assert.Contains(t, out.String(), "devfolio")

	out.Reset()
	printEvent(&out, zap.NewNop(), "project.created", []byte(`not json`))
	assert.Contains(t, out.String(), "not json")
}
