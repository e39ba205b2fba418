package routers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dejay09121/Noteapp/internal/app"
	"github.com/dejay09121/Noteapp/internal/dao"
	"github.com/dejay09121/Noteapp/internal/domain"
	"github.com/dejay09121/Noteapp/internal/remote"
	"github.com/dejay09121/Noteapp/pkg/code"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) (*app.App, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	p := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte("rate-limit:\n  enabled: false\n"), 0o644))
	cfg, _, err := app.LoadConfig(p)
	require.NoError(t, err)
	cfg.Database.Path = filepath.Join(dir, "notes.sqlite3")
	cfg.Storage.SavePath = filepath.Join(dir, "uploads")

	db, err := dao.NewDBEngine(cfg.DaoConfig())
	require.NoError(t, err)
	a, err := app.NewApp(cfg, zap.NewNop(), db)
	require.NoError(t, err)

	srv := httptest.NewServer(NewRouter(a, nil))
	t.Cleanup(func() {
		srv.Close()
		_ = a.Shutdown(context.Background())
	})
	return a, srv
}

func TestRouter_NoteLifecycle(t *testing.T) {
	a, srv := newTestServer(t)
	ctx := context.Background()

	token, err := a.TokenManager.Generate("u1", "alice")
	require.NoError(t, err)
	client := remote.New(remote.Config{
		ServerURL: srv.URL,
		Timeout:   5 * time.Second,
		Token:     func() string { return token },
	}, nil)

	first, err := client.Insert(ctx, "u1", &domain.NoteInput{Title: "first", Content: "a"})
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	second, err := client.Insert(ctx, "u1", &domain.NoteInput{Title: "second", Content: "b"})
	require.NoError(t, err)

	list, err := client.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	updated, err := client.Update(ctx, "u1", first.ID, &domain.NoteInput{Title: "first!", Content: "a"})
	require.NoError(t, err)
	assert.Equal(t, "first!", updated.Title)

	require.NoError(t, client.DeleteBatch(ctx, "u1", []string{first.ID, second.ID}))
	list, err = client.List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRouter_Errors(t *testing.T) {
	_, srv := newTestServer(t)
	ctx := context.Background()

	anon := remote.New(remote.Config{ServerURL: srv.URL}, nil)
	_, err := anon.List(ctx, "")
	var rerr *remote.Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, http.StatusUnauthorized, rerr.HTTPStatus)
	assert.Equal(t, code.ErrorNotUserAuthToken.Code(), rerr.Code)

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/notes", strings.NewReader(`{"ids":[]}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("token", "bogus")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/nowhere")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_InvalidParams(t *testing.T) {
	a, srv := newTestServer(t)
	token, err := a.TokenManager.Generate("u1", "alice")
	require.NoError(t, err)

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/notes", strings.NewReader(`{"ids":[]}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("token", token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRouter_VersionAndHealth(t *testing.T) {
	_, srv := newTestServer(t)

	v, err := remote.New(remote.Config{ServerURL: srv.URL}, nil).Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, app.Version, v.Version)

	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestTrimAPI(t *testing.T) {
	assert.Equal(t, "/notes/ws", trimAPI("/api/notes/ws"))
	assert.Equal(t, "/notes/ws", trimAPI(""))
	assert.Equal(t, "/ws", trimAPI("/ws"))
}
