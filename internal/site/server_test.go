package site

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/sitekit/internal/db"
	"github.com/ziadkadry99/sitekit/internal/history"
	"github.com/ziadkadry99/sitekit/internal/theme"
	"github.com/ziadkadry99/sitekit/internal/topology"
)

func setupPreview(t *testing.T) (*PreviewServer, *theme.Manager) {
	t.Helper()
	dir := generate(t, theme.Light)

	database, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	manager := theme.NewManager(context.Background(), theme.NewSQLStore(database), nil, nil)
	srv := NewPreviewServer(PreviewConfig{
		Dir:      dir,
		Behavior: topology.DefaultBehavior(topology.PriceClassAll),
	}, manager, history.NewStore(database), nil)
	t.Cleanup(func() { srv.Shutdown(context.Background()) })
	return srv, manager
}

func do(t *testing.T, srv *PreviewServer, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestPreviewServesRootObject(t *testing.T) {
	srv, _ := setupPreview(t)
	w := do(t, srv, http.MethodGet, "/", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "public, max-age=86400", w.Header().Get("Cache-Control"))
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/html"), "Content-Type = %q", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.Contains(t, body, "Serverless Static Website Template")
	assert.Contains(t, body, `"/ws"`, "expected live reload snippet")
}

func TestPreviewFallsBackToIndexForMissingPaths(t *testing.T) {
	srv, _ := setupPreview(t)
	for _, target := range []string{"/docs/getting-started", "/missing.png", "/../../etc/passwd"} {
		w := do(t, srv, http.MethodGet, target, "")
		assert.Equal(t, http.StatusOK, w.Code, target)
		assert.Equal(t, "public, max-age=300", w.Header().Get("Cache-Control"), "%s: want error caching TTL", target)
		assert.Contains(t, w.Body.String(), "Serverless Static Website Template", target)
	}
}

func TestPreviewFallsBackToIndexForUnreadableFiles(t *testing.T) {
	srv, _ := setupPreview(t)
	secret := filepath.Join(srv.cfg.Dir, "secret.html")
	require.NoError(t, os.WriteFile(secret, []byte("<p>hidden</p>"), 0o644))
	srv.readFile = func(name string) ([]byte, error) {
		if name == secret {
			return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrPermission}
		}
		return os.ReadFile(name)
	}

	w := do(t, srv, http.MethodGet, "/secret.html", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "public, max-age=300", w.Header().Get("Cache-Control"))
	assert.Contains(t, w.Body.String(), "Serverless Static Website Template")
	assert.NotContains(t, w.Body.String(), "hidden")
}

func TestPreviewUnreadableWithoutErrorResponse(t *testing.T) {
	srv, _ := setupPreview(t)
	srv.cfg.Behavior.ErrorResponses = nil
	srv.readFile = func(name string) ([]byte, error) {
		return nil, fmt.Errorf("open %s: %w", name, fs.ErrPermission)
	}

	w := do(t, srv, http.MethodGet, "/index.html", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPreviewServesAssets(t *testing.T) {
	srv, _ := setupPreview(t)
	w := do(t, srv, http.MethodGet, "/style.css", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/css"), "Content-Type = %q", w.Header().Get("Content-Type"))
	assert.NotContains(t, w.Body.String(), "/ws", "snippet must only be injected into HTML")

	w = do(t, srv, http.MethodHead, "/robots.txt", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, w.Body.Len())
}

func TestPreviewRejectsUnsupportedMethods(t *testing.T) {
	srv, _ := setupPreview(t)
	w := do(t, srv, http.MethodPost, "/index.html", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "GET, HEAD", w.Header().Get("Allow"))
}

func TestPreviewDirectoryCountsAsMissing(t *testing.T) {
	srv, _ := setupPreview(t)
	require.NoError(t, os.Mkdir(filepath.Join(srv.cfg.Dir, "assets"), 0o755))
	w := do(t, srv, http.MethodGet, "/assets", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "public, max-age=300", w.Header().Get("Cache-Control"))
}

func TestThemeAPI(t *testing.T) {
	srv, manager := setupPreview(t)

	w := do(t, srv, http.MethodGet, "/api/theme", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"mode":"light"`)

	w = do(t, srv, http.MethodPost, "/api/theme/toggle", "")
	assert.Contains(t, w.Body.String(), `"mode":"dark"`)
	assert.Equal(t, theme.Dark, manager.Current())

	w = do(t, srv, http.MethodPut, "/api/theme", `{"mode":"LIGHT"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, theme.Light, manager.Current())

	w = do(t, srv, http.MethodPut, "/api/theme", `{"mode":"sepia"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, srv, http.MethodPut, "/api/theme", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPreviewSeedsCurrentTheme(t *testing.T) {
	srv, manager := setupPreview(t)
	manager.Set(context.Background(), theme.Dark)

	body := do(t, srv, http.MethodGet, "/", "").Body.String()
	assert.Contains(t, body, `<html lang="en" data-theme="dark" class="dark">`)
}

func TestHistoryRoutesMounted(t *testing.T) {
	srv, _ := setupPreview(t)
	w := do(t, srv, http.MethodGet, "/api/history/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	var runs []history.Run
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&runs))
}

func TestHealthz(t *testing.T) {
	srv, _ := setupPreview(t)
	w := do(t, srv, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestWebSocketThemeAndReload(t *testing.T) {
	srv, manager := setupPreview(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	msg := readMessage(t, conn)
	assert.Equal(t, "theme", msg.Type)
	assert.Equal(t, theme.Light, msg.Mode)

	// Wait for registration before broadcasting.
	deadline := time.Now().Add(5 * time.Second)
	for srv.Hub().Clients() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	manager.Toggle(context.Background())
	msg = readMessage(t, conn)
	assert.Equal(t, "theme", msg.Type)
	assert.Equal(t, theme.Dark, msg.Mode)

	srv.Hub().Reload()
	msg = readMessage(t, conn)
	assert.Equal(t, "reload", msg.Type)
}
