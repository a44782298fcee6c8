package site

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ziadkadry99/sitekit/internal/history"
	"github.com/ziadkadry99/sitekit/internal/logging"
	"github.com/ziadkadry99/sitekit/internal/theme"
	"github.com/ziadkadry99/sitekit/internal/topology"
)

// PreviewConfig holds preview server configuration.
type PreviewConfig struct {
	Port int
	Dir  string // directory containing the generated bundle
	// Behavior is the planned distribution behavior the server imitates:
	// root object, error rewrites, allowed methods and cache TTLs.
	Behavior topology.Behavior
	AllowAll bool // allow all CORS origins
}

// PreviewServer serves a generated bundle the way the CDN will, plus the
// theme API and live-reload websocket.
type PreviewServer struct {
	cfg        PreviewConfig
	theme      *theme.Manager
	history    *history.Store
	hub        *Hub
	logger     *slog.Logger
	router     chi.Router
	httpServer *http.Server
	unbind     func()
	readFile   func(name string) ([]byte, error)
}

// NewPreviewServer creates a preview server. history may be nil.
func NewPreviewServer(cfg PreviewConfig, manager *theme.Manager, runs *history.Store, logger *slog.Logger) *PreviewServer {
	if cfg.Behavior.DefaultRootObject == "" {
		cfg.Behavior = topology.DefaultBehavior("")
	}
	logger = logging.OrDiscard(logger)
	s := &PreviewServer{
		cfg:      cfg,
		theme:    manager,
		history:  runs,
		hub:      NewHub(logger),
		logger:   logger,
		readFile: os.ReadFile,
	}
	s.unbind = manager.BindRoot(s.hub)
	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *PreviewServer) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/theme", func(r chi.Router) {
		r.Use(middleware.Timeout(10 * time.Second))
		r.Get("/", s.handleGetTheme)
		r.Put("/", s.handleSetTheme)
		r.Post("/toggle", s.handleToggleTheme)
	})
	if s.history != nil {
		history.RegisterRoutes(r, s.history)
	}

	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		s.hub.ServeWS(w, r, Message{Type: "theme", Mode: s.theme.Current()})
	})

	// Everything else is the bundle.
	r.NotFound(s.serveBundle)
	r.MethodNotAllowed(s.serveBundle)

	return r
}

// Router returns the chi router for registering additional routes.
func (s *PreviewServer) Router() chi.Router { return s.router }

// Hub returns the websocket hub, used by the watcher to broadcast reloads.
func (s *PreviewServer) Hub() *Hub { return s.hub }

// Start listens on the configured port until ctx is cancelled.
func (s *PreviewServer) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Preview server listening", slog.String("addr", addr), logging.Path(s.cfg.Dir))
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.close()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

// Shutdown gracefully shuts down the server.
func (s *PreviewServer) Shutdown(ctx context.Context) error {
	s.close()
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

func (s *PreviewServer) close() {
	if s.unbind != nil {
		s.unbind()
	}
	s.hub.Close()
}

type themeBody struct {
	Mode theme.Mode `json:"mode"`
}

func (s *PreviewServer) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, themeBody{Mode: s.theme.Current()})
}

func (s *PreviewServer) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Mode string `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	mode, err := theme.Parse(body.Mode)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	s.theme.Set(r.Context(), mode)
	writeJSON(w, http.StatusOK, themeBody{Mode: s.theme.Current()})
}

func (s *PreviewServer) handleToggleTheme(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, themeBody{Mode: s.theme.Toggle(r.Context())})
}

// serveBundle maps the request onto the bundle directory: "/" is the root
// object, and a missing or unreadable key is answered through the behavior's
// error responses, just as the distribution rewrites S3's 404/403.
func (s *PreviewServer) serveBundle(w http.ResponseWriter, r *http.Request) {
	b := s.cfg.Behavior
	if !b.AllowsMethod(r.Method) {
		w.Header().Set("Allow", strings.Join(b.AllowedMethods, ", "))
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	key := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if key == "" {
		key = b.DefaultRootObject
	}

	status := http.StatusOK
	maxAge := b.DefaultTTL
	body, err := s.readBundleFile(key)
	if code := originStatus(err); code != 0 {
		er, ok := b.ErrorResponseFor(code)
		if !ok {
			http.Error(w, http.StatusText(code), code)
			return
		}
		key = strings.TrimPrefix(er.ResponsePagePath, "/")
		status = er.ResponseCode
		maxAge = er.CachingMinTTL
		body, err = s.readBundleFile(key)
	}
	if err != nil {
		s.logger.Warn("Failed to serve bundle file", logging.Path(key), logging.Error(err))
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	ctype := mime.TypeByExtension(path.Ext(key))
	if ctype == "" {
		ctype = http.DetectContentType(body)
	}
	if strings.HasPrefix(ctype, "text/html") {
		body = s.decorateHTML(body)
	}

	w.Header().Set("Content-Type", ctype)
	w.Header().Set("Cache-Control", "public, max-age="+strconv.Itoa(int(maxAge.Seconds())))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	if r.Method != http.MethodHead {
		w.Write(body)
	}
}

// originStatus is the status S3 would answer for a failed read, or 0 when the
// error has no error-response counterpart.
func originStatus(err error) int {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, fs.ErrPermission):
		return http.StatusForbidden
	}
	return 0
}

// readBundleFile reads a regular file under the bundle dir. Directories count
// as missing, matching S3 where a "directory" key has no object.
func (s *PreviewServer) readBundleFile(key string) ([]byte, error) {
	p := filepath.Join(s.cfg.Dir, filepath.FromSlash(key))
	info, err := os.Stat(p)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fs.ErrNotExist
	}
	return s.readFile(p)
}

// decorateHTML seeds the live theme and injects the live-reload client.
func (s *PreviewServer) decorateHTML(body []byte) []byte {
	current := s.theme.Current()
	for _, m := range []theme.Mode{theme.Light, theme.Dark} {
		if m == current {
			continue
		}
		body = bytes.Replace(body, []byte(rootTag(m)), []byte(rootTag(current)), 1)
	}
	if i := bytes.LastIndex(body, []byte("</body>")); i >= 0 {
		out := make([]byte, 0, len(body)+len(liveReloadSnippet))
		out = append(out, body[:i]...)
		out = append(out, liveReloadSnippet...)
		out = append(out, body[i:]...)
		return out
	}
	return body
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// OpenBrowser opens the given URL in the default browser.
func OpenBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	_ = cmd.Start()
}
