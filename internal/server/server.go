package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"pricetag-studio/internal/ingest"
	"pricetag-studio/internal/pricing"
	"pricetag-studio/internal/render"
)

// SessionStore is the persistence surface the HTTP API needs.
type SessionStore interface {
	Save(ctx context.Context, kind string, session *pricing.Session) error
	Get(ctx context.Context, id string) (*pricing.Session, error)
	Delete(ctx context.Context, id string) error
}

// Server exposes the session, import and rendering API over HTTP.
type Server struct {
	store   SessionStore
	themes  pricing.ThemeSet
	chrome  *render.ChromeRenderer
	sheets  *ingest.SheetsClient
	baseURL string
	logger  *zap.Logger

	http *http.Server
}

// Options carries the optional collaborators. Sheets and Chrome may be
// nil; the corresponding endpoints answer 503 then.
type Options struct {
	Chrome  *render.ChromeRenderer
	Sheets  *ingest.SheetsClient
	BaseURL string
}

func New(addr string, store SessionStore, themes pricing.ThemeSet, opts Options, logger *zap.Logger) *Server {
	s := &Server{
		store:   store,
		themes:  themes,
		chrome:  opts.Chrome,
		sheets:  opts.Sheets,
		baseURL: opts.BaseURL,
		logger:  logger,
	}
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)

		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)

			r.Post("/import/excel", s.handleImportExcel)
			r.Post("/import/sheets", s.handleImportSheets)

			r.Get("/items", s.handleListItems)
			r.Post("/items", s.handleAddItem)
			r.Put("/items", s.handleReplaceItems)
			r.Delete("/items", s.handleClearItems)
			r.Patch("/items/{itemID}", s.handleUpdateItem)
			r.Delete("/items/{itemID}", s.handleDeleteItem)

			r.Get("/settings", s.handleGetSettings)
			r.Put("/settings", s.handleSetSettings)
			r.Post("/settings/reset", s.handleResetSettings)

			r.Get("/tags", s.handleTags)
			r.Get("/tags/{itemID}/svg", s.handleTagSVG)

			r.Get("/pdf", s.handlePDF)
			r.Get("/png", s.handlePNG)
			r.Get("/export/excel", s.handleExportExcel)
		})
	})

	r.Get("/api/themes", s.handleThemes)
	r.Get("/print/{sessionID}", s.handlePrintPage)
	r.Get("/preview/tag", s.handlePreviewTag)

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)))
	})
}

// ListenAndServe blocks until the server stops.
func (s *Server) ListenAndServe() error {
	s.logger.Info("HTTP server listening", zap.String("addr", s.http.Addr))
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
