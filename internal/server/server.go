// Package server is the HTTP presentation shell: it exposes the render
// frame as JSON and accepts the toast's user intents.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Dicklesworthstone/pipegauge/internal/model"
	"github.com/Dicklesworthstone/pipegauge/internal/router"
	"github.com/Dicklesworthstone/pipegauge/internal/toast"
	"github.com/Dicklesworthstone/pipegauge/internal/widget"
)

// Widget is what the server needs from the mounted tile.
type Widget interface {
	Frame() model.Frame
	Dismiss()
	ViewDetails() error
	Click(target widget.Target) error
	ReleasePressure() model.Frame
}

// Leads resolves lead detail records and reports the current route.
type Leads interface {
	Resolve(id string) (model.Lead, error)
	Current() router.Route
}

type Server struct {
	widget Widget
	leads  Leads
	log    *zap.SugaredLogger
	addr   string
}

func New(addr string, w Widget, leads Leads, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Server{widget: w, leads: leads, log: log, addr: addr}
}

// Handler builds the chi router.
func (srv *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.StripSlashes)
	r.Use(middleware.Recoverer)
	r.Use(LogMiddleware(srv.log))

	r.Get("/", srv.frameHandler)
	r.Route("/api", func(r chi.Router) {
		r.Get("/frame", srv.frameHandler)
		r.Post("/tile/click", srv.tileClickHandler)
		r.Post("/toast/dismiss", srv.dismissHandler)
		r.Post("/toast/view-details", srv.viewDetailsHandler)
		r.Post("/pressure/release", srv.releaseHandler)
	})
	r.Get("/lead/{id}", srv.leadHandler)
	return r
}

// Run serves until ctx is done, then shuts down gracefully.
func (srv *Server) Run(ctx context.Context) error {
	hs := &http.Server{
		Addr:              srv.addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		srv.log.Infow("listening", "addr", srv.addr)
		errCh <- hs.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (srv *Server) frameHandler(w http.ResponseWriter, r *http.Request) {
	srv.writeJSON(w, http.StatusOK, srv.widget.Frame())
}

func (srv *Server) tileClickHandler(w http.ResponseWriter, r *http.Request) {
	_ = srv.widget.Click(widget.TargetTile)
	srv.writeJSON(w, http.StatusOK, srv.widget.Frame())
}

func (srv *Server) dismissHandler(w http.ResponseWriter, r *http.Request) {
	srv.widget.Dismiss()
	srv.writeJSON(w, http.StatusOK, srv.widget.Frame().Toast)
}

type navigation struct {
	Location string `json:"location"`
}

func (srv *Server) viewDetailsHandler(w http.ResponseWriter, r *http.Request) {
	err := srv.widget.ViewDetails()
	switch {
	case errors.Is(err, toast.ErrNotVisible):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	srv.writeJSON(w, http.StatusOK, navigation{Location: srv.leads.Current().Path})
}

func (srv *Server) releaseHandler(w http.ResponseWriter, r *http.Request) {
	srv.writeJSON(w, http.StatusOK, srv.widget.ReleasePressure())
}

func (srv *Server) leadHandler(w http.ResponseWriter, r *http.Request) {
	lead, err := srv.leads.Resolve(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	srv.writeJSON(w, http.StatusOK, lead)
}

func (srv *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		srv.log.Errorw("failed to write response JSON", "error", err)
	}
}
