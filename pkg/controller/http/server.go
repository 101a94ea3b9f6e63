package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tributary/pkg/domain/interfaces"
	"github.com/secmon-lab/tributary/pkg/domain/model"
	"github.com/secmon-lab/tributary/pkg/usecase"
	"github.com/secmon-lab/tributary/pkg/utils/errutil"
	"github.com/secmon-lab/tributary/pkg/utils/safe"
)

const (
	// DefaultHistoryLimit is used when a history request has no limit parameter
	DefaultHistoryLimit = 20

	maxConfigBodySize  = 1 << 20
	maxPreviewBodySize = 16 << 20
)

type Server struct {
	router       *chi.Mux
	uc           *usecase.UseCases
	historyLimit int
}

type Options func(*Server)

func WithHistoryLimit(limit int) Options {
	return func(s *Server) {
		s.historyLimit = limit
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:       r,
		uc:           uc,
		historyLimit: DefaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Route("/sync-configs", func(r chi.Router) {
			r.Get("/", listSyncConfigsHandler(uc.SyncConfig))
			r.Post("/", createSyncConfigHandler(uc.SyncConfig))

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", getSyncConfigHandler(uc.SyncConfig))
				r.Put("/", updateSyncConfigHandler(uc.SyncConfig))
				r.Delete("/", deleteSyncConfigHandler(uc.SyncConfig))
				r.Post("/enable", setEnabledHandler(uc.SyncConfig, true))
				r.Post("/disable", setEnabledHandler(uc.SyncConfig, false))
				r.Post("/sync", runSyncHandler(uc.SyncConfig, uc.Sync))
				r.Get("/history", historyHandler(uc.Sync, s.historyLimit, true))
			})
		})

		r.Get("/history", historyHandler(uc.Sync, s.historyLimit, false))
		r.Post("/schema/preview", previewHandler(uc.Schema))
		r.Put("/lookup-lists/{name}", putLookupListHandler(uc.Lookup))
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(r.Context(), w, data)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	body := http.MaxBytesReader(w, r.Body, limit)
	defer safe.Close(r.Context(), body)

	if err := json.NewDecoder(body).Decode(v); err != nil {
		return goerr.Wrap(errBadRequest, "invalid JSON body", goerr.V("error", err.Error()))
	}
	return nil
}

var errBadRequest = goerr.New("bad request")

// statusOf maps domain errors to HTTP status codes
func statusOf(err error) int {
	switch {
	case errors.Is(err, interfaces.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, model.ErrInvalidSyncConfig),
		errors.Is(err, model.ErrInvalidTransformRule),
		errors.Is(err, model.ErrInvalidSourceDocument),
		errors.Is(err, usecase.ErrEmptyLookupListName):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func handleError(w http.ResponseWriter, r *http.Request, err error) {
	errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
}
