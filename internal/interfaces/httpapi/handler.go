package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"medbulletin/internal/application"
	"medbulletin/internal/domain/repository"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/rs/cors"
)

const maxBodyBytes = 1 << 20

// Services are the application components the API exposes.
type Services struct {
	Bulletin  *application.BulletinService
	State     *application.StateManager
	Sources   *application.SourceRegistry
	Keywords  *application.KeywordService
	Settings  *application.Settings
	Scheduler *application.Scheduler
}

type handler struct {
	svc    Services
	logger log.Logger
}

// NewHandler builds the JSON API consumed by the bulletin UI.
func NewHandler(svc Services, logger log.Logger) http.Handler {
	h := &handler{svc: svc, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(2 * time.Minute))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/articles", func(r chi.Router) {
			r.Get("/", h.listArticles)
			r.Get("/saved", h.listSaved)
			r.Post("/read", h.markAllRead)
			r.Get("/{id}", h.getArticle)
			r.Post("/{id}/save", h.toggleSaved)
			r.Post("/{id}/read", h.markRead)
		})
		r.Get("/stats", h.stats)
		r.Post("/refresh", h.refresh)

		r.Route("/sources", func(r chi.Router) {
			r.Get("/", h.listSources)
			r.Post("/", h.addSource)
			r.Delete("/{id}", h.removeSource)
			r.Put("/{id}/active", h.setSourceActive)
		})

		r.Route("/keywords", func(r chi.Router) {
			r.Get("/", h.listKeywords)
			r.Post("/", h.addKeyword)
			r.Delete("/{id}", h.removeKeyword)
		})

		r.Get("/settings", h.getSettings)
		r.Put("/settings", h.updateSettings)
	})

	return cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(r)
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		level.Error(h.logger).Log("msg", "failed to encode response", "err", err)
	}
}

func (h *handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, repository.ErrDuplicate), errors.Is(err, application.ErrCycleInProgress):
		status = http.StatusConflict
	case errors.Is(err, application.ErrInvalidFeed),
		errors.Is(err, application.ErrInvalidSource),
		errors.Is(err, application.ErrInvalidSetting),
		errors.Is(err, application.ErrInvalidKeyword):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		level.Error(h.logger).Log("msg", "request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	h.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (h *handler) badRequest(w http.ResponseWriter, msg string) {
	h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func (h *handler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		h.badRequest(w, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (h *handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.badRequest(w, "invalid id")
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
