package httpapi

import (
	"net/http"
	"strconv"

	"medbulletin/internal/domain/entity"
)

func (h *handler) listArticles(w http.ResponseWriter, r *http.Request) {
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		h.badRequest(w, "invalid offset")
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		h.badRequest(w, "invalid limit")
		return
	}
	filter := false
	if raw := r.URL.Query().Get("filter"); raw != "" {
		if filter, err = strconv.ParseBool(raw); err != nil {
			h.badRequest(w, "invalid filter")
			return
		}
	}

	page, err := h.svc.Bulletin.GetPage(r.Context(), offset, limit, filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, pageResponse{
		Items:         toArticleResponses(page.Items),
		PriorityCount: page.PriorityCount,
		NextOffset:    page.NextOffset,
	})
}

func (h *handler) listSaved(w http.ResponseWriter, r *http.Request) {
	saved, err := h.svc.Bulletin.GetSaved(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toArticleResponses(saved))
}

func (h *handler) getArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	a, err := h.svc.Bulletin.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toArticleResponses([]*entity.Article{a})[0])
}

func (h *handler) toggleSaved(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	saved, err := h.svc.State.ToggleSaved(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"id": id, "is_saved": saved})
}

func (h *handler) markRead(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.State.MarkRead(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) markAllRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.State.MarkAllRead(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int64{"marked": n})
}

func (h *handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.State.Stats(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

func (h *handler) refresh(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Scheduler.RefreshNow(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int{"new": n})
}
