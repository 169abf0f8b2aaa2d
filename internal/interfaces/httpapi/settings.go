package httpapi

import (
	"net/http"

	"medbulletin/internal/application"
)

func (h *handler) listSources(w http.ResponseWriter, r *http.Request) {
	sources, err := h.svc.Sources.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]sourceResponse, 0, len(sources))
	for _, s := range sources {
		out = append(out, toSourceResponse(s))
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *handler) addSource(w http.ResponseWriter, r *http.Request) {
	var req createSourceRequest
	if !h.decode(w, r, &req) {
		return
	}
	source, err := h.svc.Sources.Add(r.Context(), req.Name, req.URL)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toSourceResponse(source))
}

func (h *handler) removeSource(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Sources.Remove(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) setSourceActive(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req setActiveRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.svc.Sources.SetActive(r.Context(), id, req.Active); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) listKeywords(w http.ResponseWriter, r *http.Request) {
	keywords, err := h.svc.Keywords.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]keywordResponse, 0, len(keywords))
	for _, k := range keywords {
		out = append(out, toKeywordResponse(k))
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *handler) addKeyword(w http.ResponseWriter, r *http.Request) {
	var req createKeywordRequest
	if !h.decode(w, r, &req) {
		return
	}
	kw, err := h.svc.Keywords.Add(r.Context(), req.Text)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toKeywordResponse(kw))
}

func (h *handler) removeKeyword(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Keywords.Remove(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) getSettings(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.svc.Settings.Current(r.Context()))
}

func (h *handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	var req application.SettingsUpdate
	if !h.decode(w, r, &req) {
		return
	}
	current, err := h.svc.Settings.Update(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, current)
}
