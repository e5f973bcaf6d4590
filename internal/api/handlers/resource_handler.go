package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"adminconsole/internal/api/middleware"
	"adminconsole/internal/engine/forms"
	"adminconsole/internal/engine/query"
	"adminconsole/internal/engine/resources"
	"adminconsole/internal/engine/view"
	"adminconsole/internal/platform/audit"
	"adminconsole/internal/platform/models"
)

// ResourceHandler serves one entity collection. List and get results are
// passed through present when it is set (badges, formatted fields).
type ResourceHandler[T models.Entity, C, U any] struct {
	engine  *query.Engine
	res     resources.Resource[T, C, U]
	present func(T) any
	audit   *audit.Logger
}

func NewResourceHandler[T models.Entity, C, U any](e *query.Engine, res resources.Resource[T, C, U], present func(T) any, l *audit.Logger) *ResourceHandler[T, C, U] {
	if present == nil {
		present = func(v T) any { return v }
	}
	return &ResourceHandler[T, C, U]{engine: e, res: res, present: present, audit: l}
}

func (h *ResourceHandler[T, C, U]) Resource() resources.Resource[T, C, U] {
	return h.res
}

// listQuery parses the filters and applies the tenant scope.
func (h *ResourceHandler[T, C, U]) listQuery(w http.ResponseWriter, r *http.Request) (models.ListQuery, bool) {
	q := models.ParseListQuery(r.URL.Query())
	if org := middleware.ScopeFrom(r).Organization; org != "" {
		q.Organization = org
	}
	q, verrs := forms.Query(q)
	if verrs != nil {
		middleware.WriteFailure(w, verrs)
		return q, false
	}
	return q, true
}

func (h *ResourceHandler[T, C, U]) List(w http.ResponseWriter, r *http.Request) {
	q, ok := h.listQuery(w, r)
	if !ok {
		return
	}

	page, err := query.Query(r.Context(), h.engine, h.res.List, q)
	if err != nil {
		middleware.WriteFailure(w, err)
		return
	}
	rows := view.Rows(page, h.present)
	writeData(w, http.StatusOK, "", rows.Data, &rows.Meta)
}

func (h *ResourceHandler[T, C, U]) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	item, err := query.Query(r.Context(), h.engine, h.res.Get, id)
	if err != nil {
		middleware.WriteFailure(w, err)
		return
	}
	writeData(w, http.StatusOK, "", h.present(item), nil)
}

func (h *ResourceHandler[T, C, U]) Create(w http.ResponseWriter, r *http.Request) {
	form, ok := decodeForm[C](w, r)
	if !ok {
		return
	}

	created, err := query.Mutate(r.Context(), h.engine, *h.res.Create, form)
	record(h.audit, r, "create", h.res.Name, created.EntityID(), err, http.StatusCreated)
	if err != nil {
		middleware.WriteFailure(w, err)
		return
	}
	writeData(w, http.StatusCreated, "Created", h.present(created), nil)
}

func (h *ResourceHandler[T, C, U]) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	form, ok := decodeForm[U](w, r)
	if !ok {
		return
	}

	updated, err := query.Mutate(r.Context(), h.engine, *h.res.Update, resources.Patch[U]{ID: id, Body: form})
	record(h.audit, r, "update", h.res.Name, id, err, http.StatusOK)
	if err != nil {
		middleware.WriteFailure(w, err)
		return
	}
	writeData(w, http.StatusOK, "Updated", h.present(updated), nil)
}

func (h *ResourceHandler[T, C, U]) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	_, err := query.Mutate(r.Context(), h.engine, *h.res.Delete, id)
	record(h.audit, r, "delete", h.res.Name, id, err, http.StatusOK)
	if err != nil {
		middleware.WriteFailure(w, err)
		return
	}
	writeData(w, http.StatusOK, "Deleted", nil, nil)
}

// Watch streams the list as server-sent events: the current page first,
// then a new page every time a write invalidates it.
func (h *ResourceHandler[T, C, U]) Watch(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		middleware.WriteFailure(w, fmt.Errorf("streaming unsupported"))
		return
	}
	q, ok := h.listQuery(w, r)
	if !ok {
		return
	}

	sub := query.Subscribe(r.Context(), h.engine, h.res.List, q)
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case res, ok := <-sub.Updates():
			if !ok {
				return
			}
			event, payload := "page", any(nil)
			if res.Err != nil {
				event, payload = "error", res.Err.Error()
			} else {
				rows := view.Rows(res.Value, h.present)
				payload = models.Envelope[any]{StatusCode: http.StatusOK, Success: true, Data: rows.Data, Meta: &rows.Meta}
			}
			b, err := json.Marshal(payload)
			if err != nil {
				log.Error().Err(err).Str("resource", h.res.Name).Msg("failed to encode watch event")
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, b)
			flusher.Flush()
		}
	}
}
