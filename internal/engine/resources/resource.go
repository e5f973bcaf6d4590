// Package resources declares the backend's endpoints: one CRUD set per
// entity plus the extra operations, each with the cache tags it provides or
// invalidates.
package resources

import (
	"net/http"
	"net/url"

	"adminconsole/internal/engine/cache"
	"adminconsole/internal/engine/query"
	"adminconsole/internal/platform/models"
	"adminconsole/internal/transport"
)

// Tag types.
const (
	TagOrganization  = "ORG"
	TagUser          = "USER"
	TagProfile       = "PROFILE"
	TagPayment       = "PAYMENT"
	TagPlan          = "PLAN"
	TagWallet        = "WALLET"
	TagContact       = "CONTACT"
	TagLog           = "LOG"
	TagEmailLog      = "EMAIL_LOG"
	TagCategory      = "CATEGORY"
	TagTemplate      = "TEMPLATE"
	TagSupportTicket = "SUPPORT_TICKET"
	TagAsset         = "ASSET"
	TagTask          = "TASK"
)

// Patch addresses an update to one entity.
type Patch[U any] struct {
	ID   string `json:"id"`
	Body U      `json:"body"`
}

// Resource is the read and write surface of one entity collection. Writes
// are nil on read-only collections.
type Resource[T models.Entity, C, U any] struct {
	Name string
	Tag  string
	Path string

	List   query.QueryDef[models.ListQuery, models.Page[T]]
	Get    query.QueryDef[string, T]
	Create *query.MutationDef[C, T]
	Update *query.MutationDef[Patch[U], T]
	Delete *query.MutationDef[string, T]
}

func (r Resource[T, C, U]) ReadOnly() bool {
	return r.Create == nil && r.Update == nil && r.Delete == nil
}

func itemPath(base, id string) string {
	return base + "/" + url.PathEscape(id)
}

// listTags provides the list tag plus one instance tag per row, so a write
// to any row also refreshes the lists showing it.
func listTags[T models.Entity](tag string, page models.Page[T]) []cache.Tag {
	tags := make([]cache.Tag, 0, len(page.Data)+1)
	tags = append(tags, cache.ListTag(tag))
	for _, item := range page.Data {
		if id := item.EntityID(); id != "" {
			tags = append(tags, cache.InstanceTag(tag, id))
		}
	}
	return tags
}

func readOnly[T models.Entity](name, tag, path string) Resource[T, struct{}, struct{}] {
	return Resource[T, struct{}, struct{}]{
		Name: name,
		Tag:  tag,
		Path: path,
		List: query.QueryDef[models.ListQuery, models.Page[T]]{
			Name: "list:" + name,
			Request: func(q models.ListQuery) transport.Request {
				return transport.Request{Method: http.MethodGet, Path: path, Query: q.Values()}
			},
			Provides: func(_ models.ListQuery, page models.Page[T]) []cache.Tag {
				return listTags(tag, page)
			},
		},
		Get: query.QueryDef[string, T]{
			Name: "get:" + name,
			Request: func(id string) transport.Request {
				return transport.Request{Method: http.MethodGet, Path: itemPath(path, id)}
			},
			Provides: func(id string, _ T) []cache.Tag {
				return []cache.Tag{cache.InstanceTag(tag, id)}
			},
		},
	}
}

// crud builds the standard five endpoints. Creates and deletes invalidate the
// whole type, since every list page's rows and totals shift; updates only the
// touched instance. also lists extra tags every write invalidates.
func crud[T models.Entity, C, U any](name, tag, path string, also ...cache.Tag) Resource[T, C, U] {
	ro := readOnly[T](name, tag, path)
	r := Resource[T, C, U]{Name: ro.Name, Tag: ro.Tag, Path: ro.Path, List: ro.List, Get: ro.Get}

	r.Create = &query.MutationDef[C, T]{
		Name: "create:" + name,
		Request: func(body C) transport.Request {
			return transport.Request{Method: http.MethodPost, Path: path, Body: body}
		},
		Invalidates: func(C, T) []cache.Tag {
			return append([]cache.Tag{cache.ListTag(tag)}, also...)
		},
	}
	r.Update = &query.MutationDef[Patch[U], T]{
		Name: "update:" + name,
		Request: func(p Patch[U]) transport.Request {
			return transport.Request{Method: http.MethodPatch, Path: itemPath(path, p.ID), Body: p.Body}
		},
		Invalidates: func(p Patch[U], _ T) []cache.Tag {
			return append([]cache.Tag{cache.InstanceTag(tag, p.ID)}, also...)
		},
	}
	r.Delete = &query.MutationDef[string, T]{
		Name: "delete:" + name,
		Request: func(id string) transport.Request {
			return transport.Request{Method: http.MethodDelete, Path: itemPath(path, id)}
		},
		Invalidates: func(string, T) []cache.Tag {
			return append([]cache.Tag{cache.ListTag(tag)}, also...)
		},
	}
	return r
}
