package models

import (
	"encoding/json"
	"net/url"
	"strconv"
	"time"
)

// Meta is the pagination block carried by list responses.
type Meta struct {
	Page      int `json:"page"`
	Limit     int `json:"limit"`
	Total     int `json:"total"`
	TotalPage int `json:"totalPage"`
}

// Envelope is the uniform wrapper of every backend response.
type Envelope[T any] struct {
	StatusCode int    `json:"statusCode"`
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Data       T      `json:"data"`
	Meta       *Meta  `json:"meta,omitempty"`
}

type ErrorSource struct {
	Source  string `json:"source"`
	Message string `json:"message"`
}

// ErrorBody is the data half of an error: {success, message, errorSources?}.
type ErrorBody struct {
	Success      bool          `json:"success"`
	Message      string        `json:"message"`
	ErrorSources []ErrorSource `json:"errorSources,omitempty"`
}

// Page is a decoded list response.
type Page[T any] struct {
	Data []T `json:"data"`
	Meta Meta `json:"meta"`
}

// EnvelopeDecoder is implemented by result types that need more of the
// envelope than its data field.
type EnvelopeDecoder interface {
	DecodeEnvelope(data json.RawMessage, meta *Meta) error
}

func (p *Page[T]) DecodeEnvelope(data json.RawMessage, meta *Meta) error {
	p.Data = nil
	if len(data) > 0 && string(data) != "null" {
		if err := json.Unmarshal(data, &p.Data); err != nil {
			return err
		}
	}
	if p.Data == nil {
		p.Data = []T{}
	}
	if meta != nil {
		p.Meta = *meta
	} else {
		p.Meta = Meta{Page: 1, Limit: len(p.Data), Total: len(p.Data), TotalPage: 1}
	}
	return nil
}

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ListQuery holds the optional filters shared by every list endpoint.
// Zero fields are not sent: absence means no constraint.
type ListQuery struct {
	Page         int        `json:"page,omitempty" validate:"omitempty,min=1"`
	Limit        int        `json:"limit,omitempty" validate:"omitempty,min=1,max=100"`
	SearchTerm   string     `json:"searchTerm,omitempty" validate:"omitempty,max=100"`
	SortBy       string     `json:"sortBy,omitempty" validate:"omitempty,max=50,alphanum"`
	SortOrder    SortOrder  `json:"sortOrder,omitempty" validate:"omitempty,oneof=asc desc"`
	StartDate    *time.Time `json:"startDate,omitempty"`
	EndDate      *time.Time `json:"endDate,omitempty"`
	Organization string     `json:"organization,omitempty" validate:"omitempty,objectid"`
	Status       string     `json:"status,omitempty" validate:"omitempty,max=30"`
}

// Values encodes the non-zero filters as query parameters.
func (q ListQuery) Values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.SearchTerm != "" {
		v.Set("searchTerm", q.SearchTerm)
	}
	if q.SortBy != "" {
		v.Set("sortBy", q.SortBy)
	}
	if q.SortOrder != "" {
		v.Set("sortOrder", string(q.SortOrder))
	}
	if q.StartDate != nil {
		v.Set("startDate", q.StartDate.UTC().Format(time.RFC3339))
	}
	if q.EndDate != nil {
		v.Set("endDate", q.EndDate.UTC().Format(time.RFC3339))
	}
	if q.Organization != "" {
		v.Set("organization", q.Organization)
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	return v
}

// ParseListQuery is the inverse of Values; unparsable numbers and dates are
// dropped rather than rejected.
func ParseListQuery(v url.Values) ListQuery {
	q := ListQuery{
		SearchTerm:   v.Get("searchTerm"),
		SortBy:       v.Get("sortBy"),
		SortOrder:    SortOrder(v.Get("sortOrder")),
		Organization: v.Get("organization"),
		Status:       v.Get("status"),
	}
	q.Page, _ = strconv.Atoi(v.Get("page"))
	q.Limit, _ = strconv.Atoi(v.Get("limit"))
	if t, err := time.Parse(time.RFC3339, v.Get("startDate")); err == nil {
		q.StartDate = &t
	}
	if t, err := time.Parse(time.RFC3339, v.Get("endDate")); err == nil {
		q.EndDate = &t
	}
	return q
}
