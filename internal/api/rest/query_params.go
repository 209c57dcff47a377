package rest

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/satenders/tender-indexer/internal/domain"
	"github.com/satenders/tender-indexer/internal/store"
)

const MAX_PAGE_SIZE = 100

// sortColumns is the allow-list for the sort parameter; anything else is
// coerced to closing_at
var sortColumns = map[string]bool{
	"closing_at":   true,
	"published_at": true,
	"id":           true,
}

// ListTendersQueryParams holds query parameters for GET /tenders
type ListTendersQueryParams struct {
	// Filters
	Source   string `form:"source"`
	Status   string `form:"status"`
	Buyer    string `form:"buyer"`
	Category string `form:"category"`
	Q        string `form:"q"`

	// Date windows, RFC 3339 or YYYY-MM-DD
	ClosingFrom   string `form:"closing_from"`
	ClosingTo     string `form:"closing_to"`
	PublishedFrom string `form:"published_from"`
	PublishedTo   string `form:"published_to"`

	// Pagination
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`

	// Sorting
	Sort  string          `form:"sort,default=closing_at"`
	Order store.SortOrder `form:"order,default=asc"`
}

// ParseListTendersQuery parses and normalizes query parameters for
// GET /tenders
func ParseListTendersQuery(c *gin.Context) (*ListTendersQueryParams, error) {
	var params ListTendersQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return nil, err
	}

	// Cap limits
	if params.Limit > MAX_PAGE_SIZE {
		params.Limit = MAX_PAGE_SIZE
	}
	if params.Limit < 1 {
		params.Limit = 20
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	// Coerce sort and order rather than erroring; the allow-list is a hard
	// rule, not a validation surface
	if !sortColumns[params.Sort] {
		params.Sort = "closing_at"
	}
	if params.Order != store.SortAsc && params.Order != store.SortDesc {
		params.Order = store.SortAsc
	}

	if params.Source != "" && !domain.Source(params.Source).Valid() {
		return nil, fmt.Errorf("unknown source %q", params.Source)
	}

	return &params, nil
}

// ToQuery converts the parsed parameters to the store query
func (p *ListTendersQueryParams) ToQuery() (store.TenderQuery, error) {
	q := store.TenderQuery{
		Category: optional(p.Category),
		Status:   optional(p.Status),
		Buyer:    optional(p.Buyer),
		Text:     optional(p.Q),
		SortBy:   p.Sort,
		Order:    p.Order,
		Limit:    p.Limit,
		Offset:   p.Offset,
	}

	if p.Source != "" {
		src := domain.Source(p.Source)
		q.Source = &src
	}

	var err error
	if q.ClosingAfter, err = parseTimeParam("closing_from", p.ClosingFrom); err != nil {
		return q, err
	}
	if q.ClosingBefore, err = parseTimeParam("closing_to", p.ClosingTo); err != nil {
		return q, err
	}
	if q.PublishedAfter, err = parseTimeParam("published_from", p.PublishedFrom); err != nil {
		return q, err
	}
	if q.PublishedBefore, err = parseTimeParam("published_to", p.PublishedTo); err != nil {
		return q, err
	}

	return q, nil
}

// parseTimeParam accepts RFC 3339 or a bare date
func parseTimeParam(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return &t, nil
	}
	return nil, fmt.Errorf("invalid %s value %q", name, value)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
