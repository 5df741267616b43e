package handler

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/yash-miyani/natours/internal/core/ports"
)

// Reserved query parameters consumed by pagination/sorting rather than
// filtering.
var reservedParams = map[string]struct{}{
	"page":   {},
	"sort":   {},
	"limit":  {},
	"fields": {},
}

var operatorParamRe = regexp.MustCompile(`^(.+)\[(gte|gt|lte|lt|ne)\]$`)

// ParseListQuery builds the filter/sort/paginate/field-selection options
// from the request's query string. Supported forms:
//
//	?difficulty=easy            exact match
//	?difficulty=easy&difficulty=hard   any-of match
//	?price[lt]=500&duration[gte]=5     comparison operators
//	?sort=-price,ratingsAverage        sorting, '-' for descending
//	?fields=name,price                 projection
//	?page=2&limit=10                   pagination
func ParseListQuery(c echo.Context) ports.ListQuery {
	q := ports.ListQuery{Filter: map[string]any{}}

	for key, vals := range c.QueryParams() {
		if _, ok := reservedParams[key]; ok || len(vals) == 0 {
			continue
		}

		if m := operatorParamRe.FindStringSubmatch(key); m != nil {
			field, op := m[1], m[2]
			ops, _ := q.Filter[field].(map[string]any)
			if ops == nil {
				ops = map[string]any{}
			}
			ops[op] = coerce(vals[0])
			q.Filter[field] = ops
			continue
		}

		if len(vals) > 1 {
			coerced := make([]any, len(vals))
			for i, v := range vals {
				coerced[i] = coerce(v)
			}
			q.Filter[key] = map[string]any{"in": coerced}
			continue
		}

		q.Filter[key] = coerce(vals[0])
	}

	if sort := c.QueryParam("sort"); sort != "" {
		q.Sort = splitList(sort)
	}
	if fields := c.QueryParam("fields"); fields != "" {
		q.Fields = splitList(fields)
	}
	if page, err := strconv.ParseInt(c.QueryParam("page"), 10, 64); err == nil && page > 0 {
		q.Page = page
	}
	if limit, err := strconv.ParseInt(c.QueryParam("limit"), 10, 64); err == nil && limit > 0 {
		q.Limit = limit
	}

	return q
}

// coerce converts numeric-looking query values so comparisons against
// numeric fields work in the document store.
func coerce(v string) any {
	if n, err := strconv.ParseFloat(v, 64); err == nil {
		return n
	}
	if v == "true" {
		return true
	}
	if v == "false" {
		return false
	}
	return v
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
