package api

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const defaultPageSize = 6

// pageParams holds the resolved pagination query for a list request.
type pageParams struct {
	Page  int
	Limit int
}

func parsePageParams(c *gin.Context) pageParams {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 {
		limit = defaultPageSize
	}
	return pageParams{Page: page, Limit: limit}
}

func (p pageParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// paginatedResponse is the standard list envelope.
type paginatedResponse struct {
	Count    int64       `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

// paginate wraps results in the list envelope, deriving next/previous
// links from the current request URL.
func paginate(c *gin.Context, params pageParams, count int64, results interface{}) paginatedResponse {
	resp := paginatedResponse{Count: count, Results: results}

	if int64(params.Offset()+params.Limit) < count {
		resp.Next = pageURL(c, params, params.Page+1)
	}
	if params.Page > 1 {
		resp.Previous = pageURL(c, params, params.Page-1)
	}
	return resp
}

func pageURL(c *gin.Context, params pageParams, page int) *string {
	u := *c.Request.URL
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	if params.Limit != defaultPageSize {
		q.Set("limit", strconv.Itoa(params.Limit))
	}
	u.RawQuery = q.Encode()

	link := requestBase(c) + u.String()
	return &link
}

func requestBase(c *gin.Context) string {
	if c.Request.Host == "" {
		return ""
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}

// emptyIfNil keeps JSON list results as [] instead of null.
func emptyIfNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
