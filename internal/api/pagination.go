package api

import (
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/types"
)

const maxPageSize = 100

// parsePagination reads page and limit. It writes a 404 and returns false
// when page is not a positive integer.
func parsePagination(c *gin.Context, defaultSize int) (types.Pagination, bool) {
	p := types.Pagination{Page: 1, Size: defaultSize}

	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondNotFound(c, "invalid page")
			return p, false
		}
		p.Page = n
	}
	if n, err := strconv.Atoi(c.Query("limit")); err == nil && n > 0 {
		p.Size = min(n, maxPageSize)
	}
	return p, true
}

// pageInRange reports whether p addresses an existing page. The first page
// always exists, even for an empty listing.
func pageInRange(c *gin.Context, p types.Pagination, total int64) bool {
	if p.Page > 1 && int64(p.Offset()) >= total {
		respondNotFound(c, "invalid page")
		return false
	}
	return true
}

// newPage wraps results with absolute next and previous links.
func newPage[T any](c *gin.Context, results []T, total int64, p types.Pagination) types.Page[T] {
	page := types.Page[T]{Count: total, Results: results}
	if page.Results == nil {
		page.Results = []T{}
	}
	if int64(p.Page*p.Size) < total {
		next := pageURL(c, p.Page+1)
		page.Next = &next
	}
	if p.Page > 1 {
		prev := pageURL(c, p.Page-1)
		page.Previous = &prev
	}
	return page
}

func pageURL(c *gin.Context, page int) string {
	u := url.URL{
		Scheme: "http",
		Host:   c.Request.Host,
		Path:   c.Request.URL.Path,
	}
	if c.Request.TLS != nil {
		u.Scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		u.Scheme = proto
	}

	q := c.Request.URL.Query()
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	return u.String()
}
