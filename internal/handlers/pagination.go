package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

const defaultPageLimit = 20

var errInvalidPagination = errors.New("page and limit must be positive integers")

// pageWindow selects one page of a list. Lists are returned whole when the
// request carries neither page nor limit.
type pageWindow struct {
	page  int
	limit int
	set   bool
}

func parsePaginationParams(c *gin.Context) (pageWindow, error) {
	pageStr, limitStr := c.Query("page"), c.Query("limit")
	window := pageWindow{page: 1, limit: defaultPageLimit, set: pageStr != "" || limitStr != ""}

	if pageStr != "" {
		p, err := strconv.Atoi(pageStr)
		if err != nil || p < 1 {
			return pageWindow{}, errInvalidPagination
		}
		window.page = p
	}

	if limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l < 1 {
			return pageWindow{}, errInvalidPagination
		}
		window.limit = l
	}

	return window, nil
}

func paginate[T any](items []T, window pageWindow) []T {
	if !window.set {
		return items
	}
	start := (window.page - 1) * window.limit
	if start >= len(items) {
		return items[:0]
	}
	end := start + window.limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// listResponse builds the body of a list endpoint, adding paging metadata
// when a window was requested.
func listResponse[T any](key string, items []T, window pageWindow) gin.H {
	body := gin.H{"success": true, key: paginate(items, window)}
	if window.set {
		body["page"] = window.page
		body["limit"] = window.limit
		body["total"] = len(items)
	}
	return body
}
