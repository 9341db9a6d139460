package common

import (
	"net/http"
	"strconv"
)

// AtoiDefault converts the provided string to an integer falling back to the default when parsing fails.
func AtoiDefault(value string, def int) int {
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

// ParseLimit reads the "limit" query parameter clamped to [1, max].
func ParseLimit(r *http.Request, def, max int) int {
	limit := AtoiDefault(r.URL.Query().Get("limit"), def)
	if limit <= 0 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	return limit
}
