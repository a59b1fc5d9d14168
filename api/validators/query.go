package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/gavelworks/auctiondesk/pkg/errors"
)

// ParseQueryUint parses a required positive integer query parameter.
func ParseQueryUint(r *http.Request, key string) (uint, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter is required").
			WithDetails(map[string]any{"field": key})
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || value == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a positive integer").
			WithDetails(map[string]any{"field": key})
	}
	return uint(value), nil
}

// ParseURLUint parses a positive integer chi URL parameter.
func ParseURLUint(raw, field string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || value == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "url parameter must be a positive integer").
			WithDetails(map[string]any{"field": field})
	}
	return uint(value), nil
}
