package http

import (
	"net/http"
	"strconv"

	"github.com/bheem-hr/hr-backend-go/internal/domain/auth"
	"github.com/bheem-hr/hr-backend-go/internal/handler/http/middleware"
	"github.com/bheem-hr/hr-backend-go/internal/handler/http/response"
	"github.com/bheem-hr/hr-backend-go/internal/pkg/validator"
)

// claims returns the caller's claims or writes 401.
func claims(w http.ResponseWriter, r *http.Request) (auth.Claims, bool) {
	c, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return auth.Claims{}, false
	}
	return c, true
}

// pagination reads limit and offset query parameters. Missing values are zero
// and get their defaults in the filter's Validate.
func pagination(w http.ResponseWriter, r *http.Request) (limit, offset int, ok bool) {
	q := r.URL.Query()
	var errs validator.ValidationErrors

	if s := q.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			errs = append(errs, validator.ValidationError{Field: "limit", Message: "limit must be a number"})
		}
		limit = v
	}
	if s := q.Get("offset"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			errs = append(errs, validator.ValidationError{Field: "offset", Message: "offset must be a number"})
		}
		offset = v
	}

	if len(errs) > 0 {
		response.BadRequest(w, "Invalid pagination parameters", errs.ToMap())
		return 0, 0, false
	}
	return limit, offset, true
}

// optionalQuery returns a pointer to the query value, or nil when absent.
func optionalQuery(r *http.Request, key string) *string {
	if v := r.URL.Query().Get(key); v != "" {
		return &v
	}
	return nil
}
