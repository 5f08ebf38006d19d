package http

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/services"
	"github.com/mrlokans/bookshelf/internal/validation"
)

// Response statuses of the envelope.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusInfo    = "info"
)

// --- Response Types ---

// Response is the envelope every API endpoint answers with.
type Response struct {
	Status  string              `json:"status"`
	Message string              `json:"message,omitempty"`
	Data    any                 `json:"data,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// PageResponse is the data of a paginated listing.
type PageResponse struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  any     `json:"results"`
}

// --- Response Helpers ---

// respondSuccess sends a success envelope with optional data.
func respondSuccess(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Response{Status: StatusSuccess, Message: message, Data: data})
}

// respondError sends an error envelope.
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, Response{Status: StatusError, Message: message})
}

// respondErrorData sends an error envelope that still identifies the entity.
func respondErrorData(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Response{Status: StatusError, Message: message, Data: data})
}

// respondValidation sends a 400 with per-field messages.
func respondValidation(c *gin.Context, message string, errs validation.FieldErrors) {
	c.JSON(http.StatusBadRequest, Response{Status: StatusError, Message: message, Errors: errs})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	respondError(c, http.StatusInternalServerError, "Internal server error")
}

// respondFieldErrorsOr sends err as a validation response when it carries
// field errors and reports whether it did.
func respondFieldErrorsOr(c *gin.Context, err error, message string) bool {
	var fe validation.FieldErrors
	if errors.As(err, &fe) {
		respondValidation(c, message, fe)
		return true
	}
	return false
}

// respondBindError reports a malformed request body.
func respondBindError(c *gin.Context, err error) {
	respondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
}

// --- Parameter Parsing ---

// parseIDParam extracts and validates an unsigned integer ID from URL parameters.
// Returns the parsed ID or responds with a 400 error and returns 0, false.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	idStr := c.Param(paramName)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		respondError(c, http.StatusBadRequest, "invalid "+paramName)
		return 0, false
	}
	return uint(id), true
}

// parsePageRequest reads page and page_size from the query string. A page
// that is not a positive number is a 404; a bad page_size falls back to the
// default size.
func parsePageRequest(c *gin.Context) (services.PageRequest, bool) {
	var req services.PageRequest
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(c, http.StatusNotFound, "Invalid page.")
			return req, false
		}
		req.Page = n
	}
	if n, err := strconv.Atoi(c.Query("page_size")); err == nil && n > 0 {
		req.PageSize = n
	}
	return req, true
}

// pageURL returns the current request URL pointing at page, or nil.
func pageURL(c *gin.Context, page *int) *string {
	if page == nil {
		return nil
	}
	u := url.URL{Path: c.Request.URL.Path}
	q := c.Request.URL.Query()
	q.Set("page", strconv.Itoa(*page))
	u.RawQuery = q.Encode()

	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	s := scheme + "://" + c.Request.Host + u.String()
	return &s
}

// newPageResponse converts a service page into the response shape,
// mapping each result with convert.
func newPageResponse[T, R any](c *gin.Context, page *services.Page[T], convert func(T) R) PageResponse {
	results := make([]R, len(page.Results))
	for i, item := range page.Results {
		results[i] = convert(item)
	}
	return PageResponse{
		Count:    page.Count,
		Next:     pageURL(c, page.Next),
		Previous: pageURL(c, page.Previous),
		Results:  results,
	}
}
