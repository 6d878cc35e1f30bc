package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the success envelope returned by the Holidaze API
type Response struct {
	Data interface{} `json:"data"`
	Meta interface{} `json:"meta,omitempty"`
}

// Meta carries pagination information for list responses
type Meta struct {
	IsFirstPage  bool `json:"isFirstPage"`
	IsLastPage   bool `json:"isLastPage"`
	CurrentPage  int  `json:"currentPage"`
	PreviousPage *int `json:"previousPage"`
	NextPage     *int `json:"nextPage"`
	PageCount    int  `json:"pageCount"`
	TotalCount   int  `json:"totalCount"`
}

// ErrorBody is the error envelope returned by the Holidaze API
type ErrorBody struct {
	Errors     []ErrorDetail `json:"errors,omitempty"`
	Message    string        `json:"message,omitempty"`
	Status     string        `json:"status,omitempty"`
	StatusCode int           `json:"statusCode,omitempty"`
}

// ErrorDetail is a single entry of ErrorBody.Errors
type ErrorDetail struct {
	Code    string   `json:"code,omitempty"`
	Message string   `json:"message"`
	Path    []string `json:"path,omitempty"`
}

// Paginate builds Meta for a page of a list of total items. page is 1-based.
func Paginate(total, page, limit int) Meta {
	if limit <= 0 {
		limit = total
	}
	if page < 1 {
		page = 1
	}
	pageCount := 1
	if limit > 0 && total > 0 {
		pageCount = (total + limit - 1) / limit
	}

	m := Meta{
		IsFirstPage: page == 1,
		IsLastPage:  page >= pageCount,
		CurrentPage: page,
		PageCount:   pageCount,
		TotalCount:  total,
	}
	if page > 1 {
		prev := page - 1
		m.PreviousPage = &prev
	}
	if page < pageCount {
		next := page + 1
		m.NextPage = &next
	}
	return m
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Data: data})
}

func SuccessWithMeta(c *gin.Context, data interface{}, meta interface{}) {
	c.JSON(http.StatusOK, Response{Data: data, Meta: meta})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Data: data})
}

func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error writes an error envelope with one entry per message
func Error(c *gin.Context, status int, messages ...string) {
	body := ErrorBody{
		Status:     http.StatusText(status),
		StatusCode: status,
	}
	for _, m := range messages {
		body.Errors = append(body.Errors, ErrorDetail{Message: m})
	}
	c.AbortWithStatusJSON(status, body)
}

func InternalError(c *gin.Context, err error) {
	_ = c.Error(err)
	Error(c, http.StatusInternalServerError, "Internal Server Error")
}

func BadRequest(c *gin.Context, messages ...string) {
	Error(c, http.StatusBadRequest, messages...)
}

func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message)
}

func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, message)
}
